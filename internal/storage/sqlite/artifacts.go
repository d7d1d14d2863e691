package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/example/covkit/internal/domain"
)

type clusterRepo struct {
	tx *sql.Tx
}

func (r *clusterRepo) CreateBatch(ctx context.Context, clusters []*domain.Cluster) error {
	stmt, err := r.tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO clusters (run_id, algorithm, name, test_cases_json, elements_json)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range clusters {
		testsJSON, err := json.Marshal(nonNil(c.TestCases))
		if err != nil {
			return err
		}
		elementsJSON, err := json.Marshal(nonNil(c.Elements))
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, c.RunID, c.Algorithm, c.Name, string(testsJSON), string(elementsJSON)); err != nil {
			return err
		}
	}
	return nil
}

func (r *clusterRepo) List(ctx context.Context, runID string) ([]*domain.Cluster, error) {
	rows, err := r.tx.QueryContext(ctx, `
		SELECT run_id, algorithm, name, test_cases_json, elements_json
		FROM clusters WHERE run_id = ?
		ORDER BY algorithm, name
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clusters []*domain.Cluster
	for rows.Next() {
		c := &domain.Cluster{}
		var testsJSON, elementsJSON string
		if err := rows.Scan(&c.RunID, &c.Algorithm, &c.Name, &testsJSON, &elementsJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(testsJSON), &c.TestCases); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(elementsJSON), &c.Elements); err != nil {
			return nil, err
		}
		clusters = append(clusters, c)
	}
	return clusters, rows.Err()
}

type orderingRepo struct {
	tx *sql.Tx
}

func (r *orderingRepo) Create(ctx context.Context, o *domain.Ordering) error {
	testsJSON, err := json.Marshal(nonNil(o.Tests))
	if err != nil {
		return err
	}

	_, err = r.tx.ExecContext(ctx, `
		INSERT INTO orderings (run_id, algorithm, cluster, revision, tests_json)
		VALUES (?, ?, ?, ?, ?)
	`, o.RunID, o.Algorithm, o.Cluster, o.Revision, string(testsJSON))
	return err
}

func (r *orderingRepo) List(ctx context.Context, runID string) ([]*domain.Ordering, error) {
	rows, err := r.tx.QueryContext(ctx, `
		SELECT run_id, algorithm, cluster, revision, tests_json
		FROM orderings WHERE run_id = ?
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orderings []*domain.Ordering
	for rows.Next() {
		o := &domain.Ordering{}
		var cluster sql.NullString
		var testsJSON string
		if err := rows.Scan(&o.RunID, &o.Algorithm, &cluster, &o.Revision, &testsJSON); err != nil {
			return nil, err
		}
		o.Cluster = cluster.String
		if err := json.Unmarshal([]byte(testsJSON), &o.Tests); err != nil {
			return nil, err
		}
		orderings = append(orderings, o)
	}
	return orderings, rows.Err()
}

type scoreRepo struct {
	tx *sql.Tx
}

func (r *scoreRepo) CreateBatch(ctx context.Context, scores []*domain.Score) error {
	stmt, err := r.tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO scores (run_id, technique, revision, code_element, suspicion, fl_score)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range scores {
		var fl sql.NullFloat64
		if s.FLScore != nil {
			fl = sql.NullFloat64{Float64: *s.FLScore, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, s.RunID, s.Technique, s.Revision, s.CodeElement, s.Suspicion, fl); err != nil {
			return err
		}
	}
	return nil
}

func (r *scoreRepo) List(ctx context.Context, runID string, limit int) ([]*domain.Score, error) {
	query := `
		SELECT run_id, technique, revision, code_element, suspicion, fl_score
		FROM scores WHERE run_id = ?
		ORDER BY suspicion DESC, code_element`
	args := []any{runID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []*domain.Score
	for rows.Next() {
		s := &domain.Score{}
		var fl sql.NullFloat64
		if err := rows.Scan(&s.RunID, &s.Technique, &s.Revision, &s.CodeElement, &s.Suspicion, &fl); err != nil {
			return nil, err
		}
		if fl.Valid {
			v := fl.Float64
			s.FLScore = &v
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func isConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
}
