package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/example/covkit/internal/domain"
	"github.com/example/covkit/internal/storage"
)

type runRepo struct {
	tx *sql.Tx
}

const runColumns = `id, job, job_path, state, failures, message, started_at, finished_at, version`

func (r *runRepo) Create(ctx context.Context, run *domain.Run) error {
	_, err := r.tx.ExecContext(ctx, `
		INSERT INTO runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Job, run.JobPath, run.State, run.Failures, run.Message,
		run.StartedAt, nullTime(run.FinishedAt), run.Version)
	if isConstraintError(err) {
		return domain.ErrAlreadyExists
	}
	return err
}

func (r *runRepo) Get(ctx context.Context, id string) (*domain.Run, error) {
	row := r.tx.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	return run, err
}

func (r *runRepo) Update(ctx context.Context, run *domain.Run) error {
	result, err := r.tx.ExecContext(ctx, `
		UPDATE runs
		SET state = ?, failures = ?, message = ?, finished_at = ?, version = version + 1
		WHERE id = ? AND version = ?
	`, run.State, run.Failures, run.Message, nullTime(run.FinishedAt), run.ID, run.Version)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrConcurrentModify
	}

	run.Version++
	return nil
}

func (r *runRepo) List(ctx context.Context, opts storage.ListOptions) ([]*domain.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs`
	var where []string
	var args []any

	if opts.Job != "" {
		where = append(where, "job = ?")
		args = append(args, opts.Job)
	}
	if len(opts.States) > 0 {
		placeholders := make([]string, len(opts.States))
		for i, s := range opts.States {
			placeholders[i] = "?"
			args = append(args, s)
		}
		where = append(where, "state IN ("+strings.Join(placeholders, ", ")+")")
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY started_at DESC, id"

	if opts.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, opts.Limit, opts.Offset)
	}

	rows, err := r.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*domain.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

func (r *runRepo) Delete(ctx context.Context, id string) error {
	result, err := r.tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*domain.Run, error) {
	run := &domain.Run{}
	var jobPath, message sql.NullString
	var finishedAt sql.NullTime

	err := s.Scan(&run.ID, &run.Job, &jobPath, &run.State, &run.Failures, &message,
		&run.StartedAt, &finishedAt, &run.Version)
	if err != nil {
		return nil, err
	}

	run.JobPath = jobPath.String
	run.Message = message.String
	if finishedAt.Valid {
		run.FinishedAt = finishedAt.Time
	}
	return run, nil
}
