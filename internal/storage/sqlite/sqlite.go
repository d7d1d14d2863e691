// Package sqlite stores covkit runs in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/covkit/internal/storage"
)

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// New creates a new SQLite storage instance.
func New(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON")
	if err != nil {
		return nil, err
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite works best with single connection for writes
	db.SetMaxIdleConns(1)

	return &SQLiteStorage{db: db}, nil
}

// Open creates the storage and runs migrations.
func Open(ctx context.Context, path string) (*SQLiteStorage, error) {
	s, err := New(path)
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Begin starts a new transaction.
func (s *SQLiteStorage) Begin(ctx context.Context) (storage.UnitOfWork, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newUnitOfWork(tx), nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Migrate runs database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	return Migrate(ctx, s.db)
}

// unitOfWork implements the UnitOfWork interface.
type unitOfWork struct {
	tx        *sql.Tx
	runs      *runRepo
	clusters  *clusterRepo
	orderings *orderingRepo
	scores    *scoreRepo
}

func newUnitOfWork(tx *sql.Tx) *unitOfWork {
	return &unitOfWork{
		tx:        tx,
		runs:      &runRepo{tx: tx},
		clusters:  &clusterRepo{tx: tx},
		orderings: &orderingRepo{tx: tx},
		scores:    &scoreRepo{tx: tx},
	}
}

func (u *unitOfWork) Runs() storage.RunRepository {
	return u.runs
}

func (u *unitOfWork) Clusters() storage.ClusterRepository {
	return u.clusters
}

func (u *unitOfWork) Orderings() storage.OrderingRepository {
	return u.orderings
}

func (u *unitOfWork) Scores() storage.ScoreRepository {
	return u.scores
}

func (u *unitOfWork) Commit() error {
	return u.tx.Commit()
}

func (u *unitOfWork) Rollback() error {
	return u.tx.Rollback()
}
