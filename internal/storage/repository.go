package storage

import (
	"context"

	"github.com/example/covkit/internal/domain"
)

// ListOptions provides filtering options for list operations.
type ListOptions struct {
	// Job to filter by (empty = all)
	Job string

	// States to filter by (empty = all)
	States []domain.RunState

	// Pagination
	Limit  int
	Offset int
}

// RunRepository provides access to Run storage.
type RunRepository interface {
	// Create creates a new Run.
	Create(ctx context.Context, run *domain.Run) error

	// Get retrieves a Run by ID.
	Get(ctx context.Context, id string) (*domain.Run, error)

	// Update updates an existing Run.
	Update(ctx context.Context, run *domain.Run) error

	// List lists Runs, newest first.
	List(ctx context.Context, opts ListOptions) ([]*domain.Run, error)

	// Delete deletes a Run and everything it produced.
	Delete(ctx context.Context, id string) error
}

// ClusterRepository provides access to stored cluster definitions.
type ClusterRepository interface {
	// CreateBatch stores the clusters of one clustering step.
	CreateBatch(ctx context.Context, clusters []*domain.Cluster) error

	// List lists the clusters of a Run ordered by algorithm and name.
	List(ctx context.Context, runID string) ([]*domain.Cluster, error)
}

// OrderingRepository provides access to prioritized test sequences.
type OrderingRepository interface {
	// Create stores one ordering.
	Create(ctx context.Context, ordering *domain.Ordering) error

	// List lists the orderings of a Run in creation order.
	List(ctx context.Context, runID string) ([]*domain.Ordering, error)
}

// ScoreRepository provides access to suspiciousness scores.
type ScoreRepository interface {
	// CreateBatch stores the scores of one localization step.
	CreateBatch(ctx context.Context, scores []*domain.Score) error

	// List lists the scores of a Run, most suspicious first.
	List(ctx context.Context, runID string, limit int) ([]*domain.Score, error)
}

// UnitOfWork provides transactional access to all repositories.
type UnitOfWork interface {
	// Repository accessors
	Runs() RunRepository
	Clusters() ClusterRepository
	Orderings() OrderingRepository
	Scores() ScoreRepository

	// Transaction control
	Commit() error
	Rollback() error
}

// Storage provides the main entry point for storage operations.
type Storage interface {
	// Begin starts a new transaction and returns a UnitOfWork.
	Begin(ctx context.Context) (UnitOfWork, error)

	// Close closes the storage connection.
	Close() error

	// Migrate runs database migrations.
	Migrate(ctx context.Context) error
}

// WithTx runs fn in a transaction, committing on success.
func WithTx(ctx context.Context, s Storage, fn func(UnitOfWork) error) error {
	uow, err := s.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(uow); err != nil {
		_ = uow.Rollback()
		return err
	}
	return uow.Commit()
}
