package sqlite

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/covkit/internal/domain"
	"github.com/example/covkit/internal/storage"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func createRun(t *testing.T, s storage.Storage, run *domain.Run) {
	t.Helper()
	require.NoError(t, storage.WithTx(context.Background(), s, func(uow storage.UnitOfWork) error {
		return uow.Runs().Create(context.Background(), run)
	}))
}

func TestRunLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	run := domain.NewRun("run-1", "nightly", "/jobs/nightly.yaml")
	createRun(t, s, run)

	uow, err := s.Begin(ctx)
	require.NoError(t, err)
	defer uow.Rollback()

	got, err := uow.Runs().Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "nightly", got.Job)
	assert.Equal(t, domain.RunStateRunning, got.State)
	assert.True(t, got.FinishedAt.IsZero())
	assert.WithinDuration(t, run.StartedAt, got.StartedAt, time.Millisecond)

	require.NoError(t, got.Finish(1, "localization failed"))
	require.NoError(t, uow.Runs().Update(ctx, got))
	assert.Equal(t, int64(2), got.Version)

	stale := *got
	stale.Version = 1
	assert.True(t, errors.Is(uow.Runs().Update(ctx, &stale), domain.ErrConcurrentModify))

	again, err := uow.Runs().Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RunStateFailed, again.State)
	assert.Equal(t, 1, again.Failures)
	assert.Equal(t, "localization failed", again.Message)
	assert.False(t, again.FinishedAt.IsZero())

	assert.True(t, errors.Is(uow.Runs().Create(ctx, run), domain.ErrAlreadyExists))

	_, err = uow.Runs().Get(ctx, "absent")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.True(t, errors.Is(uow.Runs().Delete(ctx, "absent"), domain.ErrNotFound))
}

func TestListRuns(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, job := range []string{"a", "b", "a"} {
		run := domain.NewRun("run-"+string(rune('0'+i)), job, "")
		run.StartedAt = base.Add(time.Duration(i) * time.Minute)
		createRun(t, s, run)
	}

	uow, err := s.Begin(ctx)
	require.NoError(t, err)
	defer uow.Rollback()

	all, err := uow.Runs().List(ctx, storage.ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "run-2", all[0].ID, "newest first")

	onlyA, err := uow.Runs().List(ctx, storage.ListOptions{Job: "a"})
	require.NoError(t, err)
	assert.Len(t, onlyA, 2)

	running, err := uow.Runs().List(ctx, storage.ListOptions{States: []domain.RunState{domain.RunStateRunning}, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, running, 1)

	none, err := uow.Runs().List(ctx, storage.ListOptions{States: []domain.RunState{domain.RunStateSucceeded}})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestArtifacts(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	createRun(t, s, domain.NewRun("run-1", "nightly", ""))

	fl := 0.75
	err := storage.WithTx(ctx, s, func(uow storage.UnitOfWork) error {
		if err := uow.Clusters().CreateBatch(ctx, []*domain.Cluster{
			{RunID: "run-1", Algorithm: "coverage", Name: "10", TestCases: []string{"t1"}, Elements: []string{"e1", "e2"}},
			{RunID: "run-1", Algorithm: "coverage", Name: "1"},
		}); err != nil {
			return err
		}
		if err := uow.Orderings().Create(ctx, &domain.Ordering{
			RunID: "run-1", Algorithm: "raptor", Revision: 3, Tests: []string{"t2", "t1"},
		}); err != nil {
			return err
		}
		return uow.Scores().CreateBatch(ctx, []*domain.Score{
			{RunID: "run-1", Technique: "dstar", Revision: 3, CodeElement: "e1", Suspicion: 0.5},
			{RunID: "run-1", Technique: "dstar", Revision: 3, CodeElement: "e2", Suspicion: math.Inf(1), FLScore: &fl},
		})
	})
	require.NoError(t, err)

	uow, err := s.Begin(ctx)
	require.NoError(t, err)
	defer uow.Rollback()

	clusters, err := uow.Clusters().List(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, clusters, 2)
	assert.Equal(t, "1", clusters[0].Name)
	assert.Empty(t, clusters[0].TestCases)
	assert.Equal(t, []string{"e1", "e2"}, clusters[1].Elements)

	orderings, err := uow.Orderings().List(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, orderings, 1)
	assert.Equal(t, []string{"t2", "t1"}, orderings[0].Tests)
	assert.Equal(t, 3, orderings[0].Revision)

	scores, err := uow.Scores().List(ctx, "run-1", 0)
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, "e2", scores[0].CodeElement)
	assert.True(t, math.IsInf(scores[0].Suspicion, 1))
	require.NotNil(t, scores[0].FLScore)
	assert.Equal(t, 0.75, *scores[0].FLScore)
	assert.Nil(t, scores[1].FLScore)

	top, err := uow.Scores().List(ctx, "run-1", 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}

func TestDeleteCascades(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	createRun(t, s, domain.NewRun("run-1", "nightly", ""))

	require.NoError(t, storage.WithTx(ctx, s, func(uow storage.UnitOfWork) error {
		if err := uow.Orderings().Create(ctx, &domain.Ordering{RunID: "run-1", Algorithm: "flint"}); err != nil {
			return err
		}
		return uow.Runs().Delete(ctx, "run-1")
	}))

	uow, err := s.Begin(ctx)
	require.NoError(t, err)
	defer uow.Rollback()
	orderings, err := uow.Orderings().List(ctx, "run-1")
	require.NoError(t, err)
	assert.Empty(t, orderings)
}

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	boom := errors.New("boom")
	err := storage.WithTx(ctx, s, func(uow storage.UnitOfWork) error {
		if err := uow.Runs().Create(ctx, domain.NewRun("run-1", "nightly", "")); err != nil {
			return err
		}
		return boom
	})
	assert.True(t, errors.Is(err, boom))

	uow, err := s.Begin(ctx)
	require.NoError(t, err)
	defer uow.Rollback()
	_, err = uow.Runs().Get(ctx, "run-1")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
