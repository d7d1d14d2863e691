package batch

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/covkit/coverage/domain"
	"github.com/example/covkit/internal/config"
	rundomain "github.com/example/covkit/internal/domain"
	"github.com/example/covkit/internal/storage"
)

// recorder persists one run. Without storage every method is a no-op, and a
// storage error disables further writes for the run after logging it once.
type recorder struct {
	ctx     context.Context
	storage storage.Storage
	run     *rundomain.Run
	logger  *zap.Logger
}

func newRecorder(ctx context.Context, store storage.Storage, runID string, job *config.Job, logger *zap.Logger) *recorder {
	rec := &recorder{ctx: ctx, storage: store, logger: logger}
	if store == nil {
		return rec
	}
	rec.run = rundomain.NewRun(runID, job.Name, job.Path())
	rec.write("create run", func(uow storage.UnitOfWork) error {
		return uow.Runs().Create(ctx, rec.run)
	})
	return rec
}

func (r *recorder) write(what string, fn func(storage.UnitOfWork) error) {
	if r.storage == nil || r.run == nil {
		return
	}
	if err := storage.WithTx(r.ctx, r.storage, fn); err != nil {
		r.logger.Error("run not recorded", zap.String("write", what), zap.Error(err))
		r.run = nil
	}
}

func (r *recorder) clusters(algorithm string, data *domain.SelectionData, clusters domain.ClusterMap) {
	if r.run == nil {
		return
	}
	cov := data.Coverage()
	records := make([]*rundomain.Cluster, 0, len(clusters))
	for _, name := range clusters.Names() {
		c := clusters[name]
		tests, err := names(cov.TestCases(), c.TestCases)
		if err != nil {
			r.logger.Warn("cluster not recorded", zap.String("cluster", name), zap.Error(err))
			continue
		}
		elements, err := names(cov.CodeElements(), c.CodeElements)
		if err != nil {
			r.logger.Warn("cluster not recorded", zap.String("cluster", name), zap.Error(err))
			continue
		}
		records = append(records, &rundomain.Cluster{
			RunID:     r.run.ID,
			Algorithm: algorithm,
			Name:      name,
			TestCases: tests,
			Elements:  elements,
		})
	}
	r.write("clusters", func(uow storage.UnitOfWork) error {
		return uow.Clusters().CreateBatch(r.ctx, records)
	})
}

func (r *recorder) ordering(o *Ordering) {
	if r.run == nil {
		return
	}
	r.write("ordering", func(uow storage.UnitOfWork) error {
		return uow.Orderings().Create(r.ctx, &rundomain.Ordering{
			RunID:     r.run.ID,
			Algorithm: o.Algorithm,
			Cluster:   o.Cluster,
			Revision:  o.Revision,
			Tests:     o.Tests,
		})
	})
}

func (r *recorder) scores(l *Localization) {
	if r.run == nil {
		return
	}
	changed := make(map[string]float64, len(l.Changed.Scores))
	for _, s := range l.Changed.Scores {
		changed[s.Name] = s.FLScore
	}
	records := make([]*rundomain.Score, 0, len(l.Ranked))
	for _, e := range l.Ranked {
		rec := &rundomain.Score{
			RunID:       r.run.ID,
			Technique:   l.Technique,
			Revision:    l.Revision,
			CodeElement: e.Name,
			Suspicion:   e.Suspicion,
		}
		if fl, ok := changed[e.Name]; ok {
			rec.FLScore = &fl
		}
		records = append(records, rec)
	}
	r.write("scores", func(uow storage.UnitOfWork) error {
		return uow.Scores().CreateBatch(r.ctx, records)
	})
}

// finish moves the run to its final state. cause is a failure that stopped
// the whole job.
func (r *recorder) finish(report *Report, cause error) {
	if r.run == nil {
		return
	}
	failures := len(report.Failures)
	msg := errors.Join(report.Failures...)
	if cause != nil {
		failures++
		msg = errors.Join(cause, msg)
	}
	message := ""
	if msg != nil {
		message = msg.Error()
	}
	if err := r.run.Finish(failures, message); err != nil {
		r.logger.Error("run not finished", zap.Error(err))
		return
	}
	r.write("finish run", func(uow storage.UnitOfWork) error {
		if err := uow.Runs().Update(r.ctx, r.run); err != nil {
			return fmt.Errorf("update run %s: %w", r.run.ID, err)
		}
		return nil
	})
}
