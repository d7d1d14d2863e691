// Package batch runs covkit jobs.
//
// A job that cannot load its data set fails as a whole. Any other problem (an
// unknown algorithm, a bad parameter, a cluster size that cannot be built) is
// logged, counted and skipped, and the remaining steps still run. RunFiles
// applies the same rule one level up: one broken job file never stops the
// others.
package batch

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/covkit/coverage/clustering"
	"github.com/example/covkit/coverage/domain"
	"github.com/example/covkit/coverage/prioritization"
	"github.com/example/covkit/internal/config"
	"github.com/example/covkit/internal/observability"
	"github.com/example/covkit/internal/storage"
	"github.com/example/covkit/internal/storage/sqlite"
	"github.com/example/covkit/pkg/id"
)

// Driver executes jobs.
type Driver struct {
	clustering     *clustering.Registry
	prioritization *prioritization.Registry
	metrics        *observability.Metrics
	storage        storage.Storage
	logger         *zap.Logger
	now            func() time.Time
}

// Option configures a Driver.
type Option func(*Driver)

// WithStorage records every run in s. Without it a job with an
// output.database records into that file.
func WithStorage(s storage.Storage) Option {
	return func(d *Driver) { d.storage = s }
}

// WithMetrics collects run metrics into m.
func WithMetrics(m *observability.Metrics) Option {
	return func(d *Driver) { d.metrics = m }
}

// WithRegistries replaces the default algorithm registries.
func WithRegistries(c *clustering.Registry, p *prioritization.Registry) Option {
	return func(d *Driver) {
		d.clustering = c
		d.prioritization = p
	}
}

// New creates a Driver with the default registries.
func New(logger *zap.Logger, opts ...Option) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Driver{
		clustering:     clustering.DefaultRegistry(),
		prioritization: prioritization.DefaultRegistry(),
		metrics:        observability.NewMetrics(),
		logger:         logger,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Metrics returns the metrics the driver collects into.
func (d *Driver) Metrics() *observability.Metrics { return d.metrics }

// Summary counts the outcome of RunFiles.
type Summary struct {
	Jobs    int
	Failed  int
	Reports []*Report
}

// RunFiles loads and runs every job file. A job that fails to load or run is
// logged and counted; the rest still run. Only a cancelled context stops early.
func (d *Driver) RunFiles(ctx context.Context, paths []string) (*Summary, error) {
	summary := &Summary{}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Jobs++

		job, err := config.Load(path)
		if err != nil {
			summary.Failed++
			d.itemFailed("job", err)
			d.logger.Error("job skipped", zap.String("path", path), zap.Error(err))
			continue
		}
		report, err := d.RunJob(ctx, job)
		if report != nil {
			summary.Reports = append(summary.Reports, report)
		}
		if err != nil {
			summary.Failed++
			d.logger.Error("job failed", zap.String("job", job.Name), zap.Error(err))
			continue
		}
		if len(report.Failures) > 0 {
			summary.Failed++
		}
	}
	return summary, nil
}

// RunJob runs every step of job. The returned error covers failures that stop
// the whole job; per-step failures are listed in the report.
func (d *Driver) RunJob(ctx context.Context, job *config.Job) (*Report, error) {
	start := d.now()
	report := &Report{RunID: id.Generate(), Job: job.Name, Clusters: make(domain.ClusterMap)}
	logger := d.logger.With(zap.String("job", job.Name), zap.String("run", report.RunID))
	logger.Info("job started", zap.String("path", job.Path()))

	store, closeStore := d.jobStorage(ctx, job, logger)
	defer closeStore()
	rec := newRecorder(ctx, store, report.RunID, job, logger)

	data, err := LoadData(job)
	if err != nil {
		d.itemFailed("load", err)
		rec.finish(report, err)
		d.observeJob(job, start, false)
		return report, fmt.Errorf("load data: %w", err)
	}

	for _, step := range job.Clustering {
		if err := ctx.Err(); err != nil {
			rec.finish(report, err)
			return report, err
		}
		d.runClustering(step, data, report, rec, logger)
	}
	for _, step := range job.Prioritization {
		if err := ctx.Err(); err != nil {
			rec.finish(report, err)
			return report, err
		}
		d.runPrioritization(step, data, report, rec, logger)
	}
	if job.Localization != nil {
		d.runLocalization(ctx, *job.Localization, data, report, rec, logger)
	}

	rec.finish(report, nil)
	d.observeJob(job, start, len(report.Failures) == 0)
	logger.Info("job finished",
		zap.Int("failures", len(report.Failures)),
		zap.Duration("duration", d.now().Sub(start)))

	if job.Output.MetricsFile != "" {
		if err := d.metrics.WriteTextfile(job.Output.MetricsFile); err != nil {
			logger.Warn("metrics not written", zap.Error(err))
		}
	}
	return report, nil
}

// jobStorage returns the driver's storage, or opens the job's own database
// when the driver has none.
func (d *Driver) jobStorage(ctx context.Context, job *config.Job, logger *zap.Logger) (storage.Storage, func()) {
	if d.storage != nil || job.Output.Database == "" {
		return d.storage, func() {}
	}
	s, err := sqlite.Open(ctx, job.Output.Database)
	if err != nil {
		logger.Error("run store unavailable", zap.String("database", job.Output.Database), zap.Error(err))
		return nil, func() {}
	}
	return s, func() {
		if err := s.Close(); err != nil {
			logger.Warn("run store close", zap.Error(err))
		}
	}
}

// fail records a per-step failure and keeps going.
func (d *Driver) fail(report *Report, logger *zap.Logger, stage, algorithm string, err error) {
	report.Failures = append(report.Failures, fmt.Errorf("%s %s: %w", stage, algorithm, err))
	d.itemFailed(stage, err)
	logger.Error("step failed", zap.String("stage", stage), zap.String("algorithm", algorithm), zap.Error(err))
}

func (d *Driver) itemFailed(stage string, _ error) {
	d.metrics.ItemFailures().WithLabelValues(stage).Inc()
}

func (d *Driver) observeJob(job *config.Job, start time.Time, ok bool) {
	status := "failed"
	if ok {
		status = "succeeded"
		d.metrics.LastSuccess().WithLabelValues(job.Name).Set(float64(d.now().Unix()))
	}
	d.metrics.JobDuration().WithLabelValues(status).Observe(d.now().Sub(start).Seconds())
}
