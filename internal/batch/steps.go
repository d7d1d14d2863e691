package batch

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/example/covkit/coverage/domain"
	"github.com/example/covkit/coverage/localization"
	"github.com/example/covkit/internal/config"
)

func (d *Driver) runClustering(step config.ClusteringStep, data *domain.SelectionData, report *Report, rec *recorder, logger *zap.Logger) {
	start := time.Now()
	clusters, err := d.clustering.Run(step.Algorithm, step.Params, data)
	d.metrics.ObserveAlgorithm("clustering", step.Algorithm, start)

	// Sized algorithms return the clusters they could build next to the error.
	if err != nil {
		d.fail(report, logger, "clustering", step.Algorithm, err)
	}
	if len(clusters) == 0 {
		return
	}
	if report.ClusterSources == nil {
		report.ClusterSources = make(map[string]string)
	}
	for name, c := range clusters {
		if prev, ok := report.ClusterSources[name]; ok && prev != step.Algorithm {
			logger.Warn("cluster replaced", zap.String("cluster", name),
				zap.String("previous", prev), zap.String("algorithm", step.Algorithm))
		}
		report.Clusters[name] = c
		report.ClusterSources[name] = step.Algorithm
	}
	d.metrics.ClustersBuilt().WithLabelValues(step.Algorithm).Add(float64(len(clusters)))
	logger.Info("clustering done", zap.String("algorithm", step.Algorithm), zap.Int("clusters", len(clusters)))
	rec.clusters(step.Algorithm, data, clusters)
}

func (d *Driver) runPrioritization(step config.PrioritizationStep, data *domain.SelectionData, report *Report, rec *recorder, logger *zap.Logger) {
	ordering, err := d.prioritize(step, data, report.Clusters)
	if err != nil {
		d.fail(report, logger, "prioritization", step.Algorithm, err)
		return
	}
	report.Orderings = append(report.Orderings, *ordering)
	d.metrics.SelectedTests().WithLabelValues(step.Algorithm).Add(float64(len(ordering.Tests)))
	logger.Info("prioritization done", zap.String("algorithm", step.Algorithm), zap.Int("selected", len(ordering.Tests)))
	rec.ordering(ordering)
}

func (d *Driver) prioritize(step config.PrioritizationStep, data *domain.SelectionData, clusters domain.ClusterMap) (*Ordering, error) {
	p, err := d.prioritization.Lookup(step.Algorithm)
	if err != nil {
		return nil, err
	}
	cluster, err := pickCluster(clusters, step.Cluster)
	if err != nil {
		return nil, err
	}

	params := maps.Clone(step.Params)
	if params == nil {
		params = domain.Params{}
	}
	if step.TieBreak != "" {
		params["tieBreak"] = step.TieBreak
	}

	start := time.Now()
	defer d.metrics.ObserveAlgorithm("prioritization", step.Algorithm, start)

	if err := p.Init(data, cluster, params); err != nil {
		return nil, err
	}
	if step.Revision != 0 {
		if err := p.Reset(step.Revision); err != nil {
			return nil, err
		}
	}

	size := step.Size
	if size == 0 {
		size = data.Coverage().TestCount()
	}
	tests, err := names(data.Coverage().TestCases(), p.FillSelection(size))
	if err != nil {
		return nil, err
	}
	return &Ordering{Algorithm: step.Algorithm, Cluster: step.Cluster, Revision: step.Revision, Tests: tests}, nil
}

func (d *Driver) runLocalization(ctx context.Context, step config.LocalizationStep, data *domain.SelectionData, report *Report, rec *recorder, logger *zap.Logger) {
	result, err := d.localize(ctx, step, data, report.Clusters)
	if err != nil {
		d.fail(report, logger, "localization", step.Technique, err)
		return
	}
	report.Localization = result
	if n := result.Changed.TranslationFailures; n > 0 {
		d.metrics.TranslationFailures().Add(float64(n))
		logger.Warn("changed elements missing from coverage", zap.Int("count", n))
	}
	logger.Info("localization done", zap.String("technique", step.Technique),
		zap.Int("revision", result.Revision), zap.Int("elements", len(result.Ranked)))
	rec.scores(result)
}

func (d *Driver) localize(ctx context.Context, step config.LocalizationStep, data *domain.SelectionData, clusters domain.ClusterMap) (*Localization, error) {
	formula, err := localization.Lookup(step.Technique, step.Params)
	if err != nil {
		return nil, err
	}
	cluster, err := pickCluster(clusters, step.Cluster)
	if err != nil {
		return nil, err
	}
	revision := step.Revision
	if revision == 0 {
		if revision, err = LatestRevision(data.Results()); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	defer d.metrics.ObserveAlgorithm("localization", step.Technique, start)

	scores, err := localization.Localize(ctx, data, cluster, revision, formula, step.Workers)
	if err != nil {
		return nil, err
	}
	changed, err := localization.ScoreChanged(data, scores, revision)
	if err != nil {
		return nil, err
	}

	var ranked []RankedElement
	var nameErr error
	scores.Each(func(cid int, score float64) {
		name, err := data.Coverage().CodeElements().Name(cid)
		if err != nil {
			nameErr = errors.Join(nameErr, err)
			return
		}
		ranked = append(ranked, RankedElement{Name: name, Suspicion: score})
	})
	if nameErr != nil {
		return nil, nameErr
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Suspicion != ranked[j].Suspicion {
			return ranked[i].Suspicion > ranked[j].Suspicion
		}
		return ranked[i].Name < ranked[j].Name
	})

	return &Localization{Technique: step.Technique, Revision: revision, Ranked: ranked, Changed: changed}, nil
}

// pickCluster returns the named cluster, or nil (the whole matrix) for "".
func pickCluster(clusters domain.ClusterMap, name string) (*domain.ClusterDefinition, error) {
	if name == "" {
		return nil, nil
	}
	c, ok := clusters[name]
	if !ok {
		return nil, fmt.Errorf("%w: cluster %q", domain.ErrNotFound, name)
	}
	return c, nil
}

// LatestRevision returns the highest revision with results.
func LatestRevision(res *domain.Results) (int, error) {
	revisions := res.Revisions()
	if len(revisions) == 0 {
		return 0, fmt.Errorf("%w: no revisions with results", domain.ErrNotFound)
	}
	latest := revisions[0]
	for _, r := range revisions[1:] {
		if r > latest {
			latest = r
		}
	}
	return latest, nil
}

func names(m *domain.IDMapper, ids []int) ([]string, error) {
	out := make([]string, len(ids))
	for i, id := range ids {
		name, err := m.Name(id)
		if err != nil {
			return nil, err
		}
		out[i] = name
	}
	return out, nil
}
