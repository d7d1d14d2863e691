package prioritization

import (
	"github.com/example/covkit/coverage/domain"
	"github.com/example/covkit/coverage/partition"
)

// NewPartitionMetric picks the test whose addition maximizes the partition
// metric of the running cluster.
func NewPartitionMetric() *Engine {
	return newEngine(PartitionMetricName, &partitionGreedy{gain: metricGain}, Ascending)
}

// NewPartitionWithResets is NewPartitionMetric that restarts from an empty
// running cluster whenever no candidate improves the metric.
func NewPartitionWithResets() *Engine {
	return newEngine(PartitionWithResetsName, &partitionGreedy{gain: metricGain, resets: true}, Ascending)
}

// NewRaptor picks the test with the largest reduction of ambiguity. When no
// candidate reduces it, the running cluster is emptied once before the best
// available candidate is accepted.
func NewRaptor() *Engine {
	return newEngine(RaptorName, &partitionGreedy{gain: ambiguityGain, resets: true}, Ascending)
}

// gainFunc scores the change from the current partition sizes to the refined ones.
type gainFunc func(current, refined []int) float64

func metricGain(current, refined []int) float64 {
	return partition.Metric(refined) - partition.Metric(current)
}

func ambiguityGain(current, refined []int) float64 {
	return partition.Ambiguity(current) - partition.Ambiguity(refined)
}

type partitionGreedy struct {
	gain   gainFunc
	resets bool

	current *partition.Result
}

func (p *partitionGreedy) empty(e *env) *partition.Result {
	return partition.ComputeCoverage(e.cov, &domain.ClusterDefinition{CodeElements: e.elements})
}

func (p *partitionGreedy) start(e *env) error {
	p.current = p.empty(e)
	return nil
}

func (p *partitionGreedy) best(e *env) (int, float64) {
	sizes := p.current.Sizes()
	return e.best(func(tid int) float64 {
		return p.gain(sizes, partition.RefinedSizes(p.current, e.cov, tid))
	})
}

func (p *partitionGreedy) choose(e *env) int {
	tid, gain := p.best(e)
	if gain <= 0 && p.resets {
		p.current = p.empty(e)
		tid, _ = p.best(e)
	}
	return tid
}

func (p *partitionGreedy) commit(e *env, tid int) {
	p.current = partition.Refine(p.current, e.cov, tid)
}
