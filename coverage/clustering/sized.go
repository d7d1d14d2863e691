package clustering

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/example/covkit/coverage/bisect"
	"github.com/example/covkit/coverage/domain"
)

const (
	OneClusterName = "one-cluster"
	CoverageName   = "coverage"
	DuplationName  = "duplation"
)

// DefaultSizes are the percentages used when no "sizes" parameter is given.
var DefaultSizes = []int{1, 5, 10, 25, 50, 75, 100}

// OneCluster puts everything into a single cluster named "full".
type OneCluster struct{}

func (*OneCluster) Name() string { return OneClusterName }

func (*OneCluster) Init(domain.Params) error { return nil }

func (*OneCluster) Execute(data *domain.SelectionData, clusters domain.ClusterMap) error {
	clusters["full"] = domain.FullCluster(data.Coverage())
	return nil
}

// sizedClusters cuts a ranked test list into prefix clusters, one per
// percentage, each with every code element. Percentages outside [0,100] are
// reported and skipped.
func sizedClusters(ranked []int, elements []int, sizes []int, clusters domain.ClusterMap) error {
	var errs []error
	for _, p := range sizes {
		if p < 0 || p > 100 {
			errs = append(errs, fmt.Errorf("%w: %d%% of %d test cases", domain.ErrInvalidClusterSize, p, len(ranked)))
			continue
		}
		n := len(ranked) * p / 100
		clusters[strconv.Itoa(p)] = &domain.ClusterDefinition{
			TestCases:    append([]int(nil), ranked[:n]...),
			CodeElements: append([]int(nil), elements...),
		}
	}
	return errors.Join(errs...)
}

func parseSizes(params domain.Params) ([]int, error) {
	sizes, err := params.Ints("sizes", DefaultSizes)
	if err != nil {
		return nil, err
	}
	if len(sizes) == 0 {
		return nil, fmt.Errorf("%w: sizes must not be empty", domain.ErrInvalidConfig)
	}
	return sizes, nil
}

// CoverageBased ranks test cases by the number of covered code elements and
// cuts the ranking at each requested percentage.
type CoverageBased struct {
	sizes []int
}

func (*CoverageBased) Name() string { return CoverageName }

func (c *CoverageBased) Init(params domain.Params) error {
	sizes, err := parseSizes(params)
	c.sizes = sizes
	return err
}

func (c *CoverageBased) Execute(data *domain.SelectionData, clusters domain.ClusterMap) error {
	cov := data.Coverage()
	ranked := RankByCoverage(cov)
	return sizedClusters(ranked, allCodeElements(cov), c.sizes, clusters)
}

// RankByCoverage orders test cases by descending covered element count,
// ties by ascending id.
func RankByCoverage(cov *domain.Coverage) []int {
	ranked := allTestCases(cov)
	counts := make([]int, len(ranked))
	for tid := range ranked {
		counts[tid] = cov.Bits().RowCount(tid)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return counts[ranked[i]] > counts[ranked[j]]
	})
	return ranked
}

// Duplation orders test cases by their bisection power and cuts the order at
// each requested percentage.
type Duplation struct {
	sizes []int
}

func (*Duplation) Name() string { return DuplationName }

func (d *Duplation) Init(params domain.Params) error {
	sizes, err := parseSizes(params)
	d.sizes = sizes
	return err
}

func (d *Duplation) Execute(data *domain.SelectionData, clusters domain.ClusterMap) error {
	cov := data.Coverage()
	elements := allCodeElements(cov)
	ranked := bisect.Order(cov, allTestCases(cov), elements)
	return sizedClusters(ranked, elements, d.sizes, clusters)
}
