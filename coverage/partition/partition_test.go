package partition

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/covkit/coverage/domain"
)

// buildCoverage creates tests t0..t(n-1) and elements from rows, where rows[e]
// lists the tests covering element c<e>.
func buildCoverage(tests int, rows [][]int) *domain.SelectionData {
	d := domain.NewSelectionData()
	cov := d.Coverage()
	for i := 0; i < tests; i++ {
		cov.AddTestCase(fmt.Sprintf("t%d", i))
	}
	for e, covering := range rows {
		name := fmt.Sprintf("c%d", e)
		cov.AddCodeElement(name)
		for _, tid := range covering {
			cov.SetRelation(fmt.Sprintf("t%d", tid), name, true)
		}
	}
	return d
}

func assertTotal(t *testing.T, r *Result, elements []int) {
	t.Helper()
	seen := make(map[int]int)
	for id, members := range r.Data {
		for _, cid := range members {
			seen[cid]++
			assert.Equal(t, id, r.Info[cid])
		}
	}
	assert.Len(t, seen, len(elements))
	for _, cid := range elements {
		assert.Equal(t, 1, seen[cid], "element %d", cid)
	}
}

func vectorsEqual(cov *domain.Coverage, tests []int, a, b int) bool {
	for _, tid := range tests {
		if cov.Covers(tid, a) != cov.Covers(tid, b) {
			return false
		}
	}
	return true
}

func assertCorrect(t *testing.T, cov *domain.Coverage, cluster *domain.ClusterDefinition, r *Result) {
	t.Helper()
	for _, a := range cluster.CodeElements {
		for _, b := range cluster.CodeElements {
			assert.Equal(t, vectorsEqual(cov, cluster.TestCases, a, b), r.Same(a, b), "elements %d and %d", a, b)
		}
	}
}

func TestComputeGroupsIdenticalVectors(t *testing.T) {
	d := buildCoverage(3, [][]int{{0, 2}, {0, 2}, {1}})
	cluster := domain.FullCluster(d.Coverage())

	r := Compute(d, cluster)
	assert.True(t, r.Same(0, 1))
	assert.False(t, r.Same(0, 2))
	assert.Equal(t, 2, r.Len())
	assertTotal(t, r, cluster.CodeElements)
}

func TestComputeIndexSumCollision(t *testing.T) {
	// c0 = {t0,t3} and c1 = {t1,t2} share indexSum 5 and S 2 but differ.
	// c2 = {t0,t3} collides too and must join c0. c3 = {t4} also has indexSum 5.
	d := buildCoverage(5, [][]int{{0, 3}, {1, 2}, {0, 3}, {4}, {}})
	cov := d.Coverage()
	cluster := domain.FullCluster(cov)

	r := Compute(d, cluster)
	assert.True(t, r.Same(0, 2))
	assert.False(t, r.Same(0, 1))
	assert.False(t, r.Same(1, 2))
	assert.False(t, r.Same(0, 3))
	assert.Equal(t, 4, r.Len())
	assertTotal(t, r, cluster.CodeElements)
	assertCorrect(t, cov, cluster, r)
}

func TestComputeEdgeCases(t *testing.T) {
	d := buildCoverage(4, [][]int{{0, 1}, {1}, {2, 3}, {}, {0}})
	cov := d.Coverage()

	tests := []struct {
		name    string
		cluster *domain.ClusterDefinition
		wantLen int
	}{
		{
			name:    "single code element",
			cluster: &domain.ClusterDefinition{TestCases: []int{0, 1, 2, 3}, CodeElements: []int{2}},
			wantLen: 1,
		},
		{
			name:    "single test case",
			cluster: &domain.ClusterDefinition{TestCases: []int{1}, CodeElements: []int{0, 1, 2, 3, 4}},
			wantLen: 2,
		},
		{
			name:    "no test cases",
			cluster: &domain.ClusterDefinition{CodeElements: []int{0, 1, 2, 3, 4}},
			wantLen: 1,
		},
		{
			name:    "duplicate elements are partitioned once",
			cluster: &domain.ClusterDefinition{TestCases: []int{0, 1, 2, 3}, CodeElements: []int{1, 1, 4}},
			wantLen: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ComputeCoverage(cov, tt.cluster)
			assert.Equal(t, tt.wantLen, r.Len())
			assertCorrect(t, cov, tt.cluster, r)
			for id, members := range r.Data {
				for _, cid := range members {
					assert.Equal(t, id, r.Info[cid])
				}
			}
		})
	}
}

func TestComputeRandomMatricesAgainstPairwiseCompare(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 20; round++ {
		tests := 1 + rng.Intn(6)
		rows := make([][]int, 3+rng.Intn(20))
		for e := range rows {
			for tid := 0; tid < tests; tid++ {
				if rng.Intn(3) == 0 {
					rows[e] = append(rows[e], tid)
				}
			}
		}
		d := buildCoverage(tests, rows)
		cov := d.Coverage()

		cluster := domain.FullCluster(cov)
		rng.Shuffle(len(cluster.TestCases), func(i, j int) {
			cluster.TestCases[i], cluster.TestCases[j] = cluster.TestCases[j], cluster.TestCases[i]
		})
		cluster.TestCases = cluster.TestCases[:1+rng.Intn(len(cluster.TestCases))]

		r := ComputeCoverage(cov, cluster)
		assertTotal(t, r, cluster.CodeElements)
		assertCorrect(t, cov, cluster, r)
	}
}

func TestRefineMatchesFullComputation(t *testing.T) {
	d := buildCoverage(4, [][]int{{0, 1}, {1}, {2, 3}, {}, {0}, {0, 1}, {3}})
	cov := d.Coverage()
	base := &domain.ClusterDefinition{TestCases: []int{0}, CodeElements: domain.FullCluster(cov).CodeElements}

	r := ComputeCoverage(cov, base)
	for _, tid := range []int{1, 2, 3} {
		r = Refine(r, cov, tid)
		base.AddTestCase(tid)
		full := ComputeCoverage(cov, base)

		assert.Equal(t, full.Len(), r.Len())
		assertCorrect(t, cov, base, r)
		assert.ElementsMatch(t, full.Sizes(), r.Sizes())
	}
}

func TestRefinedSizes(t *testing.T) {
	d := buildCoverage(3, [][]int{{0}, {0, 1}, {1}, {}})
	cov := d.Coverage()
	r := ComputeCoverage(cov, &domain.ClusterDefinition{TestCases: []int{0}, CodeElements: []int{0, 1, 2, 3}})
	require.Equal(t, 2, r.Len())

	assert.ElementsMatch(t, Refine(r, cov, 1).Sizes(), RefinedSizes(r, cov, 1))
	assert.ElementsMatch(t, []int{1, 1, 1, 1}, RefinedSizes(r, cov, 1))
}

func TestMetrics(t *testing.T) {
	tests := []struct {
		name      string
		sizes     []int
		ambiguity float64
		metric    float64
	}{
		{name: "empty", sizes: nil, ambiguity: 0, metric: 1},
		{name: "single element", sizes: []int{1}, ambiguity: 0, metric: 1},
		{name: "all singletons", sizes: []int{1, 1, 1, 1}, ambiguity: 0, metric: 1},
		{name: "one block", sizes: []int{4}, ambiguity: 1.5, metric: 0},
		{name: "mixed", sizes: []int{2, 1, 1}, ambiguity: 0.25, metric: 1 - 2.0/12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.ambiguity, Ambiguity(tt.sizes), 1e-12)
			assert.InDelta(t, tt.metric, Metric(tt.sizes), 1e-12)
		})
	}
}
