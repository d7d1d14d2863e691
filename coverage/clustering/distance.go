package clustering

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/example/covkit/coverage/domain"
)

// Measure is a distance between two coverage vectors.
type Measure int

const (
	Hamming Measure = iota
	Ochiai
	Dice
	Jaccard
)

func (m Measure) String() string {
	switch m {
	case Hamming:
		return "hamming"
	case Ochiai:
		return "ochiai"
	case Dice:
		return "dice"
	case Jaccard:
		return "jaccard"
	}
	return "unknown"
}

// Distance computes the distance between two sorted id sets. Similarity
// coefficients are turned into distances as 1 - similarity; two empty sets
// are identical.
func (m Measure) Distance(a, b []int) float64 {
	common := intersect(a, b)
	if m == Hamming {
		return float64(len(a) + len(b) - 2*common)
	}
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	var sim float64
	switch m {
	case Ochiai:
		if len(a) > 0 && len(b) > 0 {
			sim = float64(common) / math.Sqrt(float64(len(a))*float64(len(b)))
		}
	case Dice:
		sim = 2 * float64(common) / float64(len(a)+len(b))
	case Jaccard:
		sim = float64(common) / float64(len(a)+len(b)-common)
	}
	return 1 - sim
}

func intersect(a, b []int) int {
	n, i, j := 0, 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			n++
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return n
}

const (
	dimensionTests    = "testcases"
	dimensionElements = "codeelements"
)

// Distance groups the test cases (or the code elements) around k seeds chosen
// farthest-first. The items farthest from their seed form the noise cluster
// "0"; the regular clusters are "1".."k". Clusters over test cases carry every
// code element and vice versa.
type Distance struct {
	measure   Measure
	k         int
	noise     float64
	dimension string
}

// NewDistance creates an uninitialized distance clustering.
func NewDistance(m Measure) *Distance {
	return &Distance{measure: m}
}

func (d *Distance) Name() string { return d.measure.String() }

func (d *Distance) Init(params domain.Params) error {
	var err error
	if d.k, err = params.Int("clusters", 2); err != nil {
		return err
	}
	if d.k < 1 {
		return fmt.Errorf("%w: clusters must be positive, got %d", domain.ErrInvalidConfig, d.k)
	}
	if d.noise, err = params.Float("noise", 0); err != nil {
		return err
	}
	if d.noise < 0 || d.noise > 100 {
		return fmt.Errorf("%w: noise must be a percentage, got %v", domain.ErrInvalidClusterSize, d.noise)
	}
	if d.dimension, err = params.String("dimension", dimensionTests); err != nil {
		return err
	}
	if d.dimension != dimensionTests && d.dimension != dimensionElements {
		return fmt.Errorf("%w: dimension must be %q or %q", domain.ErrInvalidConfig, dimensionTests, dimensionElements)
	}
	return nil
}

func (d *Distance) Execute(data *domain.SelectionData, clusters domain.ClusterMap) error {
	cov := data.Coverage()
	var vectors [][]int
	var others []int
	if d.dimension == dimensionTests {
		vectors = make([][]int, cov.TestCount())
		for tid := range vectors {
			vectors[tid] = cov.CoveredElements(tid)
		}
		others = allCodeElements(cov)
	} else {
		vectors = make([][]int, cov.CodeElementCount())
		for cid := range vectors {
			vectors[cid] = cov.CoveringTests(cid)
		}
		others = allTestCases(cov)
	}
	if len(vectors) == 0 {
		return nil
	}

	groups := d.group(vectors)
	for name, items := range groups {
		c := &domain.ClusterDefinition{}
		if d.dimension == dimensionTests {
			c.TestCases = items
			c.CodeElements = append([]int(nil), others...)
		} else {
			c.TestCases = append([]int(nil), others...)
			c.CodeElements = items
		}
		clusters[name] = c
	}
	return nil
}

// group assigns every vector index to a cluster name.
func (d *Distance) group(vectors [][]int) map[string][]int {
	seeds := d.seeds(vectors)

	assigned := make([]int, len(vectors))
	dist := make([]float64, len(vectors))
	for i, v := range vectors {
		assigned[i] = 0
		dist[i] = d.measure.Distance(v, vectors[seeds[0]])
		for s := 1; s < len(seeds); s++ {
			if dd := d.measure.Distance(v, vectors[seeds[s]]); dd < dist[i] {
				assigned[i], dist[i] = s, dd
			}
		}
	}

	noisy := make(map[int]bool)
	if n := int(float64(len(vectors)) * d.noise / 100); n > 0 {
		order := make([]int, len(vectors))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return dist[order[a]] > dist[order[b]]
		})
		for _, i := range order[:n] {
			noisy[i] = true
		}
	}

	groups := make(map[string][]int)
	if d.noise > 0 {
		groups["0"] = nil
	}
	for i := range vectors {
		name := strconv.Itoa(assigned[i] + 1)
		if noisy[i] {
			name = "0"
		}
		groups[name] = append(groups[name], i)
	}
	return groups
}

// seeds picks k distinct vectors farthest-first. The first seed is the vector
// with the most set bits; ties go to the lowest index throughout.
func (d *Distance) seeds(vectors [][]int) []int {
	k := d.k
	if k > len(vectors) {
		k = len(vectors)
	}
	first := 0
	for i, v := range vectors {
		if len(v) > len(vectors[first]) {
			first = i
		}
	}
	seeds := []int{first}
	isSeed := map[int]bool{first: true}
	minDist := make([]float64, len(vectors))
	for i, v := range vectors {
		minDist[i] = d.measure.Distance(v, vectors[first])
	}
	for len(seeds) < k {
		best := -1
		for i := range vectors {
			if isSeed[i] {
				continue
			}
			if best < 0 || minDist[i] > minDist[best] {
				best = i
			}
		}
		seeds = append(seeds, best)
		isSeed[best] = true
		for i, v := range vectors {
			if dd := d.measure.Distance(v, vectors[best]); dd < minDist[i] {
				minDist[i] = dd
			}
		}
	}
	return seeds
}
