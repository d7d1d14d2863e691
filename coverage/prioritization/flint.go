package prioritization

import (
	"math"

	"github.com/example/covkit/coverage/domain"
	"github.com/example/covkit/coverage/localization"
)

// NewFlint runs greedy additional coverage until a selected test has failed at
// the held revision, then picks the test that minimizes the expected entropy
// of the tarantula suspiciousness distribution.
func NewFlint() *Engine {
	return newEngine(FlintName, &flint{}, Ascending)
}

type flint struct {
	greedy additional

	failed  bool
	index   map[int]int
	ef, ep  map[int]int
	failing int
	passing int
}

func (f *flint) start(e *env) error {
	f.failed = false
	f.index = make(map[int]int, len(e.elements))
	for i, cid := range e.elements {
		f.index[cid] = i
	}
	f.ef = make(map[int]int)
	f.ep = make(map[int]int)
	f.failing, f.passing = 0, 0
	return f.greedy.start(e)
}

func (f *flint) choose(e *env) int {
	if !f.failed {
		return f.greedy.choose(e)
	}
	current := f.distribution(e, nil, 0, 0)
	tid, _ := e.best(func(tid int) float64 {
		return -f.expectedEntropy(e, tid, current)
	})
	return tid
}

func (f *flint) commit(e *env, tid int) {
	f.greedy.commit(e, tid)
	switch e.outcome(tid) {
	case domain.OutcomeFailed:
		f.failed = true
		f.failing++
		for _, cid := range e.covered[tid] {
			f.ef[cid]++
		}
	case domain.OutcomePassed:
		f.passing++
		for _, cid := range e.covered[tid] {
			f.ep[cid]++
		}
	}
}

// expectedEntropy weighs the entropy after a failing and after a passing run
// of tid by the probability mass of the elements tid covers.
func (f *flint) expectedEntropy(e *env, tid int, current []float64) float64 {
	covers := make(map[int]bool, len(e.covered[tid]))
	pf := 0.0
	for _, cid := range e.covered[tid] {
		covers[cid] = true
		pf += current[f.index[cid]]
	}
	if pf > 1 {
		pf = 1
	}
	hFail := entropy(f.distribution(e, covers, 1, 0))
	hPass := entropy(f.distribution(e, covers, 0, 1))
	return pf*hFail + (1-pf)*hPass
}

// distribution returns normalized tarantula scores over the scope elements, in
// scope order, as if one more test covering covers had run with the given
// outcome deltas. An all-zero score vector yields the uniform distribution.
func (f *flint) distribution(e *env, covers map[int]bool, failDelta, passDelta int) []float64 {
	failing := f.failing + failDelta
	passing := f.passing + passDelta
	dist := make([]float64, len(e.elements))
	sum := 0.0
	for i, cid := range e.elements {
		ef, ep := f.ef[cid], f.ep[cid]
		if covers[cid] {
			ef += failDelta
			ep += passDelta
		}
		dist[i] = localization.Tarantula(localization.Counts{EF: ef, EP: ep, NF: failing - ef, NP: passing - ep})
		sum += dist[i]
	}
	for i := range dist {
		if sum == 0 {
			dist[i] = 1 / float64(len(dist))
		} else {
			dist[i] /= sum
		}
	}
	return dist
}

func entropy(dist []float64) float64 {
	h := 0.0
	for _, p := range dist {
		if p > 0 {
			h -= p * math.Log2(p)
		}
	}
	return h
}
