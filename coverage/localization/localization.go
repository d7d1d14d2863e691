package localization

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/example/covkit/coverage/domain"
)

// Spectrum holds the per element counts of one cluster at one revision.
// Elements and Counts are parallel; Index maps an element id to its slot.
type Spectrum struct {
	Elements []int
	Counts   []Counts
	Index    map[int]int
	Failed   int
	Passed   int
}

// NewSpectrum counts, for every code element of cluster, the failing and
// passing tests of cluster at revision. Tests that cannot be translated into
// the results space count as not executed.
func NewSpectrum(data *domain.SelectionData, cluster *domain.ClusterDefinition, revision int) (*Spectrum, error) {
	res := data.Results()
	if !res.HasRevision(revision) {
		return nil, fmt.Errorf("%w: revision %d has no results", domain.ErrNotFound, revision)
	}
	cov := data.Coverage()

	var failing, passing []int
	for _, tid := range uniq(cluster.TestCases) {
		rid, err := data.TranslateTestCaseIDFromCoverageToResults(tid)
		if err != nil {
			continue
		}
		switch res.Outcome(rid, revision) {
		case domain.OutcomeFailed:
			failing = append(failing, tid)
		case domain.OutcomePassed:
			passing = append(passing, tid)
		}
	}

	elements := uniq(cluster.CodeElements)
	s := &Spectrum{
		Elements: elements,
		Counts:   make([]Counts, len(elements)),
		Index:    make(map[int]int, len(elements)),
		Failed:   len(failing),
		Passed:   len(passing),
	}
	for i, cid := range elements {
		s.Index[cid] = i
		c := Counts{}
		for _, tid := range failing {
			if cov.Covers(tid, cid) {
				c.EF++
			}
		}
		for _, tid := range passing {
			if cov.Covers(tid, cid) {
				c.EP++
			}
		}
		c.NF = len(failing) - c.EF
		c.NP = len(passing) - c.EP
		s.Counts[i] = c
	}
	return s, nil
}

// Scores holds one suspiciousness value per spectrum slot.
type Scores struct {
	spectrum *Spectrum
	values   []float64
}

// Compute evaluates formula for every element, sharding the work across
// workers goroutines. workers <= 0 uses GOMAXPROCS. Each goroutine owns a
// disjoint range of result slots.
func Compute(ctx context.Context, s *Spectrum, formula Formula, workers int) (*Scores, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	n := len(s.Elements)
	values := make([]float64, n)
	if n == 0 {
		return &Scores{spectrum: s, values: values}, nil
	}
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	g, ctx := errgroup.WithContext(ctx)
	for lo := 0; lo < n; lo += chunk {
		lo, hi := lo, lo+chunk
		if hi > n {
			hi = n
		}
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if i%1024 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				values[i] = formula(s.Counts[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Scores{spectrum: s, values: values}, nil
}

// Len returns the number of scored elements.
func (sc *Scores) Len() int { return len(sc.values) }

// Of returns the score of code element cid.
func (sc *Scores) Of(cid int) (float64, bool) {
	i, ok := sc.spectrum.Index[cid]
	if !ok {
		return 0, false
	}
	return sc.values[i], true
}

// Each calls fn for every element in cluster order.
func (sc *Scores) Each(fn func(cid int, score float64)) {
	for i, cid := range sc.spectrum.Elements {
		fn(cid, sc.values[i])
	}
}

// FLScore rates how early a developer inspecting elements by descending
// suspiciousness would reach cid: 1 - (G + (E-1)/2) / (N-1), where G counts
// strictly more suspicious elements and E the elements tied with cid
// (itself included). A single ranked element scores 1.
func (sc *Scores) FLScore(cid int) (float64, error) {
	target, ok := sc.Of(cid)
	if !ok {
		return 0, fmt.Errorf("%w: code element %d is not scored", domain.ErrNotFound, cid)
	}
	n := len(sc.values)
	if n <= 1 {
		return 1, nil
	}
	greater, equal := 0, 0
	for _, v := range sc.values {
		switch {
		case v > target:
			greater++
		case v == target:
			equal++
		}
	}
	return 1 - (float64(greater)+float64(equal-1)/2)/float64(n-1), nil
}

func uniq(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
