// Package prioritization orders test cases so that the most useful ones run
// first. Every algorithm is a strategy plugged into a shared Engine that
// handles selection bookkeeping, exhaustion and resumption.
package prioritization

import (
	"fmt"
	"sort"

	"github.com/example/covkit/coverage/domain"
)

// Prioritizer produces test case ids in priority order.
type Prioritizer interface {
	Name() string
	// Init binds the prioritizer to data, restricted to cluster (nil means the
	// whole coverage matrix).
	Init(data *domain.SelectionData, cluster *domain.ClusterDefinition, params domain.Params) error
	// Reset scopes the prioritizer to a revision and restarts the ordering.
	Reset(revision int) error
	// Next returns the next test case, or ErrExhausted when none remain.
	Next() (int, error)
	// FillSelection extends the selection to size tests (or all remaining)
	// and returns it.
	FillSelection(size int) []int
	// SetState restarts the ordering as if prefix had already been selected.
	SetState(prefix []int) error
}

// TieBreak decides which test wins among equal priorities.
type TieBreak int

const (
	Ascending TieBreak = iota
	Descending
)

func (t TieBreak) String() string {
	if t == Descending {
		return "descending"
	}
	return "ascending"
}

// ParseTieBreak parses "ascending" or "descending".
func ParseTieBreak(s string) (TieBreak, error) {
	switch s {
	case "ascending", "asc":
		return Ascending, nil
	case "descending", "desc":
		return Descending, nil
	}
	return 0, fmt.Errorf("%w: tie break %q", domain.ErrInvalidConfig, s)
}

// strategy is the algorithm specific part of a prioritizer.
type strategy interface {
	// start prepares bookkeeping for a fresh ordering over env.
	start(env *env) error
	// choose returns the next test; env has at least one remaining test.
	choose(env *env) int
	// commit records that tid was selected.
	commit(env *env, tid int)
}

// adopter is implemented by strategies that resume from a prefix differently
// than by committing its tests one at a time.
type adopter interface {
	adopt(env *env, prefix []int)
}

// env is the read-only scope of one ordering plus the remaining test set.
type env struct {
	data     *domain.SelectionData
	cov      *domain.Coverage
	params   domain.Params
	tieBreak TieBreak

	// tests holds the scope's test cases in tie-break order.
	tests    []int
	elements []int
	// covered lists, per test, the scope elements it covers.
	covered map[int][]int
	// coveredBy lists, per element, the scope tests covering it.
	coveredBy map[int][]int

	revision    int
	hasRevision bool

	remaining map[int]bool
}

func newEnv(data *domain.SelectionData, cluster *domain.ClusterDefinition, params domain.Params, tie TieBreak) *env {
	cov := data.Coverage()
	if cluster == nil {
		cluster = domain.FullCluster(cov)
	}
	e := &env{
		data:      data,
		cov:       cov,
		params:    params,
		tieBreak:  tie,
		tests:     uniqueSorted(cluster.TestCases),
		elements:  uniqueSorted(cluster.CodeElements),
		covered:   make(map[int][]int),
		coveredBy: make(map[int][]int),
	}
	if tie == Descending {
		sort.Sort(sort.Reverse(sort.IntSlice(e.tests)))
	}

	inScope := make(map[int]bool, len(e.elements))
	for _, cid := range e.elements {
		inScope[cid] = true
	}
	for _, tid := range e.tests {
		for _, cid := range cov.CoveredElements(tid) {
			if inScope[cid] {
				e.covered[tid] = append(e.covered[tid], cid)
				e.coveredBy[cid] = append(e.coveredBy[cid], tid)
			}
		}
	}

	if revisions := data.Results().Revisions(); len(revisions) > 0 {
		e.revision = revisions[0]
		for _, rev := range revisions[1:] {
			if rev > e.revision {
				e.revision = rev
			}
		}
		e.hasRevision = true
	}
	return e
}

// candidates returns the remaining tests in tie-break order.
func (e *env) candidates() []int {
	out := make([]int, 0, len(e.remaining))
	for _, tid := range e.tests {
		if e.remaining[tid] {
			out = append(out, tid)
		}
	}
	return out
}

// best returns the remaining test with the highest score. The first candidate
// in tie-break order wins ties.
func (e *env) best(score func(tid int) float64) (int, float64) {
	bestID, bestScore := -1, 0.0
	for _, tid := range e.tests {
		if !e.remaining[tid] {
			continue
		}
		s := score(tid)
		if bestID < 0 || s > bestScore {
			bestID, bestScore = tid, s
		}
	}
	return bestID, bestScore
}

// outcome returns the result of coverage test tid at the held revision.
// Tests unknown to the results space count as not executed.
func (e *env) outcome(tid int) domain.Outcome {
	if !e.hasRevision {
		return domain.OutcomeNotExecuted
	}
	rid, err := e.data.TranslateTestCaseIDFromCoverageToResults(tid)
	if err != nil {
		return domain.OutcomeNotExecuted
	}
	return e.data.Results().Outcome(rid, e.revision)
}

// Engine drives a strategy and implements Prioritizer.
type Engine struct {
	name       string
	defaultTie TieBreak
	strategy   strategy

	env       *env
	selection []int
}

func newEngine(name string, s strategy, tie TieBreak) *Engine {
	return &Engine{name: name, strategy: s, defaultTie: tie}
}

func (e *Engine) Name() string { return e.name }

func (e *Engine) Init(data *domain.SelectionData, cluster *domain.ClusterDefinition, params domain.Params) error {
	tie := e.defaultTie
	raw, err := params.String("tieBreak", "")
	if err != nil {
		return err
	}
	if raw != "" {
		if tie, err = ParseTieBreak(raw); err != nil {
			return err
		}
	}
	e.env = newEnv(data, cluster, params, tie)
	return e.restart()
}

func (e *Engine) restart() error {
	e.selection = nil
	e.env.remaining = make(map[int]bool, len(e.env.tests))
	for _, tid := range e.env.tests {
		e.env.remaining[tid] = true
	}
	return e.strategy.start(e.env)
}

func (e *Engine) Reset(revision int) error {
	if e.env == nil {
		return fmt.Errorf("%w: %s is not initialized", domain.ErrInvalidState, e.name)
	}
	if !e.env.data.Results().HasRevision(revision) {
		return fmt.Errorf("%w: revision %d has no results", domain.ErrInvalidConfig, revision)
	}
	e.env.revision = revision
	e.env.hasRevision = true
	return e.restart()
}

func (e *Engine) Next() (int, error) {
	if e.env == nil {
		return 0, fmt.Errorf("%w: %s is not initialized", domain.ErrInvalidState, e.name)
	}
	if len(e.env.remaining) == 0 {
		return 0, fmt.Errorf("%w: %s selected all %d tests", domain.ErrExhausted, e.name, len(e.selection))
	}
	tid := e.strategy.choose(e.env)
	if !e.env.remaining[tid] {
		return 0, fmt.Errorf("%w: %s chose test %d twice", domain.ErrInvalidState, e.name, tid)
	}
	delete(e.env.remaining, tid)
	e.strategy.commit(e.env, tid)
	e.selection = append(e.selection, tid)
	return tid, nil
}

func (e *Engine) FillSelection(size int) []int {
	for len(e.selection) < size {
		if _, err := e.Next(); err != nil {
			break
		}
	}
	if size > len(e.selection) {
		size = len(e.selection)
	}
	if size < 0 {
		size = 0
	}
	return append([]int(nil), e.selection[:size]...)
}

// Selection returns the tests selected so far.
func (e *Engine) Selection() []int {
	return append([]int(nil), e.selection...)
}

func (e *Engine) SetState(prefix []int) error {
	if e.env == nil {
		return fmt.Errorf("%w: %s is not initialized", domain.ErrInvalidState, e.name)
	}
	if err := e.restart(); err != nil {
		return err
	}
	seen := make(map[int]bool, len(prefix))
	for _, tid := range prefix {
		if !e.env.remaining[tid] || seen[tid] {
			return fmt.Errorf("%w: prefix test %d is unknown or repeated", domain.ErrInvalidState, tid)
		}
		seen[tid] = true
	}

	a, ok := e.strategy.(adopter)
	for _, tid := range prefix {
		delete(e.env.remaining, tid)
		if !ok {
			e.strategy.commit(e.env, tid)
		}
	}
	if ok {
		a.adopt(e.env, prefix)
	}
	e.selection = append([]int(nil), prefix...)
	return nil
}

func uniqueSorted(ids []int) []int {
	out := append([]int(nil), ids...)
	sort.Ints(out)
	n := 0
	for i, v := range out {
		if i == 0 || v != out[n-1] {
			out[n] = v
			n++
		}
	}
	return out[:n]
}
