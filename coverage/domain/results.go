package domain

import (
	"fmt"

	"github.com/example/covkit/coverage/bitmatrix"
)

// Outcome is the ternary result of a test case at one revision.
type Outcome int

const (
	OutcomeNotExecuted Outcome = iota
	OutcomePassed
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomePassed:
		return "PASSED"
	case OutcomeFailed:
		return "FAILED"
	default:
		return "NOT_EXECUTED"
	}
}

// Results is the test case x revision matrix of outcomes.
// It is stored as two bit matrices: executed, and passed (only meaningful when executed).
type Results struct {
	tests     *IDMapper
	revisions revisionIndex
	executed  *bitmatrix.BitMatrix
	passed    *bitmatrix.BitMatrix
}

// NewResults creates an empty results matrix whose test names live in testIDs.
func NewResults(testIDs *IDManager) *Results {
	return &Results{
		tests:     NewIDMapper(testIDs),
		revisions: newRevisionIndex(),
		executed:  bitmatrix.New(0, 0),
		passed:    bitmatrix.New(0, 0),
	}
}

// TestCases returns the test case id space.
func (r *Results) TestCases() *IDMapper { return r.tests }

// TestCount returns the number of test cases.
func (r *Results) TestCount() int { return r.tests.Len() }

// Revisions returns the known revision numbers in insertion order.
func (r *Results) Revisions() []int { return r.revisions.list() }

// AddTestCase registers a test case and returns its id.
func (r *Results) AddTestCase(name string) int {
	id := r.tests.Add(name)
	r.refit()
	return id
}

// AddRevision registers a revision number.
func (r *Results) AddRevision(rev int) {
	r.revisions.add(rev)
	r.refit()
}

func (r *Results) refit() {
	rows, cols := r.tests.Len(), len(r.revisions.revisions)
	if r.executed.Rows() != rows || r.executed.Cols() != cols {
		r.executed.Resize(rows, cols)
		r.passed.Resize(rows, cols)
	}
}

// SetResult records the outcome of test at rev, registering unknown names and revisions.
func (r *Results) SetResult(test string, rev int, outcome Outcome) {
	tid := r.AddTestCase(test)
	r.AddRevision(rev)
	_ = r.Set(tid, rev, outcome)
}

// Set records the outcome of test case tid at revision rev.
func (r *Results) Set(tid, rev int, outcome Outcome) error {
	col, err := r.revisions.index(rev)
	if err != nil {
		return err
	}
	if tid < 0 || tid >= r.tests.Len() {
		return fmt.Errorf("%w: results test id %d", ErrNotFound, tid)
	}
	r.executed.Set(tid, col, outcome != OutcomeNotExecuted)
	r.passed.Set(tid, col, outcome == OutcomePassed)
	return nil
}

// Outcome returns the outcome of test case tid at revision rev.
// Unknown tests and revisions read as not executed.
func (r *Results) Outcome(tid, rev int) Outcome {
	col, err := r.revisions.index(rev)
	if err != nil {
		return OutcomeNotExecuted
	}
	if !r.executed.Get(tid, col) {
		return OutcomeNotExecuted
	}
	if r.passed.Get(tid, col) {
		return OutcomePassed
	}
	return OutcomeFailed
}

// HasRevision reports whether rev is known.
func (r *Results) HasRevision(rev int) bool {
	_, err := r.revisions.index(rev)
	return err == nil
}

// TestsWithOutcome returns the test ids that have the given outcome at rev.
func (r *Results) TestsWithOutcome(rev int, outcome Outcome) []int {
	var out []int
	for tid := 0; tid < r.tests.Len(); tid++ {
		if r.Outcome(tid, rev) == outcome {
			out = append(out, tid)
		}
	}
	return out
}
