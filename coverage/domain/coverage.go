package domain

import (
	"fmt"

	"github.com/example/covkit/coverage/bitmatrix"
)

// Coverage is the test case x code element relation.
// A set bit at (t, c) means test case t executed code element c.
type Coverage struct {
	tests    *IDMapper
	elements *IDMapper
	bits     *bitmatrix.BitMatrix
}

// NewCoverage creates an empty coverage matrix whose names live in the given registries.
func NewCoverage(testIDs, elementIDs *IDManager) *Coverage {
	return &Coverage{
		tests:    NewIDMapper(testIDs),
		elements: NewIDMapper(elementIDs),
		bits:     bitmatrix.New(0, 0),
	}
}

// TestCases returns the test case id space.
func (c *Coverage) TestCases() *IDMapper { return c.tests }

// CodeElements returns the code element id space.
func (c *Coverage) CodeElements() *IDMapper { return c.elements }

// Bits exposes the underlying matrix. Callers must treat it as read-only.
func (c *Coverage) Bits() *bitmatrix.BitMatrix { return c.bits }

// TestCount returns the number of test cases.
func (c *Coverage) TestCount() int { return c.tests.Len() }

// CodeElementCount returns the number of code elements.
func (c *Coverage) CodeElementCount() int { return c.elements.Len() }

// AddTestCase registers a test case and returns its id.
func (c *Coverage) AddTestCase(name string) int {
	id := c.tests.Add(name)
	c.refit()
	return id
}

// AddCodeElement registers a code element and returns its id.
func (c *Coverage) AddCodeElement(name string) int {
	id := c.elements.Add(name)
	c.refit()
	return id
}

func (c *Coverage) refit() {
	if c.bits.Rows() != c.tests.Len() || c.bits.Cols() != c.elements.Len() {
		c.bits.Resize(c.tests.Len(), c.elements.Len())
	}
}

// SetRelation records whether test covers element, registering unknown names.
func (c *Coverage) SetRelation(test, element string, covered bool) {
	tid := c.AddTestCase(test)
	cid := c.AddCodeElement(element)
	c.bits.Set(tid, cid, covered)
}

// Set records whether test case tid covers code element cid.
func (c *Coverage) Set(tid, cid int, covered bool) error {
	if !c.bits.Set(tid, cid, covered) {
		return fmt.Errorf("%w: coverage position (%d, %d) outside %dx%d",
			ErrNotFound, tid, cid, c.bits.Rows(), c.bits.Cols())
	}
	return nil
}

// Covers reports whether test case tid covers code element cid.
func (c *Coverage) Covers(tid, cid int) bool {
	return c.bits.Get(tid, cid)
}

// CoveredElements returns the code elements covered by a test case.
func (c *Coverage) CoveredElements(tid int) []int {
	return c.bits.Row(tid).Indices()
}

// CoveringTests returns the test cases covering a code element.
func (c *Coverage) CoveringTests(cid int) []int {
	return c.bits.Column(cid).Indices()
}

// revisionIndex maps revision numbers onto dense column indices.
type revisionIndex struct {
	revisions []int
	byRev     map[int]int
}

func newRevisionIndex() revisionIndex {
	return revisionIndex{byRev: make(map[int]int)}
}

func (r *revisionIndex) add(rev int) int {
	if idx, ok := r.byRev[rev]; ok {
		return idx
	}
	idx := len(r.revisions)
	r.revisions = append(r.revisions, rev)
	r.byRev[rev] = idx
	return idx
}

func (r *revisionIndex) index(rev int) (int, error) {
	idx, ok := r.byRev[rev]
	if !ok {
		return 0, fmt.Errorf("%w: revision %d", ErrNotFound, rev)
	}
	return idx, nil
}

func (r *revisionIndex) list() []int {
	out := make([]int, len(r.revisions))
	copy(out, r.revisions)
	return out
}
