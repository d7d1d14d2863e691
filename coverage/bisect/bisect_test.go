package bisect

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/covkit/coverage/domain"
)

// fixture: t0 covers {e0,e1}, t1 covers {e0}, t2 covers {e0,e2}, t3 covers everything.
func fixture() *domain.Coverage {
	d := domain.NewSelectionData()
	cov := d.Coverage()
	rows := map[string][]string{
		"t0": {"e0", "e1"},
		"t1": {"e0"},
		"t2": {"e0", "e2"},
		"t3": {"e0", "e1", "e2", "e3"},
	}
	for _, tc := range []string{"t0", "t1", "t2", "t3"} {
		cov.AddTestCase(tc)
	}
	for _, e := range []string{"e0", "e1", "e2", "e3"} {
		cov.AddCodeElement(e)
	}
	for tc, elems := range rows {
		for _, e := range elems {
			cov.SetRelation(tc, e, true)
		}
	}
	return cov
}

func TestBestSplitterPrefersHalvingTest(t *testing.T) {
	cov := fixture()
	c := NewClassifier(cov, []int{0, 1, 2, 3})

	tid, ok := c.BestSplitter(0, []int{0, 1, 2, 3}, nil)
	assert.True(t, ok)
	assert.Equal(t, 0, tid)

	_, ok = c.BestSplitter(0, []int{3}, nil)
	assert.False(t, ok, "a test covering the whole class does not split it")
}

func TestOrderRoundsDoubleResolution(t *testing.T) {
	cov := fixture()
	s := NewSequencer(cov, []int{3, 2, 1, 0}, []int{0, 1, 2, 3})

	var order []int
	for {
		tid, ok := s.Next()
		if !ok {
			break
		}
		order = append(order, tid)
		if len(order) == 3 {
			assert.Equal(t, 4, s.Classifier().Classes(), "two rounds isolate every element")
		}
	}
	assert.Equal(t, []int{0, 1, 2, 3}, order)
	assert.Equal(t, order, Order(cov, []int{0, 1, 2, 3}, []int{0, 1, 2, 3}))
}

func TestAdoptResumesFromPrefix(t *testing.T) {
	cov := fixture()
	s := NewSequencer(cov, []int{0, 1, 2, 3}, []int{0, 1, 2, 3})
	s.Adopt([]int{2, 7})

	var order []int
	for {
		tid, ok := s.Next()
		if !ok {
			break
		}
		order = append(order, tid)
	}
	assert.Equal(t, []int{0, 3, 1}, order)
	assert.Equal(t, 0, s.Remaining())
}

func TestClassifierRefine(t *testing.T) {
	cov := fixture()
	c := NewClassifier(cov, []int{0, 1, 1, 2, 3})
	assert.Equal(t, 4, c.Elements(), "duplicates are dropped")

	c.Refine(0)
	assert.Equal(t, 2, c.Classes())
	assert.Equal(t, []int{0, 1}, c.Members(0))
	assert.Equal(t, []int{2, 3}, c.Members(1))

	c.Refine(3)
	assert.Equal(t, 2, c.Classes(), "a test covering everything splits nothing")
}

func TestDescendingTieBreak(t *testing.T) {
	cov := fixture()
	// t0 and t2 both halve the single starting class; descending order prefers t2.
	s := NewSequencer(cov, []int{0, 1, 2, 3}, []int{0, 1, 2, 3}).Descending()
	tid, ok := s.Next()
	assert.True(t, ok)
	assert.Equal(t, 2, tid)
}
