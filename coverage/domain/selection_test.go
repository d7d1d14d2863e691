package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDManagerStableIDs(t *testing.T) {
	m := NewIDManager()
	assert.Equal(t, 0, m.Add("a"))
	assert.Equal(t, 1, m.Add("b"))
	assert.Equal(t, 0, m.Add("a"), "re-adding returns the original id")
	assert.Equal(t, 2, m.Len())

	name, err := m.Name(1)
	require.NoError(t, err)
	assert.Equal(t, "b", name)

	_, err = m.Name(5)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, []string{"a", "b"}, m.Names())
}

func TestIDMapperLocalNumbering(t *testing.T) {
	global := NewIDManager()
	global.Add("x")
	global.Add("y")

	m := NewIDMapper(global)
	assert.Equal(t, 0, m.Add("y"))
	assert.Equal(t, 1, m.Add("z"))
	assert.Equal(t, 3, global.Len())

	gid, err := m.GlobalID(0)
	require.NoError(t, err)
	assert.Equal(t, 1, gid)

	_, err = m.ID("x")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, []string{"y", "z"}, m.Names())
}

func TestIDMapperTranslation(t *testing.T) {
	global := NewIDManager()
	a := NewIDMapper(global)
	b := NewIDMapper(global)
	for _, n := range []string{"p", "q", "r"} {
		a.Add(n)
	}
	for _, n := range []string{"r", "p"} {
		b.Add(n)
	}

	id, err := b.TranslateFrom(a, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, id)

	_, err = b.TranslateFrom(a, 1)
	assert.True(t, errors.Is(err, ErrTranslation), "q is absent from b")

	other := NewIDMapper(NewIDManager())
	other.Add("p")
	_, err = other.TranslateFrom(a, 0)
	assert.True(t, errors.Is(err, ErrTranslation))
}

func newFixture() *SelectionData {
	d := NewSelectionData()
	cov := d.Coverage()
	cov.SetRelation("t0", "c0", true)
	cov.SetRelation("t1", "c1", true)
	cov.SetRelation("t2", "c2", false)

	res := d.Results()
	res.SetResult("t2", 1, OutcomeFailed)
	res.SetResult("t0", 1, OutcomePassed)
	res.SetResult("tx", 1, OutcomePassed)

	ch := d.Changeset()
	ch.SetChanged("c2", 1, true)
	ch.SetChanged("cx", 1, true)
	ch.SetChanged("c0", 2, true)

	d.Bugs().Add("c1", BugReport{Reported: 10, Fixed: 20})
	d.Bugs().Add("cy", BugReport{Reported: 1, Fixed: 2})
	return d
}

func TestSelectionDataRoundTripTranslation(t *testing.T) {
	d := newFixture()

	for i := 0; i < d.Changeset().CodeElements().Len(); i++ {
		name, _ := d.Changeset().CodeElements().Name(i)
		covID, err := d.TranslateCodeElementIDFromChangesetToCoverage(i)
		if !d.Coverage().CodeElements().Contains(name) {
			assert.True(t, errors.Is(err, ErrTranslation), "element %s", name)
			continue
		}
		require.NoError(t, err)
		back, err := d.TranslateCodeElementIDFromCoverageToChangeset(covID)
		require.NoError(t, err)
		assert.Equal(t, i, back)
	}

	for i := 0; i < d.Results().TestCount(); i++ {
		name, _ := d.Results().TestCases().Name(i)
		covID, err := d.TranslateTestCaseIDFromResultsToCoverage(i)
		if !d.Coverage().TestCases().Contains(name) {
			assert.True(t, errors.Is(err, ErrTranslation), "test %s", name)
			continue
		}
		require.NoError(t, err)
		back, err := d.TranslateTestCaseIDFromCoverageToResults(covID)
		require.NoError(t, err)
		assert.Equal(t, i, back)
	}
}

func TestResultsOutcomes(t *testing.T) {
	d := newFixture()
	res := d.Results()
	tid, err := res.TestCases().ID("t2")
	require.NoError(t, err)

	assert.Equal(t, OutcomeFailed, res.Outcome(tid, 1))
	assert.Equal(t, OutcomeNotExecuted, res.Outcome(tid, 99))
	assert.Equal(t, []int{tid}, res.TestsWithOutcome(1, OutcomeFailed))
	assert.Len(t, res.TestsWithOutcome(1, OutcomePassed), 2)

	require.NoError(t, res.Set(tid, 1, OutcomeNotExecuted))
	assert.Equal(t, OutcomeNotExecuted, res.Outcome(tid, 1))
	assert.Error(t, res.Set(tid, 7, OutcomePassed))
}

func TestChangesetLookups(t *testing.T) {
	d := newFixture()
	ch := d.Changeset()
	assert.ElementsMatch(t, []int{0, 1}, ch.ChangedElements(1))
	assert.Nil(t, ch.ChangedElements(42))
	assert.Equal(t, []int{1, 2}, ch.Revisions())
}

func TestGlobalize(t *testing.T) {
	d := newFixture()
	d.Globalize()

	tests := d.TestCaseIDs().Len()
	elements := d.CodeElementIDs().Len()
	assert.Equal(t, tests, d.Coverage().TestCount())
	assert.Equal(t, elements, d.Coverage().CodeElementCount())
	assert.Equal(t, tests, d.Results().TestCount())
	assert.Equal(t, elements, d.Changeset().CodeElements().Len())
	assert.Equal(t, tests, d.Coverage().Bits().Rows())
	assert.Equal(t, elements, d.Coverage().Bits().Cols())

	// Existing relations survive the widening.
	tid, _ := d.Coverage().TestCases().ID("t0")
	cid, _ := d.Coverage().CodeElements().ID("c0")
	assert.True(t, d.Coverage().Covers(tid, cid))

	// Every changeset element now translates into coverage space.
	for i := 0; i < d.Changeset().CodeElements().Len(); i++ {
		_, err := d.TranslateCodeElementIDFromChangesetToCoverage(i)
		assert.NoError(t, err)
	}
}

func TestFilterToCoverage(t *testing.T) {
	d := newFixture()
	d.FilterToCoverage()

	assert.False(t, d.Results().TestCases().Contains("tx"))
	assert.False(t, d.Changeset().CodeElements().Contains("cx"))
	assert.False(t, d.Bugs().CodeElements().Contains("cy"))
	assert.Equal(t, 1, d.Bugs().Len())

	tid, err := d.Results().TestCases().ID("t2")
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, d.Results().Outcome(tid, 1))

	cid, err := d.Changeset().CodeElements().ID("c0")
	require.NoError(t, err)
	assert.True(t, d.Changeset().IsChanged(cid, 2))
}

func TestClusterDefinition(t *testing.T) {
	c := NewClusterDefinition()
	for i := 0; i < 4; i++ {
		c.AddTestCase(i)
	}
	c.AddCodeElement(3)
	c.AddCodeElement(1)

	c.RemoveTestCase(2)
	c.RemoveTestCase(2)
	assert.Equal(t, []int{0, 1, 3}, c.TestCases)

	c.RemoveCodeElement(9)
	assert.Equal(t, []int{3, 1}, c.CodeElements, "insertion order is preserved")

	clone := c.Clone()
	clone.AddTestCase(10)
	assert.Equal(t, 3, c.TestCaseCount())
	assert.Equal(t, 4, clone.TestCaseCount())
}

func TestFullCluster(t *testing.T) {
	d := NewSelectionData()
	for i := 0; i < 3; i++ {
		d.Coverage().SetRelation(fmt.Sprintf("t%d", i), fmt.Sprintf("c%d", i), true)
	}
	c := FullCluster(d.Coverage())
	assert.Equal(t, []int{0, 1, 2}, c.TestCases)
	assert.Equal(t, []int{0, 1, 2}, c.CodeElements)
}

func TestParams(t *testing.T) {
	p := Params{
		"sizes":   []any{10.0, 25, int64(50)},
		"list":    "1, 2,3",
		"count":   4.0,
		"bad":     2.5,
		"ratio":   "0.25",
		"name":    "ochiai",
		"numName": 3,
	}

	sizes, err := p.Ints("sizes", nil)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 25, 50}, sizes)

	list, err := p.Ints("list", nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, list)

	n, err := p.Int("count", 0)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = p.Int("bad", 0)
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	f, err := p.Float("ratio", 0)
	require.NoError(t, err)
	assert.Equal(t, 0.25, f)

	s, err := p.String("name", "")
	require.NoError(t, err)
	assert.Equal(t, "ochiai", s)

	_, err = p.String("numName", "")
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	def, err := p.Int("missing", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, def)

	folded := Params{"tiebreak": "ascending"}
	assert.True(t, folded.Has("tieBreak"))
	s, err = folded.String("tieBreak", "")
	require.NoError(t, err)
	assert.Equal(t, "ascending", s)
}
