package localization

import (
	"context"
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/covkit/coverage/domain"
)

const revision = 1

// newFixture has five tests, t0..t2 failing and t3, t4 passing, and 100 code
// elements "0".."99":
//
//	"0"        covered by t0
//	"1"        covered by nobody
//	"2"        covered by t0, t3, t4
//	"3"        covered by t1
//	"4".."35"  covered by t0, t1
//	"36".."99" covered by t3
func newFixture() *domain.SelectionData {
	d := domain.NewSelectionData()
	cov := d.Coverage()
	for i := 0; i < 5; i++ {
		cov.AddTestCase("t" + strconv.Itoa(i))
	}
	for e := 0; e < 100; e++ {
		cov.AddCodeElement(strconv.Itoa(e))
	}
	cover := func(elem int, tests ...int) {
		for _, tid := range tests {
			cov.SetRelation("t"+strconv.Itoa(tid), strconv.Itoa(elem), true)
		}
	}
	cover(0, 0)
	cover(2, 0, 3, 4)
	cover(3, 1)
	for e := 4; e <= 35; e++ {
		cover(e, 0, 1)
	}
	for e := 36; e <= 99; e++ {
		cover(e, 3)
	}

	res := d.Results()
	for i := 0; i < 5; i++ {
		outcome := domain.OutcomePassed
		if i < 3 {
			outcome = domain.OutcomeFailed
		}
		res.SetResult("t"+strconv.Itoa(i), revision, outcome)
	}
	return d
}

func scoresFor(t *testing.T, d *domain.SelectionData, name string) *Scores {
	t.Helper()
	formula, err := Lookup(name, nil)
	require.NoError(t, err)
	scores, err := Localize(context.Background(), d, domain.FullCluster(d.Coverage()), revision, formula, 4)
	require.NoError(t, err)
	return scores
}

func elementID(t *testing.T, d *domain.SelectionData, name string) int {
	t.Helper()
	cid, err := d.Coverage().CodeElements().ID(name)
	require.NoError(t, err)
	return cid
}

func TestOchiaiAndFLScore(t *testing.T) {
	d := newFixture()
	scores := scoresFor(t, d, OchiaiName)

	c0 := elementID(t, d, "0")
	v, ok := scores.Of(c0)
	require.True(t, ok)
	assert.InDelta(t, 0.57735026918962584, v, 1e-15)

	fl, err := scores.FLScore(c0)
	require.NoError(t, err)
	assert.InDelta(t, 0.67171717171717171, fl, 1e-12)
}

func TestTarantula(t *testing.T) {
	d := newFixture()
	scores := scoresFor(t, d, TarantulaName)

	v, _ := scores.Of(elementID(t, d, "0"))
	assert.Equal(t, 1.0, v)
	v, _ = scores.Of(elementID(t, d, "2"))
	assert.InDelta(t, 0.25, v, 1e-15)
	v, _ = scores.Of(elementID(t, d, "1"))
	assert.Zero(t, v)
}

func TestFormulas(t *testing.T) {
	tests := []struct {
		name    string
		formula Formula
		counts  Counts
		want    float64
	}{
		{"ochiai no failures", Ochiai, Counts{EP: 3, NP: 1}, 0},
		{"ochiai", Ochiai, Counts{EF: 2, NF: 1, EP: 1}, 2 / math.Sqrt(9)},
		{"tarantula all zero", Tarantula, Counts{}, 0},
		{"tarantula only failing", Tarantula, Counts{EF: 1, NF: 1}, 1},
		{"jaccard", Jaccard, Counts{EF: 2, NF: 1, EP: 1, NP: 5}, 0.5},
		{"jaccard empty", Jaccard, Counts{NP: 2}, 0},
		{"dstar", DStar(2), Counts{EF: 3, NF: 1, EP: 2}, 3},
		{"dstar perfect", DStar(2), Counts{EF: 3}, math.Inf(1)},
		{"dstar nothing", DStar(2), Counts{NP: 4}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.formula(tt.counts)
			if math.IsInf(tt.want, 1) {
				assert.True(t, math.IsInf(got, 1))
				return
			}
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestLookup(t *testing.T) {
	_, err := Lookup("nope", nil)
	assert.True(t, errors.Is(err, domain.ErrUnknownAlgorithm))

	_, err = Lookup(DStarName, domain.Params{"star": -1})
	assert.True(t, errors.Is(err, domain.ErrInvalidConfig))

	f, err := Lookup(DStarName, domain.Params{"star": 3})
	require.NoError(t, err)
	assert.Equal(t, 8.0, f(Counts{EF: 2, EP: 1}))

	assert.Equal(t, []string{"dstar", "jaccard", "ochiai", "tarantula"}, Techniques())
}

func TestComputeIsIndependentOfWorkerCount(t *testing.T) {
	d := newFixture()
	s, err := NewSpectrum(d, domain.FullCluster(d.Coverage()), revision)
	require.NoError(t, err)

	one, err := Compute(context.Background(), s, Ochiai, 1)
	require.NoError(t, err)
	for _, workers := range []int{0, 3, 7, 500} {
		many, err := Compute(context.Background(), s, Ochiai, workers)
		require.NoError(t, err)
		assert.Equal(t, one.values, many.values, "workers=%d", workers)
	}
}

func TestComputeHonoursCancellation(t *testing.T) {
	d := newFixture()
	s, err := NewSpectrum(d, domain.FullCluster(d.Coverage()), revision)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Compute(ctx, s, Ochiai, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSpectrumRequiresRevision(t *testing.T) {
	d := newFixture()
	_, err := NewSpectrum(d, domain.FullCluster(d.Coverage()), 42)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestSpectrumCountsUntranslatableTestsAsNotExecuted(t *testing.T) {
	d := newFixture()
	d.Coverage().SetRelation("t-new", "0", true)

	s, err := NewSpectrum(d, domain.FullCluster(d.Coverage()), revision)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Failed)
	assert.Equal(t, 2, s.Passed)
	assert.Equal(t, Counts{EF: 1, NF: 2, EP: 0, NP: 2}, s.Counts[s.Index[elementID(t, d, "0")]])
}

func TestScoreChanged(t *testing.T) {
	d := newFixture()
	ch := d.Changeset()
	ch.SetChanged("0", revision, true)
	ch.SetChanged("36", revision, true)
	ch.SetChanged("deleted.go:f", revision, true)
	ch.SetChanged("2", 99, true)

	scores := scoresFor(t, d, OchiaiName)
	report, err := ScoreChanged(d, scores, revision)
	require.NoError(t, err)

	assert.Equal(t, 1, report.TranslationFailures)
	require.Len(t, report.Scores, 2)
	assert.Equal(t, "0", report.Scores[0].Name)
	assert.InDelta(t, 0.67171717171717171, report.Scores[0].FLScore, 1e-12)
	assert.Equal(t, "36", report.Scores[1].Name)
	assert.Zero(t, report.Scores[1].Suspicion)
}

func TestFLScoreEdgeCases(t *testing.T) {
	s := &Spectrum{Elements: []int{7}, Counts: []Counts{{EF: 1}}, Index: map[int]int{7: 0}}
	scores, err := Compute(context.Background(), s, Ochiai, 1)
	require.NoError(t, err)

	fl, err := scores.FLScore(7)
	require.NoError(t, err)
	assert.Equal(t, 1.0, fl)

	_, err = scores.FLScore(8)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
