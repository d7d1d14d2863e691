package codec

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/example/covkit/coverage/domain"
)

func sampleData() *domain.SelectionData {
	d := domain.NewSelectionData()
	cov := d.Coverage()
	cov.SetRelation("t0", "a.go:f", true)
	cov.SetRelation("t0", "a.go:g", true)
	cov.SetRelation("t1", "b.go:h", true)
	for i := 0; i < 11; i++ {
		cov.SetRelation("t2", string(rune('k'+i)), i%3 == 0)
	}

	res := d.Results()
	res.SetResult("t0", 100, domain.OutcomePassed)
	res.SetResult("t1", 100, domain.OutcomeFailed)
	res.SetResult("t1", -4, domain.OutcomePassed)

	ch := d.Changeset()
	ch.SetChanged("a.go:g", 100, true)
	ch.SetChanged("b.go:h", 7, true)

	d.Bugs().Add("a.go:f", domain.BugReport{Reported: 1600000000, Fixed: 1600003600})
	d.Bugs().Add("a.go:f", domain.BugReport{Reported: -5, Fixed: 0})
	return d
}

func TestCoverageRoundTrip(t *testing.T) {
	src := sampleData()
	dst := domain.NewSelectionData()
	require.NoError(t, DecodeCoverage(EncodeCoverage(src.Coverage()), dst))

	assert.Equal(t, src.Coverage().TestCases().Names(), dst.Coverage().TestCases().Names())
	assert.Equal(t, src.Coverage().CodeElements().Names(), dst.Coverage().CodeElements().Names())
	assert.True(t, src.Coverage().Bits().Equal(dst.Coverage().Bits()))
	assert.Equal(t, src.Coverage().Bits().Count(), dst.Coverage().Bits().Count())
}

func TestResultsRoundTrip(t *testing.T) {
	src := sampleData()
	dst := domain.NewSelectionData()
	require.NoError(t, DecodeResults(EncodeResults(src.Results()), dst))

	assert.Equal(t, src.Results().Revisions(), dst.Results().Revisions())
	for tid, name := range src.Results().TestCases().Names() {
		did, err := dst.Results().TestCases().ID(name)
		require.NoError(t, err)
		for _, rev := range src.Results().Revisions() {
			assert.Equal(t, src.Results().Outcome(tid, rev), dst.Results().Outcome(did, rev), "%s@%d", name, rev)
		}
	}
}

func TestChangesetAndBugsRoundTrip(t *testing.T) {
	src := sampleData()
	dst := domain.NewSelectionData()
	require.NoError(t, DecodeChangeset(EncodeChangeset(src.Changeset()), dst))
	require.NoError(t, DecodeBugs(EncodeBugs(src.Bugs()), dst))

	cid, err := dst.Changeset().CodeElements().ID("b.go:h")
	require.NoError(t, err)
	assert.True(t, dst.Changeset().IsChanged(cid, 7))
	assert.False(t, dst.Changeset().IsChanged(cid, 100))

	bid, err := dst.Bugs().CodeElements().ID("a.go:f")
	require.NoError(t, err)
	assert.Equal(t, []domain.BugReport{
		{Reported: 1600000000, Fixed: 1600003600},
		{Reported: -5, Fixed: 0},
	}, dst.Bugs().Reports(bid))
}

func TestDecodeRejectsBadShapes(t *testing.T) {
	header := appendHeader(nil, kindCoverage)
	header = appendStrings(header, fieldTest, []string{"t0", "t1"})
	header = appendStrings(header, fieldElement, []string{"c0", "c1", "c2"})
	fresh := func() []byte { return append([]byte(nil), header...) }

	tests := []struct {
		name string
		data []byte
	}{
		{
			name: "missing row",
			data: appendBits(fresh(), fieldRow, 3, func(int) bool { return true }),
		},
		{
			name: "row too long",
			data: appendBits(appendBits(fresh(), fieldRow, 3, func(int) bool { return true }),
				fieldRow, 9, func(int) bool { return false }),
		},
		{
			name: "bit past last column",
			data: appendBits(appendBits(fresh(), fieldRow, 3, func(int) bool { return true }),
				fieldRow, 8, func(i int) bool { return i == 5 }),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := domain.NewSelectionData()
			d.Coverage().SetRelation("keep", "me", true)

			err := DecodeCoverage(tt.data, d)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrDimensionMismatch), "got %v", err)
			assert.True(t, d.Coverage().TestCases().Contains("keep"), "failed decode must not touch d")
		})
	}
}

func TestDecodeRejectsWrongKindAndVersion(t *testing.T) {
	d := domain.NewSelectionData()
	assert.Error(t, DecodeResults(EncodeCoverage(d.Coverage()), d))

	future := protowire.AppendTag(nil, fieldKind, protowire.BytesType)
	future = protowire.AppendString(future, kindBugs)
	future = protowire.AppendTag(future, fieldVersion, protowire.VarintType)
	future = protowire.AppendVarint(future, Version+1)
	assert.Error(t, DecodeBugs(future, d))

	assert.Error(t, DecodeBugs([]byte{0xff}, d), "truncated tag")
}

func TestDecodeSkipsUnknownFields(t *testing.T) {
	src := sampleData()
	data := EncodeChangeset(src.Changeset())
	data = protowire.AppendTag(data, 42, protowire.BytesType)
	data = protowire.AppendString(data, "future")

	dst := domain.NewSelectionData()
	require.NoError(t, DecodeChangeset(data, dst))
	assert.Equal(t, src.Changeset().Revisions(), dst.Changeset().Revisions())
}

func TestSaveAndLoadFiles(t *testing.T) {
	dir := t.TempDir()
	paths := Paths{
		Coverage:  filepath.Join(dir, "coverage.bin"),
		Results:   filepath.Join(dir, "results.bin"),
		Changeset: filepath.Join(dir, "changeset.bin"),
		Bugs:      filepath.Join(dir, "bugs.bin"),
	}
	src := sampleData()
	require.NoError(t, Save(paths, src))

	dst := domain.NewSelectionData()
	require.NoError(t, Load(paths, dst))
	assert.Equal(t, src.Coverage().Bits().Count(), dst.Coverage().Bits().Count())
	assert.Equal(t, 1, dst.Bugs().Len())

	err := Load(Paths{Coverage: filepath.Join(dir, "missing.bin")}, dst)
	assert.Error(t, err)
}
