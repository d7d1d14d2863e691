package codec

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/example/covkit/coverage/domain"
)

// EncodeCoverage serializes the coverage matrix, one row per test case.
func EncodeCoverage(cov *domain.Coverage) []byte {
	b := appendHeader(nil, kindCoverage)
	b = appendStrings(b, fieldTest, cov.TestCases().Names())
	b = appendStrings(b, fieldElement, cov.CodeElements().Names())
	cols := cov.CodeElementCount()
	for tid := 0; tid < cov.TestCount(); tid++ {
		tid := tid
		b = appendBits(b, fieldRow, cols, func(cid int) bool { return cov.Covers(tid, cid) })
	}
	return b
}

// DecodeCoverage replaces the coverage matrix of d with the content of data.
// d is left untouched when data is malformed.
func DecodeCoverage(data []byte, d *domain.SelectionData) error {
	rec, err := decode(data, kindCoverage)
	if err != nil {
		return err
	}
	if err := checkRows("coverage", rec.rows, len(rec.tests)); err != nil {
		return err
	}
	cells := make([][]int, len(rec.rows))
	for i, row := range rec.rows {
		if cells[i], err = unpackBits(row, len(rec.elements)); err != nil {
			return fmt.Errorf("coverage row %q: %w", rec.tests[i], err)
		}
	}

	cov := d.ResetCoverage()
	tids := make([]int, len(rec.tests))
	for i, name := range rec.tests {
		tids[i] = cov.AddTestCase(name)
	}
	cids := make([]int, len(rec.elements))
	for i, name := range rec.elements {
		cids[i] = cov.AddCodeElement(name)
	}
	for i, set := range cells {
		for _, col := range set {
			if err := cov.Set(tids[i], cids[col], true); err != nil {
				return err
			}
		}
	}
	return nil
}

// EncodeResults serializes the results matrix. Each test contributes one
// executed row and one passed row over the revision list.
func EncodeResults(res *domain.Results) []byte {
	b := appendHeader(nil, kindResults)
	b = appendStrings(b, fieldTest, res.TestCases().Names())
	revisions := res.Revisions()
	b = appendRevisions(b, revisions)
	for tid := 0; tid < res.TestCount(); tid++ {
		tid := tid
		b = appendBits(b, fieldExecuted, len(revisions), func(i int) bool {
			return res.Outcome(tid, revisions[i]) != domain.OutcomeNotExecuted
		})
		b = appendBits(b, fieldPassed, len(revisions), func(i int) bool {
			return res.Outcome(tid, revisions[i]) == domain.OutcomePassed
		})
	}
	return b
}

// DecodeResults replaces the results matrix of d with the content of data.
func DecodeResults(data []byte, d *domain.SelectionData) error {
	rec, err := decode(data, kindResults)
	if err != nil {
		return err
	}
	if err := checkRows("results executed", rec.executed, len(rec.tests)); err != nil {
		return err
	}
	if err := checkRows("results passed", rec.passed, len(rec.tests)); err != nil {
		return err
	}
	n := len(rec.revisions)
	executed := make([][]int, len(rec.tests))
	passed := make([]map[int]bool, len(rec.tests))
	for i := range rec.tests {
		if executed[i], err = unpackBits(rec.executed[i], n); err != nil {
			return fmt.Errorf("results row %q: %w", rec.tests[i], err)
		}
		set, perr := unpackBits(rec.passed[i], n)
		if perr != nil {
			return fmt.Errorf("results row %q: %w", rec.tests[i], perr)
		}
		passed[i] = make(map[int]bool, len(set))
		for _, col := range set {
			passed[i][col] = true
		}
	}

	res := d.ResetResults()
	for _, rev := range rec.revisions {
		res.AddRevision(rev)
	}
	for i, name := range rec.tests {
		tid := res.AddTestCase(name)
		for _, col := range executed[i] {
			outcome := domain.OutcomeFailed
			if passed[i][col] {
				outcome = domain.OutcomePassed
			}
			if err := res.Set(tid, rec.revisions[col], outcome); err != nil {
				return err
			}
		}
	}
	return nil
}

// EncodeChangeset serializes the changeset, one row per code element.
func EncodeChangeset(ch *domain.Changeset) []byte {
	b := appendHeader(nil, kindChangeset)
	b = appendStrings(b, fieldElement, ch.CodeElements().Names())
	revisions := ch.Revisions()
	b = appendRevisions(b, revisions)
	for cid := 0; cid < ch.CodeElements().Len(); cid++ {
		cid := cid
		b = appendBits(b, fieldRow, len(revisions), func(i int) bool {
			return ch.IsChanged(cid, revisions[i])
		})
	}
	return b
}

// DecodeChangeset replaces the changeset of d with the content of data.
func DecodeChangeset(data []byte, d *domain.SelectionData) error {
	rec, err := decode(data, kindChangeset)
	if err != nil {
		return err
	}
	if err := checkRows("changeset", rec.rows, len(rec.elements)); err != nil {
		return err
	}
	cells := make([][]int, len(rec.rows))
	for i, row := range rec.rows {
		if cells[i], err = unpackBits(row, len(rec.revisions)); err != nil {
			return fmt.Errorf("changeset row %q: %w", rec.elements[i], err)
		}
	}

	ch := d.ResetChangeset()
	for _, rev := range rec.revisions {
		ch.AddRevision(rev)
	}
	for i, name := range rec.elements {
		cid := ch.AddCodeElement(name)
		for _, col := range cells[i] {
			if err := ch.Set(cid, rec.revisions[col], true); err != nil {
				return err
			}
		}
	}
	return nil
}

// EncodeBugs serializes the bugset as a list of (element, reported, fixed) entries.
func EncodeBugs(bugs *domain.Bugset) []byte {
	b := appendHeader(nil, kindBugs)
	for cid, name := range bugs.CodeElements().Names() {
		for _, report := range bugs.Reports(cid) {
			b = protowire.AppendTag(b, fieldBug, protowire.BytesType)
			b = protowire.AppendBytes(b, encodeBug(name, report))
		}
	}
	return b
}

// DecodeBugs replaces the bugset of d with the content of data.
func DecodeBugs(data []byte, d *domain.SelectionData) error {
	rec, err := decode(data, kindBugs)
	if err != nil {
		return err
	}
	for _, bug := range rec.bugs {
		if bug.element == "" {
			return fmt.Errorf("%w: bug entry without code element", domain.ErrDimensionMismatch)
		}
	}
	bugs := d.ResetBugs()
	for _, bug := range rec.bugs {
		bugs.Add(bug.element, bug.report)
	}
	return nil
}
