package domain

// SelectionData owns the coverage, results, changeset and bugset of one
// analysed project. Every matrix keeps its own local id spaces but all of them
// share two global registries, one for test cases and one for code elements.
//
// SelectionData is mutated only while it is being loaded; algorithms treat it
// as read-only.
type SelectionData struct {
	testIDs    *IDManager
	elementIDs *IDManager

	coverage  *Coverage
	results   *Results
	changeset *Changeset
	bugs      *Bugset
}

// NewSelectionData creates an empty data set.
func NewSelectionData() *SelectionData {
	d := &SelectionData{
		testIDs:    NewIDManager(),
		elementIDs: NewIDManager(),
	}
	d.coverage = NewCoverage(d.testIDs, d.elementIDs)
	d.results = NewResults(d.testIDs)
	d.changeset = NewChangeset(d.elementIDs)
	d.bugs = NewBugset(d.elementIDs)
	return d
}

// TestCaseIDs returns the global test case registry.
func (d *SelectionData) TestCaseIDs() *IDManager { return d.testIDs }

// CodeElementIDs returns the global code element registry.
func (d *SelectionData) CodeElementIDs() *IDManager { return d.elementIDs }

// Coverage returns the coverage matrix.
func (d *SelectionData) Coverage() *Coverage { return d.coverage }

// Results returns the results matrix.
func (d *SelectionData) Results() *Results { return d.results }

// Changeset returns the changeset matrix.
func (d *SelectionData) Changeset() *Changeset { return d.changeset }

// Bugs returns the bugset.
func (d *SelectionData) Bugs() *Bugset { return d.bugs }

// ResetCoverage replaces the coverage matrix with an empty one and returns it.
// Loaders use it before populating a fresh matrix.
func (d *SelectionData) ResetCoverage() *Coverage {
	d.coverage = NewCoverage(d.testIDs, d.elementIDs)
	return d.coverage
}

// ResetResults replaces the results matrix with an empty one and returns it.
func (d *SelectionData) ResetResults() *Results {
	d.results = NewResults(d.testIDs)
	return d.results
}

// ResetChangeset replaces the changeset with an empty one and returns it.
func (d *SelectionData) ResetChangeset() *Changeset {
	d.changeset = NewChangeset(d.elementIDs)
	return d.changeset
}

// ResetBugs replaces the bugset with an empty one and returns it.
func (d *SelectionData) ResetBugs() *Bugset {
	d.bugs = NewBugset(d.elementIDs)
	return d.bugs
}

// TranslateCodeElementIDFromCoverageToChangeset converts a coverage code element id
// into the changeset id space.
func (d *SelectionData) TranslateCodeElementIDFromCoverageToChangeset(id int) (int, error) {
	return d.changeset.elements.TranslateFrom(d.coverage.elements, id)
}

// TranslateCodeElementIDFromChangesetToCoverage converts a changeset code element id
// into the coverage id space.
func (d *SelectionData) TranslateCodeElementIDFromChangesetToCoverage(id int) (int, error) {
	return d.coverage.elements.TranslateFrom(d.changeset.elements, id)
}

// TranslateCodeElementIDFromCoverageToBugset converts a coverage code element id
// into the bugset id space.
func (d *SelectionData) TranslateCodeElementIDFromCoverageToBugset(id int) (int, error) {
	return d.bugs.elements.TranslateFrom(d.coverage.elements, id)
}

// TranslateTestCaseIDFromCoverageToResults converts a coverage test case id
// into the results id space.
func (d *SelectionData) TranslateTestCaseIDFromCoverageToResults(id int) (int, error) {
	return d.results.tests.TranslateFrom(d.coverage.tests, id)
}

// TranslateTestCaseIDFromResultsToCoverage converts a results test case id
// into the coverage id space.
func (d *SelectionData) TranslateTestCaseIDFromResultsToCoverage(id int) (int, error) {
	return d.coverage.tests.TranslateFrom(d.results.tests, id)
}

// Globalize extends every local id space with every name known to the global
// registries, so all matrices end up with the same shape.
func (d *SelectionData) Globalize() {
	d.coverage.tests.Extend()
	d.coverage.elements.Extend()
	d.coverage.refit()

	d.results.tests.Extend()
	d.results.refit()

	d.changeset.elements.Extend()
	d.changeset.refit()

	d.bugs.elements.Extend()
}

// FilterToCoverage drops every test case and code element from the results,
// changeset and bugset that the coverage matrix does not know about.
func (d *SelectionData) FilterToCoverage() {
	d.results = d.filterResults()
	d.changeset = d.filterChangeset()
	d.bugs = d.filterBugs()
}

func (d *SelectionData) filterResults() *Results {
	old := d.results
	filtered := NewResults(d.testIDs)
	revisions := old.Revisions()
	for _, rev := range revisions {
		filtered.AddRevision(rev)
	}
	for tid, name := range old.tests.Names() {
		if !d.coverage.tests.Contains(name) {
			continue
		}
		newID := filtered.AddTestCase(name)
		for _, rev := range revisions {
			_ = filtered.Set(newID, rev, old.Outcome(tid, rev))
		}
	}
	return filtered
}

func (d *SelectionData) filterChangeset() *Changeset {
	old := d.changeset
	filtered := NewChangeset(d.elementIDs)
	revisions := old.Revisions()
	for _, rev := range revisions {
		filtered.AddRevision(rev)
	}
	for cid, name := range old.elements.Names() {
		if !d.coverage.elements.Contains(name) {
			continue
		}
		newID := filtered.AddCodeElement(name)
		for _, rev := range revisions {
			_ = filtered.Set(newID, rev, old.IsChanged(cid, rev))
		}
	}
	return filtered
}

func (d *SelectionData) filterBugs() *Bugset {
	old := d.bugs
	filtered := NewBugset(d.elementIDs)
	for cid, name := range old.elements.Names() {
		if !d.coverage.elements.Contains(name) {
			continue
		}
		for _, r := range old.reports[cid] {
			filtered.Add(name, r)
		}
	}
	return filtered
}
