package domain

// BugReport is one report/fix pair for a code element, as unix timestamps.
type BugReport struct {
	Reported int64
	Fixed    int64
}

// Bugset maps code elements to their bug reports.
type Bugset struct {
	elements *IDMapper
	reports  map[int][]BugReport
}

// NewBugset creates an empty bugset whose names live in elementIDs.
func NewBugset(elementIDs *IDManager) *Bugset {
	return &Bugset{
		elements: NewIDMapper(elementIDs),
		reports:  make(map[int][]BugReport),
	}
}

// CodeElements returns the code element id space.
func (b *Bugset) CodeElements() *IDMapper { return b.elements }

// Add appends a report for element.
func (b *Bugset) Add(element string, report BugReport) {
	cid := b.elements.Add(element)
	b.reports[cid] = append(b.reports[cid], report)
}

// Reports returns the reports of code element cid.
func (b *Bugset) Reports(cid int) []BugReport {
	return b.reports[cid]
}

// Len returns the number of code elements with at least one report.
func (b *Bugset) Len() int { return len(b.reports) }
