package domain

// Cluster is a cluster definition produced by a run, stored by name.
type Cluster struct {
	RunID     string
	Algorithm string
	Name      string
	TestCases []string
	Elements  []string
}

// Ordering is a prioritized test sequence produced by a run.
type Ordering struct {
	RunID     string
	Algorithm string
	Cluster   string
	Revision  int
	Tests     []string
}

// Score is the suspiciousness of one code element.
type Score struct {
	RunID       string
	Technique   string
	Revision    int
	CodeElement string
	Suspicion   float64

	// FLScore is set for elements changed at Revision, otherwise nil.
	FLScore *float64
}
