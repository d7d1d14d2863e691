package batch

import (
	"github.com/example/covkit/coverage/domain"
	"github.com/example/covkit/coverage/localization"
)

// Report is the outcome of one job.
type Report struct {
	RunID    string
	Job      string
	Clusters domain.ClusterMap

	// ClusterSources maps a cluster name to the algorithm that built it.
	ClusterSources map[string]string

	Orderings    []Ordering
	Localization *Localization
	Failures     []error
}

// Ordering is the result of one prioritization step.
type Ordering struct {
	Algorithm string
	Cluster   string
	Revision  int
	Tests     []string
}

// Localization is the result of the localization step.
type Localization struct {
	Technique string
	Revision  int
	Ranked    []RankedElement
	Changed   *localization.ChangedReport
}

// RankedElement is a code element with its suspiciousness.
type RankedElement struct {
	Name      string
	Suspicion float64
}
