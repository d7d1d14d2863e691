package localization

import (
	"context"
	"errors"

	"github.com/example/covkit/coverage/domain"
)

// Localize builds the spectrum of cluster at revision and scores it.
func Localize(ctx context.Context, data *domain.SelectionData, cluster *domain.ClusterDefinition,
	revision int, formula Formula, workers int) (*Scores, error) {
	s, err := NewSpectrum(data, cluster, revision)
	if err != nil {
		return nil, err
	}
	return Compute(ctx, s, formula, workers)
}

// ChangedScore is the FLScore of one code element changed at a revision.
type ChangedScore struct {
	Name        string
	CodeElement int
	Suspicion   float64
	FLScore     float64
}

// ChangedReport is the outcome of ScoreChanged.
type ChangedReport struct {
	Scores []ChangedScore
	// TranslationFailures counts changed elements unknown to the coverage space.
	TranslationFailures int
	// Unscored counts changed elements known to coverage but outside the cluster.
	Unscored int
}

// ScoreChanged computes the FLScore of every code element changed at revision.
// Elements that cannot be translated into the coverage space are counted and
// skipped.
func ScoreChanged(data *domain.SelectionData, scores *Scores, revision int) (*ChangedReport, error) {
	ch := data.Changeset()
	report := &ChangedReport{}
	for _, chID := range ch.ChangedElements(revision) {
		cid, err := data.TranslateCodeElementIDFromChangesetToCoverage(chID)
		if errors.Is(err, domain.ErrTranslation) {
			report.TranslationFailures++
			continue
		}
		if err != nil {
			return nil, err
		}
		suspicion, ok := scores.Of(cid)
		if !ok {
			report.Unscored++
			continue
		}
		fl, err := scores.FLScore(cid)
		if err != nil {
			return nil, err
		}
		name, _ := ch.CodeElements().Name(chID)
		report.Scores = append(report.Scores, ChangedScore{
			Name:        name,
			CodeElement: cid,
			Suspicion:   suspicion,
			FLScore:     fl,
		})
	}
	return report, nil
}
