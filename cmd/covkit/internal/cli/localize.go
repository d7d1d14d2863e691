package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/example/covkit/cmd/covkit/internal/ui"
	"github.com/example/covkit/internal/config"
)

var (
	locData       dataFlags
	locStep       config.LocalizationStep
	locParams     []string
	locClustering string
	locClusterArg []string
	locTop        int
)

var localizeCmd = &cobra.Command{
	Use:   "localize",
	Short: "Rank code elements by suspiciousness for a revision",
	Long: `Score every code element of the data set (or of one cluster) with a fault
localization technique, using the test results of one revision.

When the data set has a changeset, the code elements changed at the revision
are listed with their FL score: 1 means the element ranks first, 0 last.

TECHNIQUES:
  ochiai, tarantula, jaccard, dstar (parameter star, default 2)

EXAMPLES:
  covkit localize --coverage cov.bin --results res.bin --changeset ch.bin
  covkit localize --snapshot covkit.snapshots --name base --technique dstar -p star=3 --top 50`,
	Args: cobra.NoArgs,
	RunE: runLocalize,
}

func init() {
	locData.register(localizeCmd)
	fl := localizeCmd.Flags()
	fl.StringVarP(&locStep.Technique, "technique", "t", "ochiai", "fault localization technique")
	fl.IntVar(&locStep.Revision, "revision", 0, "revision to localize (0 = latest)")
	fl.IntVar(&locStep.Workers, "workers", 0, "parallel workers (0 = number of CPUs)")
	fl.StringVar(&locStep.Cluster, "cluster", "", "cluster to localize in")
	fl.StringArrayVarP(&locParams, "param", "p", nil, "technique parameter as key=value (repeatable)")
	fl.StringVar(&locClustering, "clustering", "", "clustering algorithm to run first")
	fl.StringArrayVar(&locClusterArg, "clustering-param", nil, "clustering parameter as key=value (repeatable)")
	fl.IntVar(&locTop, "top", 20, "number of code elements to print (0 = all)")
}

func runLocalize(cmd *cobra.Command, args []string) error {
	params, err := parseParams(locParams)
	if err != nil {
		return err
	}
	job := locData.job("localize")
	if locClustering != "" {
		clusteringParams, err := parseParams(locClusterArg)
		if err != nil {
			return err
		}
		job.Clustering = []config.ClusteringStep{{Algorithm: locClustering, Params: clusteringParams}}
	}
	step := locStep
	step.Params = params
	job.Localization = &step

	report, err := runJob(cmd, job)
	if err != nil {
		return err
	}
	l := report.Localization
	if l == nil {
		return stepErrors(report)
	}

	ui.PrintHeader(fmt.Sprintf("Suspiciousness: %s, revision %d", l.Technique, l.Revision))
	ranked := l.Ranked
	if locTop > 0 && len(ranked) > locTop {
		ranked = ranked[:locTop]
	}
	rows := make([][]string, 0, len(ranked))
	for i, e := range ranked {
		rows = append(rows, []string{strconv.Itoa(i + 1), e.Name, ui.FormatScore(e.Suspicion)})
	}
	ui.PrintTable([]string{"Rank", "Code element", "Suspicion"}, rows)
	if len(ranked) < len(l.Ranked) {
		ui.PrintInfo(fmt.Sprintf("... %d more", len(l.Ranked)-len(ranked)))
	}

	if ch := l.Changed; ch != nil && len(ch.Scores) > 0 {
		ui.PrintHeader("Changed code elements")
		rows = rows[:0]
		for _, s := range ch.Scores {
			rows = append(rows, []string{s.Name, ui.FormatScore(s.Suspicion), ui.FormatScore(s.FLScore)})
		}
		ui.PrintTable([]string{"Code element", "Suspicion", "FL score"}, rows)
	}
	if ch := l.Changed; ch != nil {
		if ch.TranslationFailures > 0 {
			ui.PrintWarning(fmt.Sprintf("%d changed code elements are not in the coverage matrix", ch.TranslationFailures))
		}
		if ch.Unscored > 0 {
			ui.PrintWarning(fmt.Sprintf("%d changed code elements are outside the cluster", ch.Unscored))
		}
	}
	return stepErrors(report)
}
