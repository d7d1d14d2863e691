package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/covkit/cmd/covkit/internal/ui"
	"github.com/example/covkit/internal/config"
)

var (
	prioData       dataFlags
	prioStep       config.PrioritizationStep
	prioParams     []string
	prioClustering string
	prioClusterArg []string
)

var prioritizeCmd = &cobra.Command{
	Use:   "prioritize <algorithm>",
	Short: "Run a prioritization algorithm and print the ordering",
	Long: `Order the tests of the data set, most valuable first.

With --clustering the data set is clustered first and --cluster picks the
cluster to prioritize; without it the whole coverage matrix is used.

EXAMPLES:
  covkit prioritize general-ignore --coverage cov.bin --size 10
  covkit prioritize flint --coverage cov.bin --results res.bin --revision 42
  covkit prioritize raptor --snapshot covkit.snapshots --name base \
      --clustering coverage --clustering-param sizes=25 --cluster 25

Run "covkit algorithms" for every algorithm name.`,
	Args: cobra.ExactArgs(1),
	RunE: runPrioritize,
}

func init() {
	prioData.register(prioritizeCmd)
	fl := prioritizeCmd.Flags()
	fl.IntVarP(&prioStep.Size, "size", "n", 0, "number of tests to select (0 = all)")
	fl.IntVar(&prioStep.Revision, "revision", 0, "revision for revision aware algorithms (0 = latest)")
	fl.StringVar(&prioStep.TieBreak, "tie-break", "", "ascending or descending (default per algorithm)")
	fl.StringVar(&prioStep.Cluster, "cluster", "", "cluster to prioritize")
	fl.StringArrayVarP(&prioParams, "param", "p", nil, "algorithm parameter as key=value (repeatable)")
	fl.StringVar(&prioClustering, "clustering", "", "clustering algorithm to run first")
	fl.StringArrayVar(&prioClusterArg, "clustering-param", nil, "clustering parameter as key=value (repeatable)")
}

func runPrioritize(cmd *cobra.Command, args []string) error {
	params, err := parseParams(prioParams)
	if err != nil {
		return err
	}
	job := prioData.job("prioritize")
	if prioClustering != "" {
		clusteringParams, err := parseParams(prioClusterArg)
		if err != nil {
			return err
		}
		job.Clustering = []config.ClusteringStep{{Algorithm: prioClustering, Params: clusteringParams}}
	}
	step := prioStep
	step.Algorithm = args[0]
	step.Params = params
	job.Prioritization = []config.PrioritizationStep{step}

	report, err := runJob(cmd, job)
	if err != nil {
		return err
	}
	for _, o := range report.Orderings {
		title := fmt.Sprintf("Ordering: %s", o.Algorithm)
		if o.Cluster != "" {
			title += fmt.Sprintf(" (cluster %s)", o.Cluster)
		}
		ui.PrintHeader(title)
		if o.Revision != 0 {
			ui.PrintInfo(fmt.Sprintf("Revision: %d", o.Revision))
		}
		ui.PrintList(o.Tests)
	}
	return stepErrors(report)
}
