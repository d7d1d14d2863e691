package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/example/covkit/cmd/covkit/internal/ui"
	"github.com/example/covkit/internal/config"
)

var (
	clusterData   dataFlags
	clusterParams []string
)

var clusterCmd = &cobra.Command{
	Use:   "cluster <algorithm>",
	Short: "Run a clustering algorithm and print the clusters",
	Long: `Split the data set into clusters of tests and code elements.

Sized algorithms (coverage, duplation, hamming, ochiai, dice, jaccard) build one
cluster per size in the "sizes" parameter, named after the percentage of code
elements it holds. A size that cannot be built is reported and the others are
still printed.

EXAMPLES:
  covkit cluster one-cluster --coverage cov.bin
  covkit cluster coverage --coverage cov.bin --param sizes=10,50
  covkit cluster label-test-codeelements --coverage cov.bin \
      --param testLabels=tests.yaml --param codeElementLabels=elements.yaml

Run "covkit algorithms" for every algorithm name.`,
	Args: cobra.ExactArgs(1),
	RunE: runCluster,
}

func init() {
	clusterData.register(clusterCmd)
	clusterCmd.Flags().StringArrayVarP(&clusterParams, "param", "p", nil, "algorithm parameter as key=value (repeatable)")
}

func runCluster(cmd *cobra.Command, args []string) error {
	params, err := parseParams(clusterParams)
	if err != nil {
		return err
	}
	job := clusterData.job("cluster")
	job.Clustering = []config.ClusteringStep{{Algorithm: args[0], Params: params}}

	report, err := runJob(cmd, job)
	if err != nil {
		return err
	}

	ui.PrintHeader(fmt.Sprintf("Clusters: %s", args[0]))
	if len(report.Clusters) == 0 {
		ui.PrintWarning("No clusters built")
	}
	rows := make([][]string, 0, len(report.Clusters))
	for _, name := range report.Clusters.Names() {
		c := report.Clusters[name]
		rows = append(rows, []string{name, strconv.Itoa(len(c.TestCases)), strconv.Itoa(len(c.CodeElements))})
	}
	ui.PrintTable([]string{"Cluster", "Tests", "Code elements"}, rows)
	return stepErrors(report)
}
