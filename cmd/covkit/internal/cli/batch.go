package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/covkit/cmd/covkit/internal/ui"
	"github.com/example/covkit/internal/batch"
	"github.com/example/covkit/internal/storage/sqlite"
)

var (
	batchDatabase    string
	batchMetricsFile string
)

var batchCmd = &cobra.Command{
	Use:   "batch <job-file>...",
	Short: "Run job files",
	Long: `Run every step of each job file. A job that fails to load its data set
is skipped; a step that fails is reported and the remaining steps still run.

A job records its runs in output.database when set. --database records every
job into one file instead.

EXAMPLES:
  covkit batch nightly.yaml
  covkit batch jobs/*.yaml --database runs.db --metrics-file covkit.prom`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVar(&batchDatabase, "database", "", "SQLite file recording every run")
	batchCmd.Flags().StringVar(&batchMetricsFile, "metrics-file", "", "write run metrics here when done")
}

func runBatch(cmd *cobra.Command, args []string) error {
	driver, closeDriver, err := newDriver(cmd.Context(), batchDatabase)
	if err != nil {
		return err
	}
	defer closeDriver()

	summary, err := runBatchOnce(cmd.Context(), driver, args, batchMetricsFile)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d jobs failed", summary.Failed, summary.Jobs)
	}
	return nil
}

// newDriver builds a driver, recording into database when set.
func newDriver(ctx context.Context, database string) (*batch.Driver, func(), error) {
	if database == "" {
		return batch.New(logger), func() {}, nil
	}
	store, err := sqlite.Open(ctx, database)
	if err != nil {
		return nil, nil, err
	}
	closeStore := func() {
		if err := store.Close(); err != nil {
			logger.Warn("close database", zap.Error(err))
		}
	}
	return batch.New(logger, batch.WithStorage(store)), closeStore, nil
}

func runBatchOnce(ctx context.Context, driver *batch.Driver, paths []string, metricsFile string) (*batch.Summary, error) {
	start := time.Now()
	summary, err := driver.RunFiles(ctx, paths)
	if err != nil {
		return summary, err
	}
	printSummary(summary, time.Since(start))

	if metricsFile != "" {
		if err := driver.Metrics().WriteTextfile(metricsFile); err != nil {
			return summary, err
		}
	}
	return summary, nil
}

func printSummary(summary *batch.Summary, elapsed time.Duration) {
	rows := make([][]string, 0, len(summary.Reports))
	for _, r := range summary.Reports {
		rows = append(rows, []string{
			r.Job,
			r.RunID[:8],
			strconv.Itoa(len(r.Clusters)),
			strconv.Itoa(len(r.Orderings)),
			strconv.FormatBool(r.Localization != nil),
			strconv.Itoa(len(r.Failures)),
		})
	}
	ui.PrintTable([]string{"Job", "Run", "Clusters", "Orderings", "Localized", "Failures"}, rows)
	for _, r := range summary.Reports {
		for _, f := range r.Failures {
			ui.PrintError(fmt.Sprintf("%s: %v", r.Job, f))
		}
	}
	if skipped := summary.Jobs - len(summary.Reports); skipped > 0 {
		ui.PrintWarning(fmt.Sprintf("%d job files could not be loaded (see log)", skipped))
	}
	ui.PrintSummary(summary.Jobs, summary.Failed, elapsed)
}
