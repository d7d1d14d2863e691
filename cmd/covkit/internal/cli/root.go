package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/covkit/internal/logging"
)

var (
	logLevel  string
	logFormat string

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "covkit",
	Short: "Cluster, prioritize and localize tests from coverage data",
	Long: `covkit works on a data set made of a coverage matrix (which tests cover
which code elements), test results per revision, a changeset (which code
elements changed at each revision) and optionally a bug set.

It can:
  - split the data set into clusters of tests and code elements
  - order tests so that the most informative ones run first
  - rank code elements by how suspicious they are for a failing revision

WORKFLOW:
  1. covkit generate --out data/          (or export real data in the codec format)
  2. covkit import base --coverage data/coverage.bin --results data/results.bin
  3. covkit prioritize raptor --snapshot covkit.snapshots --name base
  4. covkit batch nightly.yaml             (repeatable jobs, recorded in SQLite)

EXAMPLES:
  # Build coverage based clusters of 10% and 50% of the code elements
  covkit cluster coverage --coverage cov.bin --param sizes=10,50

  # Pick the first 20 tests for revision 42
  covkit prioritize flint --coverage cov.bin --results res.bin --revision 42 --size 20

  # Rank code elements with Tarantula
  covkit localize --coverage cov.bin --results res.bin --changeset ch.bin --technique tarantula

  # Re-run a job whenever its inputs change
  covkit watch nightly.yaml`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(logging.Config{Level: logLevel, Format: logFormat})
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (console, json)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(clusterCmd)
	rootCmd.AddCommand(prioritizeCmd)
	rootCmd.AddCommand(localizeCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(algorithmsCmd)
}
