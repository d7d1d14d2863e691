package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/covkit/cmd/covkit/internal/ui"
	"github.com/example/covkit/internal/batch"
	"github.com/example/covkit/internal/config"
	"github.com/example/covkit/internal/watch"
)

var (
	watchDatabase    string
	watchMetricsFile string
	watchDebounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch <job-file>...",
	Short: "Run job files and re-run them when their inputs change",
	Long: `Run the job files once, then watch each job file and every input file it
names. A change re-runs the jobs. Bursts of changes within --debounce are
collected into one run.

Input files are read from the job files at start; restart after adding inputs
to a job.

EXAMPLES:
  covkit watch nightly.yaml
  covkit watch nightly.yaml --debounce 2s --database runs.db`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchDatabase, "database", "", "SQLite file recording every run")
	watchCmd.Flags().StringVar(&watchMetricsFile, "metrics-file", "", "write run metrics here after every run")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "quiet period before re-running")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	driver, closeDriver, err := newDriver(ctx, watchDatabase)
	if err != nil {
		return err
	}
	defer closeDriver()

	w, err := watch.New(watchedFiles(args), watchDebounce, logger)
	if err != nil {
		return err
	}
	defer w.Stop()

	if _, err := runBatchOnce(ctx, driver, args, watchMetricsFile); err != nil {
		return err
	}
	ui.PrintStep("Watching for changes (Ctrl-C to stop)")

	err = w.Run(ctx, func(changed []string) {
		ui.PrintStep(fmt.Sprintf("Changed: %s", strings.Join(changed, ", ")))
		rerun(ctx, driver, args)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func rerun(ctx context.Context, driver *batch.Driver, paths []string) {
	if _, err := runBatchOnce(ctx, driver, paths, watchMetricsFile); err != nil {
		logger.Error("re-run failed", zap.Error(err))
	}
}

// watchedFiles lists every job file and the inputs of the jobs that load.
func watchedFiles(paths []string) []string {
	seen := make(map[string]bool)
	var files []string
	add := func(f string) {
		if !seen[f] {
			seen[f] = true
			files = append(files, f)
		}
	}
	for _, path := range paths {
		add(path)
		job, err := config.Load(path)
		if err != nil {
			logger.Warn("job inputs not watched", zap.String("path", path), zap.Error(err))
			continue
		}
		for _, f := range job.InputFiles() {
			add(f)
		}
	}
	return files
}
