package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/covkit/cmd/covkit/internal/ui"
	"github.com/example/covkit/coverage/codec"
	"github.com/example/covkit/coverage/synth"
)

var (
	genConfig synth.Config
	genOut    string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a synthetic data set",
	Long: `Generate a random coverage matrix with planted faults and write it as
coverage.bin, results.bin and changeset.bin.

Each code element is covered by a fixed number of random tests. The faulty
elements are marked changed at --revision, and a test fails at that revision
when it covers a faulty element or flakes.

EXAMPLES:
  covkit generate --out data/
  covkit generate --tests 500 --elements 20000 --faulty 2 --flake-rate 0.05 --seed 7`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	fl := generateCmd.Flags()
	fl.IntVar(&genConfig.Tests, "tests", 100, "number of test cases")
	fl.IntVar(&genConfig.CodeElements, "elements", 1000, "number of code elements")
	fl.IntVar(&genConfig.ColumnWeight, "column-weight", 0, "tests covering each code element (0 = derived)")
	fl.IntVar(&genConfig.Faulty, "faulty", 1, "number of faulty code elements")
	fl.Float64Var(&genConfig.FlakeRate, "flake-rate", 0, "probability that a passing test fails (0-1)")
	fl.IntVar(&genConfig.Revision, "revision", 1, "revision of the results and changeset")
	fl.Int64Var(&genConfig.Seed, "seed", 0, "random seed for reproducibility (0 = random)")
	fl.StringVarP(&genOut, "out", "o", ".", "output directory")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	data, truth, err := synth.Generate(genConfig)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(genOut, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", genOut, err)
	}
	paths := codec.Paths{
		Coverage:  filepath.Join(genOut, "coverage.bin"),
		Results:   filepath.Join(genOut, "results.bin"),
		Changeset: filepath.Join(genOut, "changeset.bin"),
	}
	if err := codec.Save(paths, data); err != nil {
		return err
	}
	logger.Info("data set written", zap.String("dir", genOut))

	cov := data.Coverage()
	ui.PrintSuccess(fmt.Sprintf("Wrote %d tests x %d code elements to %s", cov.TestCount(), cov.CodeElementCount(), genOut))
	ui.PrintInfo(fmt.Sprintf("Faulty: %s", strings.Join(truth.Faulty, ", ")))
	if len(truth.Flaky) > 0 {
		ui.PrintInfo(fmt.Sprintf("Flaky:  %d tests", len(truth.Flaky)))
	}
	return nil
}
