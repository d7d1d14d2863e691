package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/covkit/cmd/covkit/internal/ui"
)

const version = "0.4.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display the version of covkit.`,
	Run:   runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, args []string) {
	ui.PrintInfo(fmt.Sprintf("covkit %s", version))
	ui.PrintInfo("Test clustering, prioritization and fault localization from coverage data")
	ui.PrintInfo("")
	ui.PrintInfo("For help: covkit --help")
}
