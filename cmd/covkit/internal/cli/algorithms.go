package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/covkit/cmd/covkit/internal/ui"
	"github.com/example/covkit/coverage/clustering"
	"github.com/example/covkit/coverage/localization"
	"github.com/example/covkit/coverage/prioritization"
)

var algorithmsCmd = &cobra.Command{
	Use:   "algorithms",
	Short: "List the available algorithms",
	Args:  cobra.NoArgs,
	Run:   runAlgorithms,
}

func runAlgorithms(cmd *cobra.Command, args []string) {
	var rows [][]string
	add := func(kind string, names []string) {
		for _, name := range names {
			rows = append(rows, []string{kind, name})
		}
	}
	add("clustering", clustering.DefaultRegistry().Names())
	add("prioritization", prioritization.DefaultRegistry().Names())
	add("localization", localization.Techniques())
	ui.PrintTable([]string{"Kind", "Name"}, rows)
}
