// Command covkit clusters, prioritizes and localizes tests from coverage data.
package main

import (
	"os"

	"github.com/example/covkit/cmd/covkit/internal/cli"
	"github.com/example/covkit/cmd/covkit/internal/ui"
)

func main() {
	if err := cli.Execute(); err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}
}
