// Command covlint runs static analysis on covkit API usage.
//
// Usage:
//
//	covlint ./...
//
// This tool detects common mistakes when using the coverage packages:
//   - Empty algorithm names passed to registry and technique lookups
//   - Discarded errors from a prioritizer's Next()
package main

import (
	"github.com/example/covkit/pkg/covlint"
	"golang.org/x/tools/go/analysis/singlechecker"
)

func main() {
	singlechecker.Main(covlint.Analyzer)
}
