// Package ui prints covkit results for humans.
package ui

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

var (
	out   io.Writer = os.Stdout
	color           = true
)

// SetOutput redirects all output to w and turns colors off unless w is the
// terminal.
func SetOutput(w io.Writer) {
	out = w
	color = w == os.Stdout
}

func paint(code, s string) string {
	if !color {
		return s
	}
	return code + s + colorReset
}

// PrintHeader prints a section header
func PrintHeader(title string) {
	line := strings.Repeat("=", len(title)+4)
	fmt.Fprintf(out, "\n%s\n", paint(colorBold+colorBlue, line))
	fmt.Fprintf(out, "%s\n", paint(colorBold+colorBlue, "  "+title+"  "))
	fmt.Fprintf(out, "%s\n\n", paint(colorBold+colorBlue, line))
}

// PrintStep prints a step in progress
func PrintStep(message string) {
	fmt.Fprintf(out, "%s %s\n", paint(colorCyan, "▶"), message)
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Fprintf(out, "%s %s\n", paint(colorGreen, "✓"), message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Fprintf(out, "%s %s\n", paint(colorRed, "✗"), message)
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Fprintf(out, "%s %s\n", paint(colorYellow, "⚠"), message)
}

// PrintInfo prints an informational message
func PrintInfo(message string) {
	fmt.Fprintf(out, "  %s\n", message)
}

// PrintList prints one item per line with its 1-based rank.
func PrintList(items []string) {
	width := len(fmt.Sprint(len(items)))
	for i, item := range items {
		fmt.Fprintf(out, "%s %s\n", paint(colorGray, fmt.Sprintf("%*d.", width, i+1)), item)
	}
}

// PrintTable prints a simple table
func PrintTable(headers []string, rows [][]string) {
	if len(rows) == 0 {
		return
	}

	// Calculate column widths
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	// Print header
	for i, h := range headers {
		fmt.Fprintf(out, "%s  ", paint(colorBold, fmt.Sprintf("%-*s", widths[i], h)))
	}
	fmt.Fprintln(out)

	// Print separator
	for _, w := range widths {
		fmt.Fprint(out, strings.Repeat("-", w)+"  ")
	}
	fmt.Fprintln(out)

	// Print rows
	for _, row := range rows {
		for i, cell := range row {
			fmt.Fprintf(out, "%-*s  ", widths[i], cell)
		}
		fmt.Fprintln(out)
	}
}

// FormatScore formats a suspiciousness or FL score.
func FormatScore(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsNaN(v):
		return "NaN"
	}
	return fmt.Sprintf("%.4f", v)
}

// PrintSummary prints the outcome of a batch of jobs.
func PrintSummary(jobs, failed int, elapsed time.Duration) {
	status := paint(colorGreen, "all jobs succeeded")
	if failed > 0 {
		status = paint(colorRed, fmt.Sprintf("%d of %d jobs had failures", failed, jobs))
	}
	fmt.Fprintf(out, "\n%s %s\n", paint(colorBold, "Status:"), status)
	if elapsed > 0 {
		fmt.Fprintf(out, "Elapsed:  %s\n", formatDuration(elapsed))
	}
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		minutes := int(d.Minutes())
		seconds := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// FormatDuration formats a duration for display (exported version)
func FormatDuration(d time.Duration) string {
	return formatDuration(d)
}
