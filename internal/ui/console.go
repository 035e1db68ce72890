// Package ui renders the console output of a search run: the banner, a live
// progress line and the final summary. It is a presentation layer only; all
// numbers come from the search engine's stats.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/vaultedge/salthunter/pkg/search"
)

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorCyan   = "\033[36m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorRed    = "\033[31m"
	ColorPurple = "\033[35m"
	ColorBold   = "\033[1m"
	ColorDim    = "\033[2m"
)

// PrintBanner shows the startup header.
func PrintBanner(version string) {
	fmt.Println()
	fmt.Printf("  %s%sSALTHUNTER%s %s• CREATE2 vanity salt search • v%s%s\n",
		ColorCyan, ColorBold, ColorReset, ColorDim, version, ColorReset)
	fmt.Println()
}

// PrintSearchInfo displays the run configuration before the search starts.
func PrintSearchInfo(contractName, deployer string, patterns search.PatternSet, budget uint64, workers int) {
	fmt.Printf("    %s🎯 TARGET%s %s%s%s deployed by %s%s%s\n",
		ColorPurple+ColorBold, ColorReset,
		ColorBold, contractName, ColorReset,
		ColorCyan, deployer, ColorReset)
	for _, m := range patterns {
		fmt.Printf("       %s•%s %s\n", ColorDim, ColorReset, m.Description)
	}
	fmt.Printf("    %s🚀 SEARCHING%s %s trials on %d workers\n\n",
		ColorGreen+ColorBold, ColorReset, FormatNumber(budget), workers)
}

// PrintProgress draws the in-place progress line: spinner, completion bar,
// rate, attempt count, match count and the estimated time to exhaust the
// remaining budget.
func PrintProgress(stats search.Stats, budget uint64, frame int) {
	spinners := []string{"◐", "◓", "◑", "◒"}
	spinner := spinners[frame%len(spinners)]

	ratio := 0.0
	if budget > 0 {
		ratio = float64(stats.Attempts) / float64(budget)
	}
	barWidth := 40
	filled := int(ratio * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}
	bar := strings.Repeat("▓", filled) + strings.Repeat("░", barWidth-filled)

	eta := "--"
	if stats.HashRate > 0 && stats.Attempts < budget {
		remaining := float64(budget-stats.Attempts) / stats.HashRate
		eta = FormatDuration(time.Duration(remaining * float64(time.Second)))
	}

	fmt.Printf("\r    %s%s%s %s%s%s %s%s%s │ %s%s%s │ %s%d matches%s │ ETA %s",
		ColorCyan, spinner, ColorReset,
		ColorDim, bar, ColorReset,
		ColorGreen+ColorBold, FormatHashRate(stats.HashRate), ColorReset,
		ColorYellow, FormatNumber(stats.Attempts), ColorReset,
		ColorPurple, stats.Matches, ColorReset,
		eta)
}

// PrintSummary shows the final result count, a few sample matches and where
// the full list was written.
func PrintSummary(summary search.RunSummary, outputPath string, elapsed time.Duration, attempts uint64) {
	fmt.Printf("\n\n    %s%s─── RESULTS ───%s\n", ColorGreen, ColorBold, ColorReset)
	fmt.Printf("    %s attempts in %s\n", FormatNumber(attempts), FormatDuration(elapsed))

	if len(summary.Results) == 0 {
		fmt.Printf("    %sNo matches found.%s\n", ColorYellow, ColorReset)
		return
	}

	fmt.Printf("    %s%d matches%s → %s%s%s\n\n", ColorBold, len(summary.Results), ColorReset,
		ColorYellow, outputPath, ColorReset)

	sample := len(summary.Results)
	if sample > 3 {
		sample = 3
	}
	for i := 0; i < sample; i++ {
		r := summary.Results[i]
		fmt.Printf("    %d. %s%s%s (%s)\n", i+1, ColorGreen+ColorBold, r.Address, ColorReset, r.Pattern)
	}
	if rest := len(summary.Results) - sample; rest > 0 {
		fmt.Printf("    %s… and %d more in the output file%s\n", ColorDim, rest, ColorReset)
	}
}

// ClearLine clears the current line
func ClearLine() {
	fmt.Print("\r                                                                                              \r")
}

// FormatHashRate formats hash rate nicely
func FormatHashRate(rate float64) string {
	if rate >= 1000000 {
		return fmt.Sprintf("%.1fM/s", rate/1000000)
	}
	if rate >= 1000 {
		return fmt.Sprintf("%.1fK/s", rate/1000)
	}
	return fmt.Sprintf("%.0f/s", rate)
}

// FormatNumber adds commas to large numbers
func FormatNumber(n uint64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	s := fmt.Sprintf("%d", n)
	result := make([]byte, 0, len(s)+(len(s)-1)/3)
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, byte(c))
	}
	return string(result)
}

// FormatDuration formats duration in a human-readable way
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", h, m)
}
