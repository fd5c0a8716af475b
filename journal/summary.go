package journal

import (
	"fmt"
	"strings"
)

// FormatSummary renders the daily summary block printed at end of session
// and by the summary CLI command.
func FormatSummary(s Stats, totalPnL float64) string {
	var b strings.Builder
	line := strings.Repeat("=", 60)

	fmt.Fprintln(&b, line)
	fmt.Fprintln(&b, "DAILY SUMMARY")
	fmt.Fprintln(&b, line)
	fmt.Fprintf(&b, "Trades: %d | Wins: %d | Losses: %d\n", s.Trades, s.Wins, s.Losses)
	fmt.Fprintf(&b, "Win Rate: %.1f%%\n", s.WinRate)
	fmt.Fprintf(&b, "Daily P&L: %.2f\n", s.PnL)
	fmt.Fprintf(&b, "Total P&L: %.2f\n", totalPnL)
	fmt.Fprintf(&b, "Errors: %d\n", s.Errors)
	fmt.Fprintln(&b, line)

	return b.String()
}
