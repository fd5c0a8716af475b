package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"rangefade/config"
	"rangefade/journal"
)

var summaryCmd = &cobra.Command{
	Use:   "summary [YYYY-MM-DD]",
	Short: "Print the daily trading summary",
	Long: `Summary prints the trade statistics for a day (today by default)
together with the lifetime realized P&L from the journal.

Examples:
  rangefade summary
  rangefade summary 2026-08-28`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSummary,
}

var (
	summaryDBPath string
	summaryTZ     string
)

func init() {
	rootCmd.AddCommand(summaryCmd)

	summaryCmd.Flags().StringVarP(&summaryDBPath, "db", "d", "./rangefade.sqlite", "path to SQLite journal DB")
	summaryCmd.Flags().StringVar(&summaryTZ, "tz", config.Default().Timezone, "IANA timezone for day boundaries")
}

func runSummary(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(summaryDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	// The trading day is defined in the reference timezone, matching the
	// engine's end-of-session aggregation.
	loc, err := time.LoadLocation(summaryTZ)
	if err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	day := time.Now().In(loc).Format("2006-01-02")
	if len(args) == 1 {
		day = args[0]
	}

	start, end, err := dayBounds(loc, day)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}

	stats, err := j.DayStats(start, end)
	if err != nil {
		return fmt.Errorf("day stats: %w", err)
	}
	total, err := j.TotalRealizedPnL()
	if err != nil {
		return fmt.Errorf("total pnl: %w", err)
	}

	fmt.Println(journal.FormatSummary(stats, total))
	return nil
}
