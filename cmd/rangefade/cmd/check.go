package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"rangefade/config"
	"rangefade/market"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify bridge connectivity and symbol availability",
	Long: `Check connects to the MT5 bridge, reports its health, and verifies
every configured symbol: venue metadata, tradability, and a small candle
fetch. Nothing is traded.

Example:
  rangefade check -f configs/rangefade.yaml`,
	RunE: runCheck,
}

var checkConfigPath string

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVarP(&checkConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	checkCmd.MarkFlagRequired("config")
}

func runCheck(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.LoadFromFile(checkConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	gw, err := newBridge(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	health, err := gw.Health(ctx)
	if err != nil {
		return fmt.Errorf("bridge unreachable at %s: %w", cfg.Bridge.URL, err)
	}
	fmt.Printf("Bridge: %s (connected=%v, server=%s)\n", cfg.Bridge.URL, health.Connected, health.Server)

	failed := 0
	for _, symbol := range cfg.Symbols {
		info, err := gw.DescribeSymbol(ctx, symbol)
		if err != nil {
			fmt.Printf("  %-10s UNAVAILABLE: %v\n", symbol, err)
			failed++
			continue
		}
		if !info.Tradable {
			fmt.Printf("  %-10s NOT TRADABLE (%s)\n", symbol, info.Description)
			failed++
			continue
		}

		candles, err := gw.Candles(ctx, symbol, market.M5, 10)
		if err != nil {
			fmt.Printf("  %-10s tradable, but candle fetch failed: %v\n", symbol, err)
			failed++
			continue
		}

		fmt.Printf("  %-10s OK (%s, spread %.1f, %d candles)\n",
			symbol, info.Description, info.Spread, len(candles))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d symbols failed checks", failed, len(cfg.Symbols))
	}

	fmt.Println("All checks passed.")
	return nil
}
