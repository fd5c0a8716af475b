package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rangefade/broker/bridge"
	"rangefade/config"
	"rangefade/engine"
	"rangefade/internal/id"
	"rangefade/journal"
	"rangefade/metrics"
	"rangefade/session"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the trading loop from a config file",
	Long: `Run the live trading loop using settings from a configuration file.

The bot polls the MT5 bridge on a per-phase cadence, identifies the
observation-window range for each symbol, and fades breakouts during the
execution window. SIGINT or SIGTERM triggers an orderly shutdown that
force-closes every open position before exiting.

Example:
  rangefade run -f configs/rangefade.yaml`,
	RunE: runRun,
}

var runConfigPath string

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	// Optional; secrets may come from the real environment instead.
	_ = godotenv.Load()

	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := zap.Must(zap.NewProduction())
	defer log.Sync()

	clk, err := session.NewClock(cfg.Timezone,
		cfg.Session.ObservationStart, cfg.Session.ObservationEnd,
		cfg.Session.ExecutionStart, cfg.Session.ExecutionEnd)
	if err != nil {
		return fmt.Errorf("session clock: %w", err)
	}

	jrnl, err := newJournal(cfg)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer jrnl.Close()

	if total, err := jrnl.TotalRealizedPnL(); err == nil {
		metrics.TotalRealizedPnL.Set(total)
		log.Info("journal loaded", zap.Float64("total_realized_pnl", total))
	}

	gw, err := newBridge(cfg)
	if err != nil {
		return err
	}

	eng := engine.New(engine.Config{
		Symbols:            cfg.Symbols,
		StopLossMultiplier: cfg.Strategy.StopLossMultiplier,
		MinRange:           cfg.Strategy.MinRange,
		LotSize:            cfg.Strategy.LotSize,
		MaxDailyRisk:       cfg.Strategy.MaxDailyRisk,
		MaxTradeRisk:       cfg.Strategy.MaxTradeRisk,
	}, clk, gw, jrnl, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := eng.Preflight(ctx, time.Now()); err != nil {
		jrnl.RecordError(journal.ErrorRecord{
			ID:       id.New(),
			Category: journal.CatFatal,
			Message:  err.Error(),
			Time:     time.Now(),
		})
		return fmt.Errorf("preflight: %w", err)
	}

	if cfg.Metrics.Addr != "" {
		go serveMetrics(cfg.Metrics.Addr, log)
	}

	return eng.Run(ctx, cadenceFromConfig(cfg))
}

func newJournal(cfg *config.Config) (journal.Journal, error) {
	if cfg.Journal.Type == "csv" {
		return journal.NewCSV(cfg.Journal.TradesFile, cfg.Journal.ErrorsFile)
	}
	return journal.NewSQLite(cfg.Journal.DBPath)
}

func newBridge(cfg *config.Config) (*bridge.Client, error) {
	timeout, err := cfg.Bridge.ParseTimeout()
	if err != nil {
		return nil, fmt.Errorf("bridge timeout: %w", err)
	}
	token := os.Getenv("RANGEFADE_BRIDGE_TOKEN")
	return bridge.NewClient(cfg.Bridge.URL, token, timeout), nil
}

func cadenceFromConfig(cfg *config.Config) engine.Cadence {
	c := engine.DefaultCadence()
	if d, err := time.ParseDuration(cfg.Poll.Observation); err == nil && d > 0 {
		c.Observation = d
	}
	if d, err := time.ParseDuration(cfg.Poll.Execution); err == nil && d > 0 {
		c.Execution = d
	}
	if d, err := time.ParseDuration(cfg.Poll.Closed); err == nil && d > 0 {
		c.Closed = d
	}
	return c
}

func serveMetrics(addr string, log *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	log.Info("metrics listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error("metrics server stopped", zap.Error(err))
	}
}
