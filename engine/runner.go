package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"rangefade/session"
)

// Cadence is the per-phase polling interval. Coarse while watching or idle,
// fine while trading. This is scheduling policy only; correctness does not
// depend on the values.
type Cadence struct {
	Observation time.Duration
	Execution   time.Duration
	Closed      time.Duration
}

// DefaultCadence matches the strategy's historical polling rates.
func DefaultCadence() Cadence {
	return Cadence{
		Observation: 5 * time.Minute,
		Execution:   time.Minute,
		Closed:      30 * time.Minute,
	}
}

func (c Cadence) forPhase(p session.Phase) time.Duration {
	switch p {
	case session.Observation, session.PreExecution:
		return c.Observation
	case session.Execution:
		return c.Execution
	default:
		return c.Closed
	}
}

// Run drives the engine until the context is cancelled, then walks the
// shutdown path: every remaining position is force-closed before returning.
// Cancellation is honored between symbols, never mid-call.
func (e *Engine) Run(ctx context.Context, cadence Cadence) error {
	e.log.Info("engine started",
		zap.Strings("symbols", e.cfg.Symbols),
		zap.Float64("max_daily_risk", e.cfg.MaxDailyRisk))

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			// Use a fresh context: the run context is already dead but
			// positions still need confirmed closes.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			return e.Shutdown(shutdownCtx)

		case <-timer.C:
		}

		now := time.Now()
		res := e.Tick(ctx, now)

		if res.Fatal != nil {
			// Unexpected internal failure: force-close everything and
			// terminate. The run context may be fine, but trading state
			// can no longer be trusted.
			e.log.Error("fatal error, closing all positions", zap.Error(res.Fatal))
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			if err := e.Shutdown(shutdownCtx); err != nil {
				e.log.Error("shutdown after fatal error failed", zap.Error(err))
			}
			return res.Fatal
		}

		e.log.Info("tick",
			zap.String("phase", res.Phase.String()),
			zap.Int("open_positions", e.OpenPositions()),
			zap.Float64("daily_risk_used", e.RiskUsed()))

		timer.Reset(cadence.forPhase(res.Phase))
	}
}
