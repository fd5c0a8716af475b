// Package engine orchestrates one polling tick of the range-fade strategy:
// advance the session clock, build ranges during observation, trade breakouts
// during execution, and force flat outside the execution window.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"rangefade/breakout"
	"rangefade/broker"
	"rangefade/internal/id"
	"rangefade/journal"
	"rangefade/market"
	"rangefade/metrics"
	"rangefade/position"
	"rangefade/ranges"
	"rangefade/risk"
	"rangefade/session"
)

// Action tags what happened for a symbol during one tick.
type Action string

const (
	ActionNone            Action = "none"
	ActionSkipped         Action = "skipped"
	ActionRangePending    Action = "range_pending"
	ActionRangeIdentified Action = "range_identified"
	ActionReconciled      Action = "reconciled"
	ActionEntered         Action = "entered"
	ActionRejected        Action = "rejected"
	ActionForceClosed     Action = "force_closed"
	ActionError           Action = "error"
)

// SymbolResult is the typed outcome of one symbol's evaluation in a tick.
type SymbolResult struct {
	Symbol string
	Action Action
	Err    error
}

// TickResult reports what one engine tick did. A non-nil Fatal means the
// tick hit an unexpected internal failure; the caller must force-close all
// positions and stop trading.
type TickResult struct {
	Phase   session.Phase
	Day     time.Time
	Reset   bool
	Results []SymbolResult
	Fatal   error
}

// Config carries the engine's strategy and polling parameters.
type Config struct {
	Symbols     []string
	Granularity market.Granularity
	CandleCount int
	CallTimeout time.Duration

	StopLossMultiplier float64
	MinRange           float64
	LotSize            float64
	MaxDailyRisk       float64
	MaxTradeRisk       float64
}

// Engine owns all per-day state: the range cache, the position map, and the
// risk ledger. It is driven by a single sequential tick loop; nothing here is
// mutated from a background goroutine.
type Engine struct {
	cfg       Config
	clock     *session.Clock
	tracker   *ranges.Tracker
	sizer     risk.Sizer
	ledger    *risk.Ledger
	positions *position.Manager
	gw        broker.Gateway
	jrnl      journal.Journal
	log       *zap.Logger

	skip           map[string]bool // symbols failed in preflight, out for the run
	day            time.Time       // current trading day, zero before first tick
	summaryPrinted bool
}

func New(cfg Config, clock *session.Clock, gw broker.Gateway, jrnl journal.Journal, log *zap.Logger) *Engine {
	if cfg.Granularity == "" {
		cfg.Granularity = market.M5
	}
	if cfg.CandleCount == 0 {
		cfg.CandleCount = 100
	}
	if cfg.CallTimeout == 0 {
		cfg.CallTimeout = 10 * time.Second
	}

	return &Engine{
		cfg:       cfg,
		clock:     clock,
		tracker:   ranges.NewTracker(clock, cfg.MinRange, log),
		sizer:     risk.Sizer{StopLossMultiplier: cfg.StopLossMultiplier, LotSize: cfg.LotSize},
		ledger:    risk.NewLedger(cfg.MaxDailyRisk, cfg.MaxTradeRisk),
		positions: position.NewManager(gw, jrnl, cfg.LotSize, log),
		gw:        gw,
		jrnl:      jrnl,
		log:       log,
		skip:      make(map[string]bool),
	}
}

// Preflight verifies every configured symbol against the venue. Symbols the
// venue does not know, or marks untradable, are logged once and skipped for
// the rest of the run. A gateway failure is returned so the caller can abort
// startup.
func (e *Engine) Preflight(ctx context.Context, now time.Time) error {
	for _, symbol := range e.cfg.Symbols {
		callCtx, cancel := context.WithTimeout(ctx, e.cfg.CallTimeout)
		info, err := e.gw.DescribeSymbol(callCtx, symbol)
		cancel()

		if err != nil || !info.Tradable {
			msg := "symbol not tradable"
			if err != nil {
				msg = err.Error()
			}
			e.skip[symbol] = true
			e.recordError(journal.CatSymbol, symbol, msg, now)
			e.log.Warn("symbol unavailable, skipping for this run",
				zap.String("symbol", symbol),
				zap.String("reason", msg))
			continue
		}

		e.log.Info("symbol verified",
			zap.String("symbol", symbol),
			zap.String("description", info.Description))
	}

	if len(e.active()) == 0 {
		return errors.New("no tradable symbols after preflight")
	}
	return nil
}

// Tick runs one full evaluation of all symbols at the given instant. A panic
// anywhere in the tick is caught and reported as Fatal rather than unwinding
// past the engine with positions still open.
func (e *Engine) Tick(ctx context.Context, now time.Time) (res TickResult) {
	defer func() {
		if r := recover(); r != nil {
			res.Fatal = fmt.Errorf("internal failure: %v", r)
			e.recordError(journal.CatFatal, "", res.Fatal.Error(), now)
			e.log.Error("tick panicked",
				zap.Any("panic", r),
				zap.Stack("stack"))
		}
	}()

	phase := e.clock.Phase(now)
	res = TickResult{Phase: phase}

	if e.day.IsZero() {
		e.day = e.clock.TradingDay(now)
	} else if e.clock.IsNewDay(now, e.day) {
		e.resetDay(now)
		res.Reset = true
	}
	res.Day = e.day

	metrics.Ticks.WithLabelValues(phase.String()).Inc()

	switch phase {
	case session.Observation, session.PreExecution:
		res.Results = e.observe(ctx, now)
	case session.Execution:
		res.Results = e.execute(ctx, now)
	default:
		res.Results = e.closedPhase(ctx, now)
	}

	// Positions left over when the execution window is gone get closed on
	// every tick until the venue confirms.
	if phase != session.Execution && phase != session.Closed {
		res.Results = append(res.Results, e.forceFlat(ctx, now)...)
	}

	metrics.DailyRiskUsed.Set(e.ledger.Used())
	metrics.OpenPositions.Set(float64(e.positions.Count()))

	return res
}

// resetDay clears all per-day caches exactly once per rollover.
func (e *Engine) resetDay(now time.Time) {
	e.tracker.Reset()
	e.ledger.Reset()
	e.day = e.clock.TradingDay(now)
	e.summaryPrinted = false
	e.log.Info("daily state reset", zap.Time("day", e.day))
}

// observe fetches candles and identifies the observation range for every
// active symbol that lacks one.
func (e *Engine) observe(ctx context.Context, now time.Time) []SymbolResult {
	var out []SymbolResult

	for _, symbol := range e.active() {
		if err := ctx.Err(); err != nil {
			return out
		}
		if _, ok := e.tracker.Get(symbol); ok {
			out = append(out, SymbolResult{Symbol: symbol, Action: ActionNone})
			continue
		}

		callCtx, cancel := context.WithTimeout(ctx, e.cfg.CallTimeout)
		candles, err := e.gw.Candles(callCtx, symbol, e.cfg.Granularity, e.cfg.CandleCount)
		cancel()
		if err != nil {
			e.recordError(journal.CatConnection, symbol, err.Error(), now)
			out = append(out, SymbolResult{Symbol: symbol, Action: ActionError, Err: err})
			continue
		}
		if len(candles) == 0 {
			e.recordError(journal.CatData, symbol, "no candle data received", now)
			out = append(out, SymbolResult{Symbol: symbol, Action: ActionRangePending})
			continue
		}

		if _, ok := e.tracker.Identify(symbol, candles, e.day, now); ok {
			out = append(out, SymbolResult{Symbol: symbol, Action: ActionRangeIdentified})
		} else {
			out = append(out, SymbolResult{Symbol: symbol, Action: ActionRangePending})
		}
	}
	return out
}

// execute runs the trading sequence for every active symbol: reconcile open
// positions, otherwise look for a breakout of the cached range.
func (e *Engine) execute(ctx context.Context, now time.Time) []SymbolResult {
	var out []SymbolResult

	for _, symbol := range e.active() {
		if err := ctx.Err(); err != nil {
			return out
		}
		out = append(out, e.executeSymbol(ctx, symbol, now))
	}
	return out
}

func (e *Engine) executeSymbol(ctx context.Context, symbol string, now time.Time) SymbolResult {
	callCtx, cancel := context.WithTimeout(ctx, e.cfg.CallTimeout)
	defer cancel()

	if _, ok := e.positions.Lookup(symbol); ok {
		if err := e.positions.Reconcile(callCtx, symbol, now); err != nil {
			e.recordError(journal.CatReconciliation, symbol, err.Error(), now)
			return SymbolResult{Symbol: symbol, Action: ActionError, Err: err}
		}
		return SymbolResult{Symbol: symbol, Action: ActionReconciled}
	}

	r, ok := e.tracker.Get(symbol)
	if !ok {
		// No valid range was identified by the end of the observation
		// window; the symbol sits out the rest of the day.
		return SymbolResult{Symbol: symbol, Action: ActionNone}
	}

	quote, err := e.gw.Quote(callCtx, symbol)
	if err != nil {
		e.recordError(journal.CatConnection, symbol, err.Error(), now)
		return SymbolResult{Symbol: symbol, Action: ActionError, Err: err}
	}

	dir, ok := breakout.Detect(quote.Bid, r)
	if !ok {
		return SymbolResult{Symbol: symbol, Action: ActionNone}
	}
	metrics.Signals.WithLabelValues(string(dir)).Inc()

	entry := quote.Bid
	if dir == market.Long {
		entry = quote.Ask
	}

	intent := e.sizer.Size(r, dir, entry)

	// Budget is committed before submission and deliberately not refunded
	// if the venue rejects or the call fails; see risk.Ledger.
	if err := e.ledger.Commit(intent.RiskAmount); err != nil {
		e.log.Warn("trade rejected by risk ledger",
			zap.String("symbol", symbol),
			zap.Error(err))
		metrics.Orders.WithLabelValues("rejected").Inc()
		return SymbolResult{Symbol: symbol, Action: ActionRejected, Err: err}
	}

	if err := e.positions.Enter(callCtx, intent, now); err != nil {
		e.recordError(journal.CatConnection, symbol, err.Error(), now)
		metrics.Orders.WithLabelValues("failed").Inc()
		return SymbolResult{Symbol: symbol, Action: ActionError, Err: err}
	}

	if _, opened := e.positions.Lookup(symbol); opened {
		metrics.Orders.WithLabelValues("accepted").Inc()
		return SymbolResult{Symbol: symbol, Action: ActionEntered}
	}
	metrics.Orders.WithLabelValues("rejected").Inc()
	return SymbolResult{Symbol: symbol, Action: ActionRejected}
}

// closedPhase force-closes leftovers and emits the daily summary once.
func (e *Engine) closedPhase(ctx context.Context, now time.Time) []SymbolResult {
	out := e.forceFlat(ctx, now)

	if !e.summaryPrinted && e.positions.Count() == 0 {
		e.printSummary(now)
		e.summaryPrinted = true
	}
	return out
}

// forceFlat closes every open position with reason TIME_EXIT. Positions whose
// close the venue does not confirm stay managed and are retried next tick.
func (e *Engine) forceFlat(ctx context.Context, now time.Time) []SymbolResult {
	if e.positions.Count() == 0 {
		return nil
	}

	var out []SymbolResult
	for _, symbol := range e.positions.Symbols() {
		callCtx, cancel := context.WithTimeout(ctx, e.cfg.CallTimeout)
		err := e.positions.Close(callCtx, symbol, "TIME_EXIT", now)
		cancel()

		if err != nil {
			out = append(out, SymbolResult{Symbol: symbol, Action: ActionError, Err: err})
			continue
		}
		metrics.Closes.WithLabelValues("TIME_EXIT").Inc()
		out = append(out, SymbolResult{Symbol: symbol, Action: ActionForceClosed})
	}
	return out
}

// Shutdown force-closes all positions with reason SHUTDOWN, retrying until
// confirmed or the context is cancelled.
func (e *Engine) Shutdown(ctx context.Context) error {
	for e.positions.Count() > 0 {
		now := time.Now()
		before := e.positions.Count()
		errs := e.positions.CloseAll(ctx, "SHUTDOWN", now)
		metrics.Closes.WithLabelValues("SHUTDOWN").Add(float64(before - e.positions.Count()))
		if len(errs) == 0 {
			break
		}
		for _, err := range errs {
			e.log.Error("shutdown close failed, retrying", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("shutdown incomplete, %d position(s) left: %w",
				e.positions.Count(), ctx.Err())
		case <-time.After(time.Second):
		}
	}

	e.printSummary(time.Now())
	return nil
}

// RiskUsed exposes the ledger for status logging.
func (e *Engine) RiskUsed() float64 { return e.ledger.Used() }

// OpenPositions exposes the position count for status logging.
func (e *Engine) OpenPositions() int { return e.positions.Count() }

func (e *Engine) active() []string {
	out := make([]string, 0, len(e.cfg.Symbols))
	for _, s := range e.cfg.Symbols {
		if !e.skip[s] {
			out = append(out, s)
		}
	}
	return out
}

func (e *Engine) printSummary(now time.Time) {
	start := e.day
	if start.IsZero() {
		start = e.clock.TradingDay(now)
	}
	end := start.Add(24 * time.Hour)

	stats, err := e.jrnl.DayStats(start, end)
	if err != nil {
		e.log.Error("day stats query failed", zap.Error(err))
		return
	}
	total, err := e.jrnl.TotalRealizedPnL()
	if err != nil {
		e.log.Error("total pnl query failed", zap.Error(err))
		return
	}

	metrics.TotalRealizedPnL.Set(total)
	for _, line := range strings.Split(journal.FormatSummary(stats, total), "\n") {
		if line != "" {
			e.log.Info(line)
		}
	}
}

func (e *Engine) recordError(category, symbol, msg string, now time.Time) {
	metrics.Errors.WithLabelValues(category).Inc()
	err := e.jrnl.RecordError(journal.ErrorRecord{
		ID:       id.New(),
		Category: category,
		Symbol:   symbol,
		Message:  msg,
		Time:     now,
	})
	if err != nil {
		e.log.Error("journal error failed", zap.Error(err))
	}
}
