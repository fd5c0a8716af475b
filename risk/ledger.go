package risk

import (
	"fmt"
	"sync"
)

// Ledger tracks cumulative committed risk for one trading day against a
// fixed ceiling. The check and the increment happen under one lock so no two
// accepted trades can jointly exceed the ceiling, even if symbols are ever
// evaluated in parallel.
//
// Committed risk is deliberately never rolled back when a subsequent order
// submission fails: budget consumed by an in-flight order stays consumed, so
// a venue race can never let the day overspend. Conservative by intent.
type Ledger struct {
	mu          sync.Mutex
	used        float64
	maxDaily    float64
	maxPerTrade float64
}

// NewLedger builds a ledger with a daily ceiling and a per-trade cap.
// A zero maxPerTrade disables the per-trade check.
func NewLedger(maxDaily, maxPerTrade float64) *Ledger {
	return &Ledger{maxDaily: maxDaily, maxPerTrade: maxPerTrade}
}

// Commit atomically checks the intent's risk against both limits and, when
// allowed, adds it to the day's used budget. A rejected intent leaves the
// ledger untouched; it is never partially applied.
func (l *Ledger) Commit(amount float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.maxPerTrade > 0 && amount > l.maxPerTrade {
		return Violation{
			Code: CodeTradeRiskExceeded,
			Msg:  fmt.Sprintf("trade risk %.4f exceeds per-trade cap %.4f", amount, l.maxPerTrade),
		}
	}
	if l.used+amount > l.maxDaily {
		return Violation{
			Code: CodeDailyRiskExceeded,
			Msg:  fmt.Sprintf("daily risk %.4f + %.4f exceeds ceiling %.4f", l.used, amount, l.maxDaily),
		}
	}
	l.used += amount
	return nil
}

// Used returns the budget committed so far today.
func (l *Ledger) Used() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.used
}

// MaxDaily returns the configured daily ceiling.
func (l *Ledger) MaxDaily() float64 { return l.maxDaily }

// Reset clears the day's used budget. Called once at daily rollover.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.used = 0
}
