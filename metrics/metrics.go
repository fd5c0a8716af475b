// Package metrics exposes Prometheus metrics the bot updates during
// operation, served at /metrics in the text exposition format:
//   - rangefade_ticks_total{phase}          – engine ticks by session phase
//   - rangefade_signals_total{direction}    – fade signals detected
//   - rangefade_orders_total{result}        – order submissions (accepted|rejected|failed)
//   - rangefade_closes_total{reason}        – position closes by reason
//   - rangefade_errors_total{category}      – recoverable errors by category
//   - rangefade_daily_risk_used             – risk budget committed today (gauge)
//   - rangefade_open_positions              – positions under management (gauge)
//   - rangefade_total_realized_pnl          – lifetime realized P&L (gauge)
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Ticks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rangefade_ticks_total",
			Help: "Engine ticks by session phase",
		},
		[]string{"phase"},
	)

	Signals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rangefade_signals_total",
			Help: "Fade signals detected",
		},
		[]string{"direction"},
	)

	Orders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rangefade_orders_total",
			Help: "Order submissions by result",
		},
		[]string{"result"},
	)

	Closes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rangefade_closes_total",
			Help: "Position closes by reason",
		},
		[]string{"reason"},
	)

	Errors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rangefade_errors_total",
			Help: "Recoverable errors by category",
		},
		[]string{"category"},
	)

	DailyRiskUsed = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rangefade_daily_risk_used",
			Help: "Risk budget committed today",
		},
	)

	OpenPositions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rangefade_open_positions",
			Help: "Positions under management",
		},
	)

	TotalRealizedPnL = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rangefade_total_realized_pnl",
			Help: "Lifetime realized P&L",
		},
	)
)

func init() {
	prometheus.MustRegister(
		Ticks,
		Signals,
		Orders,
		Closes,
		Errors,
		DailyRiskUsed,
		OpenPositions,
		TotalRealizedPnL,
	)
}

// Handler returns the /metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
