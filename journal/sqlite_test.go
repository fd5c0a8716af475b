package journal

import (
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tradeSeq atomic.Int64

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	j, err := NewSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	return j
}

func tradeAt(exit time.Time, pnl float64) TradeRecord {
	return TradeRecord{
		TradeID:    fmt.Sprintf("T-%d", tradeSeq.Add(1)),
		Symbol:     "GER40",
		Direction:  "SHORT",
		EntryPrice: 18510.0,
		ExitPrice:  18500.0,
		PnL:        pnl,
		Reason:     "TP/SL Hit",
		EntryTime:  exit.Add(-time.Hour),
		ExitTime:   exit,
	}
}

func TestSQLiteRecordAndGetTrade(t *testing.T) {
	t.Parallel()

	j := newTestSQLite(t)

	rec := TradeRecord{
		TradeID:    "T1",
		Symbol:     "UK100",
		Direction:  "LONG",
		EntryPrice: 7600.0,
		ExitPrice:  7650.0,
		PnL:        0.5,
		Reason:     "TIME_EXIT",
		EntryTime:  time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC),
		ExitTime:   time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, j.RecordTrade(rec))

	got, err := j.GetTrade("T1")
	require.NoError(t, err)
	assert.Equal(t, rec.Symbol, got.Symbol)
	assert.Equal(t, rec.Direction, got.Direction)
	assert.Equal(t, rec.PnL, got.PnL)
	assert.Equal(t, rec.Reason, got.Reason)
	assert.True(t, got.ExitTime.Equal(rec.ExitTime))

	_, err = j.GetTrade("missing")
	assert.Error(t, err)
}

func TestSQLiteTotalRealizedPnL(t *testing.T) {
	t.Parallel()

	j := newTestSQLite(t)

	// Empty journal sums to zero.
	total, err := j.TotalRealizedPnL()
	require.NoError(t, err)
	assert.Zero(t, total)

	day := time.Date(2024, 3, 12, 12, 0, 0, 0, time.UTC)
	require.NoError(t, j.RecordTrade(tradeAt(day, 1.2)))
	require.NoError(t, j.RecordTrade(tradeAt(day.Add(time.Minute), -0.5)))

	total, err = j.TotalRealizedPnL()
	require.NoError(t, err)
	assert.InDelta(t, 0.7, total, 1e-9)
}

func TestSQLiteDayStats(t *testing.T) {
	t.Parallel()

	j := newTestSQLite(t)

	day := time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)
	require.NoError(t, j.RecordTrade(tradeAt(day.Add(11*time.Hour), 1.0)))
	require.NoError(t, j.RecordTrade(tradeAt(day.Add(12*time.Hour), -0.4)))
	require.NoError(t, j.RecordTrade(tradeAt(day.Add(13*time.Hour), 0.8)))
	// Previous day, excluded.
	require.NoError(t, j.RecordTrade(tradeAt(day.Add(-2*time.Hour), 5.0)))

	require.NoError(t, j.RecordError(ErrorRecord{
		ID: "E1", Category: CatOrder, Symbol: "GER40",
		Message: "rejected", Time: day.Add(11*time.Hour + 30*time.Minute),
	}))

	s, err := j.DayStats(day, day.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 3, s.Trades)
	assert.Equal(t, 2, s.Wins)
	assert.Equal(t, 1, s.Losses)
	assert.InDelta(t, 66.7, s.WinRate, 0.1)
	assert.InDelta(t, 1.4, s.PnL, 1e-9)
	assert.Equal(t, 1, s.Errors)
}

func TestSQLiteListTradesClosedBetween(t *testing.T) {
	t.Parallel()

	j := newTestSQLite(t)

	day := time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)
	require.NoError(t, j.RecordTrade(tradeAt(day.Add(13*time.Hour), 0.8)))
	require.NoError(t, j.RecordTrade(tradeAt(day.Add(11*time.Hour), 1.0)))

	recs, err := j.ListTradesClosedBetween(day, day.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	// Ordered by exit time ascending.
	assert.True(t, recs[0].ExitTime.Before(recs[1].ExitTime))
}

func TestFormatSummary(t *testing.T) {
	t.Parallel()

	out := FormatSummary(Stats{Trades: 3, Wins: 2, Losses: 1, WinRate: 66.7, PnL: 1.4, Errors: 1}, 12.5)
	assert.Contains(t, out, "DAILY SUMMARY")
	assert.Contains(t, out, "Trades: 3 | Wins: 2 | Losses: 1")
	assert.Contains(t, out, "Win Rate: 66.7%")
	assert.Contains(t, out, "Daily P&L: 1.40")
	assert.Contains(t, out, "Total P&L: 12.50")
	assert.Contains(t, out, "Errors: 1")
}

func TestSQLiteErrorRecordsNeedDistinctIDs(t *testing.T) {
	t.Parallel()

	j := newTestSQLite(t)

	rec := ErrorRecord{
		Category: CatFatal,
		Message:  "no tradable symbols after preflight",
		Time:     time.Date(2024, 3, 12, 5, 0, 0, 0, time.UTC),
	}

	rec.ID = "E1"
	require.NoError(t, j.RecordError(rec))
	rec.ID = "E2"
	require.NoError(t, j.RecordError(rec))

	// The ID is the primary key; reusing one (including the empty string
	// from a record written without an ID) is rejected.
	rec.ID = "E1"
	assert.Error(t, j.RecordError(rec))
}
