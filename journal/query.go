package journal

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// GetTrade returns a single trade record by ID.
func (j *SQLite) GetTrade(tradeID string) (TradeRecord, error) {
	row := j.db.QueryRow(`
		SELECT trade_id, symbol, direction, entry_price, exit_price, pnl, reason, entry_time, exit_time
		FROM trades
		WHERE trade_id = ?`, tradeID)

	var rec TradeRecord
	err := row.Scan(
		&rec.TradeID,
		&rec.Symbol,
		&rec.Direction,
		&rec.EntryPrice,
		&rec.ExitPrice,
		&rec.PnL,
		&rec.Reason,
		&rec.EntryTime,
		&rec.ExitTime,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return TradeRecord{}, fmt.Errorf("trade %q not found", tradeID)
		}
		return TradeRecord{}, err
	}
	return rec, nil
}

// ListTradesClosedBetween returns trades whose exit_time is within [start, end).
func (j *SQLite) ListTradesClosedBetween(start, end time.Time) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, symbol, direction, entry_price, exit_price, pnl, reason, entry_time, exit_time
		FROM trades
		WHERE exit_time >= ? AND exit_time < ?
		ORDER BY exit_time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var rec TradeRecord
		if err := rows.Scan(
			&rec.TradeID,
			&rec.Symbol,
			&rec.Direction,
			&rec.EntryPrice,
			&rec.ExitPrice,
			&rec.PnL,
			&rec.Reason,
			&rec.EntryTime,
			&rec.ExitTime,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// FormatTrades renders records as an aligned text table for the CLI.
func FormatTrades(recs []TradeRecord) string {
	if len(recs) == 0 {
		return "no trades"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-12s %-8s %-6s %10s %10s %9s  %s\n",
		"TIME", "SYMBOL", "DIR", "ENTRY", "EXIT", "PNL", "REASON")
	for _, r := range recs {
		fmt.Fprintf(&b, "%-12s %-8s %-6s %10.2f %10.2f %+9.2f  %s\n",
			r.ExitTime.Format("15:04:05"),
			r.Symbol, r.Direction, r.EntryPrice, r.ExitPrice, r.PnL, r.Reason)
	}
	return b.String()
}
