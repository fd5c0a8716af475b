package journal

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, symbol, direction, entry_price, exit_price, pnl, reason, entry_time, exit_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.Symbol, t.Direction, t.EntryPrice,
		t.ExitPrice, t.PnL, t.Reason, t.EntryTime, t.ExitTime,
	)
	return err
}

func (j *SQLite) RecordError(e ErrorRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO errors
		(id, category, symbol, message, time)
		VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.Category, e.Symbol, e.Message, e.Time,
	)
	return err
}

func (j *SQLite) TotalRealizedPnL() (float64, error) {
	var total sql.NullFloat64
	if err := j.db.QueryRow(`SELECT SUM(pnl) FROM trades`).Scan(&total); err != nil {
		return 0, err
	}
	return total.Float64, nil
}

func (j *SQLite) DayStats(start, end time.Time) (Stats, error) {
	var s Stats

	row := j.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN pnl > 0 THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(pnl), 0)
		FROM trades
		WHERE exit_time >= ? AND exit_time < ?`, start, end)
	if err := row.Scan(&s.Trades, &s.Wins, &s.PnL); err != nil {
		return Stats{}, err
	}
	s.Losses = s.Trades - s.Wins
	if s.Trades > 0 {
		s.WinRate = float64(s.Wins) / float64(s.Trades) * 100
	}

	row = j.db.QueryRow(`
		SELECT COUNT(*) FROM errors
		WHERE time >= ? AND time < ?`, start, end)
	if err := row.Scan(&s.Errors); err != nil {
		return Stats{}, err
	}

	return s, nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
