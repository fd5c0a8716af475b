package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

// CSV is a flat-file journal backend. Aggregates cover only records written
// during the current run; the SQLite backend is the default for live use.
type CSV struct {
	trades *csv.Writer
	errs   *csv.Writer
	tf, ef *os.File

	records []TradeRecord
	errored int
}

func NewCSV(tradesPath, errorsPath string) (*CSV, error) {
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, err
	}
	ef, err := os.Create(errorsPath)
	if err != nil {
		tf.Close()
		return nil, err
	}

	tw := csv.NewWriter(tf)
	ew := csv.NewWriter(ef)

	if err := tw.Write([]string{"trade_id", "symbol", "direction", "entry_price", "exit_price", "pnl", "reason", "entry_time", "exit_time"}); err != nil {
		return nil, err
	}
	if err := ew.Write([]string{"id", "category", "symbol", "message", "time"}); err != nil {
		return nil, err
	}

	tw.Flush()
	if err := tw.Error(); err != nil {
		return nil, err
	}
	ew.Flush()
	if err := ew.Error(); err != nil {
		return nil, err
	}

	return &CSV{trades: tw, errs: ew, tf: tf, ef: ef}, nil
}

func (j *CSV) RecordTrade(t TradeRecord) error {
	err := j.trades.Write([]string{
		t.TradeID,
		t.Symbol,
		t.Direction,
		f(t.EntryPrice),
		f(t.ExitPrice),
		f(t.PnL),
		t.Reason,
		t.EntryTime.Format(time.RFC3339),
		t.ExitTime.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	j.records = append(j.records, t)
	return nil
}

func (j *CSV) RecordError(e ErrorRecord) error {
	err := j.errs.Write([]string{
		e.ID,
		e.Category,
		e.Symbol,
		e.Message,
		e.Time.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	j.errs.Flush()
	if err := j.errs.Error(); err != nil {
		return err
	}
	j.errored++
	return nil
}

func (j *CSV) TotalRealizedPnL() (float64, error) {
	var total float64
	for _, t := range j.records {
		total += t.PnL
	}
	return total, nil
}

func (j *CSV) DayStats(start, end time.Time) (Stats, error) {
	var s Stats
	for _, t := range j.records {
		if t.ExitTime.Before(start) || !t.ExitTime.Before(end) {
			continue
		}
		s.Trades++
		if t.PnL > 0 {
			s.Wins++
		}
		s.PnL += t.PnL
	}
	s.Losses = s.Trades - s.Wins
	if s.Trades > 0 {
		s.WinRate = float64(s.Wins) / float64(s.Trades) * 100
	}
	s.Errors = j.errored
	return s, nil
}

func (j *CSV) Close() error {
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	j.errs.Flush()
	if err := j.errs.Error(); err != nil {
		return err
	}

	if err := j.tf.Close(); err != nil {
		return err
	}
	return j.ef.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 2, 64)
}
