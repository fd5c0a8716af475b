package risk

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_CommitWithinBudget(t *testing.T) {
	t.Parallel()

	l := NewLedger(5.0, 0)

	require.NoError(t, l.Commit(1.2))
	require.NoError(t, l.Commit(2.0))
	assert.InDelta(t, 3.2, l.Used(), 1e-9)
}

func TestLedger_RejectsOverCeiling(t *testing.T) {
	t.Parallel()

	l := NewLedger(5.0, 0)
	require.NoError(t, l.Commit(4.9))

	err := l.Commit(1.2)
	require.Error(t, err)

	var v Violation
	require.True(t, errors.As(err, &v))
	assert.Equal(t, CodeDailyRiskExceeded, v.Code)

	// Rejection leaves the ledger untouched.
	assert.InDelta(t, 4.9, l.Used(), 1e-9)
}

func TestLedger_NoSequenceExceedsCeiling(t *testing.T) {
	t.Parallel()

	l := NewLedger(5.0, 0)

	amounts := []float64{1.2, 1.2, 1.2, 1.2, 1.2, 1.2}
	for _, a := range amounts {
		_ = l.Commit(a)
		assert.LessOrEqual(t, l.Used(), 5.0)
	}
}

func TestLedger_PerTradeCap(t *testing.T) {
	t.Parallel()

	l := NewLedger(5.0, 2.0)

	err := l.Commit(2.5)
	require.Error(t, err)

	var v Violation
	require.True(t, errors.As(err, &v))
	assert.Equal(t, CodeTradeRiskExceeded, v.Code)
	assert.Zero(t, l.Used())

	require.NoError(t, l.Commit(1.5))
}

func TestLedger_Reset(t *testing.T) {
	t.Parallel()

	l := NewLedger(5.0, 0)
	require.NoError(t, l.Commit(3.0))

	l.Reset()
	assert.Zero(t, l.Used())
	require.NoError(t, l.Commit(5.0))
}
