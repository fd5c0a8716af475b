package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"rangefade/market"
	"rangefade/ranges"
)

var testRange = ranges.DailyRange{
	Symbol: "GER40",
	High:   18500.0,
	Low:    18420.0,
	Size:   80.0,
}

func TestSize_Short(t *testing.T) {
	t.Parallel()

	s := Sizer{StopLossMultiplier: 1.5, LotSize: 0.01}
	in := s.Size(testRange, market.Short, 18510.0)

	assert.Equal(t, "GER40", in.Symbol)
	assert.Equal(t, market.Short, in.Direction)
	assert.InDelta(t, 120.0, in.StopDistance, 1e-9)
	assert.InDelta(t, 18630.0, in.Stop, 1e-9)
	assert.InDelta(t, 18500.0, in.Target, 1e-9)
	assert.InDelta(t, 1.2, in.RiskAmount, 1e-9)
}

func TestSize_Long(t *testing.T) {
	t.Parallel()

	s := Sizer{StopLossMultiplier: 1.5, LotSize: 0.01}
	in := s.Size(testRange, market.Long, 18410.0)

	assert.Equal(t, market.Long, in.Direction)
	assert.InDelta(t, 120.0, in.StopDistance, 1e-9)
	assert.InDelta(t, 18290.0, in.Stop, 1e-9)
	assert.InDelta(t, 18500.0, in.Target, 1e-9)
	assert.InDelta(t, 1.2, in.RiskAmount, 1e-9)
}
