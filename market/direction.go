package market

// Direction is the side of a trade.
type Direction string

const (
	Long  Direction = "LONG"
	Short Direction = "SHORT"
)

// Opposite returns the closing side for an open position.
func (d Direction) Opposite() Direction {
	if d == Long {
		return Short
	}
	return Long
}
