package learning

import (
	"math/rand/v2"
)

// Range bounds the values drawn for missing entries. Draws fall in [min(Low, High), max(Low, High)); equal bounds always yield that constant.
type Range struct {
	Low  float64
	High float64
}

func (r Range) Draw(rng *rand.Rand) float64 {
	lo, hi := min(r.Low, r.High), max(r.Low, r.High)
	return lo + (hi-lo)*rng.Float64()
}

// Contains reports whether v could have been drawn from the range.
func (r Range) Contains(v float64) bool {
	lo, hi := min(r.Low, r.High), max(r.Low, r.High)
	if lo == hi {
		return v == lo
	}
	return v >= lo && v < hi
}
