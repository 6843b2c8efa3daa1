package engine

import (
	"math"
	"sort"
)

// roundTo rounds v half-up to the given number of decimal places.
// Golden outputs depend on this exact behavior.
func roundTo(v float64, decimals int) float64 {
	if decimals <= 0 {
		return math.Round(v)
	}

	factor := math.Pow(10, float64(decimals))
	return math.Round(v*factor) / factor
}

// quantile computes the q-th quantile (0..1) of values using linear
// interpolation between closest ranks. Returns 0 for an empty slice.
func quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	if q < 0 {
		q = 0
	}
	if q > 1 {
		q = 1
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}

	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// median is the 50th percentile with interpolation.
func median(values []float64) float64 {
	return quantile(values, 0.5)
}

func floatPtr(v float64) *float64 {
	return &v
}
