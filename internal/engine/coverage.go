package engine

import (
	"math"
	"time"
)

// Coverage computes Days of Supply: how long onhand stock lasts at
// the recent consumption rate implied by windowDemand over
// windowDays. Returns nil when windowDemand is zero: a SKU with no
// recent demand has no defined exhaustion rate, which is not the same
// thing as zero coverage. Zero stock against positive demand is the
// defined maximal-urgency case and yields 0.0.
func Coverage(onhand, windowDemand float64, windowDays int) *float64 {
	if windowDemand <= 0 {
		return nil
	}

	cov := roundTo(onhand*float64(windowDays)/windowDemand, 1)
	return floatPtr(cov)
}

// StockoutDate projects the exhaustion date from coverage:
// ref + ceil(coverage) days. Nil coverage propagates to a nil date.
func StockoutDate(ref time.Time, coverage *float64) *time.Time {
	if coverage == nil {
		return nil
	}

	d := ref.AddDate(0, 0, int(math.Ceil(*coverage)))
	return &d
}
