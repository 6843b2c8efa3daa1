package forecast

import (
	"math"
	"sort"
	"time"

	"github.com/andresuchdata/invwatch/internal/domain"
)

// Metrics derives the forecast-based per-SKU record from a forecast
// curve: average projected daily demand, the next-7-day total, the
// forecast Days of Supply, and the first date the cumulative forecast
// exceeds on-hand stock. ForecastDOS is nil when the average is zero;
// the stockout date is nil when exhaustion never occurs within the
// horizon.
func Metrics(points []domain.ForecastPoint, onhandBySKU map[string]float64, ref time.Time, horizonDays int) []domain.ForecastMetrics {
	bySKU := make(map[string][]domain.ForecastPoint)
	for _, p := range points {
		bySKU[p.SKU] = append(bySKU[p.SKU], p)
	}

	skus := make([]string, 0, len(bySKU))
	for sku := range bySKU {
		skus = append(skus, sku)
	}
	sort.Strings(skus)

	next7Cut := ref.AddDate(0, 0, 7)

	out := make([]domain.ForecastMetrics, 0, len(skus))
	for _, sku := range skus {
		curve := bySKU[sku]
		sort.Slice(curve, func(i, j int) bool { return curve[i].Date.Before(curve[j].Date) })

		onhand := onhandBySKU[sku]
		m := domain.ForecastMetrics{SKU: sku, OnhandQty: onhand}

		var total, cum float64
		for _, p := range curve {
			total += p.ForecastQty
			if !p.Date.After(next7Cut) {
				m.ForecastDemandNext7 += p.ForecastQty
			}
			if m.ForecastStockoutDate == nil {
				cum += p.ForecastQty
				if cum > onhand {
					d := p.Date
					m.ForecastStockoutDate = &d
				}
			}
		}

		m.ForecastAvgDaily = roundTo(total/float64(horizonDays), 2)
		if m.ForecastAvgDaily > 0 {
			dos := roundTo(onhand/m.ForecastAvgDaily, 1)
			m.ForecastDOS = &dos
		}

		out = append(out, m)
	}

	return out
}

func roundTo(v float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(v*factor) / factor
}
