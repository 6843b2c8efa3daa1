package forecast

import (
	"sort"
	"time"

	"github.com/andresuchdata/invwatch/internal/domain"
)

// series is one SKU's zero-filled daily demand leading up to the
// reference date. Only days from the earliest observed row inside the
// lookback window are considered visible history.
type series struct {
	sku    string
	days   int       // visible history length in days, capped at window
	window []float64 // last min(window, days) values, oldest first
	mean   float64
}

// buildSeries groups raw history rows per SKU and extracts the
// trailing demand window. SKUs with no rows inside the lookback are
// dropped: without a single observation there is nothing to project.
func buildSeries(history []domain.DemandRecord, ref time.Time, cfg domain.ForecastConfig) []series {
	cfg = cfg.Normalize()
	lookbackStart := ref.AddDate(0, 0, -cfg.LookbackDays+1)

	type skuHist struct {
		byDate   map[string]float64
		earliest time.Time
	}
	bySKU := make(map[string]*skuHist)
	for _, rec := range history {
		day := rec.Date
		if day.Before(lookbackStart) || day.After(ref) {
			continue
		}
		h := bySKU[rec.SKU]
		if h == nil {
			h = &skuHist{byDate: make(map[string]float64), earliest: day}
			bySKU[rec.SKU] = h
		}
		h.byDate[day.Format(domain.DateOnly)] += rec.DemandQty
		if day.Before(h.earliest) {
			h.earliest = day
		}
	}

	skus := make([]string, 0, len(bySKU))
	for sku := range bySKU {
		skus = append(skus, sku)
	}
	sort.Strings(skus)

	out := make([]series, 0, len(skus))
	for _, sku := range skus {
		h := bySKU[sku]

		visible := int(ref.Sub(h.earliest).Hours()/24) + 1
		n := cfg.WindowDays
		if visible < n {
			n = visible
		}

		window := make([]float64, n)
		var sum float64
		for i := 0; i < n; i++ {
			day := ref.AddDate(0, 0, -(n - 1 - i))
			window[i] = h.byDate[day.Format(domain.DateOnly)]
			sum += window[i]
		}

		out = append(out, series{
			sku:    sku,
			days:   visible,
			window: window,
			mean:   sum / float64(n),
		})
	}

	return out
}

// Forecast projects per-day demand for every SKU with visible history
// over [ref+1, ref+horizon].
//
// Moving average holds the trailing-window mean constant. Seasonal
// naive repeats the last window as a pattern, falling back to the
// moving-average mean when the history is shorter than one full
// window. Projected values are floored at zero.
func Forecast(history []domain.DemandRecord, ref time.Time, cfg domain.ForecastConfig) []domain.ForecastPoint {
	cfg = cfg.Normalize()

	var points []domain.ForecastPoint
	for _, s := range buildSeries(history, ref, cfg) {
		seasonal := cfg.Model == domain.ModelSeasonalNaive && s.days >= cfg.WindowDays

		for i := 1; i <= cfg.HorizonDays; i++ {
			qty := s.mean
			if seasonal {
				qty = s.window[(i-1)%cfg.WindowDays]
			}
			if qty < 0 {
				qty = 0
			}
			points = append(points, domain.ForecastPoint{
				Date:        ref.AddDate(0, 0, i),
				SKU:         s.sku,
				ForecastQty: qty,
			})
		}
	}

	return points
}
