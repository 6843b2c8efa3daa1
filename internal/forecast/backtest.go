package forecast

import (
	"time"

	"github.com/andresuchdata/invwatch/internal/domain"
)

// MinBacktestPoints is the smallest sample the accuracy estimate will
// stand behind; below it the confidence label reports insufficient
// data instead of a MAPE-derived tier.
const MinBacktestPoints = 10

// Confidence boundaries on MAPE, in percent.
const (
	mapeHighMax   = 20.0
	mapeMediumMax = 40.0
)

// Backtest estimates moving-average forecast accuracy over the
// trailing backtest window: for each (sku, day) with positive actual
// demand, predict the way the moving average would have on that day,
// averaging the prior windowDays but dividing by the days of history
// actually visible, and accumulate the absolute percentage error.
// Days with zero actual demand are skipped, since the percentage
// error is undefined there; so are days with no history before them,
// since the moving average would not have forecast at all.
func Backtest(history []domain.DemandRecord, ref time.Time, cfg domain.ForecastConfig) domain.BacktestResult {
	cfg = cfg.Normalize()

	type skuActuals struct {
		byDate   map[string]float64
		earliest time.Time
	}
	actuals := make(map[string]*skuActuals)
	for _, rec := range history {
		s := actuals[rec.SKU]
		if s == nil {
			s = &skuActuals{byDate: make(map[string]float64), earliest: rec.Date}
			actuals[rec.SKU] = s
		}
		if rec.Date.Before(s.earliest) {
			s.earliest = rec.Date
		}
		s.byDate[rec.Date.Format(domain.DateOnly)] += rec.DemandQty
	}

	var (
		sumAPE float64
		points int
	)
	for _, s := range actuals {
		for i := 0; i < cfg.BacktestDays; i++ {
			day := ref.AddDate(0, 0, -i)
			actual := s.byDate[day.Format(domain.DateOnly)]
			if actual <= 0 {
				continue
			}

			visible := int(day.Sub(s.earliest).Hours() / 24)
			n := cfg.WindowDays
			if n > visible {
				n = visible
			}
			if n <= 0 {
				continue
			}

			var prior float64
			for j := 1; j <= n; j++ {
				prior += s.byDate[day.AddDate(0, 0, -j).Format(domain.DateOnly)]
			}
			predicted := prior / float64(n)

			ape := (actual - predicted) / actual
			if ape < 0 {
				ape = -ape
			}
			sumAPE += ape
			points++
		}
	}

	result := domain.BacktestResult{Points: points}
	if points < MinBacktestPoints {
		result.Confidence = domain.ConfidenceInsufficient
		return result
	}

	mape := roundTo(sumAPE/float64(points)*100, 1)
	result.MAPE = &mape
	result.Confidence = confidenceFor(mape)

	return result
}

func confidenceFor(mape float64) string {
	switch {
	case mape <= mapeHighMax:
		return domain.ConfidenceHigh
	case mape <= mapeMediumMax:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}
