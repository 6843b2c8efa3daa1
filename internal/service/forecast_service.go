package service

import (
	"context"
	"time"

	"github.com/andresuchdata/invwatch/internal/domain"
	"github.com/andresuchdata/invwatch/internal/forecast"
	"github.com/andresuchdata/invwatch/internal/repository"
)

// ForecastResult bundles everything the forecast view needs: the
// projected curve, the per-SKU forecast metrics, and the backtest
// accuracy estimate.
type ForecastResult struct {
	Config   domain.ForecastConfig    `json:"config"`
	Curve    []domain.ForecastPoint   `json:"curve"`
	Metrics  []domain.ForecastMetrics `json:"metrics"`
	Backtest domain.BacktestResult    `json:"backtest"`
}

// ForecastService wraps the forecast sub-engine with data access. The
// forecast is recomputed on every call; its inputs are too small to be
// worth memoizing.
type ForecastService struct {
	repo repository.InventoryRepository
}

func NewForecastService(repo repository.InventoryRepository) *ForecastService {
	return &ForecastService{repo: repo}
}

// GetForecast projects demand over the configured horizon for every
// SKU in the filter set with visible history. Fails with
// domain.ErrNoSnapshot when the reference date has no inventory rows.
func (s *ForecastService) GetForecast(ctx context.Context, date time.Time, filter domain.Filter, cfg domain.ForecastConfig) (*ForecastResult, error) {
	cfg = cfg.Normalize()

	ok, err := s.repo.SnapshotExists(ctx, date)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNoSnapshot
	}

	lookbackStart := date.AddDate(0, 0, -cfg.LookbackDays+1)
	history, err := s.repo.DemandHistory(ctx, filter, lookbackStart, date)
	if err != nil {
		return nil, err
	}

	onhand, err := s.repo.OnhandBySKU(ctx, date, filter)
	if err != nil {
		return nil, err
	}

	curve := forecast.Forecast(history, date, cfg)

	return &ForecastResult{
		Config:   cfg,
		Curve:    curve,
		Metrics:  forecast.Metrics(curve, onhand, date, cfg.HorizonDays),
		Backtest: forecast.Backtest(history, date, cfg),
	}, nil
}
