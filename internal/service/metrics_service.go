package service

import (
	"context"
	"time"

	"github.com/andresuchdata/invwatch/internal/cache"
	"github.com/andresuchdata/invwatch/internal/domain"
	"github.com/andresuchdata/invwatch/internal/engine"
	"github.com/andresuchdata/invwatch/internal/repository"
	"github.com/andresuchdata/invwatch/pkg/logger"
)

var log = logger.With("service")

// MetricsService computes derived inventory tables for a reference
// date. Every result is a pure function of (date, filter, policy) and
// the underlying tables; the cache only memoizes.
type MetricsService struct {
	repo  repository.InventoryRepository
	cache cache.MetricsCache
}

func NewMetricsService(repo repository.InventoryRepository, cacheImpl cache.MetricsCache) *MetricsService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopMetricsCache()
	}
	return &MetricsService{repo: repo, cache: cacheImpl}
}

// GetMetrics returns the per-SKU derived metric table. Fails with
// domain.ErrNoSnapshot when the reference date has no inventory rows.
func (s *MetricsService) GetMetrics(ctx context.Context, date time.Time, filter domain.Filter, policy domain.Policy) ([]domain.SKUMetrics, error) {
	policy = policy.Normalize()

	if metrics, ok, err := s.cache.GetMetrics(ctx, date, filter, policy); err == nil && ok {
		return metrics, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("metrics: cache get failed")
	}

	if err := s.requireSnapshot(ctx, date); err != nil {
		return nil, err
	}

	rows, err := s.repo.SKUAggregates(ctx, date, filter, policy.DOSBasisDays)
	if err != nil {
		return nil, err
	}

	metrics := engine.ComputeMetrics(rows, date, policy)

	if err := s.cache.SetMetrics(ctx, date, filter, policy, metrics); err != nil {
		log.Warn().Err(err).Msg("metrics: cache set failed")
	}

	return metrics, nil
}

// GetKPI returns the headline summary cards for the filter set.
func (s *MetricsService) GetKPI(ctx context.Context, date time.Time, filter domain.Filter, policy domain.Policy) (*domain.KPISummary, error) {
	policy = policy.Normalize()

	if kpi, ok, err := s.cache.GetKPI(ctx, date, filter, policy); err == nil && ok {
		return kpi, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("kpi: cache get failed")
	}

	metrics, err := s.GetMetrics(ctx, date, filter, policy)
	if err != nil {
		return nil, err
	}

	demand7, err := s.repo.WindowDemandTotal(ctx, date, filter, 7)
	if err != nil {
		return nil, err
	}

	kpi := engine.KPI(metrics, demand7, date, policy)

	if err := s.cache.SetKPI(ctx, date, filter, policy, &kpi); err != nil {
		log.Warn().Err(err).Msg("kpi: cache set failed")
	}

	return &kpi, nil
}

// GetActions evaluates the priority-ordered action rules over the
// current metric table.
func (s *MetricsService) GetActions(ctx context.Context, date time.Time, filter domain.Filter, policy domain.Policy) ([]domain.ActionItem, error) {
	metrics, err := s.GetMetrics(ctx, date, filter, policy)
	if err != nil {
		return nil, err
	}
	return engine.Actions(metrics, policy), nil
}

// GetTransactions serves the txn drill-down view.
func (s *MetricsService) GetTransactions(ctx context.Context, q domain.TxnQuery) ([]domain.InventoryTxn, error) {
	return s.repo.Transactions(ctx, q)
}

// GetDailyMovement serves the inbound/outbound roll-up.
func (s *MetricsService) GetDailyMovement(ctx context.Context, filter domain.Filter, from, to time.Time) ([]domain.DailyMovement, error) {
	return s.repo.DailyMovement(ctx, filter, from, to)
}

// GetFilterOptions lists the distinct filter choices.
func (s *MetricsService) GetFilterOptions(ctx context.Context) (*domain.FilterOptions, error) {
	return s.repo.FilterOptions(ctx)
}

// GetAvailableDates lists snapshot dates, newest first.
func (s *MetricsService) GetAvailableDates(ctx context.Context, limit int) ([]time.Time, error) {
	return s.repo.AvailableDates(ctx, limit)
}

func (s *MetricsService) requireSnapshot(ctx context.Context, date time.Time) error {
	ok, err := s.repo.SnapshotExists(ctx, date)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNoSnapshot
	}
	return nil
}
