package repository

import (
	"context"
	"time"

	"github.com/andresuchdata/invwatch/internal/domain"
)

// InventoryRepository is the query surface over the loaded input
// tables. Implementations must build every filter predicate from
// typed parameters, never by concatenating values into query text.
type InventoryRepository interface {
	// SnapshotExists reports whether any inventory row exists for the
	// given reference date.
	SnapshotExists(ctx context.Context, date time.Time) (bool, error)

	// AvailableDates lists distinct snapshot dates, newest first.
	AvailableDates(ctx context.Context, limit int) ([]time.Time, error)

	// SKUAggregates returns one row per SKU in the filter set:
	// on-hand at the reference date summed across matching
	// warehouses, plus trailing demand over the half-open windows
	// (date-N, date] for the DOS basis and 30 days.
	SKUAggregates(ctx context.Context, date time.Time, filter domain.Filter, dosBasisDays int) ([]domain.SKUAggregate, error)

	// WindowDemandTotal sums demand across the filter set over the
	// half-open window (date-days, date].
	WindowDemandTotal(ctx context.Context, date time.Time, filter domain.Filter, days int) (float64, error)

	// DemandHistory returns raw demand rows for the filter set within
	// [from, to], for the forecast sub-engine.
	DemandHistory(ctx context.Context, filter domain.Filter, from, to time.Time) ([]domain.DemandRecord, error)

	// OnhandBySKU returns summed on-hand per SKU at the reference
	// date for the filter set.
	OnhandBySKU(ctx context.Context, date time.Time, filter domain.Filter) (map[string]float64, error)

	// FilterOptions lists distinct categories, warehouses, and SKUs.
	FilterOptions(ctx context.Context) (*domain.FilterOptions, error)

	// Transactions returns audit-log rows for the drill-down view.
	Transactions(ctx context.Context, q domain.TxnQuery) ([]domain.InventoryTxn, error)

	// DailyMovement rolls the txn table up into per-day inbound and
	// outbound totals.
	DailyMovement(ctx context.Context, filter domain.Filter, from, to time.Time) ([]domain.DailyMovement, error)
}
