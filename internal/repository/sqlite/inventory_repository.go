package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/invwatch/internal/domain"
	"github.com/andresuchdata/invwatch/internal/repository"
)

type inventoryRepository struct {
	db *DB
}

// NewInventoryRepository builds the sqlite-backed query layer.
func NewInventoryRepository(db *DB) repository.InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) SnapshotExists(ctx context.Context, date time.Time) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM inventory_daily WHERE date = ?`,
		date.Format(domain.DateOnly))
	if err != nil {
		return false, fmt.Errorf("check snapshot: %w", err)
	}
	return count > 0, nil
}

func (r *inventoryRepository) AvailableDates(ctx context.Context, limit int) ([]time.Time, error) {
	if limit <= 0 {
		limit = 90
	}

	var raw []string
	err := r.db.SelectContext(ctx, &raw,
		`SELECT DISTINCT date FROM inventory_daily ORDER BY date DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list snapshot dates: %w", err)
	}

	return parseDates(raw)
}

func (r *inventoryRepository) SKUAggregates(ctx context.Context, date time.Time, filter domain.Filter, dosBasisDays int) ([]domain.SKUAggregate, error) {
	if dosBasisDays <= 0 {
		dosBasisDays = 14
	}

	refStr := date.Format(domain.DateOnly)
	windowStart := date.AddDate(0, 0, -dosBasisDays).Format(domain.DateOnly)
	d30Start := date.AddDate(0, 0, -30).Format(domain.DateOnly)

	whClause, whArgs := buildWarehouseClause(filter, "")
	filterClause, filterArgs := buildSKUFilterClause(filter, "m")

	query := fmt.Sprintf(`
		SELECT
			m.sku,
			m.sku_name,
			m.category,
			COALESCE(inv.warehouse, '') AS warehouse,
			COALESCE(inv.onhand_qty, 0) AS onhand_qty,
			COALESCE(dw.qty, 0) AS demand_window,
			COALESCE(d30.qty, 0) AS demand_30d
		FROM sku_master m
		LEFT JOIN (
			SELECT sku,
				CASE WHEN COUNT(DISTINCT warehouse) = 1 THEN MIN(warehouse) ELSE 'ALL' END AS warehouse,
				SUM(onhand_qty) AS onhand_qty
			FROM inventory_daily
			WHERE date = ?%s
			GROUP BY sku
		) inv ON inv.sku = m.sku
		LEFT JOIN (
			SELECT sku, SUM(demand_qty) AS qty
			FROM demand_daily
			WHERE date > ? AND date <= ?
			GROUP BY sku
		) dw ON dw.sku = m.sku
		LEFT JOIN (
			SELECT sku, SUM(demand_qty) AS qty
			FROM demand_daily
			WHERE date > ? AND date <= ?
			GROUP BY sku
		) d30 ON d30.sku = m.sku
		WHERE 1=1%s
		ORDER BY m.sku
	`, whClause, filterClause)

	args := []interface{}{refStr}
	args = append(args, whArgs...)
	args = append(args, windowStart, refStr, d30Start, refStr)
	args = append(args, filterArgs...)

	var rows []domain.SKUAggregate
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query sku aggregates: %w", err)
	}

	return rows, nil
}

func (r *inventoryRepository) WindowDemandTotal(ctx context.Context, date time.Time, filter domain.Filter, days int) (float64, error) {
	if days <= 0 {
		days = 7
	}

	refStr := date.Format(domain.DateOnly)
	windowStart := date.AddDate(0, 0, -days).Format(domain.DateOnly)

	filterClause, filterArgs := buildSKUFilterClause(filter, "m")

	query := fmt.Sprintf(`
		SELECT COALESCE(SUM(d.demand_qty), 0)
		FROM demand_daily d
		JOIN sku_master m ON m.sku = d.sku
		WHERE d.date > ? AND d.date <= ?%s
	`, filterClause)

	args := []interface{}{windowStart, refStr}
	args = append(args, filterArgs...)

	var total float64
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("query window demand: %w", err)
	}

	return total, nil
}

type demandRow struct {
	Date      string  `db:"date"`
	SKU       string  `db:"sku"`
	Plant     string  `db:"plant"`
	Category  string  `db:"category"`
	DemandQty float64 `db:"demand_qty"`
}

func (r *inventoryRepository) DemandHistory(ctx context.Context, filter domain.Filter, from, to time.Time) ([]domain.DemandRecord, error) {
	filterClause, filterArgs := buildSKUFilterClause(filter, "m")

	query := fmt.Sprintf(`
		SELECT d.date, d.sku, COALESCE(d.plant, '') AS plant, COALESCE(d.category, '') AS category, d.demand_qty
		FROM demand_daily d
		JOIN sku_master m ON m.sku = d.sku
		WHERE d.date >= ? AND d.date <= ?%s
		ORDER BY d.sku, d.date
	`, filterClause)

	args := []interface{}{from.Format(domain.DateOnly), to.Format(domain.DateOnly)}
	args = append(args, filterArgs...)

	var rows []demandRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query demand history: %w", err)
	}

	out := make([]domain.DemandRecord, 0, len(rows))
	for _, row := range rows {
		day, err := time.Parse(domain.DateOnly, row.Date)
		if err != nil {
			return nil, fmt.Errorf("parse demand date %q: %w", row.Date, err)
		}
		out = append(out, domain.DemandRecord{
			Date:      day,
			SKU:       row.SKU,
			Plant:     row.Plant,
			Category:  row.Category,
			DemandQty: row.DemandQty,
		})
	}

	return out, nil
}

func (r *inventoryRepository) OnhandBySKU(ctx context.Context, date time.Time, filter domain.Filter) (map[string]float64, error) {
	whClause, whArgs := buildWarehouseClause(filter, "i")
	filterClause, filterArgs := buildSKUFilterClause(filter, "m")

	query := fmt.Sprintf(`
		SELECT m.sku, COALESCE(SUM(i.onhand_qty), 0) AS onhand_qty
		FROM sku_master m
		LEFT JOIN inventory_daily i ON i.sku = m.sku AND i.date = ?%s
		WHERE 1=1%s
		GROUP BY m.sku
	`, whClause, filterClause)

	args := []interface{}{date.Format(domain.DateOnly)}
	args = append(args, whArgs...)
	args = append(args, filterArgs...)

	type onhandRow struct {
		SKU       string  `db:"sku"`
		OnhandQty float64 `db:"onhand_qty"`
	}
	var rows []onhandRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query onhand by sku: %w", err)
	}

	out := make(map[string]float64, len(rows))
	for _, row := range rows {
		out[row.SKU] = row.OnhandQty
	}

	return out, nil
}

func (r *inventoryRepository) FilterOptions(ctx context.Context) (*domain.FilterOptions, error) {
	opts := &domain.FilterOptions{}

	if err := r.db.SelectContext(ctx, &opts.Categories,
		`SELECT DISTINCT category FROM sku_master ORDER BY category`); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if err := r.db.SelectContext(ctx, &opts.Warehouses,
		`SELECT DISTINCT warehouse FROM inventory_daily ORDER BY warehouse`); err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	if err := r.db.SelectContext(ctx, &opts.SKUs,
		`SELECT DISTINCT sku FROM sku_master ORDER BY sku`); err != nil {
		return nil, fmt.Errorf("list skus: %w", err)
	}

	return opts, nil
}

type txnRow struct {
	TxnDatetime string  `db:"txn_datetime"`
	Date        string  `db:"date"`
	SKU         string  `db:"sku"`
	Warehouse   string  `db:"warehouse"`
	TxnType     string  `db:"txn_type"`
	Qty         float64 `db:"qty"`
	RefID       string  `db:"ref_id"`
	ReasonCode  string  `db:"reason_code"`
}

func (r *inventoryRepository) Transactions(ctx context.Context, q domain.TxnQuery) ([]domain.InventoryTxn, error) {
	whClause, whArgs := buildWarehouseClause(q.Filter, "t")
	filterClause, filterArgs := buildSKUFilterClause(q.Filter, "m")

	var (
		typeClause string
		typeArgs   []interface{}
	)
	if len(q.TxnTypes) > 0 {
		placeholders := make([]string, 0, len(q.TxnTypes))
		for _, tt := range q.TxnTypes {
			tt = strings.ToUpper(strings.TrimSpace(tt))
			if !domain.ValidTxnType(tt) {
				continue
			}
			placeholders = append(placeholders, "?")
			typeArgs = append(typeArgs, tt)
		}
		if len(placeholders) > 0 {
			typeClause = fmt.Sprintf(" AND t.txn_type IN (%s)", strings.Join(placeholders, ","))
		}
	}

	query := fmt.Sprintf(`
		SELECT t.txn_datetime, t.date, t.sku, t.warehouse, t.txn_type, t.qty,
			COALESCE(t.ref_id, '') AS ref_id, COALESCE(t.reason_code, '') AS reason_code
		FROM inventory_txn t
		JOIN sku_master m ON m.sku = t.sku
		WHERE t.date >= ? AND t.date <= ?%s%s%s
		ORDER BY t.txn_datetime DESC
	`, whClause, typeClause, filterClause)

	args := []interface{}{q.From.Format(domain.DateOnly), q.To.Format(domain.DateOnly)}
	args = append(args, whArgs...)
	args = append(args, typeArgs...)
	args = append(args, filterArgs...)

	var rows []txnRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}

	out := make([]domain.InventoryTxn, 0, len(rows))
	for _, row := range rows {
		day, err := time.Parse(domain.DateOnly, row.Date)
		if err != nil {
			return nil, fmt.Errorf("parse txn date %q: %w", row.Date, err)
		}
		at, err := time.Parse("2006-01-02 15:04:05", row.TxnDatetime)
		if err != nil {
			at = day
		}
		out = append(out, domain.InventoryTxn{
			TxnDatetime: at,
			Date:        day,
			SKU:         row.SKU,
			Warehouse:   row.Warehouse,
			TxnType:     row.TxnType,
			Qty:         row.Qty,
			RefID:       row.RefID,
			ReasonCode:  row.ReasonCode,
		})
	}

	return out, nil
}

func (r *inventoryRepository) DailyMovement(ctx context.Context, filter domain.Filter, from, to time.Time) ([]domain.DailyMovement, error) {
	whClause, whArgs := buildWarehouseClause(filter, "t")
	filterClause, filterArgs := buildSKUFilterClause(filter, "m")

	query := fmt.Sprintf(`
		SELECT t.date,
			COALESCE(SUM(CASE WHEN t.qty > 0 THEN t.qty ELSE 0 END), 0) AS inbound_qty,
			COALESCE(SUM(CASE WHEN t.qty < 0 THEN -t.qty ELSE 0 END), 0) AS outbound_qty
		FROM inventory_txn t
		JOIN sku_master m ON m.sku = t.sku
		WHERE t.date >= ? AND t.date <= ?%s%s
		GROUP BY t.date
		ORDER BY t.date
	`, whClause, filterClause)

	args := []interface{}{from.Format(domain.DateOnly), to.Format(domain.DateOnly)}
	args = append(args, whArgs...)
	args = append(args, filterArgs...)

	type movementRow struct {
		Date        string  `db:"date"`
		InboundQty  float64 `db:"inbound_qty"`
		OutboundQty float64 `db:"outbound_qty"`
	}
	var rows []movementRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query daily movement: %w", err)
	}

	out := make([]domain.DailyMovement, 0, len(rows))
	for _, row := range rows {
		day, err := time.Parse(domain.DateOnly, row.Date)
		if err != nil {
			return nil, fmt.Errorf("parse movement date %q: %w", row.Date, err)
		}
		out = append(out, domain.DailyMovement{
			Date:        day,
			InboundQty:  row.InboundQty,
			OutboundQty: row.OutboundQty,
		})
	}

	return out, nil
}

func parseDates(raw []string) ([]time.Time, error) {
	out := make([]time.Time, 0, len(raw))
	for _, s := range raw {
		d, err := time.Parse(domain.DateOnly, s)
		if err != nil {
			return nil, fmt.Errorf("parse snapshot date %q: %w", s, err)
		}
		out = append(out, d)
	}
	return out, nil
}
