package domain

import "time"

// DateOnly is the calendar-date layout used by every input file.
const DateOnly = "2006-01-02"

// SKUMaster is one row of sku_master.csv. Static reference data,
// immutable once loaded.
type SKUMaster struct {
	SKU          string  `json:"sku" db:"sku"`
	SKUName      string  `json:"sku_name" db:"sku_name"`
	Category     string  `json:"category" db:"category"`
	UOM          string  `json:"uom" db:"uom"`
	ReorderPoint float64 `json:"reorder_point" db:"reorder_point"`
}

// DemandRecord is one row of demand_daily.csv. A missing (date, sku)
// row means zero demand for that day, not unknown.
type DemandRecord struct {
	Date      time.Time `json:"date" db:"date"`
	SKU       string    `json:"sku" db:"sku"`
	Plant     string    `json:"plant" db:"plant"`
	Category  string    `json:"category" db:"category"`
	DemandQty float64   `json:"demand_qty" db:"demand_qty"`
}

// InventorySnapshot is one row of inventory_daily.csv: on-hand stock
// per SKU per warehouse per day.
type InventorySnapshot struct {
	Date      time.Time `json:"date" db:"date"`
	SKU       string    `json:"sku" db:"sku"`
	Warehouse string    `json:"warehouse" db:"warehouse"`
	OnhandQty float64   `json:"onhand_qty" db:"onhand_qty"`
}

// InventoryTxn is one row of the optional inventory_txn.csv audit log.
// Inbound movements carry positive qty, outbound negative; ADJUST may
// be either sign. The txn table never feeds coverage or forecast math.
type InventoryTxn struct {
	TxnDatetime time.Time `json:"txn_datetime" db:"txn_datetime"`
	Date        time.Time `json:"date" db:"date"`
	SKU         string    `json:"sku" db:"sku"`
	Warehouse   string    `json:"warehouse" db:"warehouse"`
	TxnType     string    `json:"txn_type" db:"txn_type"`
	Qty         float64   `json:"qty" db:"qty"`
	RefID       string    `json:"ref_id" db:"ref_id"`
	ReasonCode  string    `json:"reason_code" db:"reason_code"`
}

// SKUAggregate is the per-SKU row the repository produces for a
// reference date: current on-hand plus trailing demand windows.
type SKUAggregate struct {
	SKU          string  `json:"sku" db:"sku"`
	SKUName      string  `json:"sku_name" db:"sku_name"`
	Category     string  `json:"category" db:"category"`
	Warehouse    string  `json:"warehouse" db:"warehouse"`
	OnhandQty    float64 `json:"onhand_qty" db:"onhand_qty"`
	DemandWindow float64 `json:"demand_window" db:"demand_window"`
	Demand30     float64 `json:"demand_30d" db:"demand_30d"`
}

// SKUMetrics is the engine's primary output: the derived per-SKU
// record for one reference date and filter set. CoverageDays and
// EstimatedStockoutDate are nil when trailing demand is zero; nil is
// a distinct state from zero and must never be coerced.
type SKUMetrics struct {
	SKU                   string     `json:"sku"`
	SKUName               string     `json:"sku_name"`
	Category              string     `json:"category"`
	Warehouse             string     `json:"warehouse"`
	OnhandQty             float64    `json:"onhand_qty"`
	DemandWindowTotal     float64    `json:"demand_window_total"`
	Demand30              float64    `json:"demand_30d"`
	CoverageDays          *float64   `json:"coverage_days"`
	EstimatedStockoutDate *time.Time `json:"estimated_stockout_date"`
	RiskLevel             RiskLevel  `json:"risk_level"`
	Bucket                Bucket     `json:"bucket"`
	Status                OpStatus   `json:"status"`
	RecommendedOrderQty   int        `json:"recommended_order_qty"`
	ReorderPoint          int        `json:"reorder_point"`
	ReorderQty            int        `json:"reorder_qty"`
}

// KPISummary is the headline card set for one reference date.
type KPISummary struct {
	ReferenceDate   time.Time `json:"reference_date"`
	TotalOnhand     float64   `json:"total_onhand"`
	Demand7         float64   `json:"demand_7d"`
	MedianDOS       *float64  `json:"median_dos"`
	ShortageSKUs    int       `json:"shortage_skus"`
	ReasonLines     []string  `json:"reason_lines"`
	SKUsWithMetrics int       `json:"skus_with_metrics"`
}

// ActionItem is one row of the recommended-action table.
type ActionItem struct {
	SKU       string `json:"sku"`
	SKUName   string `json:"sku_name"`
	Warehouse string `json:"warehouse"`
	Reason    string `json:"reason"`
	Risk      string `json:"risk"`
	Action    string `json:"action"`
}

// ForecastPoint is one projected day of demand for one SKU.
type ForecastPoint struct {
	Date        time.Time `json:"date"`
	SKU         string    `json:"sku"`
	ForecastQty float64   `json:"forecast_qty"`
}

// ForecastMetrics is the forecast-derived analogue of SKUMetrics.
type ForecastMetrics struct {
	SKU                  string     `json:"sku"`
	OnhandQty            float64    `json:"onhand_qty"`
	ForecastAvgDaily     float64    `json:"forecast_avg_daily"`
	ForecastDemandNext7  float64    `json:"forecast_demand_next_7"`
	ForecastDOS          *float64   `json:"forecast_dos"`
	ForecastStockoutDate *time.Time `json:"forecast_stockout_date"`
}

// BacktestResult reports moving-average accuracy over the trailing
// backtest window. MAPE is nil when too few usable points exist.
type BacktestResult struct {
	MAPE       *float64 `json:"mape"`
	Points     int      `json:"points"`
	Confidence string   `json:"confidence"`
}

// DailyMovement is the per-day inbound/outbound roll-up of the txn
// table, used only by the drill-down view.
type DailyMovement struct {
	Date        time.Time `json:"date" db:"date"`
	InboundQty  float64   `json:"inbound_qty" db:"inbound_qty"`
	OutboundQty float64   `json:"outbound_qty" db:"outbound_qty"`
}

// FilterOptions lists the distinct values the presentation layer can
// offer as filter choices.
type FilterOptions struct {
	Categories []string `json:"categories"`
	Warehouses []string `json:"warehouses"`
	SKUs       []string `json:"skus"`
}
