package domain

import "time"

// Filter narrows every computation to a subset of SKUs. Empty fields
// mean "all". Percentile-based rules are evaluated over the filtered
// SKU set, so the same SKU can rank differently under different
// filters.
type Filter struct {
	Category  string `json:"category"`
	Warehouse string `json:"warehouse"`
	SKU       string `json:"sku"`
}

// Policy carries the thresholds every derived metric is parameterized
// by. The zero value is not usable; start from DefaultPolicy.
type Policy struct {
	DOSBasisDays    int     `json:"dos_basis_days"`
	ShortageDays    float64 `json:"shortage_days"`
	OverstockDays   float64 `json:"overstock_days"`
	LeadTimeDays    int     `json:"lead_time_days"`
	TargetCoverDays int     `json:"target_cover_days"`
	SafetyStockDays int     `json:"safety_stock_days"`
	MOQ             int     `json:"moq"`
}

// DefaultPolicy mirrors the policy constants of the operating
// dashboard: 14-day DOS basis, shortage under 14 days, overstock over
// 60, 7-day lead time.
func DefaultPolicy() Policy {
	return Policy{
		DOSBasisDays:    14,
		ShortageDays:    14,
		OverstockDays:   60,
		LeadTimeDays:    7,
		TargetCoverDays: 14,
		SafetyStockDays: 3,
		MOQ:             0,
	}
}

// Normalize repairs invalid threshold combinations instead of
// rejecting them: the overstock threshold must sit above the shortage
// threshold, and window sizes must be positive.
func (p Policy) Normalize() Policy {
	if p.DOSBasisDays <= 0 {
		p.DOSBasisDays = 14
	}
	if p.ShortageDays <= 0 {
		p.ShortageDays = 14
	}
	if p.OverstockDays <= p.ShortageDays {
		p.OverstockDays = p.ShortageDays + 1
	}
	if p.LeadTimeDays <= 0 {
		p.LeadTimeDays = 7
	}
	if p.TargetCoverDays <= 0 {
		p.TargetCoverDays = 14
	}
	if p.SafetyStockDays < 0 {
		p.SafetyStockDays = 0
	}
	if p.MOQ < 0 {
		p.MOQ = 0
	}
	return p
}

// Forecast model names.
const (
	ModelMovingAverage = "moving_average"
	ModelSeasonalNaive = "seasonal_naive"
)

// ForecastConfig parameterizes the forecast sub-engine.
type ForecastConfig struct {
	Model        string `json:"model"`
	WindowDays   int    `json:"window_days"`
	HorizonDays  int    `json:"horizon_days"`
	LookbackDays int    `json:"lookback_days"`
	BacktestDays int    `json:"backtest_days"`
}

// DefaultForecastConfig returns the baseline moving-average setup.
func DefaultForecastConfig() ForecastConfig {
	return ForecastConfig{
		Model:        ModelMovingAverage,
		WindowDays:   14,
		HorizonDays:  14,
		LookbackDays: 60,
		BacktestDays: 14,
	}
}

// Normalize clamps nonsensical forecast parameters to the defaults.
func (c ForecastConfig) Normalize() ForecastConfig {
	if c.Model != ModelSeasonalNaive {
		c.Model = ModelMovingAverage
	}
	if c.WindowDays <= 0 {
		c.WindowDays = 14
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = 14
	}
	if c.LookbackDays < c.WindowDays {
		c.LookbackDays = c.WindowDays
	}
	if c.BacktestDays <= 0 {
		c.BacktestDays = 14
	}
	return c
}

// TxnQuery narrows the transaction drill-down.
type TxnQuery struct {
	Filter   Filter
	From     time.Time
	To       time.Time
	TxnTypes []string
}
