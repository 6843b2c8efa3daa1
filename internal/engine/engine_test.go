package engine

import (
	"testing"
	"time"

	"github.com/andresuchdata/invwatch/internal/domain"
)

// End-to-end scenario: 50 units on hand against a steady 5 units per
// day consumed over the 14-day basis window.
func TestComputeMetricsScenario(t *testing.T) {
	ref := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	rows := []domain.SKUAggregate{
		{
			SKU:          "SKU-001",
			SKUName:      "Part 001",
			Category:     "Motor",
			Warehouse:    "WH-1",
			OnhandQty:    50,
			DemandWindow: 70,
			Demand30:     150,
		},
	}

	metrics := ComputeMetrics(rows, ref, domain.DefaultPolicy())
	if len(metrics) != 1 {
		t.Fatalf("got %d metric rows, want 1", len(metrics))
	}
	m := metrics[0]

	if m.CoverageDays == nil || *m.CoverageDays != 10.0 {
		t.Errorf("CoverageDays = %v, want 10.0", m.CoverageDays)
	}
	if m.EstimatedStockoutDate == nil || m.EstimatedStockoutDate.Format(domain.DateOnly) != "2024-01-25" {
		t.Errorf("EstimatedStockoutDate = %v, want 2024-01-25", m.EstimatedStockoutDate)
	}
	if m.RiskLevel != domain.RiskMedium {
		t.Errorf("RiskLevel = %s, want Medium", m.RiskLevel)
	}
	if m.Bucket != domain.BucketShortage {
		t.Errorf("Bucket = %s, want Shortage", m.Bucket)
	}
	if m.Status != domain.StatusWatch {
		t.Errorf("Status = %s, want Watch", m.Status)
	}
	// avgDaily 5, target 5*24=120, order 70
	if m.RecommendedOrderQty != 70 {
		t.Errorf("RecommendedOrderQty = %d, want 70", m.RecommendedOrderQty)
	}
	// reorder point 5*10=50, onhand 50, nothing to order
	if m.ReorderPoint != 50 || m.ReorderQty != 0 {
		t.Errorf("ReorderPoint/Qty = %d/%d, want 50/0", m.ReorderPoint, m.ReorderQty)
	}
}

// A SKU with no trailing demand must still produce a row, with the
// undefined metrics left nil rather than zeroed.
func TestComputeMetricsNoDemand(t *testing.T) {
	ref := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	rows := []domain.SKUAggregate{
		{SKU: "SKU-IDLE", SKUName: "Idle part", OnhandQty: 400, DemandWindow: 0, Demand30: 0},
	}

	metrics := ComputeMetrics(rows, ref, domain.DefaultPolicy())
	if len(metrics) != 1 {
		t.Fatalf("got %d metric rows, want 1", len(metrics))
	}
	m := metrics[0]

	if m.CoverageDays != nil {
		t.Errorf("CoverageDays = %v, want nil", *m.CoverageDays)
	}
	if m.EstimatedStockoutDate != nil {
		t.Errorf("EstimatedStockoutDate = %v, want nil", m.EstimatedStockoutDate)
	}
	if m.RiskLevel != domain.RiskLow {
		t.Errorf("RiskLevel = %s, want Low", m.RiskLevel)
	}
	if m.Bucket != domain.BucketNoDemand {
		t.Errorf("Bucket = %s, want NoDemand", m.Bucket)
	}
	if m.Status != domain.StatusStable {
		t.Errorf("Status = %s, want Stable", m.Status)
	}
	if m.RecommendedOrderQty != 0 {
		t.Errorf("RecommendedOrderQty = %d, want 0", m.RecommendedOrderQty)
	}
}

func TestKPI(t *testing.T) {
	ref := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	policy := domain.DefaultPolicy()

	metrics := []domain.SKUMetrics{
		{SKU: "A", OnhandQty: 100, CoverageDays: floatPtr(5.0)},
		{SKU: "B", OnhandQty: 200, CoverageDays: floatPtr(20.0)},
		{SKU: "C", OnhandQty: 300, CoverageDays: floatPtr(40.0)},
		// undefined coverage stays out of the median and shortage count
		{SKU: "D", OnhandQty: 400, CoverageDays: nil},
	}

	kpi := KPI(metrics, 350, ref, policy)

	if kpi.TotalOnhand != 1000 {
		t.Errorf("TotalOnhand = %v, want 1000", kpi.TotalOnhand)
	}
	if kpi.Demand7 != 350 {
		t.Errorf("Demand7 = %v, want 350", kpi.Demand7)
	}
	if kpi.MedianDOS == nil || *kpi.MedianDOS != 20.0 {
		t.Errorf("MedianDOS = %v, want 20.0", kpi.MedianDOS)
	}
	if kpi.ShortageSKUs != 1 {
		t.Errorf("ShortageSKUs = %d, want 1", kpi.ShortageSKUs)
	}
	if kpi.SKUsWithMetrics != 3 {
		t.Errorf("SKUsWithMetrics = %d, want 3", kpi.SKUsWithMetrics)
	}
	if len(kpi.ReasonLines) != 3 {
		t.Errorf("got %d reason lines, want 3", len(kpi.ReasonLines))
	}
}

func TestKPIEmptySet(t *testing.T) {
	ref := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	kpi := KPI(nil, 0, ref, domain.DefaultPolicy())

	if kpi.MedianDOS != nil {
		t.Errorf("MedianDOS = %v, want nil", *kpi.MedianDOS)
	}
	if kpi.TotalOnhand != 0 || kpi.ShortageSKUs != 0 || kpi.SKUsWithMetrics != 0 {
		t.Errorf("empty set KPI = %+v, want zeroes", kpi)
	}
	if len(kpi.ReasonLines) != 3 {
		t.Errorf("got %d reason lines, want 3", len(kpi.ReasonLines))
	}
}

func TestReasonLines(t *testing.T) {
	ref := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	policy := domain.DefaultPolicy()
	stockout := ref.AddDate(0, 0, 3)

	metrics := []domain.SKUMetrics{
		{SKU: "A", CoverageDays: floatPtr(2.0), EstimatedStockoutDate: &stockout, Demand30: 900},
		{SKU: "B", CoverageDays: floatPtr(30.0), Demand30: 100},
		{SKU: "C", CoverageDays: floatPtr(25.0), Demand30: 50},
	}

	lines := ReasonLines(metrics, ref, policy)
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	for i, line := range lines {
		if line == "—" {
			t.Errorf("line %d is a placeholder, want a finding", i)
		}
	}

	// a calm metric set pads with placeholders
	calm := []domain.SKUMetrics{
		{SKU: "A", CoverageDays: floatPtr(30.0), Demand30: 100},
	}
	lines = ReasonLines(calm, ref, policy)
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	for i, line := range lines {
		if line != "—" {
			t.Errorf("line %d = %q, want placeholder", i, line)
		}
	}
}
