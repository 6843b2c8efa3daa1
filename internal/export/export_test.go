package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/andresuchdata/invwatch/internal/domain"
	"github.com/andresuchdata/invwatch/internal/service"
)

func sampleReport() *Report {
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	cov := 10.0
	stockout := date.AddDate(0, 0, 10)
	medianDOS := 20.0

	return &Report{
		Date:   date,
		Policy: domain.DefaultPolicy(),
		KPI: &domain.KPISummary{
			ReferenceDate:   date,
			TotalOnhand:     450,
			Demand7:         35,
			MedianDOS:       &medianDOS,
			ShortageSKUs:    1,
			ReasonLines:     []string{"—", "—", "—"},
			SKUsWithMetrics: 1,
		},
		Metrics: []domain.SKUMetrics{
			{
				SKU: "SKU-001", SKUName: "Part 001", Category: "Motor", Warehouse: "WH-1",
				OnhandQty: 50, DemandWindowTotal: 70, Demand30: 150,
				CoverageDays: &cov, EstimatedStockoutDate: &stockout,
				RiskLevel: domain.RiskMedium, Bucket: domain.BucketShortage, Status: domain.StatusWatch,
				RecommendedOrderQty: 70, ReorderPoint: 50,
			},
			{
				SKU: "SKU-002", SKUName: "Part 002", Category: "Brake", Warehouse: "WH-1",
				OnhandQty: 400,
				RiskLevel: domain.RiskLow, Bucket: domain.BucketNoDemand, Status: domain.StatusStable,
			},
		},
		Actions: []domain.ActionItem{
			{SKU: "SKU-001", SKUName: "Part 001", Warehouse: "WH-1", Reason: "shortage risk", Risk: "low coverage", Action: "reorder"},
		},
		Forecast: &service.ForecastResult{
			Metrics: []domain.ForecastMetrics{
				{SKU: "SKU-001", OnhandQty: 50, ForecastAvgDaily: 5, ForecastDemandNext7: 35},
			},
			Backtest: domain.BacktestResult{Points: 14, Confidence: domain.ConfidenceHigh},
		},
	}
}

func TestWriteMetricsCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleReport().WriteMetricsCSV(&buf); err != nil {
		t.Fatalf("WriteMetricsCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(records))
	}
	if records[0][0] != "SKU" {
		t.Errorf("header = %v", records[0])
	}

	row := records[1]
	if row[0] != "SKU-001" || row[7] != "10" || row[8] != "2024-01-25" {
		t.Errorf("SKU-001 row = %v", row)
	}

	// undefined metrics render as a dash, never as zero
	idle := records[2]
	if idle[7] != "-" || idle[8] != "-" {
		t.Errorf("SKU-002 coverage/stockout = %q/%q, want dashes", idle[7], idle[8])
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleReport().WriteXLSX(&buf); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	for _, sheet := range []string{"Metrics", "Actions", "Forecast", "Summary"} {
		if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
			t.Errorf("sheet %s missing", sheet)
		}
	}

	sku, err := f.GetCellValue("Metrics", "A2")
	if err != nil || sku != "SKU-001" {
		t.Errorf("Metrics!A2 = %q, %v, want SKU-001", sku, err)
	}
	action, err := f.GetCellValue("Actions", "F2")
	if err != nil || action != "reorder" {
		t.Errorf("Actions!F2 = %q, %v, want reorder", action, err)
	}
}
