package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/andresuchdata/invwatch/internal/domain"
	"github.com/andresuchdata/invwatch/internal/service"
)

// Report bundles one reference date's computed tables for export.
type Report struct {
	Date     time.Time
	Policy   domain.Policy
	KPI      *domain.KPISummary
	Metrics  []domain.SKUMetrics
	Actions  []domain.ActionItem
	Forecast *service.ForecastResult
}

var metricsHeaders = []string{
	"SKU", "Name", "Category", "Warehouse", "On Hand",
	"Demand (Window)", "Demand (30d)", "Coverage Days",
	"Est. Stockout", "Risk", "Bucket", "Status",
	"Recommended Order", "Reorder Point", "Reorder Qty",
}

func metricsRows(metrics []domain.SKUMetrics) [][]string {
	rows := make([][]string, 0, len(metrics))
	for _, m := range metrics {
		rows = append(rows, []string{
			m.SKU, m.SKUName, m.Category, m.Warehouse,
			fmtQty(m.OnhandQty), fmtQty(m.DemandWindowTotal), fmtQty(m.Demand30),
			fmtFloatPtr(m.CoverageDays), fmtDatePtr(m.EstimatedStockoutDate),
			string(m.RiskLevel), string(m.Bucket), string(m.Status),
			strconv.Itoa(m.RecommendedOrderQty), strconv.Itoa(m.ReorderPoint), strconv.Itoa(m.ReorderQty),
		})
	}
	return rows
}

// WriteMetricsCSV streams the metric table as CSV.
func (r *Report) WriteMetricsCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(metricsHeaders); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range metricsRows(r.Metrics) {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteXLSX renders the full workbook: one sheet per table plus a
// summary sheet with the KPI cards.
func (r *Report) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := writeSheet(f, "Metrics", headerStyle, metricsHeaders, metricsRows(r.Metrics)); err != nil {
		return err
	}

	actionRows := make([][]string, 0, len(r.Actions))
	for _, a := range r.Actions {
		actionRows = append(actionRows, []string{a.SKU, a.SKUName, a.Warehouse, a.Reason, a.Risk, a.Action})
	}
	if err := writeSheet(f, "Actions", headerStyle,
		[]string{"SKU", "Name", "Warehouse", "Reason", "Risk", "Action"}, actionRows); err != nil {
		return err
	}

	if r.Forecast != nil {
		fcRows := make([][]string, 0, len(r.Forecast.Metrics))
		for _, m := range r.Forecast.Metrics {
			fcRows = append(fcRows, []string{
				m.SKU, fmtQty(m.OnhandQty),
				fmtQty(m.ForecastAvgDaily), fmtQty(m.ForecastDemandNext7),
				fmtFloatPtr(m.ForecastDOS), fmtDatePtr(m.ForecastStockoutDate),
			})
		}
		if err := writeSheet(f, "Forecast", headerStyle,
			[]string{"SKU", "On Hand", "Avg Daily (Forecast)", "Next 7d Demand", "Forecast DOS", "Forecast Stockout"}, fcRows); err != nil {
			return err
		}
	}

	if r.KPI != nil {
		kpiRows := [][]string{
			{"Reference Date", r.Date.Format(domain.DateOnly)},
			{"Total On Hand", fmtQty(r.KPI.TotalOnhand)},
			{"Demand (7d)", fmtQty(r.KPI.Demand7)},
			{"Median DOS", fmtFloatPtr(r.KPI.MedianDOS)},
			{"Shortage SKUs", strconv.Itoa(r.KPI.ShortageSKUs)},
			{"SKUs Tracked", strconv.Itoa(r.KPI.SKUsWithMetrics)},
		}
		for i, line := range r.KPI.ReasonLines {
			kpiRows = append(kpiRows, []string{fmt.Sprintf("Signal %d", i+1), line})
		}
		if r.Forecast != nil {
			bt := r.Forecast.Backtest
			kpiRows = append(kpiRows,
				[]string{"Backtest MAPE", fmtFloatPtr(bt.MAPE)},
				[]string{"Backtest Points", strconv.Itoa(bt.Points)},
				[]string{"Forecast Confidence", bt.Confidence},
			)
		}
		if err := writeSheet(f, "Summary", headerStyle, []string{"Metric", "Value"}, kpiRows); err != nil {
			return err
		}
	}

	f.DeleteSheet("Sheet1")
	if idx, err := f.GetSheetIndex("Metrics"); err == nil {
		f.SetActiveSheet(idx)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, name string, headerStyle int, headers []string, rows [][]string) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}

	for i, header := range headers {
		cell := fmt.Sprintf("%s1", string(rune('A'+i)))
		f.SetCellValue(name, cell, header)
		f.SetCellStyle(name, cell, cell, headerStyle)
	}
	for rowIdx, row := range rows {
		for colIdx, value := range row {
			cell := fmt.Sprintf("%s%d", string(rune('A'+colIdx)), rowIdx+2)
			f.SetCellValue(name, cell, value)
		}
	}
	for i := range headers {
		col := string(rune('A' + i))
		f.SetColWidth(name, col, col, 16)
	}
	return nil
}

func fmtQty(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// fmtFloatPtr renders undefined values as a dash so they cannot be
// mistaken for zero.
func fmtFloatPtr(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func fmtDatePtr(v *time.Time) string {
	if v == nil {
		return "-"
	}
	return v.Format(domain.DateOnly)
}
