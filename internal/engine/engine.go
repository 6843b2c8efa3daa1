package engine

import (
	"fmt"
	"time"

	"github.com/andresuchdata/invwatch/internal/domain"
)

// ComputeMetrics turns the repository's per-SKU aggregates into the
// full derived metric table for one reference date. Computation is
// per-SKU local: a SKU with undefined coverage still produces a row
// and never aborts the batch.
func ComputeMetrics(rows []domain.SKUAggregate, ref time.Time, policy domain.Policy) []domain.SKUMetrics {
	policy = policy.Normalize()

	metrics := make([]domain.SKUMetrics, 0, len(rows))
	for _, row := range rows {
		cov := Coverage(row.OnhandQty, row.DemandWindow, policy.DOSBasisDays)
		stockout := StockoutDate(ref, cov)
		avgDaily := row.DemandWindow / float64(policy.DOSBasisDays)
		reorderPoint, reorderQty := ReorderPointOrder(row.OnhandQty, avgDaily)

		metrics = append(metrics, domain.SKUMetrics{
			SKU:                   row.SKU,
			SKUName:               row.SKUName,
			Category:              row.Category,
			Warehouse:             row.Warehouse,
			OnhandQty:             row.OnhandQty,
			DemandWindowTotal:     row.DemandWindow,
			Demand30:              row.Demand30,
			CoverageDays:          cov,
			EstimatedStockoutDate: stockout,
			RiskLevel:             ClassifyRisk(cov),
			Bucket:                ClassifyBucket(cov, policy.ShortageDays, policy.OverstockDays),
			Status:                OperationalStatus(cov, stockout, ref, policy.LeadTimeDays, policy.ShortageDays),
			RecommendedOrderQty:   RecommendedOrder(row.OnhandQty, avgDaily, policy.LeadTimeDays, policy.TargetCoverDays, policy.SafetyStockDays, policy.MOQ),
			ReorderPoint:          reorderPoint,
			ReorderQty:            reorderQty,
		})
	}

	return metrics
}

// KPI condenses a metric table into the headline cards: total stock,
// recent demand, median DOS over SKUs where DOS is defined, and the
// count of SKUs inside the shortage threshold.
func KPI(metrics []domain.SKUMetrics, demand7 float64, ref time.Time, policy domain.Policy) domain.KPISummary {
	policy = policy.Normalize()

	var (
		totalOnhand float64
		covered     []float64
		shortage    int
	)
	for _, m := range metrics {
		totalOnhand += m.OnhandQty
		if m.CoverageDays == nil {
			continue
		}
		covered = append(covered, *m.CoverageDays)
		if *m.CoverageDays < policy.ShortageDays {
			shortage++
		}
	}

	summary := domain.KPISummary{
		ReferenceDate:   ref,
		TotalOnhand:     totalOnhand,
		Demand7:         demand7,
		ShortageSKUs:    shortage,
		SKUsWithMetrics: len(covered),
		ReasonLines:     ReasonLines(metrics, ref, policy),
	}
	if len(covered) > 0 {
		summary.MedianDOS = floatPtr(roundTo(median(covered), 1))
	}

	return summary
}

// ReasonLines assembles up to three headline findings explaining why
// the current metric set deserves attention right now. Missing
// findings are padded with an em-dash placeholder so the consumer
// always gets three lines.
func ReasonLines(metrics []domain.SKUMetrics, ref time.Time, policy domain.Policy) []string {
	policy = policy.Normalize()
	leadCut := ref.AddDate(0, 0, policy.LeadTimeDays)

	var demand30 []float64
	for _, m := range metrics {
		demand30 = append(demand30, m.Demand30)
	}
	p75 := quantile(demand30, 0.75)

	var (
		underSevenDOS    bool
		stockoutInLead   bool
		highDemandLowDOS bool
	)
	for _, m := range metrics {
		if m.CoverageDays != nil && *m.CoverageDays < riskHighBelow {
			underSevenDOS = true
		}
		if m.EstimatedStockoutDate != nil && m.EstimatedStockoutDate.Before(leadCut) {
			stockoutInLead = true
		}
		if m.CoverageDays != nil && *m.CoverageDays < policy.ShortageDays && m.Demand30 >= p75 {
			highDemandLowDOS = true
		}
	}

	var lines []string
	if underSevenDOS {
		lines = append(lines, "SKUs with under 7 days of supply exist")
	}
	if stockoutInLead {
		lines = append(lines, fmt.Sprintf("SKUs are projected to stock out inside the %d-day lead time", policy.LeadTimeDays))
	}
	if highDemandLowDOS {
		lines = append(lines, "high-demand SKUs are under-replenished relative to recent demand")
	}
	for len(lines) < 3 {
		lines = append(lines, "—")
	}

	return lines[:3]
}
