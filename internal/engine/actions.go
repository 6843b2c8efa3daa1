package engine

import (
	"fmt"

	"github.com/andresuchdata/invwatch/internal/domain"
)

// Action reasons and recommended actions. The strings are part of the
// report contract.
const (
	ReasonShortageRisk   = "shortage risk"
	ReasonOverstock      = "overstock/low-turnover"
	ReasonNoRecentDemand = "no recent demand, stock held"
	ReasonBelowTarget    = "below policy target"

	ActionReorder = "reorder"
	ActionReduce  = "reduce stock"
	ActionReview  = "review/adjust"
)

// Actions evaluates the mutually exclusive action rules for every SKU
// in the metric table, in priority order, stopping at the first
// match. SKUs matching no rule are excluded. The low-turnover
// percentile in rule 2 is computed over the currently filtered set,
// so results are relative to the active filter.
func Actions(metrics []domain.SKUMetrics, policy domain.Policy) []domain.ActionItem {
	policy = policy.Normalize()

	var demand30 []float64
	for _, m := range metrics {
		demand30 = append(demand30, m.Demand30)
	}
	p25 := quantile(demand30, 0.25)

	var items []domain.ActionItem
	for _, m := range metrics {
		avgDaily := m.DemandWindowTotal / float64(policy.DOSBasisDays)
		target := TargetStock(avgDaily, policy.LeadTimeDays, policy.TargetCoverDays, policy.SafetyStockDays)

		item := domain.ActionItem{
			SKU:       m.SKU,
			SKUName:   m.SKUName,
			Warehouse: m.Warehouse,
		}

		switch {
		case m.CoverageDays != nil && *m.CoverageDays < float64(policy.TargetCoverDays) && m.Demand30 > 0:
			item.Reason = ReasonShortageRisk
			item.Risk = fmt.Sprintf("coverage is %.1f days, under the %d-day target; a delayed order may end in a stockout", *m.CoverageDays, policy.TargetCoverDays)
			item.Action = ActionReorder
		case m.CoverageDays != nil && *m.CoverageDays > policy.OverstockDays && m.Demand30 <= p25:
			item.Reason = ReasonOverstock
			item.Risk = fmt.Sprintf("coverage exceeds %.0f days while demand sits in the bottom quartile; holding cost and scrap risk grow", policy.OverstockDays)
			item.Action = ActionReduce
		case m.Demand30 == 0 && m.OnhandQty > 0:
			item.Reason = ReasonNoRecentDemand
			item.Risk = "stock is held with no recent consumption; obsolescence and write-off risk"
			item.Action = ActionReview
		case m.OnhandQty < float64(target):
			item.Reason = ReasonBelowTarget
			item.Risk = fmt.Sprintf("on-hand %d is below the policy target of %d", int(m.OnhandQty), target)
			item.Action = ActionReorder
		default:
			continue
		}

		items = append(items, item)
	}

	return items
}
