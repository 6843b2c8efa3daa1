package engine

import "math"

// RecommendedOrder computes the lead-time-aware reorder suggestion:
// target stock covers lead time, target cover, and safety stock at
// the average daily rate; the order tops stock up to that target.
// MOQ only clamps a positive order upward, it never forces an order
// where none is needed.
func RecommendedOrder(onhand, avgDaily float64, leadDays, targetCoverDays, safetyStockDays, moq int) int {
	target := TargetStock(avgDaily, leadDays, targetCoverDays, safetyStockDays)

	raw := int(math.Round(float64(target) - onhand))
	if raw <= 0 {
		return 0
	}
	if moq > 0 && raw < moq {
		return moq
	}
	return raw
}

// TargetStock is round(avgDaily * (lead + target cover + safety)).
func TargetStock(avgDaily float64, leadDays, targetCoverDays, safetyStockDays int) int {
	days := float64(leadDays + targetCoverDays + safetyStockDays)
	return int(math.Round(avgDaily * days))
}

// ReorderPointOrder is the legacy static-reorder-point policy some
// views still use: reorder point at ten days of the 14-day average
// daily demand, order whatever is missing to reach it. Kept as a
// separate computation from RecommendedOrder; the two answer
// different questions.
func ReorderPointOrder(onhand, avgDaily14 float64) (reorderPoint, orderQty int) {
	reorderPoint = int(math.Round(avgDaily14 * 10))

	orderQty = int(math.Round(float64(reorderPoint) - onhand))
	if orderQty < 0 {
		orderQty = 0
	}
	return reorderPoint, orderQty
}
