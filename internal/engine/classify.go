package engine

import (
	"time"

	"github.com/andresuchdata/invwatch/internal/domain"
)

// Fixed risk-level boundaries in coverage days.
const (
	riskCriticalBelow = 3.0
	riskHighBelow     = 7.0
	riskMediumBelow   = 14.0
)

// ClassifyRisk maps coverage days onto the four risk tiers. Undefined
// coverage is Low: a SKU nobody is consuming is not treated as urgent.
func ClassifyRisk(coverage *float64) domain.RiskLevel {
	if coverage == nil {
		return domain.RiskLow
	}

	switch cov := *coverage; {
	case cov < riskCriticalBelow:
		return domain.RiskCritical
	case cov < riskHighBelow:
		return domain.RiskHigh
	case cov < riskMediumBelow:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}

// ClassifyBucket classifies coverage against the policy thresholds.
// An overstock threshold at or below the shortage threshold is
// auto-corrected to shortage+1 rather than rejected.
func ClassifyBucket(coverage *float64, shortage, overstock float64) domain.Bucket {
	if overstock <= shortage {
		overstock = shortage + 1
	}

	if coverage == nil {
		return domain.BucketNoDemand
	}

	switch cov := *coverage; {
	case cov < shortage:
		return domain.BucketShortage
	case cov > overstock:
		return domain.BucketOverstock
	default:
		return domain.BucketAdequate
	}
}

// OperationalStatus produces the lead-time-aware urgency badge.
// With defined coverage the split is on coverage itself; when only a
// forecast stockout date exists the same three-way split is applied
// to that date against ref+lead and ref+shortage.
func OperationalStatus(coverage *float64, stockout *time.Time, ref time.Time, leadDays int, shortageDays float64) domain.OpStatus {
	if coverage != nil {
		switch cov := *coverage; {
		case cov < float64(leadDays):
			return domain.StatusUrgent
		case cov < shortageDays:
			return domain.StatusWatch
		default:
			return domain.StatusStable
		}
	}

	if stockout != nil {
		leadCut := ref.AddDate(0, 0, leadDays)
		shortCut := ref.AddDate(0, 0, int(shortageDays))
		switch {
		case stockout.Before(leadCut):
			return domain.StatusUrgent
		case stockout.Before(shortCut):
			return domain.StatusWatch
		default:
			return domain.StatusStable
		}
	}

	return domain.StatusStable
}
