package domain

import "strings"

// RiskLevel classifies coverage days into urgency tiers. Undefined
// coverage (no recent demand) maps to RiskLow by convention.
type RiskLevel string

const (
	RiskCritical RiskLevel = "Critical"
	RiskHigh     RiskLevel = "High"
	RiskMedium   RiskLevel = "Medium"
	RiskLow      RiskLevel = "Low"
)

// Bucket classifies coverage against the policy shortage/overstock
// thresholds.
type Bucket string

const (
	BucketShortage  Bucket = "Shortage"
	BucketAdequate  Bucket = "Adequate"
	BucketOverstock Bucket = "Overstock"
	BucketNoDemand  Bucket = "NoDemand"
)

// OpStatus is the lead-time-aware urgency badge.
type OpStatus string

const (
	StatusUrgent OpStatus = "Urgent"
	StatusWatch  OpStatus = "Watch"
	StatusStable OpStatus = "Stable"
)

// Backtest confidence labels.
const (
	ConfidenceHigh         = "High"
	ConfidenceMedium       = "Medium"
	ConfidenceLow          = "Low"
	ConfidenceInsufficient = "insufficient data"
)

// Inventory transaction types. Inbound types carry positive qty,
// outbound negative; TxnAdjust may be either sign.
const (
	TxnIn          = "IN"
	TxnOut         = "OUT"
	TxnTransferIn  = "TRANSFER_IN"
	TxnTransferOut = "TRANSFER_OUT"
	TxnAdjust      = "ADJUST"
	TxnReturn      = "RETURN"
	TxnScrap       = "SCRAP"
)

var txnTypes = map[string]bool{
	TxnIn:          true,
	TxnOut:         true,
	TxnTransferIn:  true,
	TxnTransferOut: true,
	TxnAdjust:      true,
	TxnReturn:      true,
	TxnScrap:       true,
}

// ValidTxnType reports whether s is a known transaction type
// (case-insensitive).
func ValidTxnType(s string) bool {
	return txnTypes[strings.ToUpper(strings.TrimSpace(s))]
}

// ParseRiskLevel returns the risk level for a label, matching
// case-insensitively.
func ParseRiskLevel(label string) (RiskLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "critical":
		return RiskCritical, true
	case "high":
		return RiskHigh, true
	case "medium":
		return RiskMedium, true
	case "low":
		return RiskLow, true
	}
	return "", false
}
