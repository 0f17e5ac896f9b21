package domain

import "strings"

// SuggestionStatus is the tagged variant driving the suggestion lifecycle
// (spec §3, §4.8): PENDING -> (APPROVED -> ORDERED) | REJECTED.
type SuggestionStatus int

const (
	SuggestionPending SuggestionStatus = iota
	SuggestionApproved
	SuggestionOrdered
	SuggestionRejected
)

var suggestionStatusLabels = map[SuggestionStatus]string{
	SuggestionPending:  "PENDING",
	SuggestionApproved: "APPROVED",
	SuggestionOrdered:  "ORDERED",
	SuggestionRejected: "REJECTED",
}

var suggestionStatusCodes = map[string]SuggestionStatus{
	"pending":  SuggestionPending,
	"approved": SuggestionApproved,
	"ordered":  SuggestionOrdered,
	"rejected": SuggestionRejected,
}

func (s SuggestionStatus) String() string {
	if label, ok := suggestionStatusLabels[s]; ok {
		return label
	}
	return "UNKNOWN"
}

// ParseSuggestionStatus returns the status for a label (case-insensitive).
func ParseSuggestionStatus(label string) (SuggestionStatus, bool) {
	code, ok := suggestionStatusCodes[strings.ToLower(label)]
	return code, ok
}

// suggestionTransitions is the explicit transition table: no back-edges
// out of ORDERED or REJECTED, per spec §8.
var suggestionTransitions = map[SuggestionStatus]map[SuggestionStatus]bool{
	SuggestionPending: {
		SuggestionApproved: true,
		SuggestionOrdered:  true, // direct PENDING->ORDERED when generatePO skips the held-APPROVED state
		SuggestionRejected: true,
	},
	SuggestionApproved: {
		SuggestionOrdered: true,
	},
	SuggestionOrdered:  {},
	SuggestionRejected: {},
}

// CanTransition reports whether moving from `from` to `to` is a legal
// edge in the suggestion status graph.
func CanTransition(from, to SuggestionStatus) bool {
	if from == to {
		return false
	}
	edges, ok := suggestionTransitions[from]
	if !ok {
		return false
	}
	return edges[to]
}

// POStatus mirrors the purchase-order lifecycle (spec §3). The Converter
// only ever creates DRAFT POs; later stages are driven by other
// subsystems this module does not own.
type POStatus int

const (
	PODraft POStatus = iota
	POApproved
	POSent
	POPartial
	POReceived
	POCancelled
)

var poStatusLabels = map[POStatus]string{
	PODraft:     "DRAFT",
	POApproved:  "APPROVED",
	POSent:      "SENT",
	POPartial:   "PARTIAL",
	POReceived:  "RECEIVED",
	POCancelled: "CANCELLED",
}

func (s POStatus) String() string {
	if label, ok := poStatusLabels[s]; ok {
		return label
	}
	return "UNKNOWN"
}

// Urgency is the categorical label derived from days-remaining and
// supplier risk (spec §4.7).
type Urgency int

const (
	UrgencyCritical Urgency = iota
	UrgencyUrgent
	UrgencyLow
	UrgencyGood
	UrgencyOverstocked
)

var urgencyLabels = map[Urgency]string{
	UrgencyCritical:    "CRITICAL",
	UrgencyUrgent:      "URGENT",
	UrgencyLow:         "LOW",
	UrgencyGood:        "GOOD",
	UrgencyOverstocked: "OVERSTOCKED",
}

func (u Urgency) String() string {
	if label, ok := urgencyLabels[u]; ok {
		return label
	}
	return "UNKNOWN"
}

// ExternalLabel renders the "WARNING" alias some external consumers use
// in place of LOW, per spec §9 ("WARNING appears in one urgency
// enumeration and LOW in another... the external rendering layer may
// map LOW<->WARNING").
func (u Urgency) ExternalLabel() string {
	if u == UrgencyLow {
		return "WARNING"
	}
	return u.String()
}

// Action is the recommended next step attached to a suggestion.
type Action int

const (
	ActionOrderToday Action = iota
	ActionOrderSoon
	ActionMonitor
	ActionReduceOrders
)

var actionLabels = map[Action]string{
	ActionOrderToday:   "ORDER_TODAY",
	ActionOrderSoon:    "ORDER_SOON",
	ActionMonitor:      "MONITOR",
	ActionReduceOrders: "REDUCE_ORDERS",
}

func (a Action) String() string {
	if label, ok := actionLabels[a]; ok {
		return label
	}
	return "UNKNOWN"
}

// UrgencyFromDaysRemaining implements the urgency ladder of spec §4.7.
func UrgencyFromDaysRemaining(daysRemaining float64) (Urgency, Action) {
	switch {
	case daysRemaining < 1:
		return UrgencyCritical, ActionOrderToday
	case daysRemaining < 3:
		return UrgencyUrgent, ActionOrderToday
	case daysRemaining < 7:
		return UrgencyLow, ActionOrderSoon
	case daysRemaining <= 30:
		return UrgencyGood, ActionMonitor
	default:
		return UrgencyOverstocked, ActionReduceOrders
	}
}

// Pattern is the categorical demand shape (spec §4.4, GLOSSARY).
type Pattern int

const (
	PatternSteady Pattern = iota
	PatternGrowing
	PatternDeclining
	PatternSeasonal
	PatternErratic
)

var patternLabels = map[Pattern]string{
	PatternSteady:    "STEADY",
	PatternGrowing:   "GROWING",
	PatternDeclining: "DECLINING",
	PatternSeasonal:  "SEASONAL",
	PatternErratic:   "ERRATIC",
}

func (p Pattern) String() string {
	if label, ok := patternLabels[p]; ok {
		return label
	}
	return "UNKNOWN"
}

// TrendDirection is the slope-based trend label (spec §4.4).
type TrendDirection int

const (
	TrendSteady TrendDirection = iota
	TrendGrowing
	TrendDeclining
)

var trendLabels = map[TrendDirection]string{
	TrendSteady:   "STEADY",
	TrendGrowing:  "GROWING",
	TrendDeclining: "DECLINING",
}

func (t TrendDirection) String() string {
	if label, ok := trendLabels[t]; ok {
		return label
	}
	return "UNKNOWN"
}

// Risk is the stockout-before-delivery risk of a supplier candidate
// (spec §4.6).
type Risk int

const (
	RiskNone Risk = iota
	RiskLow
	RiskMedium
	RiskHigh
	RiskCritical
)

var riskLabels = map[Risk]string{
	RiskNone:     "NONE",
	RiskLow:      "LOW",
	RiskMedium:   "MEDIUM",
	RiskHigh:     "HIGH",
	RiskCritical: "CRITICAL",
}

func (r Risk) String() string {
	if label, ok := riskLabels[r]; ok {
		return label
	}
	return "UNKNOWN"
}

// MovementType tags a StockMovement's purpose (spec §3).
type MovementType int

const (
	MovementReceive MovementType = iota
	MovementSale
	MovementReturn
	MovementAdjustment
	MovementTransfer
	MovementWaste
)

var movementTypeLabels = map[MovementType]string{
	MovementReceive:    "RECEIVE",
	MovementSale:       "SALE",
	MovementReturn:     "RETURN",
	MovementAdjustment: "ADJUSTMENT",
	MovementTransfer:   "TRANSFER",
	MovementWaste:      "WASTE",
}

func (t MovementType) String() string {
	if label, ok := movementTypeLabels[t]; ok {
		return label
	}
	return "UNKNOWN"
}

// SaleStatus is the lifecycle of a Sale (spec §3).
type SaleStatus int

const (
	SaleCompleted SaleStatus = iota
	SaleRefunded
	SaleVoided
)

var saleStatusLabels = map[SaleStatus]string{
	SaleCompleted: "COMPLETED",
	SaleRefunded:  "REFUNDED",
	SaleVoided:    "VOIDED",
}

func (s SaleStatus) String() string {
	if label, ok := saleStatusLabels[s]; ok {
		return label
	}
	return "UNKNOWN"
}

// ProductStatus mirrors the catalog's product lifecycle (spec §3); the
// RDE only reads ACTIVE products.
type ProductStatus int

const (
	ProductActive ProductStatus = iota
	ProductDiscontinued
	ProductOutOfStock
)

var productStatusLabels = map[ProductStatus]string{
	ProductActive:       "ACTIVE",
	ProductDiscontinued: "DISCONTINUED",
	ProductOutOfStock:   "OUT_OF_STOCK",
}

func (s ProductStatus) String() string {
	if label, ok := productStatusLabels[s]; ok {
		return label
	}
	return "UNKNOWN"
}
