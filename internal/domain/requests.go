package domain

import (
	"time"

	"github.com/google/uuid"
)

// GenerationRequest is the input shape of a suggestion-generation run
// (spec §6).
type GenerationRequest struct {
	StoreID                   uuid.UUID
	CoverageDays              int     // one of {1,7,14,30,60,90}, default 7
	ServiceLevel              float64 // [0.5, 0.999], default 0.95
	AnalysisPeriodDays        int     // [7, 365], default 30
	IncludeSupplierComparison bool    // not defaulted by Validate; the Assembler does not read it
	WorkerCount               int     // default 8
}

// Validate enforces the bounds in spec §6 and fills in defaults for
// zero-valued fields.
func (r *GenerationRequest) Validate() error {
	if r.CoverageDays == 0 {
		r.CoverageDays = 7
	}
	allowedCoverage := map[int]bool{1: true, 7: true, 14: true, 30: true, 60: true, 90: true}
	if !allowedCoverage[r.CoverageDays] {
		return ErrValidation
	}

	if r.ServiceLevel == 0 {
		r.ServiceLevel = 0.95
	}
	if r.ServiceLevel < 0.5 || r.ServiceLevel > 0.999 {
		return ErrValidation
	}

	if r.AnalysisPeriodDays == 0 {
		r.AnalysisPeriodDays = 30
	}
	if r.AnalysisPeriodDays < 7 || r.AnalysisPeriodDays > 365 {
		return ErrValidation
	}

	if r.WorkerCount <= 0 {
		r.WorkerCount = 8
	}

	if r.StoreID == uuid.Nil {
		return ErrValidation
	}

	return nil
}

// GenerationSummary is the top-level counts block of a generation
// response (spec §6).
type GenerationSummary struct {
	TotalProducts     int `json:"total_products"`
	CriticalProducts  int `json:"critical_products"`
	LowStockProducts  int `json:"low_stock_products"`
	GoodStockProducts int `json:"good_stock_products"`
}

// GenerationResult is the full output of a generation run: one
// Suggestion per SKU plus the summary counts (spec §4.7, §6).
type GenerationResult struct {
	Suggestions []Suggestion
	Summary     GenerationSummary
}

// SuggestionFilter drives Suggestion Store listing (spec §4.8).
type SuggestionFilter struct {
	StoreID   uuid.UUID
	Status    *SuggestionStatus
	ProductID *uuid.UUID
	Page      int
	PageSize  int
}

// SuggestionUpdate carries the PENDING-only editable fields (spec §4.8).
type SuggestionUpdate struct {
	OrderQty *int
	ROP      *int
	Note     *string
}

// ApprovalRequest is the input to the Approval->PO Converter (spec §4.9).
type ApprovalRequest struct {
	SuggestionIDs []uuid.UUID `json:"suggestion_ids"`
	GeneratePO    bool        `json:"generate_po"`
	CreatedBy     string      `json:"created_by"`
}

// ApprovalResult reports the outcome of a conversion (spec §4.9). When
// the transaction aborts on ErrConcurrentModification, MovedSuggestionIDs
// and ConflictingSuggestionIDs still report which ids were PENDING
// versus already transitioned at the time of the conflict, even though
// the abort means neither set was actually persisted.
type ApprovalResult struct {
	CreatedPOs               []PurchaseOrder `json:"created_pos"`
	SkippedSuggestionIDs     []uuid.UUID     `json:"skipped_suggestion_ids,omitempty"`     // ErrSupplierUnknown, remain APPROVED
	MovedSuggestionIDs       []uuid.UUID     `json:"moved_suggestion_ids,omitempty"`       // were PENDING, would have moved to APPROVED
	ConflictingSuggestionIDs []uuid.UUID     `json:"conflicting_suggestion_ids,omitempty"` // not PENDING, caused the abort
	Errors                   []error         `json:"errors,omitempty"`
}

// GRNLine is one line of an inbound goods-receipt note (spec §4.11).
type GRNLine struct {
	ProductID   uuid.UUID  `json:"product_id"`
	SupplierID  uuid.UUID  `json:"supplier_id"`
	BatchNumber string     `json:"batch_number"` // resolved or generated upstream
	ExpiryDate  *time.Time `json:"expiry_date,omitempty"`
	UnitCost    Money      `json:"unit_cost"`
	Qty         int        `json:"qty"`
}

// GRN is a goods-receipt note submitted for ingestion (spec §4.11).
type GRN struct {
	StoreID   uuid.UUID  `json:"store_id"`
	Lines     []GRNLine  `json:"lines"`
	VATRate   *float64   `json:"vat_rate,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// GRNResult reports the outcome of ingesting a GRN.
type GRNResult struct {
	GRNNumber    int64 `json:"grn_number"`
	TotalCost    Money `json:"total_cost"`
	VATAmount    Money `json:"vat_amount"`
	TotalWithVAT Money `json:"total_with_vat"`
}

// SaleRequest is the input to the FEFO Sale Allocator (spec §4.10).
type SaleRequest struct {
	StoreID       uuid.UUID         `json:"store_id"`
	Cashier       string            `json:"cashier"`
	PaymentMethod string            `json:"payment_method"`
	Lines         []SaleLineRequest `json:"lines"`
	Paid          Money             `json:"paid"`
}

// SaleLineRequest is one requested line of a sale, prior to FEFO
// allocation filling in the batch/unit-cost details.
type SaleLineRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Qty       int       `json:"qty"`
	UnitPrice Money     `json:"unit_price"`
	TaxRate   float64   `json:"tax_rate"`
	Discount  float64   `json:"discount"`
}
