package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product is read-only from the RDE's perspective; the catalog owns writes.
type Product struct {
	ID     uuid.UUID     `json:"id" db:"id"`
	SKU    string        `json:"sku" db:"sku"`
	Name   string        `json:"name" db:"name"`
	Unit   string        `json:"unit" db:"unit"`
	Status ProductStatus `json:"status" db:"status"`
}

// Supplier captures delivery-schedule arithmetic inputs (spec §3).
type Supplier struct {
	ID          uuid.UUID      `json:"id" db:"id"`
	Name        string         `json:"name" db:"name"`
	LeadTimeDays int           `json:"lead_time_days" db:"lead_time_days"`
	Schedule    SchedulePattern `json:"schedule" db:"-"`
	MOQ         int            `json:"moq" db:"moq"`
	Active      bool           `json:"active" db:"active"`
	CutoffTime  *TimeOfDay     `json:"cutoff_time,omitempty" db:"-"`
}

// ProductSupplier is the many-to-many link carrying unit cost and an
// optional MOQ override (spec §3).
type ProductSupplier struct {
	ProductID   uuid.UUID `json:"product_id" db:"product_id"`
	SupplierID  uuid.UUID `json:"supplier_id" db:"supplier_id"`
	UnitCost    Money     `json:"unit_cost" db:"unit_cost"`
	MOQOverride *int      `json:"moq_override,omitempty" db:"moq_override"`
}

// Batch is a physically received lot of a product (spec §3, GLOSSARY).
type Batch struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	ProductID   uuid.UUID  `json:"product_id" db:"product_id"`
	StoreID     uuid.UUID  `json:"store_id" db:"store_id"`
	SupplierID  *uuid.UUID `json:"supplier_id,omitempty" db:"supplier_id"`
	BatchNumber string     `json:"batch_number" db:"batch_number"`
	ExpiryDate  *time.Time `json:"expiry_date,omitempty" db:"expiry_date"`
	UnitCost    Money      `json:"unit_cost" db:"unit_cost"`
	QtyOnHand   int        `json:"qty_on_hand" db:"qty_on_hand"`
	ReceivedAt  time.Time  `json:"received_at" db:"received_at"`
}

// StockMovement is an append-only ledger entry (spec §3).
type StockMovement struct {
	ID        uuid.UUID    `json:"id" db:"id"`
	ProductID uuid.UUID    `json:"product_id" db:"product_id"`
	BatchID   uuid.UUID    `json:"batch_id" db:"batch_id"`
	StoreID   uuid.UUID    `json:"store_id" db:"store_id"`
	Type      MovementType `json:"type" db:"type"`
	Qty       int          `json:"qty" db:"qty"` // signed
	UnitCost  *Money       `json:"unit_cost,omitempty" db:"unit_cost"`
	User      string       `json:"user,omitempty" db:"user"`
	RefTable  string       `json:"ref_table,omitempty" db:"ref_table"`
	RefID     string       `json:"ref_id,omitempty" db:"ref_id"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
}

// SaleTotals holds the money fields of a Sale (spec §3).
type SaleTotals struct {
	Subtotal Money `json:"subtotal"`
	Tax      Money `json:"tax"`
	Discount Money `json:"discount"`
	Total    Money `json:"total"`
	Paid     Money `json:"paid"`
	Change   Money `json:"change"`
}

// SaleLine is one line item of a Sale (spec §3, §4.10).
type SaleLine struct {
	ID        uuid.UUID `json:"id" db:"id"`
	SaleID    uuid.UUID `json:"sale_id" db:"sale_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	BatchID   uuid.UUID `json:"batch_id" db:"batch_id"` // first batch consumed
	Qty       int       `json:"qty" db:"qty"`
	UnitPrice Money     `json:"unit_price" db:"unit_price"`
	TaxRate   float64   `json:"tax_rate" db:"tax_rate"`
	Discount  float64   `json:"discount" db:"discount"`
	LineTotal Money     `json:"line_total" db:"line_total"`
}

// Sale is a POS transaction (spec §3, §4.10).
type Sale struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	SaleNumber    string     `json:"sale_number" db:"sale_number"`
	StoreID       uuid.UUID  `json:"store_id" db:"store_id"`
	Cashier       string     `json:"cashier" db:"cashier"`
	Totals        SaleTotals `json:"totals" db:"-"`
	PaymentMethod string     `json:"payment_method" db:"payment_method"`
	Status        SaleStatus `json:"status" db:"status"`
	Lines         []SaleLine `json:"lines" db:"-"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}

// SupplierOption is one candidate supplier considered by the Optimizer
// (spec §4.6), carried into the persisted Suggestion for traceability.
type SupplierOption struct {
	SupplierID       uuid.UUID `json:"supplier_id"`
	SupplierName     string    `json:"supplier_name"`
	UnitPrice        Money     `json:"unit_price"`
	OrderDate        time.Time `json:"order_date"`
	DeliveryDate     time.Time `json:"delivery_date"`
	DaysUntilDeliv   int       `json:"days_until_delivery"`
	TotalCost        Money     `json:"total_cost"`
	Risk             Risk      `json:"risk"`
	Recommended      bool      `json:"recommended"`
}

// CoverageScenario is one row of the coverage table (spec §4.5).
type CoverageScenario struct {
	Label             string  `json:"label"`
	CoverageDays      int     `json:"coverage_days"`
	OrderQuantity     int     `json:"order_quantity"`
	FinalStock        int     `json:"final_stock"`
	ActualCoverageDays float64 `json:"actual_coverage_days"`
	TotalCost         Money   `json:"total_cost"`
	CostPerDay        Money   `json:"cost_per_day"`
}

// SuggestionReason is the structured explanation attached to a
// Suggestion (spec §3).
type SuggestionReason struct {
	Pattern           Pattern          `json:"pattern"`
	Confidence        float64          `json:"confidence"`
	Trend             TrendDirection   `json:"trend"`
	ForecastedDemand  float64          `json:"forecasted_demand"`
	Action            Action           `json:"action"`
	Message           string           `json:"message"`
	SupplierOptions   []SupplierOption `json:"supplier_options"`
	SavingsVsMax      Money            `json:"savings_vs_max"`
	SavingsPercent    float64          `json:"savings_percent"`
	Errors            []string         `json:"errors,omitempty"`
}

// Suggestion is a per-SKU reorder recommendation (spec §3, §4.7).
type Suggestion struct {
	ID                 uuid.UUID          `json:"id" db:"id"`
	ProductID          uuid.UUID          `json:"product_id" db:"product_id"`
	StoreID            uuid.UUID          `json:"store_id" db:"store_id"`
	SupplierID         *uuid.UUID         `json:"supplier_id,omitempty" db:"supplier_id"`
	ROP                int                `json:"rop" db:"rop"`
	OrderQty           int                `json:"order_qty" db:"order_qty"`
	Status             SuggestionStatus   `json:"status" db:"status"`
	AnalysisPeriodDays int                `json:"analysis_period_days" db:"analysis_period_days"`
	StockDurationDays  float64            `json:"stock_duration_days" db:"stock_duration_days"`
	Urgency            Urgency            `json:"urgency" db:"urgency"`
	NextDeliveryDate   *time.Time         `json:"next_delivery_date,omitempty" db:"next_delivery_date"`
	Scenarios          []CoverageScenario `json:"scenarios" db:"-"`
	Reason             SuggestionReason   `json:"reason" db:"-"`
	Note               string             `json:"note,omitempty" db:"note"`
	CreatedAt          time.Time          `json:"created_at" db:"created_at"`
}

// POLine is one purchase-order line (spec §3).
type POLine struct {
	ID        uuid.UUID `json:"id" db:"id"`
	POID      uuid.UUID `json:"po_id" db:"po_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Qty       int       `json:"qty" db:"qty"`
	UnitCost  Money     `json:"unit_cost" db:"unit_cost"`
	LineTotal Money     `json:"line_total" db:"line_total"`
}

// PurchaseOrder is the atomic unit of supplier commitment (spec §3).
type PurchaseOrder struct {
	ID          uuid.UUID `json:"id" db:"id"`
	PONumber    int64     `json:"po_number" db:"po_number"`
	SupplierID  uuid.UUID `json:"supplier_id" db:"supplier_id"`
	Status      POStatus  `json:"status" db:"status"`
	ExpectedAt  time.Time `json:"expected_at" db:"expected_at"`
	Subtotal    Money     `json:"subtotal" db:"subtotal"`
	CreatedBy   string    `json:"created_by" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	Lines       []POLine  `json:"lines" db:"-"`
}
