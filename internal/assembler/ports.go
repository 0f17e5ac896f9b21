package assembler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rxreplenish/rde/internal/domain"
)

// StockReader is the read side of the Inventory Ledger the Assembler
// depends on (spec §4.1, §4.7 step 1).
type StockReader interface {
	CurrentStock(ctx context.Context, storeID, productID uuid.UUID) (int, error)
}

// SalesHistoryReader supplies the daily demand series the Forecast
// Engine consumes (spec §4.2, §4.7 step 1).
type SalesHistoryReader interface {
	DailySeries(ctx context.Context, storeID, productID uuid.UUID, periodDays int, now time.Time) ([]float64, error)
}

// CatalogReader supplies the product roster and, per product, the
// suppliers able to fill it with their price and schedule (spec §4.7
// step 1).
type CatalogReader interface {
	ActiveProducts(ctx context.Context, storeID uuid.UUID) ([]domain.Product, error)
	SuppliersFor(ctx context.Context, productID uuid.UUID) ([]SupplierQuote, error)
}

// SupplierQuote pairs a supplier with the price it quotes for one
// product, the input shape the Optimizer consumes (spec §4.6).
type SupplierQuote struct {
	Supplier  domain.Supplier
	UnitPrice domain.Money
	MOQ       int
}
