package assembler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rxreplenish/rde/internal/domain"
)

type fakeStock struct {
	qty int
}

func (f fakeStock) CurrentStock(ctx context.Context, storeID, productID uuid.UUID) (int, error) {
	return f.qty, nil
}

type fakeSales struct {
	series []float64
}

func (f fakeSales) DailySeries(ctx context.Context, storeID, productID uuid.UUID, periodDays int, now time.Time) ([]float64, error) {
	return f.series, nil
}

type fakeCatalog struct {
	products []domain.Product
	quotes   map[uuid.UUID][]SupplierQuote
}

func (f fakeCatalog) ActiveProducts(ctx context.Context, storeID uuid.UUID) ([]domain.Product, error) {
	return f.products, nil
}

func (f fakeCatalog) SuppliersFor(ctx context.Context, productID uuid.UUID) ([]SupplierQuote, error) {
	return f.quotes[productID], nil
}

type erroringStock struct {
	err error
}

func (f erroringStock) CurrentStock(ctx context.Context, storeID, productID uuid.UUID) (int, error) {
	return 0, f.err
}

func constantSeries(n int, v float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = v
	}
	return s
}

func TestGenerate_Basic(t *testing.T) {
	storeID := uuid.New()
	productID := uuid.New()
	supplierID := uuid.New()

	product := domain.Product{ID: productID, SKU: "SKU-1", Status: domain.ProductActive}
	quote := SupplierQuote{
		Supplier: domain.Supplier{ID: supplierID, Name: "Acme", Schedule: domain.Daily(), LeadTimeDays: 2, Active: true},
		UnitPrice: domain.MoneyFromFloat(1.00),
		MOQ:       1,
	}

	a := New(
		fakeStock{qty: 25},
		fakeSales{series: constantSeries(30, 10)},
		fakeCatalog{
			products: []domain.Product{product},
			quotes:   map[uuid.UUID][]SupplierQuote{productID: {quote}},
		},
		func() time.Time { return time.Date(2026, 8, 3, 9, 0, 0, 0, time.UTC) },
	)

	req := domain.GenerationRequest{StoreID: storeID, CoverageDays: 7, ServiceLevel: 0.95, AnalysisPeriodDays: 30, WorkerCount: 4}
	if err := req.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	result, err := a.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Suggestions) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(result.Suggestions))
	}

	s := result.Suggestions[0]
	if s.ProductID != productID {
		t.Errorf("expected productID %s, got %s", productID, s.ProductID)
	}
	if s.SupplierID == nil || *s.SupplierID != supplierID {
		t.Errorf("expected recommended supplier %s", supplierID)
	}
	if s.OrderQty <= 0 {
		t.Error("expected a positive order quantity")
	}
	if result.Summary.TotalProducts != 1 {
		t.Errorf("expected total products 1, got %d", result.Summary.TotalProducts)
	}
}

func TestGenerate_NoSuppliers(t *testing.T) {
	storeID := uuid.New()
	productID := uuid.New()
	product := domain.Product{ID: productID, SKU: "SKU-2", Status: domain.ProductActive}

	a := New(
		fakeStock{qty: 100},
		fakeSales{series: constantSeries(30, 5)},
		fakeCatalog{products: []domain.Product{product}, quotes: map[uuid.UUID][]SupplierQuote{}},
		func() time.Time { return time.Now() },
	)

	req := domain.GenerationRequest{StoreID: storeID, CoverageDays: 7, ServiceLevel: 0.95, AnalysisPeriodDays: 30, WorkerCount: 2}
	req.Validate()

	result, err := a.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Suggestions) != 1 {
		t.Fatalf("expected a suggestion even with no suppliers, got %d", len(result.Suggestions))
	}
	if result.Suggestions[0].SupplierID != nil {
		t.Error("expected nil supplier when no suppliers are eligible")
	}
	if len(result.Suggestions[0].Reason.Errors) == 0 {
		t.Error("expected a reason error noting no eligible suppliers")
	}
}

func TestGenerate_CancelledContextDiscardsPartialResults(t *testing.T) {
	storeID := uuid.New()
	productID := uuid.New()
	product := domain.Product{ID: productID, SKU: "SKU-3", Status: domain.ProductActive}

	a := New(
		fakeStock{qty: 25},
		fakeSales{series: constantSeries(30, 10)},
		fakeCatalog{products: []domain.Product{product}, quotes: map[uuid.UUID][]SupplierQuote{}},
		func() time.Time { return time.Now() },
	)

	req := domain.GenerationRequest{StoreID: storeID, CoverageDays: 7, ServiceLevel: 0.95, AnalysisPeriodDays: 30, WorkerCount: 2}
	req.Validate()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := a.Generate(ctx, req)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(result.Suggestions) != 0 {
		t.Errorf("expected no suggestions on a cancelled context, got %d", len(result.Suggestions))
	}
}

func TestGenerate_DependencyUnavailableAbortsWholeRequest(t *testing.T) {
	storeID := uuid.New()
	productA := domain.Product{ID: uuid.New(), SKU: "SKU-A", Status: domain.ProductActive}
	productB := domain.Product{ID: uuid.New(), SKU: "SKU-B", Status: domain.ProductActive}

	a := New(
		erroringStock{err: domain.ErrDependencyUnavailable},
		fakeSales{series: constantSeries(30, 10)},
		fakeCatalog{products: []domain.Product{productA, productB}, quotes: map[uuid.UUID][]SupplierQuote{}},
		func() time.Time { return time.Now() },
	)

	req := domain.GenerationRequest{StoreID: storeID, CoverageDays: 7, ServiceLevel: 0.95, AnalysisPeriodDays: 30, WorkerCount: 2}
	req.Validate()

	result, err := a.Generate(context.Background(), req)
	if !errors.Is(err, domain.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
	if len(result.Suggestions) != 0 {
		t.Errorf("expected no suggestions when a dependency is unavailable, got %d", len(result.Suggestions))
	}
}

func TestGenerate_PerSKUReadFailureEmitsMonitorSuggestion(t *testing.T) {
	storeID := uuid.New()
	productID := uuid.New()
	product := domain.Product{ID: productID, SKU: "SKU-4", Status: domain.ProductActive}

	a := New(
		erroringStock{err: errors.New("transient read glitch")},
		fakeSales{series: constantSeries(30, 10)},
		fakeCatalog{products: []domain.Product{product}, quotes: map[uuid.UUID][]SupplierQuote{}},
		func() time.Time { return time.Now() },
	)

	req := domain.GenerationRequest{StoreID: storeID, CoverageDays: 7, ServiceLevel: 0.95, AnalysisPeriodDays: 30, WorkerCount: 2}
	req.Validate()

	result, err := a.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Suggestions) != 1 {
		t.Fatalf("expected the SKU to still be emitted, got %d suggestions", len(result.Suggestions))
	}

	s := result.Suggestions[0]
	if s.Reason.Action != domain.ActionMonitor {
		t.Errorf("expected action MONITOR, got %s", s.Reason.Action)
	}
	if len(s.Reason.Errors) == 0 {
		t.Error("expected a reason error describing the read failure")
	}
}

func TestGenerate_EmptyCatalog(t *testing.T) {
	a := New(
		fakeStock{},
		fakeSales{},
		fakeCatalog{products: nil, quotes: map[uuid.UUID][]SupplierQuote{}},
		func() time.Time { return time.Now() },
	)

	req := domain.GenerationRequest{StoreID: uuid.New(), CoverageDays: 7, ServiceLevel: 0.95, AnalysisPeriodDays: 30, WorkerCount: 3}
	req.Validate()

	result, err := a.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Suggestions) != 0 {
		t.Errorf("expected no suggestions for an empty catalog, got %d", len(result.Suggestions))
	}
}
