// Package assembler implements the Recommendation Assembler (spec
// §4.7): it orchestrates the Forecast Engine, Coverage Calculator, and
// Supplier Optimizer for each SKU in a store and emits a Suggestion.
// Per-SKU work is independent and runs across a bounded worker pool,
// grounded on the teacher's pipeline/worker.go#processFilesParallel and
// service/po_service.go#ProcessPOFiles job-channel + WaitGroup + error
// channel shape, generalized from per-file to per-product units of
// work.
package assembler

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rxreplenish/rde/internal/coverage"
	"github.com/rxreplenish/rde/internal/domain"
	"github.com/rxreplenish/rde/internal/forecast"
	"github.com/rxreplenish/rde/internal/optimizer"
)

// Assembler composes the read ports and pure calculators into per-SKU
// suggestions.
type Assembler struct {
	Stock   StockReader
	Sales   SalesHistoryReader
	Catalog CatalogReader
	Now     func() time.Time
}

// New builds an Assembler. now defaults to time.Now when nil.
func New(stock StockReader, sales SalesHistoryReader, catalog CatalogReader, now func() time.Time) *Assembler {
	if now == nil {
		now = time.Now
	}
	return &Assembler{Stock: stock, Sales: sales, Catalog: catalog, Now: now}
}

type skuJob struct {
	product domain.Product
}

type skuResult struct {
	suggestion *domain.Suggestion
	err        error
}

// Generate runs the full pipeline for every active product in req.StoreID,
// fanning the per-SKU work across req.WorkerCount goroutines (spec §4.7,
// §6.4). req must already be validated (domain.GenerationRequest.Validate).
func (a *Assembler) Generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error) {
	products, err := a.Catalog.ActiveProducts(ctx, req.StoreID)
	if err != nil {
		return domain.GenerationResult{}, fmt.Errorf("listing active products: %w", err)
	}

	// workCtx is cancelled either by the caller or, internally, the
	// moment a dependency-unavailable error surfaces, so in-flight
	// workers stop picking up new jobs once the whole request is
	// known to be aborting.
	workCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan skuJob, len(products))
	results := make(chan skuResult, len(products))

	var wg sync.WaitGroup
	workerCount := req.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
	}

	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				select {
				case <-workCtx.Done():
					results <- skuResult{err: workCtx.Err()}
					continue
				default:
				}

				suggestion, err := a.processOne(workCtx, req, job.product)
				results <- skuResult{suggestion: suggestion, err: err}
			}
		}()
	}

	for _, p := range products {
		jobs <- skuJob{product: p}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	var suggestions []domain.Suggestion
	var summary domain.GenerationSummary
	var abortErr error
	for r := range results {
		if r.err != nil {
			if errors.Is(r.err, context.Canceled) || errors.Is(r.err, context.DeadlineExceeded) {
				continue
			}
			if abortErr == nil {
				abortErr = r.err
				cancel()
			}
			continue
		}
		if r.suggestion == nil {
			continue
		}
		suggestions = append(suggestions, *r.suggestion)
		summary.TotalProducts++
		switch r.suggestion.Urgency {
		case domain.UrgencyCritical, domain.UrgencyUrgent:
			summary.CriticalProducts++
		case domain.UrgencyLow:
			summary.LowStockProducts++
		case domain.UrgencyGood:
			summary.GoodStockProducts++
		}
	}

	// The Assembler is atomic at the request level: a caller
	// cancellation or a dependency-unavailable abort both discard
	// whatever partial results were already produced.
	if err := ctx.Err(); err != nil {
		return domain.GenerationResult{}, err
	}
	if abortErr != nil {
		return domain.GenerationResult{}, abortErr
	}

	return domain.GenerationResult{Suggestions: suggestions, Summary: summary}, nil
}

// processOne runs the §4.7 per-SKU procedure. A genuine
// domain.ErrDependencyUnavailable (the backing source itself is down)
// is returned so Generate aborts the whole request; any other per-SKU
// read failure is instead recorded on the suggestion's Reason.Errors
// with action MONITOR, so one bad SKU does not sink the batch (§7).
func (a *Assembler) processOne(ctx context.Context, req domain.GenerationRequest, product domain.Product) (*domain.Suggestion, error) {
	now := a.Now()

	currentStock, err := a.Stock.CurrentStock(ctx, req.StoreID, product.ID)
	if err != nil {
		if errors.Is(err, domain.ErrDependencyUnavailable) {
			return nil, fmt.Errorf("reading current stock for %s: %w", product.SKU, err)
		}
		return degradedSuggestion(req, product, now, fmt.Sprintf("reading current stock: %v", err)), nil
	}

	series, err := a.Sales.DailySeries(ctx, req.StoreID, product.ID, req.AnalysisPeriodDays, now)
	if err != nil {
		if errors.Is(err, domain.ErrDependencyUnavailable) {
			return nil, fmt.Errorf("reading sales history for %s: %w", product.SKU, err)
		}
		return degradedSuggestion(req, product, now, fmt.Sprintf("reading sales history: %v", err)), nil
	}

	quotes, err := a.Catalog.SuppliersFor(ctx, product.ID)
	if err != nil {
		if errors.Is(err, domain.ErrDependencyUnavailable) {
			return nil, fmt.Errorf("reading suppliers for %s: %w", product.SKU, err)
		}
		return degradedSuggestion(req, product, now, fmt.Sprintf("reading suppliers: %v", err)), nil
	}

	var reasonErrors []string
	if len(quotes) == 0 {
		reasonErrors = append(reasonErrors, "no eligible suppliers for this product")
	}

	leadTime := 0
	if len(quotes) > 0 {
		leadTime = quotes[0].Supplier.LeadTimeDays
	}

	fc := forecast.Forecast(series, leadTime, req.ServiceLevel)

	cov := coverage.CurrentCoverage(currentStock, fc.MeanDailyDemand, now)
	scenarios := coverage.Scenarios(currentStock, fc.MeanDailyDemand, fc.SafetyStock, domain.Zero(), 1, []int{1, 7, 30})

	primaryOrderQty := coverage.OrderQuantity(currentStock, fc.MeanDailyDemand, req.CoverageDays, fc.SafetyStock, 1)

	var optResult optimizer.Result
	if len(quotes) > 0 {
		candidates := make([]optimizer.Candidate, len(quotes))
		for i, q := range quotes {
			candidates[i] = optimizer.Candidate{Supplier: q.Supplier, UnitPrice: q.UnitPrice}
		}
		optResult = optimizer.Evaluate(candidates, primaryOrderQty, cov.DaysRemaining, now)
	}

	urgency, action := domain.UrgencyFromDaysRemaining(cov.DaysRemaining)

	var recommended *domain.SupplierOption
	for i := range optResult.Options {
		if optResult.Options[i].Recommended {
			recommended = &optResult.Options[i]
		}
	}
	if recommended != nil && recommended.Risk == domain.RiskCritical {
		urgency = domain.UrgencyCritical
		action = domain.ActionOrderToday
	}

	rop := 0
	orderQty := primaryOrderQty
	var supplierID *uuid.UUID
	var nextDelivery *time.Time
	var moq int = 1
	for _, q := range quotes {
		if recommended != nil && q.Supplier.ID == recommended.SupplierID {
			moq = q.MOQ
			if moq <= 0 {
				moq = 1
			}
			break
		}
	}
	if recommended != nil {
		id := recommended.SupplierID
		supplierID = &id
		d := recommended.DeliveryDate
		nextDelivery = &d
		for _, q := range quotes {
			if q.Supplier.ID == recommended.SupplierID {
				rop = ropFor(fc.MeanDailyDemand, q.Supplier.LeadTimeDays, fc.SafetyStock)
				break
			}
		}
		orderQty = coverage.OrderQuantity(currentStock, fc.MeanDailyDemand, req.CoverageDays, fc.SafetyStock, moq)
	}

	message := messageFor(action, fc.Pattern)

	suggestionScenarios := toCoverageScenarios(scenarios)

	suggestion := domain.Suggestion{
		ID:                 uuid.New(),
		ProductID:          product.ID,
		StoreID:            req.StoreID,
		SupplierID:         supplierID,
		ROP:                rop,
		OrderQty:           orderQty,
		Status:             domain.SuggestionPending,
		AnalysisPeriodDays: req.AnalysisPeriodDays,
		StockDurationDays:  cov.DaysRemaining,
		Urgency:            urgency,
		NextDeliveryDate:   nextDelivery,
		Scenarios:          suggestionScenarios,
		Reason: domain.SuggestionReason{
			Pattern:          fc.Pattern,
			Confidence:       fc.PatternConfidence,
			Trend:            fc.Trend.Direction,
			ForecastedDemand: fc.MeanDailyDemand,
			Action:           action,
			Message:          message,
			SupplierOptions:  optResult.Options,
			SavingsVsMax:     optResult.SavingsVsMax,
			SavingsPercent:   optResult.SavingsPercent,
			Errors:           reasonErrors,
		},
		CreatedAt: now,
	}

	return &suggestion, nil
}

// degradedSuggestion builds the §7 fallback for a SKU whose read
// failed for a reason short of the whole dependency being down: it
// carries no forecast/coverage data, just the error and action MONITOR,
// so the SKU is still visible in the batch instead of silently missing.
func degradedSuggestion(req domain.GenerationRequest, product domain.Product, now time.Time, reason string) *domain.Suggestion {
	return &domain.Suggestion{
		ID:                 uuid.New(),
		ProductID:          product.ID,
		StoreID:            req.StoreID,
		Status:             domain.SuggestionPending,
		AnalysisPeriodDays: req.AnalysisPeriodDays,
		Urgency:            domain.UrgencyGood,
		Reason: domain.SuggestionReason{
			Action:  domain.ActionMonitor,
			Message: "Unable to fully analyze this product; monitor manually.",
			Errors:  []string{reason},
		},
		CreatedAt: now,
	}
}

// ropFor implements the reorder point formula of spec §4.7: ceil(meanDailyDemand*leadTime + safetyStock).
func ropFor(meanDailyDemand float64, leadTimeDays int, safetyStock int) int {
	v := meanDailyDemand*float64(leadTimeDays) + float64(safetyStock)
	return int(math.Ceil(math.Max(0, v)))
}

func toCoverageScenarios(in []coverage.Scenario) []domain.CoverageScenario {
	out := make([]domain.CoverageScenario, len(in))
	for i, s := range in {
		out[i] = domain.CoverageScenario{
			Label:              s.Label,
			CoverageDays:       s.CoverageDays,
			OrderQuantity:      s.OrderQuantity,
			FinalStock:         s.FinalStock,
			ActualCoverageDays: s.ActualCoverageDays,
			TotalCost:          s.TotalCost,
			CostPerDay:         s.CostPerDay,
		}
	}
	return out
}

func messageFor(action domain.Action, pattern domain.Pattern) string {
	switch action {
	case domain.ActionOrderToday:
		return fmt.Sprintf("Stock is critically low (%s demand); order today.", pattern)
	case domain.ActionOrderSoon:
		return fmt.Sprintf("Stock is running low (%s demand); order soon.", pattern)
	case domain.ActionReduceOrders:
		return "Stock is well above target coverage; hold off on ordering."
	default:
		return "Stock is within target coverage; no action needed."
	}
}
