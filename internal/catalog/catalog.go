// Package catalog implements the read-only product/supplier catalog
// collaborator (spec §6.2): listing active products for a store and
// the suppliers able to fill a given product with their price and
// schedule. Grounded on the teacher's sqlx SelectContext read patterns
// in internal/repository/postgres/po_repository.go, wrapped by
// internal/breaker since the catalog is an external dependency the
// Assembler must not block on indefinitely.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rxreplenish/rde/internal/assembler"
	"github.com/rxreplenish/rde/internal/breaker"
	"github.com/rxreplenish/rde/internal/domain"
)

// Postgres implements assembler.CatalogReader.
type Postgres struct {
	db *sqlx.DB
	cb *breaker.Breaker
}

// New wraps db with a circuit breaker using cfg, or breaker.DefaultConfig
// when cfg is the zero value.
func New(db *sqlx.DB, cfg breaker.Config) *Postgres {
	if cfg.Name == "" {
		cfg = breaker.DefaultConfig("catalog")
	}
	return &Postgres{db: db, cb: breaker.New(cfg)}
}

type productRow struct {
	ID     uuid.UUID            `db:"id"`
	SKU    string               `db:"sku"`
	Name   string               `db:"name"`
	Unit   string               `db:"unit"`
	Status domain.ProductStatus `db:"status"`
}

func (p *Postgres) ActiveProducts(ctx context.Context, storeID uuid.UUID) ([]domain.Product, error) {
	return breaker.Execute(ctx, p.cb, func(ctx context.Context) ([]domain.Product, error) {
		const query = `
			SELECT p.id, p.sku, p.name, p.unit, p.status
			FROM products p
			JOIN store_products sp ON sp.product_id = p.id
			WHERE sp.store_id = $1 AND p.status = $2
			ORDER BY p.sku
		`
		var rows []productRow
		if err := p.db.SelectContext(ctx, &rows, query, storeID, int(domain.ProductActive)); err != nil {
			return nil, fmt.Errorf("listing active products: %w", err)
		}

		products := make([]domain.Product, len(rows))
		for i, r := range rows {
			products[i] = domain.Product{ID: r.ID, SKU: r.SKU, Name: r.Name, Unit: r.Unit, Status: r.Status}
		}
		return products, nil
	})
}

type supplierQuoteRow struct {
	SupplierID   uuid.UUID `db:"supplier_id"`
	Name         string    `db:"name"`
	LeadTimeDays int       `db:"lead_time_days"`
	ScheduleKind int        `db:"schedule_kind"`
	Weekday      int        `db:"weekday"`
	WeekParity   int        `db:"week_parity"`
	SpecificDays []int64    `db:"specific_days"` // weekday numbers, pq array
	MOQ          int        `db:"moq"`
	Active       bool       `db:"active"`
	UnitCost     string     `db:"unit_cost"`
	MOQOverride  *int       `db:"moq_override"`
}

func (p *Postgres) SuppliersFor(ctx context.Context, productID uuid.UUID) ([]assembler.SupplierQuote, error) {
	return breaker.Execute(ctx, p.cb, func(ctx context.Context) ([]assembler.SupplierQuote, error) {
		const query = `
			SELECT s.id AS supplier_id, s.name, s.lead_time_days, s.schedule_kind, s.weekday,
			       s.week_parity, s.specific_days, s.moq, s.active,
			       ps.unit_cost, ps.moq_override
			FROM suppliers s
			JOIN product_suppliers ps ON ps.supplier_id = s.id
			WHERE ps.product_id = $1 AND s.active = true
		`
		var rows []supplierQuoteRow
		if err := p.db.SelectContext(ctx, &rows, query, productID); err != nil {
			return nil, fmt.Errorf("listing suppliers for product %s: %w", productID, err)
		}

		quotes := make([]assembler.SupplierQuote, len(rows))
		for i, r := range rows {
			schedule := scheduleFromRow(r)

			unitCost, err := parseMoney(r.UnitCost)
			if err != nil {
				return nil, err
			}

			moq := r.MOQ
			if r.MOQOverride != nil {
				moq = *r.MOQOverride
			}

			quotes[i] = assembler.SupplierQuote{
				Supplier: domain.Supplier{
					ID:           r.SupplierID,
					Name:         r.Name,
					LeadTimeDays: r.LeadTimeDays,
					Schedule:     schedule,
					MOQ:          r.MOQ,
					Active:       r.Active,
				},
				UnitPrice: unitCost,
				MOQ:       moq,
			}
		}
		return quotes, nil
	})
}

// IsActive implements converter.SupplierValidator: the Converter
// checks this immediately before drafting a PO so a supplier
// deactivated after suggestion generation is caught at approval time
// (spec §4.9).
func (p *Postgres) IsActive(ctx context.Context, supplierID uuid.UUID) (bool, error) {
	return breaker.Execute(ctx, p.cb, func(ctx context.Context) (bool, error) {
		var active bool
		err := p.db.GetContext(ctx, &active, `SELECT active FROM suppliers WHERE id = $1`, supplierID)
		if err != nil {
			return false, fmt.Errorf("checking supplier active: %w", err)
		}
		return active, nil
	})
}

// ResolveProduct looks up a product's id by SKU and a supplier's id by
// name, for translating an external feed row (ingest §4.11) into the
// uuid.UUID references domain.GRNLine needs. Returns domain.ErrNotFound
// if either side of the pair can't be resolved.
type resolvedRefs struct {
	ProductID  uuid.UUID
	SupplierID uuid.UUID
}

func (p *Postgres) ResolveProduct(ctx context.Context, sku, supplierName string) (productID, supplierID uuid.UUID, err error) {
	refs, err := breaker.Execute(ctx, p.cb, func(ctx context.Context) (resolvedRefs, error) {
		var pID uuid.UUID
		if err := p.db.GetContext(ctx, &pID, `SELECT id FROM products WHERE sku = $1`, sku); err != nil {
			return resolvedRefs{}, fmt.Errorf("%w: sku %q", domain.ErrNotFound, sku)
		}

		var sID uuid.UUID
		if err := p.db.GetContext(ctx, &sID, `SELECT id FROM suppliers WHERE name = $1`, supplierName); err != nil {
			return resolvedRefs{}, fmt.Errorf("%w: supplier %q", domain.ErrNotFound, supplierName)
		}

		return resolvedRefs{ProductID: pID, SupplierID: sID}, nil
	})
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return refs.ProductID, refs.SupplierID, nil
}

func scheduleFromRow(r supplierQuoteRow) domain.SchedulePattern {
	switch domain.ScheduleKind(r.ScheduleKind) {
	case domain.ScheduleDaily:
		return domain.Daily()
	case domain.ScheduleWeekly:
		return domain.WeeklyPattern(time.Weekday(r.Weekday))
	case domain.ScheduleBiWeekly:
		return domain.BiWeeklyPattern(time.Weekday(r.Weekday), r.WeekParity)
	case domain.ScheduleSpecificDays:
		days := make([]time.Weekday, len(r.SpecificDays))
		for i, d := range r.SpecificDays {
			days[i] = time.Weekday(d)
		}
		return domain.SpecificDaysPattern(days...)
	default:
		return domain.Daily()
	}
}

func parseMoney(s string) (domain.Money, error) {
	var m domain.Money
	if err := m.UnmarshalJSON([]byte(`"` + s + `"`)); err != nil {
		return domain.Money{}, fmt.Errorf("parsing money column %q: %w", s, err)
	}
	return m, nil
}
