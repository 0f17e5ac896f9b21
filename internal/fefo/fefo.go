// Package fefo implements the FEFO Sale Allocator (spec §4.10): on
// sale creation, consumes batches in (expiry asc, received asc) order,
// records one SALE movement per batch touched, and computes sale
// totals. Refunds reverse the consumption with RETURN movements.
// Grounded on the same store.DB.WithTx transaction shape the teacher
// uses for multi-statement writes, generalized to serializable
// isolation per this specification's oversell-prevention requirement.
package fefo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rxreplenish/rde/internal/domain"
	"github.com/rxreplenish/rde/internal/ledger"
	"github.com/rxreplenish/rde/internal/store"
)

// Allocator consumes inventory FEFO-first for a sale, within one
// transaction shared with the ledger.
type Allocator struct {
	db  *store.DB
	led *ledger.Postgres
}

// New builds an Allocator over db, using led for FEFO reads and
// movement writes inside the same transaction.
func New(db *store.DB, led *ledger.Postgres) *Allocator {
	return &Allocator{db: db, led: led}
}

// Allocate consumes stock for every line of req and persists the Sale,
// per spec §4.10 steps 1-2. It fails atomically: if any line cannot be
// fully covered, the whole sale is aborted and nothing is written.
func (a *Allocator) Allocate(ctx context.Context, req domain.SaleRequest) (domain.Sale, error) {
	var sale domain.Sale

	err := a.db.WithSerializableTx(ctx, func(tx *sql.Tx) error {
		sale = domain.Sale{
			ID:            uuid.New(),
			SaleNumber:    newSaleNumber(),
			StoreID:       req.StoreID,
			Cashier:       req.Cashier,
			PaymentMethod: req.PaymentMethod,
			Status:        domain.SaleCompleted,
			CreatedAt:     time.Now().UTC(),
		}

		for _, lineReq := range req.Lines {
			line, err := a.consumeLine(ctx, tx, sale, lineReq)
			if err != nil {
				return err
			}
			sale.Lines = append(sale.Lines, line)
		}

		sale.Totals = computeTotals(sale.Lines, req.Paid)

		return a.insertSale(ctx, tx, sale)
	})

	return sale, err
}

// consumeLine walks batches in FEFO order for one line, updating each
// touched batch and appending a SALE movement (spec §4.10 step 1).
func (a *Allocator) consumeLine(ctx context.Context, tx *sql.Tx, sale domain.Sale, lineReq domain.SaleLineRequest) (domain.SaleLine, error) {
	batches, err := a.led.BatchesByFEFOTx(ctx, tx, sale.StoreID, lineReq.ProductID)
	if err != nil {
		return domain.SaleLine{}, fmt.Errorf("loading candidate batches: %w", err)
	}

	available := 0
	for _, b := range batches {
		available += b.QtyOnHand
	}
	if available < lineReq.Qty {
		return domain.SaleLine{}, fmt.Errorf("%w: product %s requires %d, has %d", domain.ErrInsufficientStock, lineReq.ProductID, lineReq.Qty, available)
	}

	remaining := lineReq.Qty
	var firstBatch uuid.UUID

	for _, b := range batches {
		if remaining <= 0 {
			break
		}
		take := remaining
		if take > b.QtyOnHand {
			take = b.QtyOnHand
		}

		unitCost := b.UnitCost
		movement := domain.StockMovement{
			ProductID: lineReq.ProductID,
			BatchID:   b.ID,
			StoreID:   sale.StoreID,
			Type:      domain.MovementSale,
			Qty:       -take,
			UnitCost:  &unitCost,
			RefTable:  "sales",
			RefID:     sale.ID.String(),
		}

		if _, err := a.led.ApplyMovementTx(ctx, tx, movement); err != nil {
			return domain.SaleLine{}, fmt.Errorf("applying sale movement: %w", err)
		}

		if firstBatch == uuid.Nil {
			firstBatch = b.ID
		}
		remaining -= take
	}

	lineTotal := lineReq.UnitPrice.MulQty(lineReq.Qty)

	return domain.SaleLine{
		ID:        uuid.New(),
		SaleID:    sale.ID,
		ProductID: lineReq.ProductID,
		BatchID:   firstBatch,
		Qty:       lineReq.Qty,
		UnitPrice: lineReq.UnitPrice,
		TaxRate:   lineReq.TaxRate,
		Discount:  lineReq.Discount,
		LineTotal: lineTotal,
	}, nil
}

// computeTotals implements spec §4.10 step 2's formula.
func computeTotals(lines []domain.SaleLine, paid domain.Money) domain.SaleTotals {
	subtotal := domain.Zero()
	tax := domain.Zero()
	discount := domain.Zero()

	for _, l := range lines {
		lineSubtotal := l.UnitPrice.MulQty(l.Qty)
		subtotal = subtotal.Add(lineSubtotal)
		tax = tax.Add(domain.NewMoney(lineSubtotal.Value().Mul(decimal.NewFromFloat(l.TaxRate))))
		discount = discount.Add(domain.NewMoney(lineSubtotal.Value().Mul(decimal.NewFromFloat(l.Discount))))
	}

	total := subtotal.Add(tax).Sub(discount)
	change := paid.Sub(total)

	return domain.SaleTotals{
		Subtotal: subtotal,
		Tax:      tax,
		Discount: discount,
		Total:    total,
		Paid:     paid,
		Change:   change,
	}
}

func (a *Allocator) insertSale(ctx context.Context, tx *sql.Tx, sale domain.Sale) error {
	const insertSale = `
		INSERT INTO sales (id, sale_number, store_id, cashier, subtotal, tax, discount, total, paid, change, payment_method, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := tx.ExecContext(ctx, insertSale,
		sale.ID, sale.SaleNumber, sale.StoreID, sale.Cashier,
		sale.Totals.Subtotal.String(), sale.Totals.Tax.String(), sale.Totals.Discount.String(),
		sale.Totals.Total.String(), sale.Totals.Paid.String(), sale.Totals.Change.String(),
		sale.PaymentMethod, int(sale.Status), sale.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting sale: %w", err)
	}

	const insertLine = `
		INSERT INTO sale_lines (id, sale_id, product_id, batch_id, qty, unit_price, tax_rate, discount, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	for _, l := range sale.Lines {
		_, err := tx.ExecContext(ctx, insertLine,
			l.ID, l.SaleID, l.ProductID, l.BatchID, l.Qty, l.UnitPrice.String(), l.TaxRate, l.Discount, l.LineTotal.String(),
		)
		if err != nil {
			return fmt.Errorf("inserting sale line: %w", err)
		}
	}

	return nil
}

// Refund marks a sale REFUNDED and reverses each line's batch
// consumption with a RETURN movement (spec §4.10 step 3). Refunding an
// already-REFUNDED sale fails with ErrAlreadyRefunded.
func (a *Allocator) Refund(ctx context.Context, saleID uuid.UUID) error {
	return a.db.WithSerializableTx(ctx, func(tx *sql.Tx) error {
		var status int
		var storeID uuid.UUID
		err := tx.QueryRowContext(ctx, `SELECT status, store_id FROM sales WHERE id = $1 FOR UPDATE`, saleID).Scan(&status, &storeID)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("loading sale: %w", err)
		}
		if domain.SaleStatus(status) == domain.SaleRefunded {
			return domain.ErrAlreadyRefunded
		}

		rows, err := tx.QueryContext(ctx, `SELECT id, product_id, batch_id, qty, unit_price FROM sale_lines WHERE sale_id = $1`, saleID)
		if err != nil {
			return fmt.Errorf("loading sale lines: %w", err)
		}
		type refundLine struct {
			id, productID, batchID uuid.UUID
			qty                    int
		}
		var lines []refundLine
		for rows.Next() {
			var l refundLine
			var unitPrice string
			if err := rows.Scan(&l.id, &l.productID, &l.batchID, &l.qty, &unitPrice); err != nil {
				rows.Close()
				return fmt.Errorf("scanning sale line: %w", err)
			}
			lines = append(lines, l)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for _, l := range lines {
			movement := domain.StockMovement{
				ProductID: l.productID,
				BatchID:   l.batchID,
				StoreID:   storeID,
				Type:      domain.MovementReturn,
				Qty:       l.qty,
				RefTable:  "sales",
				RefID:     saleID.String(),
			}
			if _, err := a.led.ApplyMovementTx(ctx, tx, movement); err != nil {
				return fmt.Errorf("applying return movement: %w", err)
			}
		}

		if _, err := tx.ExecContext(ctx, `UPDATE sales SET status = $1 WHERE id = $2`, int(domain.SaleRefunded), saleID); err != nil {
			return fmt.Errorf("updating sale status: %w", err)
		}

		return nil
	})
}

func newSaleNumber() string {
	return fmt.Sprintf("SALE-%d", time.Now().UnixNano())
}
