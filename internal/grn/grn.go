// Package grn implements the GRN Ingestor (spec §4.11): records
// receipt of goods, creating or merging batches by (product,
// batch-number) and appending RECEIVE movements. Grounded on the same
// store.DB.WithTx shape as fefo, with the batch merge itself using the
// teacher's po_repository.go#upsertStore INSERT...ON CONFLICT...
// RETURNING idiom applied to the batch table.
package grn

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rxreplenish/rde/internal/domain"
	"github.com/rxreplenish/rde/internal/ledger"
	"github.com/rxreplenish/rde/internal/store"
)

// Ingestor records incoming goods receipts against the ledger.
type Ingestor struct {
	db  *store.DB
	led *ledger.Postgres
}

// New builds an Ingestor over db, sharing led's batch/movement
// primitives inside the Ingestor's own transaction.
func New(db *store.DB, led *ledger.Postgres) *Ingestor {
	return &Ingestor{db: db, led: led}
}

// Ingest assigns a monotonic GRN number, merges or creates each line's
// batch, appends a RECEIVE movement per line, and computes VAT totals,
// all in one transaction (spec §4.11).
func (ing *Ingestor) Ingest(ctx context.Context, g domain.GRN) (domain.GRNResult, error) {
	var result domain.GRNResult

	err := ing.db.WithSerializableTx(ctx, func(tx *sql.Tx) error {
		grnNumber, err := nextGRNNumber(ctx, tx)
		if err != nil {
			return err
		}

		now := time.Now().UTC()

		for _, line := range g.Lines {
			batch := domain.Batch{
				ProductID:   line.ProductID,
				StoreID:     g.StoreID,
				SupplierID:  &line.SupplierID,
				BatchNumber: line.BatchNumber,
				ExpiryDate:  line.ExpiryDate,
				UnitCost:    line.UnitCost,
				ReceivedAt:  now,
			}

			// UpsertBatchTx only finds-or-creates the batch at qty 0; the
			// RECEIVE movement below is what applies line.Qty, so it's
			// added exactly once whether or not the batch already existed.
			upserted, err := ing.led.UpsertBatchTx(ctx, tx, batch)
			if err != nil {
				return fmt.Errorf("upserting batch for line %s: %w", line.ProductID, err)
			}

			unitCost := line.UnitCost
			movement := domain.StockMovement{
				ProductID: line.ProductID,
				BatchID:   upserted.ID,
				StoreID:   g.StoreID,
				Type:      domain.MovementReceive,
				Qty:       line.Qty,
				UnitCost:  &unitCost,
				RefTable:  "grn",
				RefID:     fmt.Sprintf("%d", grnNumber),
			}
			if _, err := ing.led.ApplyMovementTx(ctx, tx, movement); err != nil {
				return fmt.Errorf("appending receive movement for line %s: %w", line.ProductID, err)
			}
		}

		totalCost, vatAmount, totalWithVAT := computeGRNTotals(g.Lines, g.VATRate)

		if err := recordGRN(ctx, tx, grnNumber, g.StoreID, totalCost, vatAmount, totalWithVAT); err != nil {
			return err
		}

		result = domain.GRNResult{
			GRNNumber:    grnNumber,
			TotalCost:    totalCost,
			VATAmount:    vatAmount,
			TotalWithVAT: totalWithVAT,
		}
		return nil
	})

	return result, err
}

// computeGRNTotals sums each line's cost and applies VATRate (if any)
// to the total, never crossing through float64 so the result stays
// exact decimal money (spec §9, §4.11).
func computeGRNTotals(lines []domain.GRNLine, vatRate *float64) (totalCost, vatAmount, totalWithVAT domain.Money) {
	totalCost = domain.Zero()
	for _, line := range lines {
		totalCost = totalCost.Add(line.UnitCost.MulQty(line.Qty))
	}

	vatAmount = domain.Zero()
	if vatRate != nil {
		vatAmount = domain.NewMoney(totalCost.Value().Mul(decimal.NewFromFloat(*vatRate)))
	}
	totalWithVAT = totalCost.Add(vatAmount)
	return totalCost, vatAmount, totalWithVAT
}

// nextGRNNumber allocates a monotonic GRN number from a single
// counter row locked FOR UPDATE, the same pattern the Approval->PO
// Converter uses for PO numbers (spec §5).
func nextGRNNumber(ctx context.Context, tx *sql.Tx) (int64, error) {
	var next int64
	err := tx.QueryRowContext(ctx, `
		UPDATE counters SET value = value + 1 WHERE name = 'grn_number' RETURNING value
	`).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("allocating grn number: %w", err)
	}
	return next, nil
}

func recordGRN(ctx context.Context, tx *sql.Tx, grnNumber int64, storeID uuid.UUID, totalCost, vatAmount, totalWithVAT domain.Money) error {
	const insert = `
		INSERT INTO goods_receipt_notes (grn_number, store_id, total_cost, vat_amount, total_with_vat, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := tx.ExecContext(ctx, insert, grnNumber, storeID, totalCost.String(), vatAmount.String(), totalWithVAT.String(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("recording grn header: %w", err)
	}
	return nil
}
