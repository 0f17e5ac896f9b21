// Package converter implements the Approval->PO Converter (spec
// §4.9): atomically moves a set of PENDING suggestions to APPROVED,
// then (when requested) groups them by supplier into DRAFT purchase
// orders. Grounded on the teacher's po_repository.go upsert/counter
// idiom, sharing store.DB's serializable-transaction contract with
// fefo and grn.
package converter

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/rxreplenish/rde/internal/domain"
	"github.com/rxreplenish/rde/internal/store"
	"github.com/rxreplenish/rde/internal/suggestion"
)

// Archive persists a CSV export of each draft PO's lines for downstream
// systems (e.g. a supplier-facing ordering portal) to pick up. Optional:
// a nil Archive skips export entirely. Implemented by storage.MinioClient.
type Archive interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
}

// SupplierValidator confirms a supplier is still active; an inactive
// supplier is the trigger for domain.ErrSupplierUnknown (spec §4.9).
type SupplierValidator interface {
	IsActive(ctx context.Context, supplierID uuid.UUID) (bool, error)
}

// Converter approves suggestions and, optionally, converts them into
// draft purchase orders grouped by supplier.
type Converter struct {
	db        *store.DB
	sugStore  *suggestion.Store
	suppliers SupplierValidator
	archive   Archive
}

// New builds a Converter over db, using sugStore to load suggestions
// and suppliers for the generatePO supplier-liveness check.
// archive may be nil, in which case draft POs aren't exported.
func New(db *store.DB, sugStore *suggestion.Store, suppliers SupplierValidator, archive Archive) *Converter {
	return &Converter{db: db, sugStore: sugStore, suppliers: suppliers, archive: archive}
}

// Approve implements spec §4.9's whole procedure in one transaction.
func (c *Converter) Approve(ctx context.Context, req domain.ApprovalRequest) (domain.ApprovalResult, error) {
	var result domain.ApprovalResult

	err := c.db.WithSerializableTx(ctx, func(tx *sql.Tx) error {
		result = domain.ApprovalResult{}
		selected := make([]domain.Suggestion, 0, len(req.SuggestionIDs))
		var conflicting []uuid.UUID
		for _, id := range req.SuggestionIDs {
			sug, err := c.sugStore.Get(ctx, tx, id)
			if err != nil {
				return err
			}
			if sug.Status != domain.SuggestionPending {
				conflicting = append(conflicting, sug.ID)
				continue
			}
			selected = append(selected, sug)
		}
		if len(selected) == 0 {
			return domain.ErrNoEligibleSuggestions
		}
		if len(conflicting) > 0 {
			for _, sug := range selected {
				result.MovedSuggestionIDs = append(result.MovedSuggestionIDs, sug.ID)
			}
			result.ConflictingSuggestionIDs = conflicting
			return domain.ErrConcurrentModification
		}

		for _, sug := range selected {
			if _, err := tx.ExecContext(ctx, `UPDATE suggestions SET status = $1 WHERE id = $2`,
				int(domain.SuggestionApproved), sug.ID); err != nil {
				return fmt.Errorf("approving suggestion %s: %w", sug.ID, err)
			}
		}

		if !req.GeneratePO {
			result.CreatedPOs = nil
			return nil
		}

		groups := groupBySupplier(selected)
		for supplierID, group := range groups {
			active, err := c.suppliers.IsActive(ctx, supplierID)
			if err != nil {
				return fmt.Errorf("checking supplier %s: %w", supplierID, err)
			}
			if !active {
				result.Errors = append(result.Errors, fmt.Errorf("%w: supplier %s", domain.ErrSupplierUnknown, supplierID))
				for _, sug := range group {
					result.SkippedSuggestionIDs = append(result.SkippedSuggestionIDs, sug.ID)
				}
				continue
			}

			po, err := c.createDraftPO(ctx, tx, supplierID, group, req.CreatedBy)
			if err != nil {
				return fmt.Errorf("creating draft PO for supplier %s: %w", supplierID, err)
			}
			result.CreatedPOs = append(result.CreatedPOs, po)

			for _, sug := range group {
				if _, err := tx.ExecContext(ctx, `UPDATE suggestions SET status = $1 WHERE id = $2`,
					int(domain.SuggestionOrdered), sug.ID); err != nil {
					return fmt.Errorf("marking suggestion %s ordered: %w", sug.ID, err)
				}
			}
		}

		return nil
	})
	if err != nil {
		return result, err
	}

	if c.archive != nil {
		for _, po := range result.CreatedPOs {
			if exportErr := c.exportDraftPO(ctx, po); exportErr != nil {
				log.Warn().Err(exportErr).Str("po_number", fmt.Sprint(po.PONumber)).Msg("exporting draft PO to object storage")
			}
		}
	}

	return result, nil
}

// exportDraftPO writes po's lines as CSV to the archive under a path
// keyed by supplier and PO number, for downstream systems (e.g. a
// supplier portal) that consume draft POs without querying postgres.
// Failure to export never invalidates an already-committed approval.
func (c *Converter) exportDraftPO(ctx context.Context, po domain.PurchaseOrder) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"product_id", "qty", "unit_cost", "line_total"}); err != nil {
		return fmt.Errorf("writing po export header: %w", err)
	}
	for _, l := range po.Lines {
		record := []string{l.ProductID.String(), fmt.Sprint(l.Qty), l.UnitCost.String(), l.LineTotal.String()}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("writing po export line: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing po export csv: %w", err)
	}

	key := fmt.Sprintf("draft-pos/%s/%d.csv", po.SupplierID, po.PONumber)
	return c.archive.Upload(ctx, key, buf.Bytes(), "text/csv")
}

func groupBySupplier(suggestions []domain.Suggestion) map[uuid.UUID][]domain.Suggestion {
	groups := make(map[uuid.UUID][]domain.Suggestion)
	for _, sug := range suggestions {
		if sug.SupplierID == nil {
			continue
		}
		groups[*sug.SupplierID] = append(groups[*sug.SupplierID], sug)
	}
	return groups
}

func (c *Converter) createDraftPO(ctx context.Context, tx *sql.Tx, supplierID uuid.UUID, group []domain.Suggestion, createdBy string) (domain.PurchaseOrder, error) {
	poNumber, err := nextPONumber(ctx, tx)
	if err != nil {
		return domain.PurchaseOrder{}, err
	}

	leadTimeDays, err := supplierLeadTimeDays(ctx, tx, supplierID)
	if err != nil {
		return domain.PurchaseOrder{}, err
	}

	po := domain.PurchaseOrder{
		ID:         uuid.New(),
		PONumber:   poNumber,
		SupplierID: supplierID,
		Status:     domain.PODraft,
		ExpectedAt: time.Now().UTC().AddDate(0, 0, leadTimeDays),
		Subtotal:   domain.Zero(),
		CreatedBy:  createdBy,
		CreatedAt:  time.Now().UTC(),
	}

	// stable ordering for deterministic PO line layout
	sort.Slice(group, func(i, j int) bool { return group[i].ID.String() < group[j].ID.String() })

	for _, sug := range group {
		unitCost := recommendedUnitCost(sug)
		lineTotal := unitCost.MulQty(sug.OrderQty)
		line := domain.POLine{
			ID:        uuid.New(),
			POID:      po.ID,
			ProductID: sug.ProductID,
			Qty:       sug.OrderQty,
			UnitCost:  unitCost,
			LineTotal: lineTotal,
		}
		po.Lines = append(po.Lines, line)
		po.Subtotal = po.Subtotal.Add(lineTotal)
	}

	if err := insertPO(ctx, tx, po); err != nil {
		return domain.PurchaseOrder{}, err
	}

	return po, nil
}

// recommendedUnitCost returns the price captured in the suggestion at
// generation time, never recomputed (spec §4.9 step 3).
func recommendedUnitCost(sug domain.Suggestion) domain.Money {
	for _, opt := range sug.Reason.SupplierOptions {
		if opt.Recommended {
			return opt.UnitPrice
		}
	}
	return domain.Zero()
}

func nextPONumber(ctx context.Context, tx *sql.Tx) (int64, error) {
	var next int64
	err := tx.QueryRowContext(ctx, `
		UPDATE counters SET value = value + 1 WHERE name = 'po_number' RETURNING value
	`).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("allocating po number: %w", err)
	}
	return next, nil
}

func supplierLeadTimeDays(ctx context.Context, tx *sql.Tx, supplierID uuid.UUID) (int, error) {
	var leadTime int
	err := tx.QueryRowContext(ctx, `SELECT lead_time_days FROM suppliers WHERE id = $1`, supplierID).Scan(&leadTime)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrSupplierUnknown
	}
	if err != nil {
		return 0, fmt.Errorf("reading supplier lead time: %w", err)
	}
	return leadTime, nil
}

func insertPO(ctx context.Context, tx *sql.Tx, po domain.PurchaseOrder) error {
	const insertPO = `
		INSERT INTO purchase_orders (id, po_number, supplier_id, status, expected_at, subtotal, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := tx.ExecContext(ctx, insertPO,
		po.ID, po.PONumber, po.SupplierID, int(po.Status), po.ExpectedAt, po.Subtotal.String(), po.CreatedBy, po.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting purchase order: %w", err)
	}

	const insertLine = `
		INSERT INTO po_lines (id, po_id, product_id, qty, unit_cost, line_total)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, l := range po.Lines {
		if _, err := tx.ExecContext(ctx, insertLine, l.ID, l.POID, l.ProductID, l.Qty, l.UnitCost.String(), l.LineTotal.String()); err != nil {
			return fmt.Errorf("inserting po line: %w", err)
		}
	}
	return nil
}
