package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rxreplenish/rde/internal/domain"
)

// feedColumns are the required header names of a supplier GRN feed
// CSV. Column order doesn't matter; names are matched case-sensitively
// after trimming.
var feedColumns = []string{"sku", "supplier", "batch_number", "unit_cost", "qty"}

// expiryLayout matches the date format suppliers use for batch expiry
// in feed CSVs.
const expiryLayout = "2006-01-02"

// parseFeedRows reads r as a supplier GRN feed CSV and returns one
// feedRow per data row, validating the header contains every column
// in feedColumns.
func parseFeedRows(r io.Reader) ([]feedRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading feed header: %w", err)
	}

	colIdx := make(map[string]int, len(header))
	for i, col := range header {
		colIdx[strings.TrimSpace(col)] = i
	}
	for _, col := range feedColumns {
		if _, ok := colIdx[col]; !ok {
			return nil, fmt.Errorf("%w: feed missing required column %q", domain.ErrValidation, col)
		}
	}

	var rows []feedRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading feed row: %w", err)
		}

		get := func(col string) string { return strings.TrimSpace(record[colIdx[col]]) }

		qty, err := strconv.Atoi(get("qty"))
		if err != nil {
			return nil, fmt.Errorf("%w: invalid qty %q", domain.ErrValidation, get("qty"))
		}

		unitCostF, err := strconv.ParseFloat(get("unit_cost"), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid unit_cost %q", domain.ErrValidation, get("unit_cost"))
		}

		row := feedRow{
			SKU:          get("sku"),
			SupplierName: get("supplier"),
			BatchNumber:  get("batch_number"),
			UnitCost:     domain.MoneyFromFloat(unitCostF),
			Qty:          qty,
		}

		if idx, ok := colIdx["expiry_date"]; ok {
			if raw := strings.TrimSpace(record[idx]); raw != "" {
				expiry, err := time.Parse(expiryLayout, raw)
				if err != nil {
					return nil, fmt.Errorf("%w: invalid expiry_date %q", domain.ErrValidation, raw)
				}
				row.ExpiryDate = &expiry
			}
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// feedRow is one parsed line of a supplier GRN feed, before SKU/name
// resolution to catalog uuid.UUIDs.
type feedRow struct {
	SKU          string
	SupplierName string
	BatchNumber  string
	ExpiryDate   *time.Time
	UnitCost     domain.Money
	Qty          int
}
