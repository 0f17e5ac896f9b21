package ingest

import (
	"strings"
	"testing"
)

func TestParseFeedRows_Basic(t *testing.T) {
	csv := "sku,supplier,batch_number,expiry_date,unit_cost,qty\n" +
		"SKU-1,Acme Pharma,B100,2027-01-15,12.50,40\n"

	rows, err := parseFeedRows(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}

	got := rows[0]
	if got.SKU != "SKU-1" || got.SupplierName != "Acme Pharma" || got.BatchNumber != "B100" {
		t.Errorf("unexpected row: %+v", got)
	}
	if got.Qty != 40 {
		t.Errorf("expected qty 40, got %d", got.Qty)
	}
	if got.ExpiryDate == nil || got.ExpiryDate.Year() != 2027 {
		t.Errorf("expected expiry year 2027, got %v", got.ExpiryDate)
	}
	if got.UnitCost.String() != "12.5000" {
		t.Errorf("expected unit cost 12.5000, got %s", got.UnitCost.String())
	}
}

func TestParseFeedRows_MissingColumn(t *testing.T) {
	csv := "sku,supplier,batch_number,qty\nSKU-1,Acme,B1,10\n"

	if _, err := parseFeedRows(strings.NewReader(csv)); err == nil {
		t.Fatal("expected error for missing unit_cost column")
	}
}

func TestParseFeedRows_NoExpiryColumn(t *testing.T) {
	csv := "sku,supplier,batch_number,unit_cost,qty\nSKU-2,Acme,B2,5.00,10\n"

	rows, err := parseFeedRows(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows[0].ExpiryDate != nil {
		t.Errorf("expected nil expiry date, got %v", rows[0].ExpiryDate)
	}
}

func TestParseFeedRows_InvalidQty(t *testing.T) {
	csv := "sku,supplier,batch_number,unit_cost,qty\nSKU-3,Acme,B3,5.00,abc\n"

	if _, err := parseFeedRows(strings.NewReader(csv)); err == nil {
		t.Fatal("expected error for invalid qty")
	}
}
