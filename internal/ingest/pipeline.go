package ingest

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rxreplenish/rde/internal/domain"
)

// ProductResolver resolves a supplier feed's free-text sku/supplier
// columns into catalog uuid.UUIDs. Implemented by catalog.Postgres.
type ProductResolver interface {
	ResolveProduct(ctx context.Context, sku, supplierName string) (productID, supplierID uuid.UUID, err error)
}

// GRNIngestor records a parsed GRN against the ledger. Implemented by
// grn.Ingestor.
type GRNIngestor interface {
	Ingest(ctx context.Context, g domain.GRN) (domain.GRNResult, error)
}

// Archive persists the raw feed bytes for later audit. Implemented by
// storage.MinioClient.
type Archive interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
}

// Pipeline turns a Drive-hosted supplier feed file into a recorded GRN.
type Pipeline struct {
	drive    *Service
	resolver ProductResolver
	ingestor GRNIngestor
	archive  Archive
}

// New builds a Pipeline. archive may be nil, in which case raw feeds
// aren't retained.
func New(drive *Service, resolver ProductResolver, ingestor GRNIngestor, archive Archive) *Pipeline {
	return &Pipeline{drive: drive, resolver: resolver, ingestor: ingestor, archive: archive}
}

// IngestFile downloads fileID from Drive, archives the raw bytes,
// parses it as a supplier GRN feed, resolves each row against the
// catalog, and records the result as one GRN for storeID.
func (p *Pipeline) IngestFile(ctx context.Context, fileID string, storeID uuid.UUID, vatRate *float64) (domain.GRNResult, error) {
	var buf bytes.Buffer
	if err := p.drive.DownloadFile(fileID, &buf); err != nil {
		return domain.GRNResult{}, fmt.Errorf("downloading feed %s: %w", fileID, err)
	}

	raw := buf.Bytes()
	if p.archive != nil {
		key := fmt.Sprintf("grn-feeds/%s/%s.csv", storeID, fileID)
		if err := p.archive.Upload(ctx, key, raw, "text/csv"); err != nil {
			return domain.GRNResult{}, fmt.Errorf("archiving feed %s: %w", fileID, err)
		}
	}

	// XLSX files are a zip archive ("PK\x03\x04" signature); convert
	// the first sheet to CSV before parsing.
	if bytes.HasPrefix(raw, []byte("PK\x03\x04")) {
		csv, err := convertXLSXToCSV(raw)
		if err != nil {
			return domain.GRNResult{}, fmt.Errorf("converting xlsx feed %s: %w", fileID, err)
		}
		raw = csv
	}

	rows, err := parseFeedRows(bytes.NewReader(raw))
	if err != nil {
		return domain.GRNResult{}, err
	}
	if len(rows) == 0 {
		return domain.GRNResult{}, fmt.Errorf("%w: feed %s has no data rows", domain.ErrValidation, fileID)
	}

	lines := make([]domain.GRNLine, len(rows))
	for i, row := range rows {
		productID, supplierID, err := p.resolver.ResolveProduct(ctx, row.SKU, row.SupplierName)
		if err != nil {
			return domain.GRNResult{}, fmt.Errorf("row %d: %w", i+1, err)
		}

		lines[i] = domain.GRNLine{
			ProductID:   productID,
			SupplierID:  supplierID,
			BatchNumber: row.BatchNumber,
			ExpiryDate:  row.ExpiryDate,
			UnitCost:    row.UnitCost,
			Qty:         row.Qty,
		}
	}

	return p.ingestor.Ingest(ctx, domain.GRN{
		StoreID:   storeID,
		Lines:     lines,
		VATRate:   vatRate,
		CreatedAt: time.Now().UTC(),
	})
}
