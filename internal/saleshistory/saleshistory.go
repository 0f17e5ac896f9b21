// Package saleshistory implements the Sales History Reader (spec
// §4.2): a per-SKU daily demand time series over a configurable
// window, zero-filled for days with no sales, excluding REFUNDED and
// VOIDED sales. Grounded on the teacher's date-bucketed aggregation
// SQL idiom (internal/repository/postgres/po_dashboard_repository.go),
// wrapped by internal/breaker like catalog since it is an external
// read dependency.
package saleshistory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rxreplenish/rde/internal/breaker"
	"github.com/rxreplenish/rde/internal/domain"
)

// Postgres implements assembler.SalesHistoryReader.
type Postgres struct {
	db *sqlx.DB
	cb *breaker.Breaker
}

// New wraps db with a circuit breaker using cfg, or breaker.DefaultConfig
// when cfg is the zero value.
func New(db *sqlx.DB, cfg breaker.Config) *Postgres {
	if cfg.Name == "" {
		cfg = breaker.DefaultConfig("saleshistory")
	}
	return &Postgres{db: db, cb: breaker.New(cfg)}
}

type dailyQtyRow struct {
	Day time.Time `db:"day"`
	Qty float64   `db:"qty"`
}

// DailySeries returns a length-periodDays series, oldest-first, of
// total sold quantity per store-local day, excluding REFUNDED/VOIDED
// sales (spec §4.2). Missing days are zero.
func (p *Postgres) DailySeries(ctx context.Context, storeID, productID uuid.UUID, periodDays int, now time.Time) ([]float64, error) {
	return breaker.Execute(ctx, p.cb, func(ctx context.Context) ([]float64, error) {
		windowStart := truncateToDate(now).AddDate(0, 0, -(periodDays - 1))

		const query = `
			SELECT date_trunc('day', sa.created_at) AS day, SUM(sl.qty) AS qty
			FROM sale_lines sl
			JOIN sales sa ON sa.id = sl.sale_id
			WHERE sa.store_id = $1
			  AND sl.product_id = $2
			  AND sa.status NOT IN ($3, $4)
			  AND sa.created_at >= $5
			GROUP BY 1
		`
		var rows []dailyQtyRow
		err := p.db.SelectContext(ctx, &rows, query,
			storeID, productID, int(domain.SaleRefunded), int(domain.SaleVoided), windowStart,
		)
		if err != nil {
			return nil, fmt.Errorf("reading daily sales series: %w", err)
		}

		series := make([]float64, periodDays)
		for _, r := range rows {
			offset := int(truncateToDate(r.Day).Sub(windowStart).Hours() / 24)
			if offset >= 0 && offset < periodDays {
				series[offset] = r.Qty
			}
		}

		return series, nil
	})
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
