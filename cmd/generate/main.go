// backend-go/cmd/generate/main.go
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/urfave/cli/v2"

	"github.com/rxreplenish/rde/internal/assembler"
	"github.com/rxreplenish/rde/internal/breaker"
	"github.com/rxreplenish/rde/internal/catalog"
	"github.com/rxreplenish/rde/internal/config"
	"github.com/rxreplenish/rde/internal/converter"
	"github.com/rxreplenish/rde/internal/domain"
	"github.com/rxreplenish/rde/internal/engine"
	"github.com/rxreplenish/rde/internal/ledger"
	"github.com/rxreplenish/rde/internal/saleshistory"
	"github.com/rxreplenish/rde/internal/store"
	"github.com/rxreplenish/rde/internal/suggestion"
)

func newStoreIDFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "store-id",
		Usage:    "Store to generate suggestions for",
		Required: true,
	}
}

func main() {
	app := &cli.App{
		Name:  "generate",
		Usage: "Run a replenishment suggestion-generation pass outside the HTTP API (cron/manual trigger)",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Generate suggestions for one store",
				Flags: []cli.Flag{
					newStoreIDFlag(),
					&cli.IntFlag{Name: "coverage-days", Value: 7},
					&cli.Float64Flag{Name: "service-level", Value: 0.95},
					&cli.IntFlag{Name: "analysis-period-days", Value: 30},
					&cli.IntFlag{Name: "worker-count", Value: 8},
					&cli.BoolFlag{Name: "include-supplier-comparison", Value: true},
				},
				Action: runGenerate,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runGenerate(c *cli.Context) error {
	storeID, err := uuid.Parse(c.String("store-id"))
	if err != nil {
		return fmt.Errorf("invalid --store-id: %w", err)
	}

	cfg := config.Load()

	db, err := store.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	sqlxDB := sqlx.NewDb(db.DB, "postgres")

	led := ledger.New(db)
	cat := catalog.New(sqlxDB, breaker.DefaultConfig("catalog"))
	sales := saleshistory.New(sqlxDB, breaker.DefaultConfig("saleshistory"))
	asm := assembler.New(led, sales, cat, time.Now)

	listCache := suggestion.NewNoopCache()
	sugStore := suggestion.New(db, listCache)
	// Draft PO export is irrelevant to a generation-only run; Approve
	// isn't invoked from this command.
	conv := converter.New(db, sugStore, cat, nil)
	summaryCache, err := suggestion.NewSummaryCache(cfg.Cache)
	if err != nil {
		summaryCache = suggestion.NewNoopSummaryCache()
	}
	eng := engine.New(asm, sugStore, conv, summaryCache)

	result, err := eng.Generate(c.Context, domain.GenerationRequest{
		StoreID:                   storeID,
		CoverageDays:              c.Int("coverage-days"),
		ServiceLevel:              c.Float64("service-level"),
		AnalysisPeriodDays:        c.Int("analysis-period-days"),
		IncludeSupplierComparison: c.Bool("include-supplier-comparison"),
		WorkerCount:               c.Int("worker-count"),
	})
	if err != nil {
		return fmt.Errorf("generating suggestions: %w", err)
	}

	log.Printf("generated %d suggestions (critical=%d low=%d good=%d)",
		len(result.Suggestions), result.Summary.CriticalProducts, result.Summary.LowStockProducts, result.Summary.GoodStockProducts)
	return nil
}
