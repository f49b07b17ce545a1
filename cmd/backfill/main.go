package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hermes/internal/adapters/config"
	"hermes/internal/adapters/postgres"
	"hermes/internal/adapters/yahoo"
	pgrepo "hermes/internal/repository/postgres"
	"hermes/internal/services/prices"
	"hermes/pkg/logger"
)

// backfill is a one-shot job that fills stock price rows for every article
// publish date that has none, then exits. Used for initial loads and for
// repairing gaps without waiting on the background worker.
func main() {
	var date string
	flag.StringVar(&date, "date", "", "fetch a single date (YYYY-MM-DD) instead of scanning for gaps")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()
	log := logger.Get()

	pg, err := postgres.NewClient(cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer pg.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := pg.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	svc := prices.NewService(
		yahoo.NewClient(cfg.Prices),
		pgrepo.NewStockPriceRepository(pg.DB()),
		pgrepo.NewSignalRepository(pg.DB()),
		cfg.App.Symbol,
	)

	if date != "" {
		day, err := time.Parse("2006-01-02", date)
		if err != nil {
			log.Fatalf("Invalid -date value %q: %v", date, err)
		}
		if _, err := svc.FetchDate(ctx, day); err != nil {
			log.Errorf("Fetch failed for %s: %v", date, err)
			os.Exit(1)
		}
		log.Infof("Stored price for %s", date)
		return
	}

	result, err := svc.BackfillMissing(ctx)
	if err != nil {
		log.Errorf("Backfill failed: %v", err)
		os.Exit(1)
	}
	log.Infof("Backfill done: %d missing, %d filled, %d without a quote, %d failed",
		result.Missing, result.Filled, result.NoQuote, result.Failed)
}
