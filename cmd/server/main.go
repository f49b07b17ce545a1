package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hermes/internal/adapters/config"
	"hermes/internal/adapters/errors/noop"
	"hermes/internal/adapters/errors/sentry"
	"hermes/internal/adapters/guardian"
	openaiadapter "hermes/internal/adapters/openai"
	"hermes/internal/adapters/postgres"
	"hermes/internal/adapters/redis"
	sentimentadapter "hermes/internal/adapters/sentiment"
	"hermes/internal/adapters/yahoo"
	"hermes/internal/analytics"
	"hermes/internal/api"
	"hermes/internal/metrics"
	pgrepo "hermes/internal/repository/postgres"
	"hermes/internal/services/ingest"
	"hermes/internal/services/prices"
	"hermes/internal/workers"
	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)
	metrics.Register()

	// Databases
	pg, err := postgres.NewClient(cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer pg.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := pg.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	cache, err := redis.NewClient(cfg.Redis)
	if err != nil {
		log.Warnf("Redis unavailable, report caching disabled: %v", err)
		cache = nil
	} else {
		defer cache.Close()
	}

	// Repositories
	articleRepo := pgrepo.NewArticleRepository(pg.DB())
	analysisRepo := pgrepo.NewAnalysisRepository(pg.DB())
	priceRepo := pgrepo.NewStockPriceRepository(pg.DB())
	signalRepo := pgrepo.NewSignalRepository(pg.DB())

	// Services
	pipeline := analytics.NewPipeline(signalRepo, priceRepo, cfg.Analytics.VolatilityWindow)
	priceService := prices.NewService(yahoo.NewClient(cfg.Prices), priceRepo, signalRepo, cfg.App.Symbol)

	// Background workers
	scheduler := workers.NewScheduler()
	registerIngestWorker(cfg, scheduler, articleRepo, analysisRepo, log)
	scheduler.Register(workers.NewPriceBackfillWorker(
		priceService, cfg.Workers.BackfillInterval, cfg.Workers.BackfillEnabled,
	))
	if err := scheduler.Start(ctx); err != nil {
		log.Fatalf("Failed to start workers: %v", err)
	}

	// HTTP API
	server := api.NewServer(api.Config{
		Addr:     cfg.HTTP.Addr(),
		Env:      cfg.App.Env,
		Pipeline: pipeline,
		Articles: articleRepo,
		Analyses: analysisRepo,
		Signals:  signalRepo,
		Cache:    cache,
		CacheTTL: cfg.Analytics.ReportCacheTTL,
		DB:       pg,
	})
	go func() {
		if err := server.Run(); err != nil {
			log.Errorf("HTTP server failed: %v", err)
			cancel()
		}
	}()

	log.Info("System initialized successfully")
	waitForShutdown(ctx, cancel, server, scheduler, errorTracker, log)
}

// registerIngestWorker wires the news ingest worker when its collaborators
// are configured. Without a Guardian key the API still serves stored data.
func registerIngestWorker(
	cfg *config.Config,
	scheduler *workers.Scheduler,
	articleRepo *pgrepo.ArticleRepository,
	analysisRepo *pgrepo.AnalysisRepository,
	log *logger.Logger,
) {
	news, err := guardian.NewClient(cfg.Guardian)
	if err != nil {
		log.Warnf("News ingest disabled: %v", err)
		return
	}
	analyzer, err := sentimentadapter.NewClient(cfg.Sentiment)
	if err != nil {
		log.Warnf("News ingest disabled: %v", err)
		return
	}
	recommender, err := openaiadapter.NewRecommender(cfg.OpenAI)
	if err != nil {
		log.Warnf("News ingest disabled: %v", err)
		return
	}

	svc := ingest.NewService(news, analyzer, recommender, articleRepo, analysisRepo, ingest.Options{
		Topic:     cfg.App.Topic,
		BatchSize: cfg.Workers.IngestBatchSize,
		MaxChars:  cfg.Sentiment.MaxChars,
	})
	scheduler.Register(workers.NewIngestWorker(svc, cfg.Workers.IngestInterval, cfg.Workers.IngestEnabled))
}

func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

func waitForShutdown(
	ctx context.Context,
	cancel context.CancelFunc,
	server *api.Server,
	scheduler *workers.Scheduler,
	errorTracker errors.Tracker,
	log *logger.Logger,
) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Infof("Received signal %v, shutting down", s)
	case <-ctx.Done():
		log.Info("Context cancelled, shutting down")
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("HTTP shutdown failed: %v", err)
	}
	if err := scheduler.Stop(); err != nil {
		log.Errorf("Worker shutdown failed: %v", err)
	}
	if err := errorTracker.Flush(shutdownCtx); err != nil {
		log.Errorf("Error tracker flush failed: %v", err)
	}
	log.Info("Shutdown complete")
}
