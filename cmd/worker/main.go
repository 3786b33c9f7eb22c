package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"filmflow/internal/adapter/repo"
	"filmflow/internal/domain"
	"filmflow/internal/generation"
	"filmflow/internal/infra"
	"filmflow/internal/infra/credentials"
	"filmflow/internal/metrics"
	"filmflow/internal/providers/modal"
	"filmflow/internal/quota"
	"filmflow/internal/storage"
	"filmflow/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "worker")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)

	var usageStore domain.UsageStore = repo.NewUsageStore(runner)
	switch cfg.UsageStore {
	case infra.UsageStoreRedis:
		client, err := infra.NewRedisClient(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("worker: redis connection failed")
		}
		defer client.Close()
		usageStore = repo.NewUsageStoreRedis(client)
	case infra.UsageStoreMemory:
		usageStore = quota.NewMemoryStore()
	}

	apiKey, err := credentials.NewStore(runner).Resolve(ctx, credentials.ProviderModal, cfg.ModalAPIKey)
	if err != nil {
		logger.Warn().Err(err).Msg("worker: failed to load modal api key from store")
	}
	client, err := modal.NewClient(modal.Options{
		APIKey:         apiKey,
		BaseURL:        cfg.ModalBaseURL,
		Logger:         logger,
		RequestTimeout: cfg.WorkerJobTimeout,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure compute backend")
	}
	if !client.HasCredentials() {
		logger.Warn().Msg("worker: modal api key missing, calling backend unauthenticated")
	}

	assets, err := storage.NewFileStore(cfg.AssetStoragePath, cfg.AssetPublicURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure storage")
	}

	tracker := quota.NewTracker(usageStore)
	jobs := repo.NewGenerationRepository(runner)
	gens := generation.NewService(jobs, tracker, generation.WithLogger(logger))

	m := metrics.New("filmflow_worker")
	if cfg.WorkerMetricsPort != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		srv := &http.Server{Addr: ":" + cfg.WorkerMetricsPort, Handler: mux, ReadHeaderTimeout: cfg.HTTPReadTimeout}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("worker: metrics listener failed")
			}
		}()
		defer srv.Close()
	}

	w := worker.New(jobs, gens, tracker, client, assets, worker.Options{
		Concurrency:  cfg.WorkerConcurrency,
		PollInterval: cfg.WorkerPollInterval,
		JobTimeout:   cfg.WorkerJobTimeout,
		Locale:       cfg.DefaultLocale,
		Logger:       logger,
		Metrics:      m,
	})

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}
