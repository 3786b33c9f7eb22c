package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"filmflow/internal/adapter/repo"
	"filmflow/internal/domain"
	"filmflow/internal/generation"
	"filmflow/internal/http/handlers"
	httpapi "filmflow/internal/http/httpapi"
	"filmflow/internal/infra"
	"filmflow/internal/infra/geoip"
	"filmflow/internal/metrics"
	"filmflow/internal/middleware"
	"filmflow/internal/quota"
	"filmflow/internal/storage"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "api")

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	runner := infra.NewSQLRunner(dbpool, logger)
	if cfg.AutoMigrate {
		if err := repo.EnsureSchema(ctx, runner); err != nil {
			logger.Fatal().Err(err).Msg("failed to ensure schema")
		}
		logger.Info().Msg("schema ensured")
	}

	usageStore, closeStore := newUsageStore(ctx, cfg, runner, logger)
	defer closeStore()

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer resolver.Close()
	var lookup middleware.CountryLookup
	if resolver != nil {
		lookup = resolver.CountryCode
	}

	assets, err := storage.NewFileStore(cfg.AssetStoragePath, cfg.AssetPublicURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure asset storage")
	}

	m := metrics.New("filmflow")
	tracker := quota.NewTracker(usageStore)
	jobs := repo.NewGenerationRepository(runner)
	gens := generation.NewService(jobs, tracker,
		generation.WithStrictQuota(cfg.StrictQuota()),
		generation.WithLogger(logger),
	)

	app := handlers.NewApp(gens, tracker, repo.NewSceneRepository(runner), m, logger)
	app.Ready = dbpool.Ping

	router := httpapi.NewRouter(app, httpapi.Options{
		JWTSecret:             cfg.JWTSecret,
		InternalServiceSecret: cfg.InternalServiceSecret,
		DefaultLocale:         cfg.DefaultLocale,
		CORSAllowedOrigins:    cfg.CORSAllowedOrigins,
		RateLimitPerMin:       cfg.RateLimitPerMin,
		CountryLookup:         lookup,
		AssetsDir:             assets.BasePath(),
		Logger:                logger,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().
			Str("addr", server.Addr()).
			Str("usage_store", cfg.UsageStore).
			Str("quota", cfg.QuotaEnforcement).
			Msg("API listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

// newUsageStore picks the counter backend named by USAGE_STORE.
func newUsageStore(ctx context.Context, cfg *infra.Config, runner infra.SQLExecutor, logger zerolog.Logger) (domain.UsageStore, func()) {
	switch cfg.UsageStore {
	case infra.UsageStoreRedis:
		client, err := infra.NewRedisClient(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect redis")
		}
		return repo.NewUsageStoreRedis(client), func() { _ = client.Close() }
	case infra.UsageStoreMemory:
		logger.Warn().Msg("usage counters kept in memory; they reset on restart and are not shared between instances")
		return quota.NewMemoryStore(), func() {}
	default:
		return repo.NewUsageStore(runner), func() {}
	}
}
