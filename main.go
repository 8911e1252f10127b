package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/upstart-engine/pkg/config"
	"github.com/ekaya-inc/upstart-engine/pkg/database"
	"github.com/ekaya-inc/upstart-engine/pkg/handlers"
	"github.com/ekaya-inc/upstart-engine/pkg/llm"
	"github.com/ekaya-inc/upstart-engine/pkg/logging"
	"github.com/ekaya-inc/upstart-engine/pkg/matching"
	"github.com/ekaya-inc/upstart-engine/pkg/middleware"
	"github.com/ekaya-inc/upstart-engine/pkg/repositories"
	"github.com/ekaya-inc/upstart-engine/pkg/services"
	"github.com/ekaya-inc/upstart-engine/pkg/signals"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("base_url", cfg.BaseURL),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.URL())),
		zap.String("redis_host", cfg.Redis.Host),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("llm_model", cfg.LLM.Model),
		zap.Strings("platforms", cfg.Signals.Platforms),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, database.ConfigFrom(&cfg.Database), logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.String("error", logging.SanitizeError(err)))
	}
	defer db.Close()

	if err := database.Migrate(cfg.Database.URL(), cfg.Database.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	var cache signals.Cache
	if cfg.Signals.CacheTTL > 0 {
		redisClient, err := database.NewRedisClient(ctx, &cfg.Redis)
		switch {
		case err != nil:
			logger.Warn("Signal cache disabled", zap.Error(err))
		case redisClient != nil:
			defer redisClient.Close()
			cache = signals.NewRedisCache(redisClient, cfg.Signals.CacheTTL)
			logger.Info("Signal cache enabled", zap.Duration("ttl", cfg.Signals.CacheTTL))
		}
	}

	llmClient, err := llm.NewClientFromConfig(cfg.LLM, logger)
	if err != nil {
		logger.Fatal("Failed to create LLM client", zap.Error(err))
	}

	aggregator := signals.NewAggregator(
		signals.NewAdapters(&cfg.Signals, logger),
		cache,
		signals.AggregatorConfig{Pacing: cfg.Signals.Pacing, MaxConcurrent: cfg.Signals.MaxConcurrent},
		logger,
	)

	userRepo := repositories.NewUserRepository()
	ideaRepo := repositories.NewIdeaRepository()
	analysisRepo := repositories.NewAnalysisRepository()
	keywordRepo := repositories.NewKeywordRepository()
	signalRepo := repositories.NewCommunitySignalRepository()

	ideaService := services.NewIdeaService(ideaRepo, userRepo, analysisRepo, keywordRepo, signalRepo, logger)
	analysisService := services.NewAnalysisService(ideaRepo, analysisRepo, keywordRepo, signalRepo, llmClient,
		services.AnalysisServiceConfig{
			CacheWindow: cfg.Analysis.CacheWindow,
			Temperature: cfg.LLM.Temperature,
		}, logger)
	signalService := services.NewSignalService(aggregator, matching.NewMatcher(), ideaRepo, llmClient, logger)
	founderFitService := services.NewFounderFitService(llmClient, logger)
	researchService := services.NewResearchService(llmClient, logger)

	mux := http.NewServeMux()
	scope := database.WithScope(db, logger)

	handlers.NewHealthHandler(cfg, db, logger).RegisterRoutes(mux)
	handlers.NewIdeasHandler(ideaService, analysisService, logger).RegisterRoutes(mux, scope)
	handlers.NewAnalysisHandler(analysisService, logger).RegisterRoutes(mux, scope)
	handlers.NewCommunitySignalsHandler(signalService, logger).RegisterRoutes(mux, scope)
	handlers.NewDiscoveryHandler(founderFitService, researchService, logger).RegisterRoutes(mux)

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.BindAddr, cfg.Port),
		Handler:           middleware.Chain(mux, middleware.Recoverer(logger), middleware.RequestLogger(logger)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting upstart-engine",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version))
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown failed", zap.Error(err))
		}
	}
}

// newLogger returns a development logger for local runs and a JSON
// production logger everywhere else.
func newLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
