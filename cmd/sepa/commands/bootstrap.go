package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/sepa/internal/analyzer"
	"github.com/wonny/sepa/internal/api"
	"github.com/wonny/sepa/internal/contracts"
	"github.com/wonny/sepa/internal/datasource"
	"github.com/wonny/sepa/internal/metrics"
	"github.com/wonny/sepa/internal/repository"
	"github.com/wonny/sepa/internal/strategyconfig"
	"github.com/wonny/sepa/pkg/config"
	"github.com/wonny/sepa/pkg/database"
	"github.com/wonny/sepa/pkg/logger"
	"github.com/wonny/sepa/pkg/redis"
)

// app holds the wired dependencies shared by the commands
type app struct {
	cfg          *config.Config
	log          *logger.Logger
	strategy     *strategyconfig.Config
	strategyHash string

	redis *redis.Client
	db    *database.DB // nil without DATABASE_URL
	repo  contracts.RecommendationRepository

	analyzer *analyzer.Analyzer
	runner   *analyzer.Runner
}

// bootstrapOptions selects optional dependencies
type bootstrapOptions struct {
	requireDB bool // fail instead of running without persistence
	workers   int  // 0 = SCAN_WORKERS
}

// bootstrap loads config and wires providers, engine and (optionally) storage
// ⭐ SSOT: 의존성 조립은 여기서만
func bootstrap(ctx context.Context, opts bootstrapOptions) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)

	path := strategyFile
	if path == "" {
		path = cfg.StrategyFile
	}
	strategy, err := strategyconfig.LoadOrDefault(path)
	if err != nil {
		return nil, fmt.Errorf("load strategy: %w", err)
	}
	for _, w := range strategyconfig.Warn(strategy) {
		log.WithField("code", w.Code).Warn(w.Message)
	}
	hash, err := strategyconfig.Hash(strategy)
	if err != nil {
		return nil, fmt.Errorf("hash strategy: %w", err)
	}

	if cfg.MetricsEnabled {
		metrics.Register()
	}

	a := &app{
		cfg:          cfg,
		log:          log,
		strategy:     strategy,
		strategyHash: hash,
	}

	a.redis, err = redis.New(ctx, cfg)
	if err != nil {
		// 캐시 없이도 동작 가능
		log.WithError(err).Warn("Redis unavailable, running without cache")
		a.redis = redis.NewDisabled()
	}

	if cfg.HasDatabase() {
		db, err := database.New(ctx, cfg)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.db = db

		repo := repository.NewRecommendationRepository(db.Pool, hash)
		if err := repo.EnsureSchema(ctx); err != nil {
			a.close()
			return nil, err
		}
		a.repo = repo
	} else if opts.requireDB {
		a.close()
		return nil, fmt.Errorf("DATABASE_URL is required for this command")
	}

	providers, err := datasource.NewProviders(cfg, a.redis, log)
	if err != nil {
		a.close()
		return nil, err
	}

	engine := analyzer.NewEngine(strategy, log)
	a.analyzer = analyzer.New(providers.Market, providers.Fundamentals, engine, analyzer.Config{
		BenchmarkTicker: cfg.MarketData.BenchmarkTicker,
		LookbackDays:    cfg.MarketData.LookbackDays,
	}, log)

	workers := opts.workers
	if workers <= 0 {
		workers = cfg.Scan.Workers
	}
	a.runner = analyzer.NewRunner(a.analyzer, workers, log)

	log.WithFields(map[string]interface{}{
		"strategy_hash": hash[:12],
		"database":      a.db != nil,
		"cache":         a.redis.Enabled(),
		"benchmark":     cfg.MarketData.BenchmarkTicker,
	}).Debug("Application wired")

	return a, nil
}

// healthChecks returns the dependency probes for /health
func (a *app) healthChecks() map[string]api.HealthCheck {
	checks := map[string]api.HealthCheck{}
	if a.db != nil {
		checks["database"] = a.db.Ping
	}
	if a.redis.Enabled() {
		checks["redis"] = a.redis.Ping
	}
	return checks
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.WithError(err).Warn("Failed to close redis")
		}
	}
}

// commandTimeout bounds one-shot commands
const commandTimeout = 10 * time.Minute
