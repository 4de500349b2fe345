package commands

import (
	"context"
	"fmt"

	"github.com/wonny/aegis-ideas/internal/agents"
	"github.com/wonny/aegis-ideas/internal/audit"
	"github.com/wonny/aegis-ideas/internal/brain"
	"github.com/wonny/aegis-ideas/internal/contracts"
	"github.com/wonny/aegis-ideas/internal/ideas"
	"github.com/wonny/aegis-ideas/internal/results"
	"github.com/wonny/aegis-ideas/internal/selection"
	"github.com/wonny/aegis-ideas/internal/stream"
	"github.com/wonny/aegis-ideas/pkg/config"
	"github.com/wonny/aegis-ideas/pkg/database"
	"github.com/wonny/aegis-ideas/pkg/httputil"
	"github.com/wonny/aegis-ideas/pkg/logger"
	"github.com/wonny/aegis-ideas/pkg/redis"
)

const redisPrefix = "aegis-ideas"

// app holds the wired components shared by the commands
// ⭐ SSOT: 의존성 조립은 여기서만
type app struct {
	cfg    *config.Config
	logger *logger.Logger

	db      *database.DB // nil when DATABASE_URL is empty
	redis   *redis.Client
	limiter *redis.RateLimiter

	repo         contracts.IdeaRepository
	audit        *audit.Repository // nil without a database
	results      *results.Store
	agents       *agents.Client
	hub          *stream.Hub
	orchestrator *brain.Orchestrator
}

// newApp loads config and connects everything
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)
	a := &app{cfg: cfg, logger: log}

	// 1. Storage: Postgres when configured, memory otherwise
	if cfg.Database.Enabled() {
		db, err := database.New(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		a.db = db
		a.repo = ideas.NewPostgresRepository(db.Pool)
		a.audit = audit.NewRepository(db.Pool)
		log.Info("Using PostgreSQL idea repository")
	} else {
		a.repo = ideas.NewMemoryRepository()
		log.Warn("DATABASE_URL not set, ideas are kept in memory and runs are not audited")
	}

	// 2. Redis (no-op client when disabled)
	a.redis, err = redis.New(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.limiter = redis.NewRateLimiter(a.redis, redisPrefix)
	a.results = results.NewStore(redis.NewCache(a.redis, redisPrefix), cfg.API.ResultCacheTTL, log)

	// 3. Stage agents over HTTP
	httpClient := httputil.New(cfg, log).
		WithRateLimiter(a.limiter, redis.AgentsRateLimit(cfg.Agents.RateLimit)).
		WithLocalLimit(cfg.Agents.RateLimit)
	a.agents = agents.NewClient(httpClient, cfg.Agents.BaseURL, log)

	// 4. Orchestrator
	a.hub = stream.NewHub(log)
	a.orchestrator = brain.NewOrchestrator(
		a.agents.Agents(),
		a.repo,
		selection.NewFilterEngine(log),
		selection.NewRanker(selection.DefaultFactorWeights(), log),
		log,
		brain.Options{
			StopOnCancel:         cfg.Pipeline.StopOnCancel,
			DefaultJurisdictions: cfg.Pipeline.DefaultJurisdictions,
		},
	).WithObserver(a.hub)
	if a.audit != nil {
		a.orchestrator.WithRecorder(a.audit)
	}

	return a, nil
}

// Close releases connections
func (a *app) Close() {
	if a.hub != nil {
		a.hub.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}
