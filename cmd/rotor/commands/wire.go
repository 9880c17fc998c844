package commands

import (
	"fmt"

	"github.com/wonny/rotor/backend/internal/backtest"
	"github.com/wonny/rotor/backend/internal/cycle"
	"github.com/wonny/rotor/backend/internal/forecast"
	"github.com/wonny/rotor/backend/internal/scoring"
	"github.com/wonny/rotor/backend/internal/store"
	"github.com/wonny/rotor/backend/internal/tables"
	"github.com/wonny/rotor/backend/pkg/config"
	"github.com/wonny/rotor/backend/pkg/database"
	"github.com/wonny/rotor/backend/pkg/logger"
	"github.com/wonny/rotor/backend/pkg/redis"
)

// components wires the full dependency graph once per command invocation.
type components struct {
	cfg   *config.Config
	log   *logger.Logger
	db    *database.DB
	cache *redis.Client

	tables    *tables.Tables
	prices    *store.PriceRepository
	macros    *store.MacroRepository
	scores    *store.ScoreRepository
	cycles    *store.CycleRepository
	backtests *store.BacktestRepository

	detector *cycle.Detector
	scorer   *scoring.Scorer
	rankings *scoring.RankingService
	engine   *backtest.Engine
	service  *backtest.Service
	analyzer *backtest.Analyzer
}

// initComponents loads config and connects to the database and Redis, then
// builds the scoring and backtesting components on top.
func initComponents() (*components, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	cache, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, running without cache")
		cache = redis.Disabled()
	}

	tbl, err := tables.LoadOrDefault(cfg.Scoring.TablesPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("load tables: %w", err)
	}

	model, err := forecast.Load(cfg.Scoring.ModelArtifactPath, log)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("load forecast model: %w", err)
	}

	c := &components{
		cfg:   cfg,
		log:   log,
		db:    db,
		cache: cache,

		tables:    tbl,
		prices:    store.NewPriceRepository(db.Pool),
		macros:    store.NewMacroRepository(db.Pool),
		scores:    store.NewScoreRepository(db.Pool),
		cycles:    store.NewCycleRepository(db.Pool),
		backtests: store.NewBacktestRepository(db.Pool),
	}

	c.detector = cycle.NewDetector(c.macros, log)
	features := scoring.NewFeatureBuilder(c.prices, c.macros, tbl, log)
	c.scorer = scoring.NewScorer(model, c.detector, features, tbl, c.scores, c.cycles, log)
	c.rankings = scoring.NewRankingService(c.scorer, c.scores, redis.NewCache(cache, "rotor"), cfg.Scoring.ScoreCacheTTL, log)
	c.engine = backtest.NewEngine(c.prices, c.scores, c.scorer, tbl, log)
	c.service = backtest.NewService(c.engine, c.backtests, log)
	c.analyzer = backtest.NewAnalyzer(c.prices, c.scores, log)

	return c, nil
}

// Close releases the database and Redis connections.
func (c *components) Close() {
	if c.cache != nil {
		_ = c.cache.Close()
	}
	if c.db != nil {
		c.db.Close()
	}
}
