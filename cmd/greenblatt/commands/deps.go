package commands

import (
	"fmt"

	"github.com/wonny/greenblatt/internal/analysis"
	"github.com/wonny/greenblatt/internal/buffett"
	"github.com/wonny/greenblatt/internal/cache"
	"github.com/wonny/greenblatt/internal/contracts"
	"github.com/wonny/greenblatt/internal/external/anthropic"
	"github.com/wonny/greenblatt/internal/external/yahoo"
	"github.com/wonny/greenblatt/internal/fundamentals"
	"github.com/wonny/greenblatt/internal/greenblatt"
	"github.com/wonny/greenblatt/internal/portfolio"
	"github.com/wonny/greenblatt/internal/resolver"
	"github.com/wonny/greenblatt/pkg/config"
	"github.com/wonny/greenblatt/pkg/httputil"
	"github.com/wonny/greenblatt/pkg/logger"
	"github.com/wonny/greenblatt/pkg/redis"
)

// app holds the components shared by every command
// ⭐ SSOT: dependency wiring happens here only
type app struct {
	cfg        *config.Config
	log        *logger.Logger
	memory     *cache.MemoryStore // nil with the redis backend
	redis      *redis.Client
	resolver   *resolver.Resolver
	ranker     *greenblatt.Ranker
	analysis   *analysis.Service
	aggregator *portfolio.Aggregator
}

// newApp wires the analysis pipeline from cfg
func newApp(cfg *config.Config) (*app, error) {
	log := logger.New(cfg)
	a := &app{cfg: cfg, log: log}

	// 1. Result cache store
	var store cache.Store
	switch cfg.Cache.Backend {
	case "redis":
		cfg.Redis.Enabled = true
		client, err := redis.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.redis = client
		store = redis.NewStore(client, cfg.Cache.Prefix)
	default:
		a.memory = cache.NewMemoryStore(log)
		store = a.memory
	}
	resultCache := cache.New(store, log)

	// 2. Upstream clients
	httpClient := httputil.New(log).WithRateLimit(cfg.Yahoo.RateLimit)
	yahooClient := yahoo.NewClient(cfg.Yahoo, httpClient, log)

	var narrative contracts.NarrativeProvider
	if cfg.Anthropic.APIKey != "" {
		narrative = anthropic.NewClient(cfg.Anthropic, log)
	} else {
		log.Warn("ANTHROPIC_API_KEY not set, narratives disabled")
	}

	// 3. Domain core
	a.resolver = resolver.New(yahooClient, log, cfg.Symbols.PrimarySuffix, cfg.Symbols.SecondarySuffix)
	a.ranker = greenblatt.NewRanker(log)

	a.analysis = analysis.NewService(analysis.Options{
		Symbols:     a.resolver,
		Provider:    yahooClient,
		Extractor:   fundamentals.NewExtractor(cfg.Scoring.RiskFreeRate),
		Scorer:      buffett.NewScorer(cfg.Scoring.RiskFreeRate),
		Narrative:   narrative,
		Cache:       resultCache,
		MetricsTTL:  cfg.Cache.MetricsTTL,
		AnalysisTTL: cfg.Cache.AnalysisTTL,
	}, log)

	a.aggregator = portfolio.NewAggregator(a.analysis, a.ranker, log)

	return a, nil
}

// Close releases network resources
func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
