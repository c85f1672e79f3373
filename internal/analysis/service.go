package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/greenblatt/internal/buffett"
	"github.com/wonny/greenblatt/internal/cache"
	"github.com/wonny/greenblatt/internal/contracts"
	"github.com/wonny/greenblatt/internal/fundamentals"
	"github.com/wonny/greenblatt/internal/greenblatt"
	"github.com/wonny/greenblatt/internal/resolver"
	"github.com/wonny/greenblatt/pkg/logger"
)

// FallbackNarrative replaces the narrative when generation fails
const FallbackNarrative = "Narrative analysis unavailable at the moment."

// Cache key namespaces and kinds
const (
	nsBuffett    = "buffett"
	nsGreenblatt = "greenblatt"
	nsScreener   = "screener"
	kindMetrics  = "metrics"
	kindLLM      = "llm"
)

// Symbol resolves raw tickers; satisfied by *resolver.Resolver
type Symbol interface {
	Resolve(ctx context.Context, raw string) (string, error)
}

// BuffettMetrics is the cached profile and score of one symbol
type BuffettMetrics struct {
	Profile contracts.FinancialProfile `json:"metrics"`
	Score   contracts.Score            `json:"score"`
}

// BuffettReport is the quality analysis of one symbol
type BuffettReport struct {
	Ticker       string                     `json:"ticker"`
	BuffettScore int                        `json:"buffettScore"`
	Breakdown    contracts.ScoreBreakdown   `json:"breakdown"`
	Derived      contracts.DerivedMetrics   `json:"derived"`
	Metrics      contracts.FinancialProfile `json:"metrics"`
	Narrative    string                     `json:"llmAnalysis"`
}

// ScreenerMetrics is a profile with its unranked Magic Formula factors
type ScreenerMetrics struct {
	contracts.FinancialProfile
	EarningYield float64 `json:"earningYield"`
	ROC          float64 `json:"roc"`
}

// ScreenerReport is the single-symbol Magic Formula view
type ScreenerReport struct {
	Symbol    string          `json:"symbol"`
	Metrics   ScreenerMetrics `json:"metrics"`
	Narrative string          `json:"llmAnalysis"`
}

// Service computes cached per-symbol analyses
// ⭐ SSOT: resolve → snapshot → extract → score pipeline
type Service struct {
	symbols     Symbol
	provider    contracts.FundamentalsProvider
	extractor   *fundamentals.Extractor
	scorer      *buffett.Scorer
	narrative   contracts.NarrativeProvider
	cache       *cache.ResultCache
	metricsTTL  time.Duration
	analysisTTL time.Duration
	logger      *logger.Logger
}

// Options configures a Service
type Options struct {
	Symbols     Symbol
	Provider    contracts.FundamentalsProvider
	Extractor   *fundamentals.Extractor
	Scorer      *buffett.Scorer
	Narrative   contracts.NarrativeProvider // nil always yields FallbackNarrative
	Cache       *cache.ResultCache
	MetricsTTL  time.Duration
	AnalysisTTL time.Duration
}

// NewService creates an analysis service
func NewService(opts Options, log *logger.Logger) *Service {
	if opts.MetricsTTL <= 0 {
		opts.MetricsTTL = cache.DefaultMetricsTTL
	}
	if opts.AnalysisTTL <= 0 {
		opts.AnalysisTTL = cache.DefaultAnalysisTTL
	}
	if opts.Extractor == nil {
		opts.Extractor = fundamentals.NewExtractor(buffett.DefaultRiskFreeRate)
	}
	if opts.Scorer == nil {
		opts.Scorer = buffett.NewScorer(buffett.DefaultRiskFreeRate)
	}

	return &Service{
		symbols:     opts.Symbols,
		provider:    opts.Provider,
		extractor:   opts.Extractor,
		scorer:      opts.Scorer,
		narrative:   opts.Narrative,
		cache:       opts.Cache,
		metricsTTL:  opts.MetricsTTL,
		analysisTTL: opts.AnalysisTTL,
		logger:      log.WithComponent("analysis"),
	}
}

// resolve validates and resolves a raw ticker
func (s *Service) resolve(ctx context.Context, raw string) (string, error) {
	if !resolver.ValidSymbol(raw) {
		return "", fmt.Errorf("%q: %w", raw, contracts.ErrInvalidSymbol)
	}
	return s.symbols.Resolve(ctx, raw)
}

// extract fetches a snapshot and builds the profile, rejecting empty payloads
func (s *Service) extract(ctx context.Context, symbol string) (contracts.FinancialProfile, error) {
	snap, err := s.provider.Snapshot(ctx, symbol)
	if err != nil {
		return contracts.FinancialProfile{}, err
	}
	if snap.Empty() {
		return contracts.FinancialProfile{}, fmt.Errorf("%s: %w", symbol, contracts.ErrDataUnavailable)
	}
	return s.extractor.Extract(snap), nil
}

// Greenblatt returns the cached profile and factors of one ticker
func (s *Service) Greenblatt(ctx context.Context, ticker string) (*ScreenerMetrics, string, error) {
	symbol, err := s.resolve(ctx, ticker)
	if err != nil {
		return nil, "", err
	}

	metrics, err := cache.GetOrCompute(ctx, s.cache, cache.Key(nsGreenblatt, kindMetrics, symbol), s.metricsTTL,
		func(ctx context.Context) (ScreenerMetrics, error) {
			p, err := s.extract(ctx, symbol)
			if err != nil {
				return ScreenerMetrics{}, err
			}
			return ScreenerMetrics{
				FinancialProfile: p,
				EarningYield:     greenblatt.EarningYield(p),
				ROC:              greenblatt.ROC(p),
			}, nil
		})
	if err != nil {
		return nil, symbol, err
	}
	return &metrics, symbol, nil
}

// Profile implements contracts.ProfileSource
func (s *Service) Profile(ctx context.Context, ticker string) (*contracts.FinancialProfile, error) {
	metrics, _, err := s.Greenblatt(ctx, ticker)
	if err != nil {
		return nil, err
	}
	return &metrics.FinancialProfile, nil
}

// Buffett scores one ticker and attaches a narrative
func (s *Service) Buffett(ctx context.Context, ticker string) (*BuffettReport, error) {
	symbol, err := s.resolve(ctx, ticker)
	if err != nil {
		return nil, err
	}

	metrics, err := cache.GetOrCompute(ctx, s.cache, cache.Key(nsBuffett, kindMetrics, symbol), s.metricsTTL,
		func(ctx context.Context) (BuffettMetrics, error) {
			p, err := s.extract(ctx, symbol)
			if err != nil {
				return BuffettMetrics{}, err
			}
			return BuffettMetrics{Profile: p, Score: s.scorer.Score(p)}, nil
		})
	if err != nil {
		return nil, err
	}

	narrative := s.narrate(ctx, cache.Key(nsBuffett, kindLLM, symbol), map[string]any{
		"ticker":       symbol,
		"buffettScore": metrics.Score.Total,
		"breakdown":    metrics.Score.Breakdown,
		"derived":      metrics.Score.Derived,
		"metrics":      metrics.Profile,
	})

	s.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"score":  metrics.Score.Total,
	}).Info("Quality analysis complete")

	return &BuffettReport{
		Ticker:       symbol,
		BuffettScore: metrics.Score.Total,
		Breakdown:    metrics.Score.Breakdown,
		Derived:      metrics.Score.Derived,
		Metrics:      metrics.Profile,
		Narrative:    narrative,
	}, nil
}

// Screener returns the Magic Formula factors of one ticker with a narrative
func (s *Service) Screener(ctx context.Context, ticker string) (*ScreenerReport, error) {
	metrics, symbol, err := s.Greenblatt(ctx, ticker)
	if err != nil {
		return nil, err
	}

	narrative := s.narrate(ctx, cache.Key(nsScreener, kindLLM, symbol), map[string]any{
		"ticker":     symbol,
		"greenblatt": metrics,
	})

	return &ScreenerReport{
		Symbol:    symbol,
		Metrics:   *metrics,
		Narrative: narrative,
	}, nil
}

// narrate returns cached narrative text; failures fall back and are not cached
func (s *Service) narrate(ctx context.Context, key string, bundle map[string]any) string {
	if s.narrative == nil {
		return FallbackNarrative
	}

	text, err := cache.GetOrCompute(ctx, s.cache, key, s.analysisTTL, func(ctx context.Context) (string, error) {
		return s.narrative.Analyze(ctx, bundle)
	})
	if err != nil {
		s.logger.WithFields(map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		}).Warn("Narrative generation failed")
		return FallbackNarrative
	}
	return text
}
