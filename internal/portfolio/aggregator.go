package portfolio

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/greenblatt/internal/contracts"
	"github.com/wonny/greenblatt/internal/greenblatt"
	"github.com/wonny/greenblatt/pkg/logger"
)

// DefaultConcurrency caps parallel profile fetches per aggregation
const DefaultConcurrency = 4

// RankedHolding is a holding joined with its ranked profile
type RankedHolding struct {
	Ticker string  `json:"ticker"`
	Shares float64 `json:"shares"`
	contracts.RankedEntity
}

// Summary holds unweighted portfolio averages
type Summary struct {
	AvgEarningsYield float64 `json:"avgEarningsYield"`
	AvgROC           float64 `json:"avgROC"`
	Holdings         int     `json:"holdings"`
}

// Result is the ranked view of one holding set
type Result struct {
	Portfolio      *contracts.Portfolio `json:"portfolio,omitempty"`
	Summary        *Summary             `json:"summary,omitempty"`
	RankedHoldings []RankedHolding      `json:"rankedHoldings"`
}

// Aggregator ranks a holding set against itself
// ⭐ SSOT: portfolio-level Magic Formula view
type Aggregator struct {
	source      contracts.ProfileSource
	ranker      *greenblatt.Ranker
	concurrency int
	logger      *logger.Logger
}

// NewAggregator creates an aggregator fetching profiles from source
func NewAggregator(source contracts.ProfileSource, ranker *greenblatt.Ranker, log *logger.Logger) *Aggregator {
	return &Aggregator{
		source:      source,
		ranker:      ranker,
		concurrency: DefaultConcurrency,
		logger:      log.WithComponent("portfolio"),
	}
}

// WithConcurrency sets the parallel fetch limit
func (a *Aggregator) WithConcurrency(n int) *Aggregator {
	if n > 0 {
		a.concurrency = n
	}
	return a
}

// Aggregate fetches one profile per holding and ranks the set.
// Any fetch failure fails the whole aggregation.
func (a *Aggregator) Aggregate(ctx context.Context, holdings []contracts.Holding) (*Result, error) {
	if len(holdings) == 0 {
		return &Result{RankedHoldings: []RankedHolding{}}, nil
	}

	profiles := make([]contracts.FinancialProfile, len(holdings))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i, h := range holdings {
		i, h := i, h
		g.Go(func() error {
			p, err := a.source.Profile(gctx, h.Ticker)
			if err != nil {
				return fmt.Errorf("profile %s: %w", h.Ticker, err)
			}
			profiles[i] = *p
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		a.logger.WithError(err).Warn("Portfolio aggregation failed")
		return nil, err
	}

	result := a.Combine(holdings, profiles)

	a.logger.WithFields(map[string]interface{}{
		"holdings":           result.Summary.Holdings,
		"avg_earnings_yield": result.Summary.AvgEarningsYield,
		"avg_roc":            result.Summary.AvgROC,
	}).Info("Portfolio ranked")

	return result, nil
}

// Combine merges holdings[i] with profiles[i] and ranks over exactly this set
func (a *Aggregator) Combine(holdings []contracts.Holding, profiles []contracts.FinancialProfile) *Result {
	if len(holdings) == 0 || len(holdings) != len(profiles) {
		return &Result{RankedHoldings: []RankedHolding{}}
	}

	ranked := a.ranker.RankIndexed(profiles)

	out := make([]RankedHolding, len(ranked))
	var sumYield, sumROC float64
	for i, e := range ranked {
		h := holdings[e.Index]
		out[i] = RankedHolding{
			Ticker:       h.Ticker,
			Shares:       h.Shares,
			RankedEntity: e.RankedEntity,
		}
		sumYield += e.EarningYield
		sumROC += e.ROC
	}

	n := float64(len(out))
	return &Result{
		Summary: &Summary{
			AvgEarningsYield: sumYield / n,
			AvgROC:           sumROC / n,
			Holdings:         len(out),
		},
		RankedHoldings: out,
	}
}
