package portfolio

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/greenblatt/internal/contracts"
	"github.com/wonny/greenblatt/internal/greenblatt"
	"github.com/wonny/greenblatt/pkg/logger"
)

type fakeSource struct {
	mu       sync.Mutex
	profiles map[string]contracts.FinancialProfile
	failFor  string
	inFlight int32
	peak     int32
}

func (f *fakeSource) Profile(ctx context.Context, ticker string) (*contracts.FinancialProfile, error) {
	n := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		peak := atomic.LoadInt32(&f.peak)
		if n <= peak || atomic.CompareAndSwapInt32(&f.peak, peak, n) {
			break
		}
	}

	if ticker == f.failFor {
		return nil, contracts.ErrSymbolNotFound
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.profiles[ticker]
	return &p, nil
}

func mf(symbol string, ebit, ev, capital float64) contracts.FinancialProfile {
	return contracts.FinancialProfile{
		Symbol:            symbol,
		EBIT:              contracts.Float(ebit),
		EnterpriseValue:   contracts.Float(ev),
		NetFixedAssets:    contracts.Float(capital),
		NetWorkingCapital: contracts.Float(0),
	}
}

func newAggregator(src contracts.ProfileSource) *Aggregator {
	return NewAggregator(src, greenblatt.NewRanker(logger.Nop()), logger.Nop())
}

func TestAggregate_Empty(t *testing.T) {
	result, err := newAggregator(&fakeSource{}).Aggregate(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, result.RankedHoldings)
	assert.NotNil(t, result.RankedHoldings)
	assert.Nil(t, result.Summary)
}

func TestAggregate_RanksHoldingSet(t *testing.T) {
	src := &fakeSource{profiles: map[string]contracts.FinancialProfile{
		"INFY":  mf("INFY.NS", 50, 1000, 500),   // EY 0.05, ROC 0.1
		"TCS":   mf("TCS.NS", 200, 1000, 400),   // EY 0.2,  ROC 0.5
		"WIPRO": mf("WIPRO.NS", 100, 1000, 250), // EY 0.1,  ROC 0.4
	}}

	holdings := []contracts.Holding{
		{Ticker: "INFY", Shares: 10},
		{Ticker: "TCS", Shares: 5},
		{Ticker: "WIPRO", Shares: 20},
	}

	result, err := newAggregator(src).Aggregate(context.Background(), holdings)
	require.NoError(t, err)
	require.Len(t, result.RankedHoldings, 3)

	assert.Equal(t, "TCS", result.RankedHoldings[0].Ticker)
	assert.Equal(t, 5.0, result.RankedHoldings[0].Shares)
	assert.Equal(t, "TCS.NS", result.RankedHoldings[0].Symbol)
	assert.Equal(t, 2, result.RankedHoldings[0].CombinedRank)

	assert.Equal(t, "WIPRO", result.RankedHoldings[1].Ticker)
	assert.Equal(t, 20.0, result.RankedHoldings[1].Shares)
	assert.Equal(t, "INFY", result.RankedHoldings[2].Ticker)

	require.NotNil(t, result.Summary)
	assert.Equal(t, 3, result.Summary.Holdings)
	assert.InDelta(t, (0.05+0.2+0.1)/3, result.Summary.AvgEarningsYield, 1e-12)
	assert.InDelta(t, (0.1+0.5+0.4)/3, result.Summary.AvgROC, 1e-12)
}

func TestAggregate_DuplicateTickersKeepShares(t *testing.T) {
	src := &fakeSource{profiles: map[string]contracts.FinancialProfile{
		"AAPL": mf("AAPL", 100, 1000, 500),
	}}

	result, err := newAggregator(src).Aggregate(context.Background(), []contracts.Holding{
		{Ticker: "AAPL", Shares: 1},
		{Ticker: "AAPL", Shares: 2},
	})
	require.NoError(t, err)
	require.Len(t, result.RankedHoldings, 2)
	assert.Equal(t, 1.0, result.RankedHoldings[0].Shares)
	assert.Equal(t, 2.0, result.RankedHoldings[1].Shares)
}

func TestAggregate_FailureFailsCall(t *testing.T) {
	src := &fakeSource{
		profiles: map[string]contracts.FinancialProfile{"AAPL": mf("AAPL", 1, 1, 1)},
		failFor:  "NOPE",
	}

	_, err := newAggregator(src).Aggregate(context.Background(), []contracts.Holding{
		{Ticker: "AAPL", Shares: 1},
		{Ticker: "NOPE", Shares: 1},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, contracts.ErrSymbolNotFound))
	assert.Contains(t, err.Error(), "NOPE")
}

func TestAggregate_ConcurrencyCap(t *testing.T) {
	src := &fakeSource{profiles: map[string]contracts.FinancialProfile{}}
	holdings := make([]contracts.Holding, 20)
	for i := range holdings {
		holdings[i] = contracts.Holding{Ticker: "T", Shares: 1}
	}

	_, err := newAggregator(src).WithConcurrency(2).Aggregate(context.Background(), holdings)
	require.NoError(t, err)
	assert.LessOrEqual(t, atomic.LoadInt32(&src.peak), int32(2))
}

func TestCombine_MismatchedInput(t *testing.T) {
	result := newAggregator(&fakeSource{}).Combine([]contracts.Holding{{Ticker: "A", Shares: 1}}, nil)
	assert.Empty(t, result.RankedHoldings)
	assert.Nil(t, result.Summary)
}

func TestNormalize(t *testing.T) {
	got := Normalize([]contracts.Holding{
		{Ticker: " aapl ", Shares: 3},
		{Ticker: "", Shares: 1},
		{Ticker: "msft", Shares: 0},
		{Ticker: "tcs.ns", Shares: -2},
		{Ticker: "infy", Shares: 1.5},
	})

	assert.Equal(t, []contracts.Holding{
		{Ticker: "AAPL", Shares: 3},
		{Ticker: "INFY", Shares: 1.5},
	}, got)
}
