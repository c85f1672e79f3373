package analysis

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/greenblatt/internal/cache"
	"github.com/wonny/greenblatt/internal/contracts"
	"github.com/wonny/greenblatt/pkg/logger"
)

type fakeSymbols struct {
	err error
}

func (f *fakeSymbols) Resolve(ctx context.Context, raw string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return raw + ".NS", nil
}

type fakeProvider struct {
	calls atomic.Int32
	snap  *contracts.Snapshot
	err   error
}

func (f *fakeProvider) Snapshot(ctx context.Context, symbol string) (*contracts.Snapshot, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	snap := *f.snap
	snap.Symbol = symbol
	return &snap, nil
}

type fakeNarrative struct {
	calls atomic.Int32
	text  string
	err   error
}

func (f *fakeNarrative) Analyze(ctx context.Context, bundle any) (string, error) {
	f.calls.Add(1)
	return f.text, f.err
}

func sampleSnapshot() *contracts.Snapshot {
	return &contracts.Snapshot{
		Series: []contracts.StatementEntry{
			{Date: time.Date(2023, 3, 31, 0, 0, 0, 0, time.UTC), Fields: map[string]float64{"netPPE": 400, "currentAssets": 300, "currentLiabilities": 200}},
		},
		Summary: contracts.QuoteSummary{
			FinancialData: &contracts.FinancialData{
				EBIT:         contracts.Float(100),
				MarketCap:    contracts.Float(1000),
				TotalDebt:    contracts.Float(100),
				TotalCash:    contracts.Float(100),
				FreeCashflow: contracts.Float(80),
				TotalRevenue: contracts.Float(400),
			},
		},
	}
}

func newService(provider *fakeProvider, narrative contracts.NarrativeProvider) (*Service, *cache.MemoryStore) {
	store := cache.NewMemoryStore(logger.Nop())
	svc := NewService(Options{
		Symbols:   &fakeSymbols{},
		Provider:  provider,
		Narrative: narrative,
		Cache:     cache.New(store, logger.Nop()),
	}, logger.Nop())
	return svc, store
}

func TestGreenblatt(t *testing.T) {
	provider := &fakeProvider{snap: sampleSnapshot()}
	svc, _ := newService(provider, nil)

	metrics, symbol, err := svc.Greenblatt(context.Background(), "tcs")
	require.NoError(t, err)
	assert.Equal(t, "tcs.NS", symbol)
	assert.InDelta(t, 0.1, metrics.EarningYield, 1e-9)
	assert.InDelta(t, 0.2, metrics.ROC, 1e-9)

	_, _, err = svc.Greenblatt(context.Background(), "tcs")
	require.NoError(t, err)
	assert.Equal(t, int32(1), provider.calls.Load(), "second call must hit the cache")
}

func TestProfile(t *testing.T) {
	svc, _ := newService(&fakeProvider{snap: sampleSnapshot()}, nil)

	p, err := svc.Profile(context.Background(), "INFY")
	require.NoError(t, err)
	assert.Equal(t, 100.0, contracts.ValueOr(p.EBIT, 0))
	assert.Equal(t, 1000.0, contracts.ValueOr(p.EnterpriseValue, 0))
}

func TestProfile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		ticker  string
		symbols *fakeSymbols
		snap    *contracts.Snapshot
		fetch   error
		wantErr error
	}{
		{"invalid symbol", "TC$", &fakeSymbols{}, sampleSnapshot(), nil, contracts.ErrInvalidSymbol},
		{"unresolved symbol", "ZZZ", &fakeSymbols{err: contracts.ErrSymbolNotFound}, sampleSnapshot(), nil, contracts.ErrSymbolNotFound},
		{"empty snapshot", "TCS", &fakeSymbols{}, &contracts.Snapshot{}, nil, contracts.ErrDataUnavailable},
		{"upstream failure", "TCS", &fakeSymbols{}, nil, errors.New("boom"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{snap: tt.snap, err: tt.fetch}
			svc := NewService(Options{
				Symbols:  tt.symbols,
				Provider: provider,
				Cache:    cache.New(cache.NewMemoryStore(logger.Nop()), logger.Nop()),
			}, logger.Nop())

			_, err := svc.Profile(context.Background(), tt.ticker)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestBuffett(t *testing.T) {
	provider := &fakeProvider{snap: sampleSnapshot()}
	narrative := &fakeNarrative{text: "Durable franchise."}
	svc, store := newService(provider, narrative)

	report, err := svc.Buffett(context.Background(), "TCS")
	require.NoError(t, err)
	assert.Equal(t, "TCS.NS", report.Ticker)
	assert.Equal(t, report.Breakdown.Sum(), report.BuffettScore)
	assert.Equal(t, "Durable franchise.", report.Narrative)
	require.NotNil(t, report.Derived.FCFMargin)
	assert.InDelta(t, 0.2, *report.Derived.FCFMargin, 1e-9)

	again, err := svc.Buffett(context.Background(), "TCS")
	require.NoError(t, err)
	assert.Equal(t, report, again)
	assert.Equal(t, int32(1), provider.calls.Load())
	assert.Equal(t, int32(1), narrative.calls.Load())
	assert.Equal(t, 2, store.Len())
}

func TestBuffett_NarrativeFallback(t *testing.T) {
	provider := &fakeProvider{snap: sampleSnapshot()}
	narrative := &fakeNarrative{err: errors.New("overloaded")}
	svc, store := newService(provider, narrative)

	report, err := svc.Buffett(context.Background(), "TCS")
	require.NoError(t, err)
	assert.Equal(t, FallbackNarrative, report.Narrative)
	assert.Equal(t, 1, store.Len(), "failed narratives are not cached")

	_, err = svc.Buffett(context.Background(), "TCS")
	require.NoError(t, err)
	assert.Equal(t, int32(2), narrative.calls.Load())
}

func TestBuffett_NoNarrativeProvider(t *testing.T) {
	svc, _ := newService(&fakeProvider{snap: sampleSnapshot()}, nil)

	report, err := svc.Buffett(context.Background(), "TCS")
	require.NoError(t, err)
	assert.Equal(t, FallbackNarrative, report.Narrative)
}

func TestBuffett_EmptySnapshot(t *testing.T) {
	svc, store := newService(&fakeProvider{snap: &contracts.Snapshot{}}, nil)

	_, err := svc.Buffett(context.Background(), "TCS")
	assert.ErrorIs(t, err, contracts.ErrDataUnavailable)
	assert.Equal(t, 0, store.Len())
}

func TestScreener(t *testing.T) {
	narrative := &fakeNarrative{text: "Cheap and good."}
	svc, _ := newService(&fakeProvider{snap: sampleSnapshot()}, narrative)

	report, err := svc.Screener(context.Background(), "TCS")
	require.NoError(t, err)
	assert.Equal(t, "TCS.NS", report.Symbol)
	assert.InDelta(t, 0.1, report.Metrics.EarningYield, 1e-9)
	assert.Equal(t, "Cheap and good.", report.Narrative)
}

func TestCacheKeysAreSeparatedByNamespace(t *testing.T) {
	provider := &fakeProvider{snap: sampleSnapshot()}
	svc, _ := newService(provider, nil)

	_, err := svc.Buffett(context.Background(), "TCS")
	require.NoError(t, err)
	_, err = svc.Screener(context.Background(), "TCS")
	require.NoError(t, err)

	assert.Equal(t, int32(2), provider.calls.Load())
}
