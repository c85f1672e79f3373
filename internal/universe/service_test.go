package universe

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/greenblatt/internal/contracts"
	"github.com/wonny/greenblatt/internal/greenblatt"
	"github.com/wonny/greenblatt/pkg/logger"
)

type memStore struct {
	mu        sync.Mutex
	companies map[string]contracts.Company
}

func newMemStore(companies ...contracts.Company) *memStore {
	s := &memStore{companies: make(map[string]contracts.Company)}
	for _, c := range companies {
		s.companies[c.Symbol] = c
	}
	return s
}

func (s *memStore) Upsert(ctx context.Context, company contracts.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.companies[company.Symbol] = company
	return nil
}

func (s *memStore) List(ctx context.Context) ([]contracts.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]contracts.Company, 0, len(s.companies))
	for _, c := range s.companies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

func (s *memStore) Symbols(ctx context.Context) ([]string, error) {
	companies, _ := s.List(ctx)
	out := make([]string, len(companies))
	for i, c := range companies {
		out[i] = c.Symbol
	}
	return out, nil
}

func (s *memStore) Delete(ctx context.Context, symbol string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.companies[symbol]; !ok {
		return fmt.Errorf("company %s: %w", symbol, contracts.ErrSymbolNotFound)
	}
	delete(s.companies, symbol)
	return nil
}

type fakeSource struct {
	profiles map[string]contracts.FinancialProfile
}

func (f *fakeSource) Profile(ctx context.Context, ticker string) (*contracts.FinancialProfile, error) {
	p, ok := f.profiles[ticker]
	if !ok {
		return nil, fmt.Errorf("%s: %w", ticker, contracts.ErrSymbolNotFound)
	}
	return &p, nil
}

func profile(symbol string, ebit, ev, nfa float64) contracts.FinancialProfile {
	return contracts.FinancialProfile{
		Symbol:            symbol,
		EBIT:              contracts.Float(ebit),
		EnterpriseValue:   contracts.Float(ev),
		NetFixedAssets:    contracts.Float(nfa),
		NetWorkingCapital: contracts.Float(0),
	}
}

var fixedNow = time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC)

func newTestService(store *memStore, source *fakeSource) *Service {
	return NewService(store, source, greenblatt.NewRanker(logger.Nop()), logger.Nop()).
		WithClock(func() time.Time { return fixedNow })
}

func TestRefresh(t *testing.T) {
	store := newMemStore()
	source := &fakeSource{profiles: map[string]contracts.FinancialProfile{
		"TCS": profile("TCS.NS", 100, 1000, 500),
	}}
	svc := newTestService(store, source)

	company, err := svc.Refresh(context.Background(), "TCS")
	require.NoError(t, err)
	assert.Equal(t, "TCS.NS", company.Symbol)
	assert.Equal(t, fixedNow, company.LastUpdated)

	stored, ok := store.companies["TCS.NS"]
	require.True(t, ok)
	assert.Equal(t, 100.0, contracts.ValueOr(stored.Profile.EBIT, 0))
}

func TestRefresh_UnknownSymbol(t *testing.T) {
	svc := newTestService(newMemStore(), &fakeSource{})

	_, err := svc.Refresh(context.Background(), "NOPE")
	assert.ErrorIs(t, err, contracts.ErrSymbolNotFound)
}

func TestRefreshAll(t *testing.T) {
	store := newMemStore(
		contracts.Company{Symbol: "AAA"},
		contracts.Company{Symbol: "BBB"},
		contracts.Company{Symbol: "CCC"},
	)
	source := &fakeSource{profiles: map[string]contracts.FinancialProfile{
		"AAA": profile("AAA", 10, 100, 100),
		"BBB": profile("BBB", 20, 100, 100),
	}}
	svc := newTestService(store, source)

	report, err := svc.RefreshAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Refreshed)
	require.Len(t, report.Failed, 1)
	assert.Contains(t, report.Failed, "CCC")
	assert.Equal(t, fixedNow, store.companies["AAA"].LastUpdated)
}

func TestRanked(t *testing.T) {
	store := newMemStore(
		contracts.Company{Symbol: "AAA", Profile: profile("AAA", 10, 1000, 1000), LastUpdated: fixedNow},
		contracts.Company{Symbol: "BBB", Profile: profile("BBB", 300, 1000, 1000), LastUpdated: fixedNow.Add(time.Hour)},
		contracts.Company{Symbol: "CCC", Profile: profile("CCC", 100, 1000, 1000), LastUpdated: fixedNow},
	)
	svc := newTestService(store, &fakeSource{})

	ranked, err := svc.Ranked(context.Background())
	require.NoError(t, err)
	require.Len(t, ranked, 3)

	assert.Equal(t, "BBB", ranked[0].Symbol)
	assert.Equal(t, 2, ranked[0].CombinedRank)
	assert.Equal(t, fixedNow.Add(time.Hour), ranked[0].LastUpdated)
	assert.Equal(t, "CCC", ranked[1].Symbol)
	assert.Equal(t, "AAA", ranked[2].Symbol)
}

func TestRanked_Empty(t *testing.T) {
	svc := newTestService(newMemStore(), &fakeSource{})

	ranked, err := svc.Ranked(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ranked)
	assert.NotNil(t, ranked)
}

func TestDelete(t *testing.T) {
	store := newMemStore(contracts.Company{Symbol: "TCS.NS"})
	svc := newTestService(store, &fakeSource{})

	require.NoError(t, svc.Delete(context.Background(), " tcs.ns "))
	assert.Empty(t, store.companies)
	assert.ErrorIs(t, svc.Delete(context.Background(), "TCS.NS"), contracts.ErrSymbolNotFound)
}
