package universe

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/greenblatt/internal/contracts"
	"github.com/wonny/greenblatt/internal/greenblatt"
	"github.com/wonny/greenblatt/internal/resolver"
	"github.com/wonny/greenblatt/pkg/logger"
)

// DefaultConcurrency caps parallel refreshes in RefreshAll
const DefaultConcurrency = 4

// RankedCompany is a ranked stored company
type RankedCompany struct {
	contracts.RankedEntity
	LastUpdated time.Time `json:"lastUpdated"`
}

// RefreshReport summarizes a RefreshAll run
type RefreshReport struct {
	Refreshed int               `json:"refreshed"`
	Failed    map[string]string `json:"failed"`
}

// Service maintains the stored ranking universe
type Service struct {
	store       contracts.CompanyStore
	source      contracts.ProfileSource
	ranker      *greenblatt.Ranker
	concurrency int
	now         func() time.Time
	logger      *logger.Logger
}

// NewService creates a universe service
func NewService(store contracts.CompanyStore, source contracts.ProfileSource, ranker *greenblatt.Ranker, log *logger.Logger) *Service {
	return &Service{
		store:       store,
		source:      source,
		ranker:      ranker,
		concurrency: DefaultConcurrency,
		now:         time.Now,
		logger:      log.WithComponent("universe"),
	}
}

// WithClock overrides the timestamp source
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Refresh computes a fresh profile for symbol and upserts it
func (s *Service) Refresh(ctx context.Context, symbol string) (*contracts.Company, error) {
	profile, err := s.source.Profile(ctx, symbol)
	if err != nil {
		return nil, err
	}

	company := contracts.Company{
		Symbol:      profile.Symbol,
		Profile:     *profile,
		LastUpdated: s.now().UTC(),
	}
	if company.Symbol == "" {
		company.Symbol = resolver.Normalize(symbol)
		company.Profile.Symbol = company.Symbol
	}

	if err := s.store.Upsert(ctx, company); err != nil {
		return nil, err
	}

	s.logger.WithField("symbol", company.Symbol).Info("Company refreshed")
	return &company, nil
}

// RefreshAll refreshes every stored company; individual failures are reported, not returned
func (s *Service) RefreshAll(ctx context.Context) (*RefreshReport, error) {
	symbols, err := s.store.Symbols(ctx)
	if err != nil {
		return nil, err
	}

	report := &RefreshReport{Failed: make(map[string]string)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, symbol := range symbols {
		symbol := symbol
		g.Go(func() error {
			_, err := s.Refresh(gctx, symbol)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed[symbol] = err.Error()
				return nil
			}
			report.Refreshed++
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return report, err
	}

	s.logger.WithFields(map[string]interface{}{
		"total":     len(symbols),
		"refreshed": report.Refreshed,
		"failed":    len(report.Failed),
	}).Info("Universe refresh complete")

	return report, nil
}

// Ranked ranks every stored company
func (s *Service) Ranked(ctx context.Context) ([]RankedCompany, error) {
	companies, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	profiles := make([]contracts.FinancialProfile, len(companies))
	for i, c := range companies {
		profiles[i] = c.Profile
	}

	ranked := make([]RankedCompany, 0, len(companies))
	for _, r := range s.ranker.RankIndexed(profiles) {
		ranked = append(ranked, RankedCompany{
			RankedEntity: r.RankedEntity,
			LastUpdated:  companies[r.Index].LastUpdated,
		})
	}
	return ranked, nil
}

// Delete removes a company from the universe
func (s *Service) Delete(ctx context.Context, symbol string) error {
	symbol = resolver.Normalize(symbol)
	if err := s.store.Delete(ctx, symbol); err != nil {
		return err
	}
	s.logger.WithField("symbol", symbol).Info("Company deleted")
	return nil
}
