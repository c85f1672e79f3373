package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/greenblatt/internal/contracts"
	"github.com/wonny/greenblatt/pkg/config"
	"github.com/wonny/greenblatt/pkg/httputil"
	"github.com/wonny/greenblatt/pkg/logger"
)

// Client handles communication with Yahoo Finance
// ⭐ SSOT: Yahoo Finance calls go through this client only
type Client struct {
	httpClient    *httputil.Client
	logger        *logger.Logger
	quoteURL      string
	summaryURL    string
	timeseriesURL string
	historyStart  time.Time
	now           func() time.Time
}

// NewClient creates a new Yahoo Finance client
func NewClient(cfg config.YahooConfig, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient:    httpClient,
		logger:        log.WithComponent("yahoo"),
		quoteURL:      cfg.QuoteURL,
		summaryURL:    cfg.SummaryURL,
		timeseriesURL: cfg.TimeseriesURL,
		historyStart:  cfg.HistoryStart,
		now:           time.Now,
	}
}

// Snapshot fetches the time series, summary and quote for symbol concurrently
func (c *Client) Snapshot(ctx context.Context, symbol string) (*contracts.Snapshot, error) {
	snap := &contracts.Snapshot{Symbol: symbol}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		series, err := c.Timeseries(gctx, symbol)
		if err != nil {
			return err
		}
		snap.Series = series
		return nil
	})

	g.Go(func() error {
		summary, err := c.Summary(gctx, symbol)
		if err != nil {
			return err
		}
		snap.Summary = *summary
		return nil
	})

	g.Go(func() error {
		quote, err := c.Quote(gctx, symbol)
		if err != nil {
			return err
		}
		snap.Quote = quote
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", symbol, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol":         symbol,
		"periods":        len(snap.Series),
		"financial_data": snap.Summary.FinancialData != nil,
	}).Debug("Fetched snapshot")

	return snap, nil
}

func buildURL(base string, path string, params url.Values) string {
	u := base
	if path != "" {
		u = fmt.Sprintf("%s/%s", base, url.PathEscape(path))
	}
	if len(params) > 0 {
		u = fmt.Sprintf("%s?%s", u, params.Encode())
	}
	return u
}
