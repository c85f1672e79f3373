package yahoo

import (
	"context"
	"fmt"
	"net/url"

	"github.com/wonny/greenblatt/internal/contracts"
)

// quoteResponse represents the response from the quote endpoint
type quoteResponse struct {
	QuoteResponse struct {
		Result []map[string]interface{} `json:"result"`
		Error  interface{}              `json:"error"`
	} `json:"quoteResponse"`
}

// Quote fetches the live quote for symbol
func (c *Client) Quote(ctx context.Context, symbol string) (*contracts.Quote, error) {
	params := url.Values{}
	params.Set("symbols", symbol)

	var result quoteResponse
	if err := c.httpClient.GetJSON(ctx, buildURL(c.quoteURL, "", params), &result); err != nil {
		return nil, fmt.Errorf("failed to fetch quote: %w", err)
	}

	if result.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("quote API error: %v", result.QuoteResponse.Error)
	}

	if len(result.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("no quote data for %s: %w", symbol, contracts.ErrSymbolNotFound)
	}

	info := result.QuoteResponse.Result[0]
	return &contracts.Quote{
		Symbol:             getString(info, "symbol", symbol),
		ShortName:          getString(info, "shortName", ""),
		Currency:           getString(info, "currency", ""),
		RegularMarketPrice: getFloat64(info, "regularMarketPrice"),
		MarketCap:          getFloat64(info, "marketCap"),
	}, nil
}
