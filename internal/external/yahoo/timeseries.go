package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/wonny/greenblatt/internal/contracts"
)

const annualPrefix = "annual"

// statementTypes are the annual statement lines requested from the time series endpoint
var statementTypes = []string{
	"EBIT",
	"EBITDA",
	"OperatingIncome",
	"ReconciledDepreciation",
	"InterestExpense",
	"NetPPE",
	"CurrentAssets",
	"CurrentLiabilities",
	"TotalDebt",
	"CashAndCashEquivalents",
	"NetIncome",
	"GrossProfit",
	"TotalRevenue",
}

// timeseriesResponse represents the response from the fundamentals time series endpoint
type timeseriesResponse struct {
	Timeseries struct {
		Result []timeseriesResult `json:"result"`
		Error  interface{}        `json:"error"`
	} `json:"timeseries"`
}

type timeseriesResult map[string]interface{}

// Timeseries fetches annual statement lines since the configured start date, oldest first
func (c *Client) Timeseries(ctx context.Context, symbol string) ([]contracts.StatementEntry, error) {
	types := make([]string, len(statementTypes))
	for i, t := range statementTypes {
		types[i] = annualPrefix + t
	}

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("type", strings.Join(types, ","))
	params.Set("period1", strconv.FormatInt(c.historyStart.Unix(), 10))
	params.Set("period2", strconv.FormatInt(c.now().Unix(), 10))

	var result timeseriesResponse
	if err := c.httpClient.GetJSON(ctx, buildURL(c.timeseriesURL, symbol, params), &result); err != nil {
		return nil, fmt.Errorf("failed to fetch fundamentals time series: %w", err)
	}

	if result.Timeseries.Error != nil {
		return nil, fmt.Errorf("time series API error: %v", result.Timeseries.Error)
	}

	return mergeSeries(result.Timeseries.Result), nil
}

// mergeSeries folds per-line results into one entry per reporting date
func mergeSeries(results []timeseriesResult) []contracts.StatementEntry {
	byDate := make(map[string]*contracts.StatementEntry)

	for _, res := range results {
		lineType := resultType(res)
		if lineType == "" {
			continue
		}
		points, ok := res[lineType].([]interface{})
		if !ok {
			continue
		}
		field := fieldName(lineType)

		for _, item := range points {
			point, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			date := getString(point, "asOfDate", "")
			v := getRaw(point, "reportedValue")
			if date == "" || v == nil {
				continue
			}

			entry, exists := byDate[date]
			if !exists {
				parsed, err := time.Parse("2006-01-02", date)
				if err != nil {
					continue
				}
				entry = &contracts.StatementEntry{Date: parsed, Fields: make(map[string]float64)}
				byDate[date] = entry
			}
			entry.Fields[field] = *v
		}
	}

	series := make([]contracts.StatementEntry, 0, len(byDate))
	for _, entry := range byDate {
		series = append(series, *entry)
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})
	return series
}

func resultType(res timeseriesResult) string {
	meta := getMap(res, "meta")
	if meta == nil {
		return ""
	}
	types, ok := meta["type"].([]interface{})
	if !ok || len(types) == 0 {
		return ""
	}
	t, _ := types[0].(string)
	return t
}

// fieldName maps "annualNetPPE" to "netPPE"; all-caps lines such as EBIT keep their case
func fieldName(lineType string) string {
	name := strings.TrimPrefix(lineType, annualPrefix)
	if name == "" || strings.ToUpper(name) == name {
		return name
	}
	runes := []rune(name)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}
