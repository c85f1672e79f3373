package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wonny/greenblatt/internal/contracts"
	"github.com/wonny/greenblatt/pkg/httputil"
)

// summaryModules are requested on every summary call
var summaryModules = []string{
	"financialData",
	"defaultKeyStatistics",
	"summaryDetail",
	"cashflowStatementHistory",
}

// summaryResponse represents the response from the quoteSummary endpoint
type summaryResponse struct {
	QuoteSummary struct {
		Result []map[string]interface{} `json:"result"`
		Error  interface{}              `json:"error"`
	} `json:"quoteSummary"`
}

// Summary fetches the summary modules for symbol. An unknown symbol yields an empty summary.
func (c *Client) Summary(ctx context.Context, symbol string) (*contracts.QuoteSummary, error) {
	params := url.Values{}
	params.Set("modules", strings.Join(summaryModules, ","))

	var result summaryResponse
	err := c.httpClient.GetJSON(ctx, buildURL(c.summaryURL, symbol, params), &result)

	var statusErr *httputil.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		return &contracts.QuoteSummary{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quote summary: %w", err)
	}

	if len(result.QuoteSummary.Result) == 0 {
		return &contracts.QuoteSummary{}, nil
	}

	return parseSummary(result.QuoteSummary.Result[0]), nil
}

func parseSummary(modules map[string]interface{}) *contracts.QuoteSummary {
	summary := &contracts.QuoteSummary{}

	if fd := getMap(modules, "financialData"); fd != nil {
		summary.FinancialData = &contracts.FinancialData{
			EBIT:                    getRaw(fd, "ebit"),
			OperatingIncome:         getRaw(fd, "operatingIncome"),
			EBITDA:                  getRaw(fd, "ebitda"),
			Depreciation:            getRaw(fd, "depreciation"),
			InterestExpense:         getRaw(fd, "interestExpense"),
			MarketCap:               getRaw(fd, "marketCap"),
			TotalDebt:               getRaw(fd, "totalDebt"),
			TotalCash:               getRaw(fd, "totalCash"),
			ReturnOnEquity:          getRaw(fd, "returnOnEquity"),
			ReturnOnInvestedCapital: getRaw(fd, "returnOnInvestedCapital"),
			GrossMargins:            getRaw(fd, "grossMargins"),
			OperatingMargins:        getRaw(fd, "operatingMargins"),
			DebtToEquity:            getRaw(fd, "debtToEquity"),
			RevenueGrowth:           getRaw(fd, "revenueGrowth"),
			EarningsGrowth:          getRaw(fd, "earningsGrowth"),
			FreeCashflow:            getRaw(fd, "freeCashflow"),
			TotalRevenue:            getRaw(fd, "totalRevenue"),
			CurrentRatio:            getRaw(fd, "currentRatio"),
		}
	}

	if ks := getMap(modules, "defaultKeyStatistics"); ks != nil {
		summary.KeyStatistics = &contracts.KeyStatistics{
			EnterpriseValue: getRaw(ks, "enterpriseValue"),
			MarketCap:       getRaw(ks, "marketCap"),
		}
	}

	if sd := getMap(modules, "summaryDetail"); sd != nil {
		summary.SummaryDetail = &contracts.SummaryDetail{
			TrailingPE: getRaw(sd, "trailingPE"),
		}
	}

	if history := getMap(modules, "cashflowStatementHistory"); history != nil {
		if statements, ok := history["cashflowStatements"].([]interface{}); ok {
			for _, item := range statements {
				stmt, ok := item.(map[string]interface{})
				if !ok {
					continue
				}
				cf := contracts.CashflowStatement{InterestExpense: getRaw(stmt, "interestExpense")}
				if ts := getRaw(stmt, "endDate"); ts != nil {
					cf.EndDate = time.Unix(int64(*ts), 0).UTC()
				}
				summary.Cashflows = append(summary.Cashflows, cf)
			}
		}
	}

	return summary
}
