package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wonny/greenblatt/internal/contracts"
	"github.com/wonny/greenblatt/internal/portfolio"
)

// Accepted header names, matched case-insensitively
var (
	tickerColumns = []string{"ticker", "symbol"}
	sharesColumns = []string{"shares", "quantity"}
)

var (
	ErrMissingTickerColumn = errors.New("csv: missing Ticker or Symbol column")
	ErrMissingSharesColumn = errors.New("csv: missing Shares or Quantity column")
)

// ParseCSV reads holdings from a header-mapped CSV.
// Rows with an empty ticker or non-positive shares are dropped; unparsable shares count as zero.
func ParseCSV(r io.Reader) ([]contracts.Holding, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []contracts.Holding{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	tickerIdx := columnIndex(header, tickerColumns)
	if tickerIdx < 0 {
		return nil, ErrMissingTickerColumn
	}
	sharesIdx := columnIndex(header, sharesColumns)
	if sharesIdx < 0 {
		return nil, ErrMissingSharesColumn
	}

	var holdings []contracts.Holding
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		holdings = append(holdings, contracts.Holding{
			Ticker: field(record, tickerIdx),
			Shares: parseShares(field(record, sharesIdx)),
		})
	}

	return portfolio.Normalize(holdings), nil
}

// columnIndex returns the first header matching any name, or -1
func columnIndex(header []string, names []string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		for _, name := range names {
			if h == name {
				return i
			}
		}
	}
	return -1
}

func field(record []string, idx int) string {
	if idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func parseShares(s string) float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0
	}
	return v
}
