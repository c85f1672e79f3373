package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/greenblatt/internal/contracts"
)

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []contracts.Holding
	}{
		{
			name:  "ticker and shares",
			input: "Ticker,Shares\ntcs,10\nINFY,2.5\n",
			want:  []contracts.Holding{{Ticker: "TCS", Shares: 10}, {Ticker: "INFY", Shares: 2.5}},
		},
		{
			name:  "symbol and quantity aliases",
			input: "name,SYMBOL,Quantity\nTata,tcs,4\n",
			want:  []contracts.Holding{{Ticker: "TCS", Shares: 4}},
		},
		{
			name:  "invalid rows dropped",
			input: "ticker,shares\n,5\nAAPL,0\nMSFT,-1\nGOOG,abc\nNVDA,3\n",
			want:  []contracts.Holding{{Ticker: "NVDA", Shares: 3}},
		},
		{
			name:  "short rows tolerated",
			input: "ticker,shares\nAAPL\nMSFT,1\n",
			want:  []contracts.Holding{{Ticker: "MSFT", Shares: 1}},
		},
		{
			name:  "byte order mark",
			input: "\ufeffTicker,Shares\nAAPL,1\n",
			want:  []contracts.Holding{{Ticker: "AAPL", Shares: 1}},
		},
		{
			name:  "header only",
			input: "Ticker,Shares\n",
			want:  []contracts.Holding{},
		},
		{
			name:  "empty input",
			input: "",
			want:  []contracts.Holding{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCSV(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCSV_MissingColumns(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("name,shares\nAAPL,1\n"))
	assert.ErrorIs(t, err, ErrMissingTickerColumn)

	_, err = ParseCSV(strings.NewReader("ticker,price\nAAPL,1\n"))
	assert.ErrorIs(t, err, ErrMissingSharesColumn)
}

func TestParseCSV_Malformed(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("ticker,shares\n\"AAPL,1\n"))
	assert.Error(t, err)
}
