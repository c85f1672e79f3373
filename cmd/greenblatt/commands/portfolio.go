package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wonny/greenblatt/internal/ingest"
)

// portfolioCmd represents the portfolio command
var portfolioCmd = &cobra.Command{
	Use:   "portfolio [file.csv]",
	Short: "Rank the holdings of a CSV portfolio",
	Long: `Import holdings from a CSV file and rank them against each other.

The file needs a Ticker (or Symbol) column and a Shares (or Quantity)
column. Rows with an empty ticker or non-positive shares are skipped.
Any holding that cannot be resolved fails the whole ranking.

Example:
  go run ./cmd/greenblatt portfolio holdings.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runPortfolio,
}

func init() {
	rootCmd.AddCommand(portfolioCmd)
}

func runPortfolio(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	holdings, err := ingest.ParseCSV(f)
	if err != nil {
		return err
	}
	if len(holdings) == 0 {
		PrintWarning("No valid holdings found in " + args[0])
		return nil
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		result, err := a.aggregator.Aggregate(ctx, holdings)
		if err != nil {
			PrintError(err.Error())
			return err
		}

		if jsonOutput {
			return PrintJSON(result)
		}

		PrintHeader("Portfolio Magic Formula ranking", map[string]string{
			"File":      args[0],
			"Holdings":  strconv.Itoa(result.Summary.Holdings),
			"Avg yield": FormatPercent(result.Summary.AvgEarningsYield),
			"Avg ROC":   FormatPercent(result.Summary.AvgROC),
		}, "File", "Holdings", "Avg yield", "Avg ROC")

		widths := []int{4, 14, 10, 10, 10, 8}
		PrintTableHeader([]string{"#", "Ticker", "Shares", "Yield", "ROC", "Combined"}, widths)
		for i, h := range result.RankedHoldings {
			PrintTableRow([]string{
				strconv.Itoa(i + 1),
				h.Ticker,
				strconv.FormatFloat(h.Shares, 'f', -1, 64),
				FormatPercent(h.EarningYield),
				FormatPercent(h.ROC),
				strconv.Itoa(h.CombinedRank),
			}, widths)
		}
		return nil
	})
}
