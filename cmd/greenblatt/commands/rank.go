package commands

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/greenblatt/internal/contracts"
)

// rankCmd represents the rank command
var rankCmd = &cobra.Command{
	Use:   "rank [symbol...]",
	Short: "Rank companies by the Magic Formula",
	Long: `Fetch every symbol in parallel and rank them by
earnings yield plus return on capital (lower combined rank is better).

Symbols that fail to resolve are reported and left out of the ranking.

Example:
  go run ./cmd/greenblatt rank AAPL MSFT GOOG
  go run ./cmd/greenblatt rank TCS INFY WIPRO --concurrency 2`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRank,
}

var rankConcurrency int

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().IntVar(&rankConcurrency, "concurrency", 4, "parallel fetches")
}

func runRank(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		profiles := make([]*contracts.FinancialProfile, len(args))
		failed := make(map[string]string)
		var mu sync.Mutex

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(max(rankConcurrency, 1))

		for i, symbol := range args {
			i, symbol := i, symbol
			g.Go(func() error {
				p, err := a.analysis.Profile(gctx, symbol)
				if err != nil {
					mu.Lock()
					failed[symbol] = err.Error()
					mu.Unlock()
					return nil
				}
				profiles[i] = p
				return nil
			})
		}
		_ = g.Wait()

		if err := ctx.Err(); err != nil {
			return fmt.Errorf("rank: %w", err)
		}

		universe := make([]contracts.FinancialProfile, 0, len(profiles))
		for _, p := range profiles {
			if p != nil {
				universe = append(universe, *p)
			}
		}
		ranked := a.ranker.Rank(universe)

		if jsonOutput {
			return PrintJSON(map[string]interface{}{
				"ranked": ranked,
				"failed": failed,
			})
		}

		PrintHeader("Magic Formula ranking", map[string]string{
			"Requested": strconv.Itoa(len(args)),
			"Ranked":    strconv.Itoa(len(ranked)),
		}, "Requested", "Ranked")

		widths := []int{4, 14, 10, 10, 6, 6, 8}
		PrintTableHeader([]string{"#", "Symbol", "Yield", "ROC", "EY#", "ROC#", "Combined"}, widths)
		for i, r := range ranked {
			PrintTableRow([]string{
				strconv.Itoa(i + 1),
				r.Symbol,
				FormatPercent(r.EarningYield),
				FormatPercent(r.ROC),
				strconv.Itoa(r.EarningYieldRank),
				strconv.Itoa(r.ROCRank),
				strconv.Itoa(r.CombinedRank),
			}, widths)
		}

		if len(failed) > 0 {
			fmt.Println()
			symbols := make([]string, 0, len(failed))
			for s := range failed {
				symbols = append(symbols, s)
			}
			sort.Strings(symbols)
			for _, s := range symbols {
				PrintWarning(fmt.Sprintf("%s: %s", s, failed[s]))
			}
		}
		return nil
	})
}
