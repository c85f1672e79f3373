package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wonny/greenblatt/internal/analysis"
)

var (
	resolveCmd = &cobra.Command{
		Use:   "resolve [symbol]",
		Short: "Resolve a ticker to its listed symbol",
		Long: `Resolve a bare ticker by probing live quotes.

Bare tickers are tried as-is, then with the configured exchange
suffixes (default .NS, then .BO). Tickers containing "." are
probed as given.

Example:
  go run ./cmd/greenblatt resolve TCS`,
		Args: cobra.ExactArgs(1),
		RunE: runResolve,
	}

	scoreCmd = &cobra.Command{
		Use:   "score [symbol]",
		Short: "Score business quality (0-100)",
		Long: `Compute the quality score of one company.

Categories:
  Capital efficiency    (25)
  Business quality      (35)
  Financial strength    (25)
  Valuation discipline  (15)

Example:
  go run ./cmd/greenblatt score TCS
  go run ./cmd/greenblatt score AAPL --json`,
		Args: cobra.ExactArgs(1),
		RunE: runScore,
	}

	screenCmd = &cobra.Command{
		Use:   "screen [symbol]",
		Short: "Show Magic Formula factors of one company",
		Args:  cobra.ExactArgs(1),
		RunE:  runScreen,
	}
)

func init() {
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(screenCmd)
}

// withApp loads config, wires the app and runs fn with a bounded context
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	cfg, err := loadConfig(false)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	return fn(ctx, a)
}

func runResolve(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		symbol, err := a.resolver.Resolve(ctx, args[0])
		if err != nil {
			PrintError(err.Error())
			return err
		}

		if jsonOutput {
			return PrintJSON(map[string]string{"input": args[0], "symbol": symbol})
		}
		PrintSuccess(fmt.Sprintf("%s → %s", args[0], symbol))
		return nil
	})
}

func runScore(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		report, err := a.analysis.Buffett(ctx, args[0])
		if err != nil {
			PrintError(err.Error())
			return err
		}

		if jsonOutput {
			return PrintJSON(report)
		}
		printBuffettReport(report)
		return nil
	})
}

func runScreen(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		report, err := a.analysis.Screener(ctx, args[0])
		if err != nil {
			PrintError(err.Error())
			return err
		}

		if jsonOutput {
			return PrintJSON(report)
		}

		m := report.Metrics
		PrintHeader("Magic Formula: "+report.Symbol, map[string]string{
			"EBIT":     FormatOptional(m.EBIT, false),
			"EV":       FormatOptional(m.EnterpriseValue, false),
			"Yield":    FormatPercent(m.EarningYield),
			"ROC":      FormatPercent(m.ROC),
			"Coverage": FormatOptional(m.InterestCoverage, false),
		}, "EBIT", "EV", "Yield", "ROC", "Coverage")
		fmt.Println(report.Narrative)
		return nil
	})
}

func printBuffettReport(r *analysis.BuffettReport) {
	PrintHeader("Quality score: "+r.Ticker, map[string]string{
		"Score": strconv.Itoa(r.BuffettScore) + " / 100",
	}, "Score")

	widths := []int{24, 8}
	PrintTableHeader([]string{"Category", "Points"}, widths)
	PrintTableRow([]string{"Capital efficiency", fmt.Sprintf("%d/25", r.Breakdown.CapitalEfficiency)}, widths)
	PrintTableRow([]string{"Business quality", fmt.Sprintf("%d/35", r.Breakdown.BusinessQuality)}, widths)
	PrintTableRow([]string{"Financial strength", fmt.Sprintf("%d/25", r.Breakdown.FinancialStrength)}, widths)
	PrintTableRow([]string{"Valuation discipline", fmt.Sprintf("%d/15", r.Breakdown.ValuationDiscipline)}, widths)
	fmt.Println()

	PrintTableHeader([]string{"Derived", "Value"}, widths)
	PrintTableRow([]string{"Return on capital", FormatOptional(r.Derived.ReturnOnCapital, true)}, widths)
	PrintTableRow([]string{"FCF margin", FormatOptional(r.Derived.FCFMargin, true)}, widths)
	PrintTableRow([]string{"FCF yield", FormatOptional(r.Derived.FCFYield, true)}, widths)
	PrintTableRow([]string{"Equity-bond spread", FormatOptional(r.Derived.EquityBondSpread, true)}, widths)
	fmt.Println()

	PrintSeparator()
	fmt.Println(r.Narrative)
}
