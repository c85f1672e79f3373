package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/greenblatt/pkg/config"
)

var (
	// Global flags
	env        string
	verbose    bool
	jsonOutput bool
	timeout    time.Duration
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "greenblatt",
	Short: "Magic Formula ranking and quality scoring",
	Long: `Greenblatt Unified CLI

Ranks companies by earnings yield and return on capital,
scores business quality, and analyzes portfolios.

Usage:
  go run ./cmd/greenblatt [command]

Examples:
  go run ./cmd/greenblatt api
  go run ./cmd/greenblatt score TCS
  go run ./cmd/greenblatt rank AAPL MSFT GOOG
  go run ./cmd/greenblatt portfolio holdings.csv`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment override (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "timeout for one-shot commands")
}

// loadConfig loads configuration and applies global flag overrides.
// One-shot commands log at warn level unless --verbose is set.
func loadConfig(daemon bool) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if env != "" {
		cfg.Env = env
	}
	if !daemon {
		cfg.LogFormat = "console"
		if !verbose {
			cfg.LogLevel = "warn"
		}
	}
	return cfg, nil
}
