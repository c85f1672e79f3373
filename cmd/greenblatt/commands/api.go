package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/greenblatt/internal/api"
	"github.com/wonny/greenblatt/internal/api/handlers"
	"github.com/wonny/greenblatt/internal/portfolio"
	"github.com/wonny/greenblatt/internal/scheduler"
	"github.com/wonny/greenblatt/internal/scheduler/jobs"
	"github.com/wonny/greenblatt/internal/universe"
	"github.com/wonny/greenblatt/pkg/database"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Start the REST API server.

Without DATABASE_URL only the analysis endpoints are served.

Endpoints:
  GET    /health
  GET    /api/buffett/{symbol}
  GET    /api/screener/{symbol}
  GET    /api/companies
  POST   /api/companies/{symbol}
  DELETE /api/companies/{symbol}
  POST   /api/portfolio
  GET    /api/portfolio
  GET    /api/portfolio/{id}
  POST   /api/portfolio/{id}/holdings
  POST   /api/portfolio/{id}/upload-csv
  DELETE /api/portfolio/{id}/holdings/{holdingID}
  GET    /api/portfolio/{id}/greenblatt

Example:
  go run ./cmd/greenblatt api
  go run ./cmd/greenblatt api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default from PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Greenblatt API Server ===")

	// 1. Load config
	cfg, err := loadConfig(true)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Override port if flag is set
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Wire the analysis pipeline
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	log := a.log

	log.WithFields(map[string]interface{}{
		"port":  cfg.Port,
		"env":   cfg.Env,
		"cache": cfg.Cache.Backend,
	}).Info("Initializing API server")

	h := api.Handlers{
		Analysis: handlers.NewAnalysisHandler(a.analysis, log),
	}

	// 3. Connect to database when configured
	db, err := database.New(cfg)
	switch {
	case errors.Is(err, database.ErrMissingURL):
		log.Warn("DATABASE_URL not set, portfolio and company endpoints disabled")
	case err != nil:
		return fmt.Errorf("connect to database: %w", err)
	default:
		defer db.Close()
		log.Info("Connected to database")

		migrateCtx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		err := db.Migrate(migrateCtx)
		cancel()
		if err != nil {
			return err
		}

		companies := universe.NewService(universe.NewRepository(db.Pool), a.analysis, a.ranker, log)
		h.Companies = handlers.NewCompanyHandler(companies, log)
		h.Portfolio = handlers.NewPortfolioHandler(portfolio.NewRepository(db.Pool), a.aggregator, log)
		h.Health = db
	}

	// 4. Evict expired in-process cache entries
	var sched *scheduler.Scheduler
	if a.memory != nil {
		sched = scheduler.New(log)
		if err := sched.AddJob(jobs.NewCacheCleanupJob(a.memory, log)); err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	// 5. Create router and server
	server := api.New(cfg, log, api.NewRouter(h, log))

	// 6. Start server with graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
