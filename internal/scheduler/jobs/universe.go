package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/greenblatt/internal/universe"
	"github.com/wonny/greenblatt/pkg/logger"
)

// Refresher recomputes every stored company; satisfied by *universe.Service
type Refresher interface {
	RefreshAll(ctx context.Context) (*universe.RefreshReport, error)
}

// RefreshJob recomputes the company universe
// ⭐ SSOT: scheduled universe refresh happens in this job only
type RefreshJob struct {
	refresher Refresher
	schedule  string
	logger    *logger.Logger
}

// NewRefreshJob creates a refresh job running on schedule
func NewRefreshJob(refresher Refresher, schedule string, log *logger.Logger) *RefreshJob {
	return &RefreshJob{
		refresher: refresher,
		schedule:  schedule,
		logger:    log,
	}
}

// Name returns the job name
func (j *RefreshJob) Name() string {
	return "universe_refresh"
}

// Schedule returns the configured cron expression
func (j *RefreshJob) Schedule() string {
	return j.schedule
}

// Run refreshes every company; it fails only when nothing could be refreshed
func (j *RefreshJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled universe refresh")

	report, err := j.refresher.RefreshAll(ctx)
	if err != nil {
		return fmt.Errorf("universe refresh failed: %w", err)
	}

	for symbol, reason := range report.Failed {
		j.logger.WithFields(map[string]interface{}{
			"symbol": symbol,
			"error":  reason,
		}).Warn("Company refresh failed")
	}

	if report.Refreshed == 0 && len(report.Failed) > 0 {
		return fmt.Errorf("all %d company refreshes failed", len(report.Failed))
	}
	return nil
}
