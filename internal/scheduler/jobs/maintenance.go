package jobs

import (
	"context"

	"github.com/wonny/greenblatt/pkg/logger"
)

// Sweeper drops expired entries; satisfied by *cache.MemoryStore
type Sweeper interface {
	CleanExpired() int
}

// CacheCleanupJob evicts expired in-process cache entries
type CacheCleanupJob struct {
	sweeper Sweeper
	logger  *logger.Logger
}

// NewCacheCleanupJob creates a new cache cleanup job
func NewCacheCleanupJob(sweeper Sweeper, log *logger.Logger) *CacheCleanupJob {
	return &CacheCleanupJob{
		sweeper: sweeper,
		logger:  log,
	}
}

// Name returns the job name
func (j *CacheCleanupJob) Name() string {
	return "cache_cleanup"
}

// Schedule returns the cron schedule (every 10 minutes)
func (j *CacheCleanupJob) Schedule() string {
	return "0 */10 * * * *"
}

// Run executes the cache cleanup
func (j *CacheCleanupJob) Run(ctx context.Context) error {
	j.logger.Debug("Starting scheduled cache cleanup")

	if count := j.sweeper.CleanExpired(); count > 0 {
		j.logger.WithField("removed", count).Info("Cache cleanup completed")
	}
	return nil
}
