package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/greenblatt/internal/universe"
	"github.com/wonny/greenblatt/pkg/logger"
)

type fakeRefresher struct {
	report *universe.RefreshReport
	err    error
}

func (f *fakeRefresher) RefreshAll(ctx context.Context) (*universe.RefreshReport, error) {
	return f.report, f.err
}

type fakeSweeper struct{ calls int }

func (f *fakeSweeper) CleanExpired() int {
	f.calls++
	return 3
}

func TestRefreshJob(t *testing.T) {
	tests := []struct {
		name      string
		refresher *fakeRefresher
		wantErr   bool
	}{
		{"all refreshed", &fakeRefresher{report: &universe.RefreshReport{Refreshed: 2, Failed: map[string]string{}}}, false},
		{"partial failure", &fakeRefresher{report: &universe.RefreshReport{Refreshed: 1, Failed: map[string]string{"X": "boom"}}}, false},
		{"total failure", &fakeRefresher{report: &universe.RefreshReport{Failed: map[string]string{"X": "boom"}}}, true},
		{"empty universe", &fakeRefresher{report: &universe.RefreshReport{Failed: map[string]string{}}}, false},
		{"store error", &fakeRefresher{err: errors.New("db down")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := NewRefreshJob(tt.refresher, "0 0 6 * * *", logger.Nop())
			assert.Equal(t, "universe_refresh", job.Name())
			assert.Equal(t, "0 0 6 * * *", job.Schedule())

			err := job.Run(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCacheCleanupJob(t *testing.T) {
	sweeper := &fakeSweeper{}
	job := NewCacheCleanupJob(sweeper, logger.Nop())

	assert.Equal(t, "cache_cleanup", job.Name())
	assert.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, sweeper.calls)
}
