package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/greenblatt/pkg/logger"
)

type countingJob struct {
	name     string
	schedule string
	failures int32
	calls    atomic.Int32
}

func (j *countingJob) Name() string     { return j.name }
func (j *countingJob) Schedule() string { return j.schedule }

func (j *countingJob) Run(ctx context.Context) error {
	if j.calls.Add(1) <= j.failures {
		return errors.New("transient")
	}
	return nil
}

func TestAddJob(t *testing.T) {
	s := New(logger.Nop())

	require.NoError(t, s.AddJob(&countingJob{name: "b", schedule: "0 0 6 * * *"}))
	require.NoError(t, s.AddJob(&countingJob{name: "a", schedule: "@every 1h"}))
	assert.Equal(t, []string{"a", "b"}, s.Jobs())

	assert.Error(t, s.AddJob(&countingJob{name: "a", schedule: "@every 1h"}), "duplicate name")
	assert.Error(t, s.AddJob(&countingJob{name: "c", schedule: "not a cron"}), "invalid schedule")
}

func TestRemoveJob(t *testing.T) {
	s := New(logger.Nop())
	require.NoError(t, s.AddJob(&countingJob{name: "a", schedule: "@every 1h"}))

	require.NoError(t, s.RemoveJob("a"))
	assert.Empty(t, s.Jobs())
	assert.Empty(t, s.cron.Entries())
	assert.Error(t, s.RemoveJob("a"))
}

func TestRunNow_Retries(t *testing.T) {
	tests := []struct {
		name         string
		failures     int32
		maxRetries   int
		wantSuccess  bool
		wantAttempts int
	}{
		{"first attempt succeeds", 0, 2, true, 1},
		{"succeeds after retry", 2, 2, true, 3},
		{"exhausts retries", 5, 2, false, 3},
		{"no retries", 1, 0, false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(logger.Nop()).WithRetry(tt.maxRetries, time.Millisecond)
			job := &countingJob{name: "job", schedule: "@every 1h", failures: tt.failures}
			require.NoError(t, s.AddJob(job))

			result, err := s.RunNow("job")
			require.NoError(t, err)
			assert.Equal(t, tt.wantSuccess, result.Success)
			assert.Equal(t, tt.wantAttempts, result.Attempts)

			stats := s.Stats()["job"]
			assert.Equal(t, 1, stats.TotalRuns)
			require.NotNil(t, stats.LastRun)
			if tt.wantSuccess {
				assert.Equal(t, 1.0, stats.SuccessRate)
				assert.NotNil(t, stats.LastSuccess)
			} else {
				assert.Equal(t, 1, stats.FailureCount)
				assert.NotNil(t, stats.LastFailure)
			}
		})
	}
}

func TestRunNow_UnknownJob(t *testing.T) {
	_, err := New(logger.Nop()).RunNow("missing")
	assert.Error(t, err)
}

func TestStartStop(t *testing.T) {
	s := New(logger.Nop())
	job := &countingJob{name: "tick", schedule: "@every 1s"}
	require.NoError(t, s.AddJob(job))

	s.Start()
	assert.Eventually(t, func() bool { return job.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
	s.Stop()
}

func TestJobHistory(t *testing.T) {
	h := &JobHistory{}
	assert.Equal(t, 0.0, h.SuccessRate())
	assert.Empty(t, h.Latest(5))

	for i := 0; i < historyLimit+10; i++ {
		h.AddResult(JobResult{Success: i%2 == 0})
	}
	assert.Len(t, h.Results, historyLimit)
	assert.Len(t, h.Latest(3), 3)
	assert.Equal(t, historyLimit/2, h.Failures())
	assert.InDelta(t, 0.5, h.SuccessRate(), 1e-9)
}
