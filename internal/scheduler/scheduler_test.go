package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newScheduler(t *testing.T) *Scheduler {
	t.Helper()
	s, err := New(context.Background(), "UTC", zap.NewNop())
	require.NoError(t, err)
	return s
}

func noop(context.Context) error { return nil }

func TestNewInvalidTimezone(t *testing.T) {
	_, err := New(context.Background(), "Mars/Olympus_Mons", zap.NewNop())
	assert.Error(t, err)
}

func TestAddJob(t *testing.T) {
	s := newScheduler(t)
	require.NoError(t, s.AddJob("e2e", "0 9 * * 1-5", noop))

	jobs := s.ListJobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "e2e", jobs[0].Name)
}

func TestAddJobBadSchedule(t *testing.T) {
	s := newScheduler(t)
	err := s.AddJob("e2e", "every morning", noop)
	assert.Error(t, err)
	assert.Empty(t, s.ListJobs())
}

func TestListJobsNextRun(t *testing.T) {
	s := newScheduler(t)
	require.NoError(t, s.AddJob("validate", "0 9 * * *", noop))

	s.Start()
	defer s.Stop()

	jobs := s.ListJobs()
	require.Len(t, jobs, 1)
	assert.False(t, jobs[0].NextRun.IsZero())
	assert.Equal(t, 9, jobs[0].NextRun.Hour())
}

func TestRemoveJob(t *testing.T) {
	s := newScheduler(t)
	require.NoError(t, s.AddJob("e2e", "@hourly", noop))

	s.RemoveJob("e2e")
	s.RemoveJob("missing")

	assert.Empty(t, s.ListJobs())
}

func TestRunNow(t *testing.T) {
	s := newScheduler(t)
	boom := errors.New("boom")

	called := false
	err := s.RunNow(context.Background(), "e2e", func(ctx context.Context) error {
		called = true
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		return boom
	})

	assert.True(t, called)
	assert.ErrorIs(t, err, boom)
}

// blockingJob signals started and then waits for its context to end
func blockingJob(started chan<- struct{}, ended chan<- error) Job {
	return func(ctx context.Context) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-ctx.Done()
		select {
		case ended <- ctx.Err():
		default:
		}
		return ctx.Err()
	}
}

func TestStopCancelsRunningJob(t *testing.T) {
	s := newScheduler(t)
	started := make(chan struct{}, 1)
	ended := make(chan error, 1)
	require.NoError(t, s.AddJob("e2e", "@every 1s", blockingJob(started, ended)))

	s.Start()
	select {
	case <-started:
	case <-time.After(5 * time.Second):
		s.Stop()
		t.Fatal("job never started")
	}

	done := s.Stop().Done()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Stop did not finish after cancelling the running job")
	}
	assert.ErrorIs(t, <-ended, context.Canceled)
}

func TestParentContextCancelsRunningJob(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	s, err := New(parent, "UTC", zap.NewNop())
	require.NoError(t, err)

	started := make(chan struct{}, 1)
	ended := make(chan error, 1)
	require.NoError(t, s.AddJob("e2e", "@every 1s", blockingJob(started, ended)))

	s.Start()
	defer s.Stop()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("job never started")
	}

	cancel()
	select {
	case err := <-ended:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(3 * time.Second):
		t.Fatal("job still running after its parent context was cancelled")
	}
}
