package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/logger"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/metrics"
)

type fakeLock struct {
	held     bool
	released int
	// ctx error observed while releasing
	releaseCtxErr error
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	if f.held {
		return false, nil
	}
	f.held = true
	return true, nil
}

func (f *fakeLock) Release(ctx context.Context) error {
	f.held = false
	f.released++
	f.releaseCtxErr = ctx.Err()
	return nil
}

type testJob struct {
	name     string
	err      error
	runs     int
	deadline bool
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(ctx context.Context) error {
	t.runs++
	_, t.deadline = ctx.Deadline()
	return t.err
}

func newTestService(t *testing.T, lock Lock, jobs ...Job) *Service {
	t.Helper()
	registry, err := NewRegistry(jobs...)
	require.NoError(t, err)
	service, err := NewService(ServiceParams{
		Logger:   logger.Nop(),
		Registry: registry,
		Lock:     lock,
		Interval: time.Minute,
	})
	require.NoError(t, err)
	return service
}

func TestRunOnceRunsEveryJobAndJoinsFailures(t *testing.T) {
	ok := &testJob{name: "cache-warm"}
	failing := &testJob{name: "broken", err: errors.New("boom")}
	lock := &fakeLock{}
	service := newTestService(t, lock, ok, failing)

	err := service.RunOnce(context.Background())
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 1)
	assert.Contains(t, err.Error(), "job broken: boom")
	assert.Equal(t, 1, ok.runs)
	assert.Equal(t, 1, failing.runs)
	assert.True(t, ok.deadline)
	assert.False(t, lock.held)
}

func TestRunOnceSkipsWhenLockHeld(t *testing.T) {
	job := &testJob{name: "cache-warm"}
	reg := prometheus.NewRegistry()
	registry, err := NewRegistry(job)
	require.NoError(t, err)
	service, err := NewService(ServiceParams{
		Logger:   logger.Nop(),
		Registry: registry,
		Lock:     &fakeLock{held: true},
		Metrics:  metrics.NewCronJobMetrics(reg),
	})
	require.NoError(t, err)

	require.NoError(t, service.RunOnce(context.Background()))
	assert.Zero(t, job.runs)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	var skipped float64
	for _, mf := range mfs {
		if mf.GetName() == "retaildash_cron_cycles_skipped_total" {
			skipped = mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	assert.Equal(t, 1.0, skipped)
}

func TestRunOnceReleasesLockAfterCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	lock := &fakeLock{}
	first := &testJob{name: "first"}
	second := &testJob{name: "second"}
	canceling := jobFunc{name: "cancel", fn: func(context.Context) error { cancel(); return nil }}
	service := newTestService(t, lock, first, canceling, second)

	err := service.RunOnce(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, first.runs)
	assert.Zero(t, second.runs)
	assert.Equal(t, 1, lock.released)
	assert.NoError(t, lock.releaseCtxErr)
}

func TestNewServiceDefaults(t *testing.T) {
	_, err := NewService(ServiceParams{Lock: &fakeLock{}})
	assert.Error(t, err)
	_, err = NewService(ServiceParams{Logger: logger.Nop()})
	assert.Error(t, err)

	service, err := NewService(ServiceParams{Logger: logger.Nop(), Lock: &fakeLock{}})
	require.NoError(t, err)
	assert.Equal(t, defaultInterval, service.interval)
	assert.Equal(t, defaultInterval/2, service.jobTimeout)
	assert.Empty(t, service.registry.Jobs())
}

type jobFunc struct {
	name string
	fn   func(context.Context) error
}

func (j jobFunc) Name() string                  { return j.name }
func (j jobFunc) Run(ctx context.Context) error { return j.fn(ctx) }
