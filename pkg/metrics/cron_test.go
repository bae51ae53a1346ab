package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCronJobMetricsRecordsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)
	before := float64(time.Now().Unix())

	m.ObserveDuration("cache-warm", 2*time.Second)
	m.IncSuccess("cache-warm")
	m.IncFailure("cache-warm")
	m.IncFailure("")
	m.IncSkipped()
	m.IncSkipped()

	mfs, err := reg.Gather()
	require.NoError(t, err)

	got, err := fetchCounterValue(mfs, "retaildash_cron_job_success_total", "job", "cache-warm")
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	got, err = fetchCounterValue(mfs, "retaildash_cron_job_failure_total", "job", "unknown")
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	got, err = fetchHistogramSum(mfs, "retaildash_cron_job_duration_seconds", "job", "cache-warm")
	require.NoError(t, err)
	assert.InDelta(t, 2.0, got, 0.001)

	got, err = fetchGaugeValue(mfs, "retaildash_cron_job_last_success_timestamp_seconds", "job", "cache-warm")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, got, before)

	got, err = fetchCounterValue(mfs, "retaildash_cron_cycles_skipped_total", "", "")
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)
}

func TestCronJobMetricsWithoutRegistererIsInert(t *testing.T) {
	m := NewCronJobMetrics(nil)
	assert.NotPanics(t, func() {
		m.ObserveDuration("cache-warm", time.Second)
		m.IncSuccess("cache-warm")
		m.IncFailure("cache-warm")
		m.IncSkipped()
	})

	var nilMetrics *CronJobMetrics
	assert.NotPanics(t, func() { nilMetrics.IncSkipped() })
}
