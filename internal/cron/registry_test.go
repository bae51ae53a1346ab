package cron

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubJob struct {
	name string
}

func (s *stubJob) Name() string              { return s.name }
func (s *stubJob) Run(context.Context) error { return nil }

func TestRegistryKeepsOrderAndCopies(t *testing.T) {
	jobA := &stubJob{name: "cache-warm"}
	jobB := &stubJob{name: "location-refresh"}
	registry, err := NewRegistry(jobA, nil, jobB)
	require.NoError(t, err)

	jobs := registry.Jobs()
	require.Len(t, jobs, 2)
	assert.Same(t, jobA, jobs[0])
	assert.Same(t, jobB, jobs[1])

	jobs[0] = nil
	assert.NotNil(t, registry.Jobs()[0])
}

func TestRegistryRejectsDuplicateAndUnnamedJobs(t *testing.T) {
	_, err := NewRegistry(&stubJob{name: "cache-warm"}, &stubJob{name: "cache-warm"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"cache-warm" already registered`)

	var registry Registry
	assert.Error(t, registry.Register(&stubJob{}))
	assert.NoError(t, registry.Register(&stubJob{name: "cache-warm"}))
	assert.Len(t, registry.Jobs(), 1)
}
