package instance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetIDPrefersConfiguredValue(t *testing.T) {
	t.Setenv("RETAILDASH_INSTANCE_ID", "cron-worker-2")
	assert.Equal(t, "cron-worker-2", GetID())
}

func TestGetIDFallsBack(t *testing.T) {
	t.Setenv("RETAILDASH_INSTANCE_ID", "")
	assert.NotEmpty(t, GetID())
}
