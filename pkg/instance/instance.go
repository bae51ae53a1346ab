package instance

import (
	"os"

	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/env"
)

const defaultID = "worker-0"

// GetID returns the process instance identifier used in logs: the configured
// id, then the host name, then a fixed default.
func GetID() string {
	if id := env.Get("RETAILDASH_INSTANCE_ID", ""); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return defaultID
}
