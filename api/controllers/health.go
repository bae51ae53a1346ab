package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/api/responses"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/config"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/logger"
)

const readinessTimeout = 3 * time.Second

const (
	statusReady       = "ready"
	statusDegraded    = "degraded"
	statusUnavailable = "unavailable"
)

// Pinger is any dependency that can report its connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadinessCheck names a dependency probed by /health/ready. An Optional
// check failing degrades readiness instead of failing it.
type ReadinessCheck struct {
	Name     string
	Pinger   Pinger
	Optional bool
}

// ReadinessReport is the body of /health/ready.
type ReadinessReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RetailDash-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, checks ...ReadinessCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RetailDash-Env", cfg.App.Env)
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		report := ReadinessReport{Status: statusReady, Checks: make(map[string]string, len(checks))}
		for _, check := range checks {
			if check.Pinger == nil {
				report.Checks[check.Name] = "disabled"
				continue
			}
			if err := check.Pinger.Ping(ctx); err != nil {
				report.Checks[check.Name] = "error"
				if logg != nil {
					logg.Warn(logg.WithFields(ctx, map[string]any{"check": check.Name, "error": err.Error()}), "readiness check failed")
				}
				if !check.Optional {
					report.Status = statusUnavailable
				} else if report.Status == statusReady {
					report.Status = statusDegraded
				}
				continue
			}
			report.Checks[check.Name] = "ok"
		}

		status := http.StatusOK
		if report.Status == statusUnavailable {
			status = http.StatusServiceUnavailable
		}
		responses.WriteSuccessStatus(w, status, report)
	}
}
