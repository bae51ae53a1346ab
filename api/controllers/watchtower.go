package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/api/responses"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/api/validators"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/dashboard"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/watchtower"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/logger"
)

func WatchtowerOverview(service watchtower.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		f, err := validators.DecodeFilters(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := service.Overview(ctx, f)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func WatchtowerBreakdown(service watchtower.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		f, err := validators.DecodeFilters(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := service.Breakdown(ctx, f, chi.URLParam(r, "dimension"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// DashboardSummary returns both overview sections; a failed section is null
// and listed under errors while the response stays 200.
func DashboardSummary(service *dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		f, err := validators.DecodeFilters(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := service.Summary(ctx, f)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
