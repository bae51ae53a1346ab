package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/api/responses"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/api/validators"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/sales"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/logger"
)

func SalesOverview(service sales.Service, logg *logger.Logger) http.HandlerFunc {
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

// SalesBreakdown serves one metric row per value of the {dimension} path parameter.
func SalesBreakdown(service sales.Service, logg *logger.Logger) http.HandlerFunc {
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

func SalesRegions(service sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		f, err := validators.DecodeFilters(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := service.RegionRollup(ctx, f)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func SalesTrend(service sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		f, err := validators.DecodeFilters(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := service.MonthlyTrend(ctx, f)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
