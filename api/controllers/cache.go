package controllers

import (
	"context"
	"net/http"

	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/api/responses"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/api/validators"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/invalidation"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/logger"
)

// NamespaceInvalidator drops every entry of one cache namespace.
type NamespaceInvalidator interface {
	Invalidate(ctx context.Context, namespace string) int64
}

// CacheInvalidateBody selects either a single namespace or a whole dataset.
type CacheInvalidateBody struct {
	Namespace string `json:"namespace" validate:"required_without=Dataset,excluded_with=Dataset,omitempty,oneof=sales.overview sales.breakdown sales.regions sales.trend watchtower.overview watchtower.breakdown"`
	Dataset   string `json:"dataset" validate:"omitempty,oneof=sales watchtower all"`
}

// CacheInvalidateResponse reports the number of removed entries.
type CacheInvalidateResponse struct {
	Deleted int64            `json:"deleted"`
	ByScope map[string]int64 `json:"byScope"`
}

func CacheInvalidate(cache NamespaceInvalidator, datasets invalidation.Handler, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var body CacheInvalidateBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if body.Namespace != "" {
			deleted := cache.Invalidate(ctx, body.Namespace)
			responses.WriteSuccess(w, CacheInvalidateResponse{
				Deleted: deleted,
				ByScope: map[string]int64{body.Namespace: deleted},
			})
			return
		}

		res, err := datasets.Handle(ctx, invalidation.Message{Dataset: body.Dataset})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, CacheInvalidateResponse{Deleted: res.Total(), ByScope: res.Deleted})
	}
}
