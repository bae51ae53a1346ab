package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/api/controllers"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/api/middleware"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/api/responses"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/dashboard"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/invalidation"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/sales"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/watchtower"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/config"
	pkgerrors "github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/errors"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/logger"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/metrics"
)

// Params carries everything the API router wires into its handlers.
type Params struct {
	Config       *config.Config
	Logger       *logger.Logger
	Sales        sales.Service
	Watchtower   watchtower.Service
	Dashboard    *dashboard.Service
	Cache        controllers.NamespaceInvalidator
	Invalidation invalidation.Handler
	Readiness    []controllers.ReadinessCheck
	// Gatherer backs /metrics; nil uses the default registry.
	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics
}

func NewRouter(p Params) http.Handler {
	cfg, logg := p.Config, p.Logger
	gatherer := p.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(p.HTTPMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		responses.WriteError(r.Context(), logg, w, pkgerrors.Newf(pkgerrors.CodeNotFound, "no route for %s %s", r.Method, r.URL.Path))
	})

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.Readiness...))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/sales", func(r chi.Router) {
			r.Get("/overview", controllers.SalesOverview(p.Sales, logg))
			r.Get("/breakdown/{dimension}", controllers.SalesBreakdown(p.Sales, logg))
			r.Get("/regions", controllers.SalesRegions(p.Sales, logg))
			r.Get("/trend", controllers.SalesTrend(p.Sales, logg))
		})
		r.Route("/watchtower", func(r chi.Router) {
			r.Get("/overview", controllers.WatchtowerOverview(p.Watchtower, logg))
			r.Get("/breakdown/{dimension}", controllers.WatchtowerBreakdown(p.Watchtower, logg))
		})
		r.Get("/dashboard/summary", controllers.DashboardSummary(p.Dashboard, logg))
		r.Post("/admin/cache/invalidate", controllers.CacheInvalidate(p.Cache, p.Invalidation, logg))
	})

	return r
}
