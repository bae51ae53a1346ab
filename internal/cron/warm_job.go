package cron

import (
	"context"
	"fmt"

	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/filters"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/sales"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/watchtower"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/logger"
	"go.uber.org/multierr"
)

var warmDimensions = []string{"platform", "brand", "category"}

// WarmJobParams configures the cache warming job.
type WarmJobParams struct {
	Logger     *logger.Logger
	Sales      sales.Service
	Watchtower watchtower.Service
	// Platforms are warmed individually on top of the unfiltered dashboard.
	Platforms []string
}

// NewCacheWarmJob precomputes the default dashboard views so the first
// visitor after a refresh is served from cache.
func NewCacheWarmJob(params WarmJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Sales == nil && params.Watchtower == nil {
		return nil, fmt.Errorf("at least one service required")
	}
	return &cacheWarmJob{
		logg:       params.Logger,
		sales:      params.Sales,
		watchtower: params.Watchtower,
		platforms:  filters.FilterSet{Platform: params.Platforms}.Normalize().Platform,
	}, nil
}

type cacheWarmJob struct {
	logg       *logger.Logger
	sales      sales.Service
	watchtower watchtower.Service
	platforms  []string
}

func (j *cacheWarmJob) Name() string { return "cache-warm" }

func (j *cacheWarmJob) Run(ctx context.Context) error {
	sets := []filters.FilterSet{{}}
	for _, p := range j.platforms {
		sets = append(sets, filters.FilterSet{Platform: []string{p}})
	}

	var errs []error
	warmed := 0
	for _, f := range sets {
		for _, warm := range j.views() {
			if err := warm(ctx, f); err != nil {
				errs = append(errs, err)
				continue
			}
			warmed++
		}
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"warmed": warmed, "failed": len(errs)})
	j.logg.Info(logCtx, "cache warm loop complete")
	return multierr.Combine(errs...)
}

func (j *cacheWarmJob) views() []func(context.Context, filters.FilterSet) error {
	var views []func(context.Context, filters.FilterSet) error
	if j.sales != nil {
		views = append(views,
			func(ctx context.Context, f filters.FilterSet) error {
				_, err := j.sales.Overview(ctx, f)
				return wrapWarm("sales overview", f, err)
			},
			func(ctx context.Context, f filters.FilterSet) error {
				_, err := j.sales.RegionRollup(ctx, f)
				return wrapWarm("sales regions", f, err)
			},
			func(ctx context.Context, f filters.FilterSet) error {
				_, err := j.sales.MonthlyTrend(ctx, f)
				return wrapWarm("sales trend", f, err)
			},
		)
		for _, dim := range warmDimensions {
			views = append(views, func(ctx context.Context, f filters.FilterSet) error {
				_, err := j.sales.Breakdown(ctx, f, dim)
				return wrapWarm("sales breakdown by "+dim, f, err)
			})
		}
	}
	if j.watchtower != nil {
		views = append(views, func(ctx context.Context, f filters.FilterSet) error {
			_, err := j.watchtower.Overview(ctx, f)
			return wrapWarm("watchtower overview", f, err)
		})
		for _, dim := range warmDimensions {
			views = append(views, func(ctx context.Context, f filters.FilterSet) error {
				_, err := j.watchtower.Breakdown(ctx, f, dim)
				return wrapWarm("watchtower breakdown by "+dim, f, err)
			})
		}
	}
	return views
}

func wrapWarm(view string, f filters.FilterSet, err error) error {
	if err == nil {
		return nil
	}
	if len(f.Platform) > 0 {
		return fmt.Errorf("warm %s for %s: %w", view, f.Platform[0], err)
	}
	return fmt.Errorf("warm %s: %w", view, err)
}
