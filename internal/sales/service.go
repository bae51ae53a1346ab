// Package sales serves the row-store sales KPIs: overview, drill-down
// breakdowns, region roll-up and monthly trend.
package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/cache"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/cachekey"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/derive"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/filters"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/locations"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/period"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/predicate"
	pkgerrors "github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/errors"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/types"
)

// Cache namespaces. Dataset invalidation clears all of them via "sales.*".
const (
	Dataset            = "sales"
	NamespaceOverview  = "sales.overview"
	NamespaceBreakdown = "sales.breakdown"
	NamespaceRegions   = "sales.regions"
	NamespaceTrend     = "sales.trend"

	DefaultTrendMonths = 6
	MaxTrendMonths     = 36
)

// Overview is the sales KPI card set. Pointer fields are null when there is
// no usable baseline.
type Overview struct {
	OverallSales        float64            `json:"overallSales"`
	ComparisonSales     *float64           `json:"comparisonSales"`
	ChangePercentage    *float64           `json:"changePercentage"`
	MTDSales            float64            `json:"mtdSales"`
	PrevMTDSales        float64            `json:"prevMtdSales"`
	MTDChangePercentage *float64           `json:"mtdChangePercentage"`
	YTDSales            float64            `json:"ytdSales"`
	LastYearMTDSales    float64            `json:"lastYearMtdSales"`
	YoYPercentage       *float64           `json:"yoyPercentage"`
	DRR                 float64            `json:"drr"`
	ProjectedSales      float64            `json:"projectedSales"`
	LastYearMonthSales  float64            `json:"lastYearMonthSales"`
	Trend               []types.TrendPoint `json:"trend"`
}

// TTLs per operation; zero falls back to the cache default.
type TTLs struct {
	Overview  time.Duration
	Breakdown time.Duration
	Trend     time.Duration
}

// Service provides sales KPIs for the dashboard.
type Service interface {
	Overview(ctx context.Context, f filters.FilterSet) (*Overview, error)
	Breakdown(ctx context.Context, f filters.FilterSet, dimension string) ([]types.GroupMetric, error)
	RegionRollup(ctx context.Context, f filters.FilterSet) ([]types.GroupMetric, error)
	MonthlyTrend(ctx context.Context, f filters.FilterSet) ([]types.TrendPoint, error)
}

// ServiceParams wires a sales service.
type ServiceParams struct {
	Repo    Repository
	Regions locations.Resolver
	Cache   *cache.Cache
	TTLs    TTLs
	Now     func() time.Time
}

type service struct {
	repo    Repository
	regions locations.Resolver
	cache   *cache.Cache
	ttls    TTLs
	now     func() time.Time
}

// NewService builds a sales service. A nil cache computes every request.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:    params.Repo,
		regions: params.Regions,
		cache:   params.Cache,
		ttls:    params.TTLs,
		now:     now,
	}, nil
}

func (s *service) Overview(ctx context.Context, f filters.FilterSet) (*Overview, error) {
	f = f.Normalize()
	windows := period.ComputeWindows(f.AsOf(s.now()))
	key := cachekey.EncodeAsOf(NamespaceOverview, f, windows.AsOf, nil)

	return cache.GetOrCompute(ctx, s.cache, key, s.ttls.Overview, func(ctx context.Context) (*Overview, error) {
		current := period.Current(f.StartDate, f.EndDate, windows)
		comparison := period.ComparisonFor(current, f.CompareStartDate, f.CompareEndDate)

		span := period.Span(current, comparison, windows.YTD, windows.PrevMonthMTD, windows.LastYearSameWindow, windows.LastYearFull)
		rows, err := s.fetch(ctx, f.WithRange(span.Start, span.End), "")
		if err != nil {
			return nil, err
		}
		return buildOverview(rows, windows, current, comparison), nil
	})
}

func buildOverview(rows []types.AggregateRow, windows period.Windows, current, comparison period.Window) *Overview {
	headline := derive.Derive(rows, current, &comparison)
	out := &Overview{
		OverallSales:       headline.Value,
		ComparisonSales:    headline.ComparisonValue,
		ChangePercentage:   headline.DeltaPercent,
		MTDSales:           derive.Sum(rows, windows.MTD),
		PrevMTDSales:       derive.Sum(rows, windows.PrevMonthMTD),
		YTDSales:           derive.Sum(rows, windows.YTD),
		LastYearMTDSales:   derive.Sum(rows, windows.LastYearSameWindow),
		LastYearMonthSales: derive.Sum(rows, windows.LastYearFull),
		Trend:              headline.Trend,
	}
	out.MTDChangePercentage = period.DeltaPercent(out.MTDSales, &out.PrevMTDSales)
	out.YoYPercentage = period.DeltaPercent(out.MTDSales, &out.LastYearMTDSales)
	out.DRR = period.DRR(out.MTDSales, windows.MTD.Start, windows.MTD.End)
	out.ProjectedSales = period.Projected(out.DRR, period.DaysInMonth(windows.AsOf))
	return out
}

func (s *service) Breakdown(ctx context.Context, f filters.FilterSet, dimension string) ([]types.GroupMetric, error) {
	if _, ok := predicate.SalesColumns.Column(dimension); !ok {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unsupported dimension %q", dimension)
	}
	f = f.Normalize()
	windows := period.ComputeWindows(f.AsOf(s.now()))
	key := cachekey.EncodeAsOf(NamespaceBreakdown, f, windows.AsOf, map[string]string{"dimension": dimension})

	return cache.GetOrCompute(ctx, s.cache, key, s.ttls.Breakdown, func(ctx context.Context) ([]types.GroupMetric, error) {
		return s.groups(ctx, f, windows, dimension, nil)
	})
}

func (s *service) RegionRollup(ctx context.Context, f filters.FilterSet) ([]types.GroupMetric, error) {
	f = f.Normalize()
	windows := period.ComputeWindows(f.AsOf(s.now()))
	key := cachekey.EncodeAsOf(NamespaceRegions, f, windows.AsOf, nil)

	return cache.GetOrCompute(ctx, s.cache, key, s.ttls.Breakdown, func(ctx context.Context) ([]types.GroupMetric, error) {
		table := locations.NewTable(nil)
		if s.regions != nil {
			var err error
			if table, err = s.regions.Snapshot(ctx); err != nil {
				return nil, pkgerrors.Dependency(err, "loading location regions")
			}
		}
		return s.groups(ctx, f, windows, "location", func(rows []types.AggregateRow) []types.AggregateRow {
			return derive.Rollup(rows, table)
		})
	})
}

func (s *service) groups(ctx context.Context, f filters.FilterSet, windows period.Windows, dimension string, remap func([]types.AggregateRow) []types.AggregateRow) ([]types.GroupMetric, error) {
	current := period.Current(f.StartDate, f.EndDate, windows)
	comparison := period.ComparisonFor(current, f.CompareStartDate, f.CompareEndDate)
	span := period.Span(current, comparison, windows.YTD, windows.PrevMonthMTD, windows.LastYearSameWindow)

	rows, err := s.fetch(ctx, f.WithRange(span.Start, span.End), dimension)
	if err != nil {
		return nil, err
	}
	if remap != nil {
		rows = remap(rows)
	}
	return derive.DeriveGroups(rows, windows, current, &comparison), nil
}

func (s *service) MonthlyTrend(ctx context.Context, f filters.FilterSet) ([]types.TrendPoint, error) {
	f = f.Normalize()
	switch {
	case f.Months <= 0:
		f.Months = DefaultTrendMonths
	case f.Months > MaxTrendMonths:
		f.Months = MaxTrendMonths
	}
	windows := period.ComputeWindows(f.AsOf(s.now()))
	key := cachekey.EncodeAsOf(NamespaceTrend, f, windows.AsOf, nil)

	return cache.GetOrCompute(ctx, s.cache, key, s.ttls.Trend, func(ctx context.Context) ([]types.TrendPoint, error) {
		buckets := period.MonthBuckets(windows.AsOf, f.Months)
		rows, err := s.fetch(ctx, f.WithRange(buckets[0], windows.AsOf), "")
		if err != nil {
			return nil, err
		}
		return derive.MonthlyTrend(rows, buckets), nil
	})
}

// fetch resolves regions and queries the repository; a region filter that
// matches no location yields no rows without touching the row store.
func (s *service) fetch(ctx context.Context, f filters.FilterSet, dimension string) ([]types.AggregateRow, error) {
	scoped, ok, err := locations.Scope(ctx, s.regions, f)
	if err != nil {
		return nil, pkgerrors.Dependency(err, "resolving region filter")
	}
	if !ok {
		return []types.AggregateRow{}, nil
	}
	return s.repo.Aggregate(ctx, scoped, dimension)
}
