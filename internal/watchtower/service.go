// Package watchtower serves the platform health KPIs computed on the column
// store: offtake, availability and share of search.
package watchtower

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
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/warehouse"
	pkgerrors "github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/errors"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/types"
)

const (
	Dataset            = "watchtower"
	NamespaceOverview  = "watchtower.overview"
	NamespaceBreakdown = "watchtower.breakdown"
)

// Measure names and their column expressions on the platform table.
const (
	measureOfftake             = "offtake"
	measureAvailable           = "available"
	measureListed              = "listed"
	measureBrandImpressions    = "brand_impressions"
	measureCategoryImpressions = "category_impressions"
)

var overviewMeasures = []warehouse.Measure{
	{Name: measureOfftake, Expr: "offtake"},
	{Name: measureAvailable, Expr: "available_count"},
	{Name: measureListed, Expr: "listed_count"},
	{Name: measureBrandImpressions, Expr: "brand_impressions"},
	{Name: measureCategoryImpressions, Expr: "category_impressions"},
}

// Overview is the watch-tower KPI card set. Availability and share of search
// are percentages.
type Overview struct {
	Offtake       types.DerivedMetric `json:"offtake"`
	Availability  types.DerivedMetric `json:"availability"`
	ShareOfSearch types.DerivedMetric `json:"shareOfSearch"`
}

// Service provides watch-tower KPIs.
type Service interface {
	Overview(ctx context.Context, f filters.FilterSet) (*Overview, error)
	Breakdown(ctx context.Context, f filters.FilterSet, dimension string) ([]types.GroupMetric, error)
}

type ServiceParams struct {
	Warehouse warehouse.Querier
	Regions   locations.Resolver
	Cache     *cache.Cache
	TTL       time.Duration
	Now       func() time.Time
}

type service struct {
	warehouse warehouse.Querier
	regions   locations.Resolver
	cache     *cache.Cache
	ttl       time.Duration
	now       func() time.Time
}

// NewService builds a watch-tower service over a column-store querier.
func NewService(params ServiceParams) (Service, error) {
	if params.Warehouse == nil {
		return nil, fmt.Errorf("warehouse querier required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		warehouse: params.Warehouse,
		regions:   params.Regions,
		cache:     params.Cache,
		ttl:       params.TTL,
		now:       now,
	}, nil
}

func (s *service) Overview(ctx context.Context, f filters.FilterSet) (*Overview, error) {
	f = f.Normalize()
	windows := period.ComputeWindows(f.AsOf(s.now()))
	key := cachekey.EncodeAsOf(NamespaceOverview, f, windows.AsOf, nil)

	return cache.GetOrCompute(ctx, s.cache, key, s.ttl, func(ctx context.Context) (*Overview, error) {
		current := period.Current(f.StartDate, f.EndDate, windows)
		comparison := period.ComparisonFor(current, f.CompareStartDate, f.CompareEndDate)
		span := period.Span(current, comparison)

		res, err := s.aggregate(ctx, warehouse.Query{
			Measures: overviewMeasures,
			Filter:   f.WithRange(span.Start, span.End),
		})
		if err != nil {
			return nil, err
		}
		return &Overview{
			Offtake:       derive.Derive(res[measureOfftake], current, &comparison),
			Availability:  ratioMetric(res[measureAvailable], res[measureListed], current, comparison),
			ShareOfSearch: ratioMetric(res[measureBrandImpressions], res[measureCategoryImpressions], current, comparison),
		}, nil
	})
}

func (s *service) Breakdown(ctx context.Context, f filters.FilterSet, dimension string) ([]types.GroupMetric, error) {
	if _, ok := predicate.PlatformColumns.Column(dimension); !ok {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unsupported dimension %q", dimension)
	}
	f = f.Normalize()
	windows := period.ComputeWindows(f.AsOf(s.now()))
	key := cachekey.EncodeAsOf(NamespaceBreakdown, f, windows.AsOf, map[string]string{"dimension": dimension})

	return cache.GetOrCompute(ctx, s.cache, key, s.ttl, func(ctx context.Context) ([]types.GroupMetric, error) {
		current := period.Current(f.StartDate, f.EndDate, windows)
		comparison := period.ComparisonFor(current, f.CompareStartDate, f.CompareEndDate)
		span := period.Span(current, comparison, windows.YTD, windows.PrevMonthMTD, windows.LastYearSameWindow)

		res, err := s.aggregate(ctx, warehouse.Query{
			Measures: overviewMeasures[:1],
			GroupBy:  dimension,
			Filter:   f.WithRange(span.Start, span.End),
		})
		if err != nil {
			return nil, err
		}
		return derive.DeriveGroups(res[measureOfftake], windows, current, &comparison), nil
	})
}

func (s *service) aggregate(ctx context.Context, q warehouse.Query) (warehouse.Result, error) {
	scoped, ok, err := locations.Scope(ctx, s.regions, q.Filter)
	if err != nil {
		return nil, pkgerrors.Dependency(err, "resolving region filter")
	}
	if !ok {
		empty := make(warehouse.Result, len(q.Measures))
		for _, m := range q.Measures {
			empty[m.Name] = []types.AggregateRow{}
		}
		return empty, nil
	}
	q.Filter = scoped
	return s.warehouse.Aggregate(ctx, q)
}

// ratioMetric derives numerator/denominator*100 for the current and
// comparison windows and per day of the current window. A zero denominator
// gives 0 for the value and trend and a null comparison.
func ratioMetric(numerator, denominator []types.AggregateRow, current, comparison period.Window) types.DerivedMetric {
	out := types.DerivedMetric{
		Value:           valueOrZero(derive.Ratio(derive.Sum(numerator, current), derive.Sum(denominator, current))),
		ComparisonValue: derive.Ratio(derive.Sum(numerator, comparison), derive.Sum(denominator, comparison)),
	}
	out.DeltaPercent = period.DeltaPercent(out.Value, out.ComparisonValue)

	num := derive.DailyTrend(numerator, current)
	den := derive.DailyTrend(denominator, current)
	out.Trend = make([]types.TrendPoint, len(num))
	for i := range num {
		out.Trend[i] = types.TrendPoint{Date: num[i].Date, Value: valueOrZero(derive.Ratio(num[i].Value, den[i].Value))}
	}
	return out
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
