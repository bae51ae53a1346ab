// Package derive turns backend aggregate rows into dashboard KPIs: windowed
// sums, comparisons, growth percentages, daily trends and region roll-ups.
package derive

import (
	"sort"
	"time"

	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/period"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/types"
	"github.com/shopspring/decimal"
)

// UnknownRegion labels locations the lookup cannot place.
const UnknownRegion = "Unknown"

// RegionLookup resolves a location to its region.
type RegionLookup interface {
	Region(location string) (string, bool)
}

// Sum adds every row whose bucket falls inside w. Addition is exact so that
// group totals reconcile with the overall total.
func Sum(rows []types.AggregateRow, w period.Window) float64 {
	return sumDecimal(rows, w).InexactFloat64()
}

func sumDecimal(rows []types.AggregateRow, w period.Window) decimal.Decimal {
	total := decimal.Zero
	if w.IsZero() {
		return total
	}
	for _, r := range rows {
		if w.Contains(r.PeriodBucket.Time) {
			total = total.Add(decimal.NewFromFloat(r.SumMetric))
		}
	}
	return total
}

// Total adds every row regardless of its bucket.
func Total(rows []types.AggregateRow) float64 {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(decimal.NewFromFloat(r.SumMetric))
	}
	return total.InexactFloat64()
}

// Derive computes the value over current, its comparison when a comparison
// window is given, and a zero-filled daily trend across current.
func Derive(rows []types.AggregateRow, current period.Window, comparison *period.Window) types.DerivedMetric {
	out := types.DerivedMetric{
		Value: Sum(rows, current),
		Trend: DailyTrend(rows, current),
	}
	if comparison != nil {
		cv := Sum(rows, *comparison)
		out.ComparisonValue = &cv
		out.DeltaPercent = period.DeltaPercent(out.Value, &cv)
	}
	return out
}

// DailyTrend returns one point per day of w, zero where no row falls.
func DailyTrend(rows []types.AggregateRow, w period.Window) []types.TrendPoint {
	points := make([]types.TrendPoint, 0, w.Days())
	if w.IsZero() {
		return points
	}
	byDay := make(map[time.Time]decimal.Decimal)
	for _, r := range rows {
		if w.Contains(r.PeriodBucket.Time) {
			key := types.NewDay(r.PeriodBucket.Time).Time
			byDay[key] = byDay[key].Add(decimal.NewFromFloat(r.SumMetric))
		}
	}
	w.EachDay(func(d time.Time) {
		points = append(points, types.TrendPoint{Date: types.NewDay(d), Value: byDay[d].InexactFloat64()})
	})
	return points
}

// DeriveGroups computes per-group metrics over the current and comparison
// windows plus the standard MTD/YTD/last-year windows. Groups without a
// non-zero value in any window are left out. Results are ordered by value
// descending, then key.
func DeriveGroups(rows []types.AggregateRow, windows period.Windows, current period.Window, comparison *period.Window) []types.GroupMetric {
	grouped := make(map[string][]types.AggregateRow)
	for _, r := range rows {
		grouped[r.GroupKey] = append(grouped[r.GroupKey], r)
	}

	out := make([]types.GroupMetric, 0, len(grouped))
	for key, groupRows := range grouped {
		g := types.GroupMetric{
			Key:      key,
			Value:    Sum(groupRows, current),
			MTD:      Sum(groupRows, windows.MTD),
			PrevMTD:  Sum(groupRows, windows.PrevMonthMTD),
			YTD:      Sum(groupRows, windows.YTD),
			LastYear: Sum(groupRows, windows.LastYearSameWindow),
		}
		signal := g.Value != 0 || g.MTD != 0 || g.PrevMTD != 0 || g.YTD != 0 || g.LastYear != 0
		if comparison != nil {
			cv := Sum(groupRows, *comparison)
			g.ComparisonValue = &cv
			g.DeltaPercent = period.DeltaPercent(g.Value, &cv)
			signal = signal || cv != 0
		}
		if !signal {
			continue
		}
		g.MTDDeltaPercent = period.DeltaPercent(g.MTD, &g.PrevMTD)
		g.YoYPercent = period.DeltaPercent(g.MTD, &g.LastYear)
		out = append(out, g)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// Rollup remaps each row's location key to its region and merges rows that
// land on the same region and bucket. Unmapped locations go to UnknownRegion.
func Rollup(rows []types.AggregateRow, lookup RegionLookup) []types.AggregateRow {
	type bucketKey struct {
		region string
		day    time.Time
	}
	sums := make(map[bucketKey]decimal.Decimal)
	counts := make(map[bucketKey]int64)
	order := make([]bucketKey, 0)

	for _, r := range rows {
		region := UnknownRegion
		if lookup != nil {
			if got, ok := lookup.Region(r.GroupKey); ok && got != "" {
				region = got
			}
		}
		k := bucketKey{region: region, day: types.NewDay(r.PeriodBucket.Time).Time}
		if _, seen := sums[k]; !seen {
			order = append(order, k)
		}
		sums[k] = sums[k].Add(decimal.NewFromFloat(r.SumMetric))
		counts[k] += r.Count
	}

	out := make([]types.AggregateRow, 0, len(order))
	for _, k := range order {
		out = append(out, types.AggregateRow{
			GroupKey:     k.region,
			PeriodBucket: types.NewDay(k.day),
			SumMetric:    sums[k].InexactFloat64(),
			Count:        counts[k],
		})
	}
	return out
}

// MonthlyTrend sums rows into the given month buckets (first day of each
// month); every bucket yields a point.
func MonthlyTrend(rows []types.AggregateRow, buckets []time.Time) []types.TrendPoint {
	byMonth := make(map[time.Time]decimal.Decimal, len(buckets))
	for _, r := range rows {
		if r.PeriodBucket.IsZero() {
			continue
		}
		m := period.MonthStart(r.PeriodBucket.Time)
		byMonth[m] = byMonth[m].Add(decimal.NewFromFloat(r.SumMetric))
	}
	points := make([]types.TrendPoint, 0, len(buckets))
	for _, b := range buckets {
		m := period.MonthStart(b)
		points = append(points, types.TrendPoint{Date: types.NewDay(m), Value: byMonth[m].InexactFloat64()})
	}
	return points
}

// Ratio returns numerator/denominator*100, or nil when the denominator is zero.
func Ratio(numerator, denominator float64) *float64 {
	if denominator == 0 {
		return nil
	}
	v := decimal.NewFromFloat(numerator).Div(decimal.NewFromFloat(denominator)).Mul(decimal.NewFromInt(100)).InexactFloat64()
	return &v
}
