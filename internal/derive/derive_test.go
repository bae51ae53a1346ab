package derive

import (
	"testing"
	"time"

	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/period"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) types.Day {
	return types.NewDay(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func row(key string, bucket types.Day, v float64) types.AggregateRow {
	return types.AggregateRow{GroupKey: key, PeriodBucket: bucket, SumMetric: v, Count: 1}
}

type staticLookup map[string]string

func (s staticLookup) Region(location string) (string, bool) {
	r, ok := s[location]
	return r, ok
}

func TestDeriveWithComparison(t *testing.T) {
	rows := []types.AggregateRow{
		row("", day(2025, 10, 1), 200),
		row("", day(2025, 10, 3), 250),
		row("", day(2025, 9, 2), 300),
	}
	current := period.NewWindow(day(2025, 10, 1).Time, day(2025, 10, 6).Time)
	comparison := period.ComparisonFor(current, time.Time{}, time.Time{})

	got := Derive(rows, current, &comparison)

	assert.Equal(t, 450.0, got.Value)
	require.NotNil(t, got.ComparisonValue)
	assert.Equal(t, 300.0, *got.ComparisonValue)
	require.NotNil(t, got.DeltaPercent)
	assert.InDelta(t, 50.0, *got.DeltaPercent, 1e-9)

	require.Len(t, got.Trend, 6)
	assert.Equal(t, types.TrendPoint{Date: day(2025, 10, 1), Value: 200}, got.Trend[0])
	assert.Equal(t, types.TrendPoint{Date: day(2025, 10, 2), Value: 0}, got.Trend[1])
	assert.Equal(t, 250.0, got.Trend[2].Value)
}

func TestDeriveEmptyRows(t *testing.T) {
	current := period.NewWindow(day(2025, 10, 1).Time, day(2025, 10, 2).Time)
	comparison := current.Shift(0, -1)

	got := Derive(nil, current, &comparison)

	assert.Zero(t, got.Value)
	require.NotNil(t, got.ComparisonValue)
	assert.Zero(t, *got.ComparisonValue)
	assert.Nil(t, got.DeltaPercent)
	assert.Len(t, got.Trend, 2)

	noCompare := Derive(nil, current, nil)
	assert.Nil(t, noCompare.ComparisonValue)
	assert.Nil(t, noCompare.DeltaPercent)
}

func TestSumIsExact(t *testing.T) {
	w := period.NewWindow(day(2025, 1, 1).Time, day(2025, 1, 31).Time)
	rows := []types.AggregateRow{row("a", day(2025, 1, 1), 0.1), row("b", day(2025, 1, 2), 0.2)}
	assert.Equal(t, 0.3, Sum(rows, w))
	assert.Zero(t, Sum(rows, period.Window{}))
	assert.Equal(t, 0.3, Total(rows))
}

func TestDeriveGroups(t *testing.T) {
	asOf := day(2025, 10, 6).Time
	windows := period.ComputeWindows(asOf)
	current := windows.MTD
	comparison := period.ComparisonFor(current, time.Time{}, time.Time{})

	rows := []types.AggregateRow{
		row("zepto", day(2025, 10, 2), 300),
		row("zepto", day(2025, 9, 2), 200),
		row("zepto", day(2024, 10, 2), 150),
		row("blinkit", day(2025, 10, 5), 300),
		row("swiggy", day(2025, 2, 1), 40),
		row("amazon", day(2025, 10, 2), 0),
	}

	got := DeriveGroups(rows, windows, current, &comparison)

	require.Len(t, got, 3, "a group with no value in any window is dropped")
	assert.Equal(t, "blinkit", got[0].Key, "ties on value break by key")
	assert.Equal(t, "zepto", got[1].Key)
	assert.Equal(t, "swiggy", got[2].Key)

	zepto := got[1]
	assert.Equal(t, 300.0, zepto.Value)
	assert.Equal(t, 300.0, zepto.MTD)
	assert.Equal(t, 200.0, zepto.PrevMTD)
	assert.Equal(t, 500.0, zepto.YTD)
	assert.Equal(t, 150.0, zepto.LastYear)
	require.NotNil(t, zepto.DeltaPercent)
	assert.InDelta(t, 50.0, *zepto.DeltaPercent, 1e-9)
	require.NotNil(t, zepto.YoYPercent)
	assert.InDelta(t, 100.0, *zepto.YoYPercent, 1e-9)

	blinkit := got[0]
	require.NotNil(t, blinkit.ComparisonValue)
	assert.Zero(t, *blinkit.ComparisonValue)
	assert.Nil(t, blinkit.DeltaPercent)
	assert.Nil(t, blinkit.MTDDeltaPercent)
}

func TestGroupsReconcileWithOverall(t *testing.T) {
	windows := period.ComputeWindows(day(2025, 10, 31).Time)
	var rows []types.AggregateRow
	keys := []string{"delhi", "mumbai", "pune", "goa"}
	for i := 1; i <= 31; i++ {
		rows = append(rows, row(keys[i%len(keys)], day(2025, 10, i), float64(i)*0.1+0.07))
	}

	groups := DeriveGroups(rows, windows, windows.MTD, nil)
	total := decimal.Zero
	for _, g := range groups {
		total = total.Add(decimal.NewFromFloat(g.Value))
	}

	assert.True(t, total.Equal(decimal.NewFromFloat(Sum(rows, windows.MTD))), "group values sum to %s", total)
}

func TestRollup(t *testing.T) {
	lookup := staticLookup{"delhi": "North", "gurgaon": "North", "mumbai": "West"}
	rows := []types.AggregateRow{
		row("delhi", day(2025, 10, 1), 10),
		row("gurgaon", day(2025, 10, 1), 5),
		row("mumbai", day(2025, 10, 1), 7),
		row("atlantis", day(2025, 10, 1), 1),
		row("delhi", day(2025, 10, 2), 3),
	}

	got := Rollup(rows, lookup)

	require.Len(t, got, 4)
	assert.Equal(t, types.AggregateRow{GroupKey: "North", PeriodBucket: day(2025, 10, 1), SumMetric: 15, Count: 2}, got[0])
	assert.Equal(t, "West", got[1].GroupKey)
	assert.Equal(t, UnknownRegion, got[2].GroupKey)
	assert.Equal(t, types.AggregateRow{GroupKey: "North", PeriodBucket: day(2025, 10, 2), SumMetric: 3, Count: 1}, got[3])
	assert.Equal(t, Total(rows), Total(got))

	unknown := Rollup(rows[:1], nil)
	assert.Equal(t, UnknownRegion, unknown[0].GroupKey)
}

func TestMonthlyTrend(t *testing.T) {
	buckets := period.MonthBuckets(day(2025, 10, 6).Time, 3)
	rows := []types.AggregateRow{
		row("", day(2025, 8, 31), 1),
		row("", day(2025, 8, 1), 2),
		row("", day(2025, 10, 6), 4),
		row("", day(2025, 6, 1), 100),
	}

	got := MonthlyTrend(rows, buckets)

	assert.Equal(t, []types.TrendPoint{
		{Date: day(2025, 8, 1), Value: 3},
		{Date: day(2025, 9, 1), Value: 0},
		{Date: day(2025, 10, 1), Value: 4},
	}, got)
}

func TestRatio(t *testing.T) {
	got := Ratio(45, 50)
	require.NotNil(t, got)
	assert.Equal(t, 90.0, *got)
	assert.Nil(t, Ratio(1, 0))
}
