// Package period holds calendar window math for the dashboard KPIs: MTD, YTD,
// last-year comparisons, daily run rate and month-end projection.
package period

import (
	"time"

	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/types"
)

// Window is an inclusive interval of civil dates stored as UTC midnights.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewWindow truncates both ends to their calendar day.
func NewWindow(start, end time.Time) Window {
	return Window{Start: day(start), End: day(end)}
}

// IsZero reports whether the window is unset.
func (w Window) IsZero() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

// Days is the inclusive number of days in the window; an inverted window has none.
func (w Window) Days() int {
	if w.End.Before(w.Start) {
		return 0
	}
	return int((w.End.Unix()-w.Start.Unix())/secondsPerDay) + 1
}

// secondsPerDay is exact for UTC midnights; Duration arithmetic would
// saturate on windows longer than about 292 years.
const secondsPerDay = 24 * 60 * 60

// Contains reports whether t falls on a day inside the window.
func (w Window) Contains(t time.Time) bool {
	d := day(t)
	return !d.Before(w.Start) && !d.After(w.End)
}

// Shift moves both ends by whole years and months, clipping to month end
// (Mar 31 shifted one month back is Feb 28/29).
func (w Window) Shift(years, months int) Window {
	return Window{Start: AddMonths(w.Start, years*12+months), End: AddMonths(w.End, years*12+months)}
}

// EachDay calls fn for every day in the window, in order.
func (w Window) EachDay(fn func(time.Time)) {
	for d := w.Start; !d.After(w.End); d = d.AddDate(0, 0, 1) {
		fn(d)
	}
}

// Windows are the standard comparison windows derived from one reference day.
type Windows struct {
	AsOf               time.Time `json:"asOf"`
	MTD                Window    `json:"mtd"`
	PrevMonthMTD       Window    `json:"prevMonthMtd"`
	YTD                Window    `json:"ytd"`
	LastYearSameWindow Window    `json:"lastYearSameWindow"`
	LastYearFull       Window    `json:"lastYearFull"`
}

// ComputeWindows derives every standard window for asOf.
func ComputeWindows(asOf time.Time) Windows {
	asOf = day(asOf)
	monthStart := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, time.UTC)
	mtd := Window{Start: monthStart, End: asOf}

	lastYearMonth := AddMonths(monthStart, -12)
	return Windows{
		AsOf:               asOf,
		MTD:                mtd,
		PrevMonthMTD:       mtd.Shift(0, -1),
		YTD:                Window{Start: time.Date(asOf.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), End: asOf},
		LastYearSameWindow: mtd.Shift(-1, 0),
		LastYearFull:       Window{Start: lastYearMonth, End: lastYearMonth.AddDate(0, 1, -1)},
	}
}

// Current resolves the requested range against the standard windows: both
// ends as given, a missing end runs to AsOf, a missing start begins at the end
// day's month start, and no range at all means month to date.
func Current(start, end time.Time, w Windows) Window {
	switch {
	case !start.IsZero() && !end.IsZero():
		return NewWindow(start, end)
	case !start.IsZero():
		return NewWindow(start, w.AsOf)
	case !end.IsZero():
		return NewWindow(MonthStart(end), end)
	default:
		return w.MTD
	}
}

// Span is the smallest window covering every given window.
func Span(windows ...Window) Window {
	var out Window
	for _, w := range windows {
		if w.IsZero() {
			continue
		}
		if out.IsZero() || w.Start.Before(out.Start) {
			out.Start = w.Start
		}
		if out.End.IsZero() || w.End.After(out.End) {
			out.End = w.End
		}
	}
	return out
}

// DRR is the daily run rate of value over the inclusive [start, end] days. The
// divisor never drops below one day.
func DRR(value float64, start, end time.Time) float64 {
	days := NewWindow(start, end).Days()
	if days < 1 {
		days = 1
	}
	return value / float64(days)
}

// Projected extrapolates a daily run rate linearly over a month.
func Projected(drr float64, daysInMonth int) float64 {
	return drr * float64(daysInMonth)
}

// DaysInMonth returns the number of days in t's calendar month.
func DaysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DeltaPercent is (current - baseline) / baseline * 100, or nil when there is
// no usable baseline.
func DeltaPercent(current float64, baseline *float64) *float64 {
	if baseline == nil || *baseline == 0 {
		return nil
	}
	v := (current - *baseline) / *baseline * 100
	return &v
}

// ComparisonFor picks the baseline window for current: the explicit compare
// range when both ends are given, otherwise current shifted one month back.
func ComparisonFor(current Window, compareStart, compareEnd time.Time) Window {
	if !compareStart.IsZero() && !compareEnd.IsZero() {
		return NewWindow(compareStart, compareEnd)
	}
	return current.Shift(0, -1)
}

// MonthBuckets returns the first day of the trailing months ending with asOf's
// month, oldest first.
func MonthBuckets(asOf time.Time, months int) []time.Time {
	if months <= 0 {
		return nil
	}
	asOf = day(asOf)
	current := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, time.UTC)
	out := make([]time.Time, months)
	for i := 0; i < months; i++ {
		out[i] = current.AddDate(0, i-months+1, 0)
	}
	return out
}

// MonthStart truncates t to the first day of its month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// AddMonths adds n calendar months to t, clipping the day to the target
// month's length.
func AddMonths(t time.Time, n int) time.Time {
	if t.IsZero() {
		return t
	}
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	d := t.Day()
	if last := DaysInMonth(first); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}

func day(t time.Time) time.Time {
	return types.NewDay(t).Time
}
