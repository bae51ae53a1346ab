// Package filters holds the normalized filter set every metrics operation receives.
package filters

import (
	"sort"
	"strings"
	"time"

	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/types"
)

// FilterSet is the semantic filter a dashboard widget asks for. A nil/empty
// list means the dimension is unconstrained; a zero date means absent.
type FilterSet struct {
	Platform []string
	Brand    []string
	Location []string
	Region   []string
	Category []string
	OwnBrand *bool

	StartDate        time.Time
	EndDate          time.Time
	CompareStartDate time.Time
	CompareEndDate   time.Time

	Months int
}

// Normalize returns a copy with lower-cased, trimmed, de-duplicated and sorted
// list values and dates truncated to UTC midnight. It is idempotent and is the
// only place casing is applied.
func (f FilterSet) Normalize() FilterSet {
	out := FilterSet{
		Platform:         normalizeList(f.Platform),
		Brand:            normalizeList(f.Brand),
		Location:         normalizeList(f.Location),
		Region:           normalizeList(f.Region),
		Category:         normalizeList(f.Category),
		StartDate:        Day(f.StartDate),
		EndDate:          Day(f.EndDate),
		CompareStartDate: Day(f.CompareStartDate),
		CompareEndDate:   Day(f.CompareEndDate),
		Months:           f.Months,
	}
	if f.OwnBrand != nil {
		v := *f.OwnBrand
		out.OwnBrand = &v
	}
	if out.Months < 0 {
		out.Months = 0
	}
	return out
}

// IsEmpty reports whether no constraint at all is set.
func (f FilterSet) IsEmpty() bool {
	return len(f.Platform) == 0 && len(f.Brand) == 0 && len(f.Location) == 0 &&
		len(f.Region) == 0 && len(f.Category) == 0 && f.OwnBrand == nil &&
		f.StartDate.IsZero() && f.EndDate.IsZero() &&
		f.CompareStartDate.IsZero() && f.CompareEndDate.IsZero() && f.Months == 0
}

// AsOf is the reference day for period math: EndDate when set, otherwise today.
func (f FilterSet) AsOf(now time.Time) time.Time {
	if !f.EndDate.IsZero() {
		return Day(f.EndDate)
	}
	return Day(now.UTC())
}

// WithLocations returns a copy constrained to the given locations.
func (f FilterSet) WithLocations(locations []string) FilterSet {
	f.Location = normalizeList(locations)
	return f
}

// WithRange returns a copy whose StartDate/EndDate are the given window.
func (f FilterSet) WithRange(start, end time.Time) FilterSet {
	f.StartDate = Day(start)
	f.EndDate = Day(end)
	return f
}

// SplitList splits a comma separated value, trimming and dropping empty tokens.
func SplitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ParseDate accepts YYYY-MM-DD or RFC3339. Unparseable input reports false so
// callers can drop the constraint instead of failing the request.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(types.DayLayout, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return Day(t.UTC()), true
	}
	return time.Time{}, false
}

// Day truncates t to its UTC calendar date, keeping the zero value zero.
func Day(t time.Time) time.Time {
	return types.NewDay(t).Time
}

func normalizeList(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}
