package validators

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/filters"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/period"
	pkgerrors "github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/errors"
)

// AllSentinel is the front-end's "no constraint" value for a dimension.
const AllSentinel = "All"

// MaxRangeDays bounds the current and comparison ranges. Overviews carry one
// trend point per day of the current range.
const MaxRangeDays = 3 * 366

func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").WithDetails(map[string]any{"field": key})
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter out of range").WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return value, nil
}

// FilterQuery is the raw dashboard filter as it arrives on the query string.
type FilterQuery struct {
	Platform         string `json:"platform" validate:"max=1024"`
	Brand            string `json:"brand" validate:"max=1024"`
	Location         string `json:"location" validate:"max=1024"`
	Region           string `json:"region" validate:"max=1024"`
	Category         string `json:"category" validate:"max=1024"`
	OwnBrand         string `json:"ownBrand" validate:"omitempty,oneof=true false all"`
	StartDate        string `json:"startDate"`
	EndDate          string `json:"endDate"`
	CompareStartDate string `json:"compareStartDate"`
	CompareEndDate   string `json:"compareEndDate"`
	Months           int    `json:"months" validate:"min=0,max=36"`
}

// DecodeFilters reads the dashboard filter from the query string. The "All"
// sentinel and empty values mean unconstrained; unparseable dates are dropped.
// List lengths, range spans, the trend horizon and the own-brand flag are strict.
func DecodeFilters(r *http.Request) (filters.FilterSet, error) {
	q := r.URL.Query()
	months, err := ParseQueryInt(r, "months", 0, 0, 36)
	if err != nil {
		return filters.FilterSet{}, err
	}
	raw := FilterQuery{
		Platform:         strings.TrimSpace(q.Get("platform")),
		Brand:            strings.TrimSpace(q.Get("brand")),
		Location:         strings.TrimSpace(q.Get("location")),
		Region:           strings.TrimSpace(q.Get("region")),
		Category:         strings.TrimSpace(q.Get("category")),
		OwnBrand:         strings.ToLower(strings.TrimSpace(q.Get("ownBrand"))),
		StartDate:        q.Get("startDate"),
		EndDate:          q.Get("endDate"),
		CompareStartDate: q.Get("compareStartDate"),
		CompareEndDate:   q.Get("compareEndDate"),
		Months:           months,
	}
	if err := validate.Struct(raw); err != nil {
		return filters.FilterSet{}, formatValidationErrors(err)
	}
	f := raw.FilterSet()
	if err := checkRanges(f, time.Now()); err != nil {
		return filters.FilterSet{}, err
	}
	return f, nil
}

// checkRanges resolves the ranges the way the services will and rejects any
// wider than MaxRangeDays.
func checkRanges(f filters.FilterSet, now time.Time) error {
	current := period.Current(f.StartDate, f.EndDate, period.ComputeWindows(f.AsOf(now)))
	if current.Days() > MaxRangeDays {
		return rangeError("startDate", current.Days())
	}
	if f.CompareStartDate.IsZero() || f.CompareEndDate.IsZero() {
		return nil
	}
	if days := period.NewWindow(f.CompareStartDate, f.CompareEndDate).Days(); days > MaxRangeDays {
		return rangeError("compareStartDate", days)
	}
	return nil
}

func rangeError(field string, days int) error {
	return pkgerrors.Newf(pkgerrors.CodeValidation, "date range of %d days exceeds %d", days, MaxRangeDays).
		WithDetails(map[string]any{"field": field, "maxDays": MaxRangeDays})
}

// FilterSet converts the raw query into a FilterSet. Values are not
// normalized here; the services do that.
func (q FilterQuery) FilterSet() filters.FilterSet {
	f := filters.FilterSet{
		Platform: listParam(q.Platform),
		Brand:    listParam(q.Brand),
		Location: listParam(q.Location),
		Region:   listParam(q.Region),
		Category: listParam(q.Category),
		Months:   q.Months,
	}
	switch q.OwnBrand {
	case "true":
		v := true
		f.OwnBrand = &v
	case "false":
		v := false
		f.OwnBrand = &v
	}
	f.StartDate, _ = filters.ParseDate(q.StartDate)
	f.EndDate, _ = filters.ParseDate(q.EndDate)
	f.CompareStartDate, _ = filters.ParseDate(q.CompareStartDate)
	f.CompareEndDate, _ = filters.ParseDate(q.CompareEndDate)
	return f
}

func listParam(raw string) []string {
	var out []string
	for _, v := range filters.SplitList(raw) {
		if strings.EqualFold(v, AllSentinel) {
			continue
		}
		out = append(out, v)
	}
	return out
}
