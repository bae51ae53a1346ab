// Package cachekey turns an operation name and a filter set into a stable cache key.
package cachekey

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/filters"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/types"
)

const separator = ":"

// Encode returns namespace:k1=v1&k2=v2 for the normalized filter set. Keys are
// sorted and values query-escaped, so two semantically equal sets always map to
// the same key and user input can never inject glob metacharacters.
func Encode(namespace string, f filters.FilterSet) string {
	return EncodeWith(namespace, f, nil)
}

// EncodeWith is Encode plus operation parameters that are not filters (e.g. the
// breakdown dimension). Extra keys win over filter keys of the same name.
func EncodeWith(namespace string, f filters.FilterSet, extra map[string]string) string {
	f = f.Normalize()
	values := url.Values{}

	setList(values, "brand", f.Brand)
	setList(values, "category", f.Category)
	setList(values, "location", f.Location)
	setList(values, "platform", f.Platform)
	setList(values, "region", f.Region)
	if f.OwnBrand != nil {
		values.Set("ownBrand", strconv.FormatBool(*f.OwnBrand))
	}
	setDate(values, "startDate", f.StartDate)
	setDate(values, "endDate", f.EndDate)
	setDate(values, "compareStartDate", f.CompareStartDate)
	setDate(values, "compareEndDate", f.CompareEndDate)
	if f.Months > 0 {
		values.Set("months", strconv.Itoa(f.Months))
	}
	for k, v := range extra {
		k = strings.TrimSpace(k)
		v = strings.ToLower(strings.TrimSpace(v))
		if k == "" || v == "" {
			continue
		}
		values.Set(k, v)
	}

	return namespace + separator + values.Encode()
}

// EncodeAsOf is EncodeWith plus the reference day when the filter has no end
// date, so open-ended (month-to-date) entries roll over at midnight.
func EncodeAsOf(namespace string, f filters.FilterSet, asOf time.Time, extra map[string]string) string {
	if !f.EndDate.IsZero() || asOf.IsZero() {
		return EncodeWith(namespace, f, extra)
	}
	merged := make(map[string]string, len(extra)+1)
	for k, v := range extra {
		merged[k] = v
	}
	merged["asOf"] = asOf.Format(types.DayLayout)
	return EncodeWith(namespace, f, merged)
}

// Pattern matches every key under namespace.
func Pattern(namespace string) string {
	return namespace + separator + "*"
}

// DatasetPattern matches every namespace of a dataset, e.g. "sales" covers
// sales.overview, sales.breakdown and so on.
func DatasetPattern(dataset string) string {
	return dataset + ".*"
}

// Namespace returns the namespace part of a key.
func Namespace(key string) string {
	if i := strings.Index(key, separator); i >= 0 {
		return key[:i]
	}
	return key
}

func setList(values url.Values, key string, list []string) {
	if len(list) == 0 {
		return
	}
	values.Set(key, strings.Join(list, ","))
}

func setDate(values url.Values, key string, t time.Time) {
	if t.IsZero() {
		return
	}
	values.Set(key, t.Format(types.DayLayout))
}
