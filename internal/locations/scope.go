package locations

import (
	"context"

	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/filters"
)

// Resolver hands out the current location table.
type Resolver interface {
	Snapshot(ctx context.Context) (Table, error)
}

// Scope resolves a region filter into locations and intersects them with any
// explicit location filter. The returned set carries no region. ok is false
// when the intersection is empty, meaning nothing can match.
func Scope(ctx context.Context, r Resolver, f filters.FilterSet) (scoped filters.FilterSet, ok bool, err error) {
	f = f.Normalize()
	if len(f.Region) == 0 {
		return f, true, nil
	}
	regions := f.Region
	f.Region = nil
	if r == nil {
		return f, false, nil
	}

	table, err := r.Snapshot(ctx)
	if err != nil {
		return f, false, err
	}
	locs := table.Locations(regions)
	if len(f.Location) > 0 {
		locs = intersect(locs, f.Location)
	}
	if len(locs) == 0 {
		return f, false, nil
	}
	return f.WithLocations(locs), true, nil
}

func intersect(a, b []string) []string {
	in := make(map[string]struct{}, len(b))
	for _, v := range b {
		in[v] = struct{}{}
	}
	out := make([]string, 0, len(a))
	for _, v := range a {
		if _, ok := in[v]; ok {
			out = append(out, v)
		}
	}
	return out
}
