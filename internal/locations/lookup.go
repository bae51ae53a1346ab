// Package locations maps normalized city/location names to region labels.
package locations

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/repo"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/db"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/db/models"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/logger"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const defaultRefresh = 10 * time.Minute

// Table is an immutable snapshot of the location to region mapping.
type Table struct {
	regionOf  map[string]string
	locations map[string][]string
}

// NewTable builds a snapshot from location to region pairs.
func NewTable(pairs map[string]string) Table {
	t := Table{regionOf: make(map[string]string, len(pairs)), locations: make(map[string][]string)}
	for location, region := range pairs {
		location = normalize(location)
		region = strings.TrimSpace(region)
		if location == "" || region == "" {
			continue
		}
		t.regionOf[location] = region
		t.locations[normalize(region)] = append(t.locations[normalize(region)], location)
	}
	for _, locs := range t.locations {
		sort.Strings(locs)
	}
	return t
}

// Region returns the region label of location.
func (t Table) Region(location string) (string, bool) {
	region, ok := t.regionOf[normalize(location)]
	return region, ok
}

// Locations returns every location of the given regions, sorted and without
// duplicates. Region matching ignores case.
func (t Table) Locations(regions []string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range regions {
		for _, loc := range t.locations[normalize(r)] {
			if _, dup := seen[loc]; dup {
				continue
			}
			seen[loc] = struct{}{}
			out = append(out, loc)
		}
	}
	sort.Strings(out)
	return out
}

// Len is the number of mapped locations.
func (t Table) Len() int {
	return len(t.regionOf)
}

// Lookup loads the mapping from the row store and keeps it in process,
// reloading once the refresh interval has passed.
type Lookup struct {
	base    repo.Base
	refresh time.Duration
	logg    *logger.Logger
	now     func() time.Time

	mu       sync.RWMutex
	table    Table
	loadedAt time.Time
	loads    singleflight.Group
}

// NewLookup builds a Lookup over the location_regions table.
func NewLookup(conn *gorm.DB, refresh time.Duration, logg *logger.Logger) *Lookup {
	if refresh <= 0 {
		refresh = defaultRefresh
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Lookup{
		base:    repo.NewBase(conn, 0),
		refresh: refresh,
		logg:    logg,
		now:     time.Now,
		table:   NewTable(nil),
	}
}

// Snapshot returns the current table, loading it first when missing or stale.
// A failed reload keeps serving the previous snapshot.
func (l *Lookup) Snapshot(ctx context.Context) (Table, error) {
	l.mu.RLock()
	table, loadedAt := l.table, l.loadedAt
	l.mu.RUnlock()
	if !loadedAt.IsZero() && l.now().Sub(loadedAt) < l.refresh {
		return table, nil
	}

	v, err, _ := l.loads.Do("load", func() (any, error) {
		return l.load(context.WithoutCancel(ctx))
	})
	if err != nil {
		if !loadedAt.IsZero() {
			l.logg.Warn(l.logg.WithField(ctx, "error", err.Error()), "location lookup reload failed; serving previous snapshot")
			return table, nil
		}
		return Table{}, err
	}
	return v.(Table), nil
}

// Region resolves location against the last loaded snapshot.
func (l *Lookup) Region(location string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.table.Region(location)
}

// Locations resolves regions against the last loaded snapshot.
func (l *Lookup) Locations(regions []string) []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.table.Locations(regions)
}

func (l *Lookup) load(ctx context.Context) (Table, error) {
	var rows []models.LocationRegion
	err := l.base.DB(ctx).Model(&models.LocationRegion{}).Find(&rows).Error
	if err != nil && !db.IsUndefinedTable(err) {
		return Table{}, fmt.Errorf("loading location regions: %w", err)
	}
	if err != nil {
		l.logg.Warn(ctx, "location_regions table missing; every location rolls up to Unknown")
	}

	pairs := make(map[string]string, len(rows))
	for _, r := range rows {
		pairs[r.Location] = r.Region
	}
	table := NewTable(pairs)

	l.mu.Lock()
	l.table = table
	l.loadedAt = l.now()
	l.mu.Unlock()

	l.logg.Debug(l.logg.WithField(ctx, "locations", table.Len()), "location lookup loaded")
	return table, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
