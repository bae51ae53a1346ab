package invalidation

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/cachekey"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/sales"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/watchtower"
	pkgerrors "github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/errors"
	json "github.com/goccy/go-json"
	"go.uber.org/multierr"
)

// DatasetAll refreshes every dataset in one message.
const DatasetAll = "all"

// Message is the "dataset refreshed" payload published by the loaders.
// Either field may be set; both are merged.
type Message struct {
	Dataset  string   `json:"dataset"`
	Datasets []string `json:"datasets"`
}

// Invalidator deletes cached entries; *cache.Cache satisfies it.
type Invalidator interface {
	InvalidatePattern(ctx context.Context, pattern, label string) int64
}

// Handler processes a decoded refresh message.
type Handler interface {
	Handle(ctx context.Context, msg Message) (Result, error)
}

// Result reports how many entries were dropped per dataset.
type Result struct {
	Deleted map[string]int64
}

// Total sums the deleted entries across datasets.
func (r Result) Total() int64 {
	var n int64
	for _, v := range r.Deleted {
		n += v
	}
	return n
}

var knownDatasets = []string{sales.Dataset, watchtower.Dataset}

type cacheHandler struct {
	cache Invalidator
}

// NewHandler returns a Handler that drops the dataset namespaces from cache.
func NewHandler(cache Invalidator) (Handler, error) {
	if cache == nil {
		return nil, fmt.Errorf("cache required")
	}
	return &cacheHandler{cache: cache}, nil
}

func (h *cacheHandler) Handle(ctx context.Context, msg Message) (Result, error) {
	datasets, err := Resolve(msg)
	if err != nil {
		return Result{}, err
	}
	res := Result{Deleted: make(map[string]int64, len(datasets))}
	for _, ds := range datasets {
		res.Deleted[ds] = h.cache.InvalidatePattern(ctx, cachekey.DatasetPattern(ds), ds)
	}
	return res, nil
}

// Decode parses a message body.
func Decode(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode invalidation message")
	}
	return msg, nil
}

// Resolve expands a message into the sorted, de-duplicated list of datasets
// to invalidate. Unknown names are reported together.
func Resolve(msg Message) ([]string, error) {
	names := append([]string{msg.Dataset}, msg.Datasets...)
	set := map[string]struct{}{}
	var errs error
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		switch {
		case name == "":
			continue
		case name == DatasetAll:
			for _, ds := range knownDatasets {
				set[ds] = struct{}{}
			}
		case isKnown(name):
			set[name] = struct{}{}
		default:
			errs = multierr.Append(errs, fmt.Errorf("unknown dataset %q", raw))
		}
	}
	if errs != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, errs, "invalid invalidation message")
	}
	if len(set) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dataset is required")
	}
	out := make([]string, 0, len(set))
	for ds := range set {
		out = append(out, ds)
	}
	sort.Strings(out)
	return out, nil
}

func isKnown(name string) bool {
	for _, ds := range knownDatasets {
		if ds == name {
			return true
		}
	}
	return false
}
