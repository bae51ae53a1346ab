// Package warehouse runs filtered aggregate queries against the column store
// (BigQuery in production, DuckDB locally) and returns daily aggregate rows.
package warehouse

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/filters"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/predicate"
	pkgerrors "github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/errors"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/types"
)

// Querier aggregates column-store measures by day and optional dimension.
type Querier interface {
	Aggregate(ctx context.Context, q Query) (Result, error)
	Ping(ctx context.Context) error
}

// Measure is one summed expression. Expr is trusted SQL over table columns.
type Measure struct {
	Name string
	Expr string
}

// Query describes one aggregate request. GroupBy is a dimension name
// (platform, brand, location, category) or empty for an overall total.
type Query struct {
	Measures []Measure
	GroupBy  string
	Filter   filters.FilterSet
}

// Result holds the daily rows of every measure, keyed by measure name.
type Result map[string][]types.AggregateRow

var measureName = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// statement renders q into SQL for dialect d. The grouping key is lower-cased
// so it lines up with normalized filter values.
func statement(d predicate.Dialect, table string, cols predicate.Columns, q Query) (string, []predicate.Arg, error) {
	if len(q.Measures) == 0 {
		return "", nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one measure is required")
	}

	groupExpr := "''"
	groupBy := "GROUP BY 2"
	if q.GroupBy != "" {
		col, ok := cols.Column(q.GroupBy)
		if !ok {
			return "", nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unsupported dimension %q", q.GroupBy)
		}
		groupExpr = fmt.Sprintf("LOWER(TRIM(COALESCE(CAST(%s AS %s), '')))", col, d.StringType())
		groupBy = "GROUP BY 1, 2"
	}

	selects := make([]string, 0, len(q.Measures)+3)
	selects = append(selects,
		groupExpr+" AS group_key",
		fmt.Sprintf("CAST(%s AS DATE) AS period_bucket", cols.Date),
	)
	for i, m := range q.Measures {
		if !measureName.MatchString(m.Name) || strings.TrimSpace(m.Expr) == "" {
			return "", nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid measure %q", m.Name)
		}
		selects = append(selects, fmt.Sprintf("SUM(CAST(%s AS %s)) AS m%d", m.Expr, d.FloatType(), i))
	}
	selects = append(selects, "COUNT(*) AS row_count")

	where, args := predicate.Column(q.Filter, cols).Render(d)
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE %s %s ORDER BY period_bucket",
		strings.Join(selects, ", "), table, where, groupBy)
	return sql, args, nil
}

// collector appends decoded rows into a Result.
type collector struct {
	measures []Measure
	result   Result
}

func newCollector(measures []Measure) *collector {
	result := make(Result, len(measures))
	for _, m := range measures {
		result[m.Name] = make([]types.AggregateRow, 0)
	}
	return &collector{measures: measures, result: result}
}

func (c *collector) add(group string, bucket types.Day, sums []float64, count int64) {
	for i, m := range c.measures {
		c.result[m.Name] = append(c.result[m.Name], types.AggregateRow{
			GroupKey:     group,
			PeriodBucket: bucket,
			SumMetric:    sums[i],
			Count:        count,
		})
	}
}
