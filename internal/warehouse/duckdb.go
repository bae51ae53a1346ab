package warehouse

import (
	"context"
	"database/sql"
	"time"

	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/predicate"
	pkgerrors "github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/errors"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/types"
)

// DuckDBRunner is the slice of pkg/duckdb.Client the querier needs.
type DuckDBRunner interface {
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	TableRef() string
	Ping(ctx context.Context) error
}

// DuckDB runs aggregates with positional $N parameters.
type DuckDB struct {
	client  DuckDBRunner
	columns predicate.Columns
	timeout time.Duration
}

func NewDuckDB(client DuckDBRunner, columns predicate.Columns, timeout time.Duration) *DuckDB {
	return &DuckDB{client: client, columns: columns, timeout: timeout}
}

func (d *DuckDB) Aggregate(ctx context.Context, q Query) (Result, error) {
	query, args, err := statement(predicate.ANSI, d.client.TableRef(), d.columns, q)
	if err != nil {
		return nil, err
	}
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	values := make([]any, len(args))
	for i, a := range args {
		values[i] = a.Value
	}
	rows, err := d.client.Query(ctx, query, values...)
	if err != nil {
		return nil, pkgerrors.Dependency(err, "duckdb aggregate failed")
	}
	defer rows.Close()

	out := newCollector(q.Measures)
	sums := make([]sql.NullFloat64, len(q.Measures))
	for rows.Next() {
		var (
			group  string
			bucket types.Day
			count  int64
		)
		dest := make([]any, 0, len(sums)+3)
		dest = append(dest, &group, &bucket)
		for i := range sums {
			dest = append(dest, &sums[i])
		}
		dest = append(dest, &count)
		if err := rows.Scan(dest...); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decoding duckdb aggregate")
		}

		values := make([]float64, len(sums))
		for i, s := range sums {
			values[i] = s.Float64
		}
		out.add(group, bucket, values, count)
	}
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.Dependency(err, "reading duckdb aggregate")
	}
	return out.result, nil
}

func (d *DuckDB) Ping(ctx context.Context) error {
	return d.client.Ping(ctx)
}
