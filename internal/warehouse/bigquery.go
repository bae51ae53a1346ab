package warehouse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/predicate"
	pkgerrors "github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/errors"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/types"
	"google.golang.org/api/iterator"
)

// BigQueryRunner is the slice of pkg/bigquery.Client the querier needs.
type BigQueryRunner interface {
	Query(ctx context.Context, sql string, params []bigquery.QueryParameter) (*bigquery.RowIterator, error)
	TableRef() string
	Ping(ctx context.Context) error
}

// BigQuery runs aggregates with named @pN parameters.
type BigQuery struct {
	client  BigQueryRunner
	columns predicate.Columns
	timeout time.Duration
}

func NewBigQuery(client BigQueryRunner, columns predicate.Columns, timeout time.Duration) *BigQuery {
	return &BigQuery{client: client, columns: columns, timeout: timeout}
}

func (b *BigQuery) Aggregate(ctx context.Context, q Query) (Result, error) {
	sql, args, err := statement(predicate.BigQuery, b.client.TableRef(), b.columns, q)
	if err != nil {
		return nil, err
	}
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	it, err := b.client.Query(ctx, sql, bigQueryParams(args))
	if err != nil {
		return nil, pkgerrors.Dependency(err, "bigquery aggregate failed")
	}

	out := newCollector(q.Measures)
	for {
		var row []bigquery.Value
		err := it.Next(&row)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, pkgerrors.Dependency(err, "reading bigquery aggregate")
		}
		group, bucket, sums, count, err := decodeBigQueryRow(row, len(q.Measures))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decoding bigquery aggregate")
		}
		out.add(group, bucket, sums, count)
	}
	return out.result, nil
}

func (b *BigQuery) Ping(ctx context.Context) error {
	return b.client.Ping(ctx)
}

func bigQueryParams(args []predicate.Arg) []bigquery.QueryParameter {
	params := make([]bigquery.QueryParameter, len(args))
	for i, a := range args {
		params[i] = bigquery.QueryParameter{Name: a.Name, Value: a.Value}
	}
	return params
}

// decodeBigQueryRow reads group_key, period_bucket, m0..mN, row_count.
func decodeBigQueryRow(row []bigquery.Value, measures int) (string, types.Day, []float64, int64, error) {
	if len(row) != measures+3 {
		return "", types.Day{}, nil, 0, fmt.Errorf("expected %d columns, got %d", measures+3, len(row))
	}

	group, _ := row[0].(string)

	var bucket types.Day
	switch v := row[1].(type) {
	case civil.Date:
		bucket = types.DayFromCivil(v)
	case nil:
	default:
		return "", types.Day{}, nil, 0, fmt.Errorf("unexpected period_bucket type %T", v)
	}

	sums := make([]float64, measures)
	for i := 0; i < measures; i++ {
		switch v := row[2+i].(type) {
		case float64:
			sums[i] = v
		case int64:
			sums[i] = float64(v)
		case nil:
		default:
			return "", types.Day{}, nil, 0, fmt.Errorf("unexpected measure type %T", v)
		}
	}

	count, _ := row[len(row)-1].(int64)
	return group, bucket, sums, count, nil
}
