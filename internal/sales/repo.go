package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/filters"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/predicate"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/repo"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/db/models"
	pkgerrors "github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/errors"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/types"
	"gorm.io/gorm"
)

// Repository reads daily sales aggregates from the row store.
type Repository interface {
	// Aggregate sums sales per day, grouped by dimension when it is not empty.
	Aggregate(ctx context.Context, f filters.FilterSet, dimension string) ([]types.AggregateRow, error)
}

type repository struct {
	base repo.Base
}

// NewRepository binds a repository to the row-store connection.
func NewRepository(conn *gorm.DB, timeout time.Duration) (Repository, error) {
	if conn == nil {
		return nil, fmt.Errorf("db connection required")
	}
	return &repository{base: repo.NewBase(conn, timeout)}, nil
}

func (r *repository) Aggregate(ctx context.Context, f filters.FilterSet, dimension string) ([]types.AggregateRow, error) {
	cols := predicate.SalesColumns
	groupExpr := "''"
	group := "period_bucket"
	if dimension != "" {
		col, ok := cols.Column(dimension)
		if !ok {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unsupported dimension %q", dimension)
		}
		groupExpr = "LOWER(TRIM(" + col + "))"
		group = "group_key, period_bucket"
	}

	db, cancel := r.base.Query(ctx)
	defer cancel()

	rows := make([]types.AggregateRow, 0)
	err := db.Model(&models.SalesFact{}).
		Scopes(predicate.Row(f, cols).Scope()).
		Select(groupExpr + " AS group_key, DATE(" + cols.Date + ") AS period_bucket, SUM(sales) AS sum_metric, COUNT(*) AS row_count").
		Group(group).
		Order("period_bucket").
		Scan(&rows).Error
	if err != nil {
		return nil, pkgerrors.Dependency(err, "sales aggregate failed")
	}
	return rows, nil
}
