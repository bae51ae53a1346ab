package predicate

import (
	"strings"
	"time"

	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/filters"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RowPredicate is the row-store form: a conjunction of gorm expressions.
type RowPredicate struct {
	exprs []clause.Expression
}

// Row builds the row-store predicate for f.
func Row(f filters.FilterSet, cols Columns) RowPredicate {
	f = f.Normalize()
	var p RowPredicate

	p.in(cols.Platform, f.Platform)
	p.in(cols.Location, f.Location)
	p.in(cols.Category, f.Category)
	if len(f.Brand) > 0 && cols.Brand != "" {
		conds := make([]string, len(f.Brand))
		vars := make([]any, len(f.Brand))
		for i, b := range f.Brand {
			conds[i] = "LOWER(" + cols.Brand + `) LIKE ? ESCAPE '\'`
			vars[i] = containsPattern(b)
		}
		p.add("("+strings.Join(conds, " OR ")+")", vars...)
	}
	if f.OwnBrand != nil && cols.OwnBrand != "" {
		p.add(cols.OwnBrand+" = ?", flagInt(*f.OwnBrand))
	}
	if cols.Date != "" {
		p.dates(cols.Date, f.StartDate, f.EndDate)
	}
	return p
}

// Scope applies the predicate through db.Scopes.
func (p RowPredicate) Scope() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, expr := range p.exprs {
			db = db.Where(expr)
		}
		return db
	}
}

// Expressions returns the individual conditions.
func (p RowPredicate) Expressions() []clause.Expression {
	out := make([]clause.Expression, len(p.exprs))
	copy(out, p.exprs)
	return out
}

func (p RowPredicate) Empty() bool {
	return len(p.exprs) == 0
}

func (p *RowPredicate) in(col string, values []string) {
	if len(values) == 0 || col == "" {
		return
	}
	p.add("LOWER("+col+") IN ?", values)
}

func (p *RowPredicate) dates(col string, start, end time.Time) {
	switch {
	case !start.IsZero() && !end.IsZero():
		p.add("DATE("+col+") BETWEEN ? AND ?", dayString(start), dayString(end))
	case !start.IsZero():
		p.add("DATE("+col+") >= ?", dayString(start))
	case !end.IsZero():
		p.add("DATE("+col+") <= ?", dayString(end))
	}
}

func (p *RowPredicate) add(sql string, vars ...any) {
	p.exprs = append(p.exprs, clause.Expr{SQL: sql, Vars: vars})
}

func flagInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func dayString(t time.Time) string {
	return t.Format(types.DayLayout)
}
