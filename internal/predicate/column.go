package predicate

import (
	"strings"
	"time"

	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/filters"
)

// Arg is one bound parameter. Name is set for named-parameter dialects.
type Arg struct {
	Name  string
	Value any
}

// Predicate is the column-store form: a small expression tree rendered per
// dialect either with bound parameters or with escaped inline literals.
type Predicate struct {
	terms []node
}

type node interface {
	write(b *builder)
}

// Column builds the column-store predicate for f.
func Column(f filters.FilterSet, cols Columns) Predicate {
	f = f.Normalize()
	var p Predicate

	p.in(cols.Platform, f.Platform)
	p.in(cols.Location, f.Location)
	p.in(cols.Category, f.Category)
	if len(f.Brand) > 0 && cols.Brand != "" {
		p.terms = append(p.terms, anyContains{col: cols.Brand, values: f.Brand})
	}
	if f.OwnBrand != nil && cols.OwnBrand != "" {
		p.terms = append(p.terms, flagEquals{col: cols.OwnBrand, value: *f.OwnBrand})
	}
	if cols.Date != "" && (!f.StartDate.IsZero() || !f.EndDate.IsZero()) {
		p.terms = append(p.terms, dateRange{col: cols.Date, start: f.StartDate, end: f.EndDate})
	}
	return p
}

func (p *Predicate) in(col string, values []string) {
	if len(values) == 0 || col == "" {
		return
	}
	p.terms = append(p.terms, inList{col: col, values: values})
}

// Empty reports whether the predicate constrains nothing.
func (p Predicate) Empty() bool {
	return len(p.terms) == 0
}

// Render returns the SQL text with bound parameters and their values.
func (p Predicate) Render(d Dialect) (string, []Arg) {
	b := &builder{dialect: d}
	p.write(b)
	return b.sb.String(), b.args
}

// Inline returns the SQL text with every value embedded as an escaped literal,
// for contexts that cannot bind parameters.
func (p Predicate) Inline(d Dialect) string {
	b := &builder{dialect: d, inline: true}
	p.write(b)
	return b.sb.String()
}

func (p Predicate) write(b *builder) {
	if len(p.terms) == 0 {
		b.sb.WriteString("TRUE")
		return
	}
	for i, t := range p.terms {
		if i > 0 {
			b.sb.WriteString(" AND ")
		}
		t.write(b)
	}
}

type builder struct {
	dialect Dialect
	inline  bool
	sb      strings.Builder
	args    []Arg
}

// value writes a string value as a literal or a placeholder.
func (b *builder) value(v string) {
	if b.inline {
		b.sb.WriteString(b.dialect.Literal(v))
		return
	}
	placeholder, name := b.dialect.param(len(b.args) + 1)
	b.args = append(b.args, Arg{Name: name, Value: v})
	b.sb.WriteString(placeholder)
}

func (b *builder) date(t time.Time) {
	day := t.Format("2006-01-02")
	if b.inline {
		b.sb.WriteString("DATE ")
		b.sb.WriteString(b.dialect.Literal(day))
		return
	}
	b.sb.WriteString("CAST(")
	b.value(day)
	b.sb.WriteString(" AS DATE)")
}

type inList struct {
	col    string
	values []string
}

func (n inList) write(b *builder) {
	b.sb.WriteString("LOWER(" + n.col + ") IN (")
	for i, v := range n.values {
		if i > 0 {
			b.sb.WriteString(", ")
		}
		b.value(v)
	}
	b.sb.WriteString(")")
}

type anyContains struct {
	col    string
	values []string
}

func (n anyContains) write(b *builder) {
	b.sb.WriteString("(")
	for i, v := range n.values {
		if i > 0 {
			b.sb.WriteString(" OR ")
		}
		b.sb.WriteString("LOWER(" + n.col + ") LIKE ")
		b.value(containsPattern(v))
		b.sb.WriteString(b.dialect.likeEscape)
	}
	b.sb.WriteString(")")
}

// flagEquals compares the flag through its string form so '1'/'0' match
// whatever numeric or boolean type the column has.
type flagEquals struct {
	col   string
	value bool
}

func (n flagEquals) write(b *builder) {
	b.sb.WriteString("CAST(" + n.col + " AS " + b.dialect.stringType + ") = ")
	if n.value {
		b.value("1")
		return
	}
	b.value("0")
}

type dateRange struct {
	col        string
	start, end time.Time
}

func (n dateRange) write(b *builder) {
	b.sb.WriteString("CAST(" + n.col + " AS DATE)")
	switch {
	case !n.start.IsZero() && !n.end.IsZero():
		b.sb.WriteString(" BETWEEN ")
		b.date(n.start)
		b.sb.WriteString(" AND ")
		b.date(n.end)
	case !n.start.IsZero():
		b.sb.WriteString(" >= ")
		b.date(n.start)
	default:
		b.sb.WriteString(" <= ")
		b.date(n.end)
	}
}
