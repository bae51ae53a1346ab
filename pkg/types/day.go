package types

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// DayLayout is the wire and cache-key format of a calendar day.
const DayLayout = "2006-01-02"

// Day is a calendar date stored as UTC midnight. It scans from the shapes the
// row store and column stores hand back for DATE expressions.
type Day struct {
	time.Time
}

// NewDay truncates t to its UTC calendar date.
func NewDay(t time.Time) Day {
	if t.IsZero() {
		return Day{}
	}
	y, m, d := t.Date()
	return Day{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// DayFromCivil converts a BigQuery DATE value.
func DayFromCivil(d civil.Date) Day {
	if !d.IsValid() {
		return Day{}
	}
	return Day{Time: d.In(time.UTC)}
}

// ParseDay parses YYYY-MM-DD, tolerating a trailing time component.
func ParseDay(raw string) (Day, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) > len(DayLayout) {
		raw = raw[:len(DayLayout)]
	}
	t, err := time.Parse(DayLayout, raw)
	if err != nil {
		return Day{}, err
	}
	return Day{Time: t}, nil
}

func (d Day) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DayLayout)
}

func (d Day) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(DayLayout) + `"`), nil
}

func (d *Day) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		*d = Day{}
		return nil
	}
	parsed, err := ParseDay(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Scan implements sql.Scanner.
func (d *Day) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Day{}
		return nil
	case time.Time:
		*d = NewDay(v)
		return nil
	case string:
		parsed, err := ParseDay(v)
		if err != nil {
			return fmt.Errorf("scan day %q: %w", v, err)
		}
		*d = parsed
		return nil
	case []byte:
		parsed, err := ParseDay(string(v))
		if err != nil {
			return fmt.Errorf("scan day %q: %w", v, err)
		}
		*d = parsed
		return nil
	default:
		return fmt.Errorf("scan day: unsupported type %T", src)
	}
}

// Value implements driver.Valuer.
func (d Day) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Format(DayLayout), nil
}
