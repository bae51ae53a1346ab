package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"google.golang.org/api/googleapi"
)

// ErrorDump is the log-only view of an error chain. It carries the backend
// details (postgres or Google API) that must never reach a response body.
type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	PGCode       string `json:"pg_code,omitempty"`
	PGConstraint string `json:"pg_constraint,omitempty"`
	PGTable      string `json:"pg_table,omitempty"`
	PGColumn     string `json:"pg_column,omitempty"`
	PGDetail     string `json:"pg_detail,omitempty"`
	PGMessage    string `json:"pg_message,omitempty"`

	GoogleStatus  int    `json:"google_status,omitempty"`
	GoogleReason  string `json:"google_reason,omitempty"`
	GoogleMessage string `json:"google_message,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{
		TopMessage: err.Error(),
	}

	if te := As(err); te != nil {
		d.Code = te.Code()
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		d.PGCode = pgxErr.Code
		d.PGConstraint = pgxErr.ConstraintName
		d.PGTable = pgxErr.TableName
		d.PGColumn = pgxErr.ColumnName
		d.PGDetail = pgxErr.Detail
		d.PGMessage = pgxErr.Message
		return d
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		d.PGCode = string(pqErr.Code)
		d.PGConstraint = pqErr.Constraint
		d.PGTable = pqErr.Table
		d.PGColumn = pqErr.Column
		d.PGDetail = pqErr.Detail
		d.PGMessage = pqErr.Message
		return d
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		d.GoogleStatus = apiErr.Code
		d.GoogleMessage = apiErr.Message
		if len(apiErr.Errors) > 0 {
			d.GoogleReason = apiErr.Errors[0].Reason
		}
	}

	return d
}

// Fields flattens the dump into log fields, skipping empty values.
func (d ErrorDump) Fields() map[string]any {
	fields := map[string]any{"error": d.TopMessage}
	if d.Code != "" {
		fields["error_code"] = d.Code
	}
	if len(d.Chain) > 1 {
		fields["error_chain"] = d.Chain
	}
	for key, value := range map[string]string{
		"pg_code":        d.PGCode,
		"pg_constraint":  d.PGConstraint,
		"pg_table":       d.PGTable,
		"pg_column":      d.PGColumn,
		"pg_detail":      d.PGDetail,
		"pg_message":     d.PGMessage,
		"google_reason":  d.GoogleReason,
		"google_message": d.GoogleMessage,
	} {
		if value != "" {
			fields[key] = value
		}
	}
	if d.GoogleStatus != 0 {
		fields["google_status"] = d.GoogleStatus
	}
	return fields
}
