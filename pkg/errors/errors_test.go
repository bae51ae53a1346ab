package errors

import (
	"context"
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"google.golang.org/api/googleapi"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeTimeout, status: http.StatusGatewayTimeout, publicMsg: "query timed out", retryable: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "invalid startDate")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "invalid startDate" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	base.WithDetails(map[string]any{"field": "startDate"})
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeDependency, cause, "sales query")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeDependency {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeNotFound, "no entry"))
	if got := As(err); got == nil || got.Code() != CodeNotFound {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
	if !IsCode(err, CodeNotFound) || IsCode(err, CodeInternal) {
		t.Fatalf("IsCode mismatch")
	}
}

func TestDependencyMapsDeadline(t *testing.T) {
	timeout := Dependency(fmt.Errorf("bq: %w", context.DeadlineExceeded), "warehouse query")
	if timeout.Code() != CodeTimeout {
		t.Fatalf("expected timeout code, got %s", timeout.Code())
	}
	failed := Dependency(stdErrors.New("connection reset"), "warehouse query")
	if failed.Code() != CodeDependency {
		t.Fatalf("expected dependency code, got %s", failed.Code())
	}
}

func TestDumpCollectsPostgresDetails(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "42P01", TableName: "sales_facts", Message: "relation does not exist"}
	err := Wrap(CodeDependency, fmt.Errorf("query: %w", pgErr), "sales overview")

	d := Dump(err)
	if d.Code != CodeDependency {
		t.Fatalf("expected dependency code, got %s", d.Code)
	}
	if d.PGCode != "42P01" || d.PGTable != "sales_facts" {
		t.Fatalf("unexpected pg details %+v", d)
	}
	if len(d.Chain) != 3 {
		t.Fatalf("expected 3 chain entries, got %d", len(d.Chain))
	}
}

func TestDumpCollectsGoogleAPIDetails(t *testing.T) {
	apiErr := &googleapi.Error{
		Code:    403,
		Message: "Access Denied: Table retail:platform_daily",
		Errors:  []googleapi.ErrorItem{{Reason: "accessDenied"}},
	}
	d := Dump(Dependency(fmt.Errorf("bigquery read: %w", apiErr), "column store query failed"))

	if d.GoogleStatus != 403 || d.GoogleReason != "accessDenied" {
		t.Fatalf("unexpected google details %+v", d)
	}
	fields := d.Fields()
	if fields["google_reason"] != "accessDenied" || fields["error_code"] != CodeDependency {
		t.Fatalf("unexpected fields %+v", fields)
	}
	if _, ok := fields["pg_code"]; ok {
		t.Fatalf("empty pg fields should be omitted: %+v", fields)
	}
}
