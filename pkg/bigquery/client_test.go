package bigquery

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"

	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/config"
)

func TestNewClientValidatesConfig(t *testing.T) {
	ctx := context.Background()
	if _, err := NewClient(ctx, config.GCPConfig{}, config.BigQueryConfig{Dataset: "d", PlatformTable: "t"}, nil); err != errProjectIDRequired {
		t.Fatalf("expected project id error, got %v", err)
	}
	if _, err := NewClient(ctx, config.GCPConfig{ProjectID: "p"}, config.BigQueryConfig{PlatformTable: "t"}, nil); err != errDatasetRequired {
		t.Fatalf("expected dataset error, got %v", err)
	}
	if _, err := NewClient(ctx, config.GCPConfig{ProjectID: "p"}, config.BigQueryConfig{Dataset: "d", PlatformTable: " "}, nil); err != errTableNameRequired {
		t.Fatalf("expected table error, got %v", err)
	}
}

func TestTableRef(t *testing.T) {
	if got := tableRef("proj", "retail_dashboard", "platform_daily"); got != "`proj.retail_dashboard.platform_daily`" {
		t.Fatalf("unexpected table ref %s", got)
	}
	var nilClient *Client
	if nilClient.TableRef() != "" {
		t.Fatalf("nil client should have empty table ref")
	}
}

func TestClientOptionsPrioritizesJSON(t *testing.T) {
	gcp := config.GCPConfig{
		CredentialsJSON:        `{"dummy": "value"}`,
		ApplicationCredentials: "/tmp/creds",
	}

	opts := clientOptions(gcp)
	if len(opts) != 1 {
		t.Fatalf("expected 1 option, got %d", len(opts))
	}
}

func TestClientOptionsEmpty(t *testing.T) {
	opts := clientOptions(config.GCPConfig{})
	if len(opts) != 0 {
		t.Fatalf("expected 0 options when no credentials provided, got %d", len(opts))
	}
}

func TestIsNotFound(t *testing.T) {
	if !isNotFound(fmt.Errorf("meta: %w", &googleapi.Error{Code: http.StatusNotFound})) {
		t.Fatalf("expected wrapped 404 to be not found")
	}
	if isNotFound(&googleapi.Error{Code: http.StatusForbidden}) {
		t.Fatalf("403 is not a not-found")
	}
}

func TestQueryOnNilClient(t *testing.T) {
	var c *Client
	if _, err := c.Query(context.Background(), "SELECT 1", nil); err != errClientNotInitialized {
		t.Fatalf("expected not initialized, got %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close on nil client should be nil, got %v", err)
	}
}

func TestConfigureLabelsAndCapsJobs(t *testing.T) {
	params := []bigquery.QueryParameter{{Name: "start", Value: "2025-10-01"}}

	var uncapped bigquery.QueryConfig
	(&Client{}).configure(&uncapped, params)
	if uncapped.MaxBytesBilled != 0 {
		t.Fatalf("expected no cap, got %d", uncapped.MaxBytesBilled)
	}
	if uncapped.Labels["app"] != "retaildash" || len(uncapped.Parameters) != 1 {
		t.Fatalf("unexpected query config %+v", uncapped)
	}

	var capped bigquery.QueryConfig
	(&Client{maxBytesBilled: 10 << 30}).configure(&capped, nil)
	if capped.MaxBytesBilled != 10<<30 {
		t.Fatalf("expected 10GiB cap, got %d", capped.MaxBytesBilled)
	}
}
