package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/config"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/logger"
	_ "github.com/duckdb/duckdb-go/v2"
)

const driverName = "duckdb"

var errClientNotInitialized = errors.New("duckdb client not initialized")

// Client wraps a database/sql handle on a DuckDB file (or an in-memory database).
type Client struct {
	conn  *sql.DB
	table string
}

// Open opens the DuckDB database configured for the warehouse. An empty path
// opens a private in-memory database.
func Open(ctx context.Context, cfg config.WarehouseConfig, logg *logger.Logger) (*Client, error) {
	conn, err := sql.Open(driverName, dsn(cfg.DuckDBPath))
	if err != nil {
		return nil, fmt.Errorf("opening duckdb: %w", err)
	}
	if strings.TrimSpace(cfg.DuckDBPath) == "" {
		conn.SetMaxOpenConns(1)
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}
	if logg != nil {
		logg.Info(ctx, "duckdb warehouse opened")
	}
	return &Client{conn: conn, table: tableName(cfg.Table)}, nil
}

// Wrap builds a client around an existing handle (tests seed an in-memory database first).
func Wrap(conn *sql.DB, table string) *Client {
	return &Client{conn: conn, table: tableName(table)}
}

func dsn(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ":memory:?autoinstall_known_extensions=false&autoload_known_extensions=false"
	}
	return path + "?access_mode=read_only&autoinstall_known_extensions=false&autoload_known_extensions=false"
}

func tableName(table string) string {
	if t := strings.TrimSpace(table); t != "" {
		return t
	}
	return "platform_daily"
}

// TableRef returns the quoted table name for SQL templates.
func (c *Client) TableRef() string {
	return `"` + strings.ReplaceAll(c.table, `"`, `""`) + `"`
}

// DB exposes the raw handle.
func (c *Client) DB() *sql.DB {
	return c.conn
}

// Query runs a read query with positional ($N) arguments.
func (c *Client) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if c == nil || c.conn == nil {
		return nil, errClientNotInitialized
	}
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("sql query is required")
	}
	return c.conn.QueryContext(ctx, query, args...)
}

// Ping verifies the database handle is usable.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.conn == nil {
		return errClientNotInitialized
	}
	return c.conn.PingContext(ctx)
}

// Close releases the database handle.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
