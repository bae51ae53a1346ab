package duckdb

import (
	"context"
	"testing"

	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenInMemoryAndQuery(t *testing.T) {
	ctx := context.Background()
	client, err := Open(ctx, config.WarehouseConfig{}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	_, err = client.DB().ExecContext(ctx, `CREATE TABLE platform_daily (platform VARCHAR, offtake DOUBLE)`)
	require.NoError(t, err)
	_, err = client.DB().ExecContext(ctx, `INSERT INTO platform_daily VALUES ('Zepto', 100), ('Zepto', 150), ('Blinkit', 7)`)
	require.NoError(t, err)

	rows, err := client.Query(ctx, `SELECT SUM(offtake) FROM `+client.TableRef()+` WHERE platform = $1`, "Zepto")
	require.NoError(t, err)
	defer rows.Close()

	require.True(t, rows.Next())
	var total float64
	require.NoError(t, rows.Scan(&total))
	assert.Equal(t, 250.0, total)
	require.NoError(t, rows.Err())
}

func TestTableRefQuotes(t *testing.T) {
	c := Wrap(nil, `odd"name`)
	assert.Equal(t, `"odd""name"`, c.TableRef())
	assert.Equal(t, `"platform_daily"`, Wrap(nil, "").TableRef())
}

func TestNilClient(t *testing.T) {
	var c *Client
	_, err := c.Query(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, errClientNotInitialized)
	assert.NoError(t, c.Close())
}
