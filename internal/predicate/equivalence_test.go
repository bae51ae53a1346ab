package predicate

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/filters"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/db/models"
	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var fixtureFacts = []models.SalesFact{
	{ID: 1, Platform: "Zepto", Brand: "Aer", Location: "Delhi", Category: "Air Care", IsOwnBrand: 1, SaleDate: date(2025, 10, 1), Sales: 100},
	{ID: 2, Platform: "Zepto", Brand: "Aer Matic", Location: "Mumbai", Category: "Air Care", IsOwnBrand: 1, SaleDate: date(2025, 10, 6), Sales: 200},
	{ID: 3, Platform: "Blinkit", Brand: "Godrej", Location: "delhi", Category: "Home", IsOwnBrand: 0, SaleDate: date(2025, 9, 30), Sales: 50},
	{ID: 4, Platform: "Swiggy", Brand: "Odonil", Location: "Pune", Category: "Air Care", IsOwnBrand: 0, SaleDate: date(2025, 10, 7), Sales: 10},
	{ID: 5, Platform: "ZEPTO", Brand: "it's fresh", Location: "Delhi", Category: "Home", IsOwnBrand: 0, SaleDate: date(2025, 10, 3), Sales: 5},
	{ID: 6, Platform: "Blinkit", Brand: "100% Pure", Location: "Pune", Category: "Home", IsOwnBrand: 0, SaleDate: date(2025, 10, 2), Sales: 7},
	{ID: 7, Platform: "Blinkit", Brand: "Air_Wick", Location: "Pune", Category: "Air Care", IsOwnBrand: 0, SaleDate: date(2025, 10, 2), Sales: 8},
	{ID: 8, Platform: "Blinkit", Brand: "Airxwick", Location: "Pune", Category: "Air Care", IsOwnBrand: 0, SaleDate: date(2025, 10, 2), Sales: 9},
}

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.SalesFact{}))
	require.NoError(t, conn.Create(&fixtureFacts).Error)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

func openDuckDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := sql.Open("duckdb", "")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = conn.Close() })

	ctx := context.Background()
	_, err = conn.ExecContext(ctx, `CREATE TABLE sales_facts (
		id BIGINT, platform VARCHAR, brand VARCHAR, location VARCHAR, category VARCHAR,
		is_own_brand INTEGER, sale_date TIMESTAMP, sales DOUBLE)`)
	require.NoError(t, err)
	for _, f := range fixtureFacts {
		_, err = conn.ExecContext(ctx, `INSERT INTO sales_facts VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			f.ID, f.Platform, f.Brand, f.Location, f.Category, f.IsOwnBrand, f.SaleDate, f.Sales)
		require.NoError(t, err)
	}
	return conn
}

func duckIDs(t *testing.T, conn *sql.DB, where string, args ...any) []int64 {
	t.Helper()
	rows, err := conn.QueryContext(context.Background(), "SELECT id FROM sales_facts WHERE "+where+" ORDER BY id", args...)
	require.NoError(t, err)
	defer rows.Close()
	ids := []int64{}
	for rows.Next() {
		var id int64
		require.NoError(t, rows.Scan(&id))
		ids = append(ids, id)
	}
	require.NoError(t, rows.Err())
	return ids
}

func TestRowAndColumnFormsSelectTheSameRows(t *testing.T) {
	rowStore := openSQLite(t)
	columnStore := openDuckDB(t)
	own, notOwn := true, false

	cases := map[string]filters.FilterSet{
		"unfiltered":         {},
		"platform any case":  {Platform: []string{"zepto"}},
		"platform list":      {Platform: []string{"Blinkit", "Swiggy"}},
		"brand substring":    {Brand: []string{"AER"}},
		"brand with quote":   {Brand: []string{"it's"}},
		"brand percent sign": {Brand: []string{"%"}},
		"brand underscore":   {Brand: []string{"r_w"}},
		"brand backslash":    {Brand: []string{`\`}},
		"location":           {Location: []string{"DELHI"}},
		"own brand":          {OwnBrand: &own},
		"not own brand":      {OwnBrand: &notOwn},
		"inclusive range":    {StartDate: date(2025, 10, 1), EndDate: date(2025, 10, 6)},
		"start only":         {StartDate: date(2025, 10, 6)},
		"end only":           {EndDate: date(2025, 9, 30)},
		"combined":           {Platform: []string{"zepto"}, Category: []string{"air care"}, StartDate: date(2025, 10, 2), EndDate: time.Date(2025, 10, 6, 18, 0, 0, 0, time.UTC)},
		"nothing matches":    {Platform: []string{"amazon"}},
		"timestamp end date": {EndDate: time.Date(2025, 10, 1, 23, 59, 0, 0, time.UTC)},
	}

	for name, f := range cases {
		t.Run(name, func(t *testing.T) {
			rowIDs := []int64{}
			require.NoError(t, rowStore.Model(&models.SalesFact{}).
				Scopes(Row(f, SalesColumns).Scope()).
				Pluck("id", &rowIDs).Error)
			sort.Slice(rowIDs, func(i, j int) bool { return rowIDs[i] < rowIDs[j] })

			p := Column(f, SalesColumns)
			inlineIDs := duckIDs(t, columnStore, p.Inline(ANSI))

			query, args := p.Render(ANSI)
			values := make([]any, len(args))
			for i, a := range args {
				values[i] = a.Value
			}
			boundIDs := duckIDs(t, columnStore, query, values...)

			require.Equal(t, rowIDs, inlineIDs)
			require.Equal(t, rowIDs, boundIDs)
		})
	}
}

func TestBrandWildcardsMatchLiterally(t *testing.T) {
	rowStore := openSQLite(t)
	columnStore := openDuckDB(t)

	cases := map[string]struct {
		brand string
		want  []int64
	}{
		"percent":    {brand: "%", want: []int64{6}},
		"underscore": {brand: "r_w", want: []int64{7}},
		"backslash":  {brand: `\`, want: []int64{}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			f := filters.FilterSet{Brand: []string{tc.brand}}

			rowIDs := []int64{}
			require.NoError(t, rowStore.Model(&models.SalesFact{}).
				Scopes(Row(f, SalesColumns).Scope()).
				Order("id").
				Pluck("id", &rowIDs).Error)
			require.Equal(t, tc.want, rowIDs)

			require.Equal(t, tc.want, duckIDs(t, columnStore, Column(f, SalesColumns).Inline(ANSI)))
		})
	}
}
