// Package predicate renders one filter set into equivalent conditions for the
// row store (gorm clauses) and the column store (SQL text).
//
// Both forms share the same semantics: an absent dimension is unconstrained, a
// list is an OR of its values, brand is a case-insensitive substring match,
// every other dimension is a case-insensitive exact match, and dates are
// inclusive and compare only the date portion of the column.
package predicate

// Columns names the physical columns behind each filter dimension. Column
// names are trusted configuration, never user input.
type Columns struct {
	Platform string
	Brand    string
	Location string
	Category string
	OwnBrand string
	Date     string
}

// SalesColumns is the layout of the row-store sales_facts table.
var SalesColumns = Columns{
	Platform: "platform",
	Brand:    "brand",
	Location: "location",
	Category: "category",
	OwnBrand: "is_own_brand",
	Date:     "sale_date",
}

// PlatformColumns is the layout of the column-store platform_daily table.
var PlatformColumns = Columns{
	Platform: "platform",
	Brand:    "brand",
	Location: "location",
	Category: "category",
	OwnBrand: "is_own_brand",
	Date:     "report_date",
}

// Column returns the physical column for a dimension name, if known.
func (c Columns) Column(dimension string) (string, bool) {
	var col string
	switch dimension {
	case "platform":
		col = c.Platform
	case "brand":
		col = c.Brand
	case "location":
		col = c.Location
	case "category":
		col = c.Category
	}
	return col, col != ""
}
