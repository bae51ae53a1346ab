package predicate

import (
	"strconv"
	"strings"
)

// Dialect captures how a column-store engine spells parameters and literals.
type Dialect struct {
	name       string
	stringType string
	floatType  string
	param      func(n int) (placeholder, name string)
	escape     func(s string) string
	// likeEscape is appended to LIKE; empty where backslash is already the
	// pattern escape.
	likeEscape string
}

var (
	// BigQuery uses named @pN parameters and backslash escapes in string literals.
	BigQuery = Dialect{
		name:       "bigquery",
		stringType: "STRING",
		floatType:  "FLOAT64",
		param: func(n int) (string, string) {
			name := "p" + strconv.Itoa(n)
			return "@" + name, name
		},
		escape: escapeBackslash,
	}

	// ANSI covers DuckDB and other engines with positional $N parameters and
	// doubled single quotes.
	ANSI = Dialect{
		name:       "ansi",
		stringType: "VARCHAR",
		floatType:  "DOUBLE",
		param: func(n int) (string, string) {
			return "$" + strconv.Itoa(n), ""
		},
		escape:     escapeDoubled,
		likeEscape: ` ESCAPE '\'`,
	}
)

func (d Dialect) String() string { return d.name }

// StringType is the dialect's name for a variable-length string in CAST.
func (d Dialect) StringType() string { return d.stringType }

// FloatType is the dialect's name for a double precision float in CAST.
func (d Dialect) FloatType() string { return d.floatType }

// Literal renders s as a safely quoted string literal.
func (d Dialect) Literal(s string) string {
	return "'" + d.escape(s) + "'"
}

var backslashReplacer = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	"\n", `\n`,
	"\r", `\r`,
	"\x00", "",
)

var likeReplacer = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern is the LIKE pattern matching s as a literal substring.
func containsPattern(s string) string {
	return "%" + likeReplacer.Replace(s) + "%"
}

func escapeBackslash(s string) string {
	return backslashReplacer.Replace(s)
}

func escapeDoubled(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\x00", ""), "'", "''")
}
