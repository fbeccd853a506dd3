package sqlsource

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Dialect holds what differs between the supported SQL engines.
type Dialect struct {
	Name   string
	Driver string
	bind   int
	// numericTypes are prefixes of database type names treated as numeric.
	numericTypes []string
}

var (
	SQLite = Dialect{
		Name: "sqlite", Driver: "sqlite", bind: sqlx.QUESTION,
		numericTypes: []string{"INT", "REAL", "FLOA", "DOUB", "NUM", "DEC"},
	}
	DuckDB = Dialect{
		Name: "duckdb", Driver: "duckdb", bind: sqlx.QUESTION,
		numericTypes: []string{"TINYINT", "SMALLINT", "INTEGER", "BIGINT", "HUGEINT", "UTINYINT", "USMALLINT",
			"UINTEGER", "UBIGINT", "FLOAT", "DOUBLE", "DECIMAL", "REAL", "INT"},
	}
	Postgres = Dialect{
		Name: "postgres", Driver: "postgres", bind: sqlx.DOLLAR,
		numericTypes: []string{"INT", "FLOAT", "NUMERIC", "DECIMAL", "REAL", "DOUBLE", "SERIAL", "MONEY"},
	}
)

// DialectFor returns the dialect of a backend name.
func DialectFor(backend string) (Dialect, error) {
	switch strings.ToLower(backend) {
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "duckdb":
		return DuckDB, nil
	case "postgres", "postgresql":
		return Postgres, nil
	}
	return Dialect{}, fmt.Errorf("unsupported backend %q", backend)
}

// Quote quotes an identifier. All three engines accept standard double quotes.
func (d Dialect) Quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// Rebind converts ? placeholders to the dialect's bind style.
func (d Dialect) Rebind(query string) string {
	return sqlx.Rebind(d.bind, query)
}

// IsNumeric reports whether a database type name holds numbers.
func (d Dialect) IsNumeric(typeName string) bool {
	t := strings.ToUpper(strings.TrimSpace(typeName))
	for _, prefix := range d.numericTypes {
		if strings.HasPrefix(t, prefix) {
			return true
		}
	}
	return false
}
