// Package dialect adapts SQL fragment generation to the target database
// vendor: string concatenation, hex encoding, left-padding, and the
// terminal UPDATE that joins a recursive CTE back into the adjacency
// table. It is a pure-function layer; nothing here touches a
// connection.
package dialect

import (
	"fmt"
	"strings"
)

// Vendor tags the SQL dialect a Dialect implementation targets.
type Vendor string

const (
	Postgres  Vendor = "postgresql"
	MySQL     Vendor = "mysql"
	MariaDB   Vendor = "mariadb"
	SQLite    Vendor = "sqlite"
	SQLServer Vendor = "mssql"
	Oracle    Vendor = "oracle"
)

// Dialect emits vendor-specific SQL fragments. Every method is a pure
// string transform; callers are responsible for ensuring that any
// identifier passed through Quote originates from schema introspection,
// never from unescaped user input.
type Dialect interface {
	Vendor() Vendor

	// Quote quotes a single identifier (table or column name) using the
	// vendor's quoting rule.
	Quote(identifier string) string

	// Concat concatenates two or more SQL expressions into one string
	// expression.
	Concat(exprs ...string) string

	// ToHex renders a non-negative integer expression as an uppercase
	// hexadecimal string.
	ToHex(expr string) string

	// Lpad left-pads expr to length using pad (a single SQL string
	// literal expression, e.g. "'0'").
	Lpad(expr string, length int, pad string) string

	// UpdateFrom builds the terminal statement that writes fields from
	// a recursive CTE back into table. cteHeader is the column list in
	// parentheses following the CTE name, e.g. "(id, new_priority,
	// new_path, new_depth)". baseSQL and recursiveSQL are the anchor and
	// recursive member SELECTs of the CTE (without the leading WITH
	// RECURSIVE). fields names the destination columns to set; cteAlias
	// maps each destination field to its corresponding CTE column.
	UpdateFrom(table, cteHeader, baseSQL, recursiveSQL string, fields []string, cteAlias map[string]string) (string, bool)

	// RequiresMaterializedCTE reports whether the vendor cannot UPDATE
	// directly against a recursive CTE and needs it materialized into a
	// temp table first (SQLite).
	RequiresMaterializedCTE() bool

	// LockNowaitClause returns the trailing clause appended to a SELECT
	// to request a non-blocking row lock, or "" if the vendor has no
	// such construct (SQLite has no server-side row locks; writers are
	// already serialized at the connection/file level).
	LockNowaitClause() string
}

// gormDialectorNames maps the strings gorm's Dialector.Name() reports
// (for drivers whose name differs from our Vendor tag) to the Vendor
// constant above.
var gormDialectorNames = map[string]Vendor{
	"postgres":  Postgres,
	"sqlserver": SQLServer,
}

// For resolves a Dialect from a vendor tag. Host applications normally
// derive the tag from gorm's Dialector.Name() (postgres, mysql, sqlite,
// sqlserver) rather than hardcoding it.
func For(name string) (Dialect, error) {
	vendor := Vendor(strings.ToLower(name))
	if mapped, ok := gormDialectorNames[string(vendor)]; ok {
		vendor = mapped
	}
	switch vendor {
	case Postgres:
		return postgresDialect{}, nil
	case MySQL:
		return mysqlDialect{vendor: MySQL}, nil
	case MariaDB:
		return mysqlDialect{vendor: MariaDB}, nil
	case SQLite:
		return sqliteDialect{}, nil
	case SQLServer:
		return mssqlDialect{}, nil
	case Oracle:
		return oracleDialect{}, nil
	default:
		return nil, fmt.Errorf("dialect: unsupported vendor %q", name)
	}
}

// setClause renders "dest = source" pairs joined by ", " using the
// supplied quoting and source-naming functions.
func setClause(fields []string, quote func(string) string, source func(string) string) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("%s = %s", quote(f), source(f))
	}
	return strings.Join(parts, ", ")
}

func cteSource(alias string, field string, cteAlias map[string]string) string {
	name, ok := cteAlias[field]
	if !ok {
		name = field
	}
	return fmt.Sprintf("%s.%s", alias, name)
}
