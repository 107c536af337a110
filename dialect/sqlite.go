package dialect

import "fmt"

type sqliteDialect struct{}

func (sqliteDialect) Vendor() Vendor { return SQLite }

func (sqliteDialect) Quote(identifier string) string {
	return `"` + identifier + `"`
}

func (sqliteDialect) Concat(exprs ...string) string {
	return join(exprs, " || ")
}

func (sqliteDialect) ToHex(expr string) string {
	return fmt.Sprintf("UPPER(printf('%%x', %s))", expr)
}

func (sqliteDialect) Lpad(expr string, length int, pad string) string {
	// SQLite has no native LPAD, and its printf() ignores the '0' flag on
	// %s. printf('%Ns', expr) left-pads expr with spaces to width N, and
	// replace() turns those spaces into pad. Spaces inside expr itself
	// would be replaced as well.
	return fmt.Sprintf("replace(printf('%%%ds', %s), ' ', %s)", length, expr, pad)
}

// RequiresMaterializedCTE reports true: SQLite cannot UPDATE a table
// while a recursive CTE referencing that same table is still being
// evaluated in the same statement, so the CTE must be materialized into
// a temp table first, then a correlated sub-UPDATE reads from it.
func (sqliteDialect) RequiresMaterializedCTE() bool { return true }

// SQLite has no server-side row locking; writers are already serialized
// at the connection/file level (journal mode), so NOWAIT is a no-op.
func (sqliteDialect) LockNowaitClause() string { return "" }

func (d sqliteDialect) UpdateFrom(table, cteHeader, baseSQL, recursiveSQL string, fields []string, cteAlias map[string]string) (string, bool) {
	quote := d.Quote
	tmp := "tree_cte_tmp"
	set := setClause(fields, quote, func(f string) string {
		return fmt.Sprintf("(SELECT %s FROM %s t WHERE t.id = %s.id)", cteSource("t", f, cteAlias), tmp, quote(table))
	})
	sql := fmt.Sprintf(`DROP TABLE IF EXISTS %s;
CREATE TEMP TABLE %s AS
WITH RECURSIVE tree_cte %s AS (
	%s
	UNION ALL
	%s
)
SELECT * FROM tree_cte;
UPDATE %s
SET %s
WHERE id IN (SELECT id FROM %s);
DROP TABLE %s;`, tmp, tmp, cteHeader, baseSQL, recursiveSQL, quote(table), set, tmp, tmp)
	return sql, true
}
