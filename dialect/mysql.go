package dialect

import "fmt"

// mysqlDialect serves both MySQL and MariaDB: the two vendors share
// CONCAT/CONV semantics and backtick quoting. MariaDB is kept as a
// distinct Vendor tag purely for reporting/telemetry purposes.
type mysqlDialect struct {
	vendor Vendor
}

func (d mysqlDialect) Vendor() Vendor { return d.vendor }

func (mysqlDialect) Quote(identifier string) string {
	return "`" + identifier + "`"
}

func (mysqlDialect) Concat(exprs ...string) string {
	return fmt.Sprintf("CONCAT(%s)", join(exprs, ", "))
}

func (mysqlDialect) ToHex(expr string) string {
	return fmt.Sprintf("UPPER(CONV(%s, 10, 16))", expr)
}

func (mysqlDialect) Lpad(expr string, length int, pad string) string {
	return fmt.Sprintf("LPAD(%s, %d, %s)", expr, length, pad)
}

func (mysqlDialect) RequiresMaterializedCTE() bool { return false }

// MySQL (and MariaDB before 10.3) have no NOWAIT on SELECT ... FOR
// UPDATE with the same guarantees as Postgres; recent MySQL does
// support it directly, so it is emitted and the caller treats a lock
// timeout error the same as LockUnavailable.
func (mysqlDialect) LockNowaitClause() string { return "FOR UPDATE NOWAIT" }

func (d mysqlDialect) UpdateFrom(table, cteHeader, baseSQL, recursiveSQL string, fields []string, cteAlias map[string]string) (string, bool) {
	quote := d.Quote
	set := setClause(fields, quote, func(f string) string {
		return fmt.Sprintf("(SELECT %s FROM tree_cte t WHERE t.id = %s.id)", cteSource("t", f, cteAlias), quote(table))
	})
	sql := fmt.Sprintf(`WITH RECURSIVE tree_cte %s AS (
	%s
	UNION ALL
	%s
)
UPDATE %s
SET %s
WHERE id IN (SELECT id FROM tree_cte);`, cteHeader, baseSQL, recursiveSQL, quote(table), set)
	return sql, true
}
