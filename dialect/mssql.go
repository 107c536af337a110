package dialect

import "fmt"

type mssqlDialect struct{}

func (mssqlDialect) Vendor() Vendor { return SQLServer }

func (mssqlDialect) Quote(identifier string) string {
	return "[" + identifier + "]"
}

func (mssqlDialect) Concat(exprs ...string) string {
	return join(exprs, " + ")
}

func (mssqlDialect) ToHex(expr string) string {
	return fmt.Sprintf("UPPER(CONVERT(VARCHAR(64), CAST(%s AS VARBINARY(8)), 2))", expr)
}

func (mssqlDialect) Lpad(expr string, length int, pad string) string {
	return fmt.Sprintf("RIGHT(REPLICATE(%s, %d) + %s, %d)", pad, length, expr, length)
}

func (mssqlDialect) RequiresMaterializedCTE() bool { return false }

func (mssqlDialect) LockNowaitClause() string { return "WITH (UPDLOCK, NOWAIT)" }

func (d mssqlDialect) UpdateFrom(table, cteHeader, baseSQL, recursiveSQL string, fields []string, cteAlias map[string]string) (string, bool) {
	quote := d.Quote
	set := setClause(fields, quote, func(f string) string {
		return cteSource("t", f, cteAlias)
	})
	sql := fmt.Sprintf(`WITH tree_cte %s AS (
	%s
	UNION ALL
	%s
)
UPDATE orig
SET %s
FROM %s AS orig
JOIN tree_cte t ON orig.id = t.id;`, cteHeader, baseSQL, recursiveSQL, set, quote(table))
	return sql, true
}
