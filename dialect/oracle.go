package dialect

import "fmt"

type oracleDialect struct{}

func (oracleDialect) Vendor() Vendor { return Oracle }

func (oracleDialect) Quote(identifier string) string {
	return `"` + identifier + `"`
}

func (oracleDialect) Concat(exprs ...string) string {
	return join(exprs, " || ")
}

func (oracleDialect) ToHex(expr string) string {
	return fmt.Sprintf("UPPER(TRIM(TO_CHAR(%s, 'XXXXXXXXXXXXXXXX')))", expr)
}

func (oracleDialect) Lpad(expr string, length int, pad string) string {
	return fmt.Sprintf("LPAD(%s, %d, %s)", expr, length, pad)
}

func (oracleDialect) RequiresMaterializedCTE() bool { return false }

func (oracleDialect) LockNowaitClause() string { return "FOR UPDATE NOWAIT" }

func (d oracleDialect) UpdateFrom(table, cteHeader, baseSQL, recursiveSQL string, fields []string, cteAlias map[string]string) (string, bool) {
	quote := d.Quote
	set := setClause(fields, quote, func(f string) string {
		return cteSource("t", f, cteAlias)
	})
	sql := fmt.Sprintf(`WITH tree_cte %s AS (
	%s
	UNION ALL
	%s
)
MERGE INTO %s orig
USING tree_cte t
ON (orig.id = t.id)
WHEN MATCHED THEN UPDATE SET
	%s;`, cteHeader, baseSQL, recursiveSQL, quote(table), set)
	return sql, true
}
