package dialect

import "fmt"

type postgresDialect struct{}

func (postgresDialect) Vendor() Vendor { return Postgres }

func (postgresDialect) Quote(identifier string) string {
	return `"` + identifier + `"`
}

func (postgresDialect) Concat(exprs ...string) string {
	return join(exprs, " || ")
}

func (postgresDialect) ToHex(expr string) string {
	return fmt.Sprintf("UPPER(TO_HEX(%s))", expr)
}

func (d postgresDialect) Lpad(expr string, length int, pad string) string {
	return fmt.Sprintf("LPAD(%s, %d, %s)", expr, length, pad)
}

func (d postgresDialect) RequiresMaterializedCTE() bool { return false }

func (d postgresDialect) LockNowaitClause() string { return "FOR UPDATE NOWAIT" }

func (d postgresDialect) UpdateFrom(table, cteHeader, baseSQL, recursiveSQL string, fields []string, cteAlias map[string]string) (string, bool) {
	quote := d.Quote
	set := setClause(fields, quote, func(f string) string {
		return cteSource("t", f, cteAlias)
	})
	sql := fmt.Sprintf(`WITH RECURSIVE tree_cte %s AS (
	%s
	UNION ALL
	%s
)
UPDATE %s AS orig
SET %s
FROM tree_cte t
WHERE orig.id = t.id;`, cteHeader, baseSQL, recursiveSQL, quote(table), set)
	return sql, true
}

func join(parts []string, sep string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += sep
		}
		out += p
	}
	return out
}
