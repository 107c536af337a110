// Package pathcompiler emits the single recursive-CTE SQL statement
// that rebuilds priority, _path, and _depth for a subtree (or the whole
// forest) in one round trip, numbering every row with one ROW_NUMBER()
// pass instead of issuing one UPDATE per depth level.
package pathcompiler

import (
	"fmt"

	"github.com/bumbu-labs/treeforge/dialect"
)

// SortDirection selects ascending or descending sibling ordering for
// the rebuild. Numbering always starts at 0 regardless of direction;
// DESC only reverses which sibling gets priority 0.
type SortDirection string

const (
	Asc  SortDirection = "ASC"
	Desc SortDirection = "DESC"
)

// Options configures a rebuild.
type Options struct {
	// Table is the quoted-free table name; the compiler quotes it via
	// the supplied Dialect.
	Table string
	// SegmentLength is the materialized-path segment width (§3).
	SegmentLength int
	// SortField is the column ORDER BY uses to number siblings.
	// Defaults to "priority" when empty.
	SortField string
	// Direction is the sort direction for SortField.
	Direction SortDirection
}

func (o Options) sortField() string {
	if o.SortField == "" {
		return "priority"
	}
	return o.SortField
}

func (o Options) direction() SortDirection {
	if o.Direction == "" {
		return Asc
	}
	return o.Direction
}

// cteAlias maps the destination columns back to the CTE columns that
// carry their rebuilt values.
var cteAlias = map[string]string{
	"priority": "new_priority",
	"_path":    "new_path",
	"_depth":   "new_depth",
}

var updateFields = []string{"priority", "_path", "_depth"}

// Compile builds the rebuild statement for the subtree rooted at
// parentID's children (parentID's own row is read but never rewritten),
// or for the whole forest when parentID is nil.
//
// When parentID is non-nil, the returned args are ordered for the
// placeholders the base SELECT introduces (the parent id), matching the
// positional parameters gorm's Exec/Raw expects.
func Compile(dia dialect.Dialect, opts Options, parentID *uint) (string, []any) {
	dir := string(opts.direction())
	sortExpr := fmt.Sprintf("c.%s %s, c.id", opts.sortField(), dir)
	if opts.sortField() == "id" {
		sortExpr = fmt.Sprintf("c.id %s", dir)
	}

	table := dia.Quote(opts.Table)

	anchorRowNumber := fmt.Sprintf("ROW_NUMBER() OVER (ORDER BY %s) - 1", sortExpr)
	anchorSegment := dia.Lpad(dia.ToHex(anchorRowNumber), opts.SegmentLength, "'0'")

	recursiveRowNumber := fmt.Sprintf("ROW_NUMBER() OVER (PARTITION BY c.parent_id ORDER BY %s) - 1", sortExpr)
	recursiveSegment := dia.Lpad(dia.ToHex(recursiveRowNumber), opts.SegmentLength, "'0'")

	var baseSQL string
	var args []any

	if parentID == nil {
		baseSQL = fmt.Sprintf(`SELECT
		c.id,
		c.parent_id,
		%s AS new_priority,
		%s AS new_path,
		0 AS new_depth
	FROM %s AS c
	WHERE c.parent_id IS NULL`, anchorRowNumber, anchorSegment, table)
	} else {
		newPath := dia.Concat("p._path", "'.'", anchorSegment)
		baseSQL = fmt.Sprintf(`SELECT
		c.id,
		c.parent_id,
		%s AS new_priority,
		%s AS new_path,
		p._depth + 1 AS new_depth
	FROM %s AS c
	JOIN %s AS p ON c.parent_id = p.id
	WHERE p.id = ?`, anchorRowNumber, newPath, table, table)
		args = append(args, *parentID)
	}

	recursivePath := dia.Concat("t.new_path", "'.'", recursiveSegment)
	recursiveSQL := fmt.Sprintf(`SELECT
		c.id,
		c.parent_id,
		%s AS new_priority,
		%s AS new_path,
		t.new_depth + 1 AS new_depth
	FROM %s AS c
	JOIN tree_cte t ON c.parent_id = t.id`, recursiveRowNumber, recursivePath, table)

	cteHeader := "(id, parent_id, new_priority, new_path, new_depth)"

	sql, _ := dia.UpdateFrom(opts.Table, cteHeader, baseSQL, recursiveSQL, updateFields, cteAlias)
	return sql, args
}
