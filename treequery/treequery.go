// Package treequery builds and runs the raw SQL that answers the five
// tree relationships a node can be asked about: children, siblings,
// descendants, ancestors, and family (ancestors + descendants), plus
// the root lookup. It mirrors
// treenode/managers/queries.py::TreeQuery, translating its per-call
// raw SQL into gorm.DB.Raw/Exec calls against the materialized-path
// columns (_path, _depth, priority) instead of a closure table.
package treequery

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Relation names one of the tree relationships a node participates in.
type Relation string

const (
	Children    Relation = "children"
	Siblings    Relation = "siblings"
	Descendants Relation = "descendants"
	Ancestors   Relation = "ancestors"
	Family      Relation = "family"
	Root        Relation = "root"
)

// Mode selects what Relative returns: the full ordered id list, just
// the count, or just whether any row matched.
type Mode string

const (
	List  Mode = "list"
	Count Mode = "count"
	Exist Mode = "exist"
)

// Subject is the minimal information Query needs about the node a
// relationship is being computed for. Callers (treenode.Manager) fill
// this in from their own row rather than treequery depending on their
// struct type.
type Subject struct {
	ID       uint
	ParentID *uint
	Path     string
	Depth    int
}

// Query runs relationship lookups against one table.
type Query struct {
	db    *gorm.DB
	table string
}

// New returns a Query scoped to table, executed over db.
func New(db *gorm.DB, table string) *Query {
	return &Query{db: db, table: table}
}

type idRow struct {
	ID       uint
	Depth    int
	Priority uint32
}

// Children returns the ids of subject's direct children, ordered by
// priority. The subject itself is never included.
func (q *Query) Children(ctx context.Context, subject Subject) ([]uint, error) {
	var rows []idRow
	err := q.db.WithContext(ctx).Raw(
		fmt.Sprintf(`SELECT id, priority FROM %s WHERE parent_id = ? ORDER BY priority`, q.table),
		subject.ID,
	).Scan(&rows).Error
	return ids(rows), err
}

// Siblings returns the ids of nodes sharing subject's parent (or, for
// a root, sharing root status), ordered by priority. When includeSelf
// is true, subject's own id is included at its natural position.
func (q *Query) Siblings(ctx context.Context, subject Subject, includeSelf bool) ([]uint, error) {
	var sql string
	var args []any
	if subject.ParentID == nil {
		sql = fmt.Sprintf(`SELECT id, priority FROM %s WHERE parent_id IS NULL`, q.table)
	} else {
		sql = fmt.Sprintf(`SELECT id, priority FROM %s WHERE parent_id = ?`, q.table)
		args = append(args, *subject.ParentID)
	}
	if !includeSelf {
		sql += " AND id <> ?"
		args = append(args, subject.ID)
	}
	sql += " ORDER BY priority"

	var rows []idRow
	err := q.db.WithContext(ctx).Raw(sql, args...).Scan(&rows).Error
	return ids(rows), err
}

// Descendants returns the ids of every node whose path is a proper
// descendant of subject's path, ordered by depth then priority. When
// maxDepth is non-nil, only descendants within maxDepth levels below
// subject are included. includeSelf adds subject's own id.
func (q *Query) Descendants(ctx context.Context, subject Subject, includeSelf bool, maxDepth *int) ([]uint, error) {
	sql := fmt.Sprintf(`SELECT id, _depth, priority FROM %s WHERE _path LIKE ?`, q.table)
	args := []any{subject.Path + ".%"}
	if maxDepth != nil {
		sql += " AND _depth <= ?"
		args = append(args, subject.Depth+*maxDepth)
	}
	if includeSelf {
		sql = fmt.Sprintf(
			`SELECT * FROM (%s UNION ALL SELECT id, _depth, priority FROM %s WHERE id = ?) AS combined ORDER BY _depth, priority`,
			sql, q.table,
		)
		args = append(args, subject.ID)
	} else {
		sql += " ORDER BY _depth, priority"
	}

	var rows []idRow
	err := q.db.WithContext(ctx).Raw(sql, args...).Scan(&rows).Error
	return ids(rows), err
}

// Ancestors returns subject's ancestor ids ordered from the root down
// to and including subject's immediate parent, via a recursive walk up
// the parent_id chain. includeSelf appends subject's own id at the
// end.
func (q *Query) Ancestors(ctx context.Context, subject Subject, includeSelf bool) ([]uint, error) {
	sql := fmt.Sprintf(`WITH RECURSIVE ancestors_cte(id, lvl) AS (
		SELECT (SELECT parent_id FROM %s WHERE id = ?), 1
		UNION ALL
		SELECT p.parent_id, lvl + 1 FROM ancestors_cte a
		JOIN %s p ON p.id = a.id
		WHERE a.id IS NOT NULL
	)
	SELECT id, lvl AS depth, 0 AS priority FROM ancestors_cte WHERE id IS NOT NULL ORDER BY lvl DESC`, q.table, q.table)

	var rows []idRow
	if err := q.db.WithContext(ctx).Raw(sql, subject.ID).Scan(&rows).Error; err != nil {
		return nil, err
	}
	result := ids(rows)
	if includeSelf {
		result = append(result, subject.ID)
	}
	return result, nil
}

// Family returns the union of subject's real ancestors (walked via the
// parent_id chain, not a lexicographic path comparison) and its
// descendants, ordered by depth then priority. maxDepth limits how
// many levels below subject to include; it has no effect on the
// ancestor side.
func (q *Query) Family(ctx context.Context, subject Subject, includeSelf bool, maxDepth *int) ([]uint, error) {
	descendantCond := "_path LIKE ?"
	args := []any{subject.ID, subject.Path + ".%"}
	if maxDepth != nil {
		descendantCond += " AND _depth <= ?"
		args = append(args, subject.Depth+*maxDepth)
	}

	sql := fmt.Sprintf(`WITH RECURSIVE ancestors_cte(id) AS (
		SELECT parent_id FROM %s WHERE id = ?
		UNION ALL
		SELECT p.parent_id FROM ancestors_cte a
		JOIN %s p ON p.id = a.id
		WHERE a.id IS NOT NULL
	)
	SELECT id, _depth, priority FROM %s
	WHERE id IN (SELECT id FROM ancestors_cte WHERE id IS NOT NULL)
	   OR (%s)`, q.table, q.table, q.table, descendantCond)

	if includeSelf {
		sql = fmt.Sprintf(
			`SELECT * FROM (%s UNION ALL SELECT id, _depth, priority FROM %s WHERE id = ?) AS combined ORDER BY _depth, priority`,
			sql, q.table,
		)
		args = append(args, subject.ID)
	} else {
		sql += " ORDER BY _depth, priority"
	}

	var rows []idRow
	err := q.db.WithContext(ctx).Raw(sql, args...).Scan(&rows).Error
	return ids(rows), err
}

// Root returns the single-element id slice of subject's root ancestor,
// identified by the first segment of subject's path.
func (q *Query) Root(ctx context.Context, subject Subject, rootSegment string) ([]uint, error) {
	var rows []idRow
	err := q.db.WithContext(ctx).Raw(
		fmt.Sprintf(`SELECT id, priority FROM %s WHERE _path = ? ORDER BY priority`, q.table),
		rootSegment,
	).Scan(&rows).Error
	return ids(rows), err
}

// Relative dispatches to the relationship named by rel and reduces the
// result per mode: List returns the full id slice, Count its length as
// a single-element slice, Exist a 0/1-length slice signalling presence.
func (q *Query) Relative(ctx context.Context, rel Relation, subject Subject, includeSelf bool, maxDepth *int, mode Mode) ([]uint, error) {
	var result []uint
	var err error

	switch rel {
	case Children:
		result, err = q.Children(ctx, subject)
	case Siblings:
		result, err = q.Siblings(ctx, subject, includeSelf)
	case Descendants:
		result, err = q.Descendants(ctx, subject, includeSelf, maxDepth)
	case Ancestors:
		result, err = q.Ancestors(ctx, subject, includeSelf)
	case Family:
		result, err = q.Family(ctx, subject, includeSelf, maxDepth)
	case Root:
		rootSeg := subject.Path
		if idx := strings.IndexByte(rootSeg, '.'); idx >= 0 {
			rootSeg = rootSeg[:idx]
		}
		result, err = q.Root(ctx, subject, rootSeg)
	default:
		return nil, fmt.Errorf("treequery: unknown relationship %q", rel)
	}
	if err != nil {
		return nil, err
	}

	switch mode {
	case Count:
		return []uint{uint(len(result))}, nil
	case Exist:
		if len(result) > 0 {
			return []uint{1}, nil
		}
		return []uint{0}, nil
	default:
		return result, nil
	}
}

func ids(rows []idRow) []uint {
	out := make([]uint, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}
