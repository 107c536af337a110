package pathcompiler

import (
	"strings"
	"testing"

	"github.com/bumbu-labs/treeforge/dialect"
)

func TestCompileFullForestRebuild(t *testing.T) {
	pg, err := dialect.For("postgresql")
	if err != nil {
		t.Fatal(err)
	}
	sql, args := Compile(pg, Options{Table: "nodes", SegmentLength: 3}, nil)

	if len(args) != 0 {
		t.Fatalf("full rebuild should take no args, got %v", args)
	}
	if !strings.Contains(sql, `c.parent_id IS NULL`) {
		t.Errorf("expected root anchor clause, got:\n%s", sql)
	}
	if !strings.Contains(sql, "0 AS new_depth") {
		t.Errorf("expected root depth 0, got:\n%s", sql)
	}
	if !strings.Contains(sql, `UPDATE "nodes" AS orig`) {
		t.Errorf("expected postgres UPDATE...FROM shape, got:\n%s", sql)
	}
}

func TestCompileSubtreeRebuild(t *testing.T) {
	pg, _ := dialect.For("postgresql")
	pid := uint(7)
	sql, args := Compile(pg, Options{Table: "nodes", SegmentLength: 3}, &pid)

	if len(args) != 1 || args[0] != uint(7) {
		t.Fatalf("expected [7] args, got %v", args)
	}
	if !strings.Contains(sql, "WHERE p.id = ?") {
		t.Errorf("expected parent seed placeholder, got:\n%s", sql)
	}
	if !strings.Contains(sql, `p._path || '.'`) {
		t.Errorf("expected path concatenation with parent path, got:\n%s", sql)
	}
	if !strings.Contains(sql, "p._depth + 1 AS new_depth") {
		t.Errorf("expected depth seeded from parent, got:\n%s", sql)
	}
}

func TestCompileDescendingSortReversesSortFieldOnly(t *testing.T) {
	pg, _ := dialect.For("postgresql")
	sqlAsc, _ := Compile(pg, Options{Table: "nodes", SegmentLength: 3, Direction: Asc}, nil)
	sqlDesc, _ := Compile(pg, Options{Table: "nodes", SegmentLength: 3, Direction: Desc}, nil)

	// the direction must bind to the sort field itself, not just the id
	// tiebreaker, otherwise WithSortingDirection(Desc) never reverses
	// sibling numbering.
	if !strings.Contains(sqlAsc, "ORDER BY c.priority ASC, c.id") {
		t.Errorf("expected ASC order by on priority, got:\n%s", sqlAsc)
	}
	if !strings.Contains(sqlDesc, "ORDER BY c.priority DESC, c.id") {
		t.Errorf("expected DESC order by on priority, got:\n%s", sqlDesc)
	}
	if strings.Contains(sqlAsc, "c.id ASC") || strings.Contains(sqlAsc, "c.id DESC") {
		t.Errorf("id tiebreaker should carry no direction of its own, got:\n%s", sqlAsc)
	}
	// numbering expression itself (ROW_NUMBER() ... - 1) is identical in
	// shape between the two; only the ORDER BY direction differs.
	if !strings.Contains(sqlAsc, "ROW_NUMBER() OVER (ORDER BY c.priority ASC, c.id) - 1") {
		t.Errorf("unexpected row-number expression, got:\n%s", sqlAsc)
	}
}

func TestCompileCustomSortField(t *testing.T) {
	pg, _ := dialect.For("postgresql")
	sql, _ := Compile(pg, Options{Table: "nodes", SegmentLength: 3, SortField: "name"}, nil)
	if !strings.Contains(sql, "ORDER BY c.name ASC, c.id") {
		t.Errorf("expected custom sort field with id tiebreak, got:\n%s", sql)
	}
}

func TestCompilePerVendorShape(t *testing.T) {
	vendors := []string{"postgresql", "mysql", "sqlite", "mssql", "oracle"}
	for _, v := range vendors {
		d, err := dialect.For(v)
		if err != nil {
			t.Fatal(err)
		}
		sql, _ := Compile(d, Options{Table: "nodes", SegmentLength: 3}, nil)
		if sql == "" {
			t.Errorf("%s: empty SQL", v)
		}
		if !strings.Contains(sql, "new_priority") {
			t.Errorf("%s: missing new_priority projection:\n%s", v, sql)
		}
	}
}
