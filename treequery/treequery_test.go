package treequery

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type testRow struct {
	ID       uint   `gorm:"primaryKey"`
	ParentID *uint  `gorm:"column:parent_id"`
	Priority uint32 `gorm:"column:priority"`
	Path     string `gorm:"column:_path"`
	Depth    int    `gorm:"column:_depth"`
}

func (testRow) TableName() string { return "test_nodes" }

// seedTree builds:
//
//	1 (root "000")
//	├─ 2 (000.000)
//	│  └─ 4 (000.000.000)
//	└─ 3 (000.001)
func seedTree(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&testRow{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	rows := []testRow{
		{ID: 1, ParentID: nil, Priority: 0, Path: "000", Depth: 0},
		{ID: 2, ParentID: ptr(uint(1)), Priority: 0, Path: "000.000", Depth: 1},
		{ID: 3, ParentID: ptr(uint(1)), Priority: 1, Path: "000.001", Depth: 1},
		{ID: 4, ParentID: ptr(uint(2)), Priority: 0, Path: "000.000.000", Depth: 2},
	}
	for _, r := range rows {
		if err := db.Create(&r).Error; err != nil {
			t.Fatalf("seed row %d: %v", r.ID, err)
		}
	}
	return db
}

func ptr[T any](v T) *T { return &v }

func TestQueryChildren(t *testing.T) {
	db := seedTree(t)
	q := New(db, "test_nodes")

	got, err := q.Children(context.Background(), Subject{ID: 1})
	if err != nil {
		t.Fatal(err)
	}
	want := []uint{2, 3}
	assertIDs(t, got, want)
}

func TestQuerySiblings(t *testing.T) {
	db := seedTree(t)
	q := New(db, "test_nodes")

	subj := Subject{ID: 2, ParentID: ptr(uint(1))}

	withSelf, err := q.Siblings(context.Background(), subj, true)
	if err != nil {
		t.Fatal(err)
	}
	assertIDs(t, withSelf, []uint{2, 3})

	withoutSelf, err := q.Siblings(context.Background(), subj, false)
	if err != nil {
		t.Fatal(err)
	}
	assertIDs(t, withoutSelf, []uint{3})
}

func TestQueryDescendants(t *testing.T) {
	db := seedTree(t)
	q := New(db, "test_nodes")

	subj := Subject{ID: 1, Path: "000", Depth: 0}

	all, err := q.Descendants(context.Background(), subj, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	assertIDs(t, all, []uint{2, 3, 4})

	withSelf, err := q.Descendants(context.Background(), subj, true, nil)
	if err != nil {
		t.Fatal(err)
	}
	assertIDs(t, withSelf, []uint{1, 2, 3, 4})

	oneLevel := 1
	limited, err := q.Descendants(context.Background(), subj, false, &oneLevel)
	if err != nil {
		t.Fatal(err)
	}
	assertIDs(t, limited, []uint{2, 3})
}

func TestQueryAncestors(t *testing.T) {
	db := seedTree(t)
	q := New(db, "test_nodes")

	subj := Subject{ID: 4}

	got, err := q.Ancestors(context.Background(), subj, false)
	if err != nil {
		t.Fatal(err)
	}
	assertIDs(t, got, []uint{1, 2})

	withSelf, err := q.Ancestors(context.Background(), subj, true)
	if err != nil {
		t.Fatal(err)
	}
	assertIDs(t, withSelf, []uint{1, 2, 4})
}

func TestQueryFamily(t *testing.T) {
	db := seedTree(t)
	q := New(db, "test_nodes")

	subj := Subject{ID: 2, Path: "000.000", Depth: 1}

	got, err := q.Family(context.Background(), subj, true, nil)
	if err != nil {
		t.Fatal(err)
	}
	assertIDs(t, got, []uint{1, 2, 4})
}

// TestQueryFamilyNonFirstSibling guards against a lexicographic-path
// shortcut for the ancestor side: node 3 ("000.001") sorts after its
// sibling 2 ("000.000") and 2's child 4 ("000.000.000"), so a buggy
// "_path < subject.Path" ancestor check would wrongly pull both of
// those in as family even though neither is an ancestor of 3.
func TestQueryFamilyNonFirstSibling(t *testing.T) {
	db := seedTree(t)
	q := New(db, "test_nodes")

	subj := Subject{ID: 3, Path: "000.001", Depth: 1}

	got, err := q.Family(context.Background(), subj, true, nil)
	if err != nil {
		t.Fatal(err)
	}
	assertIDs(t, got, []uint{1, 3})
}

func TestQueryRoot(t *testing.T) {
	db := seedTree(t)
	q := New(db, "test_nodes")

	subj := Subject{ID: 4, Path: "000.000.000"}
	got, err := q.Relative(context.Background(), Root, subj, false, nil, List)
	if err != nil {
		t.Fatal(err)
	}
	assertIDs(t, got, []uint{1})
}

func TestQueryRelativeModes(t *testing.T) {
	db := seedTree(t)
	q := New(db, "test_nodes")
	subj := Subject{ID: 1, Path: "000", Depth: 0}

	count, err := q.Relative(context.Background(), Descendants, subj, false, nil, Count)
	if err != nil {
		t.Fatal(err)
	}
	if len(count) != 1 || count[0] != 3 {
		t.Errorf("Count = %v, want [3]", count)
	}

	exist, err := q.Relative(context.Background(), Descendants, subj, false, nil, Exist)
	if err != nil {
		t.Fatal(err)
	}
	if len(exist) != 1 || exist[0] != 1 {
		t.Errorf("Exist = %v, want [1]", exist)
	}
}

func assertIDs(t *testing.T, got, want []uint) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
