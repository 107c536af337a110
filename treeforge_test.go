package treeforge_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/go-bumbu/testdbs"

	"github.com/bumbu-labs/treeforge"
)

// TestMain boots the shared DB matrix (sqlite, and — unless SKIP_MYSQL
// / SKIP_POSTGRES / -short is set — containerized MySQL and Postgres)
// and tears it down once every test has run.
func TestMain(m *testing.M) {
	testdbs.InitDBS()
	code := m.Run()
	_ = testdbs.Clean()
	os.Exit(code)
}

type vendorItem struct {
	treeforge.Node
	Name string
}

// TestCRUDAcrossVendors exercises the core Save/Move/Delete/traversal
// surface against every registered database, so the same materialized
// path and rebuild SQL are proven correct under each dialect rather
// than only against SQLite.
func TestCRUDAcrossVendors(t *testing.T) {
	for _, db := range testdbs.DBs() {
		db := db
		t.Run(db.DbType(), func(t *testing.T) {
			conn := db.ConnDbName(fmt.Sprintf("treeforge_%s", t.Name()))
			tree, err := treeforge.New(conn, &vendorItem{})
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			ctx := context.Background()

			root := &vendorItem{Name: "root"}
			if err := tree.AddRoot(ctx, root, treeforge.LastRoot); err != nil {
				t.Fatalf("AddRoot: %v", err)
			}

			a := &vendorItem{Name: "a"}
			if err := tree.AddChild(ctx, a, root.ID, treeforge.LastChild); err != nil {
				t.Fatalf("AddChild a: %v", err)
			}
			b := &vendorItem{Name: "b"}
			if err := tree.AddChild(ctx, b, root.ID, treeforge.LastChild); err != nil {
				t.Fatalf("AddChild b: %v", err)
			}

			children, err := tree.Children(ctx, root.ID)
			if err != nil {
				t.Fatalf("Children: %v", err)
			}
			if len(children) != 2 {
				t.Fatalf("children = %v, want 2 entries", children)
			}

			if err := tree.Move(ctx, b.ID, &a.ID, treeforge.LastChild); err != nil {
				t.Fatalf("Move: %v", err)
			}
			bIsChildOfA, err := tree.IsChildOf(ctx, b.ID, a.ID)
			if err != nil {
				t.Fatalf("IsChildOf: %v", err)
			}
			if !bIsChildOfA {
				t.Fatal("b should be a's child after Move")
			}

			if err := tree.Delete(ctx, root.ID, true); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := tree.Children(ctx, root.ID); err == nil {
				t.Fatal("root should be gone after cascade delete")
			}
		})
	}
}
