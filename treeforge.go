// Package treeforge is the top-level facade over the engine: a host
// only needs this package and the sub-packages it re-exports (or
// treenode directly, for the fuller API) to store and query
// hierarchical data on top of a gorm.DB.
package treeforge

import (
	"gorm.io/gorm"

	"github.com/bumbu-labs/treeforge/treenode"
)

// Tree manages one table laid out as adjacency + materialized path,
// the engine's main entry point. It is an alias of treenode.Manager;
// see that package for the full method set (Save, Move, Delete,
// AddRoot/AddChild/AddSibling, Children/Descendants/Ancestors/...).
type Tree = treenode.Manager

// Node is the embeddable struct every tree-tracked item must carry.
type Node = treenode.Node

// Position is a symbolic placement (treenode.FirstChild, LastChild,
// ...) or an explicit sibling index via At(n).
type Position = treenode.Position

// Option configures a Tree at construction time.
type Option = treenode.Option

// New returns a Tree for item's table on db, migrating the table if
// it doesn't already exist. item must be a pointer to a struct
// embedding Node.
func New(db *gorm.DB, item any, opts ...Option) (*Tree, error) {
	return treenode.New(db, item, opts...)
}

// Symbolic positions, re-exported from treenode for callers that only
// import this package.
var (
	FirstRoot     = treenode.FirstRoot
	LastRoot      = treenode.LastRoot
	SortedRoot    = treenode.SortedRoot
	FirstSibling  = treenode.FirstSibling
	LeftSibling   = treenode.LeftSibling
	RightSibling  = treenode.RightSibling
	LastSibling   = treenode.LastSibling
	SortedSibling = treenode.SortedSibling
	FirstChild    = treenode.FirstChild
	LastChild     = treenode.LastChild
	SortedChild   = treenode.SortedChild
)

// At returns the explicit-priority Position n.
func At(n uint32) Position { return treenode.At(n) }

// Functional options, re-exported from treenode.
var (
	WithSegmentLength    = treenode.WithSegmentLength
	WithCacheLimit       = treenode.WithCacheLimit
	WithSortingField     = treenode.WithSortingField
	WithSortingDirection = treenode.WithSortingDirection
	WithVendor           = treenode.WithVendor
	WithLogger           = treenode.WithLogger
)
