// Package treenode is the node-level API of the tree-storage engine:
// Manager wraps one gorm.DB table laid out as adjacency + materialized
// path (parent_id, priority, _path, _depth) and exposes New, per-node
// mutation, and relationship accessors over it.
package treenode

// Node is the embeddable struct every tree-backed row must carry: an
// autoincrement id, a nullable parent reference, a sibling priority,
// and the materialized path/depth the rebuild keeps current.
type Node struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	ParentID *uint  `gorm:"column:parent_id" json:"parentId"`
	Priority uint32 `gorm:"column:priority;not null" json:"priority"`
	Path     string `gorm:"column:_path;size:1024" json:"-"`
	Depth    int    `gorm:"column:_depth" json:"-"`
}
