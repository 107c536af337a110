// Package treebulk adds level-synchronous bulk import/export on top of
// a treenode.Manager: BulkCreate/BulkUpdate for flat batches, and
// DumpTree/LoadTree for whole-subtree JSON-shaped payloads.
//
// LoadTree persists a payload level by level (parents before children)
// so a freshly-created parent's real id is known before its children
// are written, then triggers exactly one rebuild and one cache
// invalidation for the whole batch — the bulk counterpart to the
// per-call rebuild Manager.Save does for single nodes.
package treebulk

import (
	"context"
	"errors"
	"fmt"

	"github.com/bumbu-labs/treeforge/internal/reflectutil"
	"github.com/bumbu-labs/treeforge/treeerr"
	"github.com/bumbu-labs/treeforge/treenode"
)

// Node is one entry in a Forest: an item plus its children, used for
// both DumpTree's output and LoadTree's input.
type Node[T any] struct {
	Item     *T        `json:"item"`
	Children []*Node[T] `json:"children,omitempty"`
}

// Forest is an ordered list of tree roots.
type Forest[T any] []*Node[T]

// BulkCreate inserts items directly (bypassing Save's per-row sibling
// shift) and triggers one rebuild afterward. Callers are responsible
// for giving each item a ParentID/Priority that doesn't need
// shifting — typically sequential priorities starting from the
// current sibling count.
func BulkCreate[T any](ctx context.Context, m *treenode.Manager, items []*T) error {
	roots := map[string]*uint{}
	for _, item := range items {
		if err := m.DB().WithContext(ctx).Create(item).Error; err != nil {
			return fmt.Errorf("treebulk: create: %w", err)
		}
		f, err := reflectutil.GetFields(item)
		if err != nil {
			return err
		}
		roots[rootKey(f.ParentID)] = f.ParentID
	}
	for _, parentID := range roots {
		m.EnqueueRebuild(parentID)
	}
	m.InvalidateCache()
	return m.Flush(ctx)
}

// BulkUpdate saves every item directly and triggers one rebuild
// afterward.
func BulkUpdate[T any](ctx context.Context, m *treenode.Manager, items []*T) error {
	roots := map[string]*uint{}
	for _, item := range items {
		f, err := reflectutil.GetFields(item)
		if err != nil {
			return err
		}
		if err := m.DB().WithContext(ctx).Save(item).Error; err != nil {
			return fmt.Errorf("treebulk: update: %w", err)
		}
		roots[rootKey(f.ParentID)] = f.ParentID
	}
	for _, parentID := range roots {
		m.EnqueueRebuild(parentID)
	}
	m.InvalidateCache()
	return m.Flush(ctx)
}

// DumpTree reads every row under rootID (or the whole table, when
// rootID is nil) ordered by materialized path, and reassembles it into
// a Forest using each row's ParentID.
func DumpTree[T any](ctx context.Context, m *treenode.Manager, rootID *uint) (Forest[T], error) {
	q := m.DB().WithContext(ctx).Table(m.TableName()).Order("_path")
	if rootID != nil {
		path, err := m.Path(ctx, *rootID)
		if err != nil {
			return nil, err
		}
		q = q.Where("_path = ? OR _path LIKE ?", path, path+".%")
	}

	var rows []T
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("treebulk: dump: %w", err)
	}

	byID := make(map[uint]*Node[T], len(rows))
	var forest Forest[T]
	for i := range rows {
		item := &rows[i]
		f, err := reflectutil.GetFields(item)
		if err != nil {
			return nil, err
		}
		node := &Node[T]{Item: item}
		byID[f.ID] = node

		parent, hasParent := (*Node[T])(nil), false
		if f.ParentID != nil {
			parent, hasParent = byID[*f.ParentID]
		}
		if hasParent {
			parent.Children = append(parent.Children, node)
		} else {
			// Either a true root, or the root of the requested subtree
			// (its real parent lies outside the fetched rows).
			forest = append(forest, node)
		}
	}
	return forest, nil
}

// LoadTree persists forest level by level: each node is created (when
// its Item's id is zero) or updated (otherwise), its children's
// ParentID is then set to its freshly-known real id, and the next
// level is processed the same way. A root node whose ParentID already
// points elsewhere must reference an existing row; anything else
// yields ErrInvalidTreeData, as does a Node reached twice while walking
// the forest (a cycle). One rebuild and one cache invalidation run
// after the whole forest lands.
func LoadTree[T any](ctx context.Context, m *treenode.Manager, forest Forest[T]) error {
	seen := make(map[*Node[T]]struct{})
	level := forest
	for depth := 0; len(level) > 0; depth++ {
		var next Forest[T]
		for _, node := range level {
			if _, dup := seen[node]; dup {
				return treeerr.ErrInvalidTreeData
			}
			seen[node] = struct{}{}

			f, err := reflectutil.GetFields(node.Item)
			if err != nil {
				return err
			}

			if depth == 0 && f.ParentID != nil {
				if _, err := m.Path(ctx, *f.ParentID); err != nil {
					if errors.Is(err, treeerr.ErrNodeNotFound) {
						return treeerr.ErrInvalidTreeData
					}
					return err
				}
			}

			if f.ID == 0 {
				if err := m.DB().WithContext(ctx).Create(node.Item).Error; err != nil {
					return fmt.Errorf("treebulk: load: %w", err)
				}
			} else if err := m.DB().WithContext(ctx).Save(node.Item).Error; err != nil {
				return fmt.Errorf("treebulk: load: %w", err)
			}

			real, err := reflectutil.GetFields(node.Item)
			if err != nil {
				return err
			}
			m.EnqueueRebuild(real.ParentID)

			for _, child := range node.Children {
				cf, err := reflectutil.GetFields(child.Item)
				if err != nil {
					return err
				}
				cf.ParentID = &real.ID
				if err := reflectutil.SetFields(child.Item, cf); err != nil {
					return err
				}
			}
			next = append(next, node.Children...)
		}
		level = next
	}

	m.InvalidateCache()
	return m.Flush(ctx)
}

func rootKey(parentID *uint) string {
	if parentID == nil {
		return "root"
	}
	return fmt.Sprintf("%d", *parentID)
}
