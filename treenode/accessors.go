package treenode

import (
	"context"

	"github.com/bumbu-labs/treeforge/treequery"
)

func (m *Manager) subject(ctx context.Context, id uint) (treequery.Subject, error) {
	if err := m.flush(ctx); err != nil {
		return treequery.Subject{}, err
	}
	r, err := m.loadRow(ctx, id)
	if err != nil {
		return treequery.Subject{}, err
	}
	return treequery.Subject{ID: r.ID, ParentID: r.ParentID, Path: r.Path, Depth: r.Depth}, nil
}

// Children returns the ids of id's direct children, ordered by priority.
func (m *Manager) Children(ctx context.Context, id uint) ([]uint, error) {
	subj, err := m.subject(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.query.Children(ctx, subj)
}

// Siblings returns the ids of nodes sharing id's parent, ordered by
// priority. includeSelf adds id's own entry at its natural position.
func (m *Manager) Siblings(ctx context.Context, id uint, includeSelf bool) ([]uint, error) {
	subj, err := m.subject(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.query.Siblings(ctx, subj, includeSelf)
}

// Descendants returns the ids of every node under id, ordered by depth
// then priority. maxDepth, when non-nil, bounds how many levels below
// id to include.
func (m *Manager) Descendants(ctx context.Context, id uint, includeSelf bool, maxDepth *int) ([]uint, error) {
	subj, err := m.subject(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.query.Descendants(ctx, subj, includeSelf, maxDepth)
}

// Ancestors returns id's ancestor ids, ordered from the root down to
// and including id's immediate parent. includeSelf appends id's own id
// at the end.
func (m *Manager) Ancestors(ctx context.Context, id uint, includeSelf bool) ([]uint, error) {
	subj, err := m.subject(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.query.Ancestors(ctx, subj, includeSelf)
}

// Family returns the union of id's ancestors and descendants, ordered
// by depth then priority.
func (m *Manager) Family(ctx context.Context, id uint, includeSelf bool, maxDepth *int) ([]uint, error) {
	subj, err := m.subject(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.query.Family(ctx, subj, includeSelf, maxDepth)
}

// Root returns the single-element id slice of id's root ancestor (id
// itself, if it is already a root).
func (m *Manager) Root(ctx context.Context, id uint) ([]uint, error) {
	subj, err := m.subject(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.query.Relative(ctx, treequery.Root, subj, false, nil, treequery.List)
}

// Depth returns id's distance from its root (0 for a root).
func (m *Manager) Depth(ctx context.Context, id uint) (int, error) {
	if err := m.flush(ctx); err != nil {
		return 0, err
	}
	r, err := m.loadRow(ctx, id)
	if err != nil {
		return 0, err
	}
	return r.Depth, nil
}

// Level returns id's level, 1-based (Depth + 1).
func (m *Manager) Level(ctx context.Context, id uint) (int, error) {
	depth, err := m.Depth(ctx, id)
	if err != nil {
		return 0, err
	}
	return depth + 1, nil
}

// Index returns id's position among its siblings (its priority).
func (m *Manager) Index(ctx context.Context, id uint) (uint32, error) {
	if err := m.flush(ctx); err != nil {
		return 0, err
	}
	r, err := m.loadRow(ctx, id)
	if err != nil {
		return 0, err
	}
	return r.Priority, nil
}

// Breadcrumbs returns id's ancestor ids ordered from the root down to
// id's immediate parent (equivalent to Ancestors(ctx, id, false)).
func (m *Manager) Breadcrumbs(ctx context.Context, id uint) ([]uint, error) {
	return m.Ancestors(ctx, id, false)
}

// DistanceTo returns the number of edges on the shortest path between
// a and b, walking up to their lowest common ancestor and back down.
func (m *Manager) DistanceTo(ctx context.Context, a, b uint) (int, error) {
	aPath, err := m.Ancestors(ctx, a, true)
	if err != nil {
		return 0, err
	}
	bPath, err := m.Ancestors(ctx, b, true)
	if err != nil {
		return 0, err
	}
	i := commonPrefixLen(aPath, bPath)
	return (len(aPath) - i) + (len(bPath) - i), nil
}

// ShortestPath returns the id sequence from a to b via their lowest
// common ancestor.
func (m *Manager) ShortestPath(ctx context.Context, a, b uint) ([]uint, error) {
	aPath, err := m.Ancestors(ctx, a, true)
	if err != nil {
		return nil, err
	}
	bPath, err := m.Ancestors(ctx, b, true)
	if err != nil {
		return nil, err
	}
	i := commonPrefixLen(aPath, bPath)

	up := make([]uint, 0, len(aPath)-i)
	for j := len(aPath) - 1; j >= i; j-- {
		up = append(up, aPath[j])
	}
	down := bPath[max(i-1, 0):]
	return append(up, down...), nil
}

func commonPrefixLen(a, b []uint) int {
	i := 0
	for i < len(a) && i < len(b) && a[i] == b[i] {
		i++
	}
	return i
}
