package treenode

import "context"

// IsRoot reports whether id has no parent.
func (m *Manager) IsRoot(ctx context.Context, id uint) (bool, error) {
	r, err := m.loadRow(ctx, id)
	if err != nil {
		return false, err
	}
	return r.ParentID == nil, nil
}

// IsLeaf reports whether id has no children.
func (m *Manager) IsLeaf(ctx context.Context, id uint) (bool, error) {
	children, err := m.Children(ctx, id)
	if err != nil {
		return false, err
	}
	return len(children) == 0, nil
}

// IsAncestorOf reports whether id is an ancestor of other.
func (m *Manager) IsAncestorOf(ctx context.Context, id, other uint) (bool, error) {
	ancestors, err := m.Ancestors(ctx, other, false)
	if err != nil {
		return false, err
	}
	return contains(ancestors, id), nil
}

// IsDescendantOf reports whether id is a descendant of other.
func (m *Manager) IsDescendantOf(ctx context.Context, id, other uint) (bool, error) {
	descendants, err := m.Descendants(ctx, other, false, nil)
	if err != nil {
		return false, err
	}
	return contains(descendants, id), nil
}

// IsChildOf reports whether id's parent is other.
func (m *Manager) IsChildOf(ctx context.Context, id, other uint) (bool, error) {
	r, err := m.loadRow(ctx, id)
	if err != nil {
		return false, err
	}
	return r.ParentID != nil && *r.ParentID == other, nil
}

// IsParentOf reports whether id is other's parent.
func (m *Manager) IsParentOf(ctx context.Context, id, other uint) (bool, error) {
	return m.IsChildOf(ctx, other, id)
}

// IsSiblingOf reports whether id and other share a parent (or are both
// roots).
func (m *Manager) IsSiblingOf(ctx context.Context, id, other uint) (bool, error) {
	a, err := m.loadRow(ctx, id)
	if err != nil {
		return false, err
	}
	b, err := m.loadRow(ctx, other)
	if err != nil {
		return false, err
	}
	if a.ParentID == nil && b.ParentID == nil {
		return true, nil
	}
	if a.ParentID == nil || b.ParentID == nil {
		return false, nil
	}
	return *a.ParentID == *b.ParentID, nil
}

// IsRootOf reports whether id is other's root ancestor.
func (m *Manager) IsRootOf(ctx context.Context, id, other uint) (bool, error) {
	roots, err := m.Root(ctx, other)
	if err != nil {
		return false, err
	}
	return len(roots) > 0 && roots[0] == id, nil
}

// IsFirstChild reports whether id has priority 0 among its siblings.
func (m *Manager) IsFirstChild(ctx context.Context, id uint) (bool, error) {
	if err := m.flush(ctx); err != nil {
		return false, err
	}
	r, err := m.loadRow(ctx, id)
	if err != nil {
		return false, err
	}
	return r.Priority == 0, nil
}

// IsLastChild reports whether id is the last (highest-priority) among
// its siblings.
func (m *Manager) IsLastChild(ctx context.Context, id uint) (bool, error) {
	siblings, err := m.Siblings(ctx, id, true)
	if err != nil {
		return false, err
	}
	return len(siblings) > 0 && siblings[len(siblings)-1] == id, nil
}

func contains(ids []uint, target uint) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}
