package treenode

import "github.com/bumbu-labs/treeforge/treeerr"

type positionKind int

const (
	kindFirstRoot positionKind = iota
	kindLastRoot
	kindSortedRoot
	kindFirstSibling
	kindLeftSibling
	kindRightSibling
	kindLastSibling
	kindSortedSibling
	kindFirstChild
	kindLastChild
	kindSortedChild
	kindPriority
)

// Position names where, relative to a target node, a moved or newly
// added node should land. The zero value is invalid; use one of the
// package-level Positions or At(n) to build one.
type Position struct {
	kind   positionKind
	n      uint32
	isZero bool
}

var (
	// FirstRoot places the node as the first root (no parent).
	FirstRoot = Position{kind: kindFirstRoot}
	// LastRoot places the node as the last root (no parent).
	LastRoot = Position{kind: kindLastRoot}
	// SortedRoot places the node among the roots, ordered by the
	// Manager's configured sorting field rather than insertion order.
	// It is inserted at priority 0, the same placement as FirstRoot, and
	// the next rebuild orders it by that field; with the default
	// sorting field (priority) it therefore stays first.
	SortedRoot = Position{kind: kindSortedRoot}

	// FirstSibling places the node before target, as target's
	// parent's first child.
	FirstSibling = Position{kind: kindFirstSibling}
	// LeftSibling places the node immediately before target.
	LeftSibling = Position{kind: kindLeftSibling}
	// RightSibling places the node immediately after target.
	RightSibling = Position{kind: kindRightSibling}
	// LastSibling places the node after target, as target's parent's
	// last child.
	LastSibling = Position{kind: kindLastSibling}
	// SortedSibling places the node among target's siblings, ordered
	// by the Manager's configured sorting field. It is inserted at
	// priority 0, like FirstSibling, and placed by the next rebuild.
	SortedSibling = Position{kind: kindSortedSibling}

	// FirstChild places the node as target's first child.
	FirstChild = Position{kind: kindFirstChild}
	// LastChild places the node as target's last child.
	LastChild = Position{kind: kindLastChild}
	// SortedChild places the node among target's children, ordered by
	// the Manager's configured sorting field. It is inserted at
	// priority 0, like FirstChild, and placed by the next rebuild.
	SortedChild = Position{kind: kindSortedChild}
)

// At returns a Position that places the node under target (target is
// required) at the explicit priority n, bypassing the symbolic
// grammar. The rebuild still renumbers densely afterward.
func At(n uint32) Position {
	return Position{kind: kindPriority, n: n}
}

// placement is the (parentID, priority) pair a Position resolves to
// against a concrete target.
type placement struct {
	parentID *uint
	priority uint32
}

// targetInfo is the minimal shape of a target node a Position resolves
// against.
type targetInfo struct {
	id       uint
	parentID *uint
	priority uint32
}

// place resolves pos against target (which may be nil only for the
// *-root positions) into a concrete parent/priority assignment. base
// is pathcodec.Base(segmentLength), the value BASE-1 resolves to.
func place(pos Position, target *targetInfo, base uint64) (placement, error) {
	needsTarget := pos.kind != kindFirstRoot && pos.kind != kindLastRoot && pos.kind != kindSortedRoot
	if needsTarget && target == nil {
		return placement{}, treeerr.ErrUnknownPosition
	}

	last := uint32(base - 1)

	switch pos.kind {
	case kindFirstRoot, kindSortedRoot:
		return placement{parentID: nil, priority: 0}, nil
	case kindLastRoot:
		return placement{parentID: nil, priority: last}, nil
	case kindFirstSibling, kindSortedSibling:
		return placement{parentID: target.parentID, priority: 0}, nil
	case kindLeftSibling:
		return placement{parentID: target.parentID, priority: target.priority}, nil
	case kindRightSibling:
		return placement{parentID: target.parentID, priority: target.priority + 1}, nil
	case kindLastSibling:
		return placement{parentID: target.parentID, priority: last}, nil
	case kindFirstChild, kindSortedChild:
		id := target.id
		return placement{parentID: &id, priority: 0}, nil
	case kindLastChild:
		id := target.id
		return placement{parentID: &id, priority: last}, nil
	case kindPriority:
		id := target.id
		return placement{parentID: &id, priority: pos.n}, nil
	default:
		return placement{}, treeerr.ErrUnknownPosition
	}
}
