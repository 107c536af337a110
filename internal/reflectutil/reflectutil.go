// Package reflectutil inspects and manipulates the embedded Node
// struct on arbitrary caller types via reflection, so Manager can
// accept any struct that embeds treenode.Node rather than requiring a
// single concrete row type. It generalizes the embedded-struct
// detection in node.go/branch.go (hasNode/getNodeData, hasBranch/
// getID) from a single hardcoded field set to the five columns the
// tree engine tracks.
package reflectutil

import (
	"reflect"

	"github.com/bumbu-labs/treeforge/treeerr"
)

const (
	idField       = "ID"
	parentIDField = "ParentID"
	priorityField = "Priority"
	pathField     = "Path"
	depthField    = "Depth"
)

// HasNode reports whether item is a struct (or pointer to one) that
// embeds a field exposing ID, ParentID, Priority, Path, and Depth —
// the shape of treenode.Node.
func HasNode(item any) bool {
	t, _, ok := dereference(item)
	if !ok {
		return false
	}
	_, ok = nodeValue(t, reflect.Value{})
	return ok
}

// Fields is the set of tree-tracked columns read from, or written to,
// an item's embedded Node.
type Fields struct {
	ID       uint
	ParentID *uint
	Priority uint32
	Path     string
	Depth    int
}

// GetFields extracts the embedded Node's current field values from
// item, which must be a pointer to a struct embedding treenode.Node
// (or an equivalently shaped struct).
func GetFields(item any) (Fields, error) {
	t, v, ok := dereference(item)
	if !ok {
		return Fields{}, treeerr.ErrItemIsNotTreeNode
	}
	nodeVal, ok := nodeValueOf(t, v)
	if !ok {
		return Fields{}, treeerr.ErrItemIsNotTreeNode
	}

	var f Fields
	f.ID = uint(nodeVal.FieldByName(idField).Uint())
	if pf := nodeVal.FieldByName(parentIDField); pf.IsValid() && !pf.IsNil() {
		id := uint(pf.Elem().Uint())
		f.ParentID = &id
	}
	f.Priority = uint32(nodeVal.FieldByName(priorityField).Uint())
	f.Path = nodeVal.FieldByName(pathField).String()
	f.Depth = int(nodeVal.FieldByName(depthField).Int())
	return f, nil
}

// SetFields writes f back into item's embedded Node. item must be a
// pointer so the mutation is visible to the caller.
func SetFields(item any, f Fields) error {
	rv := reflect.ValueOf(item)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return treeerr.ErrItemIsNotTreeNode
	}
	t := rv.Type().Elem()
	v := rv.Elem()
	nodeVal, ok := nodeValueOf(t, v)
	if !ok {
		return treeerr.ErrItemIsNotTreeNode
	}

	nodeVal.FieldByName(idField).SetUint(uint64(f.ID))
	if f.ParentID != nil {
		ptr := reflect.New(nodeVal.FieldByName(parentIDField).Type().Elem())
		ptr.Elem().SetUint(uint64(*f.ParentID))
		nodeVal.FieldByName(parentIDField).Set(ptr)
	} else {
		nodeVal.FieldByName(parentIDField).Set(reflect.Zero(nodeVal.FieldByName(parentIDField).Type()))
	}
	nodeVal.FieldByName(priorityField).SetUint(uint64(f.Priority))
	nodeVal.FieldByName(pathField).SetString(f.Path)
	nodeVal.FieldByName(depthField).SetInt(int64(f.Depth))
	return nil
}

// dereference resolves item to its underlying struct type and value,
// following one level of pointer indirection. ok is false when item is
// nil or not ultimately a struct.
func dereference(item any) (reflect.Type, reflect.Value, bool) {
	if item == nil {
		return nil, reflect.Value{}, false
	}
	t := reflect.TypeOf(item)
	v := reflect.ValueOf(item)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
		v = v.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, reflect.Value{}, false
	}
	return t, v, true
}

// nodeValue reports whether t carries the tracked fields, either
// directly or through an anonymous embedded field, without requiring a
// value (used by HasNode, which only checks shape).
func nodeValue(t reflect.Type, _ reflect.Value) (reflect.Value, bool) {
	if hasTrackedFields(t) {
		return reflect.Value{}, true
	}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous && hasTrackedFields(field.Type) {
			return reflect.Value{}, true
		}
	}
	return reflect.Value{}, false
}

// nodeValueOf returns the reflect.Value of whichever struct (t/v
// itself, or one of its anonymous embeds) actually carries the tracked
// fields, so callers can Field/FieldByName directly on it.
func nodeValueOf(t reflect.Type, v reflect.Value) (reflect.Value, bool) {
	if hasTrackedFields(t) {
		return v, true
	}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous && hasTrackedFields(field.Type) {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func hasTrackedFields(t reflect.Type) bool {
	if t.Kind() != reflect.Struct {
		return false
	}
	for _, name := range []string{idField, parentIDField, priorityField, pathField, depthField} {
		if _, ok := t.FieldByName(name); !ok {
			return false
		}
	}
	return true
}
