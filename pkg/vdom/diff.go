package vdom

import (
	"reflect"
	"sort"
)

// Diff compares two trees matched by id and returns the patches that turn
// the property state of prev into next.
//
// Nodes present in both trees with the same type get Set entries for new or
// changed properties and Remove entries for dropped ones; style keys are
// grouped under one "style" entry. A dropped "visible" becomes Set(true)
// so the element is shown rather than hidden.
// Children present in prev but absent from next are removed through a
// "children.<id>" entry on their old parent. Nodes that only exist in next
// or changed type are skipped here; see Unpatchable.
func Diff(prev, next *Node) []Patch {
	if prev == nil || next == nil {
		return nil
	}

	prevIndex := index(prev)
	nextIndex := index(next)

	var patches []Patch
	Walk(next, func(n, _ *Node) bool {
		old, ok := prevIndex[n.ID]
		if !ok || old.node.Type != n.Type {
			return true
		}
		if change := diffNode(old.node, n); len(change) > 0 {
			patches = append(patches, Patch{Target: n.ID, Change: change})
		}
		return true
	})

	removedByParent := make(map[string]Change)
	var parents []string
	Walk(prev, func(n, parent *Node) bool {
		if _, ok := nextIndex[n.ID]; ok || parent == nil {
			return true
		}
		if _, seen := removedByParent[parent.ID]; !seen {
			parents = append(parents, parent.ID)
		}
		removedByParent[parent.ID] = append(removedByParent[parent.ID], RemoveEntry(ChildPrefix+n.ID))
		return false
	})
	for _, parentID := range parents {
		patches = append(patches, Patch{Target: parentID, Change: removedByParent[parentID]})
	}

	return patches
}

// Unpatchable returns the ids in next, in tree order, that patches cannot
// reach from prev: ids prev does not have and ids whose type changed.
func Unpatchable(prev, next *Node) []string {
	prevIndex := index(prev)
	var ids []string
	Walk(next, func(n, _ *Node) bool {
		old, ok := prevIndex[n.ID]
		if !ok || old.node.Type != n.Type {
			ids = append(ids, n.ID)
		}
		return true
	})
	return ids
}

// Moved returns the ids in next, in tree order, that exist in prev under a
// different parent, or under the same parent but in a different order
// relative to the siblings both trees share. The root of next is never
// reported.
func Moved(prev, next *Node) []string {
	prevIndex := index(prev)
	var ids []string
	Walk(next, func(n, parent *Node) bool {
		if parent == nil {
			return true
		}
		old, ok := prevIndex[n.ID]
		if ok && (old.parent == nil || old.parent.ID != parent.ID) {
			ids = append(ids, n.ID)
		}
		return true
	})

	Walk(next, func(n, _ *Node) bool {
		old, ok := prevIndex[n.ID]
		if !ok {
			return true
		}
		named := make(map[string]bool, len(n.Children))
		for _, c := range n.Children {
			named[c.ID] = true
		}
		var was []string
		shared := make(map[string]bool)
		for _, c := range old.node.Children {
			if named[c.ID] {
				was = append(was, c.ID)
				shared[c.ID] = true
			}
		}
		i := 0
		for _, c := range n.Children {
			if !shared[c.ID] {
				continue
			}
			if was[i] != c.ID {
				ids = append(ids, c.ID)
			}
			i++
		}
		return true
	})
	return ids
}

type indexed struct {
	node   *Node
	parent *Node
}

func index(root *Node) map[string]indexed {
	out := make(map[string]indexed)
	Walk(root, func(n, parent *Node) bool {
		out[n.ID] = indexed{node: n, parent: parent}
		return true
	})
	return out
}

// diffNode diffs the flat properties of two nodes. Keys declared as style
// by either node are grouped under a "style" object entry (null removes)
// so they stay style keys once applied.
func diffNode(prev, next *Node) Change {
	var change Change
	style := make(map[string]any)
	for _, e := range diffProps(prev.Flatten(), next.Flatten()) {
		_, inNext := next.Style[e.Key]
		_, inPrev := prev.Style[e.Key]
		switch {
		case inNext:
			style[e.Key] = e.Value.Get()
		case inPrev && e.Value.IsRemove():
			style[e.Key] = nil
		default:
			change = append(change, e)
		}
	}
	if len(style) > 0 {
		change = append(change, SetEntry(PropStyle, style))
	}
	return change
}

// diffProps compares two flat property bags. Keys are emitted in sorted
// order so the result is deterministic.
func diffProps(prev, next Props) Change {
	var change Change

	nextKeys := sortedKeys(next)
	for _, key := range nextKeys {
		prevVal, exists := prev[key]
		if !exists || !PropsEqual(prevVal, next[key]) {
			change = append(change, SetEntry(key, next[key]))
		}
	}

	for _, key := range sortedKeys(prev) {
		if _, exists := next[key]; exists {
			continue
		}
		if key == PropVisible {
			change = append(change, SetEntry(PropVisible, true))
			continue
		}
		change = append(change, RemoveEntry(key))
	}

	return change
}

func sortedKeys(p Props) []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PropsEqual compares two property values for equality. Numbers compare by
// value regardless of their Go type, two-number lists compare equal to
// Vec2, and other lists and objects compare element by element.
func PropsEqual(a, b any) bool {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	}
	if af, ok := ToFloat(a); ok {
		bf, ok := ToFloat(b)
		return ok && af == bf
	}
	if av, ok := ToVec2(a); ok {
		bv, ok := ToVec2(b)
		return ok && av == bv
	}
	switch av := a.(type) {
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !PropsEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, x := range av {
			y, ok := bv[k]
			if !ok || !PropsEqual(x, y) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

// ToFloat converts the numeric kinds a decoded document may contain.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	}
	return 0, false
}

// ToVec2 converts a Vec2, a [2]float64 or a two-number list to a Vec2.
func ToVec2(v any) (Vec2, bool) {
	switch val := v.(type) {
	case Vec2:
		return val, true
	case *Vec2:
		if val == nil {
			return Vec2{}, false
		}
		return *val, true
	case [2]float64:
		return Vec2(val), true
	case []float64:
		if len(val) != 2 {
			return Vec2{}, false
		}
		return Vec2{val[0], val[1]}, true
	case []any:
		if len(val) != 2 {
			return Vec2{}, false
		}
		x, ok1 := ToFloat(val[0])
		y, ok2 := ToFloat(val[1])
		return Vec2{x, y}, ok1 && ok2
	}
	return Vec2{}, false
}
