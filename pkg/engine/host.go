package engine

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vango-dev/yui/pkg/vdom"
)

// Host receives the element operations the engine decides on. A Host is
// the real widget toolkit; the engine never draws anything itself.
//
// parentID is empty only for the engine's root container. DestroyElement
// removes the element together with its subtree.
type Host interface {
	CreateElement(parentID, id, typ string, index int) error
	SetProperty(id, key string, value any) error
	RemoveProperty(id, key string) error
	MoveElement(id, parentID string, index int) error
	DestroyElement(id string) error
}

// NopHost accepts every operation and does nothing.
type NopHost struct{}

func (NopHost) CreateElement(string, string, string, int) error { return nil }
func (NopHost) SetProperty(string, string, any) error           { return nil }
func (NopHost) RemoveProperty(string, string) error             { return nil }
func (NopHost) MoveElement(string, string, int) error           { return nil }
func (NopHost) DestroyElement(string) error                     { return nil }

// OpKind names a host operation.
type OpKind string

const (
	OpCreate  OpKind = "create"
	OpSet     OpKind = "set"
	OpRemove  OpKind = "remove"
	OpMove    OpKind = "move"
	OpDestroy OpKind = "destroy"
)

// Op is one recorded host call.
type Op struct {
	Kind   OpKind
	ID     string
	Parent string
	Type   string
	Index  int
	Key    string
	Value  any
}

// String formats the op for test failure output.
func (o Op) String() string {
	switch o.Kind {
	case OpCreate:
		return fmt.Sprintf("create %s:%s in %q at %d", o.ID, o.Type, o.Parent, o.Index)
	case OpSet:
		return fmt.Sprintf("set %s.%s = %v", o.ID, o.Key, o.Value)
	case OpRemove:
		return fmt.Sprintf("remove %s.%s", o.ID, o.Key)
	case OpMove:
		return fmt.Sprintf("move %s to %s at %d", o.ID, o.Parent, o.Index)
	case OpDestroy:
		return fmt.Sprintf("destroy %s", o.ID)
	}
	return string(o.Kind)
}

type memElement struct {
	id       string
	typ      string
	parent   string
	children []string
	props    vdom.Props
}

// MemoryHost is a Host that keeps elements in memory and records every
// call. It is safe for concurrent use.
type MemoryHost struct {
	mu       sync.Mutex
	elements map[string]*memElement
	ops      []Op

	// Fail, when set, is consulted before every operation; a non-nil
	// result is returned instead of performing it.
	Fail func(op Op) error
}

// NewMemoryHost creates an empty MemoryHost.
func NewMemoryHost() *MemoryHost {
	return &MemoryHost{elements: make(map[string]*memElement)}
}

func (h *MemoryHost) record(op Op) error {
	if h.Fail != nil {
		if err := h.Fail(op); err != nil {
			return err
		}
	}
	h.ops = append(h.ops, op)
	return nil
}

// CreateElement implements Host.
func (h *MemoryHost) CreateElement(parentID, id, typ string, index int) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.record(Op{Kind: OpCreate, ID: id, Parent: parentID, Type: typ, Index: index}); err != nil {
		return err
	}
	if _, exists := h.elements[id]; exists {
		return fmt.Errorf("element %q already exists", id)
	}
	if parentID != "" {
		parent, ok := h.elements[parentID]
		if !ok {
			return fmt.Errorf("parent %q not found", parentID)
		}
		parent.children = insertAt(parent.children, id, index)
	}
	h.elements[id] = &memElement{id: id, typ: typ, parent: parentID, props: vdom.Props{}}
	return nil
}

// SetProperty implements Host.
func (h *MemoryHost) SetProperty(id, key string, value any) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.record(Op{Kind: OpSet, ID: id, Key: key, Value: value}); err != nil {
		return err
	}
	el, ok := h.elements[id]
	if !ok {
		return fmt.Errorf("element %q not found", id)
	}
	el.props[key] = value
	return nil
}

// RemoveProperty implements Host.
func (h *MemoryHost) RemoveProperty(id, key string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.record(Op{Kind: OpRemove, ID: id, Key: key}); err != nil {
		return err
	}
	el, ok := h.elements[id]
	if !ok {
		return fmt.Errorf("element %q not found", id)
	}
	delete(el.props, key)
	return nil
}

// MoveElement implements Host.
func (h *MemoryHost) MoveElement(id, parentID string, index int) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.record(Op{Kind: OpMove, ID: id, Parent: parentID, Index: index}); err != nil {
		return err
	}
	el, ok := h.elements[id]
	if !ok {
		return fmt.Errorf("element %q not found", id)
	}
	parent, ok := h.elements[parentID]
	if !ok {
		return fmt.Errorf("parent %q not found", parentID)
	}
	if old, ok := h.elements[el.parent]; ok {
		old.children = removeID(old.children, id)
	}
	parent.children = insertAt(parent.children, id, index)
	el.parent = parentID
	return nil
}

// DestroyElement implements Host.
func (h *MemoryHost) DestroyElement(id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.record(Op{Kind: OpDestroy, ID: id}); err != nil {
		return err
	}
	el, ok := h.elements[id]
	if !ok {
		return fmt.Errorf("element %q not found", id)
	}
	if parent, ok := h.elements[el.parent]; ok {
		parent.children = removeID(parent.children, id)
	}
	h.destroy(el)
	return nil
}

func (h *MemoryHost) destroy(el *memElement) {
	for _, childID := range el.children {
		if child, ok := h.elements[childID]; ok {
			h.destroy(child)
		}
	}
	delete(h.elements, el.id)
}

// Has reports whether the element exists.
func (h *MemoryHost) Has(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.elements[id]
	return ok
}

// Type returns the element type, or "" if it does not exist.
func (h *MemoryHost) Type(id string) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if el, ok := h.elements[id]; ok {
		return el.typ
	}
	return ""
}

// Props returns a copy of the element's properties.
func (h *MemoryHost) Props(id string) vdom.Props {
	h.mu.Lock()
	defer h.mu.Unlock()
	if el, ok := h.elements[id]; ok {
		return el.props.Clone()
	}
	return nil
}

// Children returns the element's child ids in order.
func (h *MemoryHost) Children(id string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if el, ok := h.elements[id]; ok {
		return append([]string(nil), el.children...)
	}
	return nil
}

// IDs returns every element id, sorted.
func (h *MemoryHost) IDs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	ids := make([]string, 0, len(h.elements))
	for id := range h.elements {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Ops returns the recorded operations.
func (h *MemoryHost) Ops() []Op {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Op(nil), h.ops...)
}

// ResetOps clears the operation log.
func (h *MemoryHost) ResetOps() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ops = nil
}

func insertAt(ids []string, id string, index int) []string {
	if index < 0 || index > len(ids) {
		index = len(ids)
	}
	ids = append(ids, "")
	copy(ids[index+1:], ids[index:])
	ids[index] = id
	return ids
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
