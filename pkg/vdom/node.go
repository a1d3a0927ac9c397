package vdom

import "strings"

// Built-in element types.
const (
	TypeView     = "View"
	TypeButton   = "Button"
	TypeInput    = "Input"
	TypeLabel    = "Label"
	TypeImage    = "Image"
	TypeList     = "List"
	TypeGrid     = "Grid"
	TypeProgress = "Progress"
	TypeCheckbox = "Checkbox"
	TypeRadiobox = "Radiobox"
)

var knownTypes = map[string]bool{
	TypeView:     true,
	TypeButton:   true,
	TypeInput:    true,
	TypeLabel:    true,
	TypeImage:    true,
	TypeList:     true,
	TypeGrid:     true,
	TypeProgress: true,
	TypeCheckbox: true,
	TypeRadiobox: true,
}

// KnownType reports whether t is one of the built-in element types.
// Unknown types are still valid nodes.
func KnownType(t string) bool {
	return knownTypes[t]
}

// IsContainer reports whether elements of type t lay out children.
func IsContainer(t string) bool {
	return t == TypeView || t == TypeList || t == TypeGrid
}

// Reserved property and field names.
const (
	PropID       = "id"
	PropType     = "type"
	PropText     = "text"
	PropSize     = "size"
	PropPosition = "position"
	PropStyle    = "style"
	PropChildren = "children"
	PropVisible  = "visible"
)

// ChildPrefix prefixes patch keys that address a single child
// ("children.3" or "children.okButton").
const ChildPrefix = PropChildren + "."

// Vec2 is a pair of numbers: (width, height) or (x, y).
type Vec2 [2]float64

// Props holds an open-ended property bag.
type Props map[string]any

// Clone returns a deep copy of p.
func (p Props) Clone() Props {
	if p == nil {
		return nil
	}
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = cloneValue(inner)
		}
		return out
	case Props:
		return val.Clone()
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = cloneValue(inner)
		}
		return out
	default:
		return v
	}
}

// Node is one element of a declarative UI tree.
type Node struct {
	ID       string  // Reconciliation key
	Type     string  // Element kind ("View", "Label", ...)
	Text     *string // Optional text content
	Size     *Vec2   // Optional (width, height)
	Position *Vec2   // Optional (x, y)
	Style    Props   // Style properties
	Attrs    Props   // Any other top-level property
	Children []*Node // Ordered children
	AutoID   bool    // ID was generated from the node path
}

// Flatten returns the node's flat property bag: attrs, then style, then
// text, size and position.
func (n *Node) Flatten() Props {
	if n == nil {
		return nil
	}
	props := make(Props, len(n.Attrs)+len(n.Style)+3)
	for k, v := range n.Attrs {
		props[k] = cloneValue(v)
	}
	for k, v := range n.Style {
		props[k] = cloneValue(v)
	}
	if n.Text != nil {
		props[PropText] = *n.Text
	}
	if n.Size != nil {
		props[PropSize] = *n.Size
	}
	if n.Position != nil {
		props[PropPosition] = *n.Position
	}
	return props
}

// Clone returns a deep copy of the subtree rooted at n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{
		ID:     n.ID,
		Type:   n.Type,
		Style:  n.Style.Clone(),
		Attrs:  n.Attrs.Clone(),
		AutoID: n.AutoID,
	}
	if n.Text != nil {
		text := *n.Text
		out.Text = &text
	}
	if n.Size != nil {
		size := *n.Size
		out.Size = &size
	}
	if n.Position != nil {
		pos := *n.Position
		out.Position = &pos
	}
	if len(n.Children) > 0 {
		out.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			out.Children[i] = child.Clone()
		}
	}
	return out
}

// Find returns the node with the given id in the subtree rooted at n.
func (n *Node) Find(id string) *Node {
	if n == nil {
		return nil
	}
	if n.ID == id {
		return n
	}
	for _, child := range n.Children {
		if found := child.Find(id); found != nil {
			return found
		}
	}
	return nil
}

// TextValue returns the node text or "" when unset.
func (n *Node) TextValue() string {
	if n == nil || n.Text == nil {
		return ""
	}
	return *n.Text
}

// Walk visits n and its descendants depth first. Returning false from fn
// skips the children of that node.
func Walk(n *Node, fn func(node, parent *Node) bool) {
	walk(n, nil, fn)
}

func walk(n, parent *Node, fn func(node, parent *Node) bool) {
	if n == nil {
		return
	}
	if !fn(n, parent) {
		return
	}
	for _, child := range n.Children {
		walk(child, n, fn)
	}
}

// IsStyleKey reports whether key is not one of the reserved node fields,
// meaning it lives in the open-ended style/attr namespace.
func IsStyleKey(key string) bool {
	switch key {
	case PropID, PropType, PropText, PropSize, PropPosition, PropStyle, PropChildren:
		return false
	}
	return !strings.HasPrefix(key, ChildPrefix)
}
