package engine

import (
	"sort"

	"github.com/vango-dev/yui/pkg/vdom"
)

// element is one live entry of the registry.
type element struct {
	id       string
	typ      string
	parent   *element
	children []*element
	props    vdom.Props
	style    map[string]bool // flat keys that came from a style object
	autoID   bool
}

func newElement(id, typ string) *element {
	return &element{
		id:    id,
		typ:   typ,
		props: vdom.Props{},
		style: make(map[string]bool),
	}
}

func (el *element) indexOf(child *element) int {
	for i, c := range el.children {
		if c == child {
			return i
		}
	}
	return -1
}

func (el *element) insertChild(child *element, index int) {
	if index < 0 || index > len(el.children) {
		index = len(el.children)
	}
	el.children = append(el.children, nil)
	copy(el.children[index+1:], el.children[index:])
	el.children[index] = child
	child.parent = el
}

func (el *element) removeChild(child *element) {
	if i := el.indexOf(child); i >= 0 {
		el.children = append(el.children[:i], el.children[i+1:]...)
	}
	child.parent = nil
}

// childByKey finds a direct child by index ("0") or by id.
func (el *element) childByKey(key string) *element {
	if i, ok := parseIndex(key); ok && i < len(el.children) {
		return el.children[i]
	}
	for _, c := range el.children {
		if c.id == key {
			return c
		}
	}
	return nil
}

// isAncestorOf reports whether el is other or one of its ancestors.
func (el *element) isAncestorOf(other *element) bool {
	for cur := other; cur != nil; cur = cur.parent {
		if cur == el {
			return true
		}
	}
	return false
}

func (el *element) hidden() bool {
	v, ok := el.props[vdom.PropVisible].(bool)
	return ok && !v
}

// node rebuilds a vdom.Node from the live state of el and its subtree.
func (el *element) node() *vdom.Node {
	n := &vdom.Node{ID: el.id, Type: el.typ, AutoID: el.autoID}
	for key, v := range el.props {
		switch {
		case key == vdom.PropText:
			if s, ok := v.(string); ok {
				n.Text = &s
				continue
			}
		case key == vdom.PropSize:
			if size, ok := vdom.ToVec2(v); ok {
				n.Size = &size
				continue
			}
		case key == vdom.PropPosition:
			if pos, ok := vdom.ToVec2(v); ok {
				n.Position = &pos
				continue
			}
		case el.style[key]:
			if n.Style == nil {
				n.Style = vdom.Props{}
			}
			n.Style[key] = v
			continue
		}
		if n.Attrs == nil {
			n.Attrs = vdom.Props{}
		}
		n.Attrs[key] = v
	}
	n.Style = n.Style.Clone()
	n.Attrs = n.Attrs.Clone()
	for _, c := range el.children {
		n.Children = append(n.Children, c.node())
	}
	return n
}

// ElementState is a read-only copy of one live element.
type ElementState struct {
	ID       string     `json:"id"`
	Type     string     `json:"type"`
	Parent   string     `json:"parent,omitempty"`
	Children []string   `json:"children,omitempty"`
	Props    vdom.Props `json:"props"`
	Hidden   bool       `json:"hidden,omitempty"`
}

func (el *element) state() ElementState {
	s := ElementState{
		ID:     el.id,
		Type:   el.typ,
		Props:  el.props.Clone(),
		Hidden: el.hidden(),
	}
	if el.parent != nil {
		s.Parent = el.parent.id
	}
	for _, c := range el.children {
		s.Children = append(s.Children, c.id)
	}
	return s
}

// Keys returns the element's property keys, sorted.
func (s ElementState) Keys() []string {
	keys := make([]string, 0, len(s.Props))
	for k := range s.Props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func parseIndex(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
		if n > 1<<20 {
			return 0, false
		}
	}
	return n, true
}
