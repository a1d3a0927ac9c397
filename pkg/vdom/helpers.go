package vdom

// Option configures a Node built with El.
type Option func(*Node)

// El creates a node of the given type and id.
//
//	El(TypeView, "menu",
//	    Children(
//	        El(TypeLabel, "title", Text("Menu")),
//	        El(TypeButton, "ok", Text("OK"), Style("bgColor", "#336699")),
//	    ),
//	)
func El(typ, id string, opts ...Option) *Node {
	n := &Node{ID: id, Type: typ}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// View creates a View container.
func View(id string, children ...*Node) *Node {
	return El(TypeView, id, Children(children...))
}

// Label creates a Label with text.
func Label(id, text string) *Node {
	return El(TypeLabel, id, Text(text))
}

// Button creates a Button with text.
func Button(id, text string) *Node {
	return El(TypeButton, id, Text(text))
}

// Text sets the node text.
func Text(s string) Option {
	return func(n *Node) {
		n.Text = &s
	}
}

// Size sets the node size.
func Size(w, h float64) Option {
	return func(n *Node) {
		n.Size = &Vec2{w, h}
	}
}

// Position sets the node position.
func Position(x, y float64) Option {
	return func(n *Node) {
		n.Position = &Vec2{x, y}
	}
}

// Style sets one style property.
func Style(key string, value any) Option {
	return func(n *Node) {
		if n.Style == nil {
			n.Style = Props{}
		}
		n.Style[key] = value
	}
}

// Attr sets one top-level attribute.
func Attr(key string, value any) Option {
	return func(n *Node) {
		if n.Attrs == nil {
			n.Attrs = Props{}
		}
		n.Attrs[key] = value
	}
}

// Children appends children.
func Children(children ...*Node) Option {
	return func(n *Node) {
		for _, child := range children {
			if child != nil {
				n.Children = append(n.Children, child)
			}
		}
	}
}
