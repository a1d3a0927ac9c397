// Package tree turns declarative UI documents into vdom.Node trees.
//
// A document is a JSON (optionally with comments) or YAML object:
//
//	{
//	    "id": "menu",
//	    "type": "View",
//	    "size": [320, 200],
//	    "style": {"bgColor": "#202020"},
//	    "children": [
//	        {"type": "Label", "text": "Pick one"},
//	        {"id": "ok", "type": "Button", "text": "OK"}
//	    ]
//	}
//
// Nodes without an id get one derived from their position ("_0" for the
// root, "_0_1" for its second child). Every other top-level key besides
// the reserved ones is kept as an attribute.
package tree
