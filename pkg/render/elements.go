package render

import "github.com/vango-dev/yui/pkg/vdom"

// tagFor maps element types to the HTML used in previews. Unknown types
// render as div.
var tagFor = map[string]string{
	vdom.TypeView:     "div",
	vdom.TypeButton:   "button",
	vdom.TypeInput:    "input",
	vdom.TypeLabel:    "span",
	vdom.TypeImage:    "img",
	vdom.TypeList:     "ul",
	vdom.TypeGrid:     "div",
	vdom.TypeProgress: "progress",
	vdom.TypeCheckbox: "input",
	vdom.TypeRadiobox: "input",
}

func htmlTag(typ string) string {
	if tag, ok := tagFor[typ]; ok {
		return tag
	}
	return "div"
}

// voidElements cannot have children and have no closing tag.
var voidElements = map[string]bool{
	"img":   true,
	"input": true,
}

func isVoidElement(tag string) bool {
	return voidElements[tag]
}

// inputTypes gives the input type attribute for types rendered as input.
var inputTypes = map[string]string{
	vdom.TypeInput:    "text",
	vdom.TypeCheckbox: "checkbox",
	vdom.TypeRadiobox: "radio",
}

// attrProps are properties rendered as HTML attributes rather than CSS.
var attrProps = map[string]string{
	"source":      "src",
	"src":         "src",
	"placeholder": "placeholder",
	"value":       "value",
	"max":         "max",
	"label":       "aria-label",
	"name":        "name",
	"checked":     "checked",
	"disabled":    "disabled",
	"enabled":     "",
}

// booleanAttrs are attributes that don't need a value.
var booleanAttrs = map[string]bool{
	"checked":  true,
	"disabled": true,
	"hidden":   true,
}

func isBooleanAttr(name string) bool {
	return booleanAttrs[name]
}

// cssProps renames style keys whose CSS name is not the kebab-case of
// the key.
var cssProps = map[string]string{
	"bgColor":     "background-color",
	"borderColor": "border-color",
	"radius":      "border-radius",
	"align":       "text-align",
	"layout":      "flex-direction",
}

// pxProps are CSS properties whose bare numbers mean pixels.
var pxProps = map[string]bool{
	"font-size":     true,
	"border-radius": true,
	"border-width":  true,
	"padding":       true,
	"margin":        true,
	"gap":           true,
	"width":         true,
	"height":        true,
	"left":          true,
	"top":           true,
}
