package render

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/vango-dev/yui/pkg/vdom"
)

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// Pretty enables indented output with one element per line.
	Pretty bool

	// Indent is the string used for each indentation level in pretty mode.
	// Defaults to two spaces if not specified.
	Indent string

	// SkipHidden leaves hidden elements out instead of rendering them
	// with the hidden attribute.
	SkipHidden bool
}

// Renderer renders UI trees to HTML. It holds no per-render state and
// may be shared.
type Renderer struct {
	config RendererConfig
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	if config.Indent == "" {
		config.Indent = "  "
	}
	return &Renderer{config: config}
}

// RenderToString renders a tree to an HTML fragment.
func (r *Renderer) RenderToString(node *vdom.Node) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter streams a tree to the given writer.
func (r *Renderer) RenderToWriter(w io.Writer, node *vdom.Node) error {
	return r.renderNode(w, node, 0)
}

func (r *Renderer) renderNode(w io.Writer, node *vdom.Node, depth int) error {
	if node == nil {
		return nil
	}
	props := node.Flatten()
	hidden := props[vdom.PropVisible] == false
	if hidden && r.config.SkipHidden {
		return nil
	}

	tag := htmlTag(node.Type)
	if r.config.Pretty && depth > 0 {
		r.writeIndent(w, depth)
	}

	if _, err := fmt.Fprintf(w, `<%s id="%s" data-type="%s"`, tag, escapeAttr(node.ID), escapeAttr(node.Type)); err != nil {
		return err
	}
	if typ, ok := inputTypes[node.Type]; ok {
		if _, err := fmt.Fprintf(w, ` type="%s"`, typ); err != nil {
			return err
		}
	}
	if err := r.renderAttributes(w, node, props); err != nil {
		return err
	}
	if css := styleAttr(node, props); css != "" {
		if _, err := fmt.Fprintf(w, ` style="%s"`, escapeAttr(css)); err != nil {
			return err
		}
	}
	if hidden {
		if _, err := io.WriteString(w, " hidden"); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}

	if isVoidElement(tag) {
		if r.config.Pretty {
			io.WriteString(w, "\n")
		}
		return nil
	}

	if node.Text != nil {
		if _, err := io.WriteString(w, escapeHTML(*node.Text)); err != nil {
			return err
		}
	}

	hasChildren := len(node.Children) > 0
	if r.config.Pretty && hasChildren {
		io.WriteString(w, "\n")
	}
	for _, child := range node.Children {
		if err := r.renderChild(w, node, child, depth+1); err != nil {
			return err
		}
	}
	if r.config.Pretty && hasChildren {
		r.writeIndent(w, depth)
	}

	if _, err := fmt.Fprintf(w, "</%s>", tag); err != nil {
		return err
	}
	if r.config.Pretty {
		io.WriteString(w, "\n")
	}
	return nil
}

// renderChild wraps list items in li so the ul stays valid.
func (r *Renderer) renderChild(w io.Writer, parent, child *vdom.Node, depth int) error {
	if parent.Type != vdom.TypeList {
		return r.renderNode(w, child, depth)
	}
	if _, err := io.WriteString(w, "<li>"); err != nil {
		return err
	}
	if err := r.renderNode(w, child, depth); err != nil {
		return err
	}
	_, err := io.WriteString(w, "</li>")
	return err
}

// renderAttributes writes the properties that map to HTML attributes.
func (r *Renderer) renderAttributes(w io.Writer, node *vdom.Node, props vdom.Props) error {
	attrs := make(map[string]any)
	for key, value := range props {
		name, ok := attrProps[key]
		if !ok || name == "" {
			continue
		}
		attrs[name] = value
	}
	if node.Text != nil {
		switch node.Type {
		case vdom.TypeInput:
			attrs["value"] = *node.Text
		case vdom.TypeImage:
			attrs["alt"] = *node.Text
		}
	}
	if enabled, ok := props["enabled"].(bool); ok && !enabled {
		attrs["disabled"] = true
	}

	keys := make([]string, 0, len(attrs))
	for key := range attrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := attrs[key]
		if isBooleanAttr(key) {
			if on, ok := value.(bool); ok {
				if on {
					if _, err := fmt.Fprintf(w, " %s", key); err != nil {
						return err
					}
				}
				continue
			}
		}
		if s := attrToString(value); s != "" {
			if _, err := fmt.Fprintf(w, ` %s="%s"`, key, escapeAttr(s)); err != nil {
				return err
			}
		}
	}
	return nil
}

// styleAttr builds the inline CSS for a node: geometry first, then every
// style-like property in key order.
func styleAttr(node *vdom.Node, props vdom.Props) string {
	var decls []string
	if node.Size != nil {
		decls = append(decls, "width:"+px(node.Size[0]), "height:"+px(node.Size[1]))
	}
	if node.Position != nil {
		decls = append(decls, "position:absolute", "left:"+px(node.Position[0]), "top:"+px(node.Position[1]))
	}
	switch node.Type {
	case vdom.TypeGrid:
		decls = append(decls, "display:grid")
	case vdom.TypeView:
		if _, ok := props["layout"]; ok {
			decls = append(decls, "display:flex")
		}
	}

	keys := make([]string, 0, len(props))
	for key := range props {
		if !vdom.IsStyleKey(key) || key == vdom.PropVisible {
			continue
		}
		if _, isAttr := attrProps[key]; isAttr {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		name := cssName(key)
		value, ok := cssText(name, props[key])
		if !ok {
			continue
		}
		decls = append(decls, name+":"+value)
	}
	return strings.Join(decls, ";")
}

func cssName(key string) string {
	if name, ok := cssProps[key]; ok {
		return name
	}
	var b strings.Builder
	for i, r := range key {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func cssText(name string, value any) (string, bool) {
	if f, ok := vdom.ToFloat(value); ok {
		if pxProps[name] {
			return px(f), true
		}
		return fmt.Sprintf("%g", f), true
	}
	s, ok := value.(string)
	if !ok {
		return "", false
	}
	if name == "flex-direction" {
		switch s {
		case "vertical", "column":
			return "column", true
		case "horizontal", "row":
			return "row", true
		}
		return "", false
	}
	s = cssValue(s)
	return s, s != ""
}

func px(f float64) string {
	return fmt.Sprintf("%gpx", f)
}

// attrToString converts an attribute value to a string.
func attrToString(value any) string {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float64:
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// writeIndent writes indentation for pretty printing.
func (r *Renderer) writeIndent(w io.Writer, depth int) {
	for i := 0; i < depth; i++ {
		io.WriteString(w, r.config.Indent)
	}
}
