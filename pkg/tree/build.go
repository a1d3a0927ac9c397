package tree

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/vango-dev/yui/internal/errors"
	"github.com/vango-dev/yui/pkg/vdom"
)

// Option configures a build.
type Option func(*builder)

// WithComments strips // and /* */ comments before parsing.
func WithComments() Option {
	return func(b *builder) {
		b.comments = true
	}
}

// WithIDPrefix namespaces generated ids: "_0_1" becomes prefix+"_0_1".
func WithIDPrefix(prefix string) Option {
	return func(b *builder) {
		b.prefix = prefix
	}
}

// WithFile names the document in error locations.
func WithFile(name string) Option {
	return func(b *builder) {
		b.file = name
	}
}

type builder struct {
	comments bool
	prefix   string
	file     string
	seen     map[string]string // id -> node path
}

func newBuilder(opts []Option) *builder {
	b := &builder{seen: make(map[string]string)}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build parses a JSON document into a node tree.
//
// Syntax errors carry errors.CodeParse with the document position;
// schema errors carry CodeMissingType, CodeDuplicateID or
// CodeInvalidField with the node path.
func Build(data []byte, opts ...Option) (*vdom.Node, error) {
	b := newBuilder(opts)
	src := data
	if b.comments {
		src = StripComments(data)
	}

	var raw any
	if err := json.Unmarshal(src, &raw); err != nil {
		return nil, b.parseError(src, err)
	}
	return b.root(raw)
}

// BuildValue builds a tree from an already decoded document, such as
// the map[string]any produced by encoding/json.
func BuildValue(v any, opts ...Option) (*vdom.Node, error) {
	b := newBuilder(opts)
	return b.root(normalize(v))
}

func (b *builder) parseError(src []byte, err error) error {
	e := errors.New(errors.CodeParse).Wrap(err).WithDetail(err.Error())
	var syntax *json.SyntaxError
	if stderrors.As(err, &syntax) {
		e.WithSource(b.file, src, syntax.Offset)
	}
	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &typeErr) {
		e.WithSource(b.file, src, typeErr.Offset)
	}
	return e
}

func (b *builder) root(raw any) (*vdom.Node, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, errors.New(errors.CodeParse).
			WithDetail(fmt.Sprintf("document root must be an object, got %s", kindOf(raw)))
	}
	return b.node(obj, "$", []int{0})
}

func (b *builder) node(obj map[string]any, path string, pos []int) (*vdom.Node, error) {
	n := &vdom.Node{}

	typ, ok := obj[vdom.PropType].(string)
	if !ok || typ == "" {
		return nil, errors.New(errors.CodeMissingType).WithPath(path)
	}
	n.Type = typ

	switch id := obj[vdom.PropID].(type) {
	case nil:
	case string:
		n.ID = id
	case float64:
		n.ID = strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return nil, invalidField(path, vdom.PropID, "id must be a string")
	}
	if n.ID == "" {
		n.ID = b.autoID(pos)
		n.AutoID = true
	}
	if other, dup := b.seen[n.ID]; dup {
		return nil, errors.New(errors.CodeDuplicateID).
			WithPath(path).
			WithDetail(fmt.Sprintf("id %q is already used at %s", n.ID, other))
	}
	b.seen[n.ID] = path

	for _, key := range sortedKeys(obj) {
		val := obj[key]
		switch key {
		case vdom.PropType, vdom.PropID:
		case vdom.PropText:
			text, ok := val.(string)
			if !ok {
				if val == nil {
					continue
				}
				return nil, invalidField(path, key, "text must be a string")
			}
			n.Text = &text
		case vdom.PropSize:
			size, err := ParseSize(val)
			if err != nil {
				return nil, invalidField(path, key, err.Error())
			}
			n.Size = &size
		case vdom.PropPosition:
			p, err := ParsePosition(val)
			if err != nil {
				return nil, invalidField(path, key, err.Error())
			}
			n.Position = &p
		case vdom.PropStyle:
			if val == nil {
				continue
			}
			style, ok := val.(map[string]any)
			if !ok {
				return nil, invalidField(path, key, "style must be an object")
			}
			n.Style = vdom.Props(style).Clone()
		case vdom.PropChildren:
		default:
			if n.Attrs == nil {
				n.Attrs = vdom.Props{}
			}
			n.Attrs[key] = val
		}
	}

	children, err := b.children(obj[vdom.PropChildren], path, pos)
	if err != nil {
		return nil, err
	}
	n.Children = children
	return n, nil
}

func (b *builder) children(val any, path string, pos []int) ([]*vdom.Node, error) {
	if val == nil {
		return nil, nil
	}
	list, ok := val.([]any)
	if !ok {
		return nil, invalidField(path, vdom.PropChildren, "children must be an array")
	}
	out := make([]*vdom.Node, 0, len(list))
	for i, item := range list {
		childPath := fmt.Sprintf("%s.children[%d]", path, i)
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, errors.New(errors.CodeInvalidField).
				WithPath(childPath).
				WithDetail(fmt.Sprintf("child must be an object, got %s", kindOf(item)))
		}
		childPos := append(append([]int(nil), pos...), i)
		child, err := b.node(obj, childPath, childPos)
		if err != nil {
			return nil, err
		}
		out = append(out, child)
	}
	return out, nil
}

func (b *builder) autoID(pos []int) string {
	var sb strings.Builder
	sb.WriteString(b.prefix)
	for _, p := range pos {
		sb.WriteByte('_')
		sb.WriteString(strconv.Itoa(p))
	}
	return sb.String()
}

// ParseSize accepts [w, h] or [s], the latter meaning a square.
func ParseSize(v any) (vdom.Vec2, error) {
	switch list := v.(type) {
	case []any:
		if len(list) == 1 {
			v = []any{list[0], list[0]}
		}
	case []float64:
		if len(list) == 1 {
			v = []float64{list[0], list[0]}
		}
	}
	size, ok := vdom.ToVec2(v)
	if !ok {
		return vdom.Vec2{}, fmt.Errorf("size must be [width, height] or [side], got %s", kindOf(v))
	}
	return size, nil
}

// ParsePosition accepts [x, y].
func ParsePosition(v any) (vdom.Vec2, error) {
	if list, ok := v.([]any); ok && len(list) != 2 {
		return vdom.Vec2{}, fmt.Errorf("position must be [x, y], got %d numbers", len(list))
	}
	p, ok := vdom.ToVec2(v)
	if !ok {
		return vdom.Vec2{}, fmt.Errorf("position must be [x, y], got %s", kindOf(v))
	}
	return p, nil
}

func sortedKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func invalidField(path, key, detail string) *errors.Error {
	return errors.New(errors.CodeInvalidField).
		WithPath(path + "." + key).
		WithDetail(detail)
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, int, int64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}

// Validate checks a programmatically built tree: every node has a type
// and a non-empty id, and ids are unique.
func Validate(root *vdom.Node) error {
	if root == nil {
		return errors.New(errors.CodeMissingType).WithPath("$").WithDetail("tree is empty")
	}
	seen := make(map[string]bool)
	var err error
	vdom.Walk(root, func(n, _ *vdom.Node) bool {
		if err != nil {
			return false
		}
		switch {
		case n.Type == "":
			err = errors.New(errors.CodeMissingType).WithPath(n.ID)
		case n.ID == "":
			err = errors.New(errors.CodeInvalidField).WithPath(n.Type).WithDetail("node has no id")
		case seen[n.ID]:
			err = errors.New(errors.CodeDuplicateID).WithPath(n.ID)
		case n.Size != nil && (n.Size[0] < 0 || n.Size[1] < 0):
			err = errors.New(errors.CodeInvalidField).WithPath(n.ID + ".size").WithDetail("size must not be negative")
		}
		seen[n.ID] = true
		return err == nil
	})
	return err
}

// Walk visits the tree depth first with the depth of each node. Returning
// false skips the node's children.
func Walk(root *vdom.Node, fn func(n *vdom.Node, depth int) bool) {
	walkDepth(root, 0, fn)
}

func walkDepth(n *vdom.Node, depth int, fn func(*vdom.Node, int) bool) {
	if n == nil || !fn(n, depth) {
		return
	}
	for _, child := range n.Children {
		walkDepth(child, depth+1, fn)
	}
}

// Encode converts a tree back to its document form.
func Encode(n *vdom.Node) map[string]any {
	if n == nil {
		return nil
	}
	out := make(map[string]any, len(n.Attrs)+6)
	for k, v := range n.Attrs {
		out[k] = v
	}
	out[vdom.PropID] = n.ID
	out[vdom.PropType] = n.Type
	if n.Text != nil {
		out[vdom.PropText] = *n.Text
	}
	if n.Size != nil {
		out[vdom.PropSize] = []any{n.Size[0], n.Size[1]}
	}
	if n.Position != nil {
		out[vdom.PropPosition] = []any{n.Position[0], n.Position[1]}
	}
	if len(n.Style) > 0 {
		out[vdom.PropStyle] = map[string]any(n.Style.Clone())
	}
	if len(n.Children) > 0 {
		children := make([]any, len(n.Children))
		for i, child := range n.Children {
			children[i] = Encode(child)
		}
		out[vdom.PropChildren] = children
	}
	return out
}

// Marshal encodes a tree as indented JSON.
func Marshal(n *vdom.Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Encode(n)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
