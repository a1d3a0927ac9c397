package tree

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/yui/internal/errors"
	"github.com/vango-dev/yui/pkg/vdom"
)

// BuildYAML parses a YAML document with the same schema as Build.
func BuildYAML(data []byte, opts ...Option) (*vdom.Node, error) {
	b := newBuilder(opts)

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.New(errors.CodeParse).Wrap(err).WithDetail(err.Error())
	}
	return b.root(normalize(raw))
}

// normalize converts decoded YAML (or hand-built) values to the shapes
// encoding/json produces: map[string]any, []any and float64 numbers.
func normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = normalize(inner)
		}
		return out
	case vdom.Props:
		return normalize(map[string]any(val))
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[fmt.Sprint(k)] = normalize(inner)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = normalize(inner)
		}
		return out
	case vdom.Vec2:
		return []any{val[0], val[1]}
	case int, int64, int32, uint64, uint32, float32:
		f, _ := vdom.ToFloat(val)
		return f
	}
	return v
}
