// Package theme turns theme documents into style patches.
//
// A theme is a named list of rules. Each rule pairs a selector with a
// style object: "#okButton" selects one element by id, any other selector
// selects every element of that type ("Button"). Type rules are applied
// before id rules and, within each group, later rules override earlier
// ones.
//
//	{
//	  "name": "dark",
//	  "version": "1.0",
//	  "styles": [
//	    {"selector": "View", "style": {"bgColor": "#111"}},
//	    {"selector": "#title", "style": {"color": "#fff"}}
//	  ]
//	}
package theme

import (
	"encoding/json"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/yui/internal/errors"
	"github.com/vango-dev/yui/pkg/vdom"
)

// DefaultVersion is used when a document omits "version".
const DefaultVersion = "1.0"

// Theme is a parsed theme document.
type Theme struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	Styles  []Rule `json:"styles" yaml:"styles"`
}

// Rule applies Style to every element matched by Selector.
type Rule struct {
	Selector string     `json:"selector" yaml:"selector"`
	Style    vdom.Props `json:"style" yaml:"style"`
}

// IsID reports whether the rule selects by element id.
func (r Rule) IsID() bool {
	return strings.HasPrefix(r.Selector, "#")
}

// Matches reports whether the rule selects n.
func (r Rule) Matches(n *vdom.Node) bool {
	if r.IsID() {
		return n.ID == r.Selector[1:]
	}
	return n.Type == r.Selector
}

// Parse decodes a theme document, picking YAML or JSON by file extension.
func Parse(name string, data []byte) (*Theme, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	}
	return ParseJSON(data)
}

// ParseJSON decodes and validates a JSON theme document.
func ParseJSON(data []byte) (*Theme, error) {
	var t Theme
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, errors.New(errors.CodeThemeInvalid).Wrap(err).WithDetail(err.Error())
	}
	return finish(&t)
}

// ParseYAML decodes and validates a YAML theme document.
func ParseYAML(data []byte) (*Theme, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.New(errors.CodeThemeInvalid).Wrap(err).WithDetail(err.Error())
	}
	// Re-encode so numbers and nested maps match the JSON decoding.
	js, err := json.Marshal(raw)
	if err != nil {
		return nil, errors.New(errors.CodeThemeInvalid).Wrap(err).WithDetail(err.Error())
	}
	return ParseJSON(js)
}

func finish(t *Theme) (*Theme, error) {
	if t.Version == "" {
		t.Version = DefaultVersion
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks the theme name, selectors and style keys.
func (t *Theme) Validate() error {
	if t.Name == "" {
		return errors.New(errors.CodeThemeInvalid).WithDetail("theme has no name")
	}
	for i, r := range t.Styles {
		path := t.Name + ".styles[" + strconv.Itoa(i) + "]"
		if r.Selector == "" || r.Selector == "#" {
			return errors.New(errors.CodeThemeInvalid).WithPath(path).
				WithDetail("selector must be a type name or #id")
		}
		for k := range r.Style {
			if !vdom.IsStyleKey(k) {
				return errors.New(errors.CodeThemeInvalid).WithPath(path + ".style." + k).
					WithDetail("reserved key in style")
			}
		}
	}
	return nil
}

// StyleFor merges the style of every rule that matches n. A nil theme
// yields an empty style.
func (t *Theme) StyleFor(n *vdom.Node) vdom.Props {
	out := vdom.Props{}
	if t == nil {
		return out
	}
	for _, byID := range []bool{false, true} {
		for _, r := range t.Styles {
			if r.IsID() != byID || !r.Matches(n) {
				continue
			}
			for k, v := range r.Style {
				out[k] = v
			}
		}
	}
	return out
}

// Patches returns one style patch per element of root that the theme
// selects.
func (t *Theme) Patches(root *vdom.Node) []vdom.Patch {
	return Transition(nil, t, root)
}

// Transition returns the patches that switch the elements of root from
// theme prev to theme next. Keys styled by prev but not by next are
// removed. Either theme may be nil.
func Transition(prev, next *Theme, root *vdom.Node) []vdom.Patch {
	var patches []vdom.Patch
	vdom.Walk(root, func(n, _ *vdom.Node) bool {
		if n.ID == "" {
			return true
		}
		style := map[string]any{}
		for k := range prev.StyleFor(n) {
			style[k] = nil
		}
		for k, v := range next.StyleFor(n) {
			style[k] = v
		}
		if len(style) > 0 {
			patches = append(patches, vdom.NewPatch(n.ID, vdom.SetEntry(vdom.PropStyle, style)))
		}
		return true
	})
	return patches
}
