package theme

import (
	stderrors "errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/yui/internal/errors"
	"github.com/vango-dev/yui/pkg/vdom"
)

const darkJSON = `{
  "name": "dark",
  "styles": [
    {"selector": "#ok", "style": {"color": "#0f0"}},
    {"selector": "Button", "style": {"color": "#fff", "bgColor": "#333"}},
    {"selector": "Button", "style": {"bgColor": "#000"}}
  ]
}`

func TestParseJSON(t *testing.T) {
	th, err := ParseJSON([]byte(darkJSON))
	if err != nil {
		t.Fatal(err)
	}
	if th.Name != "dark" || th.Version != DefaultVersion || len(th.Styles) != 3 {
		t.Errorf("got %+v", th)
	}
	if !th.Styles[0].IsID() || th.Styles[1].IsID() {
		t.Error("IsID misclassified selectors")
	}
}

func TestParseYAML(t *testing.T) {
	src := []byte(`
name: light
version: "2.0"
styles:
  - selector: Label
    style:
      color: "#000"
      fontSize: 14
`)
	th, err := Parse("light.yaml", src)
	if err != nil {
		t.Fatal(err)
	}
	want := &Theme{
		Name:    "light",
		Version: "2.0",
		Styles:  []Rule{{Selector: "Label", Style: vdom.Props{"color": "#000", "fontSize": float64(14)}}},
	}
	if diff := cmp.Diff(want, th); diff != "" {
		t.Errorf("Parse (-want +got):\n%s", diff)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"bad json", `{`},
		{"no name", `{"styles": []}`},
		{"empty selector", `{"name": "x", "styles": [{"selector": "", "style": {}}]}`},
		{"bare hash", `{"name": "x", "styles": [{"selector": "#", "style": {}}]}`},
		{"reserved key", `{"name": "x", "styles": [{"selector": "View", "style": {"children": []}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJSON([]byte(tt.src))
			if !errors.HasCode(err, errors.CodeThemeInvalid) {
				t.Errorf("err = %v, want %s", err, errors.CodeThemeInvalid)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	th := &Theme{Name: "dark", Styles: []Rule{
		{Selector: "Button", Style: map[string]any{"color": "#fff"}},
		{Selector: "View", Style: map[string]any{"children": nil}},
	}}
	err := th.Validate()
	var ye *errors.Error
	if !stderrors.As(err, &ye) {
		t.Fatalf("err = %v, want *errors.Error", err)
	}
	if ye.Path != "dark.styles[1].style.children" {
		t.Errorf("Path = %q", ye.Path)
	}
}

func TestStyleForPrecedence(t *testing.T) {
	th, err := ParseJSON([]byte(darkJSON))
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		node *vdom.Node
		want vdom.Props
	}{
		{vdom.Button("ok", "OK"), vdom.Props{"color": "#0f0", "bgColor": "#000"}},
		{vdom.Button("cancel", "Cancel"), vdom.Props{"color": "#fff", "bgColor": "#000"}},
		{vdom.Label("ok2", "x"), vdom.Props{}},
	}
	for _, tt := range tests {
		t.Run(tt.node.ID, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, th.StyleFor(tt.node)); diff != "" {
				t.Errorf("StyleFor (-want +got):\n%s", diff)
			}
		})
	}

	var none *Theme
	if got := none.StyleFor(vdom.Button("ok", "")); len(got) != 0 {
		t.Errorf("nil theme StyleFor = %v", got)
	}
}

func TestPatchesAndTransition(t *testing.T) {
	root := vdom.View("menu", vdom.Button("ok", "OK"), vdom.Label("title", "Hi"))
	dark, _ := ParseJSON([]byte(darkJSON))
	light := &Theme{Name: "light", Styles: []Rule{
		{Selector: "Button", Style: vdom.Props{"color": "#000"}},
		{Selector: "Label", Style: vdom.Props{"color": "#111"}},
	}}

	want := []vdom.Patch{
		vdom.NewPatch("ok", vdom.SetEntry("style", map[string]any{"color": "#0f0", "bgColor": "#000"})),
	}
	if diff := cmp.Diff(want, dark.Patches(root)); diff != "" {
		t.Errorf("Patches (-want +got):\n%s", diff)
	}

	want = []vdom.Patch{
		vdom.NewPatch("ok", vdom.SetEntry("style", map[string]any{"color": "#000", "bgColor": nil})),
		vdom.NewPatch("title", vdom.SetEntry("style", map[string]any{"color": "#111"})),
	}
	if diff := cmp.Diff(want, Transition(dark, light, root)); diff != "" {
		t.Errorf("Transition (-want +got):\n%s", diff)
	}
}
