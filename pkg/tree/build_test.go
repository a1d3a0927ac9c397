package tree

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/yui/internal/errors"
	"github.com/vango-dev/yui/pkg/vdom"
)

func TestBuild(t *testing.T) {
	doc := `{
		"id": "menu",
		"type": "View",
		"size": [320, 200],
		"position": [10, 20],
		"style": {"bgColor": "#202020"},
		"layout": "vertical",
		"children": [
			{"type": "Label", "text": "Pick one"},
			{"id": "ok", "type": "Button", "text": "OK"}
		]
	}`

	got, err := Build([]byte(doc))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := vdom.El(vdom.TypeView, "menu",
		vdom.Size(320, 200),
		vdom.Position(10, 20),
		vdom.Style("bgColor", "#202020"),
		vdom.Attr("layout", "vertical"),
		vdom.Children(
			vdom.Label("_0_0", "Pick one"),
			vdom.Button("ok", "OK"),
		),
	)
	want.Children[0].AutoID = true

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Build mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildAutoIDs(t *testing.T) {
	doc := `{"type":"View","children":[{"type":"Label"},{"type":"View","children":[{"type":"Button"}]}]}`

	root, err := Build([]byte(doc))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var ids []string
	vdom.Walk(root, func(n, _ *vdom.Node) bool {
		ids = append(ids, n.ID)
		if !n.AutoID {
			t.Errorf("node %s: AutoID = false", n.ID)
		}
		return true
	})
	want := []string{"_0", "_0_0", "_0_1", "_0_1_0"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}

	// Generated ids are stable across builds.
	again, _ := Build([]byte(doc))
	if diff := cmp.Diff(root, again); diff != "" {
		t.Errorf("second build differs:\n%s", diff)
	}

	prefixed, err := Build([]byte(doc), WithIDPrefix("menu"))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if prefixed.ID != "menu_0" || prefixed.Children[1].Children[0].ID != "menu_0_1_0" {
		t.Errorf("prefixed ids = %s, %s", prefixed.ID, prefixed.Children[1].Children[0].ID)
	}
}

func TestBuildSquareSize(t *testing.T) {
	root, err := Build([]byte(`{"type":"Image","size":[48]}`))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if root.Size == nil || *root.Size != (vdom.Vec2{48, 48}) {
		t.Errorf("Size = %v, want [48 48]", root.Size)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code string
		path string
	}{
		{"invalid json", `{"type": "View",`, errors.CodeParse, ""},
		{"array root", `[1, 2]`, errors.CodeParse, ""},
		{"missing type", `{"id": "a"}`, errors.CodeMissingType, "$"},
		{"numeric type", `{"type": 3}`, errors.CodeMissingType, "$"},
		{"child missing type", `{"type":"View","children":[{"type":"Label"},{"id":"x"}]}`, errors.CodeMissingType, "$.children[1]"},
		{"duplicate id", `{"id":"a","type":"View","children":[{"id":"a","type":"Label"}]}`, errors.CodeDuplicateID, "$.children[0]"},
		{"children not array", `{"type":"View","children":{"type":"Label"}}`, errors.CodeInvalidField, "$.children"},
		{"child not object", `{"type":"View","children":["Label"]}`, errors.CodeInvalidField, "$.children[0]"},
		{"bad size", `{"type":"View","size":[1,2,3]}`, errors.CodeInvalidField, "$.size"},
		{"bad position", `{"type":"View","position":[5]}`, errors.CodeInvalidField, "$.position"},
		{"style not object", `{"type":"View","style":"red"}`, errors.CodeInvalidField, "$.style"},
		{"text not string", `{"type":"Label","text":{"a":1}}`, errors.CodeInvalidField, "$.text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build([]byte(tt.doc))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.HasCode(err, tt.code) {
				t.Fatalf("error = %v, want code %s", err, tt.code)
			}
			if tt.path != "" {
				ye := errors.FromError(err, "")
				if ye.Path != tt.path {
					t.Errorf("Path = %q, want %q", ye.Path, tt.path)
				}
			}
		})
	}
}

func TestBuildParseErrorLocation(t *testing.T) {
	doc := "{\n  \"type\": \"View\",\n  \"text\": oops\n}"
	_, err := Build([]byte(doc), WithFile("menu.json"))
	ye := errors.FromError(err, "")
	if ye == nil || ye.Location == nil {
		t.Fatalf("expected location, got %v", err)
	}
	if ye.Location.File != "menu.json" || ye.Location.Line != 3 {
		t.Errorf("Location = %v, want menu.json line 3", ye.Location)
	}
}

func TestBuildWithComments(t *testing.T) {
	doc := `{
		// the root
		"type": "View", /* inline */
		"text": "http://example.com/*not a comment*/"
	}`
	if _, err := Build([]byte(doc)); err == nil {
		t.Error("comments should fail without WithComments")
	}
	root, err := Build([]byte(doc), WithComments())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if root.TextValue() != "http://example.com/*not a comment*/" {
		t.Errorf("text = %q", root.TextValue())
	}
}

func TestStripCommentsKeepsOffsets(t *testing.T) {
	in := []byte("a // b\nc /* d\ne */ f \"//g\"")
	out := StripComments(in)
	if len(out) != len(in) {
		t.Fatalf("len = %d, want %d", len(out), len(in))
	}
	want := "a" + strings.Repeat(" ", 5) + "\nc" + strings.Repeat(" ", 5) + "\n" + strings.Repeat(" ", 5) + "f \"//g\""
	if string(out) != want {
		t.Errorf("StripComments = %q, want %q", out, want)
	}
}

func TestBuildYAML(t *testing.T) {
	doc := `
id: menu
type: View
size: [100, 50]
children:
  - type: Label
    text: hello
  - id: ok
    type: Button
    style:
      radius: 4
`
	root, err := BuildYAML([]byte(doc))
	if err != nil {
		t.Fatalf("BuildYAML: %v", err)
	}
	if root.ID != "menu" || *root.Size != (vdom.Vec2{100, 50}) {
		t.Errorf("root = %s %v", root.ID, root.Size)
	}
	if len(root.Children) != 2 || root.Children[0].ID != "_0_0" {
		t.Fatalf("children = %v", root.Children)
	}
	if r := root.Children[1].Style["radius"]; r != 4.0 {
		t.Errorf("radius = %#v, want float64 4", r)
	}

	if _, err := BuildYAML([]byte("type: [unclosed")); !errors.HasCode(err, errors.CodeParse) {
		t.Errorf("error = %v, want parse error", err)
	}
}

func TestBuildValue(t *testing.T) {
	root, err := BuildValue(map[string]any{
		"type": "View",
		"id":   "root",
		"size": []any{10, 20},
		"children": []any{
			map[string]any{"type": "Label", "text": "x"},
		},
	})
	if err != nil {
		t.Fatalf("BuildValue: %v", err)
	}
	if *root.Size != (vdom.Vec2{10, 20}) || root.Children[0].ID != "_0_0" {
		t.Errorf("root = %+v", root)
	}
}

func TestParseByExtension(t *testing.T) {
	if _, err := Parse("menu.yaml", []byte("type: View")); err != nil {
		t.Errorf("yaml: %v", err)
	}
	if _, err := Parse("menu.jsonc", []byte(`{"type":"View"} // done`)); err != nil {
		t.Errorf("jsonc: %v", err)
	}
	if _, err := Parse("menu.json", []byte(`{"type":"View"} // done`)); err == nil {
		t.Error("json should reject comments")
	}
}

func TestValidate(t *testing.T) {
	ok := vdom.View("root", vdom.Label("a", "A"))
	if err := Validate(ok); err != nil {
		t.Errorf("Validate: %v", err)
	}

	dup := vdom.View("root", vdom.Label("a", "A"), vdom.Button("a", "B"))
	if err := Validate(dup); !errors.HasCode(err, errors.CodeDuplicateID) {
		t.Errorf("duplicate: %v", err)
	}

	untyped := vdom.View("root", &vdom.Node{ID: "x"})
	if err := Validate(untyped); !errors.HasCode(err, errors.CodeMissingType) {
		t.Errorf("untyped: %v", err)
	}

	if err := Validate(nil); err == nil {
		t.Error("nil tree should fail")
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	orig := vdom.El(vdom.TypeView, "root",
		vdom.Size(100, 100),
		vdom.Style("bgColor", "#fff"),
		vdom.Attr("layout", "row"),
		vdom.Children(vdom.Label("l", "hi")),
	)
	data, err := Marshal(orig)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	back, err := Build(data)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if diff := cmp.Diff(orig, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWalkDepth(t *testing.T) {
	root := vdom.View("a", vdom.View("b", vdom.Label("c", "")))
	depths := map[string]int{}
	Walk(root, func(n *vdom.Node, depth int) bool {
		depths[n.ID] = depth
		return true
	})
	if diff := cmp.Diff(map[string]int{"a": 0, "b": 1, "c": 2}, depths); diff != "" {
		t.Errorf("depths mismatch:\n%s", diff)
	}
}
