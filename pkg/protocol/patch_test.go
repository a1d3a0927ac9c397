package protocol

import (
	"encoding/json"
	"testing"

	"github.com/vango-dev/yui/internal/errors"
	"github.com/vango-dev/yui/pkg/vdom"
)

func TestDecodeUpdateShapes(t *testing.T) {
	single := `{"target":"btn3","change":{"visible":null,"text":"Go"}}`
	array := `[{"target":"a","change":{"text":"1"}},{"target":"b","change":{}}]`

	var decodedObj map[string]any
	if err := json.Unmarshal([]byte(single), &decodedObj); err != nil {
		t.Fatal(err)
	}
	var decodedArr []any
	if err := json.Unmarshal([]byte(array), &decodedArr); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		input   any
		targets []string
	}{
		{"string object", single, []string{"btn3"}},
		{"bytes array", []byte(array), []string{"a", "b"}},
		{"raw message", json.RawMessage(single), []string{"btn3"}},
		{"decoded object", decodedObj, []string{"btn3"}},
		{"decoded array", decodedArr, []string{"a", "b"}},
		{"patch", vdom.NewPatch("x", vdom.SetEntry("text", "y")), []string{"x"}},
		{"patch slice", []vdom.Patch{vdom.NewPatch("x"), vdom.NewPatch("y")}, []string{"x", "y"}},
		{"whitespace", "  \n" + single + "\n", []string{"btn3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			patches, errs := DecodeUpdate(tt.input)
			if len(errs) != 0 {
				t.Fatalf("unexpected errors: %v", errs)
			}
			if len(patches) != len(tt.targets) {
				t.Fatalf("got %d patches, want %d", len(patches), len(tt.targets))
			}
			for i, target := range tt.targets {
				if patches[i].Target != target {
					t.Errorf("patch %d target = %q, want %q", i, patches[i].Target, target)
				}
			}
		})
	}
}

func TestDecodeUpdateKeepsChangeOrder(t *testing.T) {
	patches, errs := DecodeUpdate(`{"target":"t","change":{"z":1,"a":null,"m":"x"}}`)
	if len(errs) != 0 {
		t.Fatalf("errors: %v", errs)
	}
	keys := patches[0].Change.Keys()
	if len(keys) != 3 || keys[0] != "z" || keys[1] != "a" || keys[2] != "m" {
		t.Errorf("keys = %v, want [z a m]", keys)
	}
	if v, _ := patches[0].Change.Get("a"); !v.IsRemove() {
		t.Errorf("a = %v, want Remove", v)
	}
}

func TestDecodeUpdateInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input any
		code  string
	}{
		{"nil", nil, errors.CodeInvalidPatch},
		{"empty string", "   ", errors.CodeInvalidPatch},
		{"bad json", `{"target":`, errors.CodeParse},
		{"scalar", `42`, errors.CodeParse},
		{"missing change", `{"target":"a"}`, errors.CodeInvalidPatch},
		{"null change", `{"target":"a","change":null}`, errors.CodeInvalidPatch},
		{"array change", `{"target":"a","change":[1]}`, errors.CodeInvalidPatch},
		{"missing target", `{"change":{}}`, errors.CodeInvalidPatch},
		{"numeric target", `{"target":3,"change":{}}`, errors.CodeParse},
		{"map without change", map[string]any{"target": "a"}, errors.CodeInvalidPatch},
		{"unsupported type", 3.5, errors.CodeInvalidPatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			patches, errs := DecodeUpdate(tt.input)
			if len(patches) != 0 {
				t.Errorf("expected no patches, got %v", patches)
			}
			if len(errs) != 1 {
				t.Fatalf("expected 1 error, got %v", errs)
			}
			if !errors.HasCode(errs[0], tt.code) {
				t.Errorf("error = %v, want code %s", errs[0], tt.code)
			}
		})
	}
}

func TestDecodeUpdatePartialArray(t *testing.T) {
	input := `[{"target":"a","change":{"text":"1"}},{"change":{}},"nope",{"target":"b","change":{}}]`
	patches, errs := DecodeUpdate(input)
	if len(patches) != 2 {
		t.Errorf("got %d patches, want 2", len(patches))
	}
	if len(errs) != 2 {
		t.Errorf("got %d errors, want 2: %v", len(errs), errs)
	}
}

func TestEncodePatches(t *testing.T) {
	data, err := EncodePatches([]vdom.Patch{
		vdom.NewPatch("t", vdom.SetEntry("text", "hi"), vdom.RemoveEntry("visible")),
	})
	if err != nil {
		t.Fatalf("EncodePatches: %v", err)
	}
	want := `[{"target":"t","change":{"text":"hi","visible":null}}]`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}

	empty, _ := EncodePatches(nil)
	if string(empty) != "[]" {
		t.Errorf("nil patches = %s, want []", empty)
	}
}
