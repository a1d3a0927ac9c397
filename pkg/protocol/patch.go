package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vango-dev/yui/internal/errors"
	"github.com/vango-dev/yui/pkg/vdom"
)

// DecodeUpdate turns update input into patches. It never fails as a
// whole: undecodable input or elements are returned as errors next to the
// patches that did decode.
func DecodeUpdate(input any) ([]vdom.Patch, []error) {
	switch v := input.(type) {
	case nil:
		return nil, []error{invalidPatch("", "update is empty")}
	case vdom.Patch:
		return checkPatches([]vdom.Patch{v})
	case *vdom.Patch:
		if v == nil {
			return nil, []error{invalidPatch("", "update is empty")}
		}
		return checkPatches([]vdom.Patch{*v})
	case []vdom.Patch:
		return checkPatches(append([]vdom.Patch(nil), v...))
	case string:
		return decodeJSON([]byte(v))
	case []byte:
		return decodeJSON(v)
	case json.RawMessage:
		return decodeJSON(v)
	case map[string]any:
		p, err := patchFromMap(v, "")
		if err != nil {
			return nil, []error{err}
		}
		return []vdom.Patch{p}, nil
	case []any:
		return patchesFromList(v)
	}
	return nil, []error{invalidPatch("", fmt.Sprintf("unsupported update input %T", input))}
}

func checkPatches(patches []vdom.Patch) ([]vdom.Patch, []error) {
	var errs []error
	out := patches[:0]
	for i, p := range patches {
		if p.Target == "" {
			errs = append(errs, invalidPatch(index(i), "target is required"))
			continue
		}
		out = append(out, p)
	}
	return out, errs
}

func decodeJSON(data []byte) ([]vdom.Patch, []error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, []error{invalidPatch("", "update is empty")}
	}
	if len(data) > MaxFrameSize {
		return nil, []error{invalidPatch("", "update is too large")}
	}

	switch data[0] {
	case '{':
		p, err := patchFromJSON(data, "")
		if err != nil {
			return nil, []error{err}
		}
		return []vdom.Patch{p}, nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, []error{errors.New(errors.CodeParse).Wrap(err).WithDetail(err.Error())}
		}
		if len(items) > MaxPatchesPerFrame {
			return nil, []error{invalidPatch("", fmt.Sprintf("more than %d patches", MaxPatchesPerFrame))}
		}
		var (
			patches []vdom.Patch
			errs    []error
		)
		for i, item := range items {
			p, err := patchFromJSON(item, index(i))
			if err != nil {
				errs = append(errs, err)
				continue
			}
			patches = append(patches, p)
		}
		return patches, errs
	}
	return nil, []error{errors.New(errors.CodeParse).WithDetail("update must be a JSON object or array")}
}

type wirePatch struct {
	Target *string         `json:"target"`
	Change json.RawMessage `json:"change"`
}

func patchFromJSON(data []byte, path string) (vdom.Patch, error) {
	var w wirePatch
	if err := json.Unmarshal(data, &w); err != nil {
		return vdom.Patch{}, errors.New(errors.CodeParse).WithPath(path).Wrap(err).WithDetail(err.Error())
	}
	if w.Target == nil || *w.Target == "" {
		return vdom.Patch{}, invalidPatch(path, "target is required")
	}
	change := bytes.TrimSpace(w.Change)
	if len(change) == 0 || change[0] != '{' {
		return vdom.Patch{}, invalidPatch(joinPath(path, *w.Target), "change must be an object")
	}
	var c vdom.Change
	if err := json.Unmarshal(change, &c); err != nil {
		return vdom.Patch{}, invalidPatch(joinPath(path, *w.Target), err.Error()).Wrap(err)
	}
	return vdom.Patch{Target: *w.Target, Change: c}, nil
}

func patchFromMap(m map[string]any, path string) (vdom.Patch, error) {
	target, _ := m["target"].(string)
	if target == "" {
		return vdom.Patch{}, invalidPatch(path, "target is required")
	}
	change, ok := m["change"].(map[string]any)
	if !ok {
		return vdom.Patch{}, invalidPatch(joinPath(path, target), "change must be an object")
	}
	return vdom.Patch{Target: target, Change: vdom.ChangeFromMap(change)}, nil
}

func patchesFromList(list []any) ([]vdom.Patch, []error) {
	var (
		patches []vdom.Patch
		errs    []error
	)
	for i, item := range list {
		switch v := item.(type) {
		case map[string]any:
			p, err := patchFromMap(v, index(i))
			if err != nil {
				errs = append(errs, err)
				continue
			}
			patches = append(patches, p)
		case vdom.Patch:
			patches = append(patches, v)
		default:
			errs = append(errs, invalidPatch(index(i), fmt.Sprintf("patch must be an object, got %T", item)))
		}
	}
	return patches, errs
}

// EncodePatches encodes patches as a JSON array, keeping change order.
func EncodePatches(patches []vdom.Patch) ([]byte, error) {
	if patches == nil {
		patches = []vdom.Patch{}
	}
	return json.Marshal(patches)
}

func invalidPatch(path, detail string) *errors.Error {
	return errors.New(errors.CodeInvalidPatch).WithPath(path).WithDetail(detail)
}

func index(i int) string {
	return fmt.Sprintf("[%d]", i)
}

func joinPath(path, target string) string {
	if path == "" {
		return target
	}
	return path + " " + target
}
