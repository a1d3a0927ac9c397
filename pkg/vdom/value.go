package vdom

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// Value is one requested property change: either Set(v) or Remove().
type Value struct {
	remove bool
	v      any
}

// Set returns a Value that assigns v.
func Set(v any) Value {
	return Value{v: v}
}

// Remove returns a Value that removes the property. For "visible" this
// hides the element.
func Remove() Value {
	return Value{remove: true}
}

// IsRemove reports whether the value is a removal.
func (v Value) IsRemove() bool {
	return v.remove
}

// Get returns the assigned value. It is nil for removals.
func (v Value) Get() any {
	return v.v
}

// Equal reports whether v and o are the same operation with equal values.
func (v Value) Equal(o Value) bool {
	return v.remove == o.remove && PropsEqual(v.v, o.v)
}

// String returns a debug representation.
func (v Value) String() string {
	if v.remove {
		return "Remove"
	}
	return fmt.Sprintf("Set(%v)", v.v)
}

// MarshalJSON encodes removals as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.remove {
		return []byte("null"), nil
	}
	return json.Marshal(v.v)
}

// UnmarshalJSON decodes null as Remove and anything else as Set.
func (v *Value) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = Remove()
		return nil
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = Set(raw)
	return nil
}

// Entry is one key of a Change.
type Entry struct {
	Key   string
	Value Value
}

// SetEntry returns an entry assigning v to key.
func SetEntry(key string, v any) Entry {
	return Entry{Key: key, Value: Set(v)}
}

// RemoveEntry returns an entry removing key.
func RemoveEntry(key string) Entry {
	return Entry{Key: key, Value: Remove()}
}

// Change is an ordered set of property changes. When a key appears more
// than once the last entry wins.
type Change []Entry

// Get returns the effective value for key.
func (c Change) Get(key string) (Value, bool) {
	for i := len(c) - 1; i >= 0; i-- {
		if c[i].Key == key {
			return c[i].Value, true
		}
	}
	return Value{}, false
}

// Keys returns the distinct keys in first-seen order.
func (c Change) Keys() []string {
	seen := make(map[string]bool, len(c))
	keys := make([]string, 0, len(c))
	for _, e := range c {
		if !seen[e.Key] {
			seen[e.Key] = true
			keys = append(keys, e.Key)
		}
	}
	return keys
}

// ChangeFromMap builds a Change from a decoded object. Keys are sorted
// since Go maps carry no order; nil values become removals.
func ChangeFromMap(m map[string]any) Change {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	c := make(Change, 0, len(keys))
	for _, k := range keys {
		if m[k] == nil {
			c = append(c, RemoveEntry(k))
		} else {
			c = append(c, SetEntry(k, m[k]))
		}
	}
	return c
}

// MarshalJSON encodes the change as an object in entry order.
func (c Change) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := e.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object keeping its key order.
func (c *Change) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("change must be an object, got %v", tok)
	}

	out := Change{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}
		var v Value
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("change %q: %w", key, err)
		}
		out = append(out, Entry{Key: key, Value: v})
	}
	if _, err := dec.Token(); err != nil && err != io.EOF {
		return err
	}
	*c = out
	return nil
}

// Patch is a sparse, by-id property update.
type Patch struct {
	Target string `json:"target"`
	Change Change `json:"change"`
}

// NewPatch returns a patch for target with the given entries.
func NewPatch(target string, entries ...Entry) Patch {
	return Patch{Target: target, Change: Change(entries)}
}
