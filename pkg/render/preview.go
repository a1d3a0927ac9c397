package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

// PreviewText formats a JSON document as indented, human readable text:
// objects as "key: value" lines, arrays as one item per line, strings
// quoted. Object keys keep their document order. Text that is not valid
// JSON is returned unchanged.
func PreviewText(data []byte) string {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var b strings.Builder
	if err := previewToken(dec, &b, 0); err != nil {
		return string(data)
	}
	if _, err := dec.Token(); err != io.EOF {
		return string(data)
	}
	return b.String()
}

func previewToken(dec *json.Decoder, b *strings.Builder, indent int) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	pad := strings.Repeat("  ", indent)

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			b.WriteString("{\n")
			first := true
			for dec.More() {
				if !first {
					b.WriteString(",\n")
				}
				first = false
				keyTok, err := dec.Token()
				if err != nil {
					return err
				}
				key, ok := keyTok.(string)
				if !ok {
					return fmt.Errorf("unexpected key %v", keyTok)
				}
				b.WriteString(pad + "  " + key + ": ")
				if err := previewToken(dec, b, indent+1); err != nil {
					return err
				}
			}
			if !first {
				b.WriteString("\n")
			}
			if _, err := dec.Token(); err != nil {
				return err
			}
			b.WriteString(pad + "}")
		case '[':
			b.WriteString("[\n")
			first := true
			for dec.More() {
				if !first {
					b.WriteString(",\n")
				}
				first = false
				b.WriteString(pad + "  ")
				if err := previewToken(dec, b, indent+1); err != nil {
					return err
				}
			}
			if !first {
				b.WriteString("\n")
			}
			if _, err := dec.Token(); err != nil {
				return err
			}
			b.WriteString(pad + "]")
		default:
			return fmt.Errorf("unexpected delimiter %v", t)
		}
	default:
		b.WriteString(scalarText(t))
	}
	return nil
}

// PreviewValue formats an already decoded value the same way. Go maps
// carry no order, so object keys are sorted.
func PreviewValue(v any) string {
	var b strings.Builder
	previewValue(&b, v, 0)
	return b.String()
}

func previewValue(b *strings.Builder, v any, indent int) {
	pad := strings.Repeat("  ", indent)
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("{\n")
		for i, k := range keys {
			b.WriteString(pad + "  " + k + ": ")
			previewValue(b, val[k], indent+1)
			if i < len(keys)-1 {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		b.WriteString(pad + "}")
	case []any:
		b.WriteString("[\n")
		for i, item := range val {
			b.WriteString(pad + "  ")
			previewValue(b, item, indent+1)
			if i < len(val)-1 {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		b.WriteString(pad + "]")
	default:
		b.WriteString(scalarText(val))
	}
}

func scalarText(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return `"` + t + `"`
	case bool:
		if t {
			return "true"
		}
		return "false"
	case json.Number:
		return t.String()
	case float64:
		return fmt.Sprintf("%g", t)
	}
	return fmt.Sprint(v)
}
