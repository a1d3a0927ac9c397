package render

import "strings"

// escapeHTML escapes text for safe inclusion in HTML content.
func escapeHTML(s string) string {
	return escape(s, false)
}

// escapeAttr escapes text for safe inclusion in HTML attribute values.
// Whitespace that could break attribute parsing is escaped as well.
func escapeAttr(s string) string {
	return escape(s, true)
}

func escape(s string, attr bool) string {
	if !strings.ContainsAny(s, "&<>\"'\n\r\t") {
		return s
	}

	var buf strings.Builder
	buf.Grow(len(s) + 8)

	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		case '\'':
			buf.WriteString("&#39;")
		case '\n':
			writeWS(&buf, attr, r, "&#10;")
		case '\r':
			writeWS(&buf, attr, r, "&#13;")
		case '\t':
			writeWS(&buf, attr, r, "&#9;")
		default:
			buf.WriteRune(r)
		}
	}

	return buf.String()
}

func writeWS(buf *strings.Builder, attr bool, r rune, entity string) {
	if attr {
		buf.WriteString(entity)
		return
	}
	buf.WriteRune(r)
}

// cssValue drops characters that could end a declaration or the style
// attribute itself. The result still goes through escapeAttr.
func cssValue(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ';', '{', '}', '<', '>', '"', '\\', '\n', '\r':
			return -1
		}
		return r
	}, s)
}
