package formatter

import "strings"

// quote wraps s in double quotes, escaping it the way strconv.Unquote reads
// it back.
func quote(s string) string {
	return `"` + escapeCStyle(s) + `"`
}

// escapeCStyle escapes special characters using C-style escape sequences.
func escapeCStyle(s string) string {
	if !strings.ContainsAny(s, "\"\\\n\t\r") {
		return s
	}

	var buf strings.Builder
	buf.Grow(len(s) + 10)

	for _, c := range s {
		switch c {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\t':
			buf.WriteString(`\t`)
		case '\r':
			buf.WriteString(`\r`)
		default:
			buf.WriteRune(c)
		}
	}

	return buf.String()
}
