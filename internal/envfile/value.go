package envfile

import "strings"

// Escape backslash-escapes double quotes. Backslashes and newlines are left
// alone.
func Escape(value string) string {
	return strings.ReplaceAll(value, `"`, `\"`)
}

// Unescape strips exactly one level of matching double or single quotes and
// unescapes the quote character. Bare values are returned unchanged.
func Unescape(raw string) string {
	if len(raw) > 1 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		return strings.ReplaceAll(raw[1:len(raw)-1], `\"`, `"`)
	}
	if len(raw) > 1 && raw[0] == '\'' && raw[len(raw)-1] == '\'' {
		return strings.ReplaceAll(raw[1:len(raw)-1], `\'`, `'`)
	}
	return raw
}
