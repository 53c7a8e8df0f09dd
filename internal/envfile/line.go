package envfile

import "strings"

type LineType int

const (
	LineTypeEmpty LineType = iota
	LineTypeComment
	LineTypeVariable
	LineTypeInvalid
)

func (t LineType) String() string {
	switch t {
	case LineTypeEmpty:
		return "empty"
	case LineTypeComment:
		return "comment"
	case LineTypeVariable:
		return "variable"
	default:
		return "invalid"
	}
}

type Line struct {
	Type  LineType
	Num   int
	Raw   string
	Key   string
	Value string
}

// Classify decides what a single line of a .env file is. For variable lines
// Key is trimmed and Value is unescaped.
func Classify(raw string) Line {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Line{Type: LineTypeEmpty, Raw: raw}
	}
	if strings.HasPrefix(trimmed, "#") {
		return Line{Type: LineTypeComment, Raw: raw}
	}

	key, value, ok := splitAssignment(trimmed)
	if !ok {
		return Line{Type: LineTypeInvalid, Raw: raw}
	}
	return Line{
		Type:  LineTypeVariable,
		Raw:   raw,
		Key:   strings.TrimSpace(key),
		Value: Unescape(strings.TrimSpace(value)),
	}
}

// splitAssignment cuts at the first '='. The key part must not contain '#'.
func splitAssignment(s string) (key, value string, ok bool) {
	eq := strings.IndexByte(s, '=')
	if eq < 0 {
		return "", "", false
	}
	key = s[:eq]
	if strings.IndexByte(key, '#') >= 0 {
		return "", "", false
	}
	return key, s[eq+1:], true
}
