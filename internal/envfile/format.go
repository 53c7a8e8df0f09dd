package envfile

import (
	"errors"
	"strings"
)

var ErrInvalidModel = errors.New("invalid parsed environment data")

// Format serializes the model into canonical text: comments verbatim, every
// value double-quoted, lines joined by "\n" without a trailing newline.
func Format(env *ParsedEnv) (string, error) {
	if env == nil || env.Variables == nil {
		return "", ErrInvalidModel
	}

	lines := make([]string, 0, len(env.Variables))
	for _, v := range env.Variables {
		lines = append(lines, v.PrecedingComments...)
		lines = append(lines, v.Key+`="`+Escape(v.Value)+`"`)
	}
	return strings.Join(lines, "\n"), nil
}

// Normalize re-parses and re-formats text. The second result is false when
// the text is already canonical.
func Normalize(text string) (string, bool, error) {
	formatted, err := Format(Parse(text))
	if err != nil {
		return "", false, err
	}
	return formatted, formatted != text, nil
}
