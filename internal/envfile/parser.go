package envfile

import (
	"fmt"
	"io"
	"strings"
)

// Parse converts .env text into a model. It never fails: lines it cannot
// recognise are dropped, together with any comments waiting above them. A
// leading byte order mark is ignored.
func Parse(text string) *ParsedEnv {
	p := newParser()
	for _, line := range splitLines(text) {
		p.feed(line)
	}
	return p.env
}

// ParseReader is Parse over a stream. Errors come only from the reader;
// there is no line length limit.
func ParseReader(r io.Reader) (*ParsedEnv, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	return Parse(string(data)), nil
}

// InvalidLines returns the 1-based numbers of lines Parse would drop as
// unrecognised.
func InvalidLines(text string) []int {
	var nums []int
	for i, line := range splitLines(text) {
		if Classify(line).Type == LineTypeInvalid {
			nums = append(nums, i+1)
		}
	}
	return nums
}

type parser struct {
	env     *ParsedEnv
	pending []string
}

func newParser() *parser {
	return &parser{env: New()}
}

func (p *parser) feed(raw string) {
	line := Classify(raw)
	switch line.Type {
	case LineTypeEmpty:
		p.pending = nil
	case LineTypeComment:
		p.pending = append(p.pending, line.Raw)
	case LineTypeVariable:
		v := Variable{Key: line.Key, Value: line.Value}
		if len(p.pending) > 0 {
			v.PrecedingComments = p.pending
			p.pending = nil
		}
		p.env.Variables = append(p.env.Variables, v)
	default:
		p.pending = nil
	}
}

const byteOrderMark = "\ufeff"

func splitLines(text string) []string {
	lines := strings.Split(strings.TrimPrefix(text, byteOrderMark), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
