package envfile

// Variable is one key/value unit of a .env file. Value holds the logical
// value, without quotes or escapes.
type Variable struct {
	Key               string   `json:"key"`
	Value             string   `json:"value"`
	PrecedingComments []string `json:"precedingComments,omitempty"`
}

// ParsedEnv is the ordered list of variables of one open file.
type ParsedEnv struct {
	Variables []Variable `json:"variables"`
}

// New returns an empty, valid model.
func New() *ParsedEnv {
	return &ParsedEnv{Variables: []Variable{}}
}

// Len reports the number of variables; a nil model has none.
func (p *ParsedEnv) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Variables)
}

// Index returns the position of the first variable named key, or -1.
func (p *ParsedEnv) Index(key string) int {
	if p == nil {
		return -1
	}
	for i, v := range p.Variables {
		if v.Key == key {
			return i
		}
	}
	return -1
}

// Keys returns variable keys in file order. Duplicates are kept.
func (p *ParsedEnv) Keys() []string {
	keys := make([]string, 0, p.Len())
	if p == nil {
		return keys
	}
	for _, v := range p.Variables {
		keys = append(keys, v.Key)
	}
	return keys
}

// Clone returns a deep copy. A snapshot handed to another goroutine must be
// cloned, since handlers mutate the live model in place.
func (p *ParsedEnv) Clone() *ParsedEnv {
	if p == nil {
		return nil
	}
	out := &ParsedEnv{}
	if p.Variables == nil {
		return out
	}
	out.Variables = make([]Variable, len(p.Variables))
	for i, v := range p.Variables {
		out.Variables[i] = v
		if v.PrecedingComments != nil {
			out.Variables[i].PrecedingComments = append([]string(nil), v.PrecedingComments...)
		}
	}
	return out
}
