// Package session holds the view side of an editing session: the live model
// and the edit intents that mutate it.
package session

import (
	"github.com/xmazu/envtable/internal/envfile"
	"github.com/xmazu/envtable/internal/protocol"
)

// Poster delivers a message to the host. *protocol.Endpoint satisfies it.
type Poster interface {
	Send(msg protocol.Message) bool
}

// PostFunc adapts a function to Poster.
type PostFunc func(msg protocol.Message) bool

func (f PostFunc) Send(msg protocol.Message) bool { return f(msg) }

// Session is the state of one open structured view. It is owned by a single
// goroutine; handlers are synchronous and never block on the host.
type Session struct {
	env      *envfile.ParsedEnv
	focusNew bool
	post     Poster
}

func New(post Poster) *Session {
	return &Session{
		env:  envfile.New(),
		post: post,
	}
}

// Env returns the live model. Callers must not keep it across turns.
func (s *Session) Env() *envfile.ParsedEnv {
	return s.env
}

func (s *Session) Len() int {
	return s.env.Len()
}

// Receive is the single dispatch point for host-to-view messages. It
// reports whether the view should re-render.
func (s *Session) Receive(msg protocol.Message) bool {
	switch m := msg.(type) {
	case protocol.Update:
		s.Replace(m.Env)
		return true
	default:
		s.Log(protocol.LevelWarn, "unknown message type", string(msg.Kind()))
		return false
	}
}

// Replace installs a new model wholesale, discarding local state.
func (s *Session) Replace(env *envfile.ParsedEnv) {
	if env == nil || env.Variables == nil {
		env = envfile.New()
	}
	s.env = env
}

// TakeFocusNew reports and clears the request to focus a freshly added row.
func (s *Session) TakeFocusNew() bool {
	f := s.focusNew
	s.focusNew = false
	return f
}

func (s *Session) FocusNew() bool {
	return s.focusNew
}

func (s *Session) valid(i int) bool {
	return i >= 0 && i < len(s.env.Variables)
}

func (s *Session) UpdateKey(i int, key string) {
	if !s.valid(i) {
		return
	}
	s.env.Variables[i].Key = key
	s.save()
}

func (s *Session) UpdateValue(i int, value string) {
	if !s.valid(i) {
		return
	}
	s.env.Variables[i].Value = value
	s.save()
}

func (s *Session) DeleteVariable(i int) {
	if !s.valid(i) {
		return
	}
	s.env.Variables = append(s.env.Variables[:i], s.env.Variables[i+1:]...)
	s.save()
}

// AddVariable always prepends a blank row.
func (s *Session) AddVariable() {
	s.env.Variables = append([]envfile.Variable{{}}, s.env.Variables...)
	s.focusNew = true
	s.save()
}

// ReorderVariable moves the row at from so that it lands just before the
// row that was at position to, or last when to == Len().
func (s *Session) ReorderVariable(from, to int) {
	if from == to {
		return
	}
	n := len(s.env.Variables)
	if from < 0 || from >= n || to < 0 || to > n {
		return
	}

	vars := s.env.Variables
	moved := vars[from]
	vars = append(vars[:from], vars[from+1:]...)

	at := to
	if from < to {
		at = to - 1
	}
	vars = append(vars, envfile.Variable{})
	copy(vars[at+1:], vars[at:])
	vars[at] = moved

	s.env.Variables = vars
	s.save()
}

func (s *Session) CopyValue(i int) {
	if !s.valid(i) {
		return
	}
	s.post.Send(protocol.Copy{Value: s.env.Variables[i].Value})
}

func (s *Session) ToggleView() {
	s.post.Send(protocol.ToggleView{})
}

// Log relays a diagnostic to the host.
func (s *Session) Log(level protocol.LogLevel, message string, args ...any) {
	s.post.Send(protocol.Log{Level: level, Message: message, Args: args})
}

func (s *Session) save() {
	s.post.Send(protocol.Save{Env: s.env.Clone()})
}
