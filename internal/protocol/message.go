// Package protocol defines the messages exchanged between the document host
// and an interactive view, and the transports that carry them.
package protocol

import "github.com/xmazu/envtable/internal/envfile"

type Kind string

const (
	KindUpdate     Kind = "update"
	KindSave       Kind = "save"
	KindCopy       Kind = "copy"
	KindToggleView Kind = "toggleView"
	KindLog        Kind = "log"
)

// Message is the closed set of protocol messages.
type Message interface {
	Kind() Kind
	isMessage()
}

// Update carries a fresh model from host to view.
type Update struct {
	Env *envfile.ParsedEnv
}

// Save asks the host to format Env and replace the whole document.
type Save struct {
	Env *envfile.ParsedEnv
}

// Copy asks the host to put Value on the system clipboard.
type Copy struct {
	Value string
}

// ToggleView asks the host to switch to the raw text presentation.
type ToggleView struct{}

type LogLevel string

const (
	LevelLog   LogLevel = "log"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// Log relays a diagnostic from the view. It has no effect on state.
type Log struct {
	Level   LogLevel
	Message string
	Args    []any
}

func (Update) Kind() Kind     { return KindUpdate }
func (Save) Kind() Kind       { return KindSave }
func (Copy) Kind() Kind       { return KindCopy }
func (ToggleView) Kind() Kind { return KindToggleView }
func (Log) Kind() Kind        { return KindLog }

func (Update) isMessage()     {}
func (Save) isMessage()       {}
func (Copy) isMessage()       {}
func (ToggleView) isMessage() {}
func (Log) isMessage()        {}
