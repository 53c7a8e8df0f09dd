package host

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/go-logr/logr"
)

// Clipboard writes text to the system clipboard.
type Clipboard interface {
	WriteText(text string) error
}

type SystemClipboard struct{}

func (SystemClipboard) WriteText(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard is not supported on this system")
	}
	return clipboard.WriteAll(text)
}

// Presenter switches how the document is shown.
type Presenter interface {
	ShowRaw()
	ShowStructured()
}

// Notifier shows short, non-fatal messages to the user.
type Notifier interface {
	Info(msg string)
	Warn(msg string)
	Error(msg string)
}

// LogNotifier sends user messages to a logger, for sessions without a
// screen.
type LogNotifier struct {
	Log logr.Logger
}

func (n LogNotifier) Info(msg string)  { n.Log.Info(msg, "notify", "info") }
func (n LogNotifier) Warn(msg string)  { n.Log.Info(msg, "notify", "warn") }
func (n LogNotifier) Error(msg string) { n.Log.Info(msg, "notify", "error") }

type nopPresenter struct{}

func (nopPresenter) ShowRaw()        {}
func (nopPresenter) ShowStructured() {}
