// Package edit applies edit intents to an env file without a screen. Every
// change goes through a session and a host, the same path the interactive
// editor uses.
package edit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-logr/logr"

	"github.com/xmazu/envtable/internal/document"
	"github.com/xmazu/envtable/internal/envfile"
	"github.com/xmazu/envtable/internal/host"
	"github.com/xmazu/envtable/internal/protocol"
	"github.com/xmazu/envtable/internal/session"
)

var (
	ErrKeyNotFound = errors.New("key not found")
	ErrInvalidKey  = errors.New("invalid key")
)

type Editor struct {
	doc    *document.FileDocument
	host   *host.Host
	sess   *session.Session
	errs   *collector
	detach func()
}

// collector turns user-facing host errors into Go errors.
type collector struct {
	log  logr.Logger
	errs []error
}

func (c *collector) Info(msg string)  { c.log.V(1).Info(msg) }
func (c *collector) Warn(msg string)  { c.log.Info("WARN: " + msg) }
func (c *collector) Error(msg string) { c.errs = append(c.errs, errors.New(msg)) }

func (c *collector) take() error {
	err := errors.Join(c.errs...)
	c.errs = nil
	return err
}

type Options struct {
	FormatOnSave bool
	Log          logr.Logger
}

// Open loads path and connects a session to it. A missing file starts
// empty and is created on Commit.
func Open(path string, opts Options) (*Editor, error) {
	doc, err := document.Open(path)
	if err != nil {
		return nil, err
	}
	log := opts.Log
	if log.GetSink() == nil {
		log = logr.Discard()
	}

	e := &Editor{doc: doc, errs: &collector{log: log}}
	e.host = host.New(doc,
		host.WithNotifier(e.errs),
		host.WithLogger(log),
		host.WithFormatOnSave(opts.FormatOnSave),
		host.WithFile(path),
	)
	e.sess = session.New(session.PostFunc(func(msg protocol.Message) bool {
		e.host.Handle(msg)
		return true
	}))
	e.detach = e.host.Attach(session.PostFunc(func(msg protocol.Message) bool {
		e.sess.Receive(msg)
		return true
	}))
	return e, nil
}

func (e *Editor) Path() string { return e.doc.Path() }

// Env is the current model. It must not be modified.
func (e *Editor) Env() *envfile.ParsedEnv { return e.sess.Env() }

func (e *Editor) Text() string { return e.doc.Text() }

// ValidateKey rejects names the parser would not read back as the same key.
func ValidateKey(key string) error {
	switch {
	case strings.TrimSpace(key) == "":
		return fmt.Errorf("%w: empty", ErrInvalidKey)
	case strings.TrimSpace(key) != key:
		return fmt.Errorf("%w: %q has surrounding whitespace", ErrInvalidKey, key)
	case strings.ContainsAny(key, "=#\n\r"):
		return fmt.Errorf("%w: %q must not contain '=', '#' or newlines", ErrInvalidKey, key)
	}
	return nil
}

// Set updates key in place or adds it as the first row. It reports whether
// the key was new.
func (e *Editor) Set(key, value string) (bool, error) {
	if err := ValidateKey(key); err != nil {
		return false, err
	}
	if strings.ContainsAny(value, "\n\r") {
		return false, fmt.Errorf("value for %s must be a single line", key)
	}

	if i := e.Env().Index(key); i >= 0 {
		e.sess.UpdateValue(i, value)
		return false, e.errs.take()
	}
	e.sess.AddVariable()
	e.sess.TakeFocusNew()
	e.sess.UpdateKey(0, key)
	e.sess.UpdateValue(0, value)
	return true, e.errs.take()
}

// Unset deletes the first row holding key.
func (e *Editor) Unset(key string) error {
	i := e.Env().Index(key)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	e.sess.DeleteVariable(i)
	return e.errs.take()
}

// Move places key at position, counted from 0 in the resulting order.
func (e *Editor) Move(key string, position int) error {
	from := e.Env().Index(key)
	if from < 0 {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	n := e.Env().Len()
	if position < 0 || position >= n {
		return fmt.Errorf("position %d out of range [0, %d)", position, n)
	}
	to := position
	if from < position {
		to = position + 1
	}
	e.sess.ReorderVariable(from, to)
	return e.errs.take()
}

// Dirty reports whether there are edits not yet written.
func (e *Editor) Dirty() bool { return e.doc.Dirty() }

// Commit writes the document, normalizing it first when enabled.
func (e *Editor) Commit() error {
	if err := e.host.Persist(); err != nil {
		return err
	}
	return e.errs.take()
}

// Format rewrites the document into canonical form and reports whether it
// changed.
func (e *Editor) Format() (bool, error) {
	text, changed, err := envfile.Normalize(e.doc.Text())
	if err != nil {
		return false, err
	}
	if changed {
		e.host.Replace(text)
	}
	return changed, e.errs.take()
}

func (e *Editor) Close() {
	if e.detach != nil {
		e.detach()
		e.detach = nil
	}
}
