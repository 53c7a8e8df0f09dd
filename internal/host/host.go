// Package host is the document side of an editing session. It turns view
// messages into document edits and pushes document changes back as models.
package host

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/go-logr/logr"

	"github.com/xmazu/envtable/internal/audit"
	"github.com/xmazu/envtable/internal/document"
	"github.com/xmazu/envtable/internal/envfile"
	"github.com/xmazu/envtable/internal/protocol"
	"github.com/xmazu/envtable/internal/session"
)

const CopiedMessage = "Value copied to clipboard"

// Persister writes a document to its backing store.
type Persister interface {
	Persist() error
}

// Reloader picks up changes made to the backing store by someone else.
type Reloader interface {
	Reload() (bool, error)
}

// Host owns one document and serves one view. Handle, Persist and the
// document listeners must run on the same goroutine; Run provides one.
type Host struct {
	doc       document.Document
	view      session.Poster
	clipboard Clipboard
	presenter Presenter
	notifier  Notifier
	log       logr.Logger
	audit     *audit.Log
	sessionID string
	file      string

	formatOnSave bool
	autoPersist  bool

	tasks   chan func()
	cancels []func()
}

type Option func(*Host)

func WithClipboard(c Clipboard) Option { return func(h *Host) { h.clipboard = c } }

func WithPresenter(p Presenter) Option { return func(h *Host) { h.presenter = p } }

func WithNotifier(n Notifier) Option { return func(h *Host) { h.notifier = n } }

func WithLogger(log logr.Logger) Option { return func(h *Host) { h.log = log } }

// WithAudit records saves and normalizations in l. A nil log disables
// auditing.
func WithAudit(l *audit.Log, sessionID string) Option {
	return func(h *Host) {
		h.audit = l
		h.sessionID = sessionID
	}
}

// WithFormatOnSave rewrites the document into canonical form before every
// persist.
func WithFormatOnSave(on bool) Option { return func(h *Host) { h.formatOnSave = on } }

// WithAutoPersist writes the document after every accepted save message.
func WithAutoPersist(on bool) Option { return func(h *Host) { h.autoPersist = on } }

// WithFile names the document in audit entries and log lines.
func WithFile(path string) Option { return func(h *Host) { h.file = path } }

func New(doc document.Document, opts ...Option) *Host {
	h := &Host{
		doc:          doc,
		clipboard:    SystemClipboard{},
		presenter:    nopPresenter{},
		log:          logr.Discard(),
		formatOnSave: true,
		tasks:        make(chan func(), 16),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.notifier == nil {
		h.notifier = LogNotifier{Log: h.log}
	}
	if h.file != "" {
		h.log = h.log.WithValues("file", filepath.Base(h.file))
	}
	return h
}

// Attach connects a view, registers the document listeners and sends the
// initial model. The returned func detaches both listeners.
func (h *Host) Attach(view session.Poster) func() {
	h.view = view
	h.cancels = append(h.cancels,
		h.doc.OnExternalChange(h.PushUpdate),
		h.doc.OnBeforePersist(h.normalize),
	)
	h.PushUpdate()
	return h.Detach
}

func (h *Host) Detach() {
	for _, cancel := range h.cancels {
		cancel()
	}
	h.cancels = nil
	h.view = nil
}

// PushUpdate parses the current text and sends it to the view.
func (h *Host) PushUpdate() {
	if h.view == nil {
		return
	}
	env := envfile.Parse(h.doc.Text())
	if !h.view.Send(protocol.Update{Env: env}) {
		h.log.V(1).Info("view gone, update dropped")
	}
}

// Handle is the single dispatch point for view-to-host messages.
func (h *Host) Handle(msg protocol.Message) {
	switch m := msg.(type) {
	case protocol.Log:
		h.relay(m)
	case protocol.Copy:
		if err := h.clipboard.WriteText(m.Value); err != nil {
			h.notifier.Error(fmt.Sprintf("Operation failed: %v", err))
			return
		}
		h.notifier.Info(CopiedMessage)
	case protocol.Save:
		h.save(m.Env)
	case protocol.ToggleView:
		h.presenter.ShowRaw()
	default:
		h.log.Info("ignoring message", "type", string(msg.Kind()))
	}
}

func (h *Host) save(env *envfile.ParsedEnv) {
	text, err := envfile.Format(env)
	if err == nil {
		err = h.doc.ReplaceAll(text)
	}
	if err != nil {
		h.log.Error(err, "save failed")
		h.notifier.Error(fmt.Sprintf("Operation failed: %v", err))
		return
	}
	h.record(audit.OpSave, env.Keys())
	if h.autoPersist {
		if err := h.Persist(); err != nil {
			h.notifier.Error(fmt.Sprintf("Operation failed: %v", err))
		}
	}
}

// normalize runs before every persist.
func (h *Host) normalize() {
	if !h.formatOnSave {
		return
	}
	text, changed, err := envfile.Normalize(h.doc.Text())
	if err != nil {
		h.log.Error(err, "normalize failed")
		h.notifier.Error(fmt.Sprintf("Failed to format .env file: %v", err))
		return
	}
	if !changed {
		return
	}
	if err := h.doc.ReplaceAll(text); err != nil {
		h.notifier.Error(fmt.Sprintf("Failed to format .env file: %v", err))
		return
	}
	h.record(audit.OpNormalize, nil)
}

func (h *Host) relay(m protocol.Log) {
	kv := make([]any, 0, 2)
	if len(m.Args) > 0 {
		kv = append(kv, "args", m.Args)
	}
	log := h.log.WithName("view")
	switch m.Level {
	case protocol.LevelError:
		log.Error(nil, m.Message, kv...)
	case protocol.LevelWarn:
		log.Info("WARN: "+m.Message, kv...)
	default:
		log.Info(m.Message, kv...)
	}
}

func (h *Host) record(op audit.Op, keys []string) {
	if h.audit == nil {
		return
	}
	opts := []audit.Option{audit.WithSessionID(h.sessionID), audit.WithScope(keys)}
	if h.file != "" {
		opts = append(opts, audit.WithFile(filepath.Base(h.file)))
	}
	if err := h.audit.Append(op, opts...); err != nil {
		h.log.Error(err, "audit append failed", "op", string(op))
	}
}

// Persist writes the document when it has a backing store.
func (h *Host) Persist() error {
	p, ok := h.doc.(Persister)
	if !ok {
		return nil
	}
	if err := p.Persist(); err != nil {
		h.log.Error(err, "persist failed")
		return err
	}
	h.log.V(1).Info("persisted")
	return nil
}

// SaveFile persists the document and tells the user how it went.
func (h *Host) SaveFile() {
	if err := h.Persist(); err != nil {
		h.notifier.Error(fmt.Sprintf("Operation failed: %v", err))
		return
	}
	name := "file"
	if h.file != "" {
		name = filepath.Base(h.file)
	}
	h.notifier.Info("Saved " + name)
}

// Replace sets the document text directly, as a raw editor would.
func (h *Host) Replace(text string) {
	if err := h.doc.ReplaceAll(text); err != nil {
		h.notifier.Error(fmt.Sprintf("Operation failed: %v", err))
	}
}

// ExitRaw leaves the raw presentation. Text typed in the raw editor
// replaces the document when edited is set.
func (h *Host) ExitRaw(text string, edited bool) {
	if edited {
		h.Replace(text)
	}
	h.presenter.ShowStructured()
}

// Do queues fn to run on the goroutine executing Run. It returns false when
// the queue is full.
func (h *Host) Do(fn func()) bool {
	select {
	case h.tasks <- fn:
		return true
	default:
		return false
	}
}

// Inbox is the receiving half of a view connection. *protocol.Endpoint
// satisfies it.
type Inbox interface {
	Next() (protocol.Message, bool)
	Ready() <-chan struct{}
	Done() <-chan struct{}
}

// Run serves view messages, queued tasks and file change signals until ctx
// is done or the inbox closes. changes may be nil.
func (h *Host) Run(ctx context.Context, in Inbox, changes <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-in.Done():
			h.drain(in)
			return nil
		case <-in.Ready():
			h.drain(in)
		case fn := <-h.tasks:
			fn()
		case _, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			h.reload()
		}
	}
}

// drain handles every queued view message. On close it makes sure a final
// save is not lost.
func (h *Host) drain(in Inbox) {
	for msg, ok := in.Next(); ok; msg, ok = in.Next() {
		h.Handle(msg)
	}
}

func (h *Host) reload() {
	r, ok := h.doc.(Reloader)
	if !ok {
		return
	}
	changed, err := r.Reload()
	if err != nil {
		h.log.Error(err, "reload failed")
		h.notifier.Warn(fmt.Sprintf("Failed to reload file: %v", err))
		return
	}
	if changed {
		h.log.V(1).Info("reloaded from disk")
	}
}
