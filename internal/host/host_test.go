package host

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xmazu/envtable/internal/audit"
	"github.com/xmazu/envtable/internal/document"
	"github.com/xmazu/envtable/internal/envfile"
	"github.com/xmazu/envtable/internal/protocol"
	"github.com/xmazu/envtable/internal/session"
)

type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) WriteText(text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

type fakeNotifier struct {
	infos, warns, errs []string
}

func (n *fakeNotifier) Info(msg string)  { n.infos = append(n.infos, msg) }
func (n *fakeNotifier) Warn(msg string)  { n.warns = append(n.warns, msg) }
func (n *fakeNotifier) Error(msg string) { n.errs = append(n.errs, msg) }

type fakePresenter struct {
	raw, structured int
}

func (p *fakePresenter) ShowRaw()        { p.raw++ }
func (p *fakePresenter) ShowStructured() { p.structured++ }

type recorder struct {
	msgs []protocol.Message
}

func (r *recorder) Send(msg protocol.Message) bool {
	r.msgs = append(r.msgs, msg)
	return true
}

func (r *recorder) updates() []protocol.Update {
	var out []protocol.Update
	for _, m := range r.msgs {
		if u, ok := m.(protocol.Update); ok {
			out = append(out, u)
		}
	}
	return out
}

func openDoc(t *testing.T, content string) *document.FileDocument {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	doc, err := document.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return doc
}

func TestAttachSendsInitialUpdate(t *testing.T) {
	doc := openDoc(t, "# db\nDB=x\n")
	h := New(doc)
	view := &recorder{}
	detach := h.Attach(view)
	defer detach()

	ups := view.updates()
	if len(ups) != 1 {
		t.Fatalf("got %d updates, want 1", len(ups))
	}
	if ups[0].Env.Len() != 1 || ups[0].Env.Variables[0].Key != "DB" {
		t.Errorf("update = %+v", ups[0].Env)
	}
}

func TestSaveRewritesDocument(t *testing.T) {
	doc := openDoc(t, "A=1\n")
	h := New(doc)
	view := &recorder{}
	h.Attach(view)

	env := &envfile.ParsedEnv{Variables: []envfile.Variable{
		{Key: "A", Value: "1"},
		{Key: "B", Value: `say "hi"`, PrecedingComments: []string{"# greeting"}},
	}}
	h.Handle(protocol.Save{Env: env})

	want := "A=\"1\"\n# greeting\nB=\"say \\\"hi\\\"\""
	if got := doc.Text(); got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
	// The change echoes back to the view.
	if got := len(view.updates()); got != 2 {
		t.Errorf("got %d updates, want 2", got)
	}
}

func TestSaveInvalidModelNotifies(t *testing.T) {
	doc := openDoc(t, "A=1\n")
	n := &fakeNotifier{}
	h := New(doc, WithNotifier(n))
	h.Attach(&recorder{})

	h.Handle(protocol.Save{Env: nil})

	if doc.Text() != "A=1\n" {
		t.Errorf("document changed on invalid save: %q", doc.Text())
	}
	if len(n.errs) != 1 || !strings.HasPrefix(n.errs[0], "Operation failed:") {
		t.Errorf("errors = %v", n.errs)
	}
}

func TestCopy(t *testing.T) {
	doc := openDoc(t, "")
	clip := &fakeClipboard{}
	n := &fakeNotifier{}
	h := New(doc, WithClipboard(clip), WithNotifier(n))

	h.Handle(protocol.Copy{Value: "secret"})
	if clip.text != "secret" {
		t.Errorf("clipboard = %q", clip.text)
	}
	if len(n.infos) != 1 || n.infos[0] != CopiedMessage {
		t.Errorf("infos = %v", n.infos)
	}

	clip.err = errors.New("no display")
	h.Handle(protocol.Copy{Value: "x"})
	if len(n.errs) != 1 {
		t.Errorf("errors = %v", n.errs)
	}
}

func TestToggleViewShowsRaw(t *testing.T) {
	p := &fakePresenter{}
	h := New(openDoc(t, ""), WithPresenter(p))
	h.Handle(protocol.ToggleView{})
	if p.raw != 1 {
		t.Errorf("ShowRaw called %d times, want 1", p.raw)
	}
}

func TestPersistNormalizes(t *testing.T) {
	doc := openDoc(t, "A = 1\n\n\n# c\nB=2")
	h := New(doc, WithFormatOnSave(true))
	h.Attach(&recorder{})

	if err := h.Persist(); err != nil {
		t.Fatalf("Persist() error = %v", err)
	}
	data, err := os.ReadFile(doc.Path())
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	want := "A=\"1\"\n# c\nB=\"2\""
	if string(data) != want {
		t.Errorf("file = %q, want %q", data, want)
	}
}

func TestPersistWithoutFormatOnSave(t *testing.T) {
	doc := openDoc(t, "A = 1")
	h := New(doc, WithFormatOnSave(false))
	h.Attach(&recorder{})
	if err := h.Persist(); err != nil {
		t.Fatalf("Persist() error = %v", err)
	}
	if doc.Text() != "A = 1" {
		t.Errorf("Text() = %q", doc.Text())
	}
}

func TestNormalizeSkipsCanonicalText(t *testing.T) {
	doc := openDoc(t, "A=\"1\"")
	view := &recorder{}
	h := New(doc)
	h.Attach(view)
	if err := h.Persist(); err != nil {
		t.Fatalf("Persist() error = %v", err)
	}
	if got := len(view.updates()); got != 1 {
		t.Errorf("got %d updates, want 1", got)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	doc := openDoc(t, "# db\nDB=x\nPORT=80\n")
	var h *Host
	s := session.New(session.PostFunc(func(m protocol.Message) bool {
		h.Handle(m)
		return true
	}))
	h = New(doc, WithAutoPersist(true))
	h.Attach(session.PostFunc(func(m protocol.Message) bool {
		s.Receive(m)
		return true
	}))

	s.UpdateValue(1, "8080")
	s.ReorderVariable(1, 0)

	want := "PORT=\"8080\"\n# db\nDB=\"x\""
	if doc.Text() != want {
		t.Errorf("Text() = %q, want %q", doc.Text(), want)
	}
	data, err := os.ReadFile(doc.Path())
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != want {
		t.Errorf("file = %q, want %q", data, want)
	}
	if got := s.Env().Keys(); len(got) != 2 || got[0] != "PORT" {
		t.Errorf("session keys = %v", got)
	}
}

func TestSaveIsAudited(t *testing.T) {
	doc := openDoc(t, "A=1")
	log := audit.ForFile(doc.Path())
	h := New(doc, WithAudit(log, "sid-1"), WithFile(doc.Path()))
	h.Attach(&recorder{})

	h.Handle(protocol.Save{Env: &envfile.ParsedEnv{Variables: []envfile.Variable{{Key: "A", Value: "2"}}}})

	entries, err := log.Show(0)
	if err != nil {
		t.Fatalf("Show() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Op != audit.OpSave || entries[0].SessionID != "sid-1" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestRunHandlesMessagesAndReloads(t *testing.T) {
	doc := openDoc(t, "A=1")
	hostEnd, viewEnd := protocol.Pipe()
	h := New(doc)
	h.Attach(hostEnd)

	changes := make(chan struct{}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errc := make(chan error, 1)
	go func() { errc <- h.Run(ctx, hostEnd, changes) }()

	recvCtx, recvCancel := context.WithTimeout(ctx, 2*time.Second)
	defer recvCancel()
	first, err := viewEnd.Receive(recvCtx)
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if _, ok := first.(protocol.Update); !ok {
		t.Fatalf("first message = %T, want Update", first)
	}

	if err := os.WriteFile(doc.Path(), []byte("A=1\nB=2"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	changes <- struct{}{}

	msg, err := viewEnd.Receive(recvCtx)
	if err != nil {
		t.Fatalf("timed out waiting for reload update: %v", err)
	}
	if up, ok := msg.(protocol.Update); !ok || up.Env.Len() != 2 {
		t.Errorf("reload message = %+v", msg)
	}

	viewEnd.Close()
	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after close")
	}
}

func TestDo(t *testing.T) {
	h := New(openDoc(t, ""))
	hostEnd, viewEnd := protocol.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx, hostEnd, nil)

	done := make(chan struct{})
	if !h.Do(func() { close(done) }) {
		t.Fatal("Do() = false")
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task did not run")
	}
	viewEnd.Close()
}

func TestRunDrainsQueuedMessagesOnClose(t *testing.T) {
	doc := openDoc(t, "")
	clip := &fakeClipboard{}
	h := New(doc, WithClipboard(clip), WithNotifier(&fakeNotifier{}))
	hostEnd, viewEnd := protocol.Pipe()
	h.Attach(&recorder{})

	// More than any fixed buffer would hold, sent before the host runs.
	s := session.New(viewEnd)
	for i := 0; i < 500; i++ {
		s.CopyValue(-1)
		s.ToggleView()
	}
	s.Replace(&envfile.ParsedEnv{Variables: []envfile.Variable{{Key: "LAST", Value: "v"}}})
	s.CopyValue(0)
	viewEnd.Close()

	if err := h.Run(context.Background(), hostEnd, nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if clip.text != "v" {
		t.Errorf("clipboard = %q, want %q", clip.text, "v")
	}
}

func TestExitRaw(t *testing.T) {
	t.Run("edited text replaces the document", func(t *testing.T) {
		doc := openDoc(t, "A=1")
		p := &fakePresenter{}
		h := New(doc, WithPresenter(p), WithNotifier(&fakeNotifier{}))
		view := &recorder{}
		h.Attach(view)

		h.ExitRaw("A=1\nB=2", true)
		if doc.Text() != "A=1\nB=2" {
			t.Errorf("Text() = %q", doc.Text())
		}
		if p.structured != 1 {
			t.Errorf("ShowStructured calls = %d, want 1", p.structured)
		}
		if ups := view.updates(); len(ups) != 2 || ups[1].Env.Len() != 2 {
			t.Errorf("updates = %+v, want a fresh model after the raw edit", ups)
		}
	})

	t.Run("unedited text is left alone", func(t *testing.T) {
		doc := openDoc(t, "A=1")
		p := &fakePresenter{}
		h := New(doc, WithPresenter(p), WithNotifier(&fakeNotifier{}))
		h.ExitRaw("stale", false)
		if doc.Text() != "A=1" {
			t.Errorf("Text() = %q, want unchanged", doc.Text())
		}
		if p.structured != 1 {
			t.Errorf("ShowStructured calls = %d, want 1", p.structured)
		}
	})
}
