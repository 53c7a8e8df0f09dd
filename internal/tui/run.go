package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-logr/logr"

	"github.com/xmazu/envtable/internal/audit"
	"github.com/xmazu/envtable/internal/document"
	"github.com/xmazu/envtable/internal/host"
	"github.com/xmazu/envtable/internal/logger"
	"github.com/xmazu/envtable/internal/protocol"
	"github.com/xmazu/envtable/internal/session"
)

// bridge lets the host goroutine reach the running program.
type bridge struct {
	p *tea.Program
}

func (b *bridge) send(msg tea.Msg) {
	if b.p != nil {
		b.p.Send(msg)
	}
}

func (b *bridge) ShowRaw()        { b.send(presentMsg{mode: host.PresentationRaw}) }
func (b *bridge) ShowStructured() { b.send(presentMsg{mode: host.PresentationStructured}) }
func (b *bridge) Info(msg string) { b.send(notifyMsg{kind: statusInfo, text: msg}) }
func (b *bridge) Warn(msg string) { b.send(notifyMsg{kind: statusWarn, text: msg}) }
func (b *bridge) Error(msg string) {
	b.send(notifyMsg{kind: statusError, text: msg})
}

type RunConfig struct {
	Options
	FormatOnSave  bool
	WatchDebounce time.Duration
	Log           logr.Logger
	Audit         *audit.Log
	SessionID     string
}

// Run opens the editor on doc and blocks until the user quits.
func Run(ctx context.Context, doc *document.FileDocument, cfg RunConfig) error {
	ctx, cancel := context.WithCancel(logger.WithLogger(ctx, cfg.Log))
	defer cancel()

	hostEnd, viewEnd := protocol.Pipe()
	defer viewEnd.Close()

	b := &bridge{}
	h := host.New(doc,
		host.WithPresenter(b),
		host.WithNotifier(b),
		host.WithLogger(cfg.Log),
		host.WithAudit(cfg.Audit, cfg.SessionID),
		host.WithFormatOnSave(cfg.FormatOnSave),
		host.WithFile(doc.Path()),
	)

	cfg.Path = doc.Path()
	m := NewModel(session.New(viewEnd), viewEnd, h, doc, cfg.Options)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	b.p = p

	changes, err := doc.Watch(ctx, cfg.WatchDebounce)
	if err != nil {
		cfg.Log.Error(err, "file watching disabled")
		changes = nil
	}

	detach := h.Attach(hostEnd)
	hostDone := make(chan error, 1)
	go func() {
		defer detach()
		hostDone <- h.Run(ctx, hostEnd, changes)
	}()

	_, runErr := p.Run()
	viewEnd.Close()
	if err := <-hostDone; err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("host: %w", err)
	}
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("editor: %w", runErr)
	}
	return nil
}
