package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/xmazu/envtable/internal/envfile"
	"github.com/xmazu/envtable/internal/host"
	"github.com/xmazu/envtable/internal/protocol"
	"github.com/xmazu/envtable/internal/session"
)

type column int

const (
	columnKey column = iota
	columnValue
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusWarn
	statusError
)

// Document is the read side of the host document the editor needs.
type Document interface {
	Text() string
	Dirty() bool
}

// Inbox delivers host messages to the editor. *protocol.Endpoint satisfies
// it.
type Inbox interface {
	Receive(ctx context.Context) (protocol.Message, error)
}

type Options struct {
	Path        string
	MaskSecrets bool
	View        host.Presentation
}

// Model is the bubbletea model of the editor. It owns the view session and
// is only touched from the program goroutine.
type Model struct {
	session *session.Session
	inbox   Inbox
	host    *host.Host
	doc     Document
	path    string

	mask   *envfile.MaskDetector
	reveal bool

	mode    host.Presentation
	cursor  int
	column  column
	editing bool
	grabbed bool
	input   textinput.Model

	raw      textarea.Model
	rawDirty bool

	confirmDelete bool
	confirmQuit   bool
	status        string
	statusKind    statusKind

	width, height int
}

type hostMsg struct{ msg protocol.Message }

type hostClosedMsg struct{}

type presentMsg struct{ mode host.Presentation }

type notifyMsg struct {
	kind statusKind
	text string
}

func NewModel(s *session.Session, inbox Inbox, h *host.Host, doc Document, opts Options) Model {
	in := textinput.New()
	in.Prompt = ""
	in.CharLimit = 0

	ta := textarea.New()
	ta.ShowLineNumbers = true
	ta.CharLimit = 0

	m := Model{
		session: s,
		inbox:   inbox,
		host:    h,
		doc:     doc,
		path:    opts.Path,
		mode:    opts.View,
		input:   in,
		raw:     ta,
		width:   80,
		height:  24,
	}
	if opts.MaskSecrets {
		m.mask = envfile.NewMaskDetector()
	}
	if m.mode == host.PresentationRaw {
		m.enterRaw()
	}
	return m
}

func (m Model) Init() tea.Cmd {
	if m.mode == host.PresentationRaw {
		return tea.Batch(m.waitForHost(), textarea.Blink)
	}
	return m.waitForHost()
}

func (m Model) waitForHost() tea.Cmd {
	inbox := m.inbox
	return func() tea.Msg {
		msg, err := inbox.Receive(context.Background())
		if err != nil {
			return hostClosedMsg{}
		}
		return hostMsg{msg: msg}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.raw.SetWidth(msg.Width)
		m.raw.SetHeight(max(msg.Height-5, 3))
		return m, nil

	case hostMsg:
		return m.receive(msg.msg)

	case hostClosedMsg:
		return m, tea.Quit

	case presentMsg:
		if msg.mode == host.PresentationRaw {
			m.editing = false
			cmd := m.enterRaw()
			return m, cmd
		}
		m.mode = host.PresentationStructured
		m.raw.Blur()
		return m, nil

	case notifyMsg:
		m.status, m.statusKind = msg.text, msg.kind
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.mode == host.PresentationRaw {
			return m.updateRaw(msg)
		}
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.handleKey(msg)
	}

	if m.mode == host.PresentationRaw {
		var cmd tea.Cmd
		m.raw, cmd = m.raw.Update(msg)
		return m, cmd
	}
	if m.editing {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) receive(msg protocol.Message) (Model, tea.Cmd) {
	cmds := []tea.Cmd{m.waitForHost()}
	if !m.session.Receive(msg) {
		return m, cmds[0]
	}
	m.clampCursor()

	if m.session.TakeFocusNew() && m.session.Len() > 0 {
		m.cursor, m.column = 0, columnKey
		cmds = append(cmds, m.startEdit())
	}
	if m.mode == host.PresentationRaw && !m.rawDirty {
		m.raw.SetValue(m.doc.Text())
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) clampCursor() {
	n := m.session.Len()
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if n == 0 {
		m.editing = false
		m.grabbed = false
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirmDelete {
		m.confirmDelete = false
		if msg.String() == "y" || msg.String() == "Y" {
			m.session.DeleteVariable(m.cursor)
			m.clampCursor()
		}
		return m, nil
	}
	if m.confirmQuit {
		m.confirmQuit = false
		if msg.String() == "Q" {
			return m, tea.Quit
		}
	}

	n := m.session.Len()
	switch msg.String() {
	case "q", "esc":
		if m.grabbed {
			m.grabbed = false
			return m, nil
		}
		if m.doc.Dirty() {
			m.confirmQuit = true
			m.status, m.statusKind = "Unsaved changes: ctrl+s to save, Q to discard", statusWarn
			return m, nil
		}
		return m, tea.Quit
	case "up", "k":
		if m.grabbed {
			return m.moveRow(-1), nil
		}
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.grabbed {
			return m.moveRow(1), nil
		}
		if m.cursor < n-1 {
			m.cursor++
		}
	case "K", "shift+up":
		return m.moveRow(-1), nil
	case "J", "shift+down":
		return m.moveRow(1), nil
	case "left", "h", "right", "l", "tab":
		if m.column == columnKey {
			m.column = columnValue
		} else {
			m.column = columnKey
		}
	case "enter", "e":
		if n > 0 {
			cmd := m.startEdit()
			return m, cmd
		}
	case "a":
		m.session.AddVariable()
	case "d", "delete":
		if n > 0 {
			m.confirmDelete = true
		}
	case "c", "y":
		m.session.CopyValue(m.cursor)
	case "m":
		if n > 0 {
			m.grabbed = !m.grabbed
		}
	case "r":
		m.reveal = !m.reveal
	case "ctrl+t", "v":
		m.session.ToggleView()
	case "ctrl+s":
		m.saveFile()
	}
	return m, nil
}

// moveRow shifts the selected row one place up or down.
func (m Model) moveRow(delta int) Model {
	n := m.session.Len()
	from := m.cursor
	switch {
	case delta < 0 && from > 0:
		m.session.ReorderVariable(from, from-1)
		m.cursor--
	case delta > 0 && from < n-1:
		m.session.ReorderVariable(from, from+2)
		m.cursor++
	}
	return m
}

func (m *Model) startEdit() tea.Cmd {
	v := m.session.Env().Variables[m.cursor]
	m.editing = true
	if m.column == columnKey {
		m.input.SetValue(v.Key)
	} else {
		m.input.SetValue(v.Value)
	}
	m.input.CursorEnd()
	m.input.Width = max(m.width/2-4, 10)
	return m.input.Focus()
}

func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editing = false
		m.input.Blur()
		return m, nil
	case "enter":
		m.commitEdit()
		return m, nil
	case "tab":
		m.commitEdit()
		if m.column == columnKey {
			m.column = columnValue
		} else {
			m.column = columnKey
		}
		if m.cursor < m.session.Len() {
			cmd := m.startEdit()
			return m, cmd
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) commitEdit() {
	m.editing = false
	m.input.Blur()
	if m.cursor >= m.session.Len() {
		return
	}
	text := m.input.Value()
	v := m.session.Env().Variables[m.cursor]
	if m.column == columnKey {
		if text != v.Key {
			m.session.UpdateKey(m.cursor, text)
		}
		return
	}
	if text != v.Value {
		m.session.UpdateValue(m.cursor, text)
	}
}

func (m *Model) enterRaw() tea.Cmd {
	m.mode = host.PresentationRaw
	m.raw.SetValue(m.doc.Text())
	m.rawDirty = false
	return m.raw.Focus()
}

func (m Model) updateRaw(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+s":
		text := m.raw.Value()
		m.rawDirty = false
		m.host.Do(func() {
			m.host.Replace(text)
			m.host.SaveFile()
		})
		return m, nil
	case "ctrl+t":
		if _, err := host.Toggle(host.PresentationRaw, m.path); err != nil {
			m.status, m.statusKind = host.ToggleWarning, statusWarn
			return m, nil
		}
		h, text, edited := m.host, m.raw.Value(), m.rawDirty
		if !h.Do(func() { h.ExitRaw(text, edited) }) {
			m.status, m.statusKind = "Editor busy, try again", statusWarn
			return m, nil
		}
		m.rawDirty = false
		return m, nil
	}

	before := m.raw.Value()
	var cmd tea.Cmd
	m.raw, cmd = m.raw.Update(msg)
	if m.raw.Value() != before {
		m.rawDirty = true
	}
	return m, cmd
}

func (m Model) saveFile() {
	h := m.host
	if !h.Do(h.SaveFile) {
		m.session.Log(protocol.LevelWarn, "save request dropped, host busy")
	}
}

func (m Model) View() string {
	var b strings.Builder

	title := "envtable"
	if m.path != "" {
		title += "  " + filepath.Base(m.path)
	}
	if m.doc.Dirty() {
		title += " [+]"
	}
	b.WriteString(Header(title))
	b.WriteString("\n")

	if m.mode == host.PresentationRaw {
		b.WriteString(m.raw.View())
		b.WriteString("\n")
		b.WriteString(m.statusLine())
		b.WriteString(HelpStyle.Render("ctrl+s save · ctrl+t table · ctrl+c quit"))
		return b.String()
	}

	b.WriteString(m.tableView())
	b.WriteString(m.statusLine())
	b.WriteString(HelpStyle.Render(m.help()))
	return b.String()
}

func (m Model) tableView() string {
	vars := m.session.Env().Variables
	if len(vars) == 0 {
		return Muted("No variables. Press a to add one.") + "\n"
	}

	keyWidth := len("Name")
	for _, v := range vars {
		keyWidth = max(keyWidth, len([]rune(v.Key)))
	}
	keyWidth = min(keyWidth, max(m.width/3, 12))
	valueWidth := max(m.width-keyWidth-6, 10)

	var b strings.Builder
	fmt.Fprintf(&b, "  %s  %s\n",
		ColumnHeaderStyle.Render(pad("Name", keyWidth)),
		ColumnHeaderStyle.Render("Value"))

	visible := max(m.height-7, 1)
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := min(start+visible, len(vars))

	for i := start; i < end; i++ {
		v := vars[i]
		marker := "  "
		if i == m.cursor {
			marker = "> "
			if m.grabbed {
				marker = GrabbedRowStyle.Render("≡ ")
			}
		}

		keyCell := pad(Truncate(v.Key, keyWidth), keyWidth)
		valueCell := Truncate(m.displayValue(v), valueWidth)
		selected := i == m.cursor
		switch {
		case selected && m.editing && m.column == columnKey:
			keyCell = m.input.View()
		case selected && m.editing:
			keyCell = Key(keyCell)
			valueCell = m.input.View()
		case selected && m.column == columnKey:
			keyCell = SelectedCellStyle.Render(keyCell)
		case selected:
			keyCell = Key(keyCell)
			valueCell = SelectedCellStyle.Render(valueCell)
		default:
			keyCell = Key(keyCell)
		}
		fmt.Fprintf(&b, "%s%s  %s\n", marker, keyCell, valueCell)
	}
	if end < len(vars) {
		b.WriteString(Muted(fmt.Sprintf("  … %d more", len(vars)-end)) + "\n")
	}
	return b.String()
}

func (m Model) displayValue(v envfile.Variable) string {
	if m.reveal || m.mask == nil {
		return v.Value
	}
	return m.mask.Display(v.Key, v.Value)
}

func (m Model) statusLine() string {
	switch {
	case m.confirmDelete:
		return Warning("Delete this variable? (y/N)") + "\n"
	case m.status == "":
		return ""
	default:
		return m.statusKind.render(m.status) + "\n"
	}
}

func (m Model) help() string {
	switch {
	case m.editing:
		return "enter confirm · tab next cell · esc cancel"
	case m.grabbed:
		return "↑/↓ move row · m/esc drop"
	}
	return "a add · enter edit · d delete · c copy · m move · r reveal · ctrl+t raw · ctrl+s save · q quit"
}

func pad(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
