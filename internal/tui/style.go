package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// ANSI palette shared by the editor and the command output.
const (
	colorRed     = lipgloss.Color("1")
	colorGreen   = lipgloss.Color("2")
	colorYellow  = lipgloss.Color("3")
	colorBlue    = lipgloss.Color("4")
	colorMagenta = lipgloss.Color("5")
	colorCyan    = lipgloss.Color("6")
	colorGray    = lipgloss.Color("8")
	colorWhite   = lipgloss.Color("15")
)

var (
	HeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorWhite).MarginBottom(1)
	SuccessStyle = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	WarningStyle = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	ErrorStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	MutedStyle   = lipgloss.NewStyle().Foreground(colorGray)
	KeyStyle     = lipgloss.NewStyle().Foreground(colorCyan)
	LabelStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorBlue)

	// Table.
	ColumnHeaderStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	SelectedCellStyle = lipgloss.NewStyle().Reverse(true)
	GrabbedRowStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorMagenta)
	HelpStyle         = lipgloss.NewStyle().Foreground(colorGray).MarginTop(1)
)

func Header(text string) string  { return HeaderStyle.Render(text) }
func Success(text string) string { return SuccessStyle.Render(text) }
func Warning(text string) string { return WarningStyle.Render(text) }
func Error(text string) string   { return ErrorStyle.Render(text) }
func Muted(text string) string   { return MutedStyle.Render(text) }
func Key(text string) string     { return KeyStyle.Render(text) }
func Label(text string) string   { return LabelStyle.Render(text) }

// render styles a status line by severity.
func (k statusKind) render(text string) string {
	switch k {
	case statusError:
		return Error(text)
	case statusWarn:
		return Warning(text)
	default:
		return Success(text)
	}
}

// Truncate shortens s to at most width runes, marking the cut with "...".
func Truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}
