// Package output provides styling helpers for terminal output.
package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Styles renders styled fragments for a single writer. Colours are dropped
// automatically when the writer is not a terminal.
type Styles struct {
	renderer *lipgloss.Renderer

	success lipgloss.Style
	failure lipgloss.Style
	warning lipgloss.Style
	path    lipgloss.Style
	account lipgloss.Style
	amount  lipgloss.Style
	keyword lipgloss.Style
	dim     lipgloss.Style
	caret   lipgloss.Style
}

// NewStyles creates a new Styles instance for the given writer.
func NewStyles(w io.Writer) *Styles {
	r := lipgloss.NewRenderer(w)
	return &Styles{
		renderer: r,
		success:  r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		failure:  r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		warning:  r.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		path:     r.NewStyle().Foreground(lipgloss.Color("6")),
		account:  r.NewStyle().Foreground(lipgloss.Color("3")),
		amount:   r.NewStyle().Foreground(lipgloss.Color("5")),
		keyword:  r.NewStyle().Bold(true),
		dim:      r.NewStyle().Faint(true),
		caret:    r.NewStyle().Foreground(lipgloss.Color("1")),
	}
}

// Success returns a styled success string (green + bold).
func (s *Styles) Success(text string) string { return s.success.Render(text) }

// Error returns a styled error string (red + bold).
func (s *Styles) Error(text string) string { return s.failure.Render(text) }

// Warning returns a styled warning (yellow + bold).
func (s *Styles) Warning(text string) string { return s.warning.Render(text) }

// FilePath returns a styled file path (cyan).
func (s *Styles) FilePath(text string) string { return s.path.Render(text) }

// Account returns a styled account name (yellow).
func (s *Styles) Account(text string) string { return s.account.Render(text) }

// Amount returns a styled amount (magenta).
func (s *Styles) Amount(text string) string { return s.amount.Render(text) }

// Keyword returns a styled keyword (bold).
func (s *Styles) Keyword(text string) string { return s.keyword.Render(text) }

// Dim returns dimmed text for secondary information such as gutters.
func (s *Styles) Dim(text string) string { return s.dim.Render(text) }

// Caret styles the underline placed below a diagnostic span.
func (s *Styles) Caret(text string) string { return s.caret.Render(text) }

// Timing styles a duration, highlighting slow operations.
func (s *Styles) Timing(text string, slow bool) string {
	if slow {
		return s.Warning(text)
	}
	return s.Dim(text)
}

// Renderer returns the underlying lipgloss renderer.
func (s *Styles) Renderer() *lipgloss.Renderer {
	return s.renderer
}
