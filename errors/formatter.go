// Package errors renders diagnostics for ledger errors. It separates error
// presentation from the domain packages, allowing errors to be rendered in
// multiple formats for different consumers.
//
// The package defines a Formatter interface and provides two implementations:
//   - TextFormatter: the error message followed by the offending source lines
//     with a line-number gutter and a caret underline
//   - JSONFormatter: structured JSON for editors and other tooling
//
// Domain-specific error types remain in their respective packages (parser,
// ledger, loader); they expose their location through the Diagnostic
// interface.
package errors

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/robinvdvleuten/ledger/ast"
	"github.com/robinvdvleuten/ledger/ledger"
	"github.com/robinvdvleuten/ledger/output"
	"github.com/robinvdvleuten/ledger/parser"
)

// tabWidth is the display width of a tab in source excerpts.
const tabWidth = 4

// Diagnostic is an error that points at a span of its source.
type Diagnostic interface {
	error
	// Title is the message without location.
	Title() string
	GetPosition() ast.Position
	GetSpan() ast.Span
	GetSource() string
}

// Formatter formats errors for output in different formats.
type Formatter interface {
	// Format formats a single error.
	Format(err error) string

	// FormatAll formats multiple errors.
	FormatAll(errs []error) string
}

// TextFormatter formats errors for terminal output:
//
//	main.ledger:2:1: invalid date: month 13 out of range
//
//	 2 | 2024/13/1 Payee
//	   | ^^^^^^^^^
type TextFormatter struct {
	source string
	styles *output.Styles
}

// TextFormatterOption is an option for configuring TextFormatter.
type TextFormatterOption func(*TextFormatter)

// WithSource sets the source used for errors that do not carry their own.
func WithSource(source string) TextFormatterOption {
	return func(tf *TextFormatter) {
		tf.source = source
	}
}

// WithStyles colours the title, gutter and caret.
func WithStyles(styles *output.Styles) TextFormatterOption {
	return func(tf *TextFormatter) {
		tf.styles = styles
	}
}

// NewTextFormatter creates a new text formatter.
func NewTextFormatter(opts ...TextFormatterOption) *TextFormatter {
	tf := &TextFormatter{}
	for _, opt := range opts {
		opt(tf)
	}
	return tf
}

// Format formats a single error. Errors without a span render as their
// message only.
func (tf *TextFormatter) Format(err error) string {
	var diag Diagnostic
	if !errors.As(err, &diag) {
		return tf.style(err.Error(), (*output.Styles).Error)
	}

	source := diag.GetSource()
	if source == "" {
		source = tf.source
	}

	var buf bytes.Buffer
	buf.WriteString(tf.style(diag.Error(), (*output.Styles).Error))
	if source == "" {
		return buf.String()
	}
	buf.WriteString("\n\n")
	tf.excerpt(&buf, source, clampSpan(source, diag.GetSpan()))
	return buf.String()
}

// FormatAll formats multiple errors, separating them with blank lines.
func (tf *TextFormatter) FormatAll(errs []error) string {
	parts := make([]string, 0, len(errs))
	for _, err := range errs {
		parts = append(parts, tf.Format(err))
	}
	return strings.Join(parts, "\n\n")
}

// excerpt writes every source line covered by span with an underline below.
func (tf *TextFormatter) excerpt(buf *bytes.Buffer, source string, span ast.Span) {
	first := ast.LineCol("", source, span.Start)
	last := ast.LineCol("", source, span.End)
	if span.End > span.Start && last.Column == 1 && last.Line > first.Line {
		// The span ends right after a newline.
		last = ast.LineCol("", source, span.End-1)
	}

	width := len(strconv.Itoa(last.Line))
	blank := strings.Repeat(" ", width+1) + " |"

	lineStart := first.Offset - (first.Column - 1)
	for line := first.Line; line <= last.Line; line++ {
		lineEnd := strings.IndexByte(source[lineStart:], '\n')
		if lineEnd < 0 {
			lineEnd = len(source)
		} else {
			lineEnd += lineStart
		}
		text := strings.TrimSuffix(source[lineStart:lineEnd], "\r")

		from, to := 0, len(text)
		if line == first.Line {
			from = span.Start - lineStart
		}
		if line == last.Line {
			to = min(span.End-lineStart, len(text))
		}
		if line > first.Line {
			// Continuation lines are underlined from their first visible
			// character.
			from = len(text) - len(strings.TrimLeft(text, " \t"))
		}

		gutter := fmt.Sprintf("%*d |", width+1, line)
		fmt.Fprintf(buf, "%s %s\n", tf.style(gutter, (*output.Styles).Dim), expandTabs(text))

		pad := displayWidth(text[:min(from, len(text))])
		carets := 1
		if to > from {
			carets = max(1, displayWidth(text[from:to]))
		}
		fmt.Fprintf(buf, "%s %s%s\n", tf.style(blank, (*output.Styles).Dim),
			strings.Repeat(" ", pad), tf.style(strings.Repeat("^", carets), (*output.Styles).Caret))

		lineStart = lineEnd + 1
		if lineStart > len(source) {
			break
		}
	}
}

func (tf *TextFormatter) style(s string, f func(*output.Styles, string) string) string {
	if tf.styles == nil {
		return s
	}
	return f(tf.styles, s)
}

// clampSpan limits span to source and widens it to whole runes.
func clampSpan(source string, span ast.Span) ast.Span {
	start := min(max(span.Start, 0), len(source))
	end := min(max(span.End, start), len(source))
	for start > 0 && start < len(source) && !utf8.RuneStart(source[start]) {
		start--
	}
	for end < len(source) && !utf8.RuneStart(source[end]) {
		end++
	}
	return ast.Span{Start: start, End: end}
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}

// displayWidth is the number of terminal columns s occupies, counting wide
// East Asian characters as two and tabs as tabWidth.
func displayWidth(s string) int {
	return runewidth.StringWidth(expandTabs(s))
}

// JSONFormatter formats errors as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// ErrorJSON represents an error in JSON format.
type ErrorJSON struct {
	Type     string         `json:"type"`
	Message  string         `json:"message"`
	Position *PositionJSON  `json:"position,omitempty"`
	Span     *SpanJSON      `json:"span,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
}

// PositionJSON represents a file position in JSON format.
type PositionJSON struct {
	Filename string `json:"filename"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

// SpanJSON is the byte range of the error in its source.
type SpanJSON struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// Format formats a single error as JSON.
func (jf *JSONFormatter) Format(err error) string {
	data, _ := json.Marshal(jf.toJSON(err))
	return string(data)
}

// FormatAll formats multiple errors as a JSON array.
func (jf *JSONFormatter) FormatAll(errs []error) string {
	data, _ := json.MarshalIndent(jf.FormatAllToSlice(errs), "", "  ")
	return string(data)
}

// FormatAllToSlice returns errors as a slice of ErrorJSON structs.
func (jf *JSONFormatter) FormatAllToSlice(errs []error) []ErrorJSON {
	result := make([]ErrorJSON, 0, len(errs))
	for _, err := range errs {
		result = append(result, jf.toJSON(err))
	}
	return result
}

func (jf *JSONFormatter) toJSON(err error) ErrorJSON {
	errJSON := ErrorJSON{
		Type:    fmt.Sprintf("%T", err),
		Message: err.Error(),
		Details: make(map[string]any),
	}

	var diag Diagnostic
	if errors.As(err, &diag) && diag.GetSource() != "" {
		errJSON.Type = fmt.Sprintf("%T", diag)
		errJSON.Message = diag.Title()
		pos := diag.GetPosition()
		errJSON.Position = &PositionJSON{Filename: pos.Filename, Line: pos.Line, Column: pos.Column}
		span := clampSpan(diag.GetSource(), diag.GetSpan())
		errJSON.Span = &SpanJSON{Start: span.Start, End: span.End, Text: span.Text(diag.GetSource())}
	}

	var (
		parseErr *parser.ParseError
		bkErr    *ledger.BookKeepError
		declErr  *ledger.DeclarationError
		pathErr  interface{ GetPath() string }
	)
	switch {
	case errors.As(err, &parseErr):
		errJSON.Details["context"] = parseErr.Context
	case errors.As(err, &bkErr):
		errJSON.Details["kind"] = bkErr.Kind.Error()
		if bkErr.Posting >= 0 {
			errJSON.Details["posting"] = bkErr.Posting
		}
		if bkErr.Second >= 0 {
			errJSON.Details["second_posting"] = bkErr.Second
		}
	case errors.As(err, &declErr):
		errJSON.Details["name"] = declErr.Name
	}
	if errors.As(err, &pathErr) {
		errJSON.Details["path"] = pathErr.GetPath()
	}
	if len(errJSON.Details) == 0 {
		errJSON.Details = nil
	}

	return errJSON
}
