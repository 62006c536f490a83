package parser

import (
	"fmt"

	"github.com/robinvdvleuten/ledger/ast"
)

// ParseError represents a syntax error during parsing.
type ParseError struct {
	Filename string
	Source   string
	Span     ast.Span
	// Context names the grammar production that failed, e.g. "date" or "posting".
	Context string
	Message string
}

func (e *ParseError) Error() string {
	pos := e.GetPosition()
	location := fmt.Sprintf("%s:%d:%d", pos.Filename, pos.Line, pos.Column)
	if pos.Filename == "" {
		location = fmt.Sprintf("line %d", pos.Line)
	}
	if e.Context == "" {
		return fmt.Sprintf("%s: %s", location, e.Message)
	}
	return fmt.Sprintf("%s: invalid %s: %s", location, e.Context, e.Message)
}

// Title is the error message without its location.
func (e *ParseError) Title() string {
	if e.Context == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Context, e.Message)
}

func (e *ParseError) GetPosition() ast.Position {
	return ast.LineCol(e.Filename, e.Source, e.Span.Start)
}

func (e *ParseError) GetSpan() ast.Span {
	return e.Span
}

func (e *ParseError) GetSource() string {
	return e.Source
}

// Warning is a non-fatal observation made while parsing.
type Warning struct {
	Filename string
	Span     ast.Span
	Message  string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s@%s: %s", w.Filename, w.Span, w.Message)
}
