package loader

import (
	"errors"
	"fmt"

	"github.com/robinvdvleuten/ledger/ast"
)

// ErrorKind classifies load failures.
type ErrorKind int

const (
	// IO means a file could not be read.
	IO ErrorKind = iota + 1
	// Parse means a file could not be parsed; the cause is a *parser.ParseError.
	Parse
	// BadIncludePath means an include names something that cannot be loaded:
	// an empty path, a directory or a file that is already being loaded.
	BadIncludePath
)

func (k ErrorKind) String() string {
	switch k {
	case IO:
		return "io"
	case Parse:
		return "parse"
	case BadIncludePath:
		return "bad include path"
	}
	return "unknown"
}

// LoadError is returned when a file cannot be loaded.
//
// Errors raised for an include entry point at that entry; errors for the file
// passed to Load carry no location.
type LoadError struct {
	Kind ErrorKind
	Path string

	Filename string
	Source   string
	Span     ast.Span

	Err error
}

func (e *LoadError) Error() string {
	if e.Kind == Parse {
		return e.Err.Error()
	}
	if e.Source == "" {
		return e.Title()
	}
	return fmt.Sprintf("%s: %s", e.GetPosition(), e.Title())
}

// Title is the error message without its location.
func (e *LoadError) Title() string {
	if diag, ok := e.diagnostic(); ok {
		return diag.Title()
	}
	if e.Kind == IO {
		return fmt.Sprintf("failed to read %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("bad include path %q: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// GetPath returns the path that failed to load.
func (e *LoadError) GetPath() string {
	return e.Path
}

func (e *LoadError) GetPosition() ast.Position {
	if diag, ok := e.diagnostic(); ok {
		return diag.GetPosition()
	}
	return ast.LineCol(e.Filename, e.Source, e.Span.Start)
}

func (e *LoadError) GetSpan() ast.Span {
	if diag, ok := e.diagnostic(); ok {
		return diag.GetSpan()
	}
	return e.Span
}

func (e *LoadError) GetSource() string {
	if diag, ok := e.diagnostic(); ok {
		return diag.GetSource()
	}
	return e.Source
}

// located is implemented by errors that point into their source.
type located interface {
	Title() string
	GetPosition() ast.Position
	GetSpan() ast.Span
	GetSource() string
}

// diagnostic returns the located cause of a parse failure.
func (e *LoadError) diagnostic() (located, bool) {
	var diag located
	if e.Kind != Parse || !errors.As(e.Err, &diag) {
		return nil, false
	}
	return diag, true
}
