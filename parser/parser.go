// Package parser reads ledger files into the syntax tree defined by package
// ast.
//
// The parser is hand-written recursive descent over the source bytes. Each
// top-level entry is chosen by peeking at the start of its first line:
//
//	; # % | *        comment
//	0-9              transaction
//	account          account declaration
//	commodity        commodity declaration
//	apply tag        start of a tag block
//	end apply tag    end of a tag block
//	include          include of another file
//
// Once an alternative is chosen the parser commits to it: a malformed body
// after a valid keyword is a parse error, never a fallback to another kind of
// entry.
package parser

import (
	"context"
	"fmt"
	"io"
	"iter"
	"path/filepath"
	"strings"

	"github.com/robinvdvleuten/ledger/ast"
	"github.com/robinvdvleuten/ledger/telemetry"
)

// Parser produces entries one at a time from a single source string.
// It is not restartable: after the last entry or the first error every call
// to Next returns the same result.
type Parser struct {
	filename string
	src      string
	pos      int

	// lastEnd is the end offset of the content of the last finished line.
	lastEnd  int
	warnings []Warning
	err      error
}

// New creates a parser for src. The filename is only used in diagnostics.
func New(filename, src string) *Parser {
	return &Parser{filename: filename, src: src}
}

// Next returns the next entry together with its span, or io.EOF when the
// input is exhausted.
func (p *Parser) Next() (ast.Tracked[ast.Entry], error) {
	if p.err != nil {
		return ast.Tracked[ast.Entry]{}, p.err
	}

	p.skipBlankLines()
	if p.isAtEnd() {
		p.err = io.EOF
		return ast.Tracked[ast.Entry]{}, io.EOF
	}

	start := p.pos
	entry, err := p.parseEntry()
	if err != nil {
		p.err = err
		return ast.Tracked[ast.Entry]{}, err
	}

	return ast.Decorate(start, p.lastEnd, entry), nil
}

// All iterates over the remaining entries. Iteration stops after the first
// error, which is yielded with a zero entry.
func (p *Parser) All() iter.Seq2[ast.Tracked[ast.Entry], error] {
	return func(yield func(ast.Tracked[ast.Entry], error) bool) {
		for {
			entry, err := p.Next()
			if err == io.EOF {
				return
			}
			if !yield(entry, err) || err != nil {
				return
			}
		}
	}
}

// Warnings returns the warnings collected so far.
func (p *Parser) Warnings() []Warning {
	return p.warnings
}

// File is a fully parsed ledger file.
type File struct {
	Filename string
	Source   string
	Entries  []ast.Tracked[ast.Entry]
	Warnings []Warning
}

// ParseString parses all entries of src.
func ParseString(ctx context.Context, filename, src string) (*File, error) {
	timer := telemetry.StartTimer(ctx, telemetry.Parse, displayName(filename))
	defer timer.End()

	p := New(filename, src)
	file := &File{Filename: filename, Source: src}

	for entry, err := range p.All() {
		if err != nil {
			return nil, err
		}
		file.Entries = append(file.Entries, entry)
	}
	file.Warnings = p.Warnings()
	timer.Count("entries", len(file.Entries))
	timer.Count("warnings", len(file.Warnings))

	return file, nil
}

// ParseBytes parses all entries of data.
func ParseBytes(ctx context.Context, filename string, data []byte) (*File, error) {
	return ParseString(ctx, filename, string(data))
}

// displayName is the name of a source in telemetry.
func displayName(filename string) string {
	if filename == "" {
		return "<input>"
	}
	return filepath.Base(filename)
}

func (p *Parser) skipBlankLines() {
	for !p.isAtEnd() && p.isBlankLine(p.pos) {
		p.nextLine()
	}
}

// finishLine records the end of the current line's content and moves to the
// next line.
func (p *Parser) finishLine() {
	end := p.lineEnd()
	lineStart := strings.LastIndexByte(p.src[:end], '\n') + 1
	p.lastEnd = lineStart + len(strings.TrimRight(p.src[lineStart:end], " \t"))
	p.nextLine()
}

func (p *Parser) parseEntry() (ast.Entry, error) {
	c := p.peek()
	switch {
	case isInlineSpace(c):
		return nil, p.errorAt(p.pos, p.lineEnd(), "entry", "unexpected indented line outside of an entry")
	case strings.IndexByte(";#%|*", c) >= 0:
		return p.parseComment()
	case isDigit(c):
		return p.parseTransaction()
	case p.checkKeyword("account"):
		return p.parseAccountDeclaration()
	case p.checkKeyword("commodity"):
		return p.parseCommodityDeclaration()
	case p.checkKeyword("apply"):
		return p.parseApplyTag()
	case p.checkKeyword("end"):
		return p.parseEndApplyTag()
	case p.checkKeyword("include"):
		return p.parseInclude()
	}

	word := p.src[p.pos:p.lineEnd()]
	if i := strings.IndexAny(word, " \t"); i >= 0 {
		word = word[:i]
	}
	return nil, p.errorAt(p.pos, p.pos+len(word), "entry", fmt.Sprintf("expected comment, transaction or directive but got %q", word))
}
