package parser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/robinvdvleuten/ledger/ast"
)

// Helper methods for navigating the source. The parser works directly on
// bytes because the ledger format is line and whitespace sensitive: two
// spaces end an account name and indentation starts a posting.

func (p *Parser) isAtEnd() bool {
	return p.pos >= len(p.src)
}

func (p *Parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *Parser) peekAhead(n int) byte {
	if p.pos+n >= len(p.src) {
		return 0
	}
	return p.src[p.pos+n]
}

func (p *Parser) advance() byte {
	c := p.peek()
	if !p.isAtEnd() {
		p.pos++
	}
	return c
}

func (p *Parser) check(s string) bool {
	return strings.HasPrefix(p.src[p.pos:], s)
}

func (p *Parser) match(s string) bool {
	if p.check(s) {
		p.pos += len(s)
		return true
	}
	return false
}

func (p *Parser) consume(s, context, message string) error {
	if p.match(s) {
		return nil
	}
	return p.errorAt(p.pos, p.errorEnd(), context, message)
}

// checkKeyword reports whether the input continues with word followed by a
// space, a tab or the end of the line.
func (p *Parser) checkKeyword(word string) bool {
	if !p.check(word) {
		return false
	}
	next := p.pos + len(word)
	return next >= len(p.src) || isInlineSpace(p.src[next]) || isLineEnd(p.src[next])
}

// skipSpaces skips spaces and tabs and returns how many were skipped.
func (p *Parser) skipSpaces() int {
	start := p.pos
	for !p.isAtEnd() && isInlineSpace(p.src[p.pos]) {
		p.pos++
	}
	return p.pos - start
}

func (p *Parser) atLineEnd() bool {
	return p.isAtEnd() || isLineEnd(p.src[p.pos])
}

// lineEnd returns the offset of the end of the current line, excluding the
// line terminator.
func (p *Parser) lineEnd() int {
	end := strings.IndexByte(p.src[p.pos:], '\n')
	if end < 0 {
		end = len(p.src)
	} else {
		end += p.pos
	}
	if end > p.pos && p.src[end-1] == '\r' {
		end--
	}
	return end
}

// restOfLine consumes and returns the remaining text on the current line.
func (p *Parser) restOfLine() string {
	end := p.lineEnd()
	text := p.src[p.pos:end]
	p.pos = end
	return text
}

// nextLine moves past the line terminator of the current line.
func (p *Parser) nextLine() {
	p.pos = p.lineEnd()
	p.match("\r")
	p.match("\n")
}

// isBlankLine reports whether the line starting at offset holds only
// whitespace.
func (p *Parser) isBlankLine(offset int) bool {
	for i := offset; i < len(p.src); i++ {
		switch p.src[i] {
		case ' ', '\t', '\r':
		case '\n':
			return true
		default:
			return false
		}
	}
	return true
}

// atIndentedLine reports whether the cursor is at the start of an indented,
// non-blank line.
func (p *Parser) atIndentedLine() bool {
	return !p.isAtEnd() && isInlineSpace(p.src[p.pos]) && !p.isBlankLine(p.pos)
}

// expectLineEnd fails unless only whitespace remains on the line.
func (p *Parser) expectLineEnd(context string) error {
	p.skipSpaces()
	if p.atLineEnd() {
		return nil
	}
	return p.errorAt(p.pos, p.lineEnd(), context, fmt.Sprintf("unexpected %q", p.src[p.pos:p.lineEnd()]))
}

// Error helpers

func (p *Parser) errorAt(start, end int, context, message string) error {
	if end > len(p.src) {
		end = len(p.src)
	}
	if end < start {
		end = start
	}
	return &ParseError{
		Filename: p.filename,
		Source:   p.src,
		Span:     ast.Span{Start: start, End: end},
		Context:  context,
		Message:  message,
	}
}

func (p *Parser) errorf(context, format string, args ...any) error {
	return p.errorAt(p.pos, p.errorEnd(), context, fmt.Sprintf(format, args...))
}

// errorEnd covers the character at the cursor, or nothing at a line end.
func (p *Parser) errorEnd() int {
	if p.atLineEnd() {
		return p.pos
	}
	_, size := utf8.DecodeRuneInString(p.src[p.pos:])
	return p.pos + size
}

func (p *Parser) warn(start, end int, message string) {
	p.warnings = append(p.warnings, Warning{
		Filename: p.filename,
		Span:     ast.Span{Start: start, End: end},
		Message:  message,
	})
}

func isInlineSpace(c byte) bool {
	return c == ' ' || c == '\t'
}

func isLineEnd(c byte) bool {
	return c == '\n' || c == '\r'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// describe renders the character at the cursor for error messages.
func (p *Parser) describe() string {
	if p.atLineEnd() {
		return "end of line"
	}
	r, _ := utf8.DecodeRuneInString(p.src[p.pos:])
	return fmt.Sprintf("%q", r)
}
