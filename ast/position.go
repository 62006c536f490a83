package ast

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Position represents a location in the source file.
type Position struct {
	Filename string
	Offset   int // Byte offset
	Line     int // Line number (1-indexed)
	Column   int // Column number (1-indexed, in bytes)
}

// String returns a human-readable representation of the position.
func (p Position) String() string {
	if p.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// GoString returns a Go-syntax representation of the position.
func (p Position) GoString() string {
	return fmt.Sprintf("Position{Filename: %q, Line: %d, Column: %d}", p.Filename, p.Line, p.Column)
}

// LineCol converts a byte offset in source into a Position.
// Offsets past the end of source are clamped to len(source), and an offset
// inside a multi-byte character moves back to the start of that character.
func LineCol(filename, source string, offset int) Position {
	offset = min(max(offset, 0), len(source))
	for offset > 0 && offset < len(source) && !utf8.RuneStart(source[offset]) {
		offset--
	}
	prefix := source[:offset]
	line := strings.Count(prefix, "\n") + 1
	lineStart := strings.LastIndexByte(prefix, '\n') + 1
	return Position{
		Filename: filename,
		Offset:   offset,
		Line:     line,
		Column:   offset - lineStart + 1,
	}
}

// Span represents a half-open byte range [Start, End) in the source file.
type Span struct {
	Start int // Starting byte offset (inclusive)
	End   int // Ending byte offset (exclusive)
}

// IsZero returns true if this is an uninitialized span.
func (s Span) IsZero() bool {
	return s.Start == 0 && s.End == 0
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	if s.End < s.Start {
		return 0
	}
	return s.End - s.Start
}

// Contains reports whether offset lies within the span.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start && offset < s.End
}

// Text extracts the source text for this span.
// Returns empty string if span is invalid or zero.
func (s Span) Text(source string) string {
	if s.IsZero() || s.Start < 0 || s.End <= s.Start || s.End > len(source) {
		return ""
	}
	return source[s.Start:s.End]
}

// Intersect returns the overlap of two spans. The second return value is
// false when the spans are disjoint.
func (s Span) Intersect(o Span) (Span, bool) {
	start := max(s.Start, o.Start)
	end := min(s.End, o.End)
	if end < start {
		return Span{}, false
	}
	return Span{Start: start, End: end}, true
}

// Shift moves the span by delta bytes.
func (s Span) Shift(delta int) Span {
	return Span{Start: s.Start + delta, End: s.End + delta}
}

// Resolve rebases a span that is relative to a sub-slice starting at
// parent.Start into parent's coordinate space, clipping the result to parent.
// A span that falls entirely outside the parent collapses to an empty span at
// the nearest parent boundary.
func (s Span) Resolve(parent Span) Span {
	rebased := s.Shift(parent.Start)
	if clipped, ok := rebased.Intersect(parent); ok {
		return clipped
	}
	if rebased.Start >= parent.End {
		return Span{Start: parent.End, End: parent.End}
	}
	return Span{Start: parent.Start, End: parent.Start}
}

func (s Span) String() string {
	return fmt.Sprintf("%d..%d", s.Start, s.End)
}
