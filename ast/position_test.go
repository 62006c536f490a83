package ast

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestSpan_Text(t *testing.T) {
	source := "hello world"

	tests := []struct {
		name string
		span Span
		want string
	}{
		{"Valid span", Span{Start: 0, End: 5}, "hello"},
		{"Valid span in middle", Span{Start: 6, End: 11}, "world"},
		{"Zero span", Span{}, ""},
		{"Negative start", Span{Start: -5, End: 3}, ""},
		{"Start greater than End", Span{Start: 10, End: 5}, ""},
		{"End beyond source length", Span{Start: 0, End: 100}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.span.Text(source))
		})
	}
}

func TestSpan_Intersect(t *testing.T) {
	got, ok := Span{Start: 2, End: 8}.Intersect(Span{Start: 5, End: 12})
	assert.True(t, ok)
	assert.Equal(t, Span{Start: 5, End: 8}, got)

	_, ok = Span{Start: 0, End: 3}.Intersect(Span{Start: 4, End: 6})
	assert.False(t, ok)

	got, ok = Span{Start: 0, End: 3}.Intersect(Span{Start: 3, End: 6})
	assert.True(t, ok)
	assert.Equal(t, 0, got.Len())
}

func TestSpan_Resolve(t *testing.T) {
	parent := Span{Start: 100, End: 120}

	t.Run("Inside parent", func(t *testing.T) {
		assert.Equal(t, Span{Start: 104, End: 110}, Span{Start: 4, End: 10}.Resolve(parent))
	})

	t.Run("Clipped at parent end", func(t *testing.T) {
		assert.Equal(t, Span{Start: 115, End: 120}, Span{Start: 15, End: 40}.Resolve(parent))
	})

	t.Run("Entirely past parent", func(t *testing.T) {
		assert.Equal(t, Span{Start: 120, End: 120}, Span{Start: 30, End: 40}.Resolve(parent))
	})
}

func TestLineCol(t *testing.T) {
	source := "first\nsecond line\n\nfourth"

	tests := []struct {
		offset int
		line   int
		column int
	}{
		{0, 1, 1},
		{3, 1, 4},
		{6, 2, 1},
		{13, 2, 8},
		{19, 4, 1},
		{1000, 4, 7},
	}

	for _, tt := range tests {
		pos := LineCol("main.ledger", source, tt.offset)
		assert.Equal(t, tt.line, pos.Line, "line at offset %d", tt.offset)
		assert.Equal(t, tt.column, pos.Column, "column at offset %d", tt.offset)
	}
}

func TestLineColInsideRune(t *testing.T) {
	source := "ab€cd"

	for offset := 2; offset <= 4; offset++ {
		pos := LineCol("x", source, offset)
		assert.Equal(t, "x:1:3", pos.String(), "offset %d", offset)
		assert.Equal(t, 2, pos.Offset)
	}
	assert.Equal(t, "x:1:6", LineCol("x", source, 5).String())
}

func TestPosition_String(t *testing.T) {
	assert.Equal(t, "main.ledger:3:5", Position{Filename: "main.ledger", Line: 3, Column: 5}.String())
	assert.Equal(t, "3:5", Position{Line: 3, Column: 5}.String())
}
