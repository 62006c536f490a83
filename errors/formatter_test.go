package errors

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/ledger/ast"
	"github.com/robinvdvleuten/ledger/parser"
)

type spanError struct {
	source string
	span   ast.Span
	msg    string
}

func (e spanError) Error() string             { return e.GetPosition().String() + ": " + e.msg }
func (e spanError) Title() string             { return e.msg }
func (e spanError) GetSpan() ast.Span         { return e.span }
func (e spanError) GetSource() string         { return e.source }
func (e spanError) GetPosition() ast.Position { return ast.LineCol("test.ledger", e.source, e.span.Start) }

// spanOf returns the span of the first occurrence of needle in source.
func spanOf(source, needle string) ast.Span {
	i := strings.Index(source, needle)
	return ast.Span{Start: i, End: i + len(needle)}
}

func TestTextFormatterExcerpt(t *testing.T) {
	tests := []struct {
		name   string
		source string
		span   ast.Span
		want   []string
	}{
		{
			name:   "single line",
			source: "2024/1/1 Payee\n    Assets:Bank  10 CHF\n",
			span:   spanOf("2024/1/1 Payee\n    Assets:Bank  10 CHF\n", "10 CHF"),
			want: []string{
				" 2 |     Assets:Bank  10 CHF",
				"   |                  ^^^^^^",
			},
		},
		{
			name:   "wide characters",
			source: "    資産:銀行  10 CHF\n",
			span:   spanOf("    資産:銀行  10 CHF\n", "10"),
			want: []string{
				" 1 |     資産:銀行  10 CHF",
				"   |                ^^",
			},
		},
		{
			name:   "tabs",
			source: "\tAssets  10 CHF\n",
			span:   spanOf("\tAssets  10 CHF\n", "10"),
			want: []string{
				" 1 |     Assets  10 CHF",
				"   |             ^^",
			},
		},
		{
			name:   "span inside a rune",
			source: "資資 x\n",
			span:   ast.Span{Start: 1, End: 2},
			want: []string{
				" 1 | 資資 x",
				"   | ^^",
			},
		},
		{
			name:   "empty span at line end",
			source: "abc\n",
			span:   ast.Span{Start: 3, End: 3},
			want: []string{
				" 1 | abc",
				"   |    ^",
			},
		},
		{
			name:   "span ending after newline",
			source: "one\ntwo\n",
			span:   ast.Span{Start: 0, End: 4},
			want: []string{
				" 1 | one",
				"   | ^^^",
			},
		},
		{
			name:   "multiple lines",
			source: "2024/1/1 x\n    A  1 B\n    C\n",
			span:   spanOf("2024/1/1 x\n    A  1 B\n    C\n", "A  1 B\n    C"),
			want: []string{
				" 2 |     A  1 B",
				"   |     ^^^^^^",
				" 3 |     C",
				"   |     ^",
			},
		},
		{
			name:   "gutter grows with line numbers",
			source: strings.Repeat("\n", 9) + "x\n",
			span:   ast.Span{Start: 9, End: 10},
			want: []string{
				" 10 | x",
				"    | ^",
			},
		},
		{
			name:   "span past end is clamped",
			source: "abc",
			span:   ast.Span{Start: 1, End: 99},
			want: []string{
				" 1 | abc",
				"   |  ^^",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := spanError{source: tt.source, span: tt.span, msg: "boom"}
			got := NewTextFormatter().Format(err)

			title, excerpt, ok := strings.Cut(got, "\n\n")
			assert.True(t, ok, got)
			assert.Equal(t, err.Error(), title)
			assert.Equal(t, strings.Join(tt.want, "\n")+"\n", excerpt)
		})
	}
}

func TestTextFormatterTitleInsideRune(t *testing.T) {
	err := spanError{source: "ab€cd\n", span: ast.Span{Start: 3, End: 4}, msg: "boom"}

	got := NewTextFormatter().Format(err)
	assert.Equal(t, "test.ledger:1:3: boom\n\n 1 | ab€cd\n   |   ^\n", got)
}

func TestTextFormatterWrappedError(t *testing.T) {
	_, err := parser.ParseString(t.Context(), "main.ledger", "2024/1/1 x\n    A  1 B C\n")
	assert.Error(t, err)

	got := NewTextFormatter().Format(fmt.Errorf("failed to load main.ledger: %w", err))
	assert.Equal(t, `main.ledger:2:12: invalid posting: unexpected "C"

 2 |     A  1 B C
   |            ^
`, got)
}

func TestTextFormatterWithoutSpan(t *testing.T) {
	tf := NewTextFormatter()
	assert.Equal(t, "plain failure", tf.Format(fmt.Errorf("plain failure")))

	// Without any source only the message is printed.
	err := spanError{span: ast.Span{Start: 0, End: 1}, msg: "no source"}
	assert.Equal(t, err.Error(), tf.Format(err))

	// WithSource supplies the text for errors that lack it.
	got := NewTextFormatter(WithSource("xyz\n")).Format(err)
	assert.Equal(t, err.Error()+"\n\n 1 | xyz\n   | ^\n", got)
}

func TestTextFormatterFormatAll(t *testing.T) {
	tf := NewTextFormatter()
	assert.Equal(t, "", tf.FormatAll(nil))
	assert.Equal(t, "one\n\ntwo", tf.FormatAll([]error{fmt.Errorf("one"), fmt.Errorf("two")}))
}

func TestJSONFormatter(t *testing.T) {
	_, err := parser.ParseString(t.Context(), "main.ledger", "2024/13/1 x\n    A  1 B\n")
	assert.Error(t, err)

	var got ErrorJSON
	assert.NoError(t, json.Unmarshal([]byte(NewJSONFormatter().Format(err)), &got))

	assert.Equal(t, "*parser.ParseError", got.Type)
	assert.Equal(t, "invalid date: month 13 out of range", got.Message)
	assert.Equal(t, &PositionJSON{Filename: "main.ledger", Line: 1, Column: 1}, got.Position)
	assert.Equal(t, &SpanJSON{Start: 0, End: 9, Text: "2024/13/1"}, got.Span)
	assert.Equal(t, map[string]any{"context": "date"}, got.Details)
}

func TestJSONFormatterPlainError(t *testing.T) {
	got := NewJSONFormatter().FormatAllToSlice([]error{fmt.Errorf("boom")})
	assert.Equal(t, []ErrorJSON{{Type: "*errors.errorString", Message: "boom"}}, got)
}
