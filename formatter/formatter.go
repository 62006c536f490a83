// Package formatter writes parsed ledger entries back as canonical text.
//
// Formatting normalises layout only: every comment starts with ';', postings
// and details are indented by the same amount, posting amounts are
// right-aligned so they end at the currency column, and entries are separated
// by exactly one blank line. Parsing the output yields the same entries again,
// and formatting the output a second time does not change it.
package formatter

import (
	"context"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/robinvdvleuten/ledger/ast"
	"github.com/robinvdvleuten/ledger/telemetry"
)

const (
	// DefaultCurrencyColumn is used when no posting in the input has an amount.
	DefaultCurrencyColumn = 52

	// DefaultIndentation is the indentation of postings, details and metadata.
	DefaultIndentation = 4

	// MinimumSpacing is the minimum number of spaces between an account and
	// its amount.
	MinimumSpacing = 2
)

// Formatter handles formatting of ledger entries with proper alignment.
type Formatter struct {
	// CurrencyColumn is the display column at which posting amounts end.
	// If 0, it is calculated from the widest posting of the input.
	CurrencyColumn int

	// Indentation is the number of spaces before postings and details.
	Indentation int
}

// Option is a functional option for configuring a Formatter.
type Option func(*Formatter)

// WithCurrencyColumn sets a specific column for amount alignment.
func WithCurrencyColumn(col int) Option {
	return func(f *Formatter) {
		f.CurrencyColumn = col
	}
}

// WithIndentation sets the indentation of postings and details.
func WithIndentation(n int) Option {
	return func(f *Formatter) {
		f.Indentation = n
	}
}

// New creates a new Formatter with the given options.
func New(opts ...Option) *Formatter {
	f := &Formatter{Indentation: DefaultIndentation}
	for _, opt := range opts {
		opt(f)
	}
	if f.Indentation < 1 {
		f.Indentation = 1
	}
	return f
}

// Format writes entries to w.
func (f *Formatter) Format(ctx context.Context, entries []ast.Tracked[ast.Entry], w io.Writer) error {
	timer := telemetry.StartTimer(ctx, telemetry.Format, "")
	defer timer.End()
	timer.Count("entries", len(entries))

	p := printer{
		indent: strings.Repeat(" ", f.Indentation),
		column: f.CurrencyColumn,
	}
	if p.column == 0 {
		p.column = p.autoColumn(entries)
	}

	var prev ast.Entry
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if prev != nil && !(isComment(prev) && isComment(entry.Value)) {
			p.buf.WriteByte('\n')
		}
		p.entry(entry.Value)
		prev = entry.Value
	}

	timer.Count("bytes", p.buf.Len())
	_, err := io.WriteString(w, p.buf.String())
	return err
}

// FormatString is a convenience wrapper around Format.
func (f *Formatter) FormatString(ctx context.Context, entries []ast.Tracked[ast.Entry]) (string, error) {
	var sb strings.Builder
	if err := f.Format(ctx, entries, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func isComment(e ast.Entry) bool {
	_, ok := e.(*ast.Comment)
	return ok
}

type printer struct {
	buf    strings.Builder
	indent string
	column int
}

// autoColumn returns the narrowest column at which every posting amount fits
// behind its account with the minimum spacing.
func (p *printer) autoColumn(entries []ast.Tracked[ast.Entry]) int {
	column := 0
	for _, entry := range entries {
		txn, ok := entry.Value.(*ast.Transaction)
		if !ok {
			continue
		}
		for _, tp := range txn.Postings {
			if aligned := alignedPart(tp.Value); aligned != "" {
				width := runewidth.StringWidth(p.indent+postingPrefix(tp.Value)) + MinimumSpacing + runewidth.StringWidth(aligned)
				column = max(column, width)
			}
		}
	}
	if column == 0 {
		return DefaultCurrencyColumn
	}
	return column
}

func (p *printer) entry(e ast.Entry) {
	switch e := e.(type) {
	case *ast.Comment:
		p.buf.WriteString(";")
		p.buf.WriteString(e.Text)
		p.buf.WriteByte('\n')
	case *ast.AccountDeclaration:
		p.line("account " + e.Name)
		p.details(e.Details)
	case *ast.CommodityDeclaration:
		p.line("commodity " + e.Name)
		p.details(e.Details)
	case *ast.ApplyTag:
		if e.Value == "" {
			p.line("apply tag " + e.Key)
		} else {
			p.line("apply tag " + e.Key + ": " + e.Value)
		}
	case *ast.EndApplyTag:
		p.line("end apply tag")
	case *ast.Include:
		p.line("include " + quote(e.Path))
	case *ast.Transaction:
		p.transaction(e)
	}
}

func (p *printer) line(s string) {
	p.buf.WriteString(s)
	p.buf.WriteByte('\n')
}

func (p *printer) indented(s string) {
	p.buf.WriteString(p.indent)
	p.line(s)
}

func (p *printer) details(details []ast.Detail) {
	for _, d := range details {
		switch d := d.(type) {
		case *ast.AliasDetail:
			p.indented("alias " + d.Name)
		case *ast.NoteDetail:
			p.indented(strings.TrimRight("note "+d.Text, " "))
		case *ast.FormatDetail:
			p.indented("format " + d.Amount.String())
		case *ast.MetadataDetail:
			p.metadata(d.Metadata)
		}
	}
}

func (p *printer) metadata(metadata []ast.Metadata) {
	for _, m := range metadata {
		p.indented(strings.TrimRight("; "+m.String(), " "))
	}
}

func (p *printer) transaction(txn *ast.Transaction) {
	var header strings.Builder
	header.WriteString(txn.Date.String())
	if txn.EffectiveDate != nil {
		header.WriteByte('=')
		header.WriteString(txn.EffectiveDate.String())
	}
	if txn.State != ast.Uncleared {
		header.WriteByte(' ')
		header.WriteString(txn.State.String())
	}
	// A payee starting with '(' would read back as a code.
	if txn.Code != "" || strings.HasPrefix(txn.Payee, "(") {
		header.WriteString(" (" + txn.Code + ")")
	}
	if txn.Payee != "" {
		header.WriteByte(' ')
		header.WriteString(txn.Payee)
	}
	p.line(header.String())
	p.metadata(txn.Metadata)

	for _, tp := range txn.Postings {
		p.posting(tp.Value)
	}
}

func (p *printer) posting(posting *ast.Posting) {
	prefix := p.indent + postingPrefix(posting)
	aligned := alignedPart(posting)
	if aligned == "" {
		p.line(prefix)
	} else {
		padding := p.column - runewidth.StringWidth(prefix) - runewidth.StringWidth(aligned)
		p.line(prefix + strings.Repeat(" ", max(padding, MinimumSpacing)) + aligned + postingSuffix(posting))
	}
	p.metadata(posting.Metadata)
}

// postingPrefix is the clearing flag and the account.
func postingPrefix(posting *ast.Posting) string {
	if posting.State != ast.Uncleared {
		return posting.State.String() + " " + posting.Account
	}
	return posting.Account
}

// alignedPart is the text that ends at the currency column: the amount
// expression, or the balance assertion of a posting without amount.
func alignedPart(posting *ast.Posting) string {
	switch {
	case posting.Amount != nil:
		return posting.Amount.Amount.Value.String()
	case posting.Balance != nil:
		return "= " + posting.Balance.Value.String()
	}
	return ""
}

// postingSuffix is everything after the amount: lot annotations, exchange and
// balance assertion.
func postingSuffix(posting *ast.Posting) string {
	pa := posting.Amount
	if pa == nil {
		return ""
	}

	var sb strings.Builder
	if price := pa.Lot.Price; price != nil {
		if price.Total {
			sb.WriteString(" {{" + price.Expr.Value.String() + "}}")
		} else {
			sb.WriteString(" {" + price.Expr.Value.String() + "}")
		}
	}
	if pa.Lot.Date != nil {
		sb.WriteString(" [" + pa.Lot.Date.String() + "]")
	}
	if pa.Lot.Note != "" {
		sb.WriteString(" (" + pa.Lot.Note + ")")
	}
	if ex := pa.Exchange; ex != nil {
		if ex.Total {
			sb.WriteString(" @@ ")
		} else {
			sb.WriteString(" @ ")
		}
		sb.WriteString(ex.Expr.Value.String())
	}
	if posting.Balance != nil {
		sb.WriteString(" = " + posting.Balance.Value.String())
	}
	return sb.String()
}
