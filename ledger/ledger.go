// Package ledger evaluates parsed ledger entries: it interns account and
// commodity names, evaluates value expressions and balances every
// transaction against the running per-account totals.
//
// Entries are processed strictly in file order. For each transaction the
// ledger:
//   - evaluates explicit posting amounts and adds their weight to the total
//   - turns balance assertions into posting amounts against the running balance
//   - deduces the amount of at most one elided posting from the total
//   - rejects or warns about transactions that do not sum to zero
//
// The first error aborts processing and leaves the balances as they were
// before the failing transaction.
//
// Example usage:
//
//	file, err := parser.ParseString(ctx, "main.ledger", source)
//	if err != nil {
//	    return err
//	}
//
//	l := ledger.New(ledger.WithPolicy(ledger.Lenient))
//	if err := l.ProcessFile(ctx, file); err != nil {
//	    var bkErr *ledger.BookKeepError
//	    if errors.As(err, &bkErr) {
//	        // inspect bkErr.Kind, bkErr.Posting
//	    }
//	    return err
//	}
package ledger

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/robinvdvleuten/ledger/ast"
	"github.com/robinvdvleuten/ledger/intern"
	"github.com/robinvdvleuten/ledger/parser"
	"github.com/robinvdvleuten/ledger/telemetry"
)

// Ledger is one evaluation session. It owns the interning stores, so handles
// it hands out are only valid together with this Ledger.
type Ledger struct {
	config   *Config
	session  *intern.Session
	balances map[intern.Account]Amount

	transactions []*BookedTransaction
	tags         []ast.Metadata
	warnings     []Warning
}

// origin identifies the file an entry came from, for diagnostics.
type origin struct {
	filename string
	source   string
}

// New creates an empty ledger.
func New(opts ...Option) *Ledger {
	config := NewConfig()
	for _, opt := range opts {
		opt(config)
	}
	return &Ledger{
		config:   config,
		session:  intern.NewSession(),
		balances: make(map[intern.Account]Amount),
	}
}

// Config returns the configuration of the session.
func (l *Ledger) Config() *Config {
	return l.config
}

// Process processes entries in order and stops at the first error.
func (l *Ledger) Process(ctx context.Context, entries []ast.Tracked[ast.Entry]) error {
	return l.process(ctx, origin{}, entries)
}

// ProcessFile processes all entries of a parsed file. Errors carry the file
// name and source so they can be rendered.
func (l *Ledger) ProcessFile(ctx context.Context, file *parser.File) error {
	return l.process(ctx, origin{filename: file.Filename, source: file.Source}, file.Entries)
}

// ProcessEntry processes a single entry of file. The file may be nil.
func (l *Ledger) ProcessEntry(ctx context.Context, file *parser.File, entry ast.Tracked[ast.Entry]) error {
	var o origin
	if file != nil {
		o = origin{filename: file.Filename, source: file.Source}
	}
	return l.processEntry(ctx, o, entry)
}

func (l *Ledger) process(ctx context.Context, o origin, entries []ast.Tracked[ast.Entry]) error {
	var subject string
	if o.filename != "" {
		subject = filepath.Base(o.filename)
	}
	timer := telemetry.StartTimer(ctx, telemetry.Process, subject)
	defer timer.End()
	timer.Count("entries", len(entries))

	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := l.processEntry(ctx, o, entry); err != nil {
			return err
		}
	}
	return nil
}

func (l *Ledger) processEntry(ctx context.Context, o origin, entry ast.Tracked[ast.Entry]) error {
	switch e := entry.Value.(type) {
	case *ast.Transaction:
		_, err := l.bookTransaction(ctx, o, e)
		return err

	case *ast.AccountDeclaration:
		if _, err := l.session.Accounts.InsertCanonical(e.Name); err != nil {
			return o.declarationError(e.Name, entry.Span, err)
		}
		for _, alias := range e.Aliases() {
			if err := l.session.Accounts.InsertAlias(alias, e.Name); err != nil {
				return o.declarationError(alias, entry.Span, err)
			}
		}

	case *ast.CommodityDeclaration:
		if _, err := l.session.Commodities.InsertCanonical(e.Name); err != nil {
			return o.declarationError(e.Name, entry.Span, err)
		}
		for _, alias := range e.Aliases() {
			if err := l.session.Commodities.InsertAlias(alias, e.Name); err != nil {
				return o.declarationError(alias, entry.Span, err)
			}
		}

	case *ast.ApplyTag:
		l.tags = append(l.tags, tagMetadata(e))

	case *ast.EndApplyTag:
		if len(l.tags) == 0 {
			return o.declarationError("end apply tag", entry.Span, ErrNoApplyTag)
		}
		l.tags = l.tags[:len(l.tags)-1]

	case *ast.Include:
		l.warn(ctx, Warning{
			Filename: o.filename,
			Span:     entry.Span,
			Message:  fmt.Sprintf("include %q was not expanded", e.Path),
		})
	}
	return nil
}

func tagMetadata(tag *ast.ApplyTag) ast.Metadata {
	if tag.Value == "" {
		return &ast.WordTags{Tags: []string{tag.Key}}
	}
	return &ast.KeyValue{Key: tag.Key, Value: tag.Value}
}

func (o origin) declarationError(name string, span ast.Span, err error) error {
	return &DeclarationError{
		Name:     name,
		Span:     span,
		Filename: o.filename,
		Source:   o.source,
		Err:      err,
	}
}

func (l *Ledger) warn(ctx context.Context, w Warning) {
	l.warnings = append(l.warnings, w)
	zerolog.Ctx(ctx).Warn().Str("file", w.Filename).Stringer("span", w.Span).Msg(w.Message)
}

// Session returns the interning stores of the ledger.
func (l *Ledger) Session() *intern.Session {
	return l.session
}

// Balance returns the running balance of an account, resolving aliases.
func (l *Ledger) Balance(account string) (Amount, bool) {
	h, ok := l.session.Accounts.Resolve(account)
	if !ok {
		return Amount{}, false
	}
	a, ok := l.balances[h]
	return a, ok
}

// Accounts returns all canonical account names in registration order.
func (l *Ledger) Accounts() []string {
	return names(l.session.Accounts)
}

// Commodities returns all canonical commodity names in registration order.
func (l *Ledger) Commodities() []string {
	return names(l.session.Commodities)
}

func names[K intern.Kind](store *intern.Store[K]) []string {
	handles := store.Canonicals()
	out := make([]string, len(handles))
	for i, h := range handles {
		out[i] = store.Name(h)
	}
	return out
}

// Transactions returns the booked transactions in processing order.
func (l *Ledger) Transactions() []*BookedTransaction {
	return l.transactions
}

// Warnings returns the non-fatal findings, including unbalanced transactions
// accepted under the Lenient policy.
func (l *Ledger) Warnings() []Warning {
	return l.warnings
}

// FormatAmount renders a using the commodity names of this ledger.
func (l *Ledger) FormatAmount(a Amount) string {
	return a.Format(l.session.Commodities)
}
