package cli

import (
	"context"
	stdErrors "errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/ledger/ast"
	"github.com/robinvdvleuten/ledger/errors"
	"github.com/robinvdvleuten/ledger/ledger"
	"github.com/robinvdvleuten/ledger/loader"
	"github.com/robinvdvleuten/ledger/output"
	"github.com/robinvdvleuten/ledger/parser"
)

// booked is the outcome of loading and balancing a ledger file.
type booked struct {
	ledger *ledger.Ledger
	// files lists every file read, the root first.
	files []string
}

// book loads file with its includes and processes every entry in order.
// Parser warnings are logged once per file. On error the files read so far
// are still returned.
func book(ctx context.Context, r *run, file *FileOrStdin) (*booked, error) {
	opts, err := r.config.LedgerOptions()
	if err != nil {
		return nil, err
	}

	b := &booked{ledger: ledger.New(opts...)}
	if !file.IsStdin() {
		b.files = append(b.files, file.GetAbsoluteFilename())
	}

	seen := make(map[*parser.File]bool)
	logger := zerolog.Ctx(ctx)

	ldr := loader.New(loader.WithFollowIncludes())
	err = file.Walk(ctx, ldr, func(f *parser.File, entry ast.Tracked[ast.Entry]) error {
		if !seen[f] {
			seen[f] = true
			if len(b.files) == 0 || b.files[0] != f.Filename {
				b.files = append(b.files, f.Filename)
			}
			for _, w := range f.Warnings {
				logger.Warn().Str("file", w.Filename).Stringer("span", w.Span).Msg(w.Message)
			}
		}
		return b.ledger.ProcessEntry(ctx, f, entry)
	})

	var loadErr *loader.LoadError
	if stdErrors.As(err, &loadErr) && loadErr.Path != "" && !slices.Contains(b.files, loadErr.Path) {
		b.files = append(b.files, loadErr.Path)
	}

	return b, err
}

// report renders err with its source excerpt to w, followed by a one line
// summary.
func report(w io.Writer, err error) {
	tf := errors.NewTextFormatter(errors.WithStyles(output.NewStyles(w)))
	_, _ = fmt.Fprintln(w, tf.Format(err))
	_, _ = fmt.Fprintln(w)
	printError(w, summary(err))
}

// summary names the stage that failed.
func summary(err error) string {
	var (
		loadErr  *loader.LoadError
		parseErr *parser.ParseError
		evalErr  *ledger.EvalError
		bkErr    *ledger.BookKeepError
		declErr  *ledger.DeclarationError
	)
	switch {
	case stdErrors.As(err, &loadErr) && loadErr.Kind != loader.Parse:
		return "load error"
	case stdErrors.As(err, &parseErr):
		return "parse error"
	case stdErrors.As(err, &bkErr):
		return "balance error"
	case stdErrors.As(err, &evalErr):
		return "evaluation error"
	case stdErrors.As(err, &declErr):
		return "declaration error"
	}
	return "failed"
}
