package cli

import (
	"fmt"

	"github.com/alecthomas/kong"
	"github.com/alecthomas/repr"

	"github.com/robinvdvleuten/ledger/ast"
	"github.com/robinvdvleuten/ledger/loader"
)

// DoctorCmd provides doctor utilities for debugging ledger files.
type DoctorCmd struct {
	Parse ParseCmd `cmd:"" help:"Show the parsed entries of a ledger file with their spans."`
}

// ParseCmd dumps the entries of a single file, without following includes.
type ParseCmd struct {
	File FileOrStdin `help:"Ledger input filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
}

// Run executes the parse command.
func (cmd *ParseCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	r, err := globals.start(ctx.Stderr, commandName("doctor parse", cmd.File.Filename))
	if err != nil {
		return err
	}
	defer r.finish()

	result, err := cmd.File.Load(r.ctx, loader.New())
	if err != nil {
		report(ctx.Stderr, err)
		return NewCommandError(1)
	}

	for _, e := range result.Entries {
		pos := ast.LineCol(e.File.Filename, e.File.Source, e.Entry.Span.Start)
		_, _ = fmt.Fprintf(ctx.Stdout, "%s %s\n", pos, e.Entry.Span)
		_, _ = fmt.Fprintln(ctx.Stdout, repr.String(e.Entry.Value, repr.Indent("  ")))
	}

	for _, f := range result.Files {
		for _, w := range f.Warnings {
			printInfof(ctx.Stderr, "warning: %s", w)
		}
	}
	return nil
}
