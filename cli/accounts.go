package cli

import (
	"fmt"

	"github.com/alecthomas/kong"
	"golang.org/x/exp/slices"
)

type AccountsCmd struct {
	File FileOrStdin `help:"Ledger input filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	Sort bool        `help:"Sort by name instead of the order of first use." short:"s"`
}

func (cmd *AccountsCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	r, err := globals.start(ctx.Stderr, commandName("accounts", cmd.File.Filename))
	if err != nil {
		return err
	}
	defer r.finish()

	b, err := book(r.ctx, r, &cmd.File)
	if b == nil {
		return err
	}
	if err != nil {
		report(ctx.Stderr, err)
		return NewCommandError(1)
	}

	names := b.ledger.Accounts()
	if cmd.Sort {
		slices.Sort(names)
	}
	for _, name := range names {
		_, _ = fmt.Fprintln(ctx.Stdout, name)
	}
	return nil
}
