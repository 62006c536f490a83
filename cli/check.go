package cli

import (
	"context"
	"errors"
	"io"

	"github.com/alecthomas/kong"
)

type CheckCmd struct {
	File  FileOrStdin `help:"Ledger input filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	Watch bool        `help:"Check again whenever the file or one of its includes changes." short:"w"`
}

func (cmd *CheckCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}
	if cmd.Watch && cmd.File.IsStdin() {
		return errors.New("--watch needs a file name, stdin cannot be watched")
	}

	r, err := globals.start(ctx.Stderr, commandName("check", cmd.File.Filename))
	if err != nil {
		return err
	}
	defer r.finish()

	if cmd.Watch {
		return cmd.watch(r, ctx.Stdout, ctx.Stderr)
	}

	_, err = cmd.check(r.ctx, r, ctx.Stdout, ctx.Stderr)
	return err
}

// check books the input once and prints the outcome. It returns the files
// that were read.
func (cmd *CheckCmd) check(ctx context.Context, r *run, stdout, stderr io.Writer) ([]string, error) {
	b, err := book(ctx, r, &cmd.File)
	if b == nil {
		return nil, err
	}
	if err != nil {
		if ctx.Err() != nil {
			return b.files, err
		}
		report(stderr, err)
		return b.files, NewCommandError(1)
	}

	if n := len(b.ledger.Warnings()); n > 0 {
		printInfof(stderr, "%d warning(s)", n)
	}
	printSuccess(stdout, "Check passed")

	return b.files, nil
}
