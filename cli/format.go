package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/ledger/ast"
	"github.com/robinvdvleuten/ledger/formatter"
	"github.com/robinvdvleuten/ledger/loader"
)

type FormatCmd struct {
	File           FileOrStdin `help:"Ledger input filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	Write          bool        `help:"Write the result back to the file instead of stdout." short:"w"`
	Yes            bool        `help:"Overwrite the file without asking." short:"y"`
	CurrencyColumn int         `help:"Column at which amounts end (auto-calculated from content if 0)." default:"0"`
}

func (cmd *FormatCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}
	if cmd.Write && cmd.File.IsStdin() {
		return errors.New("--write needs a file name, stdin cannot be written back")
	}

	r, err := globals.start(ctx.Stderr, commandName("format", cmd.File.Filename))
	if err != nil {
		return err
	}
	defer r.finish()

	// Includes stay include entries, each file is formatted on its own.
	result, err := cmd.File.Load(r.ctx, loader.New())
	if err != nil {
		report(ctx.Stderr, err)
		return NewCommandError(1)
	}

	opts := r.config.FormatterOptions()
	if cmd.CurrencyColumn > 0 {
		opts = append(opts, formatter.WithCurrencyColumn(cmd.CurrencyColumn))
	}
	f := formatter.New(opts...)

	entries := make([]ast.Tracked[ast.Entry], 0, len(result.Entries))
	for _, e := range result.Entries {
		entries = append(entries, e.Entry)
	}

	formatted, err := f.FormatString(r.ctx, entries)
	if err != nil {
		return err
	}

	if !cmd.Write {
		_, err := fmt.Fprint(ctx.Stdout, formatted)
		return err
	}

	path := cmd.File.GetAbsoluteFilename()
	if root, ok := result.File(path); ok && root.Source == formatted {
		printInfof(ctx.Stderr, "%s is already formatted", cmd.File.Filename)
		return nil
	}

	if !cmd.Yes && isTerminal(os.Stdin) {
		ok, err := promptYesNo(fmt.Sprintf("Overwrite %s?", cmd.File.Filename))
		if err != nil {
			return err
		}
		if !ok {
			printInfof(ctx.Stderr, "Left %s unchanged", cmd.File.Filename)
			return nil
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(formatted), info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write %s: %w", cmd.File.Filename, err)
	}

	printSuccess(ctx.Stdout, fmt.Sprintf("Formatted %s", cmd.File.Filename))
	return nil
}
