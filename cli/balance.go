package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/mattn/go-runewidth"
	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/ledger/ledger"
	"github.com/robinvdvleuten/ledger/output"
)

// columnGap is the number of spaces between the account and amount columns.
const columnGap = 2

type BalanceCmd struct {
	File    FileOrStdin `help:"Ledger input filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	Account string      `help:"Only show this account and its subaccounts." short:"a" placeholder:"PREFIX"`
	Empty   bool        `help:"Also show accounts with a zero balance." short:"E"`
}

func (cmd *BalanceCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	r, err := globals.start(ctx.Stderr, commandName("balance", cmd.File.Filename))
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

	printBalances(ctx.Stdout, b.ledger, cmd.Account, cmd.Empty)
	return nil
}

// balanceRow is one line of the balance report.
type balanceRow struct {
	account string
	amount  string
}

// balanceRows returns the balances of the accounts matching prefix, sorted
// by account name.
func balanceRows(l *ledger.Ledger, prefix string, empty bool) []balanceRow {
	names := l.Accounts()
	slices.Sort(names)

	var rows []balanceRow
	for _, name := range names {
		if !hasAccountPrefix(name, prefix) {
			continue
		}
		amount, ok := l.Balance(name)
		if !ok && !empty {
			continue
		}
		if amount.IsZero() && !empty {
			continue
		}
		rows = append(rows, balanceRow{account: name, amount: l.FormatAmount(amount)})
	}
	return rows
}

func printBalances(w io.Writer, l *ledger.Ledger, prefix string, empty bool) {
	rows := balanceRows(l, prefix, empty)

	width := 0
	for _, row := range rows {
		width = max(width, runewidth.StringWidth(row.account))
	}

	styles := output.NewStyles(w)
	for _, row := range rows {
		padding := strings.Repeat(" ", width-runewidth.StringWidth(row.account)+columnGap)
		_, _ = fmt.Fprintf(w, "%s%s%s\n", styles.Account(row.account), padding, styles.Amount(row.amount))
	}
}

// hasAccountPrefix reports whether name is prefix or one of its
// subaccounts. An empty prefix matches every account.
func hasAccountPrefix(name, prefix string) bool {
	prefix = strings.TrimSuffix(prefix, ":")
	if prefix == "" || name == prefix {
		return true
	}
	return strings.HasPrefix(name, prefix+":")
}
