package cli

import (
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/ledger/ledger"
	"github.com/robinvdvleuten/ledger/parser"
)

type EvalCmd struct {
	Expr   string `help:"Value expression, e.g. '(10 USD + 5 USD) / 3'." arg:""`
	Strict bool   `help:"Reject commodities that are not known to the ledger file."`
	Ledger string `help:"Ledger file whose commodities and aliases are used." type:"existingfile" short:"f" placeholder:"FILE"`
}

func (cmd *EvalCmd) Run(ctx *kong.Context, globals *Globals) error {
	r, err := globals.start(ctx.Stderr, "eval")
	if err != nil {
		return err
	}
	defer r.finish()

	l := ledger.New()
	if cmd.Ledger != "" {
		b, err := book(r.ctx, r, &FileOrStdin{Filename: cmd.Ledger})
		if b == nil {
			return err
		}
		if err != nil {
			report(ctx.Stderr, err)
			return NewCommandError(1)
		}
		l = b.ledger
	}

	value, err := evaluate(l, cmd.Expr, cmd.Strict)
	if err != nil {
		report(ctx.Stderr, err)
		return NewCommandError(1)
	}

	_, err = fmt.Fprintln(ctx.Stdout, value)
	return err
}

// evaluate parses and evaluates expr against the commodities of l and
// returns the result as text.
func evaluate(l *ledger.Ledger, expr string, strict bool) (string, error) {
	parsed, err := parser.ParseValueExpr(expr)
	if err != nil {
		return "", err
	}

	store := l.Session().Commodities
	resolve := ledger.MutatingResolver(store)
	if strict {
		resolve = ledger.StrictResolver(store)
	}

	value, err := ledger.Evaluate(parsed.Value, resolve)
	if err != nil {
		return "", err
	}

	if n, ok := value.Number(); ok {
		return n.String(), nil
	}
	if single, err := value.SingleAmount(); err == nil {
		return single.Format(store), nil
	}
	amount, err := value.Amount()
	if err != nil {
		return "", err
	}
	return l.FormatAmount(amount), nil
}
