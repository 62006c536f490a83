package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/ledger/ast"
	"github.com/robinvdvleuten/ledger/intern"
	"github.com/robinvdvleuten/ledger/telemetry"
)

// BookedTransaction is a transaction with every posting amount resolved.
type BookedTransaction struct {
	Transaction *ast.Transaction
	// Metadata is the transaction metadata followed by the tags of the
	// enclosing apply tag blocks.
	Metadata []ast.Metadata
	Postings []BookedPosting
}

// BookedPosting is the resolved form of one posting.
type BookedPosting struct {
	Account intern.Account
	Amount  PostingAmount
	// Weight is the amount the posting contributes to the transaction
	// total, after lot price or exchange conversion.
	Weight PostingAmount
	// Deduced is set for the elided posting and for postings whose amount
	// comes from a balance assertion.
	Deduced bool
}

// ProcessTransaction balances txn, updates the running balances and records
// the booked result.
func (l *Ledger) ProcessTransaction(ctx context.Context, txn *ast.Transaction) (*BookedTransaction, error) {
	return l.bookTransaction(ctx, origin{}, txn)
}

// booking holds the state of balancing one transaction.
type booking struct {
	l       *Ledger
	o       origin
	txn     *ast.Transaction
	resolve CommodityResolver
	delta   *balanceDelta

	// total sums every weight and is what the elided posting offsets.
	total Amount
	// written sums the weights of postings with an explicit amount. Amounts
	// derived from balance assertions stay out of it, so the remaining
	// postings must still balance among themselves.
	written Amount
	// amounts collects the posting amounts per commodity for tolerance
	// inference. Converted weights are not included.
	amounts map[intern.Commodity][]decimal.Decimal
	elided  int
}

func (l *Ledger) bookTransaction(ctx context.Context, o origin, txn *ast.Transaction) (*BookedTransaction, error) {
	resolve := MutatingResolver(l.session.Commodities)
	if l.config.StrictCommodities {
		resolve = StrictResolver(l.session.Commodities)
	}

	b := &booking{
		l:       l,
		o:       o,
		txn:     txn,
		resolve: resolve,
		delta:   newBalanceDelta(l.balances),
		amounts: make(map[intern.Commodity][]decimal.Decimal),
		elided:  -1,
	}

	booked := &BookedTransaction{
		Transaction: txn,
		Metadata:    append(append([]ast.Metadata{}, txn.Metadata...), l.tags...),
		Postings:    make([]BookedPosting, len(txn.Postings)),
	}

	for i, tp := range txn.Postings {
		posting, err := b.post(i, tp)
		if err != nil {
			return nil, err
		}
		booked.Postings[i] = posting
	}

	if b.elided >= 0 {
		tp := txn.Postings[b.elided]
		deduced, ok := postingAmountOf(b.total.Neg())
		if !ok {
			return nil, b.errorAt(ComplexPostingAmount, b.elided, tp.Span, nil,
				"cannot deduce "+l.FormatAmount(b.total.Neg()))
		}
		account := booked.Postings[b.elided].Account
		b.delta.add(account, deduced.Amount())
		booked.Postings[b.elided] = BookedPosting{Account: account, Amount: deduced, Weight: deduced, Deduced: true}
	} else if residual := b.residual(); !residual.IsZero() {
		detail := "residual " + l.FormatAmount(residual)
		if l.config.Policy == Strict {
			return nil, b.errorAt(UnbalancedPostings, -1, b.postingsSpan(), nil, detail)
		}
		l.warn(ctx, Warning{
			Filename: o.filename,
			Span:     b.postingsSpan(),
			Message:  fmt.Sprintf("%s: %s", UnbalancedPostings.Error(), detail),
		})
	}

	b.delta.apply()
	l.transactions = append(l.transactions, booked)
	telemetry.Count(ctx, telemetry.Process, "transactions", 1)
	telemetry.Count(ctx, telemetry.Process, "postings", len(booked.Postings))

	zerolog.Ctx(ctx).Debug().
		Str("date", txn.Date.String()).
		Str("payee", txn.Payee).
		Int("postings", len(txn.Postings)).
		Msg("transaction booked")

	return booked, nil
}

func (b *booking) post(i int, tp ast.Tracked[*ast.Posting]) (BookedPosting, error) {
	p := tp.Value
	account := b.l.session.Accounts.Ensure(p.Account)
	booked := BookedPosting{Account: account}

	switch {
	case p.Amount != nil:
		value, err := b.eval(i, p.Amount.Amount)
		if err != nil {
			return booked, err
		}
		amount, err := value.PostingAmount()
		if err != nil {
			if p.Balance != nil {
				return booked, b.errorAt(ComplexPostingAmount, i, p.Amount.Amount.Span, nil,
					"balance assertions need a single commodity amount")
			}
			return booked, b.errorAt(EvalFailure, i, p.Amount.Amount.Span, err, "")
		}
		weight, err := b.weight(i, amount, p.Amount)
		if err != nil {
			return booked, err
		}

		b.record(amount)
		b.total = b.total.Add(weight.Amount())
		b.written = b.written.Add(weight.Amount())
		b.delta.add(account, amount.Amount())
		booked.Amount, booked.Weight = amount, weight

		if p.Balance != nil {
			if err := b.check(i, account, p.Balance); err != nil {
				return booked, err
			}
		}

	case p.Balance != nil:
		amount, err := b.assert(i, account, p.Balance)
		if err != nil {
			return booked, err
		}
		b.total = b.total.Add(amount.Amount())
		booked.Amount, booked.Weight, booked.Deduced = amount, amount, true

	default:
		if b.elided >= 0 {
			span := ast.Span{Start: b.txn.Postings[b.elided].Span.Start, End: tp.Span.End}
			err := b.errorAt(UndeduciblePostingAmount, b.elided, span, nil, "")
			err.Second = i
			return booked, err
		}
		b.elided = i
	}

	return booked, nil
}

// assert evaluates a balance assertion on a posting without amount and
// returns the amount that brings the account to the asserted balance.
func (b *booking) assert(i int, account intern.Account, expr *ast.Tracked[ast.Expr]) (PostingAmount, error) {
	asserted, err := b.assertion(i, expr)
	if err != nil {
		return PostingAmount{}, err
	}

	previous := b.delta.get(account)
	if asserted.IsZero() {
		amount, ok := postingAmountOf(previous.Neg())
		if !ok {
			return PostingAmount{}, b.errorAt(ComplexPostingAmount, i, expr.Span, nil,
				"cannot reset balance of "+b.l.FormatAmount(previous))
		}
		b.delta.set(account, Amount{})
		return amount, nil
	}

	c := asserted.Commodities()[0]
	diff := asserted.Get(c).Sub(previous.Get(c))
	b.delta.set(account, previous.Add(NewAmount(c, diff)))

	amount, _ := postingAmountOf(NewAmount(c, diff))
	return amount, nil
}

// check verifies a balance assertion on a posting that also has an amount.
func (b *booking) check(i int, account intern.Account, expr *ast.Tracked[ast.Expr]) error {
	asserted, err := b.assertion(i, expr)
	if err != nil {
		return err
	}

	current := b.delta.get(account)
	ok := current.IsZero()
	if !asserted.IsZero() {
		c := asserted.Commodities()[0]
		tolerance := b.l.config.Tolerance.Infer([]decimal.Decimal{asserted.Get(c), current.Get(c)}, b.l.session.Commodities.Name(c))
		ok = AmountEqual(current.Get(c), asserted.Get(c), tolerance)
	}
	if !ok {
		return b.errorAt(BalanceMismatch, i, expr.Span, nil, fmt.Sprintf("expected %s but got %s",
			b.l.FormatAmount(asserted), b.l.FormatAmount(current)))
	}
	return nil
}

// assertion evaluates a balance assertion to an amount of at most one
// commodity.
func (b *booking) assertion(i int, expr *ast.Tracked[ast.Expr]) (Amount, error) {
	value, err := b.eval(i, *expr)
	if err != nil {
		return Amount{}, err
	}
	asserted, err := value.Amount()
	if err != nil {
		return Amount{}, b.errorAt(EvalFailure, i, expr.Span, err, "")
	}
	if asserted.Len() > 1 {
		return Amount{}, b.errorAt(ComplexPostingAmount, i, expr.Span, nil,
			"balance assertions need a single commodity amount")
	}
	return asserted, nil
}

// weight converts a posting amount into the commodity it balances in: the
// lot price when present, otherwise the exchange rate.
func (b *booking) weight(i int, amount PostingAmount, pa *ast.PostingAmount) (PostingAmount, error) {
	var (
		expr  ast.Tracked[ast.Expr]
		total bool
	)
	switch {
	case pa.Lot.Price != nil:
		expr, total = pa.Lot.Price.Expr, pa.Lot.Price.Total
	case pa.Exchange != nil:
		expr, total = pa.Exchange.Expr, pa.Exchange.Total
	default:
		return amount, nil
	}

	value, err := b.eval(i, expr)
	if err != nil {
		return PostingAmount{}, err
	}
	price, err := value.SingleAmount()
	if err != nil {
		return PostingAmount{}, b.errorAt(EvalFailure, i, expr.Span, err, "")
	}

	single, ok := amount.Single()
	if !ok {
		return PostingAmount{}, nil
	}
	if price.Commodity == single.Commodity {
		return PostingAmount{}, b.errorAt(EvalFailure, i, expr.Span, &EvalError{Kind: UnmatchingCommodities},
			"price must be in a different commodity")
	}

	var converted decimal.Decimal
	if total {
		converted = price.Value.Abs()
		if single.Value.IsNegative() {
			converted = converted.Neg()
		}
	} else {
		converted, err = fit(single.Value.Mul(price.Value))
		if err != nil {
			return PostingAmount{}, b.errorAt(EvalFailure, i, expr.Span, err, "")
		}
	}

	weight, _ := postingAmountOf(NewAmount(price.Commodity, converted))
	return weight, nil
}

func (b *booking) eval(i int, expr ast.Tracked[ast.Expr]) (Value, error) {
	value, err := Evaluate(expr.Value, b.resolve)
	if err != nil {
		return Value{}, b.errorAt(EvalFailure, i, expr.Span, err, "")
	}
	return value, nil
}

func (b *booking) record(amount PostingAmount) {
	if single, ok := amount.Single(); ok {
		b.amounts[single.Commodity] = append(b.amounts[single.Commodity], single.Value)
	}
}

// residual returns the part of the written total that exceeds the tolerance
// inferred from the amounts written in the transaction.
func (b *booking) residual() Amount {
	var out Amount
	for _, c := range b.written.Commodities() {
		tolerance := b.l.config.Tolerance.Infer(b.amounts[c], b.l.session.Commodities.Name(c))
		if v := b.written.Get(c); v.Abs().GreaterThan(tolerance) {
			out = out.Add(NewAmount(c, v))
		}
	}
	return out
}

func (b *booking) postingsSpan() ast.Span {
	postings := b.txn.Postings
	return ast.Span{Start: postings[0].Span.Start, End: postings[len(postings)-1].Span.End}
}

func (b *booking) errorAt(kind BookKeepErrorKind, posting int, span ast.Span, cause error, detail string) *BookKeepError {
	return &BookKeepError{
		Kind:        kind,
		Posting:     posting,
		Second:      -1,
		Detail:      strings.TrimSpace(detail),
		Transaction: b.txn,
		Span:        span,
		Filename:    b.o.filename,
		Source:      b.o.source,
		Err:         cause,
	}
}
