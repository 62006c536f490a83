package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/ledger/ast"
	"github.com/robinvdvleuten/ledger/intern"
	"github.com/robinvdvleuten/ledger/parser"
)

func parse(t *testing.T, source string) *parser.File {
	t.Helper()
	file, err := parser.ParseString(context.Background(), "test.ledger", source)
	assert.NoError(t, err)
	return file
}

func process(t *testing.T, source string, opts ...Option) (*Ledger, error) {
	t.Helper()
	l := New(opts...)
	return l, l.ProcessFile(context.Background(), parse(t, source))
}

func assertBalance(t *testing.T, l *Ledger, account, want string) {
	t.Helper()
	got, _ := l.Balance(account)
	assert.Equal(t, want, l.FormatAmount(got), "balance of %s", account)
}

func assertPosting(t *testing.T, l *Ledger, p BookedPosting, want string) {
	t.Helper()
	assert.Equal(t, want, p.Amount.Format(l.Session().Commodities))
}

func bookKeepError(t *testing.T, err error) *BookKeepError {
	t.Helper()
	var bkErr *BookKeepError
	assert.True(t, errors.As(err, &bkErr), "expected BookKeepError, got %v", err)
	return bkErr
}

func TestOpeningBalanceIsDeduced(t *testing.T) {
	l, err := process(t, "2024/1/1 Opening\n Assets:Bank 1000.00 CHF\n Equity:Opening\n")
	assert.NoError(t, err)

	txns := l.Transactions()
	assert.Equal(t, 1, len(txns))

	elided := txns[0].Postings[1]
	assert.True(t, elided.Deduced)
	single, ok := elided.Amount.Single()
	assert.True(t, ok)
	assert.Equal(t, "-1000.00", single.Value.StringFixed(2))
	assert.Equal(t, "CHF", l.Session().Commodities.Name(single.Commodity))

	assertBalance(t, l, "Assets:Bank", "1000 CHF")
	assertBalance(t, l, "Equity:Opening", "-1000 CHF")
}

func TestBalanceAssertionDerivesAmount(t *testing.T) {
	l, err := process(t, `2024/1/1 Salary
    Assets:Bank  300 CHF
    Income:Salary

2024/1/31 Reconcile
    Assets:Bank  = 500 CHF
    Equity:Adjustment
`)
	assert.NoError(t, err)

	reconcile := l.Transactions()[1]
	assertPosting(t, l, reconcile.Postings[0], "200 CHF")
	assert.True(t, reconcile.Postings[0].Deduced)
	assertPosting(t, l, reconcile.Postings[1], "-200 CHF")

	assertBalance(t, l, "Assets:Bank", "500 CHF")
	assertBalance(t, l, "Equity:Adjustment", "-200 CHF")
}

func TestZeroBalanceAssertionNegatesBalance(t *testing.T) {
	l, err := process(t, `2024/1/1 Buy
    Assets:Broker  10 AAPL
    Equity:Opening

2024/2/1 Close
    Assets:Broker  = 0
    Equity:Opening
`)
	assert.NoError(t, err)

	closing := l.Transactions()[1]
	assertPosting(t, l, closing.Postings[0], "-10 AAPL")
	assertBalance(t, l, "Assets:Broker", "0")
	assertBalance(t, l, "Equity:Opening", "0")
}

func TestBalanceAssertionWithAmount(t *testing.T) {
	source := `2024/1/1 Deposit
    Assets:Bank  100 CHF
    Equity:Opening

2024/1/2 Deposit
    Assets:Bank  50 CHF = %s
    Income:Gift
`
	t.Run("matches", func(t *testing.T) {
		l, err := process(t, fmt.Sprintf(source, "150 CHF"))
		assert.NoError(t, err)
		assertBalance(t, l, "Assets:Bank", "150 CHF")
	})

	t.Run("mismatch", func(t *testing.T) {
		l, err := process(t, fmt.Sprintf(source, "140 CHF"))
		bkErr := bookKeepError(t, err)
		assert.Equal(t, BalanceMismatch, bkErr.Kind)
		assert.Equal(t, 0, bkErr.Posting)
		assert.Equal(t, "expected 140 CHF but got 150 CHF", bkErr.Detail)
		assert.Equal(t, "140 CHF", bkErr.Span.Text(bkErr.Source))
		assertBalance(t, l, "Assets:Bank", "100 CHF")
	})
}

func TestUndeduciblePostingAmount(t *testing.T) {
	_, err := process(t, `2024/1/1 Split
    Expenses:Food  10 CHF
    Assets:Cash
    Assets:Bank
`)
	bkErr := bookKeepError(t, err)
	assert.Equal(t, UndeduciblePostingAmount, bkErr.Kind)
	assert.Equal(t, 1, bkErr.Posting)
	assert.Equal(t, 2, bkErr.Second)
	assert.True(t, errors.Is(err, UndeduciblePostingAmount))
	assert.Equal(t, "test.ledger:3:5: more than one posting without an amount: postings 1 and 2", err.Error())
	assert.Equal(t, "Assets:Cash\n    Assets:Bank", bkErr.Span.Text(bkErr.Source))
}

func TestComplexPostingAmount(t *testing.T) {
	tests := []struct {
		name    string
		posting string
	}{
		{name: "amount with assertion", posting: "Assets:Wallet  (100 USD + 50 EUR) = 100 USD"},
		{name: "complex assertion", posting: "Assets:Wallet  = (100 USD + 50 EUR)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := process(t, "2024/1/1 Travel\n    "+tt.posting+"\n    Equity:Opening\n")
			bkErr := bookKeepError(t, err)
			assert.Equal(t, ComplexPostingAmount, bkErr.Kind)
			assert.Equal(t, 0, bkErr.Posting)
			assert.True(t, errors.Is(err, ComplexPostingAmount))
		})
	}
}

func TestElidedPostingWithSeveralCommodities(t *testing.T) {
	_, err := process(t, `2024/1/1 Travel
    Assets:Wallet  100 USD
    Assets:Purse  50 EUR
    Equity:Opening
`)
	bkErr := bookKeepError(t, err)
	assert.Equal(t, ComplexPostingAmount, bkErr.Kind)
	assert.Equal(t, 2, bkErr.Posting)
}

func TestUnbalancedPostings(t *testing.T) {
	source := `2024/1/1 Lunch
    Expenses:Food  12.50 CHF
    Assets:Cash  -12.00 CHF
`
	t.Run("strict", func(t *testing.T) {
		l, err := process(t, source)
		bkErr := bookKeepError(t, err)
		assert.Equal(t, UnbalancedPostings, bkErr.Kind)
		assert.Equal(t, -1, bkErr.Posting)
		assert.Equal(t, "residual 0.5 CHF", bkErr.Detail)
		assert.Equal(t, 0, len(l.Transactions()))
		_, ok := l.Balance("Expenses:Food")
		assert.False(t, ok)
	})

	t.Run("lenient", func(t *testing.T) {
		l, err := process(t, source, WithPolicy(Lenient))
		assert.NoError(t, err)
		assert.Equal(t, 1, len(l.Transactions()))
		assert.Equal(t, 1, len(l.Warnings()))
		assert.Equal(t, "test.ledger: transaction does not balance: residual 0.5 CHF", l.Warnings()[0].String())
		assertBalance(t, l, "Expenses:Food", "12.5 CHF")
	})

	t.Run("within tolerance", func(t *testing.T) {
		_, err := process(t, `2024/1/1 Rounding
    Assets:Broker  3 AAPL @ 3.3333 USD
    Assets:Cash  -10.00 USD
`)
		assert.NoError(t, err)
	})
}

func TestBalanceAssertionDoesNotExemptWrittenPostings(t *testing.T) {
	source := `2024/1/1 Transfer
    Assets:A  10 USD
    Assets:B  5 USD
    Assets:C  = 100 USD
`
	t.Run("strict", func(t *testing.T) {
		l, err := process(t, source)
		bkErr := bookKeepError(t, err)
		assert.Equal(t, UnbalancedPostings, bkErr.Kind)
		assert.Equal(t, "residual 15 USD", bkErr.Detail)
		assert.Equal(t, 0, len(l.Transactions()))
		_, ok := l.Balance("Assets:C")
		assert.False(t, ok)
	})

	t.Run("lenient", func(t *testing.T) {
		l, err := process(t, source, WithPolicy(Lenient))
		assert.NoError(t, err)
		assert.Equal(t, 1, len(l.Warnings()))
		assert.Equal(t, "test.ledger: transaction does not balance: residual 15 USD", l.Warnings()[0].String())
		assertBalance(t, l, "Assets:C", "100 USD")
	})

	t.Run("balanced", func(t *testing.T) {
		l, err := process(t, `2024/1/1 Transfer
    Assets:A  10 USD
    Assets:B  -10 USD
    Assets:C  = 100 USD
`)
		assert.NoError(t, err)
		assert.Equal(t, 0, len(l.Warnings()))
		assertPosting(t, l, l.Transactions()[0].Postings[2], "100 USD")
		assertBalance(t, l, "Assets:C", "100 USD")
	})

	t.Run("elided posting offsets the assertion", func(t *testing.T) {
		l, err := process(t, `2024/1/1 Transfer
    Assets:A  10 USD
    Assets:C  = 100 USD
    Equity:Adjustment
`)
		assert.NoError(t, err)
		assertBalance(t, l, "Equity:Adjustment", "-110 USD")
	})
}

func TestFailedTransactionLeavesBalancesUntouched(t *testing.T) {
	l := New()
	ctx := context.Background()

	assert.NoError(t, l.ProcessFile(ctx, parse(t, "2024/1/1 Opening\n    Assets:Bank  100 CHF\n    Equity:Opening\n")))

	err := l.ProcessFile(ctx, parse(t, `2024/1/2 Broken
    Assets:Bank  50 CHF
    Expenses:Food  (10 CHF / 0)
    Equity:Opening
`))
	bkErr := bookKeepError(t, err)
	assert.Equal(t, EvalFailure, bkErr.Kind)
	assert.True(t, errors.Is(err, DivideByZero))

	assertBalance(t, l, "Assets:Bank", "100 CHF")
	assert.Equal(t, 1, len(l.Transactions()))
}

func TestWeightConversion(t *testing.T) {
	tests := []struct {
		name    string
		posting string
		want    string
	}{
		{name: "exchange rate", posting: "Assets:Broker  10 AAPL @ 150 USD", want: "-1500 USD"},
		{name: "exchange total", posting: "Assets:Broker  10 AAPL @@ 1500 USD", want: "-1500 USD"},
		{name: "lot price", posting: "Assets:Broker  10 AAPL {150 USD}", want: "-1500 USD"},
		{name: "lot total", posting: "Assets:Broker  -10 AAPL {{1500 USD}}", want: "1500 USD"},
		{name: "lot price wins over exchange", posting: "Assets:Broker  10 AAPL {100 USD} @ 150 USD", want: "-1000 USD"},
		{name: "price expression", posting: "Assets:Broker  2 AAPL @ (300 USD / 2)", want: "-300 USD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := process(t, "2024/1/1 Buy\n    "+tt.posting+"\n    Assets:Cash\n")
			assert.NoError(t, err)
			assertPosting(t, l, l.Transactions()[0].Postings[1], tt.want)
		})
	}
}

func TestPriceInSameCommodity(t *testing.T) {
	_, err := process(t, "2024/1/1 Odd\n    Assets:Cash  10 USD @ 1 USD\n    Equity:Opening\n")
	bkErr := bookKeepError(t, err)
	assert.Equal(t, EvalFailure, bkErr.Kind)
	assert.True(t, errors.Is(err, UnmatchingCommodities))
}

func TestDeclarationsAndAliases(t *testing.T) {
	l, err := process(t, `account Assets:Bank
    alias bank

commodity CHF
    alias Fr

2024/1/1 Opening
    bank  100 Fr
    Equity:Opening
`)
	assert.NoError(t, err)

	assertBalance(t, l, "Assets:Bank", "100 CHF")
	assertBalance(t, l, "bank", "100 CHF")
	assert.Equal(t, []string{"Assets:Bank", "Equity:Opening"}, l.Accounts())
	assert.Equal(t, []string{"CHF"}, l.Commodities())
}

func TestDeclarationErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   error
	}{
		{
			name:   "alias of two accounts",
			source: "account Assets:Bank\n    alias bank\n\naccount Assets:Savings\n    alias bank\n",
			want:   intern.ErrAlreadyAlias,
		},
		{
			name:   "alias shadows account",
			source: "account Assets:Bank\n\naccount Assets:Savings\n    alias Assets:Bank\n",
			want:   intern.ErrAlreadyCanonical,
		},
		{
			name:   "declare an alias",
			source: "commodity CHF\n    alias Fr\n\ncommodity Fr\n",
			want:   intern.ErrAlreadyAlias,
		},
		{
			name:   "end apply tag without apply",
			source: "end apply tag\n",
			want:   ErrNoApplyTag,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := process(t, tt.source)
			var declErr *DeclarationError
			assert.True(t, errors.As(err, &declErr), "expected DeclarationError, got %v", err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Equal(t, "test.ledger", declErr.GetPosition().Filename)
		})
	}
}

func TestApplyTagMetadata(t *testing.T) {
	l, err := process(t, `apply tag trip

apply tag project: alpha

2024/1/1 Hotel ; :travel:
    Expenses:Hotel  200 CHF
    Assets:Bank

end apply tag

2024/1/2 Train
    Expenses:Transport  50 CHF
    Assets:Bank

end apply tag

2024/1/3 Groceries
    Expenses:Food  20 CHF
    Assets:Bank
`)
	assert.NoError(t, err)

	var got [][]string
	for _, txn := range l.Transactions() {
		var items []string
		for _, m := range txn.Metadata {
			items = append(items, m.String())
		}
		got = append(got, items)
	}
	assert.Equal(t, [][]string{
		{":travel:", ":trip:", "project: alpha"},
		{":trip:"},
		nil,
	}, got)
}

func TestIncludeIsNotExpanded(t *testing.T) {
	l, err := process(t, "include other.ledger\n")
	assert.NoError(t, err)
	assert.Equal(t, 1, len(l.Warnings()))
	assert.Equal(t, `include "other.ledger" was not expanded`, l.Warnings()[0].Message)
}

func TestStrictCommodities(t *testing.T) {
	source := "commodity CHF\n\n2024/1/1 Opening\n    Assets:Bank  100 %s\n    Equity:Opening\n"

	_, err := process(t, fmt.Sprintf(source, "CHF"), WithStrictCommodities(true))
	assert.NoError(t, err)

	_, err = process(t, fmt.Sprintf(source, "EUR"), WithStrictCommodities(true))
	bkErr := bookKeepError(t, err)
	assert.Equal(t, EvalFailure, bkErr.Kind)
	assert.True(t, errors.Is(err, UnknownCommodity))
	assert.Equal(t, "100 EUR", bkErr.Span.Text(bkErr.Source))
}

func TestProcessTransaction(t *testing.T) {
	l := New()
	ctx := context.Background()
	file := parse(t, "2024/1/1 Lunch\n    Expenses:Food  (12 CHF * 2)\n    Assets:Cash\n")

	booked, err := l.ProcessTransaction(ctx, file.Entries[0].Value.(*ast.Transaction))
	assert.NoError(t, err)
	assertPosting(t, l, booked.Postings[0], "24 CHF")
	assertPosting(t, l, booked.Postings[1], "-24 CHF")

	// Errors without a file carry no location.
	txn := &ast.Transaction{Postings: []ast.Tracked[*ast.Posting]{
		{Value: &ast.Posting{Account: "Assets:Cash"}},
		{Value: &ast.Posting{Account: "Assets:Bank"}},
	}}
	_, err = l.ProcessTransaction(ctx, txn)
	assert.EqualError(t, err, "more than one posting without an amount: postings 0 and 1")
}

func TestProcessHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := New()
	err := l.Process(ctx, parse(t, "2024/1/1 Lunch\n    Expenses:Food  12 CHF\n    Assets:Cash\n").Entries)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 0, len(l.Transactions()))
}

// Every transaction with an elided posting sums to zero per commodity once
// its amount is deduced.
func TestElidedPostingBalancesTransaction(t *testing.T) {
	l, err := process(t, `2024/1/1 Opening
    Assets:Bank  1,000.00 CHF
    Assets:Wallet  (20 CHF + 5.55 CHF)
    Equity:Opening

2024/1/2 Shopping
    Expenses:Food  (3 * 4.20 CHF)
    Expenses:Books  (60 CHF / 3)
    Assets:Bank

2024/1/3 Exchange
    Assets:Wallet  -100 CHF @ 1.10 USD
    Assets:Travel

2024/1/4 Refund
    Assets:Bank
    Expenses:Food  (-(2.10 CHF))
`)
	assert.NoError(t, err)

	for _, txn := range l.Transactions() {
		var sum Amount
		for _, p := range txn.Postings {
			sum = sum.Add(p.Weight.Amount())
		}
		assert.True(t, sum.IsZero(), "%s does not balance: %s", txn.Transaction.Payee, l.FormatAmount(sum))
	}

	assertBalance(t, l, "Assets:Travel", "110 USD")
	assertBalance(t, l, "Expenses:Food", "10.5 CHF")
}

func TestToleranceInfer(t *testing.T) {
	tests := []struct {
		name      string
		amounts   []string
		commodity string
		config    *ToleranceConfig
		want      string
	}{
		{name: "two decimals", amounts: []string{"24.45", "100.00"}, commodity: "USD", want: "0.005"},
		{name: "five decimals", amounts: []string{"10.22626", "5.12345"}, commodity: "RGAGX", want: "0.000005"},
		{name: "mixed precision uses smallest", amounts: []string{"100.00", "50.123"}, commodity: "USD", want: "0.0005"},
		{name: "zeros are skipped", amounts: []string{"0.000", "1.5"}, commodity: "USD", want: "0.05"},
		{name: "no amounts uses default", commodity: "USD", want: "0.005"},
		{
			name:      "custom multiplier",
			amounts:   []string{"100.00"},
			commodity: "USD",
			config: func() *ToleranceConfig {
				c := NewToleranceConfig()
				c.SetMultiplier(decimal.RequireFromString("0.6"))
				return c
			}(),
			want: "0.006",
		},
		{
			name:      "commodity default",
			commodity: "JPY",
			config: func() *ToleranceConfig {
				c := NewToleranceConfig()
				c.SetDefault("JPY", decimal.RequireFromString("1"))
				return c
			}(),
			want: "1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := tt.config
			if config == nil {
				config = NewToleranceConfig()
			}
			amounts := make([]decimal.Decimal, len(tt.amounts))
			for i, a := range tt.amounts {
				amounts[i] = decimal.RequireFromString(a)
			}
			got := config.Infer(amounts, tt.commodity)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "want %s, got %s", tt.want, got)
		})
	}
}

func TestParseBalancePolicy(t *testing.T) {
	p, err := ParseBalancePolicy("Lenient")
	assert.NoError(t, err)
	assert.Equal(t, Lenient, p)

	p, err = ParseBalancePolicy("")
	assert.NoError(t, err)
	assert.Equal(t, Strict, p)

	_, err = ParseBalancePolicy("loose")
	assert.EqualError(t, err, `invalid balance policy "loose", expected strict or lenient`)
}
