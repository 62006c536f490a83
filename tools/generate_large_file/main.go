// Large Ledger File Generator
//
// This tool generates a large ledger file for performance testing and profiling.
// It creates realistic transactions with various features to stress-test the
// parser, the balancing engine and the formatter. Every generated transaction
// balances, so `ledger check` passes on the output.
//
// Usage:
//
//	go run main.go > large.ledger
//	go run main.go 20000000 > large.ledger  # Specify target size in bytes
package main

import (
	"bufio"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const (
	defaultTargetSize = 10 * 1024 * 1024 // 10MB
)

var (
	accounts = []string{
		"Assets:Bank:Checking",
		"Assets:Bank:Savings",
		"Assets:Brokerage:Cash",
		"Liabilities:CreditCard:Visa",
		"Income:Salary",
		"Income:Investments:Dividends",
		"Expenses:Food:Groceries",
		"Expenses:Food:Restaurant",
		"Expenses:Housing:Rent",
		"Expenses:Housing:Utilities",
		"Expenses:Transport:Gas",
		"Expenses:Shopping:Electronics",
		"Expenses:Entertainment:Concerts",
		"Expenses:Healthcare:Dental",
		"Expenses:Commissions",
		"Equity:Opening-Balances",
		"Equity:Adjustment",
	}

	// aliases are declared for some accounts and used by generated postings.
	aliases = map[string]string{
		"Checking": "Assets:Bank:Checking",
		"Savings":  "Assets:Bank:Savings",
		"Visa":     "Liabilities:CreditCard:Visa",
	}

	payees = []string{
		"Whole Foods", "Safeway", "Trader Joe's", "Costco",
		"Shell Gas", "Chevron", "BART", "Uber",
		"Landlord", "PG&E", "Comcast", "AT&T",
		"Amazon", "Target", "Best Buy", "Apple Store",
		"Netflix", "Spotify", "AMC Theaters",
		"Employer Inc", "Fidelity", "Vanguard",
	}

	tags = []string{
		"personal", "business", "vacation", "tax-deductible",
		"reimbursable", "investment", "savings",
	}

	currencies = []string{"CHF", "EUR", "GBP", "USD"}
	stocks     = []string{"AAPL", "MSFT", "GOOGL", "TSLA", "AMZN", "VTI", "VXUS"}
)

func main() {
	targetSize := defaultTargetSize
	if len(os.Args) > 1 {
		if size, err := strconv.Atoi(os.Args[1]); err == nil {
			targetSize = size
		}
	}

	w := bufio.NewWriter(os.Stdout)
	g := newGenerator(rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)))
	if err := g.generate(w, targetSize); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := w.Flush(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "\nGenerated %d bytes with %d transactions\n", g.bytes, g.transactions)
}

// generator writes random but balanced entries.
type generator struct {
	rand *rand.Rand

	bytes        int
	transactions int
}

func newGenerator(r *rand.Rand) *generator {
	return &generator{rand: r}
}

// generate writes entries to w until at least targetSize bytes are written.
func (g *generator) generate(w io.Writer, targetSize int) error {
	if err := g.write(w, header()); err != nil {
		return err
	}

	date := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	for g.bytes < targetSize {
		var entry string
		transaction := true

		// Mix different kinds of entries
		switch g.rand.IntN(10) {
		case 0, 1: // 20% - Simple transaction
			entry = g.simpleTransaction(date)
		case 2, 3: // 20% - Transaction with metadata
			entry = g.transactionWithMetadata(date)
		case 4, 5: // 20% - Investment transaction with lot price
			entry = g.investmentTransaction(date)
		case 6: // 10% - Currency exchange
			entry = g.exchangeTransaction(date)
		case 7: // 10% - Split transaction inside an apply tag block
			entry = g.taggedTransaction(date)
		case 8: // 10% - Balance assertion
			entry = g.balanceAssertion(date)
		case 9: // 10% - Comment
			entry = fmt.Sprintf("; reviewed %s\n\n", formatDate(date))
			transaction = false
		}

		if err := g.write(w, entry); err != nil {
			return err
		}
		if transaction {
			g.transactions++
		}

		// Advance date by 1-5 days
		date = date.AddDate(0, 0, g.rand.IntN(5)+1)
	}

	return nil
}

func (g *generator) write(w io.Writer, s string) error {
	n, err := io.WriteString(w, s)
	g.bytes += n
	return err
}

func header() string {
	s := "; Large ledger file for performance testing\n\n"
	for _, c := range currencies {
		s += fmt.Sprintf("commodity %s\n    format 1,000.00 %s\n\n", c, c)
	}
	names := maps.Keys(aliases)
	slices.Sort(names)
	for _, alias := range names {
		s += fmt.Sprintf("account %s\n    alias %s\n    note generated\n\n", aliases[alias], alias)
	}
	return s
}

func (g *generator) pick(values []string) string {
	return values[g.rand.IntN(len(values))]
}

func (g *generator) account() string {
	return g.pick(accounts)
}

func (g *generator) amount(lo, hi int64) decimal.Decimal {
	cents := lo*100 + g.rand.Int64N((hi-lo)*100)
	return decimal.New(cents, -2)
}

func formatDate(t time.Time) string {
	return t.Format("2006/01/02")
}

func (g *generator) simpleTransaction(t time.Time) string {
	return fmt.Sprintf("%s * %s\n    %s  %s USD\n    %s\n\n",
		formatDate(t), g.pick(payees), g.account(), g.amount(10, 500).StringFixed(2), g.account())
}

func (g *generator) transactionWithMetadata(t time.Time) string {
	amount := g.amount(50, 1000)
	return fmt.Sprintf(`%s ! (%d) %s
    ; invoice: INV-%d
    ; :shopping:
    Expenses:Shopping:Electronics  %s USD
        ; warranty:: (2 * 12)
    Visa  %s USD

`, formatDate(t), g.rand.IntN(10000), g.pick(payees), g.rand.IntN(10000),
		amount.StringFixed(2), amount.Neg().StringFixed(2))
}

func (g *generator) investmentTransaction(t time.Time) string {
	stock := g.pick(stocks)
	shares := g.rand.IntN(50) + 1
	price := g.amount(50, 500)
	commission := decimal.RequireFromString("9.99")

	return fmt.Sprintf(`%s * Buy %s
    Assets:Brokerage:%s  %d %s {%s USD} [%s]
    Expenses:Commissions  %s USD
    Assets:Brokerage:Cash

`, formatDate(t), stock, stock, shares, stock, price.StringFixed(2), formatDate(t), commission.StringFixed(2))
}

func (g *generator) exchangeTransaction(t time.Time) string {
	amount := g.amount(100, 2000)
	currency := currencies[g.rand.IntN(len(currencies)-1)]
	rate := g.amount(1, 2)

	return fmt.Sprintf(`%s * Currency exchange
    Checking  -%s USD @ %s %s
    Savings

`, formatDate(t), amount.StringFixed(2), rate.StringFixed(2), currency)
}

func (g *generator) taggedTransaction(t time.Time) string {
	amounts := []decimal.Decimal{
		g.amount(100, 500),
		g.amount(50, 200),
		g.amount(20, 100),
	}

	return fmt.Sprintf(`apply tag %s

%s * %s
    Expenses:Food:Restaurant  %s USD
    Expenses:Food:Groceries  ((%s USD + %s USD) / 2)
    Expenses:Transport:Gas  %s USD
    Checking

end apply tag

`, g.pick(tags), formatDate(t), g.pick(payees),
		amounts[0].StringFixed(2), amounts[1].StringFixed(2), amounts[1].StringFixed(2), amounts[2].StringFixed(2))
}

func (g *generator) balanceAssertion(t time.Time) string {
	balance := g.amount(1000, 50000)

	return fmt.Sprintf("%s Reconcile\n    Assets:Cash  = %s USD\n    Equity:Adjustment\n\n",
		formatDate(t), balance.StringFixed(2))
}
