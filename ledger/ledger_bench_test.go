package ledger

import (
	"fmt"
	"strings"
	"testing"

	"github.com/robinvdvleuten/ledger/parser"
)

func BenchmarkProcessTransaction(b *testing.B) {
	input := `
2021/01/02 * Simple transaction
    Assets:Cash      -50.00 USD
    Expenses:Food     50.00 USD
`

	file, err := parser.ParseString(b.Context(), "bench.ledger", input)
	if err != nil {
		b.Fatal(err)
	}

	for b.Loop() {
		l := New()
		_ = l.ProcessFile(b.Context(), file)
	}
}

func BenchmarkProcessTransactionWithLotPrice(b *testing.B) {
	input := `
2021/01/02 * Buy stock
    Assets:Stock             10 AAPL {100.00 USD}
    Expenses:Commission       5.00 USD
    Assets:Cash
`

	file, err := parser.ParseString(b.Context(), "bench.ledger", input)
	if err != nil {
		b.Fatal(err)
	}

	for b.Loop() {
		l := New()
		_ = l.ProcessFile(b.Context(), file)
	}
}

func BenchmarkProcessLedger(b *testing.B) {
	for _, size := range []int{100, 1000} {
		b.Run(fmt.Sprintf("%dTransactions", size), func(b *testing.B) {
			var sb strings.Builder
			sb.WriteString("account Assets:Bank:Checking\n    alias checking\n\n")
			for i := range size {
				fmt.Fprintf(&sb, "2024/%d/%d Grocery\n    Expenses:Food  %d.25 CHF\n    checking\n\n", i%12+1, i%28+1, i%90+10)
				if i%10 == 9 {
					sb.WriteString("2024/12/31 Reconcile\n    checking  = 0 CHF\n    Equity:Adjustment\n\n")
				}
			}

			file, err := parser.ParseString(b.Context(), "bench.ledger", sb.String())
			if err != nil {
				b.Fatal(err)
			}
			b.ReportAllocs()

			for b.Loop() {
				l := New()
				if err := l.ProcessFile(b.Context(), file); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
