package parser

import (
	"context"
	"testing"
)

func FuzzParser(f *testing.F) {
	seeds := []string{
		// Transactions
		"2024/1/1 Opening\n Assets:Bank  1000.00 CHF\n Equity:Opening\n",
		"2024-03-01=2024-03-03 * (#1042) Migros ; :food:\n    Expenses:Groceries  45.30 CHF\n    Assets:Bank\n",
		"2024/1/2 Reconcile\n    Assets:Bank  = 500 CHF\n    Equity:Adjustment\n",
		"2024/1/3 Buy\n    Assets:Broker  10 AAPL {150 USD} [2024/1/3] (first) @ 151 USD\n    Assets:Cash\n",
		"2024/1/4 Expr\n    Expenses:Food  (1,000 JPY / 3 + -(4 JPY))\n    Assets:Cash\n",

		// Directives
		"account Assets:Bank\n    alias bank\n    note main account\n    ; :main:\n",
		"commodity CHF\n    alias Fr\n    format 1,000.00 CHF\n",
		"apply tag trip\n\nend apply tag\n",
		"include other.ledger\n",

		// Comments
		"; comment\n# hash\n% percent\n| pipe\n* star\n",

		// Edge cases
		"",
		"  \n\n  \n",
		"2024/13/1 Bad\n    A  1 B\n",
		"2024/1/1 x\n    A  (((((1\n",
	}

	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, data string) {
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("Parser panicked on input %q: %v", data, r)
			}
		}()

		file, err := ParseString(context.Background(), "fuzz.ledger", data)
		if err == nil && file == nil {
			t.Error("ParseString returned nil file with nil error")
		}
		if err == nil {
			for _, entry := range file.Entries {
				if entry.Span.Start < 0 || entry.Span.End > len(data) || entry.Span.Start > entry.Span.End {
					t.Errorf("entry span %v out of range for input of length %d", entry.Span, len(data))
				}
			}
		}
	})
}
