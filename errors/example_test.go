package errors_test

import (
	"context"
	"fmt"

	"github.com/robinvdvleuten/ledger/errors"
	"github.com/robinvdvleuten/ledger/ledger"
	"github.com/robinvdvleuten/ledger/parser"
)

func ExampleTextFormatter() {
	_, err := parser.ParseString(context.Background(), "main.ledger", "; ok\n2024/13/1 Payee\n    Assets:Bank  1 CHF\n")

	fmt.Println(errors.NewTextFormatter().Format(err))
	// Output:
	// main.ledger:2:1: invalid date: month 13 out of range
	//
	//  2 | 2024/13/1 Payee
	//    | ^^^^^^^^^
}

func ExampleTextFormatter_multiline() {
	ctx := context.Background()
	file, _ := parser.ParseString(ctx, "main.ledger", "2024/1/1 Lunch\n    Expenses:Food  12.50 CHF\n    Assets:Cash  -12.00 CHF\n")
	err := ledger.New().ProcessFile(ctx, file)

	fmt.Println(errors.NewTextFormatter().Format(err))
	// Output:
	// main.ledger:2:5: transaction does not balance: residual 0.5 CHF
	//
	//  2 |     Expenses:Food  12.50 CHF
	//    |     ^^^^^^^^^^^^^^^^^^^^^^^^
	//  3 |     Assets:Cash  -12.00 CHF
	//    |     ^^^^^^^^^^^^^^^^^^^^^^^
}

func ExampleJSONFormatter() {
	ctx := context.Background()
	file, _ := parser.ParseString(ctx, "main.ledger", "2024/1/1 Split\n    Expenses:Food  10 CHF\n    Assets:Cash\n    Assets:Bank\n")
	err := ledger.New().ProcessFile(ctx, file)

	fmt.Println(errors.NewJSONFormatter().FormatAll([]error{err}))
	// Output:
	// [
	//   {
	//     "type": "*ledger.BookKeepError",
	//     "message": "more than one posting without an amount: postings 1 and 2",
	//     "position": {
	//       "filename": "main.ledger",
	//       "line": 3,
	//       "column": 5
	//     },
	//     "span": {
	//       "start": 45,
	//       "end": 72,
	//       "text": "Assets:Cash\n    Assets:Bank"
	//     },
	//     "details": {
	//       "kind": "more than one posting without an amount",
	//       "posting": 1,
	//       "second_posting": 2
	//     }
	//   }
	// ]
}
