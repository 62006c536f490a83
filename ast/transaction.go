package ast

// ClearState is the clearing flag of a transaction or posting.
type ClearState int

const (
	Uncleared ClearState = iota
	Cleared
	Pending
)

// String returns the flag as written in a ledger file, or "" when uncleared.
func (s ClearState) String() string {
	switch s {
	case Cleared:
		return "*"
	case Pending:
		return "!"
	}
	return ""
}

// Transaction moves amounts between accounts at a given date.
//
//	2024/03/01=2024/03/03 * (#1042) Migros ; :food:
//	    Expenses:Groceries      45.30 CHF
//	    Assets:Bank
//
// The grammar guarantees at least one posting.
type Transaction struct {
	Date          Date
	EffectiveDate *Date
	State         ClearState
	Code          string
	Payee         string
	Metadata      []Metadata
	Postings      []Tracked[*Posting]
}

func (*Transaction) entry()       {}
func (*Transaction) Kind() string { return "transaction" }

// Posting is one account line of a transaction.
type Posting struct {
	Account string
	State   ClearState
	// Amount is nil when the posting amount is elided.
	Amount *PostingAmount
	// Balance is the balance assertion after `=`, if any.
	Balance  *Tracked[Expr]
	Metadata []Metadata
}

// PostingAmount is the amount expression with its optional lot and price.
type PostingAmount struct {
	Amount   Tracked[Expr]
	Lot      Lot
	Exchange *Exchange
}

// Lot annotates the acquisition of a commodity.
//
//	10 AAPL {150.00 USD} [2024/01/02] (first buy)
type Lot struct {
	Price *LotPrice
	Date  *Date
	Note  string
}

// IsZero reports whether no lot annotation was given.
func (l Lot) IsZero() bool {
	return l.Price == nil && l.Date == nil && l.Note == ""
}

// LotPrice is the cost of a lot, `{per unit}` or `{{total}}`.
type LotPrice struct {
	Total bool
	Expr  Tracked[Expr]
}

// Exchange converts the posting amount into another commodity for balancing,
// `@ rate` or `@@ total`.
type Exchange struct {
	Total bool
	Expr  Tracked[Expr]
}
