package ledger

import (
	"errors"
	"fmt"

	"github.com/robinvdvleuten/ledger/ast"
)

// EvalErrorKind classifies evaluation failures. Each kind is itself an error
// so callers can match with errors.Is(err, ledger.DivideByZero).
type EvalErrorKind int

const (
	UnmatchingOperation EvalErrorKind = iota + 1
	UnmatchingCommodities
	UnknownCommodity
	DivideByZero
	NumberOverflow
	AmountRequired
	PostingAmountRequired
	SingleAmountRequired
)

func (k EvalErrorKind) Error() string {
	switch k {
	case UnmatchingOperation:
		return "operation is not defined for these operands"
	case UnmatchingCommodities:
		return "commodities do not match"
	case UnknownCommodity:
		return "unknown commodity"
	case DivideByZero:
		return "division by zero"
	case NumberOverflow:
		return "number overflow"
	case AmountRequired:
		return "amount required but got a number"
	case PostingAmountRequired:
		return "amount must have at most one commodity"
	case SingleAmountRequired:
		return "amount must have exactly one commodity"
	}
	return "evaluation failed"
}

// EvalError is returned when an expression cannot be evaluated.
type EvalError struct {
	Kind EvalErrorKind
	// Commodity is set for UnknownCommodity.
	Commodity string
}

func (e *EvalError) Error() string {
	if e.Kind == UnknownCommodity && e.Commodity != "" {
		return fmt.Sprintf("unknown commodity %q", e.Commodity)
	}
	return e.Kind.Error()
}

func (e *EvalError) Unwrap() error {
	return e.Kind
}

// BookKeepErrorKind classifies balancing failures.
type BookKeepErrorKind int

const (
	EvalFailure BookKeepErrorKind = iota + 1
	ComplexPostingAmount
	UndeduciblePostingAmount
	UnbalancedPostings
	BalanceMismatch
)

func (k BookKeepErrorKind) Error() string {
	switch k {
	case EvalFailure:
		return "failed to evaluate posting"
	case ComplexPostingAmount:
		return "posting amount must have at most one commodity"
	case UndeduciblePostingAmount:
		return "more than one posting without an amount"
	case UnbalancedPostings:
		return "transaction does not balance"
	case BalanceMismatch:
		return "balance assertion failed"
	}
	return "book keeping failed"
}

// BookKeepError is returned when a transaction cannot be balanced.
type BookKeepError struct {
	Kind BookKeepErrorKind

	// Posting is the zero-based index of the offending posting, or -1 when
	// the error concerns the whole transaction. For UndeduciblePostingAmount
	// Second is the index of the later elided posting.
	Posting int
	Second  int

	// Detail describes amounts involved, e.g. the residual of an unbalanced
	// transaction.
	Detail string

	Transaction *ast.Transaction
	Span        ast.Span
	Filename    string
	Source      string

	// Err is the evaluation error for EvalFailure.
	Err error
}

func (e *BookKeepError) Error() string {
	msg := e.Title()
	if e.Source != "" || e.Filename != "" {
		return fmt.Sprintf("%s: %s", e.GetPosition(), msg)
	}
	return msg
}

// Title is the message without location.
func (e *BookKeepError) Title() string {
	msg := e.Kind.Error()
	switch e.Kind {
	case EvalFailure:
		if e.Err != nil {
			msg = fmt.Sprintf("%s: %v", msg, e.Err)
		}
	case UndeduciblePostingAmount:
		msg = fmt.Sprintf("%s: postings %d and %d", msg, e.Posting, e.Second)
	}
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	return msg
}

func (e *BookKeepError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func (e *BookKeepError) GetPosition() ast.Position {
	return ast.LineCol(e.Filename, e.Source, e.Span.Start)
}

func (e *BookKeepError) GetSpan() ast.Span {
	return e.Span
}

func (e *BookKeepError) GetSource() string {
	return e.Source
}

// ErrNoApplyTag is returned for an "end apply tag" without a matching
// "apply tag".
var ErrNoApplyTag = errors.New("end apply tag without matching apply tag")

// DeclarationError is returned when a declaration conflicts with names
// already registered, or when a directive is out of place.
type DeclarationError struct {
	Name     string
	Span     ast.Span
	Filename string
	Source   string
	Err      error
}

func (e *DeclarationError) Error() string {
	if e.Source != "" || e.Filename != "" {
		return fmt.Sprintf("%s: %s", e.GetPosition(), e.Title())
	}
	return e.Title()
}

func (e *DeclarationError) Title() string {
	return fmt.Sprintf("invalid declaration of %s: %v", e.Name, e.Err)
}

func (e *DeclarationError) Unwrap() error {
	return e.Err
}

func (e *DeclarationError) GetPosition() ast.Position {
	return ast.LineCol(e.Filename, e.Source, e.Span.Start)
}

func (e *DeclarationError) GetSpan() ast.Span {
	return e.Span
}

func (e *DeclarationError) GetSource() string {
	return e.Source
}

// Warning is a non-fatal finding recorded while processing entries.
type Warning struct {
	Filename string
	Span     ast.Span
	Message  string
}

func (w Warning) String() string {
	if w.Filename == "" {
		return w.Message
	}
	return w.Filename + ": " + w.Message
}
