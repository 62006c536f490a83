package ledger

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/ledger/ast"
	"github.com/robinvdvleuten/ledger/intern"
)

const (
	// maxScale is the largest number of fractional digits a result keeps.
	maxScale = 28
	// maxCoefficientBits bounds the unscaled integer of every result.
	maxCoefficientBits = 96
)

// Value is the result of evaluating an expression: either a dimensionless
// number or an Amount.
type Value struct {
	number   decimal.Decimal
	amount   Amount
	isAmount bool
	// unit remembers the commodity of a single-commodity value even when
	// its magnitude is zero, e.g. "0 USD".
	unit intern.Commodity
}

// Number returns a dimensionless value.
func Number(d decimal.Decimal) Value {
	return Value{number: d}
}

// AmountValue returns a value holding a.
func AmountValue(a Amount) Value {
	v := Value{amount: a, isAmount: true}
	if a.Len() == 1 {
		v.unit = a.Commodities()[0]
	}
	return v
}

// IsNumber reports whether v is dimensionless.
func (v Value) IsNumber() bool {
	return !v.isAmount
}

// IsZero reports whether the magnitude of v is zero in every commodity.
func (v Value) IsZero() bool {
	if v.isAmount {
		return v.amount.IsZero()
	}
	return v.number.IsZero()
}

// Number returns the dimensionless value and whether v is one.
func (v Value) Number() (decimal.Decimal, bool) {
	return v.number, !v.isAmount
}

// Amount converts v into an Amount. A number converts only when it is zero.
func (v Value) Amount() (Amount, error) {
	if v.isAmount {
		return v.amount, nil
	}
	if v.number.IsZero() {
		return Amount{}, nil
	}
	return Amount{}, &EvalError{Kind: AmountRequired}
}

// PostingAmount converts v into an amount of at most one commodity.
func (v Value) PostingAmount() (PostingAmount, error) {
	a, err := v.Amount()
	if err != nil {
		return PostingAmount{}, err
	}
	p, ok := postingAmountOf(a)
	if !ok {
		return PostingAmount{}, &EvalError{Kind: PostingAmountRequired}
	}
	return p, nil
}

// SingleAmount converts v into an amount of exactly one commodity.
func (v Value) SingleAmount() (SingleAmount, error) {
	if v.isAmount {
		switch v.amount.Len() {
		case 1:
			c := v.amount.Commodities()[0]
			return SingleAmount{Commodity: c, Value: v.amount.Get(c)}, nil
		case 0:
			if !v.unit.IsZero() {
				return SingleAmount{Commodity: v.unit}, nil
			}
		}
	}
	return SingleAmount{}, &EvalError{Kind: SingleAmountRequired}
}

// CommodityResolver maps a commodity name found in an expression to its
// handle.
type CommodityResolver func(name string) (intern.Commodity, error)

// MutatingResolver registers unknown commodities in store.
func MutatingResolver(store *intern.Store[intern.CommodityKind]) CommodityResolver {
	return func(name string) (intern.Commodity, error) {
		return store.Ensure(name), nil
	}
}

// StrictResolver only accepts commodities already known to store.
func StrictResolver(store *intern.Store[intern.CommodityKind]) CommodityResolver {
	return func(name string) (intern.Commodity, error) {
		c, ok := store.Resolve(name)
		if !ok {
			return intern.Commodity{}, &EvalError{Kind: UnknownCommodity, Commodity: name}
		}
		return c, nil
	}
}

// Evaluate computes the value of expr.
func Evaluate(expr ast.Expr, resolve CommodityResolver) (Value, error) {
	switch e := expr.(type) {
	case *ast.AmountLit:
		if e.Commodity == "" {
			return Number(e.Value.Value), nil
		}
		c, err := resolve(e.Commodity)
		if err != nil {
			return Value{}, err
		}
		return Value{amount: NewAmount(c, e.Value.Value), isAmount: true, unit: c}, nil

	case *ast.Paren:
		return Evaluate(e.Expr, resolve)

	case *ast.Unary:
		v, err := Evaluate(e.Expr, resolve)
		if err != nil {
			return Value{}, err
		}
		return v.neg(), nil

	case *ast.Binary:
		lhs, err := Evaluate(e.LHS, resolve)
		if err != nil {
			return Value{}, err
		}
		rhs, err := Evaluate(e.RHS, resolve)
		if err != nil {
			return Value{}, err
		}
		switch e.Op {
		case ast.Add:
			return add(lhs, rhs)
		case ast.Sub:
			return add(lhs, rhs.neg())
		case ast.Mul:
			return mul(lhs, rhs)
		case ast.Div:
			return div(lhs, rhs)
		}
	}
	return Value{}, &EvalError{Kind: UnmatchingOperation}
}

func (v Value) neg() Value {
	if v.isAmount {
		v.amount = v.amount.Neg()
		return v
	}
	v.number = v.number.Neg()
	return v
}

func add(lhs, rhs Value) (Value, error) {
	switch {
	case !lhs.isAmount && !rhs.isAmount:
		n, err := fit(lhs.number.Add(rhs.number))
		return Number(n), err
	case lhs.isAmount && rhs.isAmount:
	case lhs.IsZero():
		return rhs, nil
	case rhs.IsZero():
		return lhs, nil
	default:
		return Value{}, &EvalError{Kind: UnmatchingOperation}
	}

	sum := lhs.amount.Add(rhs.amount)
	for _, c := range sum.Commodities() {
		if _, err := fit(sum.Get(c)); err != nil {
			return Value{}, err
		}
	}
	out := AmountValue(sum)
	if out.unit.IsZero() && lhs.unit == rhs.unit {
		out.unit = lhs.unit
	}
	return out, nil
}

func mul(lhs, rhs Value) (Value, error) {
	switch {
	case !lhs.isAmount && !rhs.isAmount:
		n, err := fit(lhs.number.Mul(rhs.number))
		return Number(n), err
	case lhs.isAmount && !rhs.isAmount:
		return scale(lhs, rhs.number)
	case !lhs.isAmount && rhs.isAmount:
		return scale(rhs, lhs.number)
	}
	return Value{}, &EvalError{Kind: UnmatchingOperation}
}

func div(lhs, rhs Value) (Value, error) {
	if rhs.isAmount {
		return Value{}, &EvalError{Kind: UnmatchingOperation}
	}
	if rhs.number.IsZero() {
		return Value{}, &EvalError{Kind: DivideByZero}
	}
	quo := func(d decimal.Decimal) (decimal.Decimal, error) {
		return fit(trimZeros(d.DivRound(rhs.number, maxScale)))
	}
	if !lhs.isAmount {
		n, err := quo(lhs.number)
		return Number(n), err
	}
	a, err := lhs.amount.mapValues(quo)
	if err != nil {
		return Value{}, err
	}
	return Value{amount: a, isAmount: true, unit: lhs.unit}, nil
}

func scale(v Value, factor decimal.Decimal) (Value, error) {
	a, err := v.amount.mapValues(func(d decimal.Decimal) (decimal.Decimal, error) {
		return fit(d.Mul(factor))
	})
	if err != nil {
		return Value{}, err
	}
	return Value{amount: a, isAmount: true, unit: v.unit}, nil
}

// fit rounds d to at most maxScale fractional digits, dropping further
// digits while the coefficient exceeds maxCoefficientBits. It fails with
// NumberOverflow when the integral part alone is too large.
func fit(d decimal.Decimal) (decimal.Decimal, error) {
	if -d.Exponent() > maxScale {
		d = d.Round(maxScale)
	}
	for d.Coefficient().BitLen() > maxCoefficientBits && d.Exponent() < 0 {
		d = d.Round(-d.Exponent() - 1)
	}
	if d.Coefficient().BitLen() > maxCoefficientBits {
		return decimal.Zero, &EvalError{Kind: NumberOverflow}
	}
	return d, nil
}

var ten = big.NewInt(10)

// trimZeros removes trailing fractional zeros left over by a division.
func trimZeros(d decimal.Decimal) decimal.Decimal {
	coef, exp := d.Coefficient(), d.Exponent()
	rem := new(big.Int)
	for exp < 0 {
		q, r := new(big.Int).QuoRem(coef, ten, rem)
		if r.Sign() != 0 {
			break
		}
		coef, exp = q, exp+1
	}
	return decimal.NewFromBigInt(coef, exp)
}
