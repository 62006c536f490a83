package ast

import "strings"

// Expr is a node of a value expression.
//
// A posting amount, lot price, exchange rate or balance assertion is a value
// expression: either a single amount literal or a parenthesized arithmetic
// expression.
//
//	100.00 CHF
//	(1,200 JPY / 3)
//	(-(10 USD) + 2.50 USD)
type Expr interface {
	String() string
	expr()
}

// BinaryOp is an arithmetic operator.
type BinaryOp int

const (
	Add BinaryOp = iota
	Sub
	Mul
	Div
)

func (op BinaryOp) String() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	}
	return "?"
}

// UnaryOp is a prefix operator.
type UnaryOp int

const (
	Negate UnaryOp = iota
)

func (op UnaryOp) String() string {
	return "-"
}

// AmountLit is a number optionally followed by a commodity.
// An empty Commodity denotes a dimensionless number.
type AmountLit struct {
	Value     PrettyDecimal
	Commodity string
}

func (a *AmountLit) expr() {}

func (a *AmountLit) String() string {
	if a.Commodity == "" {
		return a.Value.String()
	}
	return a.Value.String() + " " + a.Commodity
}

// Paren is a parenthesized expression.
type Paren struct {
	Expr Expr
}

func (p *Paren) expr() {}

func (p *Paren) String() string {
	return "(" + p.Expr.String() + ")"
}

// Unary applies a prefix operator.
type Unary struct {
	Op   UnaryOp
	Expr Expr
}

func (u *Unary) expr() {}

func (u *Unary) String() string {
	if _, ok := u.Expr.(*AmountLit); ok {
		// "-5 CHF" would read back as a negative literal.
		return u.Op.String() + " " + u.Expr.String()
	}
	return u.Op.String() + u.Expr.String()
}

// Binary applies an infix operator.
type Binary struct {
	Op  BinaryOp
	LHS Expr
	RHS Expr
}

func (b *Binary) expr() {}

func (b *Binary) String() string {
	var sb strings.Builder
	sb.WriteString(b.LHS.String())
	sb.WriteByte(' ')
	sb.WriteString(b.Op.String())
	sb.WriteByte(' ')
	sb.WriteString(b.RHS.String())
	return sb.String()
}

// ExprEqual reports whether two expressions have the same shape, numbers and
// commodities. Number formatting is ignored.
func ExprEqual(a, b Expr) bool {
	switch x := a.(type) {
	case *AmountLit:
		y, ok := b.(*AmountLit)
		return ok && x.Commodity == y.Commodity && x.Value.Equal(y.Value)
	case *Paren:
		y, ok := b.(*Paren)
		return ok && ExprEqual(x.Expr, y.Expr)
	case *Unary:
		y, ok := b.(*Unary)
		return ok && x.Op == y.Op && ExprEqual(x.Expr, y.Expr)
	case *Binary:
		y, ok := b.(*Binary)
		return ok && x.Op == y.Op && ExprEqual(x.LHS, y.LHS) && ExprEqual(x.RHS, y.RHS)
	case nil:
		return b == nil
	}
	return false
}
