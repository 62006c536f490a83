package parser

import (
	"github.com/robinvdvleuten/ledger/ast"
)

// Value expressions.
//
// A value expression is either a single amount or a parenthesized arithmetic
// expression. Operators are only allowed inside parentheses.
//
// Grammar:
//
//	value_expr → paren_expr | amount
//	paren_expr → '(' add_expr ')'
//	add_expr   → mul_expr (('+' | '-') mul_expr)*
//	mul_expr   → unary (('*' | '/') unary)*
//	unary      → '-' unary | primary
//	primary    → paren_expr | amount
//	amount     → DECIMAL COMMODITY?
//
// Examples:
//
//	100.00 CHF
//	(2 * 12.50 USD)
//	(1,000 JPY / 3 + -(4 JPY))
//
// A '-' directly followed by a digit belongs to the number.

const maxExprDepth = 128

// ParseValueExpr parses a complete value expression.
func ParseValueExpr(input string) (ast.Tracked[ast.Expr], error) {
	p := New("", input)
	p.skipSpaces()
	expr, err := p.parseValueExpr()
	if err != nil {
		return ast.Tracked[ast.Expr]{}, err
	}
	p.skipSpaces()
	if !p.isAtEnd() {
		return ast.Tracked[ast.Expr]{}, p.errorAt(p.pos, len(p.src), "value expression", "unexpected trailing characters")
	}
	return expr, nil
}

func (p *Parser) parseValueExpr() (ast.Tracked[ast.Expr], error) {
	start := p.pos

	var expr ast.Expr
	var err error
	if p.peek() == '(' {
		expr, err = p.parseParen(0)
	} else {
		expr, err = p.parseAmount()
	}
	if err != nil {
		return ast.Tracked[ast.Expr]{}, err
	}

	return ast.Decorate(start, p.pos, expr), nil
}

func (p *Parser) parseParen(depth int) (ast.Expr, error) {
	if depth > maxExprDepth {
		return nil, p.errorf("value expression", "expression nested too deeply")
	}

	open := p.pos
	if err := p.consume("(", "value expression", "expected '('"); err != nil {
		return nil, err
	}

	inner, err := p.parseAddSubtract(depth + 1)
	if err != nil {
		return nil, err
	}

	p.skipSpaces()
	if !p.match(")") {
		return nil, p.errorAt(open, p.pos, "value expression", "expected ')' after expression")
	}

	return &ast.Paren{Expr: inner}, nil
}

// parseAddSubtract handles addition and subtraction (lowest precedence).
func (p *Parser) parseAddSubtract(depth int) (ast.Expr, error) {
	left, err := p.parseMultiplyDivide(depth)
	if err != nil {
		return nil, err
	}

	for {
		save := p.pos
		p.skipSpaces()

		var op ast.BinaryOp
		switch p.peek() {
		case '+':
			op = ast.Add
		case '-':
			op = ast.Sub
		default:
			p.pos = save
			return left, nil
		}
		p.advance()

		right, err := p.parseMultiplyDivide(depth)
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, LHS: left, RHS: right}
	}
}

// parseMultiplyDivide handles multiplication and division.
func (p *Parser) parseMultiplyDivide(depth int) (ast.Expr, error) {
	left, err := p.parseUnary(depth)
	if err != nil {
		return nil, err
	}

	for {
		save := p.pos
		p.skipSpaces()

		var op ast.BinaryOp
		switch p.peek() {
		case '*':
			op = ast.Mul
		case '/':
			op = ast.Div
		default:
			p.pos = save
			return left, nil
		}
		p.advance()

		right, err := p.parseUnary(depth)
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, LHS: left, RHS: right}
	}
}

func (p *Parser) parseUnary(depth int) (ast.Expr, error) {
	if depth > maxExprDepth {
		return nil, p.errorf("value expression", "expression nested too deeply")
	}

	p.skipSpaces()
	if p.peek() == '-' && !isDigit(p.peekAhead(1)) {
		p.advance()
		inner, err := p.parseUnary(depth + 1)
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: ast.Negate, Expr: inner}, nil
	}
	return p.parsePrimary(depth)
}

func (p *Parser) parsePrimary(depth int) (ast.Expr, error) {
	switch c := p.peek(); {
	case c == '(':
		return p.parseParen(depth + 1)
	case isDigit(c) || c == '-':
		return p.parseAmount()
	}
	return nil, p.errorf("value expression", "expected number or '(' but got %s", p.describe())
}

// parseAmount parses a number followed by an optional commodity.
func (p *Parser) parseAmount() (*ast.AmountLit, error) {
	value, err := p.parseDecimal()
	if err != nil {
		return nil, err
	}

	save := p.pos
	p.skipSpaces()
	commodity := p.parseCommodity()
	if commodity == "" {
		p.pos = save
	}

	return &ast.AmountLit{Value: value, Commodity: commodity}, nil
}
