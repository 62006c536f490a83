package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/ledger/ast"
)

// reservedCommodityChars end a commodity symbol.
const reservedCommodityChars = " \t\r\n0123456789.,;:?!-+*/^&|=<>{}[]()@\""

// ParseDate parses a complete date string in either 2024/1/31 or 2024-01-31
// format.
func ParseDate(input string) (ast.Date, error) {
	p := New("", input)
	d, err := p.parseDate()
	if err != nil {
		return ast.Date{}, err
	}
	if !p.isAtEnd() {
		return ast.Date{}, p.errorAt(p.pos, len(p.src), "date", "unexpected trailing characters")
	}
	return d, nil
}

// ParseDecimal parses a complete number such as -1,234.50 and keeps its
// formatting.
func ParseDecimal(input string) (ast.PrettyDecimal, error) {
	p := New("", input)
	d, err := p.parseDecimal()
	if err != nil {
		return ast.PrettyDecimal{}, err
	}
	if !p.isAtEnd() {
		return ast.PrettyDecimal{}, p.errorAt(p.pos, len(p.src), "number", "unexpected trailing characters")
	}
	return d, nil
}

// ParseCommodity returns the commodity symbol at the start of input, or ""
// when input does not start with one.
func ParseCommodity(input string) string {
	p := New("", input)
	return p.parseCommodity()
}

// parseDate parses YYYY/M/D or YYYY-MM-DD.
func (p *Parser) parseDate() (ast.Date, error) {
	start := p.pos
	for !p.isAtEnd() && (isDigit(p.peek()) || p.peek() == '/' || p.peek() == '-') {
		p.pos++
	}
	tok := p.src[start:p.pos]
	if tok == "" {
		return ast.Date{}, p.errorf("date", "expected date but got %s", p.describe())
	}

	fail := func(format string, args ...any) (ast.Date, error) {
		return ast.Date{}, p.errorAt(start, p.pos, "date", fmt.Sprintf(format, args...))
	}

	var parts []string
	switch {
	case strings.Contains(tok, "/") && !strings.Contains(tok, "-"):
		parts = strings.Split(tok, "/")
		if len(parts) != 3 || len(parts[0]) != 4 ||
			len(parts[1]) < 1 || len(parts[1]) > 2 ||
			len(parts[2]) < 1 || len(parts[2]) > 2 {
			return fail("%q does not match YYYY/M/D", tok)
		}
	case strings.Contains(tok, "-") && !strings.Contains(tok, "/"):
		parts = strings.Split(tok, "-")
		if len(parts) != 3 || len(parts[0]) != 4 || len(parts[1]) != 2 || len(parts[2]) != 2 {
			return fail("%q does not match YYYY-MM-DD", tok)
		}
	default:
		return fail("%q is neither YYYY/M/D nor YYYY-MM-DD", tok)
	}

	year, _ := strconv.Atoi(parts[0])
	month, _ := strconv.Atoi(parts[1])
	day, _ := strconv.Atoi(parts[2])

	if month < 1 || month > 12 {
		return fail("month %d out of range", month)
	}
	if days := daysIn(year, time.Month(month)); day < 1 || day > days {
		return fail("day %d out of range for %04d-%02d", day, year, month)
	}

	return ast.NewDate(year, time.Month(month), day), nil
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// parseDecimal parses an optionally negative number with optional thousands
// grouping and fraction.
func (p *Parser) parseDecimal() (ast.PrettyDecimal, error) {
	start := p.pos
	p.match("-")

	intStart := p.pos
	for isDigit(p.peek()) {
		p.pos++
	}
	leading := p.pos - intStart
	if leading == 0 {
		p.pos = start
		return ast.PrettyDecimal{}, p.errorf("number", "expected digit but got %s", p.describe())
	}

	format := ast.Plain
	for p.peek() == ',' && isDigit(p.peekAhead(1)) && isDigit(p.peekAhead(2)) &&
		isDigit(p.peekAhead(3)) && !isDigit(p.peekAhead(4)) {
		if leading > 3 {
			return ast.PrettyDecimal{}, p.errorAt(intStart, p.pos, "number", "digit group before ',' longer than three digits")
		}
		format = ast.Comma
		p.pos += 4
	}

	var scale int32
	if p.peek() == '.' && isDigit(p.peekAhead(1)) {
		p.pos++
		for isDigit(p.peek()) {
			p.pos++
			scale++
		}
	}

	text := strings.ReplaceAll(p.src[start:p.pos], ",", "")
	value, err := decimal.NewFromString(text)
	if err != nil {
		return ast.PrettyDecimal{}, p.errorAt(start, p.pos, "number", err.Error())
	}

	return ast.PrettyDecimal{Value: value, Format: format, Scale: scale}, nil
}

// parseCommodity consumes a commodity symbol, which may be empty.
func (p *Parser) parseCommodity() string {
	start := p.pos
	for !p.isAtEnd() && strings.IndexByte(reservedCommodityChars, p.peek()) < 0 {
		p.pos++
	}
	return p.src[start:p.pos]
}
