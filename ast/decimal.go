package ast

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DecimalFormat records how a number was written so it can be displayed the
// same way again.
type DecimalFormat int

const (
	// Plain numbers are written without digit grouping, e.g. 1234.50.
	Plain DecimalFormat = iota
	// Comma numbers group the integral part by thousands, e.g. 1,234.50.
	Comma
)

// PrettyDecimal is a decimal value that remembers its source formatting.
type PrettyDecimal struct {
	Value  decimal.Decimal
	Format DecimalFormat
	// Scale is the number of fractional digits written in the source.
	Scale int32
}

// NewPrettyDecimal returns a plain formatted decimal keeping the value's own scale.
func NewPrettyDecimal(d decimal.Decimal) PrettyDecimal {
	scale := -d.Exponent()
	if scale < 0 {
		scale = 0
	}
	return PrettyDecimal{Value: d, Format: Plain, Scale: scale}
}

// String reproduces the number the way it was written.
func (p PrettyDecimal) String() string {
	s := p.Value.StringFixed(p.Scale)
	if p.Format != Comma {
		return s
	}

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(intPart) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(intPart[:lead])
	for i := lead; i < len(intPart); i += 3 {
		b.WriteByte(',')
		b.WriteString(intPart[i : i+3])
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

// Equal compares numeric values only, ignoring formatting.
func (p PrettyDecimal) Equal(o PrettyDecimal) bool {
	return p.Value.Equal(o.Value)
}
