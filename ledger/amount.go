package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/ledger/intern"
)

// Amount is a quantity across any number of commodities. Commodities whose
// value is zero are never stored, so the zero Amount has no commodities.
// Amounts are immutable: every operation returns a new value.
type Amount struct {
	values map[intern.Commodity]decimal.Decimal
}

// NewAmount returns an amount holding value of commodity c.
func NewAmount(c intern.Commodity, value decimal.Decimal) Amount {
	var a Amount
	return a.with(c, value)
}

// Len returns the number of commodities with a non-zero value.
func (a Amount) Len() int {
	return len(a.values)
}

// IsZero reports whether every commodity is zero.
func (a Amount) IsZero() bool {
	return len(a.values) == 0
}

// Get returns the value of commodity c.
func (a Amount) Get(c intern.Commodity) decimal.Decimal {
	return a.values[c]
}

// Commodities returns the commodities held in registration order.
func (a Amount) Commodities() []intern.Commodity {
	keys := maps.Keys(a.values)
	slices.SortFunc(keys, intern.Commodity.Compare)
	return keys
}

// Add returns a + b commodity-wise.
func (a Amount) Add(b Amount) Amount {
	out := a.clone()
	for c, v := range b.values {
		out = out.with(c, out.values[c].Add(v))
	}
	return out
}

// Sub returns a - b commodity-wise.
func (a Amount) Sub(b Amount) Amount {
	return a.Add(b.Neg())
}

// Neg negates every commodity.
func (a Amount) Neg() Amount {
	out := Amount{values: make(map[intern.Commodity]decimal.Decimal, len(a.values))}
	for c, v := range a.values {
		out.values[c] = v.Neg()
	}
	return out
}

// Equal reports whether a and b hold the same value for every commodity.
func (a Amount) Equal(b Amount) bool {
	if len(a.values) != len(b.values) {
		return false
	}
	for c, v := range a.values {
		if !v.Equal(b.values[c]) {
			return false
		}
	}
	return true
}

// Format renders the amount as "100 USD, 50 EUR" using the names in store,
// or "0" when it is zero.
func (a Amount) Format(store *intern.Store[intern.CommodityKind]) string {
	if a.IsZero() {
		return "0"
	}
	parts := make([]string, 0, a.Len())
	for _, c := range a.Commodities() {
		parts = append(parts, a.values[c].String()+" "+store.Name(c))
	}
	return strings.Join(parts, ", ")
}

func (a Amount) mapValues(f func(decimal.Decimal) (decimal.Decimal, error)) (Amount, error) {
	var out Amount
	for c, v := range a.values {
		r, err := f(v)
		if err != nil {
			return Amount{}, err
		}
		out = out.with(c, r)
	}
	return out, nil
}

func (a Amount) clone() Amount {
	if a.values == nil {
		return Amount{}
	}
	return Amount{values: maps.Clone(a.values)}
}

// with sets c to v in place, dropping zero values. Callers own a.
func (a Amount) with(c intern.Commodity, v decimal.Decimal) Amount {
	if v.IsZero() {
		delete(a.values, c)
		return a
	}
	if a.values == nil {
		a.values = make(map[intern.Commodity]decimal.Decimal)
	}
	a.values[c] = v
	return a
}

// SingleAmount is a value in exactly one commodity. The value may be zero.
type SingleAmount struct {
	Commodity intern.Commodity
	Value     decimal.Decimal
}

// Amount converts s into an Amount.
func (s SingleAmount) Amount() Amount {
	return NewAmount(s.Commodity, s.Value)
}

// Add adds two amounts of the same commodity.
func (s SingleAmount) Add(o SingleAmount) (SingleAmount, error) {
	if s.Commodity != o.Commodity {
		return SingleAmount{}, &EvalError{Kind: UnmatchingCommodities}
	}
	return SingleAmount{Commodity: s.Commodity, Value: s.Value.Add(o.Value)}, nil
}

// Format renders the amount as "100 USD".
func (s SingleAmount) Format(store *intern.Store[intern.CommodityKind]) string {
	return s.Value.String() + " " + store.Name(s.Commodity)
}

// PostingAmount is what a posting resolves to: either zero without a
// commodity or a value in exactly one commodity.
type PostingAmount struct {
	single SingleAmount
}

// IsZero reports whether the posting amount is the commodity-less zero.
func (p PostingAmount) IsZero() bool {
	return p.single.Commodity.IsZero()
}

// Single returns the single-commodity amount, or false for zero.
func (p PostingAmount) Single() (SingleAmount, bool) {
	return p.single, !p.IsZero()
}

// Amount converts p into an Amount.
func (p PostingAmount) Amount() Amount {
	if p.IsZero() {
		return Amount{}
	}
	return p.single.Amount()
}

// Format renders the amount as "100 USD" or "0".
func (p PostingAmount) Format(store *intern.Store[intern.CommodityKind]) string {
	if p.IsZero() {
		return "0"
	}
	return p.single.Format(store)
}

func postingAmountOf(a Amount) (PostingAmount, bool) {
	switch a.Len() {
	case 0:
		return PostingAmount{}, true
	case 1:
		c := a.Commodities()[0]
		return PostingAmount{single: SingleAmount{Commodity: c, Value: a.values[c]}}, true
	}
	return PostingAmount{}, false
}
