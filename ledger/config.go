package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// BalancePolicy decides what happens to a transaction without an elided
// posting whose postings do not sum to zero.
type BalancePolicy int

const (
	// Strict rejects the transaction with UnbalancedPostings.
	Strict BalancePolicy = iota
	// Lenient books the transaction and records a Warning.
	Lenient
)

func (p BalancePolicy) String() string {
	if p == Lenient {
		return "lenient"
	}
	return "strict"
}

// ParseBalancePolicy parses "strict" or "lenient".
func ParseBalancePolicy(s string) (BalancePolicy, error) {
	switch strings.ToLower(s) {
	case "", "strict":
		return Strict, nil
	case "lenient":
		return Lenient, nil
	}
	return Strict, fmt.Errorf("invalid balance policy %q, expected strict or lenient", s)
}

// Config holds the options of a ledger session.
type Config struct {
	Policy BalancePolicy
	// StrictCommodities evaluates postings with StrictResolver, so every
	// commodity must be declared before use.
	StrictCommodities bool
	Tolerance         *ToleranceConfig
}

// NewConfig creates a Config with defaults.
func NewConfig() *Config {
	return &Config{
		Policy:    Strict,
		Tolerance: NewToleranceConfig(),
	}
}

// Option configures a Ledger.
type Option func(*Config)

// WithPolicy sets the policy for unbalanced transactions.
func WithPolicy(p BalancePolicy) Option {
	return func(c *Config) { c.Policy = p }
}

// WithStrictCommodities rejects undeclared commodities.
func WithStrictCommodities(strict bool) Option {
	return func(c *Config) { c.StrictCommodities = strict }
}

// WithTolerance replaces the tolerance configuration.
func WithTolerance(t *ToleranceConfig) Option {
	return func(c *Config) { c.Tolerance = t }
}

// ToleranceConfig holds configuration for tolerance inference.
type ToleranceConfig struct {
	// defaults maps commodity to default tolerance ("*" is the wildcard).
	defaults map[string]decimal.Decimal
	// multiplier is applied to the inferred tolerance.
	multiplier decimal.Decimal
}

// NewToleranceConfig creates a default tolerance configuration:
// 0.005 for every commodity and a multiplier of 0.5.
func NewToleranceConfig() *ToleranceConfig {
	return &ToleranceConfig{
		defaults: map[string]decimal.Decimal{
			"*": decimal.RequireFromString("0.005"),
		},
		multiplier: decimal.RequireFromString("0.5"),
	}
}

// SetDefault sets the default tolerance of a commodity, or of every
// commodity when commodity is "*".
func (c *ToleranceConfig) SetDefault(commodity string, tolerance decimal.Decimal) {
	c.defaults[commodity] = tolerance
}

// SetMultiplier sets the factor applied to the inferred precision.
func (c *ToleranceConfig) SetMultiplier(m decimal.Decimal) {
	c.multiplier = m
}

// Default returns the default tolerance for a commodity.
// Checks the commodity-specific default first, then the wildcard.
func (c *ToleranceConfig) Default(commodity string) decimal.Decimal {
	if c == nil {
		return decimal.RequireFromString("0.005")
	}
	if tolerance, ok := c.defaults[commodity]; ok {
		return tolerance
	}
	if tolerance, ok := c.defaults["*"]; ok {
		return tolerance
	}
	return decimal.RequireFromString("0.005")
}

// Infer calculates a tolerance from the precision of amounts:
// 10^minExp * multiplier, where minExp is the smallest exponent among the
// non-zero amounts. Without such amounts the default applies.
func (c *ToleranceConfig) Infer(amounts []decimal.Decimal, commodity string) decimal.Decimal {
	if c == nil {
		c = NewToleranceConfig()
	}

	minExp, found := int32(0), false
	for _, amount := range amounts {
		if amount.IsZero() {
			continue
		}
		if exp := amount.Exponent(); !found || exp < minExp {
			minExp, found = exp, true
		}
	}
	if !found {
		return c.Default(commodity)
	}

	return decimal.New(1, minExp).Mul(c.multiplier)
}

// AmountEqual checks if two amounts are equal within tolerance.
func AmountEqual(a, b decimal.Decimal, tolerance decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tolerance)
}
