// Package config loads the settings of the ledger command line tool.
//
// Settings are read in three layers, each overriding the previous one:
//
//  1. built-in defaults
//  2. a YAML file, by default $XDG_CONFIG_HOME/ledger/config.yaml
//  3. LEDGER_* environment variables
//
// Example file:
//
//	log:
//	  level: debug
//	  format: console
//	ledger:
//	  balance_policy: lenient
//	  strict_commodities: true
//	  tolerance:
//	    default:
//	      "*": "0.005"
//	      JPY: "0.5"
//	    multiplier: "0.5"
//	format:
//	  currency_column: 60
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"

	"github.com/robinvdvleuten/ledger/formatter"
	"github.com/robinvdvleuten/ledger/ledger"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "LEDGER_"

// Config holds all settings.
type Config struct {
	Log    LogConfig    `yaml:"log" envPrefix:"LOG_"`
	Ledger LedgerConfig `yaml:"ledger"`
	Format FormatConfig `yaml:"format"`
}

// LogConfig controls the logger of the command line tool.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `yaml:"level" env:"LEVEL"`
	// Format is console or json.
	Format string `yaml:"format" env:"FORMAT"`
}

// LedgerConfig holds the options of a ledger session.
type LedgerConfig struct {
	// BalancePolicy is strict or lenient.
	BalancePolicy     string          `yaml:"balance_policy" env:"BALANCE_POLICY"`
	StrictCommodities bool            `yaml:"strict_commodities" env:"STRICT_COMMODITIES"`
	Tolerance         ToleranceConfig `yaml:"tolerance"`
}

// ToleranceConfig holds decimal strings so they keep their exact value.
type ToleranceConfig struct {
	// Default maps a commodity, or "*" for all, to its default tolerance.
	Default    map[string]string `yaml:"default"`
	Multiplier string            `yaml:"multiplier"`
}

// FormatConfig holds the options of the formatter.
type FormatConfig struct {
	CurrencyColumn int `yaml:"currency_column" env:"CURRENCY_COLUMN"`
	Indentation    int `yaml:"indentation" env:"INDENTATION"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
		Ledger: LedgerConfig{
			BalancePolicy: ledger.Strict.String(),
		},
		Format: FormatConfig{
			Indentation: formatter.DefaultIndentation,
		},
	}
}

// DefaultPath returns the location of the config file used when none is
// given explicitly.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		var err error
		if dir, err = os.UserConfigDir(); err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, "ledger", "config.yaml"), nil
}

// Load reads the config file at path, or at DefaultPath when path is empty,
// and applies the environment. A missing file is only an error when path was
// given explicitly.
func Load(path string) (*Config, error) {
	return LoadEnv(path, nil)
}

// LoadEnv is Load with the environment taken from environ instead of the
// process. A nil environ means the process environment.
func LoadEnv(path string, environ map[string]string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, fmt.Errorf("failed to locate config file: %w", err)
		}
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unknown enum values and malformed numbers.
func (c *Config) Validate() error {
	var errs []error

	if _, err := c.Log.ZerologLevel(); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log format %q, expected console or json", c.Log.Format))
	}

	if _, err := ledger.ParseBalancePolicy(c.Ledger.BalancePolicy); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Ledger.Tolerance.build(); err != nil {
		errs = append(errs, err)
	}

	if c.Format.CurrencyColumn < 0 {
		errs = append(errs, fmt.Errorf("invalid currency column %d", c.Format.CurrencyColumn))
	}
	if c.Format.Indentation < 0 {
		errs = append(errs, fmt.Errorf("invalid indentation %d", c.Format.Indentation))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

var logLevels = []string{"debug", "info", "warn", "error"}

// ZerologLevel returns the configured log level.
func (c LogConfig) ZerologLevel() (zerolog.Level, error) {
	level := strings.ToLower(c.Level)
	if !slices.Contains(logLevels, level) {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q, expected one of %s", c.Level, strings.Join(logLevels, ", "))
	}
	return zerolog.ParseLevel(level)
}

// LedgerOptions converts the ledger settings into session options.
func (c *Config) LedgerOptions() ([]ledger.Option, error) {
	policy, err := ledger.ParseBalancePolicy(c.Ledger.BalancePolicy)
	if err != nil {
		return nil, err
	}
	tolerance, err := c.Ledger.Tolerance.build()
	if err != nil {
		return nil, err
	}
	return []ledger.Option{
		ledger.WithPolicy(policy),
		ledger.WithStrictCommodities(c.Ledger.StrictCommodities),
		ledger.WithTolerance(tolerance),
	}, nil
}

// FormatterOptions converts the format settings into formatter options.
func (c *Config) FormatterOptions() []formatter.Option {
	opts := []formatter.Option{formatter.WithCurrencyColumn(c.Format.CurrencyColumn)}
	if c.Format.Indentation > 0 {
		opts = append(opts, formatter.WithIndentation(c.Format.Indentation))
	}
	return opts
}

func (t ToleranceConfig) build() (*ledger.ToleranceConfig, error) {
	tolerance := ledger.NewToleranceConfig()

	commodities := maps.Keys(t.Default)
	slices.Sort(commodities)
	for _, commodity := range commodities {
		d, err := decimal.NewFromString(t.Default[commodity])
		if err != nil || d.IsNegative() {
			return nil, fmt.Errorf("invalid tolerance %q for %s", t.Default[commodity], commodity)
		}
		tolerance.SetDefault(commodity, d)
	}

	if t.Multiplier != "" {
		m, err := decimal.NewFromString(t.Multiplier)
		if err != nil || !m.IsPositive() {
			return nil, fmt.Errorf("invalid tolerance multiplier %q", t.Multiplier)
		}
		tolerance.SetMultiplier(m)
	}

	return tolerance, nil
}
