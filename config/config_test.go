package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/ledger/formatter"
	"github.com/robinvdvleuten/ledger/ledger"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadEnv("", map[string]string{})
	assert.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	level, err := cfg.Log.ZerologLevel()
	assert.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, level)
}

func TestDefaultPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path, err := DefaultPath()
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ledger", "config.yaml"), path)
}

func TestLoadDefaultPathFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	assert.NoError(t, os.MkdirAll(filepath.Join(dir, "ledger"), 0o755))
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "ledger", "config.yaml"), []byte("log:\n  level: debug\n"), 0o644))

	cfg, err := LoadEnv("", map[string]string{})
	assert.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
log:
  level: info
  format: json
ledger:
  balance_policy: lenient
  strict_commodities: true
  tolerance:
    default:
      "*": "0.01"
      JPY: "1"
    multiplier: "0.25"
format:
  currency_column: 60
  indentation: 2
`)

	cfg, err := LoadEnv(path, map[string]string{})
	assert.NoError(t, err)
	assert.Equal(t, &Config{
		Log: LogConfig{Level: "info", Format: "json"},
		Ledger: LedgerConfig{
			BalancePolicy:     "lenient",
			StrictCommodities: true,
			Tolerance: ToleranceConfig{
				Default:    map[string]string{"*": "0.01", "JPY": "1"},
				Multiplier: "0.25",
			},
		},
		Format: FormatConfig{CurrencyColumn: 60, Indentation: 2},
	}, cfg)

	opts, err := cfg.LedgerOptions()
	assert.NoError(t, err)
	lc := ledger.NewConfig()
	for _, opt := range opts {
		opt(lc)
	}
	assert.Equal(t, ledger.Lenient, lc.Policy)
	assert.True(t, lc.StrictCommodities)
	assert.Equal(t, "1", lc.Tolerance.Default("JPY").String())
	assert.Equal(t, "0.01", lc.Tolerance.Default("CHF").String())
	// 10^-2 * 0.25
	assert.Equal(t, "0.0025", lc.Tolerance.Infer([]decimal.Decimal{decimal.RequireFromString("1.50")}, "CHF").String())

	f := formatter.New(cfg.FormatterOptions()...)
	assert.Equal(t, 60, f.CurrencyColumn)
	assert.Equal(t, 2, f.Indentation)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, "log:\n  level: info\nledger:\n  balance_policy: lenient\n")

	cfg, err := LoadEnv(path, map[string]string{
		"LEDGER_LOG_LEVEL":          "debug",
		"LEDGER_LOG_FORMAT":         "json",
		"LEDGER_BALANCE_POLICY":     "strict",
		"LEDGER_STRICT_COMMODITIES": "true",
		"LEDGER_CURRENCY_COLUMN":    "48",
		"LOG_LEVEL":                 "error",
	})
	assert.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "strict", cfg.Ledger.BalancePolicy)
	assert.True(t, cfg.Ledger.StrictCommodities)
	assert.Equal(t, 48, cfg.Format.CurrencyColumn)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		environ map[string]string
		want    string
	}{
		{"malformed yaml", "log: [", nil, "failed to parse"},
		{"log level", "log:\n  level: loud\n", nil, `invalid log level "loud"`},
		{"log format", "log:\n  format: xml\n", nil, `invalid log format "xml"`},
		{"balance policy", "ledger:\n  balance_policy: sloppy\n", nil, `invalid balance policy "sloppy"`},
		{"tolerance", "ledger:\n  tolerance:\n    default:\n      CHF: abc\n", nil, `invalid tolerance "abc" for CHF`},
		{"negative tolerance", "ledger:\n  tolerance:\n    default:\n      CHF: \"-1\"\n", nil, `invalid tolerance "-1" for CHF`},
		{"multiplier", "ledger:\n  tolerance:\n    multiplier: \"0\"\n", nil, `invalid tolerance multiplier "0"`},
		{"currency column", "format:\n  currency_column: -1\n", nil, "invalid currency column -1"},
		{"environment", "", map[string]string{"LEDGER_CURRENCY_COLUMN": "wide"}, "failed to read environment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			environ := tt.environ
			if environ == nil {
				environ = map[string]string{}
			}
			_, err := LoadEnv(writeConfig(t, tt.content), environ)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "loud"
	cfg.Ledger.BalancePolicy = "sloppy"

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Equal(t, 2, strings.Count(err.Error(), "invalid ")-1)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := LoadEnv(filepath.Join(t.TempDir(), "missing.yaml"), map[string]string{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
