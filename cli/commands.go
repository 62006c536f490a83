package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/robinvdvleuten/ledger/config"
	"github.com/robinvdvleuten/ledger/output"
	"github.com/robinvdvleuten/ledger/telemetry"
)

var (
	Version   = ""
	CommitSHA = ""
)

// Globals defines global flags available to all commands.
type Globals struct {
	Config    string `help:"Config file (default $XDG_CONFIG_HOME/ledger/config.yaml)." type:"path" placeholder:"PATH"`
	LogLevel  string `help:"Log level: debug, info, warn or error. Overrides the config file." placeholder:"LEVEL"`
	Telemetry bool   `help:"Show timing telemetry for operations."`
}

type Commands struct {
	Globals

	Check    CheckCmd    `cmd:"" help:"Load a ledger file with its includes and balance every transaction."`
	Balance  BalanceCmd  `cmd:"" help:"Print the balance of every account."`
	Accounts AccountsCmd `cmd:"" help:"List the accounts of a ledger file."`
	Format   FormatCmd   `cmd:"" help:"Format a ledger file to align amounts."`
	Eval     EvalCmd     `cmd:"" help:"Evaluate a value expression."`
	Doctor   DoctorCmd   `cmd:"" help:"Doctor utilities for debugging ledger files."`
}

// run is the state shared by a single command invocation: the settings, and
// a context carrying the logger and the telemetry collector.
type run struct {
	ctx    context.Context
	config *config.Config
	stderr io.Writer

	collector *telemetry.TimingCollector
	timer     telemetry.Timer
	once      sync.Once
}

// start loads the settings and prepares the context of a command. The
// returned run must be finished once the command is done.
func (g *Globals) start(stderr io.Writer, name string) (*run, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}

	logger, err := newLogger(cfg.Log, stderr)
	if err != nil {
		return nil, err
	}

	r := &run{
		ctx:    logger.WithContext(context.Background()),
		config: cfg,
		stderr: stderr,
	}

	if g.Telemetry {
		r.collector = telemetry.NewTimingCollector()
		r.ctx = telemetry.WithCollector(r.ctx, r.collector)
		r.timer = r.collector.Start(telemetry.Command, name)
	}

	return r, nil
}

// finish reports the collected telemetry. It is safe to call more than once.
func (r *run) finish() {
	r.once.Do(func() {
		if r.collector == nil {
			return
		}
		r.timer.End()
		_, _ = fmt.Fprintln(r.stderr)
		r.collector.Report(r.stderr, output.NewStyles(r.stderr))
	})
}

// newLogger creates the logger of the command line tool. Log lines always go
// to w, which is stderr outside of tests.
func newLogger(cfg config.LogConfig, w io.Writer) (zerolog.Logger, error) {
	level, err := cfg.ZerologLevel()
	if err != nil {
		return zerolog.Nop(), err
	}

	out := w
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.Kitchen,
			NoColor:    !isTerminalWriter(w),
		}
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Logger(), nil
}

func commandName(cmd, filename string) string {
	return fmt.Sprintf("%s %s", cmd, filepath.Base(filename))
}
