// Package telemetry times the stages a ledger goes through: loading files,
// parsing them, booking their entries and formatting them back out. Timers
// and counters travel in the context, so packages instrument themselves
// without extra parameters, and cost nothing when no collector is attached.
//
//	collector := telemetry.NewTimingCollector()
//	ctx := telemetry.WithCollector(context.Background(), collector)
//
//	timer := telemetry.StartTimer(ctx, telemetry.Parse, "main.ledger")
//	timer.Count("entries", len(file.Entries))
//	timer.End()
//
//	telemetry.Count(ctx, telemetry.Process, "postings", 2)
//
//	collector.Report(os.Stderr, output.NewStyles(os.Stderr))
package telemetry

import (
	"context"
	"io"

	"github.com/robinvdvleuten/ledger/output"
)

// Stage is a phase of handling a ledger.
type Stage string

const (
	// Command is the stage of the root timer of a command line invocation.
	Command Stage = "ledger"
	Load    Stage = "load"
	Parse   Stage = "parse"
	Process Stage = "process"
	Format  Stage = "format"
)

// stages is the order of the summary lines in a report.
var stages = []Stage{Load, Parse, Process, Format}

// Collector records timers and counters.
type Collector interface {
	// Start begins timing subject in stage. Timers started while another
	// one is running are nested below it.
	Start(stage Stage, subject string) Timer

	// Count adds n to a counter of stage that is not tied to a timer.
	Count(stage Stage, unit string, n int)

	// Report writes the timer tree and the per-stage summary. Styles may
	// be nil.
	Report(w io.Writer, styles *output.Styles)
}

// Timer tracks one timed operation.
type Timer interface {
	// Count adds n to the named counter of the timer and of its stage.
	Count(unit string, n int)

	// End stops the timer.
	End()
}

type contextKey struct{}

// WithCollector attaches collector to ctx.
func WithCollector(ctx context.Context, collector Collector) context.Context {
	return context.WithValue(ctx, contextKey{}, collector)
}

// FromContext returns the collector of ctx, or one that records nothing.
func FromContext(ctx context.Context) Collector {
	if collector, ok := ctx.Value(contextKey{}).(Collector); ok {
		return collector
	}
	return noOpCollector{}
}

// StartTimer starts a timer on the collector of ctx.
func StartTimer(ctx context.Context, stage Stage, subject string) Timer {
	return FromContext(ctx).Start(stage, subject)
}

// Count adds n to a counter of stage on the collector of ctx.
func Count(ctx context.Context, stage Stage, unit string, n int) {
	FromContext(ctx).Count(stage, unit, n)
}
