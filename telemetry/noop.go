package telemetry

import (
	"io"

	"github.com/robinvdvleuten/ledger/output"
)

// noOpCollector is used when no collector is attached to the context.
type noOpCollector struct{}

func (noOpCollector) Start(Stage, string) Timer        { return noOpTimer{} }
func (noOpCollector) Count(Stage, string, int)         {}
func (noOpCollector) Report(io.Writer, *output.Styles) {}

type noOpTimer struct{}

func (noOpTimer) Count(string, int) {}
func (noOpTimer) End()              {}
