package telemetry

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/robinvdvleuten/ledger/output"
)

const slowOperation = 100 * time.Millisecond

// formatTimingTree writes the timers with their counters:
//
//	ledger check main.ledger: 125ms
//	├─ load main.ledger: 85ms (includes=1)
//	│  ├─ parse main.ledger: 45ms (entries=40)
//	│  └─ load accounts.ledger: 5ms
//	│     └─ parse accounts.ledger: 2ms (entries=2)
//	└─ process: 40ms (entries=42)
func formatTimingTree(w io.Writer, root *timerNode, styles *output.Styles) {
	name := root.name()
	if styles != nil {
		name = styles.Keyword(name)
	}
	_, _ = fmt.Fprintf(w, "%s: %s%s\n", name, formatDuration(root.end.Sub(root.start)), formatCounters(root.counters))

	for i, child := range root.children {
		formatNode(w, child, "", i == len(root.children)-1, styles)
	}
}

func formatNode(w io.Writer, node *timerNode, prefix string, isLast bool, styles *output.Styles) {
	duration := node.end.Sub(node.start)

	branch, extension := "├─ ", "│  "
	if isLast {
		branch, extension = "└─ ", "   "
	}

	tree, timing := prefix+branch, formatDuration(duration)
	if styles != nil {
		tree = styles.Dim(tree)
		timing = styles.Timing(timing, duration >= slowOperation)
	}
	_, _ = fmt.Fprintf(w, "%s%s: %s%s\n", tree, node.name(), timing, formatCounters(node.counters))

	for i, child := range node.children {
		formatNode(w, child, prefix+extension, i == len(node.children)-1, styles)
	}
}

// formatSummary writes one line per stage that ran or counted something:
//
//	load     85ms  runs=1 includes=1
//	parse    47ms  runs=2 entries=42
//	process  40ms  runs=1 entries=42 transactions=20 postings=41
func formatSummary(w io.Writer, totals map[Stage]*stageTotal, styles *output.Styles) {
	var lines []string
	for _, stage := range stages {
		total, ok := totals[stage]
		if !ok {
			continue
		}

		timing := "-"
		if total.runs > 0 {
			timing = formatDuration(total.duration)
		}
		var fields []string
		if total.runs > 0 {
			fields = append(fields, fmt.Sprintf("runs=%d", total.runs))
		}
		for _, c := range total.counters {
			fields = append(fields, fmt.Sprintf("%s=%d", c.unit, c.n))
		}

		line := strings.TrimRight(fmt.Sprintf("%-8s %6s  %s", stage, timing, strings.Join(fields, " ")), " ")
		if styles != nil {
			line = styles.Dim(line)
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return
	}

	_, _ = fmt.Fprintln(w)
	for _, line := range lines {
		_, _ = fmt.Fprintln(w, line)
	}
}

func formatCounters(c counters) string {
	if len(c) == 0 {
		return ""
	}
	parts := make([]string, len(c))
	for i, counter := range c {
		parts[i] = fmt.Sprintf("%s=%d", counter.unit, counter.n)
	}
	return " (" + strings.Join(parts, " ") + ")"
}

// formatDuration shows milliseconds below one second and seconds above.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.0fms", float64(d)/float64(time.Millisecond))
	}
	return fmt.Sprintf("%.2fs", float64(d)/float64(time.Second))
}
