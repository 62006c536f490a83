package telemetry

import (
	"io"
	"sync"
	"time"

	"github.com/robinvdvleuten/ledger/output"
)

// TimingCollector builds a tree of timers and keeps counters per stage.
// The first timer started becomes the root.
type TimingCollector struct {
	mu      sync.Mutex
	root    *timerNode
	current *timerNode
	totals  map[Stage]*stageTotal
}

type timerNode struct {
	stage    Stage
	subject  string
	start    time.Time
	end      time.Time
	counters counters
	parent   *timerNode
	children []*timerNode
}

func (n *timerNode) name() string {
	if n.subject == "" {
		return string(n.stage)
	}
	return string(n.stage) + " " + n.subject
}

// within reports whether an ancestor of n runs in the same stage, as a load
// of an included file does.
func (n *timerNode) within() bool {
	for p := n.parent; p != nil; p = p.parent {
		if p.stage == n.stage {
			return true
		}
	}
	return false
}

// stageTotal sums the outermost timers of a stage and all of its counters.
type stageTotal struct {
	runs     int
	duration time.Duration
	counters counters
}

type counter struct {
	unit string
	n    int
}

// counters keeps units in the order they were first counted.
type counters []counter

func (c *counters) add(unit string, n int) {
	if n == 0 {
		return
	}
	for i := range *c {
		if (*c)[i].unit == unit {
			(*c)[i].n += n
			return
		}
	}
	*c = append(*c, counter{unit: unit, n: n})
}

// NewTimingCollector creates an empty collector.
func NewTimingCollector() *TimingCollector {
	return &TimingCollector{totals: make(map[Stage]*stageTotal)}
}

// Start begins timing subject in stage below the running timer.
func (c *TimingCollector) Start(stage Stage, subject string) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	node := &timerNode{stage: stage, subject: subject, start: time.Now()}
	if c.root == nil {
		c.root = node
	} else {
		node.parent = c.current
		c.current.children = append(c.current.children, node)
	}
	c.current = node

	return &timingTimer{collector: c, node: node}
}

// Count adds n to a counter of stage.
func (c *TimingCollector) Count(stage Stage, unit string, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total(stage).counters.add(unit, n)
}

func (c *TimingCollector) total(stage Stage) *stageTotal {
	t, ok := c.totals[stage]
	if !ok {
		t = &stageTotal{}
		c.totals[stage] = t
	}
	return t
}

// Report writes the timer tree followed by one summary line per stage.
func (c *TimingCollector) Report(w io.Writer, styles *output.Styles) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.root == nil {
		return
	}
	formatTimingTree(w, c.root, styles)
	formatSummary(w, c.totals, styles)
}

type timingTimer struct {
	collector *TimingCollector
	node      *timerNode
}

func (t *timingTimer) Count(unit string, n int) {
	t.collector.mu.Lock()
	defer t.collector.mu.Unlock()

	t.node.counters.add(unit, n)
	if t.node.stage != Command {
		t.collector.total(t.node.stage).counters.add(unit, n)
	}
}

func (t *timingTimer) End() {
	c := t.collector
	c.mu.Lock()
	defer c.mu.Unlock()

	if !t.node.end.IsZero() {
		return
	}
	t.node.end = time.Now()

	if t.node.stage != Command && !t.node.within() {
		total := c.total(t.node.stage)
		total.runs++
		total.duration += t.node.end.Sub(t.node.start)
	}
	if c.current == t.node && t.node.parent != nil {
		c.current = t.node.parent
	}
}
