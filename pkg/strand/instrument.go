package strand

import (
	"sync/atomic"
	"time"
)

// Instrumentation receives low-level events from the reactive core. The
// metrics package provides a Prometheus-backed implementation; the default
// is a no-op.
type Instrumentation interface {
	// WatcherRan is called after a watcher execution completes.
	WatcherRan(mode FlushMode)

	// SignalTriggered is called once per trigger with the number of
	// subscribers notified.
	SignalTriggered(fanout int)

	// FlushCompleted is called when a Flush drains the job queues.
	FlushCompleted(jobs int, elapsed time.Duration)
}

type nopInstrumentation struct{}

func (nopInstrumentation) WatcherRan(FlushMode)              {}
func (nopInstrumentation) SignalTriggered(int)               {}
func (nopInstrumentation) FlushCompleted(int, time.Duration) {}

// activeInstrumentation holds the installed Instrumentation.
var activeInstrumentation atomic.Value

func init() {
	activeInstrumentation.Store(Instrumentation(nopInstrumentation{}))
}

// SetInstrumentation installs an Instrumentation implementation. Passing
// nil restores the no-op default. Intended to be called once at startup.
func SetInstrumentation(i Instrumentation) {
	if i == nil {
		i = nopInstrumentation{}
	}
	activeInstrumentation.Store(i)
}

func instrumentation() Instrumentation {
	return activeInstrumentation.Load().(Instrumentation)
}
