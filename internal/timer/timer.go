// Package timer provides elapsed-time logging and the fixed-interval
// runner behind `sync --interval`.
package timer

import (
	"time"

	"github.com/timecamphq/peoplesync/internal/logging"
)

// Runner repeats a pipeline run on a fixed interval. Runs never
// overlap: concurrent runs against the same TimeCamp account are
// undefined, so a tick that fires while a run is still executing is
// dropped and the next run waits for the following tick.
type Runner struct {
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
	runs     int
}

func NewRunner(interval time.Duration) *Runner {
	return &Runner{
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs fn immediately and then after every interval until Stop.
// fn executes on the runner's own goroutine, one run at a time.
func (r *Runner) Start(fn func()) {
	go func() {
		defer close(r.done)

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			r.runs++
			start := time.Now()
			fn()
			LogElapsed(start, "scheduled run")

			// A tick that fired during a long run is stale; drop it so
			// the next run waits for a fresh tick instead of starting
			// back-to-back.
			select {
			case <-ticker.C:
			default:
			}

			select {
			case <-r.stop:
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop ends the schedule and waits for an in-flight run to finish.
func (r *Runner) Stop() {
	close(r.stop)
	<-r.done
}

// Runs reports how many runs completed. Only valid after Stop.
func (r *Runner) Runs() int {
	return r.runs
}

// LogElapsed logs the time since start at the debug level.
func LogElapsed(start time.Time, task string) {
	logging.S.Debugf("%s in %s", task, time.Since(start))
}
