// Package debounce collapses bursts of triggers into a single delayed call.
package debounce

import (
	"sync"
	"time"
)

// Debouncer runs the most recently scheduled function once no new
// schedule has arrived for the configured delay. At most one timer is live.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	seq     uint64
	stopped bool
}

// New creates a Debouncer with the given quiet period
func New(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Schedule cancels any pending call and arranges for fn to run after the delay.
// It reports whether a pending call was cancelled.
func (d *Debouncer) Schedule(fn func()) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return false
	}

	cancelled := d.cancelLocked()
	d.seq++
	seq := d.seq
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		// A newer Schedule or Cancel may have raced the timer firing
		if d.seq != seq || d.stopped {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()
		fn()
	})
	return cancelled
}

// Cancel drops the pending call, if any, and reports whether there was one
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancelLocked()
}

// Pending reports whether a call is scheduled and has not fired yet
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Stop cancels the pending call and refuses further schedules
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
	d.stopped = true
}

func (d *Debouncer) cancelLocked() bool {
	if d.timer == nil {
		return false
	}
	d.timer.Stop()
	d.timer = nil
	// Invalidate a callback that already started waiting on the lock
	d.seq++
	return true
}
