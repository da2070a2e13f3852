package render

import (
	"sync"
	"time"
)

// DefaultFilterDelay matches the search-box debounce.
const DefaultFilterDelay = 250 * time.Millisecond

// Debouncer coalesces rapid filter updates into a single apply call
// after the input settles. Each Set resets the timer; only the last
// query wins.
type Debouncer struct {
	delay time.Duration
	apply func(query string)

	mu         sync.Mutex
	timer      *time.Timer
	pending    string
	hasPending bool
	stopped    bool
}

func NewDebouncer(delay time.Duration, apply func(query string)) *Debouncer {
	if delay <= 0 {
		delay = DefaultFilterDelay
	}
	return &Debouncer{delay: delay, apply: apply}
}

// Set schedules an apply of the query after the debounce delay,
// cancelling any previously scheduled one.
func (d *Debouncer) Set(query string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.pending = query
	d.hasPending = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

// Flush applies any pending query immediately.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()
	d.fire()
}

// Stop cancels any pending apply. The debouncer is unusable afterwards.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	if d.stopped || !d.hasPending {
		d.mu.Unlock()
		return
	}
	query := d.pending
	d.hasPending = false
	d.timer = nil
	d.mu.Unlock()

	d.apply(query)
}
