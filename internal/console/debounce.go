package console

import (
	"sync"
	"time"
)

// DefaultDebounceDelay is the quiet period before a debounced function
// fires; roughly one typing pause.
const DefaultDebounceDelay = 400 * time.Millisecond

// Debouncer coalesces rapid calls into one: each Do resets the timer, and
// only the last function runs once the delay elapses with no further
// calls. Used to hold back search requests while the operator is typing.
type Debouncer struct {
	Delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncer creates a debouncer with the given delay; a zero delay
// falls back to DefaultDebounceDelay.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounceDelay
	}
	return &Debouncer{Delay: delay}
}

// Do schedules fn to run after the quiet period, cancelling any
// previously scheduled call.
func (d *Debouncer) Do(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.Delay, fn)
}

// Stop cancels any pending call.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
