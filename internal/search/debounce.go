package search

import (
	"sync"
	"time"
)

// DefaultDebounce is the delay used when none is configured.
const DefaultDebounce = 300 * time.Millisecond

// Debouncer delivers only the latest pushed value, once delay has passed
// without another push.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	emit    func(string)
	timer   *time.Timer
	pending string
	armed   bool
	stopped bool
}

// NewDebouncer creates a debouncer calling emit on its own goroutine.
// A non-positive delay falls back to DefaultDebounce.
func NewDebouncer(delay time.Duration, emit func(string)) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{delay: delay, emit: emit}
}

// Push records value and restarts the delay.
func (d *Debouncer) Push(value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	d.pending = value
	d.armed = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

// Flush emits the pending value immediately, if any.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	value, ok := d.take()
	d.mu.Unlock()

	if ok && d.emit != nil {
		d.emit(value)
	}
}

// Stop drops any pending value; later pushes are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.armed = false
	if d.timer != nil {
		d.timer.Stop()
	}
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	value, ok := d.take()
	d.mu.Unlock()

	if ok && d.emit != nil {
		d.emit(value)
	}
}

// take must be called with d.mu held.
func (d *Debouncer) take() (string, bool) {
	if !d.armed || d.stopped {
		return "", false
	}
	d.armed = false
	return d.pending, true
}
