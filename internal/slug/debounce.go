// internal/slug/debounce.go
//
// Quiet-period debouncer.
//
// Context
// -------
// The live validator must not query the catalog on every keystroke.  Each
// edit of the slug field is pushed here; only the last value of a burst
// reaches fire, once no edit has arrived for the quiet period.
//
// Workflow
// --------
//  1. Push(v) stops the pending timer, bumps the sequence, and arms a new
//     one carrying v.
//  2. A timer whose sequence is no longer current does nothing, so a Push
//     racing with an expiring timer never fires a stale value.
//  3. Cancel drops the pending value; Stop also refuses later pushes.

package slug

import (
	"sync"
	"time"
)

// Debouncer emits the last value pushed once no new value has arrived for
// the quiet period.  Every Push restarts the timer and supersedes the
// pending value.  Safe for concurrent use.
type Debouncer[T any] struct {
	quiet time.Duration
	fire  func(T)

	mu      sync.Mutex
	timer   *time.Timer
	seq     uint64
	stopped bool
}

// NewDebouncer returns a Debouncer that calls fire on its own goroutine.
func NewDebouncer[T any](quiet time.Duration, fire func(T)) *Debouncer[T] {
	return &Debouncer[T]{quiet: quiet, fire: fire}
}

// Push schedules v, cancelling any pending value.
func (d *Debouncer[T]) Push(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.timer = time.AfterFunc(d.quiet, func() {
		d.mu.Lock()
		// A Push or Cancel that raced with this timer already bumped seq.
		live := seq == d.seq && !d.stopped
		d.mu.Unlock()
		if live {
			d.fire(v)
		}
	})
}

// Cancel drops the pending value, if any.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Stop cancels the pending value and ignores every later Push.
func (d *Debouncer[T]) Stop() {
	d.Cancel()
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
}
