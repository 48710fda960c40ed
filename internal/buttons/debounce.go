package buttons

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultDebounce is the minimum interval between two accepted presses of the
// same button.
const DefaultDebounce = 500 * time.Millisecond

// Debouncer suppresses repeated signals for a label inside a minimum interval.
type Debouncer struct {
	interval time.Duration
	clock    clockwork.Clock

	mu   sync.Mutex
	last map[string]time.Time
}

// NewDebouncer returns a debouncer. A non-positive interval accepts everything.
func NewDebouncer(interval time.Duration, clock clockwork.Clock) *Debouncer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Debouncer{
		interval: interval,
		clock:    clock,
		last:     map[string]time.Time{},
	}
}

// Allow reports whether a signal for label should be acted on, and if so
// starts a new suppression window for it.
func (d *Debouncer) Allow(label string) bool {
	now := d.clock.Now()

	d.mu.Lock()
	defer d.mu.Unlock()
	if last, ok := d.last[label]; ok && d.interval > 0 && now.Sub(last) < d.interval {
		return false
	}
	d.last[label] = now
	return true
}

// Wrap returns a press handler that forwards only debounced signals to press.
func (d *Debouncer) Wrap(press func(label string) bool) func(label string) {
	return func(label string) {
		if d.Allow(label) {
			press(label)
		}
	}
}
