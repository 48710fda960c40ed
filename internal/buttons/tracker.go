package buttons

import (
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/stut/displayproxy/internal/metrics"
)

// Press describes a single recorded button press.
type Press struct {
	Label string  `json:"button"`
	Time  float64 `json:"time"`
}

// Tracker records the last press time of each configured button. The set of
// labels is fixed at construction; presses for unknown labels are ignored.
type Tracker struct {
	clock clockwork.Clock

	mu     sync.Mutex
	status map[string]float64

	obsMu     sync.RWMutex
	observers []func(Press)
}

// NewTracker creates a tracker with every label at 0 (never pressed).
func NewTracker(labels []string, clock clockwork.Clock) *Tracker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	status := make(map[string]float64, len(labels))
	for _, l := range labels {
		status[l] = 0
	}
	return &Tracker{clock: clock, status: status}
}

// Press records a press of label at the current time. It returns false and
// changes nothing if the label is unknown.
func (t *Tracker) Press(label string) bool {
	now := epochSeconds(t.clock.Now())

	t.mu.Lock()
	prev, ok := t.status[label]
	if !ok {
		t.mu.Unlock()
		return false
	}
	// Per-label timestamps never go backwards, even if the wall clock does.
	if now < prev {
		now = prev
	}
	t.status[label] = now
	t.mu.Unlock()

	metrics.ButtonPresses.WithLabelValues(label).Inc()

	p := Press{Label: label, Time: now}
	t.obsMu.RLock()
	observers := t.observers
	t.obsMu.RUnlock()
	for _, fn := range observers {
		fn(p)
	}
	return true
}

// Snapshot returns an independent copy of the label to timestamp map.
func (t *Tracker) Snapshot() map[string]float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return maps.Clone(t.status)
}

// Labels returns the configured labels in sorted order.
func (t *Tracker) Labels() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Sorted(maps.Keys(t.status))
}

// Subscribe registers fn to be called after every recorded press. Observers
// run on the pressing goroutine, outside the tracker lock, and must not block.
func (t *Tracker) Subscribe(fn func(Press)) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(slices.Clip(t.observers), fn)
}

func epochSeconds(ts time.Time) float64 {
	return float64(ts.UnixNano()) / float64(time.Second)
}
