//go:build linux

package gpio

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/warthog618/go-gpiocdev"
)

// DefaultChip is the GPIO character device used on a Raspberry Pi.
const DefaultChip = "gpiochip0"

// Watcher delivers edge events on button pins through the GPIO character
// device. Event handlers run on the library's watcher goroutine.
type Watcher struct {
	chip string

	mu    sync.Mutex
	lines []*gpiocdev.Line
}

// NewWatcher returns a watcher for the named chip.
func NewWatcher(chip string) *Watcher {
	if chip == "" {
		chip = DefaultChip
	}
	return &Watcher{chip: chip}
}

// Watch requests every button pin as an edge-detecting input and calls press
// with the button label on each matching edge. On error no line stays requested.
func (w *Watcher) Watch(buttons []Button, press func(label string)) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, b := range buttons {
		label := b.Label
		opts := []gpiocdev.LineReqOption{
			gpiocdev.AsInput,
			gpiocdev.WithConsumer("displayproxy"),
			gpiocdev.WithEventHandler(func(gpiocdev.LineEvent) { press(label) }),
		}
		if b.Pull == PullDown {
			opts = append(opts, gpiocdev.WithPullDown, gpiocdev.WithRisingEdge)
		} else {
			opts = append(opts, gpiocdev.WithPullUp, gpiocdev.WithFallingEdge)
		}

		line, err := gpiocdev.RequestLine(w.chip, b.Pin, opts...)
		if err != nil {
			w.closeLocked()
			return fmt.Errorf("gpio: request pin %d for button %q: %w", b.Pin, label, err)
		}
		slog.Debug("Watching button", "label", label, "pin", b.Pin, "pull", b.Pull.String(), "edge", b.Edge.String())
		w.lines = append(w.lines, line)
	}
	return nil
}

// Close releases every requested line.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *Watcher) closeLocked() error {
	var errs []error
	for _, l := range w.lines {
		errs = append(errs, l.Close())
	}
	w.lines = nil
	return errors.Join(errs...)
}
