//go:build !linux

package gpio

import "errors"

const DefaultChip = "gpiochip0"

var errUnsupported = errors.New("gpio: edge detection requires linux")

// Watcher is unavailable off linux; Watch fails for any non-empty button set.
type Watcher struct{}

func NewWatcher(chip string) *Watcher { return &Watcher{} }

func (w *Watcher) Watch(buttons []Button, press func(label string)) error {
	if len(buttons) == 0 {
		return nil
	}
	return errUnsupported
}

func (w *Watcher) Close() error { return nil }
