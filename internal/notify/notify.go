// Package notify fans recorded button presses out to websocket clients and
// an optional MQTT broker.
package notify

import (
	"encoding/json"
	"errors"

	"github.com/stut/displayproxy/internal/buttons"
)

// Publisher receives every recorded press. Publish must not block.
type Publisher interface {
	Publish(p buttons.Press)
	Close() error
}

// Fanout publishes to several publishers.
type Fanout []Publisher

func (f Fanout) Publish(p buttons.Press) {
	for _, pub := range f {
		pub.Publish(p)
	}
}

func (f Fanout) Close() error {
	var errs []error
	for _, pub := range f {
		errs = append(errs, pub.Close())
	}
	return errors.Join(errs...)
}

// encodePress renders the wire form {"button":label,"time":ts}.
func encodePress(p buttons.Press) []byte {
	data, _ := json.Marshal(p)
	return data
}
