package gpio

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Pull selects the pull resistor configuration of an input pin.
type Pull uint8

const (
	PullUp Pull = iota + 1
	PullDown
)

func (p Pull) String() string {
	switch p {
	case PullUp:
		return "pull-up"
	case PullDown:
		return "pull-down"
	}
	return "unknown"
}

// Edge selects which transition triggers a press.
type Edge uint8

const (
	EdgeFalling Edge = iota + 1
	EdgeRising
)

func (e Edge) String() string {
	switch e {
	case EdgeFalling:
		return "falling"
	case EdgeRising:
		return "rising"
	}
	return "unknown"
}

// Spec is a parsed "<pin>[u|d]" button spec. A pulled-up button reads low when
// pressed, so it triggers on the falling edge; a pulled-down one on the rising edge.
type Spec struct {
	Pin  int
	Pull Pull
	Edge Edge
}

// Button binds a label to a pin spec.
type Button struct {
	Label string
	Spec
}

// ParseSpec parses a pin number optionally suffixed with u (pull-up, the
// default) or d (pull-down).
func ParseSpec(s string) (Spec, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	spec := Spec{Pull: PullUp, Edge: EdgeFalling}
	switch {
	case strings.HasSuffix(s, "u"):
		s = strings.TrimSuffix(s, "u")
	case strings.HasSuffix(s, "d"):
		s = strings.TrimSuffix(s, "d")
		spec.Pull, spec.Edge = PullDown, EdgeRising
	}
	pin, err := strconv.Atoi(s)
	if err != nil || pin < 0 {
		return Spec{}, fmt.Errorf("gpio: invalid pin %q", s)
	}
	spec.Pin = pin
	return spec, nil
}

// ParseButtons parses every label=spec entry, ordered by label. Two labels
// may not share a pin.
func ParseButtons(defs map[string]string) ([]Button, error) {
	out := make([]Button, 0, len(defs))
	pins := map[int]string{}
	for _, label := range slices.Sorted(maps.Keys(defs)) {
		spec, err := ParseSpec(defs[label])
		if err != nil {
			return nil, fmt.Errorf("button %q: %w", label, err)
		}
		if other, dup := pins[spec.Pin]; dup {
			return nil, fmt.Errorf("button %q: pin %d already used by %q", label, spec.Pin, other)
		}
		pins[spec.Pin] = label
		out = append(out, Button{Label: label, Spec: spec})
	}
	return out, nil
}
