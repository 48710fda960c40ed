package input

import (
	"image"
	"strings"
)

// EventType identifies the kind of input event.
type EventType string

const (
	EventQuit        EventType = "quit"
	EventKeyDown     EventType = "key_down"
	EventPointerMove EventType = "pointer_move"
	EventPointerUp   EventType = "pointer_up"
)

// Key names as produced by the window, lower case.
const (
	KeyEscape = "escape"
	KeyQ      = "q"
)

// Event is a window input event. Pointer coordinates are in surface pixels.
type Event struct {
	Type EventType `json:"type"`
	X    int       `json:"x,omitempty"`
	Y    int       `json:"y,omitempty"`
	Key  string    `json:"key,omitempty"`
}

func Quit() Event { return Event{Type: EventQuit} }

func KeyDown(name string) Event {
	return Event{Type: EventKeyDown, Key: strings.ToLower(name)}
}

func PointerMove(p image.Point) Event { return Event{Type: EventPointerMove, X: p.X, Y: p.Y} }

func PointerUp(p image.Point) Event { return Event{Type: EventPointerUp, X: p.X, Y: p.Y} }

// Point returns the pointer position of the event.
func (e Event) Point() image.Point { return image.Pt(e.X, e.Y) }

// IsQuitRequest reports whether the event asks the application to exit:
// closing the window or pressing escape or q.
func (e Event) IsQuitRequest() bool {
	switch e.Type {
	case EventQuit:
		return true
	case EventKeyDown:
		return e.Key == KeyEscape || e.Key == KeyQ
	}
	return false
}
