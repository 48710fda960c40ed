package display

import (
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/stut/displayproxy/internal/buttons"
	"github.com/stut/displayproxy/internal/config"
)

// DefaultMaxUploadSize bounds the body accepted by /update.
const DefaultMaxUploadSize = 5 * 1024 * 1024

// Display renders frames and reports button presses.
//
// Update and ButtonStatus may be called from HTTP goroutines while Run is
// active; implementations serialise their own frame state.
type Display interface {
	Width() int
	Height() int
	MaxUploadSize() int64
	// Update hands a decoded frame to the backend. Whether the output
	// actually changes is backend policy.
	Update(img image.Image) error
	// Frame returns the frame currently shown, or nil if there is none.
	Frame() image.Image
	ButtonStatus() map[string]float64
	// Run blocks until shutdown is requested.
	Run() error
	// Shutdown requests Run to return. It is safe to call more than once.
	Shutdown()
	Done() <-chan struct{}
	// Close releases backend resources. It is called once, after Run returns.
	Close() error
}

// Kind identifies a backend implementation.
type Kind string

const (
	KindInky   Kind = "inky"
	KindWindow Kind = "window"
)

// Kinds lists every supported backend.
var Kinds = []Kind{KindInky, KindWindow}

// ParseKind maps a resolved display type onto a backend kind.
func ParseKind(displayType string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == displayType {
			return k, nil
		}
	}
	names := make([]string, len(Kinds))
	for i, k := range Kinds {
		names[i] = string(k)
	}
	return "", fmt.Errorf("unsupported display type %q; supported: %s", displayType, strings.Join(names, ", "))
}

// Base holds the state shared by every backend: the button tracker, the
// upload limit and the one-shot shutdown signal.
type Base struct {
	tracker       *buttons.Tracker
	maxUploadSize int64

	shutdownOnce sync.Once
	done         chan struct{}
}

// NewBase reads the common options from cfg.
func NewBase(cfg *config.Config, tracker *buttons.Tracker) (*Base, error) {
	maxUpload, err := cfg.Int("max_upload_size", DefaultMaxUploadSize)
	if err != nil {
		return nil, err
	}
	if maxUpload <= 0 {
		return nil, fmt.Errorf("option max_upload_size: must be positive, got %d", maxUpload)
	}
	if tracker == nil {
		tracker = buttons.NewTracker(nil, nil)
	}
	return &Base{
		tracker:       tracker,
		maxUploadSize: int64(maxUpload),
		done:          make(chan struct{}),
	}, nil
}

func (b *Base) MaxUploadSize() int64 { return b.maxUploadSize }

// ButtonStatus returns an independent snapshot of the button press times.
func (b *Base) ButtonStatus() map[string]float64 { return b.tracker.Snapshot() }

// Tracker returns the tracker presses are recorded in.
func (b *Base) Tracker() *buttons.Tracker { return b.tracker }

func (b *Base) Shutdown() {
	b.shutdownOnce.Do(func() { close(b.done) })
}

func (b *Base) Done() <-chan struct{} { return b.done }

// ShutdownRequested reports whether Shutdown has been called.
func (b *Base) ShutdownRequested() bool {
	select {
	case <-b.done:
		return true
	default:
		return false
	}
}
