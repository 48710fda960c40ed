// Package simulator renders frames in a desktop window and turns clicks on
// configured rectangles into button presses. The window itself is an
// injected Window so the scene logic runs without a graphics stack.
package simulator

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"sync"

	"github.com/stut/displayproxy/internal/buttons"
	"github.com/stut/displayproxy/internal/config"
	"github.com/stut/displayproxy/internal/display"
	"github.com/stut/displayproxy/internal/input"
)

const (
	DefaultWidth  = 600
	DefaultHeight = 448
	DefaultTitle  = "displayproxy"
)

// WindowOptions configure the window when it opens.
type WindowOptions struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	HideCursor bool
}

// Button is an on-screen button as seen by the window for one frame.
type Button struct {
	Label string
	Rect  image.Rectangle
	Hover bool
}

// Scene is the state the window loop drives once per tick.
type Scene interface {
	Options() WindowOptions
	// Step applies the events gathered since the last tick and reports
	// whether the loop should keep running.
	Step(events []input.Event) bool
	// Surface returns the current surface and a version that changes
	// whenever the surface is replaced.
	Surface() (*image.RGBA, uint64)
	// Buttons returns the overlay to draw, or nil when no colour is set.
	Buttons() []Button
	ButtonColor() color.NRGBA
}

// Window runs the platform event loop.
type Window interface {
	// ScreenSize reports the size of the monitor the window opens on.
	ScreenSize() (int, int)
	// Run blocks, calling scene.Step every tick, until Step returns false
	// or the window fails.
	Run(scene Scene) error
	Close() error
}

type rectButton struct {
	label string
	rect  image.Rectangle
}

// Simulator is the windowed backend.
type Simulator struct {
	*display.Base

	window  Window
	opts    WindowOptions
	buttons []rectButton
	color   color.NRGBA
	overlay bool

	mu      sync.Mutex
	surface *image.RGBA
	version uint64
	cursor  image.Point
	inside  bool
}

var _ display.Display = (*Simulator)(nil)

// New validates the window options and button rectangles and prepares the
// splash surface. A width or height of 0 takes the screen dimension.
func New(cfg *config.Config, tracker *buttons.Tracker, window Window) (*Simulator, error) {
	base, err := display.NewBase(cfg, tracker)
	if err != nil {
		return nil, err
	}

	width, err := cfg.Int("width", DefaultWidth)
	if err != nil {
		return nil, err
	}
	height, err := cfg.Int("height", DefaultHeight)
	if err != nil {
		return nil, err
	}
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("simulator: invalid size %dx%d", width, height)
	}
	if width == 0 || height == 0 {
		sw, sh := window.ScreenSize()
		if width == 0 {
			width = sw
		}
		if height == 0 {
			height = sh
		}
		if width <= 0 || height <= 0 {
			return nil, fmt.Errorf("simulator: screen size unavailable")
		}
	}
	cfg.SetOption("width", strconv.Itoa(width))
	cfg.SetOption("height", strconv.Itoa(height))

	s := &Simulator{
		Base:   base,
		window: window,
		opts: WindowOptions{
			Title:      cfg.String("title", DefaultTitle),
			Width:      width,
			Height:     height,
			Fullscreen: cfg.Bool("fullscreen", false),
			HideCursor: cfg.Bool("hidecursor", false),
		},
	}

	defs := cfg.Buttons()
	for _, label := range slices.Sorted(maps.Keys(defs)) {
		r, err := ParseRect(defs[label])
		if err != nil {
			return nil, fmt.Errorf("simulator: button %q: %w", label, err)
		}
		s.buttons = append(s.buttons, rectButton{label: label, rect: r})
	}

	if hex := cfg.String("button_color", ""); hex != "" {
		c, err := ParseHexColor(hex)
		if err != nil {
			return nil, fmt.Errorf("option button_color: %w", err)
		}
		s.color, s.overlay = c, true
	}

	s.surface = Splash(width, height)
	slog.Info("Simulator ready", "width", width, "height", height, "buttons", len(s.buttons))
	return s, nil
}

func (s *Simulator) Width() int  { return s.opts.Width }
func (s *Simulator) Height() int { return s.opts.Height }

// Update replaces the surface with a copy of img.
func (s *Simulator) Update(img image.Image) error {
	b := img.Bounds()
	surface := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(surface, surface.Bounds(), img, b.Min, draw.Src)

	s.mu.Lock()
	s.surface = surface
	s.version++
	s.mu.Unlock()
	return nil
}

// Frame returns the surface currently shown, the splash screen until the
// first update.
func (s *Simulator) Frame() image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.surface
}

// Run drives the window on the calling goroutine until shutdown.
func (s *Simulator) Run() error {
	if err := s.window.Run(s); err != nil {
		s.Shutdown()
		return fmt.Errorf("simulator: window: %w", err)
	}
	s.Shutdown()
	return nil
}

func (s *Simulator) Close() error { return s.window.Close() }

func (s *Simulator) Options() WindowOptions { return s.opts }

func (s *Simulator) Step(events []input.Event) bool {
	for _, e := range events {
		switch {
		case e.IsQuitRequest():
			s.Shutdown()
		case e.Type == input.EventPointerMove:
			s.moveCursor(e.Point())
		case e.Type == input.EventPointerUp:
			s.moveCursor(e.Point())
			if label := s.ButtonAt(e.Point()); label != "" {
				s.Tracker().Press(label)
			}
		}
	}
	return !s.ShutdownRequested()
}

func (s *Simulator) Surface() (*image.RGBA, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.surface, s.version
}

func (s *Simulator) Buttons() []Button {
	if !s.overlay {
		return nil
	}
	s.mu.Lock()
	cursor, inside := s.cursor, s.inside
	s.mu.Unlock()

	out := make([]Button, len(s.buttons))
	for i, b := range s.buttons {
		out[i] = Button{Label: b.label, Rect: b.rect, Hover: inside && cursor.In(b.rect)}
	}
	return out
}

func (s *Simulator) ButtonColor() color.NRGBA { return s.color }

// ButtonAt returns the label of the first button, in label order, containing p.
func (s *Simulator) ButtonAt(p image.Point) string {
	for _, b := range s.buttons {
		if p.In(b.rect) {
			return b.label
		}
	}
	return ""
}

func (s *Simulator) moveCursor(p image.Point) {
	s.mu.Lock()
	s.cursor, s.inside = p, true
	s.mu.Unlock()
}
