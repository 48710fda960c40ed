// Package epaper drives an Inky Impression e-paper panel. Frames are only
// pushed to the panel when they differ enough from what is already shown,
// since a full refresh takes tens of seconds.
package epaper

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/jonboulle/clockwork"

	"github.com/stut/displayproxy/internal/buttons"
	"github.com/stut/displayproxy/internal/config"
	"github.com/stut/displayproxy/internal/display"
	"github.com/stut/displayproxy/internal/gpio"
	"github.com/stut/displayproxy/internal/metrics"
)

const (
	DefaultSaturation    = 0.5
	DefaultBorder        = "black"
	DefaultDiffThreshold = 1.0
)

// Borders lists the accepted border_colour values.
var Borders = []string{"black", "white", "green", "blue", "red", "yellow", "orange", "clean"}

// Resolution of each Impression variant.
var variantSizes = map[string]image.Point{
	"4":   {640, 400},
	"5.7": {600, 448},
	"7.3": {800, 480},
}

// Panel is the physical display.
type Panel interface {
	Bounds() image.Rectangle
	// Show draws img, which already matches Bounds, and blocks until the
	// refresh completes.
	Show(img image.Image, saturation float64, border string) error
	Close() error
}

// ButtonSource reports edges on button pins.
type ButtonSource interface {
	Watch(buttons []gpio.Button, press func(label string)) error
	Close() error
}

// Display is the hardware backend.
type Display struct {
	*display.Base

	panel  Panel
	source ButtonSource
	width  int
	height int

	saturation float64
	border     string
	threshold  float64

	mu    sync.Mutex
	frame *image.NRGBA
}

var _ display.Display = (*Display)(nil)

// New validates the e-paper options, records the panel resolution in cfg and
// starts watching the configured buttons.
func New(cfg *config.Config, tracker *buttons.Tracker, panel Panel, source ButtonSource, clock clockwork.Clock) (*Display, error) {
	base, err := display.NewBase(cfg, tracker)
	if err != nil {
		return nil, err
	}

	saturation, err := cfg.Float("saturation", DefaultSaturation)
	if err != nil {
		return nil, err
	}
	if saturation < 0 || saturation > 1 {
		return nil, fmt.Errorf("option saturation: must be between 0 and 1, got %g", saturation)
	}
	border := cfg.String("border_colour", DefaultBorder)
	if !slices.Contains(Borders, border) {
		return nil, fmt.Errorf("option border_colour: unknown colour %q", border)
	}
	threshold, err := cfg.Float("diff_percent_threshold", DefaultDiffThreshold)
	if err != nil {
		return nil, err
	}
	if threshold < 0 {
		return nil, fmt.Errorf("option diff_percent_threshold: must not be negative, got %g", threshold)
	}
	debounceMs, err := cfg.Int("debounce_ms", int(buttons.DefaultDebounce/time.Millisecond))
	if err != nil {
		return nil, err
	}
	if debounceMs < 0 {
		return nil, fmt.Errorf("option debounce_ms: must not be negative, got %d", debounceMs)
	}

	size := panel.Bounds().Size()
	if want, ok := variantSizes[cfg.DisplayVariant()]; ok && want != size {
		return nil, fmt.Errorf("epaper: variant %s expects %dx%d, detected %dx%d",
			cfg.DisplayVariant(), want.X, want.Y, size.X, size.Y)
	}
	cfg.SetOption("width", strconv.Itoa(size.X))
	cfg.SetOption("height", strconv.Itoa(size.Y))

	btns, err := gpio.ParseButtons(cfg.Buttons())
	if err != nil {
		return nil, fmt.Errorf("epaper: %w", err)
	}

	d := &Display{
		Base:       base,
		panel:      panel,
		source:     source,
		width:      size.X,
		height:     size.Y,
		saturation: saturation,
		border:     border,
		threshold:  threshold,
	}

	debouncer := buttons.NewDebouncer(time.Duration(debounceMs)*time.Millisecond, clock)
	if err := source.Watch(btns, debouncer.Wrap(base.Tracker().Press)); err != nil {
		return nil, fmt.Errorf("epaper: %w", err)
	}

	slog.Info("E-paper display ready", "width", size.X, "height", size.Y,
		"variant", cfg.DisplayVariant(), "buttons", len(btns))
	return d, nil
}

func (d *Display) Width() int  { return d.width }
func (d *Display) Height() int { return d.height }

// Update redraws the panel if img differs from the shown frame by more than
// the configured threshold.
func (d *Display) Update(img image.Image) error {
	frame := normalize(img, d.width, d.height)

	d.mu.Lock()
	defer d.mu.Unlock()

	diff := DiffPercent(d.frame, frame)
	metrics.FrameDiffPercent.Observe(diff)
	if diff <= d.threshold {
		metrics.PanelRedrawsSkipped.Inc()
		slog.Debug("Skipping redraw", "diff_percent", diff, "threshold", d.threshold)
		return nil
	}

	start := time.Now()
	if err := d.panel.Show(frame, d.saturation, d.border); err != nil {
		return fmt.Errorf("epaper: redraw: %w", err)
	}
	d.frame = frame
	metrics.PanelRedraws.Inc()
	slog.Info("Panel redrawn", "diff_percent", diff, "duration", time.Since(start))
	return nil
}

// Frame returns the frame last drawn to the panel.
func (d *Display) Frame() image.Image {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.frame == nil {
		return nil
	}
	return d.frame
}

// Run waits for shutdown. Button edges arrive on the watcher goroutine.
func (d *Display) Run() error {
	<-d.Done()
	return nil
}

func (d *Display) Close() error {
	return errors.Join(d.source.Close(), d.panel.Close())
}

// normalize scales img to w×h and makes every pixel opaque.
func normalize(img image.Image, w, h int) *image.NRGBA {
	var out *image.NRGBA
	if img.Bounds().Dx() == w && img.Bounds().Dy() == h {
		out = imaging.Clone(img)
	} else {
		out = imaging.Resize(img, w, h, imaging.Lanczos)
	}
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xff
	}
	return out
}

// DiffPercent returns the percentage of pixels whose colour differs between
// a and b. A missing frame or a size mismatch counts as a full difference.
func DiffPercent(a, b *image.NRGBA) float64 {
	if a == nil || b == nil || a.Bounds().Size() != b.Bounds().Size() {
		return 100
	}
	w, h := a.Bounds().Dx(), a.Bounds().Dy()
	if w == 0 || h == 0 {
		return 0
	}
	changed := 0
	for y := 0; y < h; y++ {
		ra := a.Pix[y*a.Stride : y*a.Stride+w*4]
		rb := b.Pix[y*b.Stride : y*b.Stride+w*4]
		for x := 0; x < len(ra); x += 4 {
			if ra[x] != rb[x] || ra[x+1] != rb[x+1] || ra[x+2] != rb[x+2] {
				changed++
			}
		}
	}
	return float64(changed) * 100 / float64(w*h)
}
