// Package window runs a simulator scene in an Ebitengine window.
package window

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/stut/displayproxy/internal/display/simulator"
	"github.com/stut/displayproxy/internal/input"
	"github.com/stut/displayproxy/internal/metrics"
)

// TicksPerSecond is the rate at which the scene is stepped.
const TicksPerSecond = 60

// EbitenWindow renders the scene surface using Ebitengine and captures input.
// Run must be called from the main goroutine.
type EbitenWindow struct{}

var _ simulator.Window = (*EbitenWindow)(nil)

// New creates an Ebitengine-backed window.
func New() *EbitenWindow { return &EbitenWindow{} }

// ScreenSize reports the size of the primary monitor.
func (w *EbitenWindow) ScreenSize() (int, int) {
	if m := ebiten.Monitor(); m != nil {
		return m.Size()
	}
	return 0, 0
}

// Run starts the Ebitengine game loop and returns once the scene stops.
func (w *EbitenWindow) Run(scene simulator.Scene) error {
	opts := scene.Options()
	ebiten.SetWindowSize(opts.Width, opts.Height)
	ebiten.SetWindowTitle(opts.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetFullscreen(opts.Fullscreen)
	if opts.HideCursor {
		ebiten.SetCursorMode(ebiten.CursorModeHidden)
	}
	ebiten.SetTPS(TicksPerSecond)

	g := &game{
		scene:  scene,
		window: image.Pt(opts.Width, opts.Height),
		face:   text.NewGoXFace(basicfont.Face7x13),
		log:    slog.With("component", "window"),
	}
	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

// Close is a no-op; Ebitengine tears the window down when RunGame returns.
func (w *EbitenWindow) Close() error { return nil }

// game implements ebiten.Game.
type game struct {
	scene  simulator.Scene
	window image.Point
	face   text.Face
	log    *slog.Logger

	image   *ebiten.Image
	version uint64
	loaded  bool

	viewW, viewH int
	prevCursor   image.Point
}

func (g *game) Update() (err error) {
	defer g.recoverIteration("update", &err)

	if !g.scene.Step(g.pollEvents()) {
		return ebiten.Termination
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	var err error
	defer g.recoverIteration("draw", &err)

	surface, version := g.scene.Surface()
	if surface == nil {
		return
	}
	if !g.loaded || version != g.version {
		b := surface.Bounds()
		if g.image == nil || g.image.Bounds().Dx() != b.Dx() || g.image.Bounds().Dy() != b.Dy() {
			if g.image != nil {
				g.image.Deallocate()
			}
			g.image = ebiten.NewImage(b.Dx(), b.Dy())
		}
		g.image.WritePixels(surface.Pix)
		g.version, g.loaded = version, true
	}

	frame := g.image.Bounds().Size()
	view := screen.Bounds().Size()
	sx, sy := input.StretchTransform(float64(view.X), float64(view.Y), float64(frame.X), float64(frame.Y))

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(sx, sy)
	screen.DrawImage(g.image, op)

	g.drawButtons(screen, view)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.viewW, g.viewH = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

// drawButtons draws the overlay in logical window coordinates scaled to the
// view. The surface size plays no part.
func (g *game) drawButtons(screen *ebiten.Image, view image.Point) {
	btns := g.scene.Buttons()
	if len(btns) == 0 {
		return
	}
	c := g.scene.ButtonColor()
	for _, b := range btns {
		x, y, w, h := input.RectToView(view, g.window, b.Rect)
		if b.Hover {
			vector.DrawFilledRect(screen, x, y, w, h, simulator.HoverColor(c), false)
		} else {
			vector.StrokeRect(screen, x, y, w, h, 2, c, false)
		}

		tw, th := text.Measure(b.Label, g.face, 0)
		op := &text.DrawOptions{}
		op.GeoM.Translate(float64(x)+(float64(w)-tw)/2, float64(y)+(float64(h)-th)/2)
		op.ColorScale.ScaleWithColor(c)
		text.Draw(screen, b.Label, g.face, op)
	}
}

// pollEvents gathers the input of the current tick in logical window
// coordinates.
func (g *game) pollEvents() []input.Event {
	var events []input.Event

	if ebiten.IsWindowBeingClosed() {
		events = append(events, input.Quit())
	}
	for _, k := range inpututil.AppendJustPressedKeys(nil) {
		events = append(events, input.KeyDown(strings.ToLower(k.String())))
	}

	if g.viewW == 0 || g.viewH == 0 {
		return events
	}
	view := image.Pt(g.viewW, g.viewH)

	cursor := image.Pt(ebiten.CursorPosition())
	if cursor != g.prevCursor {
		g.prevCursor = cursor
		events = append(events, input.PointerMove(input.ToWindow(view, g.window, cursor)))
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		events = append(events, input.PointerUp(input.ToWindow(view, g.window, cursor)))
	}
	for _, id := range inpututil.AppendJustReleasedTouchIDs(nil) {
		p := image.Pt(inpututil.TouchPositionInPreviousTick(id))
		events = append(events, input.PointerUp(input.ToWindow(view, g.window, p)))
	}
	return events
}

// recoverIteration keeps the loop alive when a single tick fails.
func (g *game) recoverIteration(phase string, err *error) {
	if r := recover(); r != nil {
		metrics.RenderLoopErrors.Inc()
		g.log.Error("Render loop iteration failed", "phase", phase, "error", fmt.Sprint(r))
		*err = nil
	}
}
