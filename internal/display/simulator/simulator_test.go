package simulator

import (
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stut/displayproxy/internal/buttons"
	"github.com/stut/displayproxy/internal/config"
	"github.com/stut/displayproxy/internal/input"
)

// fakeWindow steps the scene with scripted event batches, then keeps
// stepping with no events until the scene stops.
type fakeWindow struct {
	screen  image.Point
	batches [][]input.Event
	err     error
	ticks   int
	closed  bool
	opened  WindowOptions
}

func (w *fakeWindow) ScreenSize() (int, int) { return w.screen.X, w.screen.Y }

func (w *fakeWindow) Run(scene Scene) error {
	w.opened = scene.Options()
	if w.err != nil {
		return w.err
	}
	for {
		var events []input.Event
		if w.ticks < len(w.batches) {
			events = w.batches[w.ticks]
		}
		w.ticks++
		if !scene.Step(events) {
			return nil
		}
		time.Sleep(time.Millisecond)
	}
}

func (w *fakeWindow) Close() error {
	w.closed = true
	return nil
}

func newSimulator(t *testing.T, kind, btns, opts string, win Window) (*Simulator, *buttons.Tracker) {
	t.Helper()
	cfg, err := config.Resolve(kind, btns, opts)
	require.NoError(t, err)
	tracker := buttons.NewTracker(cfg.Labels(), nil)
	s, err := New(cfg, tracker, win)
	require.NoError(t, err)
	return s, tracker
}

func TestParseRect(t *testing.T) {
	r, err := ParseRect("0, 37, 37, 74")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 37, 37, 74), r)

	r, err = ParseRect("37,74,0,37")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 37, 37, 74), r)

	for _, bad := range []string{"", "1,2,3", "a,b,c,d", "5,5,5,10", "5u"} {
		_, err := ParseRect(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#777777")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0x77, G: 0x77, B: 0x77, A: 0xff}, c)

	c, err = ParseHexColor("ff000080")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0xff, A: 0x80}, c)
	assert.Equal(t, uint8(0x40), HoverColor(c).A)

	for _, bad := range []string{"#77", "#gggggg", "red"} {
		_, err := ParseHexColor(bad)
		assert.Error(t, err, bad)
	}
}

func TestSplashHasText(t *testing.T) {
	img := Splash(600, 448)
	require.Equal(t, image.Rect(0, 0, 600, 448), img.Bounds())

	dark := 0
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] < 0x80 {
			dark++
		}
	}
	assert.Positive(t, dark)
	assert.Equal(t, color.RGBA{0xff, 0xff, 0xff, 0xff}, img.RGBAAt(0, 0))
}

func TestNewDefaultsAndOptions(t *testing.T) {
	win := &fakeWindow{}
	s, _ := newSimulator(t, "window", "", "title=Frame;fullscreen=yes;hidecursor=1", win)

	assert.Equal(t, DefaultWidth, s.Width())
	assert.Equal(t, DefaultHeight, s.Height())
	assert.Equal(t, WindowOptions{Title: "Frame", Width: 600, Height: 448, Fullscreen: true, HideCursor: true}, s.Options())
	assert.Nil(t, s.Buttons())
}

func TestNewZeroSizeUsesScreen(t *testing.T) {
	cfg, err := config.Resolve("window", "", "width=0;height=0")
	require.NoError(t, err)
	s, err := New(cfg, nil, &fakeWindow{screen: image.Pt(1920, 1080)})
	require.NoError(t, err)

	assert.Equal(t, 1920, s.Width())
	assert.Equal(t, 1080, s.Height())
	assert.Equal(t, "1920", cfg.String("width", ""))
	assert.Equal(t, "1080", cfg.String("height", ""))
}

func TestNewRejectsBadConfig(t *testing.T) {
	for _, tc := range []struct{ btns, opts string }{
		{"A=5u", ""},
		{"", "button_color=blue"},
		{"", "width=wide"},
		{"", "width=-5"},
	} {
		cfg, err := config.Resolve("window", tc.btns, tc.opts)
		require.NoError(t, err)
		_, err = New(cfg, nil, &fakeWindow{})
		assert.Error(t, err, tc)
	}
}

func TestUpdateReplacesSurface(t *testing.T) {
	s, _ := newSimulator(t, "window", "", "", &fakeWindow{})
	_, v0 := s.Surface()

	src := image.NewNRGBA(image.Rect(10, 10, 20, 15))
	src.Set(10, 10, color.NRGBA{R: 0xff, A: 0xff})
	require.NoError(t, s.Update(src))

	surface, v1 := s.Surface()
	assert.NotEqual(t, v0, v1)
	assert.Equal(t, image.Rect(0, 0, 10, 5), surface.Bounds())
	assert.Equal(t, color.RGBA{R: 0xff, A: 0xff}, surface.RGBAAt(0, 0))
	assert.Same(t, surface, s.Frame())

	// identical frames are not gated
	require.NoError(t, s.Update(src))
	_, v2 := s.Surface()
	assert.NotEqual(t, v1, v2)
}

func TestStepPressesButtonUnderPointer(t *testing.T) {
	s, tracker := newSimulator(t, "window-inky-impression-5.7", "", "", &fakeWindow{})

	assert.True(t, s.Step([]input.Event{input.PointerUp(image.Pt(10, 150))}))

	status := tracker.Snapshot()
	assert.Positive(t, status["B"])
	assert.Zero(t, status["A"])
	assert.Zero(t, status["C"])
	assert.Zero(t, status["D"])

	assert.True(t, s.Step([]input.Event{input.PointerUp(image.Pt(300, 300))}))
	assert.Zero(t, tracker.Snapshot()["A"])
}

func TestButtonsHover(t *testing.T) {
	s, _ := newSimulator(t, "window-inky-impression-5.7", "", "", &fakeWindow{})
	for _, b := range s.Buttons() {
		assert.False(t, b.Hover, b.Label)
	}

	s.Step([]input.Event{input.PointerMove(image.Pt(5, 40))})
	btns := s.Buttons()
	require.Len(t, btns, 4)
	assert.Equal(t, "A", btns[0].Label)
	assert.True(t, btns[0].Hover)
	assert.False(t, btns[1].Hover)
	assert.Equal(t, color.NRGBA{R: 0x77, G: 0x77, B: 0x77, A: 0xff}, s.ButtonColor())
}

func TestButtonAtPrefersFirstLabel(t *testing.T) {
	s, _ := newSimulator(t, "window", "Z=0,0,50,50;M=10,10,40,40", "", &fakeWindow{})
	assert.Equal(t, "M", s.ButtonAt(image.Pt(20, 20)))
	assert.Equal(t, "Z", s.ButtonAt(image.Pt(45, 45)))
	assert.Equal(t, "", s.ButtonAt(image.Pt(60, 60)))
}

func TestQuitEventsStopLoop(t *testing.T) {
	for _, e := range []input.Event{input.Quit(), input.KeyDown("Escape"), input.KeyDown("q")} {
		s, _ := newSimulator(t, "window", "", "", &fakeWindow{})
		assert.False(t, s.Step([]input.Event{e}), e)
		assert.True(t, s.ShutdownRequested())
	}
}

func TestRunStopsOnShutdownFromOtherGoroutine(t *testing.T) {
	win := &fakeWindow{}
	s, _ := newSimulator(t, "window", "", "title=x", win)

	done := make(chan error, 1)
	go func() { done <- s.Run() }()
	time.Sleep(10 * time.Millisecond)
	s.Shutdown()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Shutdown")
	}
	assert.Equal(t, "x", win.opened.Title)

	require.NoError(t, s.Close())
	assert.True(t, win.closed)
}

func TestRunWindowErrorRequestsShutdown(t *testing.T) {
	s, _ := newSimulator(t, "window", "", "", &fakeWindow{err: errors.New("no display")})
	err := s.Run()
	require.Error(t, err)
	assert.True(t, s.ShutdownRequested())
}

func TestClickHitsWindowRectAfterLargerFrame(t *testing.T) {
	cfg, err := config.Resolve("window-inky-impression-5.7", "", "")
	require.NoError(t, err)
	clock := clockwork.NewFakeClock()
	tracker := buttons.NewTracker(cfg.Labels(), clock)
	s, err := New(cfg, tracker, &fakeWindow{})
	require.NoError(t, err)
	require.NoError(t, s.Update(image.NewRGBA(image.Rect(0, 0, 1200, 896))))

	window := image.Pt(s.Options().Width, s.Options().Height)
	require.Equal(t, image.Pt(600, 448), window)

	// window at its configured size
	click := input.ToWindow(window, window, image.Pt(10, 50))
	s.Step([]input.Event{input.PointerUp(click)})
	first := tracker.Snapshot()["A"]
	require.Positive(t, first)

	// window resized to twice its configured size
	clock.Advance(time.Second)
	click = input.ToWindow(image.Pt(1200, 896), window, image.Pt(20, 100))
	assert.Equal(t, image.Pt(10, 50), click)
	s.Step([]input.Event{input.PointerUp(click)})
	assert.Greater(t, tracker.Snapshot()["A"], first)
	assert.Zero(t, tracker.Snapshot()["B"])
}

func TestOverlayStaysInWindowCoordinates(t *testing.T) {
	s, _ := newSimulator(t, "window-inky-impression-5.7", "", "", &fakeWindow{})
	before := s.Buttons()
	require.NoError(t, s.Update(image.NewRGBA(image.Rect(0, 0, 1200, 896))))
	assert.Equal(t, before, s.Buttons())

	window := image.Pt(s.Options().Width, s.Options().Height)
	x, y, w, h := input.RectToView(window, window, s.Buttons()[0].Rect)
	assert.Equal(t, [4]float32{0, 37, 37, 37}, [4]float32{x, y, w, h})
}
