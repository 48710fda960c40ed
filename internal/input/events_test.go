package input

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsQuitRequest(t *testing.T) {
	assert.True(t, Quit().IsQuitRequest())
	assert.True(t, KeyDown("Escape").IsQuitRequest())
	assert.True(t, KeyDown("Q").IsQuitRequest())
	assert.False(t, KeyDown("A").IsQuitRequest())
	assert.False(t, PointerUp(image.Pt(1, 2)).IsQuitRequest())
}

func TestPointerEvents(t *testing.T) {
	e := PointerUp(image.Pt(10, 20))
	assert.Equal(t, EventPointerUp, e.Type)
	assert.Equal(t, image.Pt(10, 20), e.Point())

	assert.Equal(t, EventPointerMove, PointerMove(image.Pt(3, 4)).Type)
}

func TestStretchTransform(t *testing.T) {
	sx, sy := StretchTransform(1200, 448, 600, 448)
	assert.Equal(t, 2.0, sx)
	assert.Equal(t, 1.0, sy)

	sx, sy = StretchTransform(100, 100, 0, 0)
	assert.Equal(t, 1.0, sx)
	assert.Equal(t, 1.0, sy)
}

func TestToWindow(t *testing.T) {
	view := image.Pt(1200, 896)
	window := image.Pt(600, 448)

	assert.Equal(t, image.Pt(10, 40), ToWindow(view, window, image.Pt(20, 80)))
	assert.Equal(t, image.Pt(0, 0), ToWindow(view, window, image.Pt(1, 1)))
	assert.Equal(t, image.Pt(20, 80), ToWindow(window, window, image.Pt(20, 80)))
}

func TestRectToView(t *testing.T) {
	x, y, w, h := RectToView(image.Pt(1200, 448), image.Pt(600, 448), image.Rect(0, 37, 37, 74))
	assert.Equal(t, float32(0), x)
	assert.Equal(t, float32(37), y)
	assert.Equal(t, float32(74), w)
	assert.Equal(t, float32(37), h)
}
