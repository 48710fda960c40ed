package input

import (
	"image"
	"math"
)

// StretchTransform returns the per-axis scale that stretches a frame (or the
// logical window) to fill the view. Zero sizes map with scale 1.
func StretchTransform(viewW, viewH, frameW, frameH float64) (scaleX, scaleY float64) {
	scaleX, scaleY = 1, 1
	if frameW > 0 {
		scaleX = viewW / frameW
	}
	if frameH > 0 {
		scaleY = viewH / frameH
	}
	return
}

// ToWindow maps a view coordinate onto the logical window the button
// rectangles are defined in. The view is the window as currently sized.
func ToWindow(view, window image.Point, p image.Point) image.Point {
	sx, sy := StretchTransform(float64(view.X), float64(view.Y), float64(window.X), float64(window.Y))
	if sx == 0 || sy == 0 {
		return p
	}
	return image.Pt(
		int(math.Floor(float64(p.X)/sx)),
		int(math.Floor(float64(p.Y)/sy)),
	)
}

// RectToView maps a logical window rectangle into view coordinates.
func RectToView(view, window image.Point, r image.Rectangle) (x, y, w, h float32) {
	sx, sy := StretchTransform(float64(view.X), float64(view.Y), float64(window.X), float64(window.Y))
	return float32(float64(r.Min.X) * sx), float32(float64(r.Min.Y) * sy),
		float32(float64(r.Dx()) * sx), float32(float64(r.Dy()) * sy)
}
