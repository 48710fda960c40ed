package simulator

import (
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var splashLines = []string{"Waiting for data...", "Press ESC to quit"}

// ParseRect parses "x1,y1,x2,y2" into a rectangle. Corners may be given in
// any order.
func ParseRect(spec string) (image.Rectangle, error) {
	parts := strings.Split(spec, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("rectangle %q: want x1,y1,x2,y2", spec)
	}
	var n [4]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("rectangle %q: %w", spec, err)
		}
		n[i] = v
	}
	r := image.Rect(n[0], n[1], n[2], n[3])
	if r.Empty() {
		return image.Rectangle{}, fmt.Errorf("rectangle %q is empty", spec)
	}
	return r, nil
}

// ParseHexColor parses #rrggbb or #rrggbbaa, with or without the leading #.
func ParseHexColor(s string) (color.NRGBA, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(raw) != 6 && len(raw) != 8 {
		return color.NRGBA{}, fmt.Errorf("colour %q: want #rrggbb or #rrggbbaa", s)
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("colour %q: %w", s, err)
	}
	c := color.NRGBA{R: b[0], G: b[1], B: b[2], A: 0xff}
	if len(b) == 4 {
		c.A = b[3]
	}
	return c, nil
}

// HoverColor is c at half its alpha, used to fill a hovered button.
func HoverColor(c color.NRGBA) color.NRGBA {
	c.A /= 2
	return c
}

// Splash renders the surface shown before the first frame arrives.
func Splash(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	d := &font.Drawer{Dst: img, Src: image.Black, Face: basicfont.Face7x13}
	lineHeight := basicfont.Face7x13.Metrics().Height.Ceil() + 4
	top := (h - lineHeight*len(splashLines)) / 2
	for i, line := range splashLines {
		x := (fixed.I(w) - d.MeasureString(line)) / 2
		d.Dot = fixed.Point26_6{X: x, Y: fixed.I(top + (i+1)*lineHeight)}
		d.DrawString(line)
	}
	return img
}
