package render

import (
	"fmt"
	"image"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGBColor is an 8-bit RGB color.
type RGBColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// RGBAColor is an 8-bit, non-premultiplied RGBA color.
type RGBAColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// HSLColor holds hue in degrees (0-360) and saturation and lightness in
// percent (0-100).
type HSLColor struct {
	H int `json:"h"`
	S int `json:"s"`
	L int `json:"l"`
}

// ColorResult is one color in several notations.
type ColorResult struct {
	Hex  string    `json:"hex"`
	RGB  RGBColor  `json:"rgb"`
	RGBA RGBAColor `json:"rgba"`
	HSL  HSLColor  `json:"hsl"`
}

// SampleColor returns the color at (x, y).
//
// Coordinates are relative to the image's bounds, so (0,0) is always the
// top-left pixel even for sub-images. A fully transparent pixel reports
// black with alpha 0.
func SampleColor(img image.Image, x, y int) (*ColorResult, error) {
	b := img.Bounds()
	px, py := b.Min.X+x, b.Min.Y+y
	if x < 0 || y < 0 || px >= b.Max.X || py >= b.Max.Y {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds %dx%d", x, y, b.Dx(), b.Dy())
	}

	c, ok := colorful.MakeColor(img.At(px, py))
	_, _, _, a := img.At(px, py).RGBA()
	if !ok {
		// MakeColor refuses alpha 0
		c = colorful.Color{}
	}

	r8, g8, b8 := c.RGB255()
	h, s, l := c.Hsl()
	return &ColorResult{
		Hex:  strings.ToUpper(c.Hex()),
		RGB:  RGBColor{R: r8, G: g8, B: b8},
		RGBA: RGBAColor{R: r8, G: g8, B: b8, A: uint8(a >> 8)},
		HSL:  HSLColor{H: int(h), S: int(s * 100), L: int(l * 100)},
	}, nil
}
