package render

import (
	"image"
	"image/color"
	"math"

	bildadjust "github.com/anthonynsimon/bild/adjust"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/image-adjust-mcp/internal/adjust"
)

// ApplyChain runs every non-identity filter of chain over src, in order, and
// returns the filtered copy. src is never modified. When the whole chain is an
// identity src is returned as is.
//
// The color functions follow the W3C Filter Effects definitions that CSS
// filters use:
//
//	brightness(a)  c * a
//	contrast(a)    (c - 0.5) * a + 0.5
//	saturate(s)    luminance-preserving saturation matrix
//	grayscale(a)   grayscale matrix blended by a
//	sepia(a)       sepia matrix blended by a
//	invert(a)      c * (1 - a) + (1 - c) * a
//	hue-rotate(θ)  luminance-preserving hue rotation matrix
//	blur(σ)        Gaussian blur with standard deviation σ pixels
//
// Each step clamps to 8 bits before the next one runs.
func ApplyChain(src image.Image, chain FilterChain) image.Image {
	img := src
	for _, f := range chain {
		if f.Identity() {
			continue
		}
		img = applyFilter(img, f)
	}
	return img
}

func applyFilter(img image.Image, f Filter) image.Image {
	switch f.Channel {
	case adjust.Brightness:
		return bildadjust.Apply(img, brightnessFunc(f.Value/100))
	case adjust.Contrast:
		return bildadjust.Apply(img, contrastFunc(f.Value/100))
	case adjust.Saturation:
		return bildadjust.Apply(img, colorMatrix(saturateMatrix(f.Value/100)))
	case adjust.Grayscale:
		return bildadjust.Apply(img, colorMatrix(grayscaleMatrix(math.Min(f.Value/100, 1))))
	case adjust.Sepia:
		return bildadjust.Apply(img, colorMatrix(sepiaMatrix(math.Min(f.Value/100, 1))))
	case adjust.Invert:
		return bildadjust.Apply(img, invertFunc(math.Min(f.Value/100, 1)))
	case adjust.HueRotate:
		return bildadjust.Apply(img, colorMatrix(hueRotateMatrix(f.Value*math.Pi/180)))
	case adjust.Blur:
		return imaging.Blur(img, f.Value)
	}
	return img
}

// matrix3 is a row-major 3x3 color matrix applied to (R, G, B).
type matrix3 [9]float64

func saturateMatrix(s float64) matrix3 {
	return matrix3{
		0.213 + 0.787*s, 0.715 - 0.715*s, 0.072 - 0.072*s,
		0.213 - 0.213*s, 0.715 + 0.285*s, 0.072 - 0.072*s,
		0.213 - 0.213*s, 0.715 - 0.715*s, 0.072 + 0.928*s,
	}
}

func grayscaleMatrix(a float64) matrix3 {
	k := 1 - a
	return matrix3{
		0.2126 + 0.7874*k, 0.7152 - 0.7152*k, 0.0722 - 0.0722*k,
		0.2126 - 0.2126*k, 0.7152 + 0.2848*k, 0.0722 - 0.0722*k,
		0.2126 - 0.2126*k, 0.7152 - 0.7152*k, 0.0722 + 0.9278*k,
	}
}

func sepiaMatrix(a float64) matrix3 {
	k := 1 - a
	return matrix3{
		0.393 + 0.607*k, 0.769 - 0.769*k, 0.189 - 0.189*k,
		0.349 - 0.349*k, 0.686 + 0.314*k, 0.168 - 0.168*k,
		0.272 - 0.272*k, 0.534 - 0.534*k, 0.131 + 0.869*k,
	}
}

func hueRotateMatrix(rad float64) matrix3 {
	sin, cos := math.Sincos(rad)
	return matrix3{
		0.213 + cos*0.787 - sin*0.213, 0.715 - cos*0.715 - sin*0.715, 0.072 - cos*0.072 + sin*0.928,
		0.213 - cos*0.213 + sin*0.143, 0.715 + cos*0.285 + sin*0.140, 0.072 - cos*0.072 - sin*0.283,
		0.213 - cos*0.213 - sin*0.787, 0.715 - cos*0.715 + sin*0.715, 0.072 + cos*0.928 + sin*0.072,
	}
}

// colorMatrix returns a pixel function for bild's adjust.Apply. The matrices
// have no offset term, so applying them to premultiplied values is exact.
func colorMatrix(m matrix3) func(color.RGBA) color.RGBA {
	return func(c color.RGBA) color.RGBA {
		r, g, b := float64(c.R), float64(c.G), float64(c.B)
		return color.RGBA{
			R: clampChannel(m[0]*r+m[1]*g+m[2]*b, c.A),
			G: clampChannel(m[3]*r+m[4]*g+m[5]*b, c.A),
			B: clampChannel(m[6]*r+m[7]*g+m[8]*b, c.A),
			A: c.A,
		}
	}
}

// brightnessFunc scales each component by a. Scaling commutes with
// premultiplication, so only the clamp needs the alpha.
func brightnessFunc(a float64) func(color.RGBA) color.RGBA {
	return func(c color.RGBA) color.RGBA {
		return color.RGBA{
			R: clampChannel(float64(c.R)*a, c.A),
			G: clampChannel(float64(c.G)*a, c.A),
			B: clampChannel(float64(c.B)*a, c.A),
			A: c.A,
		}
	}
}

// contrastFunc pivots each component around mid-gray. On premultiplied
// values the pivot is half the alpha, not 0.5.
func contrastFunc(a float64) func(color.RGBA) color.RGBA {
	return func(c color.RGBA) color.RGBA {
		mid := float64(c.A) / 2
		con := func(v uint8) uint8 {
			return clampChannel((float64(v)-mid)*a+mid, c.A)
		}
		return color.RGBA{R: con(c.R), G: con(c.G), B: con(c.B), A: c.A}
	}
}

// invertFunc works on premultiplied values, where "1 - c" becomes "alpha - c".
func invertFunc(a float64) func(color.RGBA) color.RGBA {
	return func(c color.RGBA) color.RGBA {
		alpha := float64(c.A)
		inv := func(v uint8) uint8 {
			x := float64(v)
			return clampChannel(x*(1-a)+(alpha-x)*a, c.A)
		}
		return color.RGBA{R: inv(c.R), G: inv(c.G), B: inv(c.B), A: c.A}
	}
}

// clampChannel rounds v and keeps it a valid premultiplied component.
func clampChannel(v float64, alpha uint8) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > float64(alpha) {
		return alpha
	}
	return uint8(v)
}
