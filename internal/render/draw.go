package render

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	"github.com/ironsheep/image-adjust-mcp/internal/adjust"
)

// Recipe is the shared rendering description of one image layer: which
// filters to run, in which order, and how to place the result. The live
// preview and the export engine both draw through Recipe.Draw.
type Recipe struct {
	Chain     FilterChain `json:"filters"`
	Transform Transform   `json:"transform"`
}

// NewRecipe builds the recipe for a filtered layer.
func NewRecipe(s adjust.Snapshot) Recipe {
	return Recipe{
		Chain:     BuildFilterChain(s.Vector),
		Transform: BuildTransform(s.Geometry),
	}
}

// Placement anchors a layer on a surface.
type Placement struct {
	// CenterX and CenterY are the surface coordinates the image center maps to.
	CenterX float64
	CenterY float64

	// Base is a uniform scale applied on top of the zoom. 1 draws the image
	// at its native size.
	Base float64
}

// Centered places a layer at the middle of bounds with the given base scale.
func Centered(bounds image.Rectangle, base float64) Placement {
	return Placement{
		CenterX: float64(bounds.Min.X) + float64(bounds.Dx())/2,
		CenterY: float64(bounds.Min.Y) + float64(bounds.Dy())/2,
		Base:    base,
	}
}

// Draw filters src, applies clip in the image's own coordinate space, then
// composites the result over dst through the geometry transform.
func (r Recipe) Draw(dst draw.Image, src image.Image, clip ClipInset, at Placement) {
	img := ApplyChain(src, r.Chain)
	if !clip.None() {
		img = clipLocal(img, clip)
	}

	if at.Base == 0 {
		at.Base = 1
	}
	b := img.Bounds()
	cx := float64(b.Min.X) + float64(b.Dx())/2
	cy := float64(b.Min.Y) + float64(b.Dy())/2
	m := r.Transform.Matrix(cx, cy, at.CenterX, at.CenterY, at.Base)

	draw.CatmullRom.Transform(dst, m, img, b, draw.Over, nil)
}

// ClipInset is a CSS inset() clip in percentages of the layer's own width and
// height. The zero value clips nothing.
type ClipInset struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// None reports whether the inset removes nothing.
func (c ClipInset) None() bool {
	return c.Top <= 0 && c.Right <= 0 && c.Bottom <= 0 && c.Left <= 0
}

// CSS renders the inset as a clip-path value.
func (c ClipInset) CSS() string {
	if c.None() {
		return "none"
	}
	return "inset(" + pct(c.Top) + " " + pct(c.Right) + " " + pct(c.Bottom) + " " + pct(c.Left) + ")"
}

// Visible returns the part of bounds the inset keeps.
func (c ClipInset) Visible(bounds image.Rectangle) image.Rectangle {
	w, h := float64(bounds.Dx()), float64(bounds.Dy())
	r := image.Rect(
		bounds.Min.X+int(math.Round(w*c.Left/100)),
		bounds.Min.Y+int(math.Round(h*c.Top/100)),
		bounds.Max.X-int(math.Round(w*c.Right/100)),
		bounds.Max.Y-int(math.Round(h*c.Bottom/100)),
	)
	return r.Intersect(bounds)
}

// clipLocal returns a copy of img with everything outside the inset made
// transparent.
func clipLocal(img image.Image, clip ClipInset) image.Image {
	src := imaging.Clone(img)
	out := image.NewNRGBA(src.Bounds())
	visible := clip.Visible(src.Bounds())
	if !visible.Empty() {
		draw.Draw(out, visible, src, visible.Min, draw.Src)
	}
	return out
}

func pct(v float64) string {
	if v == 0 {
		return "0"
	}
	return formatFloat(v) + "%"
}
