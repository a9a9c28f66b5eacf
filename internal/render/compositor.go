package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/draw"

	"github.com/ironsheep/image-adjust-mcp/internal/adjust"
)

// ErrUnknownCompareMode is returned by ParseCompareMode.
var ErrUnknownCompareMode = errors.New("unknown compare mode")

// CompareMode selects how the preview shows the edit.
type CompareMode string

const (
	// SplitView stacks the filtered image over the original and clips it at
	// the split position, so the original shows on the right.
	SplitView CompareMode = "split"

	// BeforeOnly shows only the unfiltered original.
	BeforeOnly CompareMode = "before"
)

// DefaultSplit is the initial split position, in percent of the width.
const DefaultSplit = 50

// Default preview viewport, matching the editor canvas.
const (
	PreviewWidth  = 960
	PreviewHeight = 560
)

// ParseCompareMode accepts "split" (also "after", "split-view") and
// "before" (also "before-only", "original").
func ParseCompareMode(s string) (CompareMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "split", "split-view", "after":
		return SplitView, nil
	case "before", "before-only", "original":
		return BeforeOnly, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCompareMode, s)
}

// LayerKind identifies a preview layer.
type LayerKind string

const (
	LayerOriginal LayerKind = "original"
	LayerFiltered LayerKind = "filtered"
)

// Layer is one stacked image in the preview.
type Layer struct {
	Kind   LayerKind `json:"kind"`
	Z      int       `json:"z"`
	Recipe Recipe    `json:"recipe"`
	Clip   ClipInset `json:"clip"`

	// CSS equivalents of the recipe, for clients that render with a browser.
	Filter    string `json:"filter"`
	Transform string `json:"transform_css"`
	ClipPath  string `json:"clip_path"`
}

// Preview is the full description of what the live preview shows. Layers are
// sorted bottom to top.
type Preview struct {
	Mode   CompareMode `json:"mode"`
	Split  float64     `json:"split"`
	Layers []Layer     `json:"layers"`
}

// ClampSplit limits a split position to [0, 100].
func ClampSplit(p float64) float64 {
	if math.IsNaN(p) {
		return DefaultSplit
	}
	return math.Max(0, math.Min(100, p))
}

// BeforeLayer is the unfiltered original under the current geometry.
func BeforeLayer(s adjust.Snapshot) Layer {
	return newLayer(LayerOriginal, 1, Recipe{Transform: BuildTransform(s.Geometry)}, ClipInset{})
}

// AfterLayer is the filtered image, clipped to the part left of split.
func AfterLayer(s adjust.Snapshot, split float64) Layer {
	clip := ClipInset{Right: 100 - ClampSplit(split)}
	return newLayer(LayerFiltered, 2, NewRecipe(s), clip)
}

func newLayer(kind LayerKind, z int, r Recipe, clip ClipInset) Layer {
	return Layer{
		Kind:      kind,
		Z:         z,
		Recipe:    r,
		Clip:      clip,
		Filter:    r.Chain.CSS(),
		Transform: r.Transform.CSS(),
		ClipPath:  clip.CSS(),
	}
}

// Compose derives the preview from the current edit state. It is a pure
// function; callers recompute it on every render instead of storing it.
func Compose(s adjust.Snapshot, mode CompareMode, split float64) Preview {
	split = ClampSplit(split)
	p := Preview{Mode: mode, Split: split}

	switch mode {
	case BeforeOnly:
		p.Layers = []Layer{BeforeLayer(s)}
	default:
		p.Mode = SplitView
		p.Layers = []Layer{BeforeLayer(s), AfterLayer(s, split)}
	}
	return p
}

// Viewport describes the preview surface.
type Viewport struct {
	Width      int
	Height     int
	Background color.Color
}

// RenderPreview rasterizes p. The image is fitted inside the viewport without
// upscaling, centered, and then zoomed and rotated, so content that grows past
// the viewport is cropped like an overflow-hidden canvas.
func RenderPreview(src image.Image, p Preview, vp Viewport) *image.RGBA {
	if vp.Width <= 0 {
		vp.Width = PreviewWidth
	}
	if vp.Height <= 0 {
		vp.Height = PreviewHeight
	}

	dst := image.NewRGBA(image.Rect(0, 0, vp.Width, vp.Height))
	if vp.Background != nil {
		draw.Draw(dst, dst.Bounds(), image.NewUniform(vp.Background), image.Point{}, draw.Src)
	}

	at := Centered(dst.Bounds(), FitScale(src.Bounds(), vp.Width, vp.Height))
	for _, l := range p.Layers {
		l.Recipe.Draw(dst, src, l.Clip, at)
	}
	return dst
}

// FitScale returns the contain-fit factor of bounds inside w x h, never above 1.
func FitScale(bounds image.Rectangle, w, h int) float64 {
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return 1
	}
	f := math.Min(float64(w)/float64(bounds.Dx()), float64(h)/float64(bounds.Dy()))
	return math.Min(1, f)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
