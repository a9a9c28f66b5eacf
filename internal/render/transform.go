package render

import (
	"math"
	"strconv"

	"golang.org/x/image/math/f64"

	"github.com/ironsheep/image-adjust-mcp/internal/adjust"
)

// TransformOp names one step of the geometry transform.
type TransformOp string

const (
	OpTranslateCenter TransformOp = "translate-center"
	OpRotate          TransformOp = "rotate"
	OpScale           TransformOp = "scale"
)

// transformOrder is the order both renderers apply the geometry in.
var transformOrder = []TransformOp{OpTranslateCenter, OpRotate, OpScale}

// Transform is the geometry part of a render recipe. It only places the
// image; it never changes color.
type Transform struct {
	Zoom    float64       `json:"zoom"`
	Degrees float64       `json:"degrees"`
	Radians float64       `json:"radians"`
	Ops     []TransformOp `json:"ops"`
}

// BuildTransform derives the transform for g.
func BuildTransform(g adjust.Geometry) Transform {
	g = g.Clamp()
	ops := make([]TransformOp, len(transformOrder))
	copy(ops, transformOrder)
	return Transform{
		Zoom:    g.Zoom,
		Degrees: g.Rotation,
		Radians: g.Radians(),
		Ops:     ops,
	}
}

// CSS renders the transform as a CSS transform property value. A uniform
// scale commutes with a rotation, so this matches the rotate-then-scale order
// used when rasterizing.
func (t Transform) CSS() string {
	return "scale(" + strconv.FormatFloat(t.Zoom, 'f', -1, 64) + ") rotate(" +
		strconv.FormatFloat(t.Degrees, 'f', -1, 64) + "deg)"
}

// Matrix returns the affine map from source pixel coordinates to surface
// coordinates. The source rectangle's center lands on (cx, cy), then the
// image is rotated and scaled by the zoom times base. base is the extra
// uniform scale of the surface, e.g. the fit factor of a preview viewport.
func (t Transform) Matrix(srcCenterX, srcCenterY, cx, cy, base float64) f64.Aff3 {
	z := t.Zoom * base
	sin, cos := math.Sincos(t.Radians)
	a, b := z*cos, -z*sin
	d, e := z*sin, z*cos
	return f64.Aff3{
		a, b, cx - (a*srcCenterX + b*srcCenterY),
		d, e, cy - (d*srcCenterX + e*srcCenterY),
	}
}
