package adjust

import "math"

// Geometry limits.
const (
	MinZoom      = 0.5
	MaxZoom      = 3.0
	ZoomStep     = 0.1
	MinRotation  = -180.0
	MaxRotation  = 180.0
	RotationStep = 5.0
)

// Geometry is the placement state of the image: a uniform zoom factor and a
// rotation in degrees. It affects size and placement only, never color.
type Geometry struct {
	Zoom     float64 `json:"zoom"`
	Rotation float64 `json:"rotation"`
}

// DefaultGeometry returns zoom 1, rotation 0.
func DefaultGeometry() Geometry {
	return Geometry{Zoom: 1, Rotation: 0}
}

// Clamp returns g with both fields inside their domains. A NaN field falls
// back to its default.
func (g Geometry) Clamp() Geometry {
	if math.IsNaN(g.Zoom) {
		g.Zoom = 1
	}
	if math.IsNaN(g.Rotation) {
		g.Rotation = 0
	}
	g.Zoom = math.Max(MinZoom, math.Min(MaxZoom, g.Zoom))
	g.Rotation = math.Max(MinRotation, math.Min(MaxRotation, g.Rotation))
	return g
}

// StepZoom moves zoom by ZoomStep in the direction of dir, rounding to two
// decimals so repeated steps do not accumulate float error.
func (g Geometry) StepZoom(dir int) Geometry {
	if dir == 0 {
		return g
	}
	g.Zoom = round2(g.Zoom + ZoomStep*sign(dir))
	return g.Clamp()
}

// StepRotation moves rotation by RotationStep degrees in the direction of dir.
func (g Geometry) StepRotation(dir int) Geometry {
	if dir == 0 {
		return g
	}
	g.Rotation += RotationStep * sign(dir)
	return g.Clamp()
}

// Radians returns the rotation converted to radians.
func (g Geometry) Radians() float64 {
	return g.Rotation * math.Pi / 180
}

func sign(dir int) float64 {
	if dir < 0 {
		return -1
	}
	return 1
}
