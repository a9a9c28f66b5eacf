package adjust

import (
	"fmt"
	"math"
)

// Vector is the full set of adjustment channel values.
//
// Vector is comparable; two vectors are equal exactly when all eight channels
// are equal, which is how the session decides whether an edit is a no-op.
type Vector struct {
	Brightness float64 `json:"brightness"`
	Contrast   float64 `json:"contrast"`
	Saturation float64 `json:"saturation"`
	Grayscale  float64 `json:"grayscale"`
	Sepia      float64 `json:"sepia"`
	Invert     float64 `json:"invert"`
	HueRotate  float64 `json:"hueRotate"`
	Blur       float64 `json:"blur"`
}

// Delta is a partial update keyed by channel.
type Delta map[Channel]float64

// Defaults returns the identity vector: every channel at its default.
func Defaults() Vector {
	var v Vector
	for _, ch := range renderOrder {
		*v.field(ch) = domains[ch].Default
	}
	return v
}

func (v *Vector) field(ch Channel) *float64 {
	switch ch {
	case Brightness:
		return &v.Brightness
	case Contrast:
		return &v.Contrast
	case Saturation:
		return &v.Saturation
	case Grayscale:
		return &v.Grayscale
	case Sepia:
		return &v.Sepia
	case Invert:
		return &v.Invert
	case HueRotate:
		return &v.HueRotate
	case Blur:
		return &v.Blur
	}
	return nil
}

// Get returns the value of ch, or 0 for an unknown channel.
func (v Vector) Get(ch Channel) float64 {
	if p := v.field(ch); p != nil {
		return *p
	}
	return 0
}

// With returns a copy of v with ch set to value, clamped to the channel's
// domain and rounded to two decimals. Unknown channels and NaN values leave
// the copy unchanged.
func (v Vector) With(ch Channel, value float64) Vector {
	d, ok := domains[ch]
	if !ok || math.IsNaN(value) {
		return v
	}
	*v.field(ch) = round2(d.Clamp(value))
	return v
}

// Merge applies every entry of delta to a copy of v.
func (v Vector) Merge(delta Delta) Vector {
	for ch, value := range delta {
		v = v.With(ch, value)
	}
	return v
}

// Step moves ch by one increment in the direction of dir (-1 or +1). Any
// positive dir counts as +1, any negative as -1, and zero returns v unchanged.
func (v Vector) Step(ch Channel, dir int) Vector {
	d, ok := domains[ch]
	if !ok || dir == 0 {
		return v
	}
	if dir > 0 {
		dir = 1
	} else {
		dir = -1
	}
	return v.With(ch, v.Get(ch)+d.Step*float64(dir))
}

// Full returns v as a Delta touching all eight channels. Applying it
// overwrites every channel, which is how presets are applied.
func (v Vector) Full() Delta {
	out := make(Delta, len(renderOrder))
	for _, ch := range renderOrder {
		out[ch] = v.Get(ch)
	}
	return out
}

// Changed returns the channels whose value differs from the default.
func (v Vector) Changed() Delta {
	def := Defaults()
	out := make(Delta)
	for _, ch := range renderOrder {
		if v.Get(ch) != def.Get(ch) {
			out[ch] = v.Get(ch)
		}
	}
	return out
}

// IsDefault reports whether every channel is at its default.
func (v Vector) IsDefault() bool {
	return v == Defaults()
}

// String renders the vector in render order, e.g.
// "brightness=110 contrast=100 ... blur=0".
func (v Vector) String() string {
	s := ""
	for i, ch := range renderOrder {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%s=%g", ch, v.Get(ch))
	}
	return s
}
