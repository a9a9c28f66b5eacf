package adjust

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrUnknownChannel is returned when a channel name does not match any of the
// eight adjustment channels.
var ErrUnknownChannel = errors.New("unknown adjustment channel")

// Channel names one adjustment channel. The string value is the wire name used
// by clients (camelCase, matching the JSON field of Vector).
type Channel string

const (
	Brightness Channel = "brightness"
	Contrast   Channel = "contrast"
	Saturation Channel = "saturation"
	Grayscale  Channel = "grayscale"
	Sepia      Channel = "sepia"
	Invert     Channel = "invert"
	HueRotate  Channel = "hueRotate"
	Blur       Channel = "blur"
)

// renderOrder is the single source of the channel order.
var renderOrder = [...]Channel{
	Brightness,
	Contrast,
	Saturation,
	Grayscale,
	Sepia,
	Invert,
	HueRotate,
	Blur,
}

// Channels returns the eight channels in render order.
func Channels() []Channel {
	out := make([]Channel, len(renderOrder))
	copy(out, renderOrder[:])
	return out
}

// Domain describes the legal range, default value and increment of a channel.
type Domain struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Default float64 `json:"default"`
	Step    float64 `json:"step"`
}

var domains = map[Channel]Domain{
	Brightness: {Min: 0, Max: 200, Default: 100, Step: 5},
	Contrast:   {Min: 0, Max: 200, Default: 100, Step: 5},
	Saturation: {Min: 0, Max: 200, Default: 100, Step: 5},
	Grayscale:  {Min: 0, Max: 100, Default: 0, Step: 5},
	Sepia:      {Min: 0, Max: 100, Default: 0, Step: 5},
	Invert:     {Min: 0, Max: 100, Default: 0, Step: 5},
	HueRotate:  {Min: 0, Max: 360, Default: 0, Step: 5},
	Blur:       {Min: 0, Max: 10, Default: 0, Step: 0.2},
}

// DomainOf returns the domain of ch. The second result is false for an
// unknown channel.
func DomainOf(ch Channel) (Domain, bool) {
	d, ok := domains[ch]
	return d, ok
}

// Clamp limits v to [d.Min, d.Max].
func (d Domain) Clamp(v float64) float64 {
	if v < d.Min {
		return d.Min
	}
	if v > d.Max {
		return d.Max
	}
	return v
}

// Valid reports whether ch is one of the eight channels.
func (ch Channel) Valid() bool {
	_, ok := domains[ch]
	return ok
}

// ParseChannel resolves a client-supplied channel name. Matching is
// case-insensitive and also accepts the CSS spellings "saturate" and
// "hue-rotate".
func ParseChannel(name string) (Channel, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case "saturate":
		return Saturation, nil
	case "hue-rotate", "hue_rotate", "hue":
		return HueRotate, nil
	}
	for _, ch := range renderOrder {
		if strings.ToLower(string(ch)) == key {
			return ch, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownChannel, name)
}

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
