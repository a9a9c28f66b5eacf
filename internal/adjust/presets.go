package adjust

import (
	"strings"
	"unicode"
)

// Preset is a named template holding a complete Vector.
type Preset struct {
	Name   string `json:"name"`
	Vector Vector `json:"vector"`
}

// catalog is kept in display order.
var catalog = []Preset{
	{
		Name: "Warm",
		Vector: Vector{
			Brightness: 110, Contrast: 105, Saturation: 120,
			Sepia: 30, HueRotate: 10,
		},
	},
	{
		Name: "BlackWhite",
		Vector: Vector{
			Brightness: 100, Contrast: 100, Saturation: 0,
			Grayscale: 100,
		},
	},
	{
		Name: "Vintage",
		Vector: Vector{
			Brightness: 95, Contrast: 90, Saturation: 80,
			Grayscale: 10, Sepia: 40, HueRotate: 15, Blur: 0.5,
		},
	},
	{
		Name: "CoolBlue",
		Vector: Vector{
			Brightness: 105, Contrast: 110, Saturation: 100,
			HueRotate: 180,
		},
	},
}

// Presets returns the catalog in display order.
func Presets() []Preset {
	out := make([]Preset, len(catalog))
	copy(out, catalog)
	return out
}

// LookupPreset finds a preset by key ("BlackWhite") or label ("Black White"),
// ignoring case and spaces.
func LookupPreset(name string) (Preset, bool) {
	key := normalizePresetName(name)
	for _, p := range catalog {
		if normalizePresetName(p.Name) == key {
			return p, true
		}
	}
	return Preset{}, false
}

// Label returns the human readable name, splitting camel case:
// "BlackWhite" becomes "Black White".
func (p Preset) Label() string {
	var b strings.Builder
	for i, r := range p.Name {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func normalizePresetName(s string) string {
	s = strings.ToLower(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' || r == '_' {
			return -1
		}
		return r
	}, s)
}
