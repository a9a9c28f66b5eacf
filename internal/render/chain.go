package render

import (
	"strconv"
	"strings"

	"github.com/ironsheep/image-adjust-mcp/internal/adjust"
)

// Unit is the CSS unit a filter function takes.
type Unit string

const (
	Percent Unit = "%"
	Degrees Unit = "deg"
	Pixels  Unit = "px"
)

// Filter is one step of a filter chain, e.g. brightness(110%).
type Filter struct {
	Func    string         `json:"func"`
	Channel adjust.Channel `json:"channel"`
	Value   float64        `json:"value"`
	Unit    Unit           `json:"unit"`
}

// FilterChain is an ordered list of filters. Order matters: filters are
// applied one after another, left to right.
type FilterChain []Filter

// cssFuncs maps channels to CSS filter function names and units.
var cssFuncs = map[adjust.Channel]struct {
	name string
	unit Unit
}{
	adjust.Brightness: {"brightness", Percent},
	adjust.Contrast:   {"contrast", Percent},
	adjust.Saturation: {"saturate", Percent},
	adjust.Grayscale:  {"grayscale", Percent},
	adjust.Sepia:      {"sepia", Percent},
	adjust.Invert:     {"invert", Percent},
	adjust.HueRotate:  {"hue-rotate", Degrees},
	adjust.Blur:       {"blur", Pixels},
}

// BuildFilterChain derives the filter chain for v. It walks adjust.Channels,
// so the preview and the export always see the same order.
func BuildFilterChain(v adjust.Vector) FilterChain {
	channels := adjust.Channels()
	chain := make(FilterChain, 0, len(channels))
	for _, ch := range channels {
		fn := cssFuncs[ch]
		chain = append(chain, Filter{
			Func:    fn.name,
			Channel: ch,
			Value:   v.Get(ch),
			Unit:    fn.unit,
		})
	}
	return chain
}

// Identity reports whether the filter leaves pixels unchanged.
func (f Filter) Identity() bool {
	d, ok := adjust.DomainOf(f.Channel)
	if !ok {
		return true
	}
	if f.Channel == adjust.HueRotate {
		// 0 and 360 degrees are the same rotation
		return f.Value == 0 || f.Value == 360
	}
	return f.Value == d.Default
}

// Identity reports whether every filter in the chain is an identity.
func (c FilterChain) Identity() bool {
	for _, f := range c {
		if !f.Identity() {
			return false
		}
	}
	return true
}

// CSS renders the filter function, e.g. "hue-rotate(15deg)".
func (f Filter) CSS() string {
	return f.Func + "(" + strconv.FormatFloat(f.Value, 'f', -1, 64) + string(f.Unit) + ")"
}

// CSS renders the chain as a CSS filter property value. An empty chain
// renders as "none".
func (c FilterChain) CSS() string {
	if len(c) == 0 {
		return "none"
	}
	parts := make([]string, len(c))
	for i, f := range c {
		parts[i] = f.CSS()
	}
	return strings.Join(parts, " ")
}
