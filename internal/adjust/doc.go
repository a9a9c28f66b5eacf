// Package adjust holds the non-destructive adjustment model: the eight color
// channels, their domains, the geometry state and the preset catalog.
//
// Everything in this package is a value type. A Vector or Geometry is never
// mutated in place by the operations here; Merge, Step and With all return a
// new candidate that the caller (the session controller) decides whether to
// adopt and commit to history.
//
// # Channels
//
// The channel order returned by Channels is the render order. The compositor
// and the export engine both build their filter chain by walking it, so the
// order must not change:
//
//	brightness, contrast, saturation, grayscale, sepia, invert, hueRotate, blur
//
// # Domains
//
// Every value stored in a Vector lies inside its channel's domain and carries
// at most two decimal places. Out-of-range input is clamped silently, never
// reported as an error:
//
//	channel     domain    default  step
//	brightness  [0,200]   100      5
//	contrast    [0,200]   100      5
//	saturation  [0,200]   100      5
//	grayscale   [0,100]   0        5
//	sepia       [0,100]   0        5
//	invert      [0,100]   0        5
//	hueRotate   [0,360]   0        5
//	blur        [0,10]    0        0.2
//
// Geometry (zoom and rotation) has its own domains and lives beside the
// Vector rather than inside it.
package adjust
