package session

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownPolicy is returned by ParseGeometryPolicy.
var ErrUnknownPolicy = errors.New("unknown geometry policy")

// GeometryPolicy decides whether zoom and rotation take part in history.
type GeometryPolicy string

const (
	// GeometryLive keeps geometry out of history: zoom and rotation changes
	// are never committed, and undo/redo restore only the adjustment vector.
	GeometryLive GeometryPolicy = "live"

	// GeometryHistoried commits every geometry change, and undo/redo restore
	// geometry together with the adjustment vector.
	GeometryHistoried GeometryPolicy = "historied"
)

// ParseGeometryPolicy accepts "live" and "historied"; empty selects live.
func ParseGeometryPolicy(s string) (GeometryPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "live":
		return GeometryLive, nil
	case "historied", "history":
		return GeometryHistoried, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}
