package adjust

// Snapshot is the edit state recorded in history and read by the renderers:
// the channel values plus the geometry.
type Snapshot struct {
	Vector   Vector   `json:"adjustments"`
	Geometry Geometry `json:"geometry"`
}

// DefaultSnapshot returns default channels and default geometry.
func DefaultSnapshot() Snapshot {
	return Snapshot{Vector: Defaults(), Geometry: DefaultGeometry()}
}
