package adjust

import (
	"math"
	"testing"
)

func TestGeometry_Clamp(t *testing.T) {
	tests := []struct {
		name string
		in   Geometry
		want Geometry
	}{
		{"default", DefaultGeometry(), Geometry{Zoom: 1, Rotation: 0}},
		{"zoom low", Geometry{Zoom: 0.1, Rotation: 0}, Geometry{Zoom: 0.5, Rotation: 0}},
		{"zoom high", Geometry{Zoom: 9, Rotation: 0}, Geometry{Zoom: 3, Rotation: 0}},
		{"rotation low", Geometry{Zoom: 1, Rotation: -400}, Geometry{Zoom: 1, Rotation: -180}},
		{"rotation high", Geometry{Zoom: 1, Rotation: 181}, Geometry{Zoom: 1, Rotation: 180}},
		{"NaN", Geometry{Zoom: math.NaN(), Rotation: math.NaN()}, Geometry{Zoom: 1, Rotation: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Clamp(); got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestGeometry_StepZoom(t *testing.T) {
	g := DefaultGeometry()
	for i := 0; i < 3; i++ {
		g = g.StepZoom(1)
	}
	if g.Zoom != 1.3 {
		t.Errorf("zoom after 3 steps: got %v, want 1.3", g.Zoom)
	}
	for i := 0; i < 50; i++ {
		g = g.StepZoom(-1)
	}
	if g.Zoom != MinZoom {
		t.Errorf("zoom floor: got %v, want %v", g.Zoom, MinZoom)
	}
}

func TestGeometry_StepRotation(t *testing.T) {
	g := DefaultGeometry()
	for i := 0; i < 40; i++ {
		g = g.StepRotation(1)
	}
	if g.Rotation != MaxRotation {
		t.Errorf("rotation ceiling: got %v, want %v", g.Rotation, MaxRotation)
	}
	if got := g.StepRotation(-1).Rotation; got != 175 {
		t.Errorf("rotation step down: got %v, want 175", got)
	}
}

func TestGeometry_Radians(t *testing.T) {
	g := Geometry{Zoom: 1, Rotation: 90}
	if math.Abs(g.Radians()-math.Pi/2) > 1e-12 {
		t.Errorf("Radians: got %v, want %v", g.Radians(), math.Pi/2)
	}
}
