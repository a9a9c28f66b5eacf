package session

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/image-adjust-mcp/internal/adjust"
	"github.com/ironsheep/image-adjust-mcp/internal/render"
	"github.com/ironsheep/image-adjust-mcp/internal/source"
)

// createInMemoryResource returns a solid-color resource.
func createInMemoryResource(width, height int, c color.Color, origin string) *source.Resource {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return source.FromImage(img, origin)
}

func staticLoader(res *source.Resource) source.Loader {
	return func(ctx context.Context) (*source.Resource, error) {
		return res, nil
	}
}

// newLoadedSession returns a session with a small red image installed.
func newLoadedSession(t *testing.T, opts Options) *Session {
	t.Helper()
	s := New(opts)
	res := createInMemoryResource(20, 10, color.RGBA{200, 50, 50, 255}, "red")
	if _, err := s.Load(context.Background(), staticLoader(res)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return s
}

func TestNew_NoImage(t *testing.T) {
	s := New(Options{})
	view := s.State()

	if view.Phase != NoImage {
		t.Errorf("Phase: got %s, want %s", view.Phase, NoImage)
	}
	if view.HistoryLength != 1 {
		t.Errorf("HistoryLength: got %d, want 1", view.HistoryLength)
	}
	if view.GeometryPolicy != GeometryLive {
		t.Errorf("GeometryPolicy: got %s, want %s", view.GeometryPolicy, GeometryLive)
	}
	if view.CompareMode != render.SplitView || view.Split != render.DefaultSplit {
		t.Errorf("compare: got %s/%v", view.CompareMode, view.Split)
	}
}

func TestCommands_RequireImage(t *testing.T) {
	s := New(Options{})

	if _, _, err := s.ApplyAdjustment(adjust.Delta{adjust.Brightness: 110}); !errors.Is(err, ErrNoImage) {
		t.Errorf("ApplyAdjustment: got %v, want ErrNoImage", err)
	}
	if _, _, err := s.StepAdjustment(adjust.Blur, 1); !errors.Is(err, ErrNoImage) {
		t.Errorf("StepAdjustment: got %v, want ErrNoImage", err)
	}
	if _, _, err := s.Undo(); !errors.Is(err, ErrNoImage) {
		t.Errorf("Undo: got %v, want ErrNoImage", err)
	}
	if _, err := s.Reset(); !errors.Is(err, ErrNoImage) {
		t.Errorf("Reset: got %v, want ErrNoImage", err)
	}
	if _, _, err := s.SetGeometry(adjust.Geometry{Zoom: 2}); !errors.Is(err, ErrNoImage) {
		t.Errorf("SetGeometry: got %v, want ErrNoImage", err)
	}
	if _, err := s.Export(context.Background(), render.PNG); !errors.Is(err, ErrNoImage) {
		t.Errorf("Export: got %v, want ErrNoImage", err)
	}
	if _, _, err := s.Preview(render.Viewport{}); !errors.Is(err, ErrNoImage) {
		t.Errorf("Preview: got %v, want ErrNoImage", err)
	}
	if _, err := s.SampleColor(0, 0); !errors.Is(err, ErrNoImage) {
		t.Errorf("SampleColor: got %v, want ErrNoImage", err)
	}
	if r := <-s.ExportAsync(context.Background(), render.PNG); !errors.Is(r.Err, ErrNoImage) {
		t.Errorf("ExportAsync: got %v, want ErrNoImage", r.Err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	s := newLoadedSession(t, Options{})
	view := s.State()

	if view.Phase != ImageLoaded {
		t.Errorf("Phase: got %s, want %s", view.Phase, ImageLoaded)
	}
	if view.Adjustments != adjust.Defaults() {
		t.Errorf("Adjustments: got %+v", view.Adjustments)
	}
	if view.Geometry != adjust.DefaultGeometry() {
		t.Errorf("Geometry: got %+v", view.Geometry)
	}
	if view.HistoryLength != 1 || view.CanUndo || view.CanRedo {
		t.Errorf("history: len %d undo %v redo %v", view.HistoryLength, view.CanUndo, view.CanRedo)
	}
	if view.SessionID == "" {
		t.Error("SessionID should be set after load")
	}
	if view.Image == nil || view.Image.Width != 20 {
		t.Errorf("Image: got %+v", view.Image)
	}
}

func TestLoad_ResetsPreviousSession(t *testing.T) {
	s := newLoadedSession(t, Options{})
	first := s.State().SessionID

	for i := 0; i < 7; i++ {
		if _, _, err := s.StepAdjustment(adjust.Sepia, 1); err != nil {
			t.Fatal(err)
		}
	}
	if _, _, err := s.SetGeometry(adjust.Geometry{Zoom: 2, Rotation: 45}); err != nil {
		t.Fatal(err)
	}
	s.SetSplit(80)

	res := createInMemoryResource(5, 5, color.White, "white")
	view, err := s.Load(context.Background(), staticLoader(res))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if view.Phase != ImageLoaded {
		t.Errorf("Phase: got %s, want %s", view.Phase, ImageLoaded)
	}
	if view.Adjustments != adjust.Defaults() || view.Geometry != adjust.DefaultGeometry() {
		t.Errorf("state not reset: %+v %+v", view.Adjustments, view.Geometry)
	}
	if view.HistoryLength != 1 {
		t.Errorf("HistoryLength: got %d, want 1", view.HistoryLength)
	}
	if view.Split != render.DefaultSplit {
		t.Errorf("Split: got %v, want %v", view.Split, render.DefaultSplit)
	}
	if view.SessionID == first {
		t.Error("SessionID should change on load")
	}
}

func TestLoad_LoaderErrorKeepsState(t *testing.T) {
	s := newLoadedSession(t, Options{})
	if _, _, err := s.ApplyAdjustment(adjust.Delta{adjust.Invert: 100}); err != nil {
		t.Fatal(err)
	}

	bad := func(ctx context.Context) (*source.Resource, error) {
		return nil, source.ErrUnsupportedType
	}
	if _, err := s.Load(context.Background(), bad); !errors.Is(err, source.ErrUnsupportedType) {
		t.Fatalf("got %v, want ErrUnsupportedType", err)
	}

	view := s.State()
	if view.Adjustments.Invert != 100 || view.HistoryLength != 2 {
		t.Errorf("state changed after failed load: %+v len %d", view.Adjustments, view.HistoryLength)
	}
}

func TestInstall_StaleGenerationDropped(t *testing.T) {
	s := New(Options{})
	older := s.BeginLoad()
	newer := s.BeginLoad()

	resNew := createInMemoryResource(4, 4, color.White, "new")
	if _, err := s.Install(newer, resNew); err != nil {
		t.Fatalf("Install newer: %v", err)
	}

	resOld := createInMemoryResource(8, 8, color.Black, "old")
	if _, err := s.Install(older, resOld); !errors.Is(err, ErrSuperseded) {
		t.Fatalf("Install older: got %v, want ErrSuperseded", err)
	}
	if got := s.State().Image.Origin; got != "new" {
		t.Errorf("Image: got %q, want new", got)
	}
}

func TestLoadAsync_SupersededBySyncLoad(t *testing.T) {
	s := New(Options{})
	release := make(chan struct{})
	slowRes := createInMemoryResource(8, 8, color.Black, "slow")
	slow := func(ctx context.Context) (*source.Resource, error) {
		<-release
		return slowRes, nil
	}

	pending := s.LoadAsync(context.Background(), slow)

	fastRes := createInMemoryResource(4, 4, color.White, "fast")
	if _, err := s.Load(context.Background(), staticLoader(fastRes)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	close(release)

	r := <-pending
	if !errors.Is(r.Err, ErrSuperseded) {
		t.Fatalf("async result: got %v, want ErrSuperseded", r.Err)
	}
	if got := s.State().Image.Origin; got != "fast" {
		t.Errorf("Image: got %q, want fast", got)
	}
}

func TestLoadAsync_Installs(t *testing.T) {
	s := New(Options{})
	res := createInMemoryResource(3, 3, color.White, "async")
	r := <-s.LoadAsync(context.Background(), staticLoader(res))
	if r.Err != nil {
		t.Fatalf("LoadAsync: %v", r.Err)
	}
	if r.State.Phase != ImageLoaded {
		t.Errorf("Phase: got %s", r.State.Phase)
	}
}

func TestApplyAdjustment_DuplicateIsNoOp(t *testing.T) {
	s := newLoadedSession(t, Options{})

	_, changed, err := s.ApplyAdjustment(adjust.Delta{adjust.Brightness: 110})
	if err != nil || !changed {
		t.Fatalf("first apply: changed %v err %v", changed, err)
	}
	view, changed, err := s.ApplyAdjustment(adjust.Delta{adjust.Brightness: 110})
	if err != nil {
		t.Fatal(err)
	}
	if changed {
		t.Error("second identical apply reported a change")
	}
	if view.HistoryLength != 2 {
		t.Errorf("HistoryLength: got %d, want 2", view.HistoryLength)
	}
	if view.Phase != Editing {
		t.Errorf("Phase: got %s, want %s", view.Phase, Editing)
	}
}

func TestApplyAdjustment_ClampedToSameValueIsNoOp(t *testing.T) {
	s := newLoadedSession(t, Options{})
	if _, _, err := s.ApplyAdjustment(adjust.Delta{adjust.Brightness: 200}); err != nil {
		t.Fatal(err)
	}
	view, changed, _ := s.ApplyAdjustment(adjust.Delta{adjust.Brightness: 999})
	if changed || view.HistoryLength != 2 {
		t.Errorf("clamped duplicate: changed %v len %d", changed, view.HistoryLength)
	}
}

func TestUndoRedo_RestoresExactVectors(t *testing.T) {
	s := newLoadedSession(t, Options{})
	before := s.State().Adjustments

	after, _, err := s.ApplyAdjustment(adjust.Delta{adjust.Sepia: 35, adjust.Blur: 1.4})
	if err != nil {
		t.Fatal(err)
	}

	view, moved, _ := s.Undo()
	if !moved || view.Adjustments != before {
		t.Errorf("Undo: moved %v, got %+v want %+v", moved, view.Adjustments, before)
	}
	if !view.CanRedo || view.CanUndo {
		t.Errorf("flags after undo: undo %v redo %v", view.CanUndo, view.CanRedo)
	}

	view, moved, _ = s.Redo()
	if !moved || view.Adjustments != after.Adjustments {
		t.Errorf("Redo: moved %v, got %+v want %+v", moved, view.Adjustments, after.Adjustments)
	}
	if view.HistoryLength != 2 {
		t.Errorf("navigation changed HistoryLength: %d", view.HistoryLength)
	}
}

func TestRedo_AtEndIsNoOp(t *testing.T) {
	s := newLoadedSession(t, Options{})
	cur, _, _ := s.ApplyAdjustment(adjust.Delta{adjust.Contrast: 150})

	view, moved, err := s.Redo()
	if err != nil {
		t.Fatal(err)
	}
	if moved {
		t.Error("Redo at end reported a move")
	}
	if view.Adjustments != cur.Adjustments || view.HistoryLength != cur.HistoryLength || view.HistoryCursor != cur.HistoryCursor {
		t.Errorf("Redo at end changed state: %+v", view)
	}
}

func TestUndo_AtStartIsNoOp(t *testing.T) {
	s := newLoadedSession(t, Options{})
	view, moved, err := s.Undo()
	if err != nil || moved {
		t.Errorf("Undo at start: moved %v err %v", moved, err)
	}
	if view.Adjustments != adjust.Defaults() {
		t.Errorf("Adjustments: got %+v", view.Adjustments)
	}
}

func TestApplyAfterUndo_DiscardsRedoBranch(t *testing.T) {
	s := newLoadedSession(t, Options{})
	s.ApplyAdjustment(adjust.Delta{adjust.Brightness: 110})
	s.ApplyAdjustment(adjust.Delta{adjust.Brightness: 120})
	s.Undo()

	view, _, _ := s.ApplyAdjustment(adjust.Delta{adjust.Grayscale: 50})
	if view.CanRedo {
		t.Error("redo should be unavailable after a new commit")
	}
	if view.HistoryLength != 3 {
		t.Errorf("HistoryLength: got %d, want 3", view.HistoryLength)
	}
	want := adjust.Defaults()
	want.Brightness = 110
	want.Grayscale = 50
	if view.Adjustments != want {
		t.Errorf("Adjustments: got %+v, want %+v", view.Adjustments, want)
	}
}

func TestStepAdjustment(t *testing.T) {
	s := newLoadedSession(t, Options{})

	for i := 0; i < 60; i++ {
		if _, _, err := s.StepAdjustment(adjust.Blur, 1); err != nil {
			t.Fatal(err)
		}
	}
	view := s.State()
	if view.Adjustments.Blur != 10 {
		t.Errorf("Blur: got %v, want 10", view.Adjustments.Blur)
	}
	// 50 steps reach the max, the remaining 10 are no-ops
	if view.HistoryLength != 51 {
		t.Errorf("HistoryLength: got %d, want 51", view.HistoryLength)
	}

	if _, _, err := s.StepAdjustment(adjust.Channel("zoom"), 1); !errors.Is(err, adjust.ErrUnknownChannel) {
		t.Errorf("unknown channel: got %v", err)
	}
}

func TestApplyPreset_BlackWhite(t *testing.T) {
	s := newLoadedSession(t, Options{})

	view, changed, err := s.ApplyPreset("BlackWhite")
	if err != nil || !changed {
		t.Fatalf("ApplyPreset: changed %v err %v", changed, err)
	}
	want := adjust.Defaults()
	want.Saturation = 0
	want.Grayscale = 100
	if view.Adjustments != want {
		t.Errorf("Adjustments: got %+v, want %+v", view.Adjustments, want)
	}
	if view.HistoryLength != 2 {
		t.Errorf("HistoryLength: got %d, want 2", view.HistoryLength)
	}

	// Applying the same preset again is a no-op
	view, changed, _ = s.ApplyPreset("black white")
	if changed || view.HistoryLength != 2 {
		t.Errorf("repeat preset: changed %v len %d", changed, view.HistoryLength)
	}
}

func TestApplyPreset_OverwritesAllChannels(t *testing.T) {
	s := newLoadedSession(t, Options{})
	s.ApplyAdjustment(adjust.Delta{adjust.Invert: 100, adjust.Blur: 3})

	view, _, err := s.ApplyPreset("CoolBlue")
	if err != nil {
		t.Fatal(err)
	}
	p, _ := adjust.LookupPreset("CoolBlue")
	if view.Adjustments != p.Vector {
		t.Errorf("Adjustments: got %+v, want %+v", view.Adjustments, p.Vector)
	}
}

func TestApplyPreset_Unknown(t *testing.T) {
	s := newLoadedSession(t, Options{})
	if _, _, err := s.ApplyPreset("Sunset"); !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("got %v, want ErrUnknownPreset", err)
	}
}

func TestReset(t *testing.T) {
	s := newLoadedSession(t, Options{})
	s.ApplyPreset("Vintage")
	s.SetGeometry(adjust.Geometry{Zoom: 2.5, Rotation: -90})

	view, err := s.Reset()
	if err != nil {
		t.Fatal(err)
	}
	if view.Adjustments != adjust.Defaults() || view.Geometry != adjust.DefaultGeometry() {
		t.Errorf("Reset: %+v %+v", view.Adjustments, view.Geometry)
	}
	if view.HistoryLength != 1 || view.Phase != ImageLoaded {
		t.Errorf("Reset: len %d phase %s", view.HistoryLength, view.Phase)
	}
}

func TestGeometry_LivePolicy(t *testing.T) {
	s := newLoadedSession(t, Options{GeometryPolicy: GeometryLive})
	s.ApplyAdjustment(adjust.Delta{adjust.Sepia: 50})

	view, changed, err := s.SetGeometry(adjust.Geometry{Zoom: 2, Rotation: 30})
	if err != nil || !changed {
		t.Fatalf("SetGeometry: changed %v err %v", changed, err)
	}
	if view.HistoryLength != 2 {
		t.Errorf("geometry change committed under live policy: len %d", view.HistoryLength)
	}

	view, _, _ = s.Undo()
	if view.Adjustments.Sepia != 0 {
		t.Errorf("Undo did not restore vector: %+v", view.Adjustments)
	}
	if view.Geometry != (adjust.Geometry{Zoom: 2, Rotation: 30}) {
		t.Errorf("Undo touched geometry under live policy: %+v", view.Geometry)
	}
}

func TestGeometry_HistoriedPolicy(t *testing.T) {
	s := newLoadedSession(t, Options{GeometryPolicy: GeometryHistoried})

	view, _, _ := s.StepRotation(1)
	if view.HistoryLength != 2 || view.Geometry.Rotation != 5 {
		t.Fatalf("StepRotation: len %d rotation %v", view.HistoryLength, view.Geometry.Rotation)
	}

	view, _, _ = s.StepZoom(1)
	if view.HistoryLength != 3 || view.Geometry.Zoom != 1.1 {
		t.Fatalf("StepZoom: len %d zoom %v", view.HistoryLength, view.Geometry.Zoom)
	}

	view, _, _ = s.Undo()
	if view.Geometry != (adjust.Geometry{Zoom: 1, Rotation: 5}) {
		t.Errorf("Undo: geometry %+v", view.Geometry)
	}
	view, _, _ = s.Undo()
	if view.Geometry != adjust.DefaultGeometry() {
		t.Errorf("second Undo: geometry %+v", view.Geometry)
	}
}

func TestSetGeometry_ClampsAndDetectsNoOp(t *testing.T) {
	s := newLoadedSession(t, Options{GeometryPolicy: GeometryHistoried})

	view, _, _ := s.SetGeometry(adjust.Geometry{Zoom: 10, Rotation: -500})
	if view.Geometry != (adjust.Geometry{Zoom: 3, Rotation: -180}) {
		t.Errorf("clamped geometry: %+v", view.Geometry)
	}
	view, changed, _ := s.SetGeometry(adjust.Geometry{Zoom: 4, Rotation: -181})
	if changed || view.HistoryLength != 2 {
		t.Errorf("clamped duplicate: changed %v len %d", changed, view.HistoryLength)
	}
}

func TestCompareModeAndSplit(t *testing.T) {
	s := newLoadedSession(t, Options{})

	view := s.SetCompareMode(render.BeforeOnly)
	if view.CompareMode != render.BeforeOnly {
		t.Errorf("CompareMode: got %s", view.CompareMode)
	}
	view = s.SetSplit(130)
	if view.Split != 100 {
		t.Errorf("Split: got %v, want 100", view.Split)
	}
	if view.HistoryLength != 1 {
		t.Error("comparison settings must not touch history")
	}

	p, err := s.Describe()
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Layers) != 1 || p.Layers[0].Kind != render.LayerOriginal {
		t.Errorf("before-only preview layers: %+v", p.Layers)
	}
}

func TestPreview_RendersViewport(t *testing.T) {
	s := newLoadedSession(t, Options{})
	s.ApplyPreset("Warm")

	p, img, err := s.Preview(render.Viewport{Width: 40, Height: 30})
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 30 {
		t.Errorf("viewport: got %v", img.Bounds())
	}
	if len(p.Layers) != 2 {
		t.Errorf("split view should have 2 layers, got %d", len(p.Layers))
	}
}

func TestExport_Dimensions(t *testing.T) {
	s := newLoadedSession(t, Options{})

	a, err := s.Export(context.Background(), render.JPEG)
	if err != nil {
		t.Fatal(err)
	}
	if a.Width != 40 || a.Height != 20 {
		t.Errorf("export size: got %dx%d, want 40x20", a.Width, a.Height)
	}
	if a.Filename != "edited-image.jpg" {
		t.Errorf("Filename: got %q", a.Filename)
	}
}

func TestExportAsync_UsesSnapshotAtCall(t *testing.T) {
	s := newLoadedSession(t, Options{})
	s.ApplyAdjustment(adjust.Delta{adjust.Brightness: 150})

	pending := s.ExportAsync(context.Background(), render.PNG)
	s.ApplyAdjustment(adjust.Delta{adjust.Brightness: 50})

	r := <-pending
	if r.Err != nil {
		t.Fatal(r.Err)
	}
	if got := r.Artifact.Recipe.Chain[0].Value; got != 150 {
		t.Errorf("exported brightness: got %v, want 150", got)
	}
}

func TestSampleColor(t *testing.T) {
	s := newLoadedSession(t, Options{})
	s.ApplyAdjustment(adjust.Delta{adjust.Invert: 100})

	sample, err := s.SampleColor(3, 4)
	if err != nil {
		t.Fatal(err)
	}
	if sample.Before.Hex != "#C83232" {
		t.Errorf("Before: got %s, want #C83232", sample.Before.Hex)
	}
	if sample.After.Hex != "#37CDCD" {
		t.Errorf("After: got %s, want #37CDCD", sample.After.Hex)
	}

	if _, err := s.SampleColor(50, 0); err == nil {
		t.Error("out-of-bounds sample should fail")
	}
}

func TestSampleColor_WithBlurOnSolidImage(t *testing.T) {
	s := newLoadedSession(t, Options{})
	s.ApplyAdjustment(adjust.Delta{adjust.Blur: 2})

	sample, err := s.SampleColor(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	// Blurring a solid image leaves it unchanged
	if sample.After.Hex != sample.Before.Hex {
		t.Errorf("After: got %s, want %s", sample.After.Hex, sample.Before.Hex)
	}
}

func TestParseGeometryPolicy(t *testing.T) {
	for in, want := range map[string]GeometryPolicy{"": GeometryLive, "LIVE": GeometryLive, "historied": GeometryHistoried} {
		got, err := ParseGeometryPolicy(in)
		if err != nil || got != want {
			t.Errorf("%q: got %s, %v", in, got, err)
		}
	}
	if _, err := ParseGeometryPolicy("sometimes"); !errors.Is(err, ErrUnknownPolicy) {
		t.Errorf("got %v, want ErrUnknownPolicy", err)
	}
}
