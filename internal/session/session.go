package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"math"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/ironsheep/image-adjust-mcp/internal/adjust"
	"github.com/ironsheep/image-adjust-mcp/internal/history"
	"github.com/ironsheep/image-adjust-mcp/internal/render"
	"github.com/ironsheep/image-adjust-mcp/internal/source"
)

var (
	// ErrNoImage is returned by commands that need a loaded image.
	ErrNoImage = errors.New("no image loaded")

	// ErrSuperseded is returned when a load finished after a newer load began.
	ErrSuperseded = errors.New("image load superseded by a newer load")

	// ErrUnknownPreset is returned by ApplyPreset for names not in the catalog.
	ErrUnknownPreset = errors.New("unknown preset")
)

// Phase is the session's position in its lifecycle.
type Phase string

const (
	NoImage     Phase = "no_image"
	ImageLoaded Phase = "image_loaded"
	Editing     Phase = "editing"
)

// Options configures a Session.
type Options struct {
	GeometryPolicy GeometryPolicy
	HistoryLimit   int
	Debug          bool
}

// Session is the controller of one editing session. The zero value is not
// usable; call New.
type Session struct {
	mu sync.Mutex

	opts       Options
	id         string
	generation uint64
	resource   *source.Resource
	current    adjust.Snapshot
	history    *history.Log[adjust.Snapshot]
	mode       render.CompareMode
	split      float64
}

// New creates a session in the NoImage phase.
func New(opts Options) *Session {
	if opts.GeometryPolicy == "" {
		opts.GeometryPolicy = GeometryLive
	}
	s := &Session{opts: opts}
	s.resetLocked()
	s.mode = render.SplitView
	s.split = render.DefaultSplit
	return s
}

// resetLocked puts the edit state back to defaults with a one-entry history.
func (s *Session) resetLocked() {
	s.current = adjust.DefaultSnapshot()
	if s.history == nil {
		s.history = history.New(s.current, history.WithLimit(s.opts.HistoryLimit))
		return
	}
	s.history.Reinitialize(s.current)
}

func (s *Session) debugf(format string, args ...interface{}) {
	if s.opts.Debug {
		log.Printf("[session] "+format, args...)
	}
}

// === Loading ===

// BeginLoad starts a load and returns its generation. Any load started
// earlier becomes stale.
func (s *Session) BeginLoad() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	return s.generation
}

// Install makes res the session's image if gen is still the newest load. The
// adjustment vector, geometry, history and split position are reset.
func (s *Session) Install(gen uint64, res *source.Resource) (StateView, error) {
	if res == nil || res.Image == nil {
		return StateView{}, errors.New("nil image resource")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.debugf("dropping stale load %d (current %d) of %s", gen, s.generation, res.Origin)
		return s.viewLocked(), ErrSuperseded
	}

	s.resource = res
	s.id = ulid.Make().String()
	s.resetLocked()
	s.split = render.DefaultSplit
	s.debugf("loaded %s (%dx%d %s) as session %s", res.Origin, res.Width, res.Height, res.Format, s.id)
	return s.viewLocked(), nil
}

// Load runs loader and installs its result. The loader runs without the
// session lock held.
func (s *Session) Load(ctx context.Context, loader source.Loader) (StateView, error) {
	gen := s.BeginLoad()
	res, err := loader(ctx)
	if err != nil {
		return s.State(), err
	}
	if err := ctx.Err(); err != nil {
		return s.State(), err
	}
	return s.Install(gen, res)
}

// LoadResult is delivered by LoadAsync.
type LoadResult struct {
	State StateView
	Err   error
}

// LoadAsync runs Load in a goroutine and delivers the outcome on the
// returned channel, which receives exactly one value.
func (s *Session) LoadAsync(ctx context.Context, loader source.Loader) <-chan LoadResult {
	ch := make(chan LoadResult, 1)
	gen := s.BeginLoad()
	go func() {
		res, err := loader(ctx)
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			ch <- LoadResult{State: s.State(), Err: err}
			return
		}
		view, err := s.Install(gen, res)
		ch <- LoadResult{State: view, Err: err}
	}()
	return ch
}

// === Adjustments ===

// ApplyAdjustment merges delta into the current vector. When the merged
// vector differs from the current one it becomes current and is committed to
// history; otherwise nothing changes. The bool result reports whether the
// vector changed.
func (s *Session) ApplyAdjustment(delta adjust.Delta) (StateView, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.resource == nil {
		return s.viewLocked(), false, ErrNoImage
	}
	changed := s.applyLocked(delta)
	return s.viewLocked(), changed, nil
}

func (s *Session) applyLocked(delta adjust.Delta) bool {
	candidate := s.current.Vector.Merge(delta)
	if candidate == s.current.Vector {
		return false
	}
	s.current.Vector = candidate
	s.history.Commit(s.current)
	s.debugf("commit %d: %s", s.history.Cursor(), candidate)
	return true
}

// StepAdjustment moves one channel by its step size in the direction of dir
// and applies the result like ApplyAdjustment.
func (s *Session) StepAdjustment(ch adjust.Channel, dir int) (StateView, bool, error) {
	if !ch.Valid() {
		return s.State(), false, fmt.Errorf("%w: %q", adjust.ErrUnknownChannel, string(ch))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.resource == nil {
		return s.viewLocked(), false, ErrNoImage
	}
	next := s.current.Vector.Step(ch, dir).Get(ch)
	changed := s.applyLocked(adjust.Delta{ch: next})
	return s.viewLocked(), changed, nil
}

// ApplyPreset overwrites all eight channels with the named preset, as one
// adjustment.
func (s *Session) ApplyPreset(name string) (StateView, bool, error) {
	p, ok := adjust.LookupPreset(name)
	if !ok {
		return s.State(), false, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return s.ApplyAdjustment(p.Vector.Full())
}

// Undo moves back one history entry. At the oldest entry it is a no-op and
// the bool result is false.
func (s *Session) Undo() (StateView, bool, error) {
	return s.navigate((*history.Log[adjust.Snapshot]).Undo)
}

// Redo moves forward one history entry. At the newest entry it is a no-op and
// the bool result is false.
func (s *Session) Redo() (StateView, bool, error) {
	return s.navigate((*history.Log[adjust.Snapshot]).Redo)
}

func (s *Session) navigate(move func(*history.Log[adjust.Snapshot]) (adjust.Snapshot, bool)) (StateView, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.resource == nil {
		return s.viewLocked(), false, ErrNoImage
	}
	snap, moved := move(s.history)
	if moved {
		s.current.Vector = snap.Vector
		if s.opts.GeometryPolicy == GeometryHistoried {
			s.current.Geometry = snap.Geometry
		}
	}
	return s.viewLocked(), moved, nil
}

// Reset restores default adjustments and geometry and discards history.
func (s *Session) Reset() (StateView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.resource == nil {
		return s.viewLocked(), ErrNoImage
	}
	s.resetLocked()
	s.debugf("reset session %s", s.id)
	return s.viewLocked(), nil
}

// === Geometry ===

// SetGeometry replaces zoom and rotation, clamped to their domains.
func (s *Session) SetGeometry(g adjust.Geometry) (StateView, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.resource == nil {
		return s.viewLocked(), false, ErrNoImage
	}
	changed := s.setGeometryLocked(g)
	return s.viewLocked(), changed, nil
}

// StepZoom moves zoom by one step in the direction of dir.
func (s *Session) StepZoom(dir int) (StateView, bool, error) {
	return s.stepGeometry(func(g adjust.Geometry) adjust.Geometry { return g.StepZoom(dir) })
}

// StepRotation moves rotation by one step in the direction of dir.
func (s *Session) StepRotation(dir int) (StateView, bool, error) {
	return s.stepGeometry(func(g adjust.Geometry) adjust.Geometry { return g.StepRotation(dir) })
}

func (s *Session) stepGeometry(fn func(adjust.Geometry) adjust.Geometry) (StateView, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.resource == nil {
		return s.viewLocked(), false, ErrNoImage
	}
	changed := s.setGeometryLocked(fn(s.current.Geometry))
	return s.viewLocked(), changed, nil
}

func (s *Session) setGeometryLocked(g adjust.Geometry) bool {
	g = g.Clamp()
	if g == s.current.Geometry {
		return false
	}
	s.current.Geometry = g
	if s.opts.GeometryPolicy == GeometryHistoried {
		s.history.Commit(s.current)
	}
	return true
}

// === Comparison ===

// SetCompareMode switches between split view and before-only.
func (s *Session) SetCompareMode(m render.CompareMode) StateView {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m != render.BeforeOnly {
		m = render.SplitView
	}
	s.mode = m
	return s.viewLocked()
}

// SetSplit moves the split divider, in percent of the width.
func (s *Session) SetSplit(p float64) StateView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.split = render.ClampSplit(p)
	return s.viewLocked()
}

// === Rendering ===

// snapshotLocked captures what the renderers need.
func (s *Session) snapshotLocked() (image.Image, adjust.Snapshot, render.CompareMode, float64, error) {
	if s.resource == nil {
		return nil, adjust.Snapshot{}, "", 0, ErrNoImage
	}
	return s.resource.Image, s.current, s.mode, s.split, nil
}

// Describe returns the preview description for the current state without
// rasterizing it.
func (s *Session) Describe() (render.Preview, error) {
	s.mu.Lock()
	_, snap, mode, split, err := s.snapshotLocked()
	s.mu.Unlock()
	if err != nil {
		return render.Preview{}, err
	}
	return render.Compose(snap, mode, split), nil
}

// Preview composes and rasterizes the live preview. Rendering happens
// outside the session lock on a snapshot of the state.
func (s *Session) Preview(vp render.Viewport) (render.Preview, *image.RGBA, error) {
	s.mu.Lock()
	src, snap, mode, split, err := s.snapshotLocked()
	s.mu.Unlock()
	if err != nil {
		return render.Preview{}, nil, err
	}
	p := render.Compose(snap, mode, split)
	return p, render.RenderPreview(src, p, vp), nil
}

// Export renders the current state into an encoded artifact.
func (s *Session) Export(ctx context.Context, f render.Format) (*render.Artifact, error) {
	s.mu.Lock()
	src, snap, _, _, err := s.snapshotLocked()
	id := s.id
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.debugf("exporting session %s as %s", id, f)
	return render.Export(ctx, src, snap, f)
}

// ExportResult is delivered by ExportAsync.
type ExportResult struct {
	Artifact *render.Artifact
	Err      error
}

// ExportAsync snapshots the state now and renders it in a goroutine. Edits
// made after the call do not affect the result. The channel receives exactly
// one value.
func (s *Session) ExportAsync(ctx context.Context, f render.Format) <-chan ExportResult {
	ch := make(chan ExportResult, 1)

	s.mu.Lock()
	src, snap, _, _, err := s.snapshotLocked()
	s.mu.Unlock()
	if err != nil {
		ch <- ExportResult{Err: err}
		return ch
	}

	go func() {
		a, err := render.Export(ctx, src, snap, f)
		ch <- ExportResult{Artifact: a, Err: err}
	}()
	return ch
}

// ColorSample pairs the original and the adjusted color of one pixel.
type ColorSample struct {
	X      int                 `json:"x"`
	Y      int                 `json:"y"`
	Before *render.ColorResult `json:"before"`
	After  *render.ColorResult `json:"after"`
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// SampleColor reads pixel (x, y) of the source before and after the current
// adjustments. Geometry is ignored; coordinates are source pixels.
func (s *Session) SampleColor(x, y int) (*ColorSample, error) {
	s.mu.Lock()
	src, snap, _, _, err := s.snapshotLocked()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	before, err := render.SampleColor(src, x, y)
	if err != nil {
		return nil, err
	}

	// Only blur reads neighbouring pixels, so filter a window just large
	// enough for its kernel.
	b := src.Bounds()
	px, py := b.Min.X+x, b.Min.Y+y
	reach := int(math.Ceil(snap.Vector.Blur*3)) + 1
	window := image.Rect(px-reach, py-reach, px+reach+1, py+reach+1).Intersect(b)
	region := src
	if si, ok := src.(subImager); ok {
		region = si.SubImage(window)
	} else {
		window = b
	}

	filtered := render.ApplyChain(region, render.BuildFilterChain(snap.Vector))
	after, err := render.SampleColor(filtered, px-window.Min.X, py-window.Min.Y)
	if err != nil {
		return nil, err
	}
	return &ColorSample{X: x, Y: y, Before: before, After: after}, nil
}
