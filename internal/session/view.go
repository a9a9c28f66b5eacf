package session

import (
	"github.com/ironsheep/image-adjust-mcp/internal/adjust"
	"github.com/ironsheep/image-adjust-mcp/internal/render"
	"github.com/ironsheep/image-adjust-mcp/internal/source"
)

// StateView is a read-only copy of the session state for reporting.
type StateView struct {
	SessionID      string             `json:"session_id,omitempty"`
	Phase          Phase              `json:"phase"`
	Image          *source.Resource   `json:"image,omitempty"`
	Adjustments    adjust.Vector      `json:"adjustments"`
	Geometry       adjust.Geometry    `json:"geometry"`
	HistoryLength  int                `json:"history_length"`
	HistoryCursor  int                `json:"history_cursor"`
	CanUndo        bool               `json:"can_undo"`
	CanRedo        bool               `json:"can_redo"`
	CompareMode    render.CompareMode `json:"compare_mode"`
	Split          float64            `json:"split"`
	GeometryPolicy GeometryPolicy     `json:"geometry_policy"`
}

// State returns a view of the current state.
func (s *Session) State() StateView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Phase returns the lifecycle phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phaseLocked()
}

func (s *Session) phaseLocked() Phase {
	switch {
	case s.resource == nil:
		return NoImage
	case s.history.Len() > 1:
		return Editing
	default:
		return ImageLoaded
	}
}

func (s *Session) viewLocked() StateView {
	return StateView{
		SessionID:      s.id,
		Phase:          s.phaseLocked(),
		Image:          s.resource,
		Adjustments:    s.current.Vector,
		Geometry:       s.current.Geometry,
		HistoryLength:  s.history.Len(),
		HistoryCursor:  s.history.Cursor(),
		CanUndo:        s.history.CanUndo(),
		CanRedo:        s.history.CanRedo(),
		CompareMode:    s.mode,
		Split:          s.split,
		GeometryPolicy: s.opts.GeometryPolicy,
	}
}
