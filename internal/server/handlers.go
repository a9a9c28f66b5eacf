package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ironsheep/image-adjust-mcp/internal/adjust"
	"github.com/ironsheep/image-adjust-mcp/internal/render"
	"github.com/ironsheep/image-adjust-mcp/internal/session"
	"github.com/ironsheep/image-adjust-mcp/internal/source"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "image_adjust").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.debugf("%s failed: %v", params.Name, err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Runs the command against the editing session
//  4. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}

	switch name {
	// Image Source
	case "image_load":
		return s.handleImageLoad(ctx, args)
	case "image_state":
		return s.session.State(), nil

	// Adjustments
	case "image_adjust":
		return s.handleImageAdjust(args)
	case "image_step":
		return s.handleImageStep(args)
	case "image_presets":
		return s.handleImagePresets()
	case "image_apply_preset":
		return s.handleImageApplyPreset(args)

	// History
	case "image_undo":
		return changeResult(s.session.Undo())
	case "image_redo":
		return changeResult(s.session.Redo())
	case "image_reset":
		view, err := s.session.Reset()
		if err != nil {
			return nil, err
		}
		return view, nil

	// Geometry and Comparison
	case "image_geometry":
		return s.handleImageGeometry(args)
	case "image_compare":
		return s.handleImageCompare(args)

	// Rendering
	case "image_preview":
		return s.handleImagePreview(args)
	case "image_export":
		return s.handleImageExport(ctx, args)
	case "image_sample_color":
		return s.handleImageSampleColor(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// ChangeResult reports whether a command changed the session, with the state
// after it ran.
type ChangeResult struct {
	Changed bool              `json:"changed"`
	State   session.StateView `json:"state"`
}

func changeResult(view session.StateView, changed bool, err error) (interface{}, error) {
	if err != nil {
		return nil, err
	}
	return &ChangeResult{Changed: changed, State: view}, nil
}

// === Image Source Handlers ===

type imageLoadArgs struct {
	Path        string `json:"path"`
	URL         string `json:"url"`
	DataBase64  string `json:"data_base64"`
	ContentType string `json:"content_type"`
	Name        string `json:"name"`
}

// loader picks the image source. Exactly one of path, url and data_base64
// must be set.
func (s *Server) loader(a imageLoadArgs) (source.Loader, error) {
	set := 0
	for _, v := range []string{a.Path, a.URL, a.DataBase64} {
		if strings.TrimSpace(v) != "" {
			set++
		}
	}
	if set != 1 {
		return nil, errors.New("exactly one of path, url or data_base64 is required")
	}

	switch {
	case a.Path != "":
		return source.FromPath(s.cache, a.Path), nil
	case a.URL != "":
		return source.FromURL(s.fetcher, a.URL), nil
	}

	data, err := base64.StdEncoding.DecodeString(a.DataBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode data_base64: %w", err)
	}
	return source.FromUpload(data, a.ContentType, a.Name), nil
}

func (s *Server) handleImageLoad(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	load, err := s.loader(a)
	if err != nil {
		return nil, err
	}

	select {
	case r := <-s.session.LoadAsync(ctx, load):
		if r.Err != nil {
			return nil, r.Err
		}
		return r.State, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// === Adjustment Handlers ===

type imageAdjustArgs struct {
	Adjustments map[string]float64 `json:"adjustments"`
}

func (s *Server) handleImageAdjust(args json.RawMessage) (interface{}, error) {
	var a imageAdjustArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if len(a.Adjustments) == 0 {
		return nil, errors.New("adjustments must name at least one channel")
	}

	delta := make(adjust.Delta, len(a.Adjustments))
	for name, v := range a.Adjustments {
		ch, err := adjust.ParseChannel(name)
		if err != nil {
			return nil, err
		}
		delta[ch] = v
	}
	return changeResult(s.session.ApplyAdjustment(delta))
}

type imageStepArgs struct {
	Channel   string `json:"channel"`
	Direction int    `json:"direction"`
}

func (s *Server) handleImageStep(args json.RawMessage) (interface{}, error) {
	var a imageStepArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Direction == 0 {
		a.Direction = 1
	}

	switch strings.ToLower(strings.TrimSpace(a.Channel)) {
	case "zoom":
		return changeResult(s.session.StepZoom(a.Direction))
	case "rotation", "rotate":
		return changeResult(s.session.StepRotation(a.Direction))
	}

	ch, err := adjust.ParseChannel(a.Channel)
	if err != nil {
		return nil, err
	}
	return changeResult(s.session.StepAdjustment(ch, a.Direction))
}

// PresetInfo describes one catalog entry.
type PresetInfo struct {
	Name   string        `json:"name"`
	Label  string        `json:"label"`
	Vector adjust.Vector `json:"adjustments"`
	Filter string        `json:"filter"`
}

func (s *Server) handleImagePresets() (interface{}, error) {
	presets := adjust.Presets()
	out := make([]PresetInfo, 0, len(presets))
	for _, p := range presets {
		out = append(out, PresetInfo{
			Name:   p.Name,
			Label:  p.Label(),
			Vector: p.Vector,
			Filter: render.BuildFilterChain(p.Vector).CSS(),
		})
	}
	return map[string]interface{}{"presets": out}, nil
}

type imageApplyPresetArgs struct {
	Name string `json:"name"`
}

func (s *Server) handleImageApplyPreset(args json.RawMessage) (interface{}, error) {
	var a imageApplyPresetArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return changeResult(s.session.ApplyPreset(a.Name))
}

// === Geometry and Comparison Handlers ===

type imageGeometryArgs struct {
	Zoom     *float64 `json:"zoom"`
	Rotation *float64 `json:"rotation"`
}

func (s *Server) handleImageGeometry(args json.RawMessage) (interface{}, error) {
	var a imageGeometryArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	g := s.session.State().Geometry
	if a.Zoom != nil {
		g.Zoom = *a.Zoom
	}
	if a.Rotation != nil {
		g.Rotation = *a.Rotation
	}
	return changeResult(s.session.SetGeometry(g))
}

type imageCompareArgs struct {
	Mode  string   `json:"mode"`
	Split *float64 `json:"split"`
}

// CompareResult is the comparison state with the layers it produces.
type CompareResult struct {
	State   session.StateView `json:"state"`
	Preview render.Preview    `json:"preview"`
}

func (s *Server) handleImageCompare(args json.RawMessage) (interface{}, error) {
	var a imageCompareArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	view := s.session.State()
	if a.Mode != "" {
		mode, err := render.ParseCompareMode(a.Mode)
		if err != nil {
			return nil, err
		}
		view = s.session.SetCompareMode(mode)
	}
	if a.Split != nil {
		view = s.session.SetSplit(*a.Split)
	}

	preview, err := s.session.Describe()
	if err != nil {
		return nil, err
	}
	return &CompareResult{State: view, Preview: preview}, nil
}

// === Rendering Handlers ===

type imagePreviewArgs struct {
	Width        int   `json:"width"`
	Height       int   `json:"height"`
	IncludeImage *bool `json:"include_image"`
}

// PreviewResult is the preview description and, optionally, its raster.
type PreviewResult struct {
	render.Preview
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64,omitempty"`
	MimeType    string `json:"mime_type,omitempty"`
}

func (s *Server) handleImagePreview(args json.RawMessage) (interface{}, error) {
	var a imagePreviewArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Width <= 0 {
		a.Width = render.PreviewWidth
	}
	if a.Height <= 0 {
		a.Height = render.PreviewHeight
	}

	if a.IncludeImage != nil && !*a.IncludeImage {
		p, err := s.session.Describe()
		if err != nil {
			return nil, err
		}
		return &PreviewResult{Preview: p, Width: a.Width, Height: a.Height}, nil
	}

	p, img, err := s.session.Preview(render.Viewport{Width: a.Width, Height: a.Height})
	if err != nil {
		return nil, err
	}
	data, err := render.EncodePNG(img)
	if err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}
	return &PreviewResult{
		Preview:     p,
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(data),
		MimeType:    "image/png",
	}, nil
}

type imageExportArgs struct {
	Format        string `json:"format"`
	Write         *bool  `json:"write"`
	IncludeBase64 *bool  `json:"include_base64"`
}

// ExportResult describes an exported image.
type ExportResult struct {
	*render.Artifact
	Path        string `json:"path,omitempty"`
	ImageBase64 string `json:"image_base64,omitempty"`
}

func (s *Server) handleImageExport(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageExportArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	format, err := render.ParseFormat(a.Format)
	if err != nil {
		return nil, err
	}

	var artifact *render.Artifact
	select {
	case r := <-s.session.ExportAsync(ctx, format):
		if r.Err != nil {
			return nil, r.Err
		}
		artifact = r.Artifact
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	result := &ExportResult{Artifact: artifact}
	if a.Write == nil || *a.Write {
		path, err := artifact.Deliver(s.cfg.OutputDir)
		if err != nil {
			return nil, err
		}
		result.Path = path
		s.debugf("exported %s", path)
	}
	if a.IncludeBase64 == nil || *a.IncludeBase64 {
		result.ImageBase64 = artifact.Base64()
	}
	return result, nil
}

type imageSampleColorArgs struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (s *Server) handleImageSampleColor(args json.RawMessage) (interface{}, error) {
	var a imageSampleColorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.session.SampleColor(a.X, a.Y)
}
