package server

import (
	"github.com/ironsheep/image-adjust-mcp/internal/adjust"
	"github.com/ironsheep/image-adjust-mcp/internal/render"
)

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func channelNames() []string {
	channels := adjust.Channels()
	names := make([]string, len(channels))
	for i, ch := range channels {
		names[i] = string(ch)
	}
	return names
}

func presetNames() []string {
	presets := adjust.Presets()
	names := make([]string, len(presets))
	for i, p := range presets {
		names[i] = p.Name
	}
	return names
}

func emptySchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	channels := channelNames()

	return []Tool{
		// Image Source
		{
			Name:        "image_load",
			Description: "Load an image to edit from a file path, an http(s) URL ending in .jpg, .jpeg, .png, .webp or .gif, or base64 data. Starts a new editing session: adjustments, zoom, rotation, history and split position are reset.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"url": map[string]interface{}{
						"type":        "string",
						"description": "Image URL (http or https, must end in an image extension)",
					},
					"data_base64": map[string]interface{}{
						"type":        "string",
						"description": "Base64 encoded image bytes",
					},
					"content_type": map[string]interface{}{
						"type":        "string",
						"description": "Media type of data_base64. Sniffed from the bytes when omitted",
					},
					"name": map[string]interface{}{
						"type":        "string",
						"description": "Display name for uploaded data",
					},
				},
			},
		},
		{
			Name:        "image_state",
			Description: "Get the current editing state: loaded image, adjustment values, zoom and rotation, history position and comparison settings.",
			InputSchema: emptySchema(),
		},

		// Adjustments
		{
			Name:        "image_adjust",
			Description: "Set one or more adjustment channels. Values are clamped to each channel's range: brightness, contrast and saturation 0-200 (default 100), grayscale, sepia and invert 0-100 (default 0), hueRotate 0-360 degrees, blur 0-10 px. Records one undo step when anything changes.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"adjustments": map[string]interface{}{
						"type":        "object",
						"description": "Map of channel name to new value, e.g. {\"brightness\": 120, \"blur\": 1.5}",
						"propertyNames": map[string]interface{}{
							"enum": channels,
						},
						"additionalProperties": map[string]interface{}{"type": "number"},
					},
				},
				"required": []string{"adjustments"},
			},
		},
		{
			Name:        "image_step",
			Description: "Nudge one channel, or zoom or rotation, by its step size (5 for most channels, 0.2px for blur, 0.1 for zoom, 5 degrees for rotation).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"channel": map[string]interface{}{
						"type":        "string",
						"enum":        append(append([]string{}, channels...), "zoom", "rotation"),
						"description": "Channel to step",
					},
					"direction": map[string]interface{}{
						"type":        "integer",
						"description": "1 to increase, -1 to decrease. Default 1",
						"default":     1,
					},
				},
				"required": []string{"channel"},
			},
		},
		{
			Name:        "image_presets",
			Description: "List the preset catalog with each preset's adjustment values and CSS filter text.",
			InputSchema: emptySchema(),
		},
		{
			Name:        "image_apply_preset",
			Description: "Apply a preset. All eight channels are overwritten with the preset's values as one undo step.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name": map[string]interface{}{
						"type":        "string",
						"enum":        presetNames(),
						"description": "Preset name",
					},
				},
				"required": []string{"name"},
			},
		},

		// History
		{
			Name:        "image_undo",
			Description: "Step back one entry in the adjustment history. Does nothing at the oldest entry.",
			InputSchema: emptySchema(),
		},
		{
			Name:        "image_redo",
			Description: "Step forward one entry in the adjustment history. Does nothing at the newest entry.",
			InputSchema: emptySchema(),
		},
		{
			Name:        "image_reset",
			Description: "Restore default adjustments, zoom and rotation and clear the history.",
			InputSchema: emptySchema(),
		},

		// Geometry and Comparison
		{
			Name:        "image_geometry",
			Description: "Set zoom (0.5-3) and/or rotation (-180 to 180 degrees). Omitted values keep their current setting.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"zoom": map[string]interface{}{
						"type":        "number",
						"description": "Zoom factor, 1 is native size",
					},
					"rotation": map[string]interface{}{
						"type":        "number",
						"description": "Rotation in degrees, clockwise",
					},
				},
			},
		},
		{
			Name:        "image_compare",
			Description: "Configure the before/after comparison. In split mode the adjusted image shows left of the split and the original right of it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"mode": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"split", "before"},
						"description": "split shows both, before shows only the original",
					},
					"split": map[string]interface{}{
						"type":        "number",
						"description": "Split position in percent of the width (0-100)",
					},
				},
			},
		},

		// Rendering
		{
			Name:        "image_preview",
			Description: "Render the live preview as a base64 PNG, together with the layer stack and CSS filter, transform and clip values it was drawn from.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Viewport width in pixels. Default 960",
						"default":     render.PreviewWidth,
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Viewport height in pixels. Default 560",
						"default":     render.PreviewHeight,
					},
					"include_image": map[string]interface{}{
						"type":        "boolean",
						"description": "Set false to return only the layer description. Default true",
						"default":     true,
					},
				},
			},
		},
		{
			Name:        "image_export",
			Description: "Export the adjusted image at twice its native size with the current filters, zoom and rotation. Writes edited-image.png or edited-image.jpg to the output directory and returns it as base64.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"format": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"png", "jpeg"},
						"description": "Output format. Default png",
						"default":     "png",
					},
					"write": map[string]interface{}{
						"type":        "boolean",
						"description": "Write the file to the output directory. Default true",
						"default":     true,
					},
					"include_base64": map[string]interface{}{
						"type":        "boolean",
						"description": "Include the encoded image in the result. Default true",
						"default":     true,
					},
				},
			},
		},
		{
			Name:        "image_sample_color",
			Description: "Get the color of a source pixel before and after the current adjustments.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate (0-based, from left)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate (0-based, from top)",
					},
				},
				"required": []string{"x", "y"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
