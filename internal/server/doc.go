// Package server implements the MCP (Model Context Protocol) server for the
// image adjustment editor.
//
// This package provides a JSON-RPC 2.0 server that exposes one editing
// session through the MCP protocol. A client loads an image, tunes its
// filters, zoom and rotation, compares before and after, and exports the
// result.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Image Source:
//   - image_load: Load from a path, URL or base64 data; starts a new session
//   - image_state: Current adjustments, geometry, history and comparison
//
// Adjustments:
//   - image_adjust: Set channel values
//   - image_step: Nudge a channel, zoom or rotation by one step
//   - image_presets: List the preset catalog
//   - image_apply_preset: Apply a preset as one undo step
//
// History:
//   - image_undo, image_redo: Move through the adjustment history
//   - image_reset: Back to defaults with a fresh history
//
// Geometry and Comparison:
//   - image_geometry: Set zoom and rotation
//   - image_compare: Split view or before-only, and the split position
//
// Rendering:
//   - image_preview: Rasterized preview plus its layer description
//   - image_export: edited-image.png or edited-image.jpg at twice native size
//   - image_sample_color: One pixel before and after the adjustments
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// Commands other than image_load and image_state fail with "no image loaded"
// until an image is loaded.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	srv := server.New(cfg)
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
