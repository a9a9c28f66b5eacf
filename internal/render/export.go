package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/image-adjust-mcp/internal/adjust"
)

// Export settings.
const (
	// Supersample is the factor the export surface is enlarged by.
	Supersample = 2

	// JPEGQuality is the encoder quality used for JPEG exports.
	JPEGQuality = 95

	// ExportBaseName is the download name without extension.
	ExportBaseName = "edited-image"
)

// ErrUnknownFormat is returned by ParseFormat.
var ErrUnknownFormat = errors.New("unsupported export format")

// Format is an export encoding.
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
)

// ParseFormat accepts "png", "jpg" and "jpeg" in any case. An empty string
// selects PNG.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Extension returns the file extension without the dot.
func (f Format) Extension() string {
	if f == JPEG {
		return "jpg"
	}
	return "png"
}

// MimeType returns the media type of the encoding.
func (f Format) MimeType() string {
	if f == JPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// Artifact is an encoded export ready for delivery.
type Artifact struct {
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
	Format   Format `json:"format"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Recipe   Recipe `json:"recipe"`
	Data     []byte `json:"-"`
}

// Base64 returns the encoded image as standard base64.
func (a *Artifact) Base64() string {
	return base64.StdEncoding.EncodeToString(a.Data)
}

// Deliver writes the artifact into dir under its download name and returns
// the written path. dir is created if needed.
func (a *Artifact) Deliver(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, a.Filename)
	if err := os.WriteFile(path, a.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", a.Filename, err)
	}
	return path, nil
}

// Export rasterizes src with the edit state s and encodes it as f.
//
// The surface is Supersample times the source size. Its origin is moved to
// the surface center, rotated, scaled by the zoom, and the source is drawn
// centered at its native size. The layer drawn is the compositor's
// AfterLayer with nothing clipped, so the export matches the preview's
// filtered layer.
//
// ctx is checked before rasterizing and before encoding; a running
// rasterization is not interrupted.
func Export(ctx context.Context, src image.Image, s adjust.Snapshot, f Format) (*Artifact, error) {
	if src == nil {
		return nil, errors.New("no source image")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := src.Bounds()
	surface := image.NewNRGBA(image.Rect(0, 0, b.Dx()*Supersample, b.Dy()*Supersample))

	layer := AfterLayer(s, 100)
	layer.Recipe.Draw(surface, src, layer.Clip, Centered(surface.Bounds(), 1))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := encode(&buf, surface, f); err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}

	return &Artifact{
		Filename: ExportBaseName + "." + f.Extension(),
		MimeType: f.MimeType(),
		Format:   f,
		Width:    surface.Bounds().Dx(),
		Height:   surface.Bounds().Dy(),
		Recipe:   layer.Recipe,
		Data:     buf.Bytes(),
	}, nil
}

func encode(buf *bytes.Buffer, img image.Image, f Format) error {
	switch f {
	case JPEG:
		return imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality))
	case PNG:
		return imaging.Encode(buf, img, imaging.PNG)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
}

// EncodePNG encodes img as PNG. Used for preview images.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, img, PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
