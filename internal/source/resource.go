package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// ErrUnsupportedType is returned for uploads that are not images.
var ErrUnsupportedType = errors.New("please select a valid image file")

// Kind tells where a resource came from.
type Kind string

const (
	KindFile   Kind = "file"
	KindURL    Kind = "url"
	KindUpload Kind = "upload"
)

// Resource is a decoded image plus where it came from. It is never modified
// after it is created.
type Resource struct {
	Image  image.Image `json:"-"`
	Origin string      `json:"origin"`
	Kind   Kind        `json:"kind"`
	Format string      `json:"format"`
	Width  int         `json:"width"`
	Height int         `json:"height"`
}

// Loader produces a resource. The session calls it outside its lock, so a
// slow decode never blocks editing commands.
type Loader func(ctx context.Context) (*Resource, error)

// CheckContentType verifies that a media type names an image.
func CheckContentType(contentType string) error {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if !strings.HasPrefix(ct, "image/") {
		return fmt.Errorf("%w: content type %q", ErrUnsupportedType, contentType)
	}
	return nil
}

// Decode decodes data into a resource. origin and kind are recorded as given.
func Decode(data []byte, origin string, kind Kind) (*Resource, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("failed to decode image: empty %s image", format)
	}

	return &Resource{
		Image:  img,
		Origin: origin,
		Kind:   kind,
		Format: format,
		Width:  b.Dx(),
		Height: b.Dy(),
	}, nil
}

// FromImage wraps an already decoded image.
func FromImage(img image.Image, origin string) *Resource {
	b := img.Bounds()
	return &Resource{
		Image:  img,
		Origin: origin,
		Kind:   KindUpload,
		Format: "memory",
		Width:  b.Dx(),
		Height: b.Dy(),
	}
}

// FromUpload returns a loader for uploaded bytes. An empty contentType is
// sniffed from the data. The type check runs before any decoding.
func FromUpload(data []byte, contentType, name string) Loader {
	return func(ctx context.Context) (*Resource, error) {
		if contentType == "" {
			contentType = http.DetectContentType(data)
		}
		if err := CheckContentType(contentType); err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if name == "" {
			name = "upload"
		}
		return Decode(data, name, KindUpload)
	}
}

// FromPath returns a loader reading path through cache.
func FromPath(cache *Cache, path string) Loader {
	return func(ctx context.Context) (*Resource, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return cache.Load(path)
	}
}

// FromURL returns a loader that validates rawURL and fetches it.
func FromURL(f *Fetcher, rawURL string) Loader {
	return func(ctx context.Context) (*Resource, error) {
		return f.Fetch(ctx, rawURL)
	}
}
