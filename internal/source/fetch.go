package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

var (
	// ErrEmptyURL is returned for a blank URL.
	ErrEmptyURL = errors.New("please enter an image URL")

	// ErrInvalidURL is returned for URLs that do not look like an image link.
	ErrInvalidURL = errors.New("please enter a valid image URL (jpg, png, webp, gif)")

	// ErrTooLarge is returned when a remote body exceeds the size limit.
	ErrTooLarge = errors.New("remote image exceeds size limit")
)

var imageURLPattern = regexp.MustCompile(`(?i)^https?://.+\.(jpg|jpeg|png|webp|gif)$`)

// ValidateURL trims raw and checks it against the accepted image URL shape.
// It returns the trimmed URL.
func ValidateURL(raw string) (string, error) {
	u := strings.TrimSpace(raw)
	if u == "" {
		return "", ErrEmptyURL
	}
	if !imageURLPattern.MatchString(u) {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, u)
	}
	return u, nil
}

// Default fetch limits.
const (
	DefaultFetchTimeout = 30 * time.Second
	DefaultMaxBytes     = 50 << 20
)

// Fetcher downloads remote images.
type Fetcher struct {
	Client   *http.Client
	MaxBytes int64
}

// NewFetcher returns a fetcher with the given timeout and body limit. Zero
// values select the defaults.
func NewFetcher(timeout time.Duration, maxBytes int64) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Fetcher{
		Client:   &http.Client{Timeout: timeout},
		MaxBytes: maxBytes,
	}
}

// Fetch validates rawURL, downloads it and decodes the body. A response whose
// Content-Type is present but not image/* is rejected.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Resource, error) {
	u, err := ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch image: %s", resp.Status)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/octet-stream") {
		if err := CheckContentType(ct); err != nil {
			return nil, err
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image body: %w", err)
	}
	if int64(len(data)) > f.MaxBytes {
		return nil, ErrTooLarge
	}

	return Decode(data, u, KindURL)
}
