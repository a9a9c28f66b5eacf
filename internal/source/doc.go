// Package source resolves image resources for the editor.
//
// A resource can come from a local file, a remote http(s) URL or raw uploaded
// bytes. Whatever the origin, the result is an immutable *Resource holding the
// decoded image; the editing core never sees files, URLs or MIME types.
//
// # Validation
//
// Two checks run before anything is decoded:
//   - Uploads must carry an image/* content type. When the caller does not
//     know it, the type is sniffed from the leading bytes.
//   - URLs are trimmed and must match, case-insensitively,
//     ^https?://.+\.(jpg|jpeg|png|webp|gif)$
//
// Failures are returned as errors wrapping ErrUnsupportedType, ErrEmptyURL or
// ErrInvalidURL so callers can report them without touching editor state.
//
// # Formats
//
// PNG, JPEG and GIF decoders come from the standard library; WebP is
// registered from golang.org/x/image/webp. JPEG EXIF orientation is applied
// on decode.
//
// # Thread Safety
//
// Cache and Fetcher are safe for concurrent use.
package source
