// Package blob defines the content-addressed naming scheme shared by all
// blob store backends. A stored location is always
// "<prefix>/<digest><ext>" with forward slashes, so the same location works
// as a filesystem path and an object-store key.
package blob

import (
	"path"
	"path/filepath"
	"strings"
)

const (
	ImagesPrefix     = "images"
	ThumbnailsPrefix = "thumbnails"
)

// Ext extracts a safe, lowercase extension from a caller-supplied filename.
// The stem is discarded entirely; only the extension survives into the
// stored name.
func Ext(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if ext == "." {
		return ""
	}
	return ext
}

// Name derives the stored filename for a digest.
func Name(digest, ext string) string {
	return digest + ext
}

// Location derives the full stored location for a digest under a prefix.
func Location(prefix, digest, ext string) string {
	return path.Join(prefix, Name(digest, ext))
}
