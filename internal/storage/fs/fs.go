package fs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	internal_errors "github.com/picwall-dev/picwall/internal/errors"
	"github.com/picwall-dev/picwall/internal/hash"
	"github.com/picwall-dev/picwall/internal/service"
	"github.com/picwall-dev/picwall/internal/storage/blob"
)

// Storage is a content-addressed blob store on the local filesystem. A blob
// lives at <root>/<prefix>/<sha256><ext>; writing the same bytes twice is a
// no-op that returns the existing location.
type Storage struct {
	rootPath string
}

// Ensure Storage implements the interface at compile time.
var _ service.BlobStorage = (*Storage)(nil)

func New(rootPath string) (*Storage, error) {
	// Use filepath.Clean to prevent path traversal issues like "media/../"
	p := filepath.Clean(rootPath)

	if err := os.MkdirAll(p, 0755); err != nil {
		return nil, fmt.Errorf("failed to create root storage directory %s: %w", p, err)
	}

	return &Storage{rootPath: p}, nil
}

// Save streams content through the hasher into a temp file, then moves it to
// its content-addressed location. If a blob already exists there the temp
// file is discarded and the existing location returned unchanged: the path's
// content never changes after first write, so a hit needs no comparison.
func (s *Storage) Save(prefix, originalName string, content io.Reader) (string, error) {
	tmp, err := os.CreateTemp(s.rootPath, ".upload-*")
	if err != nil {
		return "", &internal_errors.StorageError{Op: "save", Location: prefix, Err: err}
	}
	tmpPath := tmp.Name()

	digest, err := hash.Sum(io.TeeReader(content, tmp))
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return "", &internal_errors.StorageError{Op: "save", Location: prefix, Err: err}
	}

	location := blob.Location(prefix, digest, blob.Ext(originalName))
	fullPath := s.fullPath(location)

	if _, err := os.Stat(fullPath); err == nil {
		// Dedup hit: identical bytes are already stored.
		os.Remove(tmpPath)
		return location, nil
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		os.Remove(tmpPath)
		return "", &internal_errors.StorageError{Op: "save", Location: location, Err: err}
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return "", &internal_errors.StorageError{Op: "save", Location: location, Err: err}
	}

	return location, nil
}

// Open opens a stored blob for reading.
func (s *Storage) Open(location string) (io.ReadCloser, error) {
	file, err := os.Open(s.fullPath(location))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, internal_errors.NotFound("blob " + location)
		}
		return nil, &internal_errors.StorageError{Op: "open", Location: location, Err: err}
	}
	return file, nil
}

// Exists reports whether a blob is stored at location.
func (s *Storage) Exists(location string) (bool, error) {
	_, err := os.Stat(s.fullPath(location))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, &internal_errors.StorageError{Op: "stat", Location: location, Err: err}
}

// Delete removes a blob. An already-missing blob is not an error: several
// image rows may have shared one thumbnail location in older data.
func (s *Storage) Delete(location string) error {
	err := os.Remove(s.fullPath(location))
	if err != nil && !os.IsNotExist(err) {
		return &internal_errors.StorageError{Op: "delete", Location: location, Err: err}
	}
	return nil
}

// Walk lists every stored blob location. Temp files from in-flight saves are
// skipped. Used by the garbage collector.
func (s *Storage) Walk() ([]string, error) {
	var locations []string
	err := filepath.Walk(s.rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.rootPath, path)
		if err != nil {
			return err
		}
		if filepath.Dir(rel) == "." {
			// temp upload file at the root, not a stored blob
			return nil
		}
		locations = append(locations, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, &internal_errors.StorageError{Op: "walk", Location: s.rootPath, Err: err}
	}
	return locations, nil
}

// ModTime returns when a blob was written. Used by the garbage collector's
// safety threshold.
func (s *Storage) ModTime(location string) (time.Time, error) {
	info, err := os.Stat(s.fullPath(location))
	if err != nil {
		return time.Time{}, &internal_errors.StorageError{Op: "stat", Location: location, Err: err}
	}
	return info.ModTime(), nil
}

func (s *Storage) fullPath(location string) string {
	return filepath.Join(s.rootPath, filepath.FromSlash(location))
}
