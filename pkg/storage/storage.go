// Package storage defines the FileStore interface used to read enrollment
// voice samples and persist their embedding sidecar files. It abstracts the
// underlying backend so that voice samples can live on local disk or in an
// S3-compatible object store without changing enrollment code.
//
// The [Resolver] maps voice-sample locator strings (plain paths, file://,
// media-source://, s3://) to a concrete store and path.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrUnsupportedLocator is returned by [Resolver.Resolve] when a locator's
// scheme is not recognized or the matching backend is not configured.
var ErrUnsupportedLocator = errors.New("storage: unsupported locator")

// FileStore is a minimal interface for file-oriented storage.
//
// Paths are forward-slash separated and relative to the store root.
// Implementations must be safe for concurrent use.
type FileStore interface {
	// Read opens the named file for reading.
	// The caller must close the returned ReadCloser when done.
	// If the file does not exist, an error wrapping os.ErrNotExist is returned.
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Write opens the named file for writing.
	// If the file already exists it is truncated.
	// Parent directories are created automatically.
	// The caller must close the returned WriteCloser to flush data.
	Write(ctx context.Context, path string) (io.WriteCloser, error)

	// Delete removes the named file.
	// If the file does not exist, Delete returns nil (idempotent).
	Delete(ctx context.Context, path string) error

	// Exists reports whether the named file exists.
	Exists(ctx context.Context, path string) (bool, error)
}
