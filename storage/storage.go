// Package storage is the blob-storage collaborator consumed by the media
// pipeline. Any URL-returning backend satisfies it; the pipeline never
// assumes a filesystem.
package storage

import "errors"

// ErrOutsideRoot is returned when a URL resolves outside the configured
// storage root. Such paths are refused rather than deleted.
var ErrOutsideRoot = errors.New("storage: path outside storage root")

type Storage interface {
	// Store persists data under the given relative name and returns a
	// retrievable URL.
	Store(name string, data []byte) (string, error)
	// Read fetches the stored bytes back for verification.
	Read(url string) ([]byte, error)
	// Delete removes the object. The bool reports whether anything was
	// removed; a missing object is not an error.
	Delete(url string) (bool, error)
}
