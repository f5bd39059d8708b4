// Package storage defines the read side of the file storage used for
// mail attachments.
package storage

import (
	"context"
	"io"
	"time"
)

// ObjectInfo represents metadata about a stored object.
type ObjectInfo struct {
	Key          string            // Object key/path
	Size         int64             // Object size in bytes
	LastModified time.Time         // Last modification time
	ETag         string            // Entity tag for versioning
	ContentType  string            // Content type, empty if unknown
	Metadata     map[string]string // User-defined metadata
}

// Reader opens stored objects for reading.
type Reader interface {
	// Get retrieves an object from the specified bucket.
	// The caller must close the returned reader.
	Get(ctx context.Context, bucket, key string) (io.ReadCloser, *ObjectInfo, error)

	io.Closer
}
