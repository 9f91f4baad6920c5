package storage

import "context"

// RecordStore is a remote content-addressable path store holding one
// JSON document per grading run. Writes are append-only; the pipeline
// never mutates or deletes a stored record.
type RecordStore interface {
	// Put writes data at path with a human-readable change message.
	Put(ctx context.Context, path string, data []byte, message string) error
	// List returns every file path under prefix, depth-first by
	// directory, preserving the store's file order within a directory.
	// A missing prefix is an empty listing, not an error.
	List(ctx context.Context, prefix string) ([]string, error)
	// Get fetches the content at path.
	Get(ctx context.Context, path string) ([]byte, error)
}
