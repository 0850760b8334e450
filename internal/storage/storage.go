// Package storage abstracts the external blob store holding request
// attachments. Objects are addressed by a bucket-relative path; the
// relational metadata row for each object lives in the attachment table.
package storage

import "context"

// BlobStore persists and removes binary objects. Put must not overwrite an
// existing object silently; paths are expected to be unique per object.
type BlobStore interface {
	Put(ctx context.Context, path string, data []byte) error
	Delete(ctx context.Context, path string) error
}
