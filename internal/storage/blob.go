package storage

import "io"

// BlobStore keeps the original uploaded package bytes so a course can be
// reloaded after a process restart without the user re-uploading.
type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
	Delete(key string) error
}
