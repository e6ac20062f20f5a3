package storage

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrNotFound is returned when deleting a key that does not exist.
	ErrNotFound = errors.New("blob not found")
	// ErrInvalidKey rejects keys that are empty or not in clean slash form.
	ErrInvalidKey = errors.New("invalid blob key")
)

// BlobStore keeps imported audio and hands back a URL a player can fetch.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	Name() string
}
