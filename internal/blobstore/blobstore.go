// Package blobstore keeps generated illustrations out of the assessment
// record. Blobs are content-addressed: the key is derived from the bytes.
package blobstore

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"regexp"
)

// ErrNotFound is returned by Get for an unknown key.
var ErrNotFound = errors.New("blob not found")

// Blob is a stored payload with its media type.
type Blob struct {
	Key         string
	ContentType string
	Data        []byte
}

// DataURI renders the blob as a self-contained data: URI.
func (b *Blob) DataURI() string {
	return "data:" + b.ContentType + ";base64," + base64.StdEncoding.EncodeToString(b.Data)
}

// Store persists blobs under content-derived keys.
type Store interface {
	// Put stores data and returns its key. Storing the same bytes twice
	// returns the same key.
	Put(ctx context.Context, contentType string, data []byte) (string, error)

	// Get returns the blob for key or ErrNotFound.
	Get(ctx context.Context, key string) (*Blob, error)
}

var keyPattern = regexp.MustCompile(`^sha256-[0-9a-f]{64}$`)

// Key returns the content address for data.
func Key(data []byte) string {
	sum := sha256.Sum256(data)
	return "sha256-" + hex.EncodeToString(sum[:])
}

// ValidKey reports whether key has the shape produced by Key.
func ValidKey(key string) bool {
	return keyPattern.MatchString(key)
}
