package blobstore

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestMemoryStore_PutGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	key, err := s.Put(ctx, "image/png", []byte("gambar"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if !ValidKey(key) {
		t.Fatalf("key %q is not a content address", key)
	}

	again, err := s.Put(ctx, "image/png", []byte("gambar"))
	if err != nil {
		t.Fatalf("put again: %v", err)
	}
	if again != key || s.Len() != 1 {
		t.Fatalf("identical bytes should share a key: %q vs %q (len %d)", key, again, s.Len())
	}

	b, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(b.Data) != "gambar" || b.ContentType != "image/png" {
		t.Fatalf("blob = %+v", b)
	}

	// Mutating the returned bytes must not reach the store.
	b.Data[0] = 'X'
	b2, _ := s.Get(ctx, key)
	if string(b2.Data) != "gambar" {
		t.Fatal("store shares bytes with callers")
	}
}

func TestMemoryStore_NotFound(t *testing.T) {
	_, err := NewMemoryStore().Get(context.Background(), Key([]byte("x")))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDataURI(t *testing.T) {
	b := &Blob{ContentType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}
	got := b.DataURI()
	if !strings.HasPrefix(got, "data:image/png;base64,") || !strings.HasSuffix(got, "iVBORw==") {
		t.Fatalf("DataURI() = %q", got)
	}
}

func TestValidKey(t *testing.T) {
	if ValidKey("sha256-../../etc/passwd") {
		t.Fatal("path traversal accepted")
	}
	if ValidKey("") {
		t.Fatal("empty key accepted")
	}
}

func TestNewMinIOStore_RequiresBucket(t *testing.T) {
	if _, err := NewMinIOStore(context.Background(), MinIOConfig{Endpoint: "localhost:9000"}); err == nil {
		t.Fatal("expected error without bucket")
	}
}
