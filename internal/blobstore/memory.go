package blobstore

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps blobs in process memory. It is the default store:
// assessments live only as long as the process, and so do their pictures.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]Blob
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string]Blob)}
}

func (s *MemoryStore) Put(_ context.Context, contentType string, data []byte) (string, error) {
	key := Key(data)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[key]; !ok {
		s.blobs[key] = Blob{Key: key, ContentType: contentType, Data: slices.Clone(data)}
	}
	return key, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (*Blob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[key]
	if !ok {
		return nil, ErrNotFound
	}
	b.Data = slices.Clone(b.Data)
	return &b, nil
}

// Len returns the number of stored blobs.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
