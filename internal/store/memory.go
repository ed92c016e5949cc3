package store

import (
	"context"
	"fmt"
	"sync"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps values in process memory with an optional byte capacity
type MemoryStore struct {
	mu       sync.Mutex
	cache    *gocache.Cache
	capacity int64
}

// NewMemoryStore creates a memory store; capacity <= 0 means unlimited
func NewMemoryStore(capacity int64) *MemoryStore {
	return &MemoryStore{
		cache:    gocache.New(gocache.NoExpiration, 0),
		capacity: capacity,
	}
}

// Get retrieves a value from the store
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	if val, found := s.cache.Get(key); found {
		return append([]byte(nil), val.([]byte)...), nil
	}
	return nil, ErrNotFound
}

// Set stores a value, rejecting writes that would exceed capacity
func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.capacity > 0 {
		used := s.usedExcept(key)
		if used+int64(len(key)+len(value)) > s.capacity {
			return fmt.Errorf("%w: %d of %d bytes used", ErrQuotaExceeded, used, s.capacity)
		}
	}
	s.cache.Set(key, append([]byte(nil), value...), gocache.NoExpiration)
	return nil
}

// Delete removes a value from the store
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}

// Clear removes all values from the store
func (s *MemoryStore) Clear(_ context.Context) error {
	s.cache.Flush()
	return nil
}

// Used reports the bytes currently held, keys included
func (s *MemoryStore) Used() int64 {
	return s.usedExcept("")
}

func (s *MemoryStore) usedExcept(skip string) int64 {
	var used int64
	for k, item := range s.cache.Items() {
		if k == skip {
			continue
		}
		if b, ok := item.Object.([]byte); ok {
			used += int64(len(k) + len(b))
		}
	}
	return used
}
