package store

import (
	"context"
	"errors"
)

// LayeredStore fronts a durable store with a memory copy
type LayeredStore struct {
	memory Store
	disk   Store
}

// NewLayeredStore creates a memory-over-disk store; capacity applies to the disk layer
func NewLayeredStore(diskDir string, capacity int64) *LayeredStore {
	return &LayeredStore{
		memory: NewMemoryStore(0),
		disk:   NewDiskStore(diskDir, capacity),
	}
}

// Get checks memory first, then disk
func (s *LayeredStore) Get(ctx context.Context, key string) ([]byte, error) {
	if val, err := s.memory.Get(ctx, key); err == nil {
		return val, nil
	}

	val, err := s.disk.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	// Promote to memory
	_ = s.memory.Set(ctx, key, val)
	return val, nil
}

// Set writes disk first so a rejected write never lingers in memory
func (s *LayeredStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.disk.Set(ctx, key, value); err != nil {
		return err
	}
	return s.memory.Set(ctx, key, value)
}

// Delete removes a value from both layers
func (s *LayeredStore) Delete(ctx context.Context, key string) error {
	return errors.Join(s.memory.Delete(ctx, key), s.disk.Delete(ctx, key))
}

// Clear removes all values from both layers
func (s *LayeredStore) Clear(ctx context.Context) error {
	return errors.Join(s.memory.Clear(ctx), s.disk.Clear(ctx))
}
