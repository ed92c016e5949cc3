package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"
)

// DiskStore keeps one file per key under dir
type DiskStore struct {
	mu       sync.Mutex
	dir      string
	capacity int64
}

// NewDiskStore creates a disk store; capacity <= 0 means unlimited
func NewDiskStore(dir string, capacity int64) *DiskStore {
	return &DiskStore{
		dir:      dir,
		capacity: capacity,
	}
}

type diskEntry struct {
	Key       string    `json:"key"`
	Data      []byte    `json:"data"`
	WrittenAt time.Time `json:"written_at"`
}

// Get retrieves a value from disk
func (s *DiskStore) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read store file: %w", err)
	}

	var entry diskEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		// Hand back the raw bytes so the caller can classify them as corrupt
		return data, nil
	}
	return entry.Data, nil
}

// Set writes a value atomically, rejecting writes that would exceed capacity
func (s *DiskStore) Set(_ context.Context, key string, value []byte) error {
	data, err := json.Marshal(diskEntry{Key: key, Data: value, WrittenAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create store dir: %w", classifyFSError(err))
	}

	path := s.path(key)
	if s.capacity > 0 {
		used, err := s.usedExcept(path)
		if err != nil {
			return err
		}
		if used+int64(len(data)) > s.capacity {
			return fmt.Errorf("%w: %d of %d bytes used", ErrQuotaExceeded, used, s.capacity)
		}
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", classifyFSError(err))
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write store file: %w", classifyFSError(err))
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close store file: %w", classifyFSError(err))
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename store file: %w", classifyFSError(err))
	}
	return nil
}

// Delete removes a value from disk; a missing key is not an error
func (s *DiskStore) Delete(_ context.Context, key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove store file: %w", err)
	}
	return nil
}

// Clear removes every stored file
func (s *DiskStore) Clear(_ context.Context) error {
	return os.RemoveAll(s.dir)
}

// path maps a key to a file name that is safe on every filesystem
func (s *DiskStore) path(key string) string {
	hash := sha256.Sum256([]byte(key))
	return filepath.Join(s.dir, hex.EncodeToString(hash[:])+".json")
}

func (s *DiskStore) usedExcept(skip string) (int64, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("read store dir: %w", err)
	}
	var used int64
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		if filepath.Join(s.dir, e.Name()) == skip {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		used += info.Size()
	}
	return used, nil
}

// classifyFSError maps a full device onto ErrQuotaExceeded
func classifyFSError(err error) error {
	if errors.Is(err, syscall.ENOSPC) {
		return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
	}
	return err
}
