// Package store provides the capacity-limited key-value backends the case is
// persisted to.
package store

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned by Get when the key holds no value
	ErrNotFound = errors.New("key not found")
	// ErrQuotaExceeded is returned by Set when the write would exceed the store's capacity
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

// Store is a string-keyed blob store
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// DefaultNamespace prefixes every key written by casefile
const DefaultNamespace = "casefile:v1:"

// Key builds the namespaced key for one persisted section
func Key(namespace, section string) string {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if !strings.HasSuffix(namespace, ":") {
		namespace += ":"
	}
	return namespace + section
}
