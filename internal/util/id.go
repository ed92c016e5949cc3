package util

import "github.com/google/uuid"

// NewID returns a fresh stable identifier, optionally prefixed
func NewID(prefix string) string {
	id := uuid.NewString()
	if prefix == "" {
		return id
	}
	return prefix + "_" + id
}
