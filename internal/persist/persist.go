// Package persist loads and saves case sections through a Store, turning every
// storage problem into a typed *model.Failure.
package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ppiankov/casefile/internal/logger"
	"github.com/ppiankov/casefile/internal/model"
	"github.com/ppiankov/casefile/internal/store"
)

// Persisted sections
const (
	SectionCase  = "case"
	SectionBoard = "board"
)

// Adapter reads and writes JSON sections under a key namespace
type Adapter struct {
	store     store.Store
	namespace string
	log       *logger.Logger
}

// New creates an adapter; a nil logger discards output
func New(s store.Store, namespace string, log *logger.Logger) *Adapter {
	if log == nil {
		log = logger.Nop()
	}
	return &Adapter{store: s, namespace: namespace, log: log}
}

// Key returns the store key for a section
func (a *Adapter) Key(section string) string {
	return store.Key(a.namespace, section)
}

// Load decodes the section into a T. A missing section yields def with no
// error. A store read error yields def and a StorageReadFailed failure: the
// stored data may be intact, so callers must not overwrite it. A value that
// does not decode yields def and a CorruptPersistedState failure.
func Load[T any](ctx context.Context, a *Adapter, section string, def T) (out T, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = def
			err = &model.Failure{
				Kind:    model.FailureReadFailed,
				Section: section,
				Message: fmt.Sprintf("panic while loading: %v", r),
			}
		}
	}()

	key := a.Key(section)
	data, err := a.store.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return def, nil
	}
	if err != nil {
		a.log.Warn("read persisted section failed", "section", section, "key", key, "error", err)
		return def, &model.Failure{Kind: model.FailureReadFailed, Section: section, Message: "section could not be read", Err: err}
	}
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return def, nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		a.log.Warn("persisted section is corrupt, using default", "section", section, "key", key, "bytes", len(data), "error", err)
		return def, &model.Failure{Kind: model.FailureCorruptState, Section: section, Message: "section could not be decoded", Err: err}
	}
	return v, nil
}

// Save encodes v and writes it under the section key
func (a *Adapter) Save(ctx context.Context, section string, v any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &model.Failure{
				Kind:    model.FailureWriteFailed,
				Section: section,
				Message: fmt.Sprintf("panic while saving: %v", r),
			}
		}
	}()

	data, err := json.Marshal(v)
	if err != nil {
		return &model.Failure{Kind: model.FailureWriteFailed, Section: section, Message: "section could not be encoded", Err: err}
	}

	key := a.Key(section)
	if err := a.store.Set(ctx, key, data); err != nil {
		kind := model.FailureWriteFailed
		if errors.Is(err, store.ErrQuotaExceeded) {
			kind = model.FailureQuotaExceeded
		}
		a.log.Error("persist section failed", "section", section, "key", key, "bytes", len(data), "kind", kind, "error", err)
		return &model.Failure{Kind: kind, Section: section, Message: "section could not be saved", Err: err}
	}
	a.log.Debug("persisted section", "section", section, "key", key, "bytes", len(data))
	return nil
}

// Clear removes every persisted section
func (a *Adapter) Clear(ctx context.Context) error {
	var errs []error
	for _, section := range []string{SectionCase, SectionBoard} {
		if err := a.store.Delete(ctx, a.Key(section)); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return &model.Failure{Kind: model.FailureWriteFailed, Message: "sections could not be cleared", Err: err}
	}
	return nil
}
