package persist

import (
	"context"
	"errors"
	"testing"

	"github.com/ppiankov/casefile/internal/model"
	"github.com/ppiankov/casefile/internal/store"
)

type payload struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

// panicStore blows up on every call
type panicStore struct{}

func (panicStore) Get(context.Context, string) ([]byte, error) { panic("boom") }
func (panicStore) Set(context.Context, string, []byte) error   { panic("boom") }
func (panicStore) Delete(context.Context, string) error        { panic("boom") }
func (panicStore) Clear(context.Context) error                 { panic("boom") }

// failStore rejects every write with err
type failStore struct {
	store.Store
	err error
}

func (f failStore) Set(context.Context, string, []byte) error { return f.err }

func TestLoad_MissingReturnsDefault(t *testing.T) {
	a := New(store.NewMemoryStore(0), "", nil)
	def := payload{Name: "default"}

	got, err := Load(context.Background(), a, SectionCase, def)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.Name != "default" {
		t.Errorf("expected default, got %+v", got)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	a := New(store.NewMemoryStore(0), "", nil)

	if err := a.Save(ctx, SectionBoard, payload{Name: "x", Items: []string{"a"}}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := Load(ctx, a, SectionBoard, payload{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Name != "x" || len(got.Items) != 1 {
		t.Errorf("unexpected payload %+v", got)
	}
}

func TestLoad_CorruptReturnsDefaultAndFailure(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore(0)
	a := New(s, "", nil)
	if err := s.Set(ctx, a.Key(SectionCase), []byte(`{"name": 12`)); err != nil {
		t.Fatal(err)
	}

	got, err := Load(ctx, a, SectionCase, payload{Name: "default"})
	if got.Name != "default" {
		t.Errorf("expected default on corrupt data, got %+v", got)
	}
	var f *model.Failure
	if !errors.As(err, &f) || f.Kind != model.FailureCorruptState || f.Section != SectionCase {
		t.Errorf("expected CorruptPersistedState for case, got %v", err)
	}
}

func TestSave_QuotaExceeded(t *testing.T) {
	ctx := context.Background()
	a := New(store.NewMemoryStore(16), "", nil)

	err := a.Save(ctx, SectionCase, payload{Name: "far too large for sixteen bytes"})
	var f *model.Failure
	if !errors.As(err, &f) {
		t.Fatalf("expected *model.Failure, got %T %v", err, err)
	}
	if f.Kind != model.FailureQuotaExceeded {
		t.Errorf("expected StorageQuotaExceeded, got %s", f.Kind)
	}
	if !errors.Is(err, store.ErrQuotaExceeded) {
		t.Error("expected the store error to be wrapped")
	}
}

func TestSave_WriteFailedIsDistinct(t *testing.T) {
	a := New(failStore{Store: store.NewMemoryStore(0), err: errors.New("disk on fire")}, "", nil)
	err := a.Save(context.Background(), SectionBoard, payload{})
	if model.KindOf(err) != model.FailureWriteFailed {
		t.Errorf("expected StorageWriteFailed, got %v", err)
	}
}

func TestSave_EncodingFailure(t *testing.T) {
	a := New(store.NewMemoryStore(0), "", nil)
	err := a.Save(context.Background(), SectionCase, map[string]any{"bad": make(chan int)})
	if model.KindOf(err) != model.FailureWriteFailed {
		t.Errorf("expected StorageWriteFailed, got %v", err)
	}
}

func TestPanicsDoNotEscape(t *testing.T) {
	ctx := context.Background()
	a := New(panicStore{}, "", nil)

	if err := a.Save(ctx, SectionCase, payload{}); model.KindOf(err) != model.FailureWriteFailed {
		t.Errorf("expected StorageWriteFailed from panicking Save, got %v", err)
	}
	got, err := Load(ctx, a, SectionCase, payload{Name: "default"})
	if got.Name != "default" || model.KindOf(err) != model.FailureReadFailed {
		t.Errorf("expected default and StorageReadFailed, got %+v, %v", got, err)
	}
}

// readFailStore fails every read with err
type readFailStore struct {
	store.Store
	err error
}

func (f readFailStore) Get(context.Context, string) ([]byte, error) { return nil, f.err }

func TestLoad_ReadErrorIsNotCorruption(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore(0)
	a := New(readFailStore{Store: s, err: errors.New("connection refused")}, "", nil)

	got, err := Load(ctx, a, SectionCase, payload{Name: "default"})
	if got.Name != "default" {
		t.Errorf("expected default, got %+v", got)
	}
	var f *model.Failure
	if !errors.As(err, &f) || f.Kind != model.FailureReadFailed || f.Section != SectionCase {
		t.Fatalf("expected StorageReadFailed for case, got %v", err)
	}
	if !f.Kind.Fatal() {
		t.Error("expected read failure to be fatal")
	}
}

func TestKeysAreNamespaced(t *testing.T) {
	a := New(store.NewMemoryStore(0), "", nil)
	if a.Key(SectionCase) != "casefile:v1:case" || a.Key(SectionBoard) != "casefile:v1:board" {
		t.Errorf("unexpected keys %s %s", a.Key(SectionCase), a.Key(SectionBoard))
	}
}
