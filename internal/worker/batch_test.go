package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/casefile/internal/model"
)

type mockChecker struct {
	failOn string
}

func (m *mockChecker) CheckFile(ctx context.Context, path string) (*model.CheckReport, error) {
	time.Sleep(time.Millisecond)
	if m.failOn != "" && strings.Contains(path, m.failOn) {
		return nil, errors.New("check error")
	}
	return &model.CheckReport{Source: path, Parsed: true}, nil
}

func writeList(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "responses.txt")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBatchProcessor_ProcessPaths(t *testing.T) {
	processor := NewBatchProcessor(&mockChecker{failOn: "bad"}, 2)

	results := processor.ProcessPaths(context.Background(), []string{"c.txt", "bad.txt", "a.txt"})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	want := []string{"a.txt", "bad.txt", "c.txt"}
	for i, r := range results {
		if r.Path != want[i] {
			t.Errorf("expected %s at %d, got %s", want[i], i, r.Path)
		}
	}
	if results[1].Error == nil || results[1].Report != nil {
		t.Errorf("expected error and no report for bad.txt, got %+v", results[1])
	}
	if results[0].Error != nil || results[0].Report == nil || !results[0].Report.Parsed {
		t.Errorf("unexpected result for a.txt: %+v", results[0])
	}
}

func TestBatchProcessor_ManyPaths(t *testing.T) {
	processor := NewBatchProcessor(&mockChecker{}, 3)

	paths := make([]string, 60)
	for i := range paths {
		paths[i] = fmt.Sprintf("resp-%02d.json", i)
	}

	results := processor.ProcessPaths(context.Background(), paths)
	if len(results) != len(paths) {
		t.Fatalf("expected %d results, got %d", len(paths), len(results))
	}
	for _, r := range results {
		if r.GetError() != nil {
			t.Errorf("unexpected error for %s: %v", r.Path, r.Error)
		}
	}
}

func TestBatchProcessor_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	processor := NewBatchProcessor(&mockChecker{}, 2)
	results := processor.ProcessPaths(ctx, []string{"a", "b", "c"})

	if len(results) != 3 {
		t.Fatalf("expected a result per path, got %d", len(results))
	}
	for _, r := range results {
		if !errors.Is(r.Error, context.Canceled) {
			t.Errorf("expected cancellation for %s, got %v", r.Path, r.Error)
		}
	}
}

func TestBatchProcessor_ProcessPaths_Empty(t *testing.T) {
	processor := NewBatchProcessor(&mockChecker{}, 2)

	results := processor.ProcessPaths(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestReadPathsFromFile(t *testing.T) {
	list := writeList(t, "one.json\n# comment\ntwo.txt\n   \n  three.md  \none.json\n")

	paths, err := ReadPathsFromFile(list)
	if err != nil {
		t.Fatalf("ReadPathsFromFile failed: %v", err)
	}

	expected := []string{"one.json", "two.txt", "three.md"}
	if len(paths) != len(expected) {
		t.Fatalf("expected %d paths, got %v", len(expected), paths)
	}
	for i, p := range paths {
		if p != expected[i] {
			t.Errorf("expected %s at index %d, got %s", expected[i], i, p)
		}
	}
}

func TestReadPathsFromFile_NonExistent(t *testing.T) {
	if _, err := ReadPathsFromFile("non_existent_file.txt"); err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	processor := NewBatchProcessor(&mockChecker{}, 2)

	results, err := processor.ProcessFile(context.Background(), writeList(t, "a\nb\n# c\n"))
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}

	if _, err := processor.ProcessFile(context.Background(), "no_such_file.txt"); err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}
