package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ppiankov/casefile/internal/model"
)

func TestOllamaProvider_Analyze_Success(t *testing.T) {
	var got ollamaRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Expected path /api/generate, got %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)

		_ = json.NewEncoder(w).Encode(ollamaResponse{
			Model:    "llama3.1:8b",
			Response: `{"statedAllegations": [{"claim": "Retaliation"}]}`,
			Done:     true,
		})
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "llama3.1:8b", Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Analyze(context.Background(), AnalyzeRequest{
		Inputs:  model.CaseInputs{Narrative: "Demoted after filing a complaint."},
		History: []model.ChatMessage{{Role: "user", Content: "first try"}},
	})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if !strings.Contains(resp.Text, "Retaliation") {
		t.Errorf("Unexpected text: %q", resp.Text)
	}
	if resp.TokensUsed == 0 {
		t.Error("Expected estimated token count")
	}
	if got.Format != "json" || got.Stream {
		t.Errorf("Expected non-streaming JSON request, got format=%q stream=%v", got.Format, got.Stream)
	}
	if !strings.Contains(got.Prompt, "USER: first try") || !strings.Contains(got.Prompt, "Demoted after filing a complaint.") {
		t.Errorf("Expected history and narrative in prompt, got %q", got.Prompt)
	}
}

func TestOllamaProvider_Analyze_RequiresModel(t *testing.T) {
	provider, err := NewOllamaProvider(Config{BaseURL: "http://127.0.0.1:1"})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	if _, err := provider.Analyze(context.Background(), AnalyzeRequest{Prompt: "x"}); err == nil {
		t.Fatal("Expected error without model")
	}
}

func TestOllamaProvider_Analyze_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": "model 'nope' not found"}`))
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "nope", Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Analyze(context.Background(), AnalyzeRequest{Prompt: "x"})
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected not found error, got %v", err)
	}
}

func TestOllamaProvider_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			_, _ = w.Write([]byte(`{"models": []}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL + "/"})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	if !provider.IsAvailable(context.Background()) {
		t.Error("Expected available to be true")
	}
}
