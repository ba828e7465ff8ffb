// ABOUTME: Tests for the Ollama HTTP client against a stub daemon
// ABOUTME: Covers batch embedding, chat generation, and error surfaces
package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaEmbed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("path = %q, want /api/embed", r.URL.Path)
		}

		var req struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Model != "nomic-embed-text" {
			t.Errorf("model = %q", req.Model)
		}

		embeddings := make([][]float64, len(req.Input))
		for i := range embeddings {
			embeddings[i] = []float64{0.1, 0.2, 0.3, 0.4}
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"embeddings": embeddings})
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL, "llama3.2", "nomic-embed-text", 768)

	vectors, err := client.Embed(context.Background(), []string{"one", "two"})
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("got %d vectors, want 2", len(vectors))
	}

	// Dimension updates from the first real response
	if client.Dimension() != 4 {
		t.Errorf("Dimension() = %d, want 4", client.Dimension())
	}
}

func TestOllamaEmbed_CountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"embeddings": [][]float64{{0.1}}})
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL, "llama3.2", "nomic-embed-text", 768)
	if _, err := client.Embed(context.Background(), []string{"one", "two"}); err == nil {
		t.Error("expected error when response count does not match input count")
	}
}

func TestOllamaGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %q, want /api/chat", r.URL.Path)
		}

		var req struct {
			Stream   bool `json:"stream"`
			Messages []struct {
				Role string `json:"role"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Stream {
			t.Error("stream should be false")
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": map[string]string{"role": "assistant", "content": "# Generated"},
		})
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL, "llama3.2", "nomic-embed-text", 768)

	text, err := client.Generate(context.Background(), "write a readme")
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if text != "# Generated" {
		t.Errorf("Generate() = %q", text)
	}
}

func TestOllamaGenerate_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL, "missing-model", "nomic-embed-text", 768)
	if _, err := client.Generate(context.Background(), "prompt"); err == nil {
		t.Error("expected error for non-200 response")
	}
}

func TestOllamaGenerate_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": map[string]string{"role": "assistant", "content": ""},
		})
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL, "llama3.2", "nomic-embed-text", 768)
	if _, err := client.Generate(context.Background(), "prompt"); err == nil {
		t.Error("expected error for empty content")
	}
}
