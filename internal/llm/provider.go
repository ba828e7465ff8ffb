// ABOUTME: Provider interfaces and factory for generation and embedding backends
// ABOUTME: Auto-detects the provider from a model string (gpt-* vs ollama models)
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/harper/readmegen/internal/config"
)

// Generator is the opaque prompt-in/text-out contract for LLM backends.
// Callers bound each call with a context deadline; a timeout or backend
// failure surfaces as an error and is never retried here.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// Embedder produces fixed-dimension vectors for text batches.
// The returned slice has the same length and order as the input.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
	Dimension() int
}

// DetectProvider splits a model string into (provider, model).
//
//	"gpt-4o-mini"          -> ("openai", "gpt-4o-mini")
//	"openai:gpt-4o"        -> ("openai", "gpt-4o")
//	"ollama:llama3.2:3b"   -> ("ollama", "llama3.2:3b")
//	"llama3.2:latest"      -> ("ollama", "llama3.2:latest")
func DetectProvider(model string) (string, string) {
	model = strings.TrimSpace(model)

	if name, rest, ok := strings.Cut(model, ":"); ok {
		switch name {
		case "openai", "ollama":
			return name, rest
		}
	}

	lower := strings.ToLower(model)
	if strings.HasPrefix(lower, "gpt-") || strings.HasPrefix(lower, "o1") {
		return "openai", model
	}

	// Everything else is assumed to be a local Ollama model
	return "ollama", model
}

// NewGenerator creates a generation backend for the configured provider
func NewGenerator(cfg *config.Config) (Generator, error) {
	provider, model := DetectProvider(cfg.ChatModel)
	if cfg.Provider != "" && cfg.Provider != "auto" {
		provider = cfg.Provider
	}

	switch provider {
	case "openai":
		client, err := NewOpenAIClient(cfg.OpenAIKey, cfg)
		if err != nil {
			return nil, err
		}
		client.chatModel = model
		return client, nil
	case "ollama":
		return NewOllamaClient(cfg.OllamaURL, model, cfg.EmbeddingModel, cfg.VectorDimension), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s (use 'openai' or 'ollama')", provider)
	}
}

// NewEmbedder creates an embedding backend for the configured provider
func NewEmbedder(cfg *config.Config) (Embedder, error) {
	switch cfg.EmbeddingProvider {
	case "openai":
		return NewOpenAIClient(cfg.OpenAIKey, cfg)
	case "ollama":
		return NewOllamaClient(cfg.OllamaURL, cfg.ChatModel, cfg.EmbeddingModel, cfg.VectorDimension), nil
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.EmbeddingProvider)
	}
}
