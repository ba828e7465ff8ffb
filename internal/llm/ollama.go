// ABOUTME: Ollama client speaking the local daemon's REST API
// ABOUTME: Implements both the Generator and Embedder contracts over HTTP
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// OllamaClient implements Generator and Embedder against an Ollama daemon.
// The embedding dimension is determined from the first successful response
// since it varies by model (768 for nomic-embed-text, 384 for all-minilm).
type OllamaClient struct {
	baseURL    string
	chatModel  string
	embedModel string
	dimension  int
	httpClient *http.Client
}

// NewOllamaClient creates a client for the daemon at baseURL
func NewOllamaClient(baseURL, chatModel, embedModel string, dimension int) *OllamaClient {
	if dimension <= 0 {
		dimension = 768
	}
	return &OllamaClient{
		baseURL:    baseURL,
		chatModel:  chatModel,
		embedModel: embedModel,
		dimension:  dimension,
		httpClient: &http.Client{},
	}
}

// Name returns the provider name for logging
func (o *OllamaClient) Name() string {
	return fmt.Sprintf("Ollama (%s)", o.chatModel)
}

// Dimension returns the embedding vector length
func (o *OllamaClient) Dimension() int {
	return o.dimension
}

// Embed generates embeddings for multiple texts in one daemon call
func (o *OllamaClient) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	payload := map[string]interface{}{
		"model": o.embedModel,
		"input": texts,
	}

	body, err := o.post(ctx, "/api/embed", payload)
	if err != nil {
		return nil, fmt.Errorf("ollama embed: %w", err)
	}

	var resp struct {
		Embeddings [][]float64 `json:"embeddings"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("ollama embed decode: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama embed: got %d embeddings for %d inputs", len(resp.Embeddings), len(texts))
	}

	if len(resp.Embeddings) > 0 && len(resp.Embeddings[0]) > 0 {
		o.dimension = len(resp.Embeddings[0])
	}

	return resp.Embeddings, nil
}

// Generate sends the prompt to the chat endpoint and returns the full response
func (o *OllamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	payload := map[string]interface{}{
		"model": o.chatModel,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": prompt},
		},
		"stream": false,
	}

	body, err := o.post(ctx, "/api/chat", payload)
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}

	var resp struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("ollama chat decode: %w", err)
	}
	if resp.Message.Content == "" {
		return "", fmt.Errorf("ollama chat: empty response")
	}

	return resp.Message.Content, nil
}

func (o *OllamaClient) post(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, truncateBody(body))
	}

	return body, nil
}

func truncateBody(b []byte) string {
	const limit = 200
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}
