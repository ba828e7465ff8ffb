// ABOUTME: OpenAI client for embeddings and README generation
// ABOUTME: Uses text-embedding-3-small for embeddings, gpt-4o-mini for chat (configurable)
package llm

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/harper/readmegen/internal/config"
	"github.com/harper/readmegen/internal/util"
)

const (
	// DefaultChatModel is the default model for chat completions
	DefaultChatModel = "gpt-4o-mini"
	// DefaultEmbeddingModel is the default model for embeddings
	DefaultEmbeddingModel = string(openai.SmallEmbedding3)
)

const systemPrompt = "You are a helpful assistant that creates professional README documentation for software projects."

// OpenAIClient wraps the OpenAI API client with retry logic and rate limiting
type OpenAIClient struct {
	client         *openai.Client
	chatModel      string
	embeddingModel openai.EmbeddingModel
	dimension      int
	batchSize      int
	maxRetries     int
	retryDelay     time.Duration
	limiter        *rate.Limiter
}

// NewOpenAIClient creates a new OpenAI client from the pipeline configuration
func NewOpenAIClient(apiKey string, cfg *config.Config) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	chatModel := cfg.ChatModel
	if chatModel == "" {
		chatModel = DefaultChatModel
	}
	embeddingModel := cfg.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = DefaultEmbeddingModel
	}

	// Dimension is fixed per embedding model
	dimension := 1536
	if embeddingModel == string(openai.LargeEmbedding3) {
		dimension = 3072
	}
	if cfg.VectorDimension > 0 && cfg.EmbeddingProvider == "openai" {
		dimension = cfg.VectorDimension
	}

	return &OpenAIClient{
		client:         openai.NewClient(apiKey),
		chatModel:      chatModel,
		embeddingModel: openai.EmbeddingModel(embeddingModel),
		dimension:      dimension,
		batchSize:      cfg.EmbedBatchSize,
		maxRetries:     cfg.MaxRetries,
		retryDelay:     cfg.RetryDelay,
		limiter:        rate.NewLimiter(rate.Limit(cfg.EmbedRateLimit), 1),
	}, nil
}

// Name returns the provider name for logging
func (c *OpenAIClient) Name() string {
	return fmt.Sprintf("OpenAI (%s)", c.chatModel)
}

// Dimension returns the embedding vector length for the configured model
func (c *OpenAIClient) Dimension() int {
	return c.dimension
}

// Embed generates embedding vectors for a batch of texts, preserving order.
// Large batches are split to respect the API input limit; each sub-batch is
// rate limited and retried with exponential backoff.
func (c *OpenAIClient) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, 0, len(texts))

	for start := 0; start < len(texts); start += c.batchSize {
		end := start + c.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch, err := c.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}

	return vectors, nil
}

func (c *OpenAIClient) embedBatch(ctx context.Context, batch []string) ([][]float64, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(util.Backoff(c.retryDelay, attempt, 0)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
			Input: batch,
			Model: c.embeddingModel,
		})
		if err != nil {
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			continue
		}
		if len(resp.Data) != len(batch) {
			lastErr = fmt.Errorf("attempt %d: got %d embeddings for %d inputs", attempt+1, len(resp.Data), len(batch))
			continue
		}

		vectors := make([][]float64, len(resp.Data))
		for i, item := range resp.Data {
			vec := make([]float64, len(item.Embedding))
			for j, v := range item.Embedding {
				vec[j] = float64(v)
			}
			vectors[i] = vec
		}
		return vectors, nil
	}

	return nil, fmt.Errorf("failed to generate embeddings after %d attempts: %w", c.maxRetries+1, lastErr)
}

// Generate runs one chat completion for the given prompt.
// The caller bounds the call with a context deadline; no retry is attempted
// since generation failures are handled by the orchestrator's fallbacks.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}
