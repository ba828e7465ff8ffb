// ABOUTME: Centralized configuration for the readmegen pipeline
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the generation pipeline
type Config struct {
	// Generation provider settings
	Provider  string
	ChatModel string
	OpenAIKey string
	OllamaURL string

	// Embedding settings
	EmbeddingProvider string
	EmbeddingModel    string
	VectorDimension   int
	EmbedBatchSize    int
	EmbedRateLimit    float64

	// Timeouts per pipeline phase
	SectionTimeout time.Duration
	PolishTimeout  time.Duration
	RepairTimeout  time.Duration

	// Retry behavior
	MaxRetries int
	RetryDelay time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		// Defaults
		Provider:          getEnv("READMEGEN_PROVIDER", "auto"),
		ChatModel:         getEnv("READMEGEN_MODEL", "llama3.2:latest"),
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		OllamaURL:         getEnv("OLLAMA_HOST", "http://localhost:11434"),
		EmbeddingProvider: getEnv("READMEGEN_EMBEDDING_PROVIDER", "ollama"),
		EmbeddingModel:    getEnv("READMEGEN_EMBEDDING_MODEL", "nomic-embed-text"),
		VectorDimension:   getEnvInt("READMEGEN_VECTOR_DIMENSION", 768),
		EmbedBatchSize:    getEnvInt("READMEGEN_EMBED_BATCH_SIZE", 100),
		EmbedRateLimit:    getEnvFloat("READMEGEN_EMBED_RATE_LIMIT", 5),
		SectionTimeout:    getEnvDuration("READMEGEN_SECTION_TIMEOUT", 90*time.Second),
		PolishTimeout:     getEnvDuration("READMEGEN_POLISH_TIMEOUT", 120*time.Second),
		RepairTimeout:     getEnvDuration("READMEGEN_REPAIR_TIMEOUT", 180*time.Second),
		MaxRetries:        getEnvInt("READMEGEN_MAX_RETRIES", 3),
		RetryDelay:        getEnvDuration("READMEGEN_RETRY_DELAY", 2*time.Second),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("READMEGEN_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.VectorDimension <= 0 {
		return fmt.Errorf("READMEGEN_VECTOR_DIMENSION must be positive, got %d", c.VectorDimension)
	}
	if c.EmbedBatchSize <= 0 {
		return fmt.Errorf("READMEGEN_EMBED_BATCH_SIZE must be positive, got %d", c.EmbedBatchSize)
	}
	if c.EmbedRateLimit <= 0 {
		return fmt.Errorf("READMEGEN_EMBED_RATE_LIMIT must be positive, got %f", c.EmbedRateLimit)
	}
	if c.SectionTimeout <= 0 || c.PolishTimeout <= 0 || c.RepairTimeout <= 0 {
		return fmt.Errorf("phase timeouts must be positive")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
