// ABOUTME: CodeChunk is the atomic retrievable unit extracted from repository files
// ABOUTME: Defines chunk types, stable content-independent IDs, and search results
package models

import (
	"crypto/sha1"
	"encoding/hex"
)

// ChunkType classifies what kind of unit a chunk was extracted from
type ChunkType string

const (
	ChunkTypeFunction ChunkType = "function"
	ChunkTypeClass    ChunkType = "class"
	ChunkTypeModule   ChunkType = "module"
	ChunkTypeConfig   ChunkType = "config"
	ChunkTypeDoc      ChunkType = "doc"
)

// CodeChunk represents a bounded, independently retrievable piece of a file.
// Embedding is nil until the store embeds it; a zero vector means the
// embedding call failed (the chunk stays in the store but never ranks).
type CodeChunk struct {
	ID        string            `json:"id"`
	Content   string            `json:"content"`
	FilePath  string            `json:"file_path"`
	ChunkType ChunkType         `json:"chunk_type"`
	StartLine int               `json:"start_line,omitempty"`
	EndLine   int               `json:"end_line,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Embedding []float64         `json:"embedding,omitempty"`
}

// HasEmbedding reports whether the chunk has been assigned a vector
func (c *CodeChunk) HasEmbedding() bool {
	return len(c.Embedding) > 0
}

// ChunkID derives a stable chunk identifier from the file path and unit name.
// The ID depends only on (path, unit), never on content, so re-chunking the
// same file yields the same IDs even after edits.
func ChunkID(filePath, unit string) string {
	h := sha1.Sum([]byte(filePath + ":" + unit))
	return hex.EncodeToString(h[:])[:12]
}

// SearchResult pairs a chunk with its similarity (or keyword overlap) score
type SearchResult struct {
	Chunk CodeChunk `json:"chunk"`
	Score float64   `json:"score"`
}
