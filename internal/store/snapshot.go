// ABOUTME: JSON snapshot persistence for the vector store
// ABOUTME: Saves chunks with embeddings so a repository only has to be embedded once
package store

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/harper/readmegen/internal/models"
)

// snapshot is the on-disk representation of the store
type snapshot struct {
	Chunks []models.CodeChunk `json:"chunks"`
}

// Save writes the chunk collection, embeddings included, to path
func (s *VectorStore) Save(path string) error {
	data, err := json.Marshal(snapshot{Chunks: s.chunks})
	if err != nil {
		return fmt.Errorf("encoding store: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing store snapshot: %w", err)
	}

	log.Debug().Str("path", path).Int("chunks", len(s.chunks)).Msg("store snapshot saved")
	return nil
}

// Load replaces the chunk collection with the snapshot at path and rebuilds
// the similarity matrix immediately so searches are valid right away
func (s *VectorStore) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading store snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("parsing store snapshot: %w", err)
	}

	s.chunks = snap.Chunks
	s.buildMatrix()

	log.Debug().Str("path", path).Int("chunks", len(s.chunks)).Msg("store snapshot loaded")
	return nil
}
