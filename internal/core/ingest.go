// ABOUTME: Repository ingestion walks a cloned repo and fills the vector store
// ABOUTME: Skips VCS and dependency directories, oversized and binary files
package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/karrick/godirwalk"
	"github.com/rs/zerolog/log"

	"github.com/harper/readmegen/internal/store"
)

var skipDirs = map[string]bool{
	".git": true, "node_modules": true, "__pycache__": true,
	"venv": true, ".venv": true, "env": true, "vendor": true,
	"dist": true, "build": true, "target": true, "out": true,
	".idea": true, ".cache": true, ".pytest_cache": true, "coverage": true,
}

// BuildStore walks root, chunks every eligible file and adds the chunks to
// the store. Returns the number of files chunked. Embeddings are not built
// here; callers decide when to pay for that.
func BuildStore(ctx context.Context, root string, st *store.VectorStore) (int, error) {
	info, err := os.Stat(root)
	if err != nil {
		return 0, fmt.Errorf("repository root: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("repository root %s is not a directory", root)
	}

	chunker := NewChunker()
	files := 0

	walkErr := godirwalk.Walk(root, &godirwalk.Options{
		Unsorted: false,
		Callback: func(path string, de *godirwalk.Dirent) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if de.IsDir() {
				if skipDirs[strings.ToLower(de.Name())] {
					return filepath.SkipDir
				}
				return nil
			}

			data, err := os.ReadFile(path)
			if err != nil {
				log.Warn().Err(err).Str("path", path).Msg("failed to read file")
				return nil
			}

			rel, err := filepath.Rel(root, path)
			if err != nil {
				rel = path
			}

			chunks := chunker.Chunk(rel, string(data))
			if len(chunks) == 0 {
				return nil
			}

			st.AddChunks(chunks)
			files++
			log.Debug().Str("path", rel).Int("chunks", len(chunks)).Msg("file chunked")
			return nil
		},
	})
	if walkErr != nil {
		return files, fmt.Errorf("walking repository: %w", walkErr)
	}

	log.Info().Int("files", files).Int("chunks", st.Len()).Msg("repository ingested")
	return files, nil
}
