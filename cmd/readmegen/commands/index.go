// ABOUTME: CLI command to index a repository into a vector store snapshot
// ABOUTME: Chunks every eligible file, embeds the chunks, and saves to JSON
package commands

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/harper/readmegen/internal/config"
	"github.com/harper/readmegen/internal/core"
	"github.com/harper/readmegen/internal/llm"
	"github.com/harper/readmegen/internal/store"
)

var (
	indexOutput        string
	indexSkipEmbedding bool
)

// NewIndexCmd creates the index command
func NewIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index <repo-path>",
		Short: "Index a repository for semantic search",
		Long: `Index a repository for semantic search.

Walks the repository, splits source, config and doc files into chunks,
embeds them with the configured embedding provider, and writes a JSON
snapshot that generate and search can reuse.

Examples:
  readmegen index .
  readmegen index --output myproject.index.json ~/src/myproject
  readmegen index --skip-embeddings .   # keyword search only`,
		Args: cobra.ExactArgs(1),
		RunE: runIndex,
	}

	cmd.Flags().StringVarP(&indexOutput, "output", "o", "readmegen-index.json", "Snapshot output path")
	cmd.Flags().BoolVar(&indexSkipEmbedding, "skip-embeddings", false, "Skip embedding generation (search falls back to keywords)")

	return cmd
}

func runIndex(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	var embedder store.Embedder
	if !indexSkipEmbedding {
		e, err := llm.NewEmbedder(cfg)
		if err != nil {
			return fmt.Errorf("initializing embedding provider: %w", err)
		}
		if e != nil {
			embedder = e
		}
	}

	st := store.New(embedder)

	files, err := core.BuildStore(cmd.Context(), args[0], st)
	if err != nil {
		return fmt.Errorf("indexing repository: %w", err)
	}
	if st.Len() == 0 {
		return fmt.Errorf("no indexable files found in %s", args[0])
	}

	if embedder != nil {
		if err := st.BuildEmbeddings(cmd.Context()); err != nil {
			return fmt.Errorf("building embeddings: %w", err)
		}
	}

	if err := st.Save(indexOutput); err != nil {
		return err
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d files (%d chunks) -> %s\n", files, st.Len(), indexOutput)
	}
	return nil
}
