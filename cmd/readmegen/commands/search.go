// ABOUTME: CLI command to search an indexed repository
// ABOUTME: Supports semantic and keyword search with table or JSON output
package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/harper/readmegen/internal/config"
	"github.com/harper/readmegen/internal/llm"
	"github.com/harper/readmegen/internal/models"
	"github.com/harper/readmegen/internal/store"
)

var (
	searchLimit     int
	searchIndexPath string
	searchChunkType string
)

// NewSearchCmd creates the search command
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search an indexed repository",
		Long: `Search an indexed repository for relevant code chunks.

Uses embedding similarity when the snapshot carries embeddings and the
embedding provider is reachable; otherwise falls back to keyword search.

Examples:
  readmegen search "database connection pooling"
  readmegen search --limit 10 --type function "error handling"
  readmegen search --format json "http routes"`,
		Args: cobra.ExactArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().IntVar(&searchLimit, "limit", 5, "Maximum results to return")
	cmd.Flags().StringVar(&searchIndexPath, "index", "readmegen-index.json", "Snapshot path to search")
	cmd.Flags().StringVar(&searchChunkType, "type", "", "Restrict to a chunk type: function, class, module, config, doc")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	if err := validatePositiveInt(searchLimit, "limit"); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	var embedder store.Embedder
	if e, err := llm.NewEmbedder(cfg); err == nil && e != nil {
		embedder = e
	}

	st := store.New(embedder)
	if err := st.Load(searchIndexPath); err != nil {
		return fmt.Errorf("loading index (run 'readmegen index' first): %w", err)
	}

	var chunkTypes []models.ChunkType
	if searchChunkType != "" {
		chunkTypes = append(chunkTypes, models.ChunkType(searchChunkType))
	}

	query := args[0]
	results := st.Search(cmd.Context(), query, searchLimit, chunkTypes)

	if len(results) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No chunks found for query: %s\n", query)
		}
		return nil
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SCORE\tTYPE\tFILE\tPREVIEW\n")
	fmt.Fprintf(w, "-----\t----\t----\t-------\n")

	for _, result := range results {
		fmt.Fprintf(w, "%.3f\t%s\t%s\t%s\n",
			result.Score,
			result.Chunk.ChunkType,
			truncate(result.Chunk.FilePath, 40),
			truncate(oneLine(result.Chunk.Content), 60))
	}
	w.Flush()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\nFound %d result(s)\n", len(results))
	}
	return nil
}
