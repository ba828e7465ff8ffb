// ABOUTME: MCP tool handler implementations for the readmegen server
// ABOUTME: Bridges MCP requests to the store, composer and orchestrator
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/harper/readmegen/internal/core"
	"github.com/harper/readmegen/internal/models"
	"github.com/harper/readmegen/internal/store"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	store        *store.VectorStore
	composer     *core.Composer
	orchestrator *core.Orchestrator
	facts        *models.ProjectFacts
}

// SearchCode handles the search_code tool
func (h *Handlers) SearchCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}

	maxResults := request.GetInt("max_results", 5)
	if maxResults <= 0 {
		maxResults = 5
	}

	var chunkTypes []models.ChunkType
	if t := request.GetString("chunk_type", ""); t != "" {
		chunkTypes = append(chunkTypes, models.ChunkType(t))
	}

	results := h.store.Search(ctx, query, maxResults, chunkTypes)

	matches := make([]map[string]interface{}, 0, len(results))
	for _, result := range results {
		matches = append(matches, map[string]interface{}{
			"id":         result.Chunk.ID,
			"file_path":  result.Chunk.FilePath,
			"chunk_type": string(result.Chunk.ChunkType),
			"score":      result.Score,
			"content":    result.Chunk.Content,
		})
	}

	response := map[string]interface{}{
		"query":   query,
		"matches": matches,
	}

	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}

	return mcp.NewToolResultText(string(responseJSON)), nil
}

// ComposeSection handles the compose_section tool
func (h *Handlers) ComposeSection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sectionID, err := request.RequireString("section")
	if err != nil {
		return mcp.NewToolResultError("section argument is required and must be a string"), nil
	}

	sec, ok := h.composer.Plan().Section(sectionID)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown section %q", sectionID)), nil
	}

	text, err := h.orchestrator.GenerateSection(ctx, sec, h.facts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("section generation failed: %v", err)), nil
	}

	response := map[string]interface{}{
		"section": sectionID,
		"title":   sec.Title,
		"content": text,
	}

	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}

	return mcp.NewToolResultText(string(responseJSON)), nil
}

// ProjectOverview handles the project_overview tool
func (h *Handlers) ProjectOverview(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	chunkCounts := make(map[string]int)
	embedded := 0
	for _, chunk := range h.store.Chunks() {
		chunkCounts[string(chunk.ChunkType)]++
		if chunk.HasEmbedding() {
			embedded++
		}
	}

	response := map[string]interface{}{
		"facts": h.facts,
		"index": map[string]interface{}{
			"total_chunks":    h.store.Len(),
			"embedded_chunks": embedded,
			"by_type":         chunkCounts,
		},
		"suggested_style": core.SuggestStyle(h.facts),
	}

	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}

	return mcp.NewToolResultText(string(responseJSON)), nil
}
