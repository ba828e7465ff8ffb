// ABOUTME: MCP tool definitions and registration for the readmegen server
// ABOUTME: Exposes code search, section composition and project overview tools
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/harper/readmegen/internal/core"
	"github.com/harper/readmegen/internal/models"
	"github.com/harper/readmegen/internal/store"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, st *store.VectorStore, composer *core.Composer, orchestrator *core.Orchestrator, facts *models.ProjectFacts) *Handlers {
	handlers := &Handlers{
		store:        st,
		composer:     composer,
		orchestrator: orchestrator,
		facts:        facts,
	}

	// 1. search_code - semantic search over the indexed repository
	server.AddTool(mcp.Tool{
		Name:        "search_code",
		Description: "Search the indexed repository for code chunks relevant to a query. Uses embedding similarity with a keyword fallback.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query",
				},
				"max_results": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of results to return (default: 5)",
					"default":     5,
				},
				"chunk_type": map[string]interface{}{
					"type":        "string",
					"description": "Optional chunk type filter: function, class, module, config, or doc",
				},
			},
			Required: []string{"query"},
		},
	}, handlers.SearchCode)

	// 2. compose_section - generate one README section on demand
	server.AddTool(mcp.Tool{
		Name:        "compose_section",
		Description: "Generate a single README section for the indexed repository, grounded in retrieved code context and scanner facts.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"section": map[string]interface{}{
					"type":        "string",
					"description": "Section ID, e.g. header, features, installation, usage, api, docker",
				},
			},
			Required: []string{"section"},
		},
	}, handlers.ComposeSection)

	// 3. project_overview - summarize what the scanner and indexer know
	server.AddTool(mcp.Tool{
		Name:        "project_overview",
		Description: "Return the project facts and index statistics for the currently loaded repository.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.ProjectOverview)

	return handlers
}
