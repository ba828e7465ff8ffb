// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Enables LLM agents to search the index and compose sections via stdio
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/harper/readmegen/internal/config"
	"github.com/harper/readmegen/internal/core"
	"github.com/harper/readmegen/internal/llm"
	"github.com/harper/readmegen/internal/mcp"
	"github.com/harper/readmegen/internal/models"
	"github.com/harper/readmegen/internal/store"
)

var (
	mcpIndexPath string
	mcpFactsPath string
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Serves the indexed repository over MCP (Model Context Protocol) on stdio,
exposing code search, single-section composition and a project overview.

Run 'readmegen index' first to create the snapshot the server loads.`,
		RunE: runMCP,
		Example: `  # Start MCP server against the default snapshot
  readmegen mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "readmegen": {
  #       "command": "readmegen",
  #       "args": ["mcp", "--index", "/path/to/readmegen-index.json"]
  #     }
  #   }
  # }`,
	}

	cmd.Flags().StringVar(&mcpIndexPath, "index", "readmegen-index.json", "Snapshot path to serve")
	cmd.Flags().StringVar(&mcpFactsPath, "facts", "", "Path to a scanner facts JSON file")

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && verbose {
		log.Debug().Err(err).Msg("no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	var embedder store.Embedder
	if e, err := llm.NewEmbedder(cfg); err != nil {
		return fmt.Errorf("initializing embedding provider: %w", err)
	} else if e != nil {
		embedder = e
	}

	st := store.New(embedder)
	if err := st.Load(mcpIndexPath); err != nil {
		return fmt.Errorf("loading index (run 'readmegen index' first): %w", err)
	}

	facts := &models.ProjectFacts{}
	if mcpFactsPath != "" {
		facts, err = models.LoadFacts(mcpFactsPath)
		if err != nil {
			return err
		}
	}

	generator, err := llm.NewGenerator(cfg)
	if err != nil {
		return fmt.Errorf("initializing generation provider: %w", err)
	}

	composer := core.NewComposer(st, core.DefaultPlan())
	orchestrator := core.NewOrchestrator(generator, composer, cfg, core.StrategySectioned)

	server := mcpserver.NewMCPServer(
		"readmegen",
		versionInfo.Version,
	)

	mcp.RegisterTools(server, st, composer, orchestrator, facts)

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !quiet {
		log.Info().Str("index", mcpIndexPath).Int("chunks", st.Len()).Msg("MCP server starting on stdio")
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		if !quiet {
			log.Info().Msg("shutdown signal received")
		}
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}
