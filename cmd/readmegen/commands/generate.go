// ABOUTME: CLI command to generate a README for a repository
// ABOUTME: Wires scanner facts, the vector store and the orchestrator together
package commands

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/harper/readmegen/internal/config"
	"github.com/harper/readmegen/internal/core"
	"github.com/harper/readmegen/internal/llm"
	"github.com/harper/readmegen/internal/models"
	"github.com/harper/readmegen/internal/store"
)

var (
	generateFacts     string
	generateStyle     string
	generateStrategy  string
	generateOutput    string
	generateIndexPath string
	generatePlan      string
	generateDebugDir  string
)

// NewGenerateCmd creates the generate command
func NewGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <repo-path>",
		Short: "Generate a README for a repository",
		Long: `Generate a README for a repository.

Indexes the repository (or reuses an existing snapshot), selects relevant
code context per section, and generates the README section by section with
the configured LLM provider. Quality issues trigger a single repair pass.

Styles: minimal, standard, detailed, comprehensive, auto (from complexity).

Examples:
  readmegen generate .
  readmegen generate --style comprehensive --output README.md ~/src/myproject
  readmegen generate --facts facts.json --index myproject.index.json .`,
		Args: cobra.ExactArgs(1),
		RunE: runGenerate,
	}

	cmd.Flags().StringVar(&generateFacts, "facts", "", "Path to a scanner facts JSON file")
	cmd.Flags().StringVar(&generateStyle, "style", "auto", "README style: minimal, standard, detailed, comprehensive, auto")
	cmd.Flags().StringVar(&generateStrategy, "strategy", string(core.StrategySectioned), "Generation strategy: sectioned or single-shot")
	cmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Write the README to this file instead of stdout")
	cmd.Flags().StringVar(&generateIndexPath, "index", "", "Reuse an existing index snapshot instead of re-indexing")
	cmd.Flags().StringVar(&generatePlan, "plan", "", "Path to a YAML section plan overriding the defaults")
	cmd.Flags().StringVar(&generateDebugDir, "debug-dir", "", "Directory for per-run debug state dumps")

	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	if !containsString([]string{string(core.StrategySectioned), string(core.StrategySingleShot)}, generateStrategy) {
		return fmt.Errorf("unknown strategy %q (use sectioned or single-shot)", generateStrategy)
	}

	// Facts are optional: with no scanner output the pipeline leans entirely
	// on retrieved code context
	facts := &models.ProjectFacts{}
	if generateFacts != "" {
		facts, err = models.LoadFacts(generateFacts)
		if err != nil {
			return err
		}
	}

	st, err := buildOrLoadStore(cmd, cfg, args[0])
	if err != nil {
		return err
	}

	generator, err := llm.NewGenerator(cfg)
	if err != nil {
		return fmt.Errorf("initializing generation provider: %w", err)
	}

	plan := core.DefaultPlan()
	if generatePlan != "" {
		plan, err = core.LoadPlan(generatePlan)
		if err != nil {
			return err
		}
	}

	style := generateStyle
	if style == "auto" || style == "" {
		style = core.SuggestStyle(facts)
		log.Info().Str("style", style).Int("complexity", facts.ComplexityScore).Msg("style selected from project complexity")
	}

	composer := core.NewComposer(st, plan)
	orchestrator := core.NewOrchestrator(generator, composer, cfg, core.Strategy(generateStrategy))
	orchestrator.DebugDir = generateDebugDir

	readme, issues, err := orchestrator.GenerateReadme(cmd.Context(), facts, style)
	if err != nil {
		return fmt.Errorf("generating readme: %w", err)
	}

	for _, issue := range issues {
		log.Warn().Str("issue", issue).Msg("unresolved quality issue")
	}

	if generateOutput != "" {
		if err := os.WriteFile(generateOutput, []byte(readme+"\n"), 0o644); err != nil {
			return fmt.Errorf("writing readme: %w", err)
		}
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d chars, %d unresolved issue(s))\n", generateOutput, len(readme), len(issues))
		}
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), readme)
	return nil
}

// buildOrLoadStore loads the snapshot when --index is given, otherwise
// indexes the repository from scratch and embeds it
func buildOrLoadStore(cmd *cobra.Command, cfg *config.Config, repoPath string) (*store.VectorStore, error) {
	var embedder store.Embedder
	if e, err := llm.NewEmbedder(cfg); err != nil {
		return nil, fmt.Errorf("initializing embedding provider: %w", err)
	} else if e != nil {
		embedder = e
	}

	st := store.New(embedder)

	if generateIndexPath != "" {
		if err := st.Load(generateIndexPath); err != nil {
			return nil, fmt.Errorf("loading index snapshot: %w", err)
		}
		return st, nil
	}

	if _, err := core.BuildStore(cmd.Context(), repoPath, st); err != nil {
		return nil, fmt.Errorf("indexing repository: %w", err)
	}
	if err := st.BuildEmbeddings(cmd.Context()); err != nil {
		return nil, fmt.Errorf("building embeddings: %w", err)
	}
	return st, nil
}
