// ABOUTME: Composer selects relevant code context per section and builds prompts
// ABOUTME: Dedupes retrieved chunks, enforces budgets, falls back to key files
package core

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/harper/readmegen/internal/models"
	"github.com/harper/readmegen/internal/store"
)

// Context selection budgets. Retrieval quality degrades past a dozen chunks,
// and each chunk is trimmed so one large file cannot crowd out the rest.
const (
	minRelevanceScore  = 0.1
	maxContextChunks   = 12
	chunkCharLimit     = 1500
	defaultCharBudget  = 9000
	perQueryTopK       = 5
	maxKeyFileSamples  = 8
	keyFileSampleChars = 2500
	keyFileOtherChars  = 1500
)

// Names that mark a file as a likely entry point or core module. Key-file
// fallback sampling prefers these over everything else.
var priorityFileNames = []string{"main", "app", "index", "server", "api", "routes", "models"}

// Composer turns a section definition plus project facts into the final
// generation prompt, pulling supporting code context from the vector store
type Composer struct {
	store *store.VectorStore
	plan  *Plan
}

// NewComposer creates a composer over a populated store
func NewComposer(st *store.VectorStore, plan *Plan) *Composer {
	if plan == nil {
		plan = DefaultPlan()
	}
	return &Composer{store: st, plan: plan}
}

// Plan returns the active section plan
func (c *Composer) Plan() *Plan {
	return c.plan
}

// SectionsForStyle returns the ordered sections to generate for a style
func (c *Composer) SectionsForStyle(style string, facts *models.ProjectFacts) []string {
	return c.plan.SectionsForStyle(style, facts)
}

// SelectContext retrieves and concatenates the code context for a section.
// Results from all of the section's queries are merged, deduplicated by chunk
// ID, filtered by relevance and trimmed to the section's budgets. An empty
// store or all-irrelevant results fall back to sampled key files so the
// generator always has something concrete to cite.
func (c *Composer) SelectContext(ctx context.Context, sec Section, facts *models.ProjectFacts) string {
	maxChunks := sec.MaxChunks
	if maxChunks <= 0 {
		maxChunks = maxContextChunks
	}
	perChunk := sec.ChunkCharLimit
	if perChunk <= 0 {
		perChunk = chunkCharLimit
	}
	budget := sec.CharBudget
	if budget <= 0 {
		budget = defaultCharBudget
	}

	var chunkTypes []models.ChunkType
	if len(sec.ChunkTypes) > 0 {
		for _, t := range sec.ChunkTypes {
			chunkTypes = append(chunkTypes, models.ChunkType(t))
		}
	}

	seen := make(map[string]bool)
	var picked []models.SearchResult
	for _, query := range sec.Queries {
		for _, result := range c.store.Search(ctx, query, perQueryTopK, chunkTypes) {
			if result.Score < minRelevanceScore {
				continue
			}
			if seen[result.Chunk.ID] {
				continue
			}
			seen[result.Chunk.ID] = true
			picked = append(picked, result)
		}
	}

	// Best chunks first across all queries, insertion order on ties
	sort.SliceStable(picked, func(i, j int) bool {
		return picked[i].Score > picked[j].Score
	})
	if len(picked) > maxChunks {
		picked = picked[:maxChunks]
	}

	var parts []string
	used := 0
	for _, result := range picked {
		content := result.Chunk.Content
		if len(content) > perChunk {
			content = content[:perChunk]
		}
		part := ChunkLabel(result.Chunk) + "\n" + content
		if used+len(part) > budget {
			break
		}
		parts = append(parts, part)
		used += len(part)
	}

	if len(parts) == 0 {
		log.Debug().Str("section", sec.ID).Msg("no relevant chunks, sampling key files")
		return c.keyFileSamples(facts)
	}

	return strings.Join(parts, "\n\n")
}

// keyFileSamples builds context directly from the scanner's key files when
// retrieval comes up empty. Priority-named files get a larger excerpt.
func (c *Composer) keyFileSamples(facts *models.ProjectFacts) string {
	if facts == nil || len(facts.KeyFiles) == 0 {
		return ""
	}

	isPriority := func(path string) bool {
		base := strings.ToLower(path)
		if idx := strings.LastIndexByte(base, '/'); idx >= 0 {
			base = base[idx+1:]
		}
		if idx := strings.IndexByte(base, '.'); idx >= 0 {
			base = base[:idx]
		}
		for _, name := range priorityFileNames {
			if base == name {
				return true
			}
		}
		return false
	}

	ordered := make([]models.KeyFile, 0, len(facts.KeyFiles))
	for _, kf := range facts.KeyFiles {
		if isPriority(kf.Path) {
			ordered = append(ordered, kf)
		}
	}
	for _, kf := range facts.KeyFiles {
		if !isPriority(kf.Path) {
			ordered = append(ordered, kf)
		}
	}
	if len(ordered) > maxKeyFileSamples {
		ordered = ordered[:maxKeyFileSamples]
	}

	var parts []string
	for _, kf := range ordered {
		limit := keyFileOtherChars
		if isPriority(kf.Path) {
			limit = keyFileSampleChars
		}
		content := kf.Content
		if len(content) > limit {
			content = content[:limit]
		}
		parts = append(parts, fmt.Sprintf("=== %s ===\n%s", kf.Path, content))
	}
	return strings.Join(parts, "\n\n")
}

// ComposePrompt assembles the full generation prompt for one section:
// section instructions, the fact lines relevant to it, and retrieved context
func (c *Composer) ComposePrompt(ctx context.Context, sec Section, facts *models.ProjectFacts) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate the %s section of a README.md file for the project described below.\n\n", sec.Title)

	b.WriteString("PROJECT FACTS:\n")
	b.WriteString(c.factLines(sec.ID, facts))
	b.WriteString("\n")

	if codeContext := c.SelectContext(ctx, sec, facts); codeContext != "" {
		b.WriteString("RELEVANT CODE CONTEXT:\n")
		b.WriteString(codeContext)
		b.WriteString("\n\n")
	}

	b.WriteString("INSTRUCTIONS:\n")
	b.WriteString(sec.Instructions)
	b.WriteString("\n\nFormat as clean markdown. Output only the section content, with no preamble and no explanation. Base everything on the facts and context above; never invent commands, dependencies or endpoints.")

	return b.String()
}

// factLines renders the subset of project facts relevant to a section
func (c *Composer) factLines(sectionID string, facts *models.ProjectFacts) string {
	if facts == nil {
		return "- (no project facts available)\n"
	}

	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, "- "+format+"\n", args...)
	}

	if facts.Name != "" {
		line("Project name: %s", facts.Name)
	}
	if lang := facts.PrimaryLanguage(); lang != "" {
		line("Primary language: %s", lang)
	}
	if len(facts.Frameworks) > 0 {
		line("Frameworks: %s", strings.Join(facts.Frameworks, ", "))
	}
	if facts.Summary != "" {
		line("Summary: %s", facts.Summary)
	}

	switch sectionID {
	case "installation", "quick_start", "prerequisites":
		if facts.InstallCmd != "" {
			line("Install command: %s", facts.InstallCmd)
		}
		if facts.BuildCmd != "" {
			line("Build command: %s", facts.BuildCmd)
		}
		if facts.RunCmd != "" {
			line("Run command: %s", facts.RunCmd)
		}
		if facts.RepoURL != "" {
			line("Repository URL: %s", facts.RepoURL)
		}
		for _, env := range facts.RequiredEnvVars() {
			line("Required env var: %s (%s)", env.Name, env.Purpose)
		}
	case "usage", "development":
		if facts.RunCmd != "" {
			line("Run command: %s", facts.RunCmd)
		}
		if facts.BuildCmd != "" {
			line("Build command: %s", facts.BuildCmd)
		}
		for _, entry := range facts.EntryPoints {
			line("Entry point: %s", entry)
		}
	case "testing":
		if facts.TestCmd != "" {
			line("Test command: %s", facts.TestCmd)
		}
	case "configuration", "troubleshooting":
		for _, env := range facts.EnvVars {
			req := "optional"
			if env.Required {
				req = "required"
			}
			line("Env var: %s (%s) - %s", env.Name, req, env.Purpose)
		}
	case "tech_stack":
		for _, lang := range languageLines(facts.Languages) {
			line("%s", lang)
		}
		for _, dep := range facts.Dependencies {
			line("Dependency: %s %s (%s)", dep.Name, dep.Version, dep.Purpose)
		}
	case "api":
		for _, route := range facts.Routes {
			line("Route: %s %s (%s)", route.Method, route.Path, route.File)
		}
	case "docker":
		for _, svc := range facts.DockerServices {
			ports := make([]string, len(svc.Ports))
			for i, p := range svc.Ports {
				ports[i] = fmt.Sprint(p)
			}
			line("Service: %s image=%s ports=%s %s", svc.Name, svc.Image, strings.Join(ports, ","), svc.Purpose)
		}
	case "features", "header", "architecture", "project_structure":
		for _, entry := range facts.EntryPoints {
			line("Entry point: %s", entry)
		}
		if len(facts.Routes) > 0 {
			line("HTTP routes detected: %d", len(facts.Routes))
		}
		if facts.HasDocker() {
			line("Docker services detected: %d", len(facts.DockerServices))
		}
		for _, dep := range topDependencies(facts.Dependencies, 10) {
			line("Dependency: %s (%s)", dep.Name, dep.Purpose)
		}
	}

	return b.String()
}

// languageLines renders languages by descending file count, deterministically
func languageLines(languages map[string]int) []string {
	names := make([]string, 0, len(languages))
	for name := range languages {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if languages[names[i]] != languages[names[j]] {
			return languages[names[i]] > languages[names[j]]
		}
		return names[i] < names[j]
	})

	lines := make([]string, len(names))
	for i, name := range names {
		lines[i] = fmt.Sprintf("Language: %s (%d files)", name, languages[name])
	}
	return lines
}

func topDependencies(deps []models.Dependency, n int) []models.Dependency {
	if len(deps) > n {
		return deps[:n]
	}
	return deps
}
