// ABOUTME: Section plan describing which README sections exist per style
// ABOUTME: Maps each section to semantic queries, budgets, and trigger facts
package core

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/harper/readmegen/internal/models"
)

// Trigger conditions a section may require before it is generated
const (
	RequiresDocker = "docker"
	RequiresAPI    = "api"
)

// Section describes one independently generated README section
type Section struct {
	ID             string   `yaml:"id"`
	Title          string   `yaml:"title"`
	Queries        []string `yaml:"queries,omitempty"`
	ChunkTypes     []string `yaml:"chunk_types,omitempty"`
	Instructions   string   `yaml:"instructions,omitempty"`
	MaxChunks      int      `yaml:"max_chunks,omitempty"`
	ChunkCharLimit int      `yaml:"chunk_char_limit,omitempty"`
	CharBudget     int      `yaml:"char_budget,omitempty"`
	Requires       string   `yaml:"requires,omitempty"`
}

// Plan holds the full section catalog plus the section order per style
type Plan struct {
	Sections []Section           `yaml:"sections"`
	Styles   map[string][]string `yaml:"styles"`
}

// Generation styles, from lightest to heaviest
const (
	StyleMinimal       = "minimal"
	StyleStandard      = "standard"
	StyleDetailed      = "detailed"
	StyleComprehensive = "comprehensive"
)

// DefaultPlan returns the built-in section catalog
func DefaultPlan() *Plan {
	return &Plan{
		Sections: []Section{
			{
				ID: "header", Title: "Header",
				Queries:      []string{"project purpose overview what it does"},
				Instructions: "Generate a project title, a one-line tagline, and a 2-3 paragraph description covering what the project does, why it exists, and its key benefits. Start with a single top-level heading.",
			},
			{
				ID: "quick_start", Title: "Quick Start",
				Queries:      []string{"install setup run start commands"},
				Instructions: "Generate a minimal quick start: one-line description followed by the clone, install and run commands. Keep it under 30 lines.",
			},
			{
				ID: "features", Title: "Features",
				Queries:      []string{"features capabilities functionality", "core business logic main functionality"},
				Instructions: "Generate a \"## Features\" section with 6-10 bullet points, each with a brief description. Only include capabilities visible in the provided context.",
			},
			{
				ID: "tech_stack", Title: "Tech Stack",
				Instructions: "Generate a \"## Tech Stack\" section organized by category (languages, frameworks, databases, tooling), with a brief note on what each technology is used for. Use a table or list.",
			},
			{
				ID: "architecture", Title: "Architecture",
				Queries:      []string{"architecture structure components services", "main entry point application startup initialization"},
				Instructions: "Generate a \"## Architecture\" section describing the high-level design, how components interact, and the data flow. Include an ASCII diagram if helpful.",
			},
			{
				ID: "prerequisites", Title: "Prerequisites",
				Instructions: "Generate a \"## Prerequisites\" section listing required software with versions, system requirements, and any external services, as a checklist.",
			},
			{
				ID: "installation", Title: "Installation",
				Queries:      []string{"install setup requirements dependencies"},
				Instructions: "Generate a \"## Installation\" section with numbered steps: clone, install dependencies, additional setup, and a Docker alternative when applicable. Every command must be copy-pasteable.",
			},
			{
				ID: "configuration", Title: "Configuration",
				Queries:      []string{"environment variables config settings"},
				Instructions: "Generate a \"## Configuration\" section with a table of all environment variables, how to set them up, and an example .env file.",
			},
			{
				ID: "usage", Title: "Usage",
				Queries:      []string{"usage run start commands examples", "main entry point application startup initialization"},
				Instructions: "Generate a \"## Usage\" section covering how to start the application, development and production modes, and common use cases with examples. Every command must be copy-pasteable.",
			},
			{
				ID: "api", Title: "API Documentation", Requires: RequiresAPI,
				Queries:      []string{"api endpoints routes http", "API routes endpoints handlers controllers"},
				Instructions: "Generate a \"## API Documentation\" section with an overview of the API structure, authentication, and the key endpoints with request/response examples.",
			},
			{
				ID: "docker", Title: "Docker", Requires: RequiresDocker,
				Queries:      []string{"docker compose services containers"},
				Instructions: "Generate a \"## Docker\" section with a docker-compose quick start, an explanation of each service, how to reach the application, and useful commands including log access.",
			},
			{
				ID: "project_structure", Title: "Project Structure",
				Queries:      []string{"main entry point application startup initialization"},
				Instructions: "Generate a \"## Project Structure\" section with an ASCII tree of the main directories and a brief description of each.",
			},
			{
				ID: "development", Title: "Development",
				Queries:      []string{"development build lint format tooling"},
				Instructions: "Generate a \"## Development\" section: environment setup, how to run in development mode, and useful development commands.",
			},
			{
				ID: "testing", Title: "Testing",
				Queries:      []string{"test suite assertions coverage"},
				Instructions: "Generate a \"## Testing\" section: how to run the tests and what kinds of tests exist.",
			},
			{
				ID: "troubleshooting", Title: "Troubleshooting",
				Instructions: "Generate a \"## Troubleshooting\" section with common issues and their solutions, and how to inspect logs.",
			},
			{
				ID: "contributing", Title: "Contributing",
				Instructions: "Generate a concise \"## Contributing\" section: fork, create a feature branch, make changes, run tests, open a pull request.",
			},
			{
				ID: "license", Title: "License",
				Instructions: "Generate a brief \"## License\" section of 1-2 lines referring to the LICENSE file.",
			},
			{
				ID: "support", Title: "Support",
				Instructions: "Generate a brief \"## Support\" section: how to report issues and where to ask questions.",
			},
		},
		Styles: map[string][]string{
			StyleMinimal:  {"header", "quick_start"},
			StyleStandard: {"header", "features", "installation", "usage", "contributing"},
			StyleDetailed: {
				"header", "features", "tech_stack", "prerequisites",
				"installation", "configuration", "usage", "docker",
				"project_structure", "contributing", "license",
			},
			StyleComprehensive: {
				"header", "features", "tech_stack", "architecture",
				"prerequisites", "installation", "configuration",
				"usage", "api", "docker", "project_structure",
				"development", "testing", "troubleshooting",
				"contributing", "license", "support",
			},
		},
	}
}

// LoadPlan reads a section plan from a YAML file, overlaying the defaults.
// Sections in the file replace same-ID defaults; styles replace wholesale.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading section plan: %w", err)
	}

	var override Plan
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("parsing section plan: %w", err)
	}

	plan := DefaultPlan()
	for _, sec := range override.Sections {
		replaced := false
		for i := range plan.Sections {
			if plan.Sections[i].ID == sec.ID {
				plan.Sections[i] = sec
				replaced = true
				break
			}
		}
		if !replaced {
			plan.Sections = append(plan.Sections, sec)
		}
	}
	for style, order := range override.Styles {
		plan.Styles[style] = order
	}

	return plan, nil
}

// Section looks up a section definition by ID
func (p *Plan) Section(id string) (Section, bool) {
	for _, sec := range p.Sections {
		if sec.ID == id {
			return sec, true
		}
	}
	return Section{}, false
}

// SectionsForStyle returns the ordered section IDs for a style, dropping
// sections whose trigger condition is not met by the project facts.
// Nil facts mean no triggers fire: docker and api sections are skipped.
func (p *Plan) SectionsForStyle(style string, facts *models.ProjectFacts) []string {
	if facts == nil {
		facts = &models.ProjectFacts{}
	}

	order, ok := p.Styles[style]
	if !ok {
		order = p.Styles[StyleDetailed]
	}

	var sections []string
	for _, id := range order {
		sec, ok := p.Section(id)
		if !ok {
			continue
		}
		switch sec.Requires {
		case RequiresDocker:
			if !facts.HasDocker() {
				continue
			}
		case RequiresAPI:
			if !facts.HasAPI() {
				continue
			}
		}
		sections = append(sections, id)
	}
	return sections
}

// SuggestStyle picks a style from the project's complexity score
func SuggestStyle(facts *models.ProjectFacts) string {
	switch {
	case facts.ComplexityScore < 10:
		return StyleStandard
	case facts.ComplexityScore < 30:
		return StyleDetailed
	default:
		return StyleComprehensive
	}
}
