// ABOUTME: ProjectFacts is the read-only summary of a scanned repository
// ABOUTME: Produced by the external scanner, consumed as-is by the prompt composer
package models

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Route describes a detected HTTP route
type Route struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	File   string `json:"file,omitempty"`
}

// EnvVar describes a detected environment variable
type EnvVar struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
	Purpose  string `json:"purpose,omitempty"`
}

// DockerService describes one service from a compose topology
type DockerService struct {
	Name    string `json:"name"`
	Image   string `json:"image,omitempty"`
	Purpose string `json:"purpose,omitempty"`
	Ports   []int  `json:"ports,omitempty"`
}

// Dependency describes one declared project dependency
type Dependency struct {
	Name     string `json:"name"`
	Version  string `json:"version,omitempty"`
	Purpose  string `json:"purpose,omitempty"`
	Category string `json:"category,omitempty"`
}

// KeyFile pairs a repository-relative path with its (truncated) content
type KeyFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// ProjectFacts aggregates everything the scanner extracted from a repository.
// The generation core treats this record as read-only input and never
// re-derives any of it.
type ProjectFacts struct {
	Name            string          `json:"name"`
	RepoURL         string          `json:"repo_url,omitempty"`
	Languages       map[string]int  `json:"languages,omitempty"`
	Frameworks      []string        `json:"frameworks,omitempty"`
	Routes          []Route         `json:"routes,omitempty"`
	EnvVars         []EnvVar        `json:"env_vars,omitempty"`
	DockerServices  []DockerService `json:"docker_services,omitempty"`
	Dependencies    []Dependency    `json:"dependencies,omitempty"`
	EntryPoints     []string        `json:"entry_points,omitempty"`
	KeyFiles        []KeyFile       `json:"key_files,omitempty"`
	ComplexityScore int             `json:"complexity_score,omitempty"`
	InstallCmd      string          `json:"install_cmd,omitempty"`
	RunCmd          string          `json:"run_cmd,omitempty"`
	TestCmd         string          `json:"test_cmd,omitempty"`
	BuildCmd        string          `json:"build_cmd,omitempty"`
	Summary         string          `json:"summary,omitempty"`
}

// HasDocker reports whether any compose services were detected
func (f *ProjectFacts) HasDocker() bool {
	return len(f.DockerServices) > 0
}

// HasAPI reports whether any HTTP routes were detected
func (f *ProjectFacts) HasAPI() bool {
	return len(f.Routes) > 0
}

// IsEmpty reports whether the scanner produced nothing usable
func (f *ProjectFacts) IsEmpty() bool {
	return f.Name == "" && len(f.Languages) == 0 && len(f.Dependencies) == 0 &&
		len(f.KeyFiles) == 0 && len(f.EntryPoints) == 0
}

// PrimaryLanguage returns the language with the highest file count
func (f *ProjectFacts) PrimaryLanguage() string {
	best := ""
	bestCount := 0
	names := make([]string, 0, len(f.Languages))
	for name := range f.Languages {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if f.Languages[name] > bestCount {
			best = name
			bestCount = f.Languages[name]
		}
	}
	return best
}

// RequiredEnvVars returns only the variables marked required
func (f *ProjectFacts) RequiredEnvVars() []EnvVar {
	var required []EnvVar
	for _, e := range f.EnvVars {
		if e.Required {
			required = append(required, e)
		}
	}
	return required
}

// LoadFacts reads a ProjectFacts record from a JSON file
func LoadFacts(path string) (*ProjectFacts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading facts file: %w", err)
	}

	var facts ProjectFacts
	if err := json.Unmarshal(data, &facts); err != nil {
		return nil, fmt.Errorf("parsing facts file: %w", err)
	}

	return &facts, nil
}
