// ABOUTME: Tests for context selection and prompt composition
// ABOUTME: Verifies dedup, budgets, relevance filtering, and key-file fallback
package core

import (
	"context"
	"strings"
	"testing"

	"github.com/harper/readmegen/internal/models"
	"github.com/harper/readmegen/internal/store"
)

func populatedStore(t *testing.T) *store.VectorStore {
	t.Helper()
	st := store.New(nil)
	st.AddChunks([]models.CodeChunk{
		{ID: "c1", FilePath: "db.py", ChunkType: models.ChunkTypeFunction,
			Content: "def connect():\n    # install dependencies and open the database connection\n    pass"},
		{ID: "c2", FilePath: "app.py", ChunkType: models.ChunkTypeFunction,
			Content: "def setup():\n    # install requirements, configure settings\n    pass"},
		{ID: "c3", FilePath: "README.md", ChunkType: models.ChunkTypeDoc,
			Content: "completely unrelated poetry about mountains and rivers"},
	})
	return st
}

func TestSelectContext_DedupAcrossQueries(t *testing.T) {
	composer := NewComposer(populatedStore(t), nil)
	sec := Section{
		ID:      "installation",
		Title:   "Installation",
		Queries: []string{"install dependencies", "install requirements"},
	}

	result := composer.SelectContext(context.Background(), sec, &models.ProjectFacts{})
	if result == "" {
		t.Fatal("no context selected")
	}
	// Both queries match c1 and c2; each may appear only once
	if n := strings.Count(result, "db.py"); n != 1 {
		t.Errorf("db.py appears %d times, want 1", n)
	}
	if n := strings.Count(result, "app.py"); n != 1 {
		t.Errorf("app.py appears %d times, want 1", n)
	}
}

func TestSelectContext_IrrelevantChunksExcluded(t *testing.T) {
	composer := NewComposer(populatedStore(t), nil)
	sec := Section{ID: "installation", Queries: []string{"install dependencies"}}

	result := composer.SelectContext(context.Background(), sec, &models.ProjectFacts{})
	if strings.Contains(result, "poetry") {
		t.Error("zero-relevance chunk leaked into the context")
	}
}

func TestSelectContext_ChunkCharLimitApplied(t *testing.T) {
	st := store.New(nil)
	st.AddChunk(models.CodeChunk{
		ID: "big", FilePath: "big.py", ChunkType: models.ChunkTypeFunction,
		Content: "install " + strings.Repeat("x", 4000),
	})
	composer := NewComposer(st, nil)
	sec := Section{ID: "installation", Queries: []string{"install"}, ChunkCharLimit: 200}

	result := composer.SelectContext(context.Background(), sec, &models.ProjectFacts{})
	if len(result) > 400 {
		t.Errorf("context is %d chars, per-chunk limit not applied", len(result))
	}
}

func TestSelectContext_EmptyStoreFallsBackToKeyFiles(t *testing.T) {
	composer := NewComposer(store.New(nil), nil)
	facts := &models.ProjectFacts{
		KeyFiles: []models.KeyFile{
			{Path: "docs/notes.txt", Content: "assorted notes"},
			{Path: "src/main.py", Content: "if __name__ == '__main__':\n    run()"},
		},
	}
	sec := Section{ID: "usage", Queries: []string{"usage run"}}

	result := composer.SelectContext(context.Background(), sec, facts)
	if result == "" {
		t.Fatal("expected key-file fallback, got empty context")
	}
	// Priority-named files are sampled first
	mainIdx := strings.Index(result, "src/main.py")
	notesIdx := strings.Index(result, "docs/notes.txt")
	if mainIdx == -1 {
		t.Fatal("main.py missing from fallback context")
	}
	if notesIdx != -1 && notesIdx < mainIdx {
		t.Error("priority file main.py should come before docs/notes.txt")
	}
}

func TestSelectContext_NoInputAtAll(t *testing.T) {
	composer := NewComposer(store.New(nil), nil)
	sec := Section{ID: "usage", Queries: []string{"usage"}}

	if got := composer.SelectContext(context.Background(), sec, &models.ProjectFacts{}); got != "" {
		t.Errorf("expected empty context, got %q", got)
	}
}

func TestComposePrompt_IncludesFactsAndInstructions(t *testing.T) {
	composer := NewComposer(populatedStore(t), nil)
	facts := &models.ProjectFacts{
		Name:       "webapp",
		Languages:  map[string]int{"python": 10},
		InstallCmd: "pip install -r requirements.txt",
	}
	sec, ok := composer.Plan().Section("installation")
	if !ok {
		t.Fatal("installation section missing from default plan")
	}

	prompt := composer.ComposePrompt(context.Background(), sec, facts)

	for _, want := range []string{
		"Installation",
		"webapp",
		"pip install -r requirements.txt",
		sec.Instructions,
		"never invent",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestComposePrompt_SectionSpecificFacts(t *testing.T) {
	composer := NewComposer(store.New(nil), nil)
	facts := &models.ProjectFacts{
		Name:   "svc",
		Routes: []models.Route{{Method: "POST", Path: "/login", File: "auth.py"}},
		EnvVars: []models.EnvVar{
			{Name: "SECRET_KEY", Required: true, Purpose: "session signing"},
		},
	}

	apiSec, _ := composer.Plan().Section("api")
	apiPrompt := composer.ComposePrompt(context.Background(), apiSec, facts)
	if !strings.Contains(apiPrompt, "POST /login") {
		t.Error("api prompt missing detected route")
	}

	confSec, _ := composer.Plan().Section("configuration")
	confPrompt := composer.ComposePrompt(context.Background(), confSec, facts)
	if !strings.Contains(confPrompt, "SECRET_KEY") {
		t.Error("configuration prompt missing env var")
	}
	if !strings.Contains(confPrompt, "required") {
		t.Error("configuration prompt missing requiredness")
	}
}
