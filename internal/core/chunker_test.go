// ABOUTME: Tests for the file chunker across source, config and doc files
// ABOUTME: Verifies boundary detection, merge rules, caps, and stable IDs
package core

import (
	"strings"
	"testing"

	"github.com/harper/readmegen/internal/models"
)

func TestChunk_PythonSymbols(t *testing.T) {
	content := `import os

class UserService:
    def __init__(self, db):
        self.db = db

    def get_user(self, user_id):
        return self.db.query(user_id)

def standalone_helper(value):
    """A module-level helper that does enough to pass the size gate."""
    return value * 2
`
	chunker := NewChunker()
	chunks := chunker.Chunk("service.py", content)

	if len(chunks) == 0 {
		t.Fatal("no chunks produced")
	}

	var foundClass, foundFunction bool
	for _, c := range chunks {
		switch c.ChunkType {
		case models.ChunkTypeClass:
			foundClass = true
		case models.ChunkTypeFunction:
			foundFunction = true
		}
	}
	if !foundClass {
		t.Error("class UserService not detected")
	}
	if !foundFunction {
		t.Error("top-level function not detected")
	}
}

func TestChunk_GoSymbols(t *testing.T) {
	content := `package main

type Server struct {
	addr string
	pool *Pool
}

func (s *Server) ListenAndServe() error {
	return http.ListenAndServe(s.addr, s.router())
}

func NewServer(addr string) *Server {
	return &Server{addr: addr}
}
`
	chunks := NewChunker().Chunk("server.go", content)
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want at least 2", len(chunks))
	}
}

func TestChunk_TinyStubsMergeForward(t *testing.T) {
	// Each def is under the minimum on its own; the chunker must merge them
	// instead of emitting sub-minimal fragments
	content := strings.Repeat("def f():\n    pass\n", 10)

	chunks := NewChunker().Chunk("stubs.py", content)
	for _, c := range chunks {
		if len(c.Content) < 50 {
			t.Errorf("chunk %q is %d chars, below the 50-char minimum", c.ID, len(c.Content))
		}
	}
}

func TestChunk_UnmatchedSourceBecomesModuleChunk(t *testing.T) {
	content := "x = 1\ny = 2\nz = x + y\nprint(z)\n# padding so the file clears the minimum chunk size\n"

	chunks := NewChunker().Chunk("script.py", content)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].ChunkType != models.ChunkTypeModule {
		t.Errorf("chunk type = %q, want module", chunks[0].ChunkType)
	}
}

func TestChunk_ConfigFiles(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"yaml", "docker-compose.yml"},
		{"json", "package.json"},
		{"dockerfile", "Dockerfile"},
		{"makefile", "Makefile"},
	}

	content := "key: value\nanother: setting\nthird: option\nfourth: entry\n"
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := NewChunker().Chunk(tt.path, content)
			if len(chunks) != 1 {
				t.Fatalf("got %d chunks, want 1", len(chunks))
			}
			if chunks[0].ChunkType != models.ChunkTypeConfig {
				t.Errorf("chunk type = %q, want config", chunks[0].ChunkType)
			}
		})
	}
}

func TestChunk_ConfigContentCapped(t *testing.T) {
	content := strings.Repeat("key: value\n", 500)

	chunks := NewChunker().Chunk("big.yaml", content)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if len(chunks[0].Content) > maxChunkChars {
		t.Errorf("config chunk is %d chars, exceeds cap", len(chunks[0].Content))
	}
}

func TestChunk_MarkdownHeadingSplit(t *testing.T) {
	content := `# My Project

This is the introduction paragraph with enough text to clear the gate.

## Installation

Run the installer and follow the prompts until everything is set up.

## Usage

Invoke the binary with your configuration file to start the service.
`
	chunks := NewChunker().Chunk("README.md", content)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3 (one per heading section)", len(chunks))
	}
	for _, c := range chunks {
		if c.ChunkType != models.ChunkTypeDoc {
			t.Errorf("chunk type = %q, want doc", c.ChunkType)
		}
	}
}

func TestChunk_PlainTextWindows(t *testing.T) {
	content := strings.Repeat("line of documentation text\n", 100) // ~2700 chars

	chunks := NewChunker().Chunk("NOTES.txt", content)
	if len(chunks) < 3 {
		t.Fatalf("got %d chunks, want at least 3 windows", len(chunks))
	}

	// Consecutive windows overlap by 100 chars
	first := chunks[0].Content
	second := chunks[1].Content
	if !strings.HasPrefix(second, first[len(first)-windowOverlap:]) {
		t.Error("second window does not start with the overlap of the first")
	}
}

func TestChunk_OversizedFileSkipped(t *testing.T) {
	content := strings.Repeat("a", maxFileChars+1)

	if chunks := NewChunker().Chunk("huge.py", content); chunks != nil {
		t.Errorf("oversized file produced %d chunks, want none", len(chunks))
	}
}

func TestChunk_UnknownExtensionSkipped(t *testing.T) {
	if chunks := NewChunker().Chunk("binary.bin", "some binary-ish content here"); chunks != nil {
		t.Errorf("unknown extension produced %d chunks, want none", len(chunks))
	}
}

func TestChunk_IDsStableAcrossContentEdits(t *testing.T) {
	v1 := "def handler(request):\n    return process(request) or fallback(request)\n"
	v2 := "def handler(request):\n    validated = validate(request)\n    return process(validated)\n"

	chunker := NewChunker()
	first := chunker.Chunk("api.py", v1)
	second := chunker.Chunk("api.py", v2)

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected 1 chunk each, got %d and %d", len(first), len(second))
	}
	if first[0].ID != second[0].ID {
		t.Errorf("ID changed after content edit: %q vs %q", first[0].ID, second[0].ID)
	}
}

func TestChunk_ContentCapped(t *testing.T) {
	// One giant function body must be truncated to the chunk cap
	content := "def huge():\n" + strings.Repeat("    x = 1\n", 1000)

	chunks := NewChunker().Chunk("huge_fn.py", content)
	for _, c := range chunks {
		if len(c.Content) > maxChunkChars {
			t.Errorf("chunk %q is %d chars, exceeds %d cap", c.ID, len(c.Content), maxChunkChars)
		}
	}
}

func TestSplitAtHeadings_PreambleKept(t *testing.T) {
	content := "intro text before any heading\n# First\nbody one\n# Second\nbody two\n"

	sections := splitAtHeadings(content)
	if len(sections) != 3 {
		t.Fatalf("got %d sections, want 3", len(sections))
	}
	if !strings.HasPrefix(sections[0], "intro") {
		t.Errorf("preamble lost: %q", sections[0])
	}
	if !strings.HasPrefix(sections[1], "# First") {
		t.Errorf("section boundary wrong: %q", sections[1])
	}
}
