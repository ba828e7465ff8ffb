// ABOUTME: Tests for CodeChunk identifiers and embedding state
// ABOUTME: Verifies chunk IDs are stable, content-independent, and collision-free
package models

import "testing"

func TestChunkID_Stable(t *testing.T) {
	a := ChunkID("src/main.py", "handle_request")
	b := ChunkID("src/main.py", "handle_request")

	if a != b {
		t.Errorf("same inputs produced different IDs: %q vs %q", a, b)
	}
	if len(a) != 12 {
		t.Errorf("ID length = %d, want 12", len(a))
	}
}

func TestChunkID_ContentIndependent(t *testing.T) {
	// Two chunks with the same path and unit share an ID regardless of what
	// the content looks like; re-chunking an edited file keeps IDs stable.
	c1 := CodeChunk{ID: ChunkID("api.go", "ListUsers"), Content: "func ListUsers() {}"}
	c2 := CodeChunk{ID: ChunkID("api.go", "ListUsers"), Content: "func ListUsers() { return nil }"}

	if c1.ID != c2.ID {
		t.Errorf("ID changed with content: %q vs %q", c1.ID, c2.ID)
	}
}

func TestChunkID_DistinctInputs(t *testing.T) {
	tests := []struct {
		name          string
		pathA, unitA  string
		pathB, unitB  string
	}{
		{"different units", "main.py", "foo", "main.py", "bar"},
		{"different paths", "a/main.py", "foo", "b/main.py", "foo"},
		{"unit vs path swap", "main", "py", "main.py", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if ChunkID(tt.pathA, tt.unitA) == ChunkID(tt.pathB, tt.unitB) {
				t.Errorf("ChunkID(%q,%q) collided with ChunkID(%q,%q)",
					tt.pathA, tt.unitA, tt.pathB, tt.unitB)
			}
		})
	}
}

func TestHasEmbedding(t *testing.T) {
	chunk := CodeChunk{}
	if chunk.HasEmbedding() {
		t.Error("empty chunk should not report an embedding")
	}

	chunk.Embedding = []float64{0, 0, 0}
	if !chunk.HasEmbedding() {
		t.Error("zero vector still counts as an assigned embedding")
	}
}
