// ABOUTME: Tests for repository ingestion into the vector store
// ABOUTME: Verifies directory skipping, file eligibility, and cancellation
package core

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harper/readmegen/internal/store"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestBuildStore(t *testing.T) {
	root := t.TempDir()
	pyContent := "def handler(request):\n    return process(request) or fallback(request)\n"
	writeFile(t, root, "app/main.py", pyContent)
	writeFile(t, root, "docker-compose.yml", "services:\n  db:\n    image: postgres:16\n    ports: [5432]\n")
	writeFile(t, root, "node_modules/pkg/index.js", "export function skipped() { return 'should never be indexed' }\n")
	writeFile(t, root, ".git/config", "[core]\n  bare = false\n  repositoryformatversion = 0\n")
	writeFile(t, root, "image.png", "not really a png")

	st := store.New(nil)
	files, err := BuildStore(context.Background(), root, st)
	if err != nil {
		t.Fatalf("BuildStore() error: %v", err)
	}

	if files != 2 {
		t.Errorf("indexed %d files, want 2 (main.py and docker-compose.yml)", files)
	}
	for _, c := range st.Chunks() {
		if strings.Contains(c.FilePath, "node_modules") || strings.Contains(c.FilePath, ".git") {
			t.Errorf("skipped directory leaked into the index: %q", c.FilePath)
		}
		if filepath.IsAbs(c.FilePath) {
			t.Errorf("chunk path should be repo-relative: %q", c.FilePath)
		}
	}
}

func TestBuildStore_Cancellation(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.py", "def f():\n    return 'enough content to produce a chunk here'\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := BuildStore(ctx, root, store.New(nil)); err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestBuildStore_MissingRoot(t *testing.T) {
	if _, err := BuildStore(context.Background(), filepath.Join(t.TempDir(), "missing"), store.New(nil)); err == nil {
		t.Error("expected error for missing root")
	}

	// A file is not a valid root either
	root := t.TempDir()
	writeFile(t, root, "file.py", "content")
	if _, err := BuildStore(context.Background(), filepath.Join(root, "file.py"), store.New(nil)); err == nil {
		t.Error("expected error for non-directory root")
	}
}
