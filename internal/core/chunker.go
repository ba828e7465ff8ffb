// ABOUTME: Chunker splits repository files into semantically bounded units
// ABOUTME: Detects symbol boundaries per language, splits docs at headings, windows the rest
package core

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/harper/readmegen/internal/models"
)

// Chunking limits. Trivial fragments are merged forward instead of emitted,
// and chunk contents are capped to bound the token cost per retrieval.
const (
	minChunkChars = 50
	maxChunkChars = 5000
	docSectionCap = 2000
	windowSize    = 1000
	windowOverlap = 100
	maxFileChars  = 100000
)

// symbolPattern describes a top-level symbol boundary for one language
type symbolPattern struct {
	re        *regexp.Regexp
	chunkType models.ChunkType
}

var symbolPatterns = map[string][]symbolPattern{
	"python": {
		{regexp.MustCompile(`^class\s+(\w+)`), models.ChunkTypeClass},
		{regexp.MustCompile(`^(?:async\s+)?def\s+(\w+)`), models.ChunkTypeFunction},
	},
	"go": {
		{regexp.MustCompile(`^type\s+(\w+)\s+(?:struct|interface)\b`), models.ChunkTypeClass},
		{regexp.MustCompile(`^func\s+(?:\([^)]+\)\s+)?(\w+)`), models.ChunkTypeFunction},
	},
	"javascript": {
		{regexp.MustCompile(`^export\s+(?:default\s+)?class\s+(\w+)`), models.ChunkTypeClass},
		{regexp.MustCompile(`^class\s+(\w+)`), models.ChunkTypeClass},
		{regexp.MustCompile(`^export\s+(?:default\s+)?(?:async\s+)?function\s+(\w+)`), models.ChunkTypeFunction},
		{regexp.MustCompile(`^(?:async\s+)?function\s+(\w+)`), models.ChunkTypeFunction},
		{regexp.MustCompile(`^(?:export\s+)?(?:const|let|var)\s+(\w+)\s*=\s*(?:async\s*)?\([^)]*\)\s*=>`), models.ChunkTypeFunction},
	},
}

var markdownHeading = regexp.MustCompile(`(?m)^#{1,3}\s`)

var (
	sourceExtensions = map[string]string{
		".py": "python", ".go": "go",
		".js": "javascript", ".ts": "javascript", ".jsx": "javascript", ".tsx": "javascript",
		".java": "generic", ".rs": "generic", ".rb": "generic", ".php": "generic",
	}
	configExtensions = map[string]bool{
		".json": true, ".yaml": true, ".yml": true, ".toml": true, ".xml": true, ".env": true,
	}
	configNames = map[string]bool{
		"dockerfile": true, "makefile": true, "gemfile": true,
	}
	docExtensions = map[string]bool{
		".md": true, ".rst": true, ".txt": true,
	}
)

// Chunker slices file contents into CodeChunks with stable identifiers
type Chunker struct{}

// NewChunker creates a new Chunker instance
func NewChunker() *Chunker {
	return &Chunker{}
}

// Chunk splits one file into retrievable units. Unreadable or oversized
// files yield no chunks; that is exclusion from the corpus, not an error.
func (c *Chunker) Chunk(path, content string) []models.CodeChunk {
	if len(content) > maxFileChars {
		return nil
	}

	ext := strings.ToLower(filepath.Ext(path))
	name := strings.ToLower(filepath.Base(path))

	switch {
	case configExtensions[ext] || configNames[name]:
		return c.chunkConfig(path, content)
	case docExtensions[ext]:
		return c.chunkDoc(path, content)
	default:
		if lang, ok := sourceExtensions[ext]; ok {
			return c.chunkSource(path, content, lang)
		}
	}
	return nil
}

// chunkSource splits a source file at top-level symbol boundaries. A new
// boundary only starts a new chunk once the current one has accumulated
// enough content, so one-line stubs merge into the chunk that follows.
func (c *Chunker) chunkSource(path, content, lang string) []models.CodeChunk {
	patterns, ok := symbolPatterns[lang]
	if !ok {
		// No boundary patterns for this language: fall back to windows
		return c.chunkWindows(path, content, models.ChunkTypeModule)
	}

	lines := strings.Split(content, "\n")

	var chunks []models.CodeChunk
	var current []string
	currentType := models.ChunkTypeModule
	currentName := path
	currentStart := 0

	flush := func(endLine int) {
		body := strings.Join(current, "\n")
		if len(body) < minChunkChars {
			return
		}
		chunks = append(chunks, c.newChunk(path, currentName, body, currentType, currentStart+1, endLine))
	}

	for i, line := range lines {
		var matchedName string
		var matchedType models.ChunkType
		for _, p := range patterns {
			if m := p.re.FindStringSubmatch(line); m != nil {
				matchedName = m[1]
				matchedType = p.chunkType
				break
			}
		}

		if matchedName != "" {
			if len(strings.Join(current, "\n")) >= minChunkChars {
				flush(i)
				current = nil
			}
			if current == nil {
				currentStart = i
			}
			currentType = matchedType
			currentName = matchedName
		}
		current = append(current, line)
	}
	flush(len(lines))

	// Nothing matched: keep the whole file as a single module chunk
	if len(chunks) == 0 && len(content) >= minChunkChars {
		chunks = append(chunks, c.newChunk(path, "module", content, models.ChunkTypeModule, 1, len(lines)))
	}

	return chunks
}

// chunkConfig emits the whole file as one capped config chunk
func (c *Chunker) chunkConfig(path, content string) []models.CodeChunk {
	if len(strings.TrimSpace(content)) < minChunkChars {
		return nil
	}
	return []models.CodeChunk{c.newChunk(path, "config", content, models.ChunkTypeConfig, 1, strings.Count(content, "\n")+1)}
}

// chunkDoc splits markdown at heading boundaries; other text files become
// overlapping fixed-size windows to preserve continuity across boundaries
func (c *Chunker) chunkDoc(path, content string) []models.CodeChunk {
	if strings.ToLower(filepath.Ext(path)) != ".md" {
		return c.chunkWindows(path, content, models.ChunkTypeDoc)
	}

	var chunks []models.CodeChunk
	sections := splitAtHeadings(content)
	for i, section := range sections {
		if len(strings.TrimSpace(section)) < minChunkChars {
			continue
		}
		if len(section) > docSectionCap {
			section = section[:docSectionCap]
		}
		chunk := c.newChunk(path, strconv.Itoa(i), section, models.ChunkTypeDoc, 0, 0)
		chunk.Metadata["section"] = strconv.Itoa(i)
		chunks = append(chunks, chunk)
	}
	return chunks
}

// chunkWindows slices content into fixed-size windows with overlap
func (c *Chunker) chunkWindows(path, content string, chunkType models.ChunkType) []models.CodeChunk {
	var chunks []models.CodeChunk
	step := windowSize - windowOverlap

	for offset := 0; offset < len(content); offset += step {
		end := offset + windowSize
		if end > len(content) {
			end = len(content)
		}
		window := content[offset:end]
		if len(window) < minChunkChars {
			break
		}
		chunk := c.newChunk(path, strconv.Itoa(offset), window, chunkType, 0, 0)
		chunk.Metadata["offset"] = strconv.Itoa(offset)
		chunks = append(chunks, chunk)
		if end == len(content) {
			break
		}
	}
	return chunks
}

func (c *Chunker) newChunk(path, unit, content string, chunkType models.ChunkType, startLine, endLine int) models.CodeChunk {
	if len(content) > maxChunkChars {
		content = content[:maxChunkChars]
	}
	return models.CodeChunk{
		ID:        models.ChunkID(path, unit),
		Content:   content,
		FilePath:  path,
		ChunkType: chunkType,
		StartLine: startLine,
		EndLine:   endLine,
		Metadata:  map[string]string{"name": unit},
	}
}

// splitAtHeadings splits markdown so each section starts at a #, ## or ###
// heading line; content before the first heading is its own section
func splitAtHeadings(content string) []string {
	indexes := markdownHeading.FindAllStringIndex(content, -1)
	if len(indexes) == 0 {
		return []string{content}
	}

	var sections []string
	prev := 0
	for _, idx := range indexes {
		// Heading at the very start extends the current section
		if idx[0] == prev {
			continue
		}
		sections = append(sections, content[prev:idx[0]])
		prev = idx[0]
	}
	sections = append(sections, content[prev:])
	return sections
}

// ChunkLabel renders a chunk header used when concatenating retrieved context
func ChunkLabel(chunk models.CodeChunk) string {
	return fmt.Sprintf("=== %s (%s) ===", chunk.FilePath, chunk.ChunkType)
}
