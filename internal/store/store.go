// ABOUTME: In-memory vector store with cosine similarity search over code chunks
// ABOUTME: Falls back to keyword overlap scoring when embeddings are unavailable
package store

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/harper/readmegen/internal/models"
)

// Embedder is the minimal embedding contract the store depends on.
// Satisfied by the llm package clients.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
	Dimension() int
}

// VectorStore owns the chunk collection and a cached L2-normalized embedding
// matrix. Mutations invalidate the matrix; it is rebuilt lazily so searches
// never see stale rows. Not safe for concurrent mutation - the pipeline is
// strictly sequential.
type VectorStore struct {
	chunks   []models.CodeChunk
	embedder Embedder

	// matrix holds one normalized row per chunk with a non-empty embedding;
	// rowChunk maps each row back to its index in chunks.
	matrix   [][]float64
	rowChunk []int
	built    bool
}

// New creates an empty store. A nil embedder is valid: searches then use
// the keyword fallback exclusively.
func New(embedder Embedder) *VectorStore {
	return &VectorStore{embedder: embedder}
}

// Len returns the number of chunks in the store
func (s *VectorStore) Len() int {
	return len(s.chunks)
}

// Chunks returns the chunk collection in insertion order
func (s *VectorStore) Chunks() []models.CodeChunk {
	return s.chunks
}

// AddChunk appends a chunk and invalidates the cached matrix
func (s *VectorStore) AddChunk(chunk models.CodeChunk) {
	s.chunks = append(s.chunks, chunk)
	s.invalidate()
}

// AddChunks appends multiple chunks and invalidates the cached matrix
func (s *VectorStore) AddChunks(chunks []models.CodeChunk) {
	s.chunks = append(s.chunks, chunks...)
	s.invalidate()
}

func (s *VectorStore) invalidate() {
	s.matrix = nil
	s.rowChunk = nil
	s.built = false
}

// BuildEmbeddings embeds every chunk that does not have a vector yet, in one
// batch call, then rebuilds the matrix. Idempotent: a second call with no new
// chunks performs zero provider calls. A failed batch assigns zero vectors of
// the provider's dimension so the chunks stay in the store but never rank.
func (s *VectorStore) BuildEmbeddings(ctx context.Context) error {
	if s.embedder == nil {
		log.Warn().Msg("no embedding provider configured, search will use keyword fallback")
		return nil
	}

	var pending []int
	for i := range s.chunks {
		if !s.chunks[i].HasEmbedding() {
			pending = append(pending, i)
		}
	}

	if len(pending) > 0 {
		texts := make([]string, len(pending))
		for i, idx := range pending {
			texts[i] = s.chunks[idx].Content
		}

		log.Info().Int("chunks", len(pending)).Msg("generating embeddings")

		vectors, err := s.embedder.Embed(ctx, texts)
		if err != nil || len(vectors) != len(pending) {
			// Degrade, don't fail: zero vectors rank last for every query
			log.Warn().Err(err).Msg("embedding batch failed, assigning zero vectors")
			dim := s.embedder.Dimension()
			vectors = make([][]float64, len(pending))
			for i := range vectors {
				vectors[i] = make([]float64, dim)
			}
		}

		for i, idx := range pending {
			s.chunks[idx].Embedding = vectors[i]
		}
	}

	s.buildMatrix()
	return nil
}

// buildMatrix rebuilds the normalized similarity matrix from chunk embeddings.
// NaN components are zeroed and zero-norm rows are left as zero vectors, which
// naturally rank last for any query.
func (s *VectorStore) buildMatrix() {
	s.matrix = nil
	s.rowChunk = nil
	s.built = true

	for i := range s.chunks {
		if !s.chunks[i].HasEmbedding() {
			continue
		}

		row := make([]float64, len(s.chunks[i].Embedding))
		var norm float64
		for j, v := range s.chunks[i].Embedding {
			if math.IsNaN(v) {
				v = 0
			}
			row[j] = v
			norm += v * v
		}

		if norm > 0 {
			norm = math.Sqrt(norm)
			for j := range row {
				row[j] /= norm
			}
		}

		s.matrix = append(s.matrix, row)
		s.rowChunk = append(s.rowChunk, i)
	}
}

// Search returns the topK most relevant chunks for the query, optionally
// restricted to the given chunk types. The type filter is applied after
// ranking so matching chunks further down still fill topK. Falls back to
// keyword search when no embeddings are usable.
func (s *VectorStore) Search(ctx context.Context, query string, topK int, chunkTypes []models.ChunkType) []models.SearchResult {
	if !s.built {
		s.buildMatrix()
	}

	if s.embedder == nil || len(s.matrix) == 0 {
		return s.keywordSearch(query, topK, chunkTypes)
	}

	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil || len(vectors) != 1 {
		log.Warn().Err(err).Msg("query embedding failed, using keyword fallback")
		return s.keywordSearch(query, topK, chunkTypes)
	}

	queryVec := vectors[0]
	var norm float64
	for i, v := range queryVec {
		if math.IsNaN(v) {
			queryVec[i] = 0
			continue
		}
		norm += v * v
	}
	if norm == 0 || math.IsNaN(norm) {
		return s.keywordSearch(query, topK, chunkTypes)
	}
	norm = math.Sqrt(norm)
	for i := range queryVec {
		queryVec[i] /= norm
	}

	type scored struct {
		row   int
		score float64
	}
	ranked := make([]scored, len(s.matrix))
	for r, row := range s.matrix {
		var dot float64
		n := len(row)
		if len(queryVec) < n {
			n = len(queryVec)
		}
		for j := 0; j < n; j++ {
			dot += row[j] * queryVec[j]
		}
		ranked[r] = scored{row: r, score: dot}
	}

	// Stable sort keeps insertion order on ties for deterministic results
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	var results []models.SearchResult
	for _, entry := range ranked {
		chunk := s.chunks[s.rowChunk[entry.row]]
		if !matchesType(chunk.ChunkType, chunkTypes) {
			continue
		}
		results = append(results, models.SearchResult{Chunk: chunk, Score: entry.score})
		if len(results) >= topK {
			break
		}
	}

	return results
}

// keywordSearch scores chunks by the number of query words appearing as
// substrings in the content, with a flat bonus for a verbatim phrase match.
// This is the zero-dependency safety net when embeddings are unavailable.
func (s *VectorStore) keywordSearch(query string, topK int, chunkTypes []models.ChunkType) []models.SearchResult {
	queryLower := strings.ToLower(query)
	words := strings.Fields(queryLower)

	var results []models.SearchResult
	for i := range s.chunks {
		chunk := s.chunks[i]
		if !matchesType(chunk.ChunkType, chunkTypes) {
			continue
		}

		contentLower := strings.ToLower(chunk.Content)

		var score float64
		for _, word := range words {
			if strings.Contains(contentLower, word) {
				score++
			}
		}
		if strings.Contains(contentLower, queryLower) {
			score += 5
		}

		if score > 0 {
			results = append(results, models.SearchResult{Chunk: chunk, Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

func matchesType(t models.ChunkType, allowed []models.ChunkType) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if t == a {
			return true
		}
	}
	return false
}
