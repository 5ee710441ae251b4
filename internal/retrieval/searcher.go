package retrieval

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"bioregtool/internal/ai"
	"bioregtool/internal/model"
	"bioregtool/internal/repository"
)

var (
	// ErrEmptyCorpus is returned when there are no indexed chunks to search.
	ErrEmptyCorpus = errors.New("guideline corpus is empty")
	// ErrBackendUnavailable is returned when the embedding backend cannot be
	// reached. The search is not retried.
	ErrBackendUnavailable = errors.New("embedding backend unavailable")
)

// Match is one scored retrieval hit. Score is normalized to [0,1]; higher is
// more relevant. Ties keep the underlying insertion order.
type Match struct {
	Document model.GuidelineDocument `json:"document"`
	Excerpt  string                  `json:"excerpt"`
	Score    float32                 `json:"score"`
}

// Searcher performs a semantic similarity search over the guideline corpus.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]Match, error)
}

// Embedder is the slice of the AI client the searcher needs.
type Embedder interface {
	Embed(ctx context.Context, cfg ai.EmbeddingConfig, text string) ([]float32, error)
}

// EmbeddingSearcher embeds the query and scores it against every indexed
// chunk by cosine similarity, deduplicating to one best chunk per document.
type EmbeddingSearcher struct {
	chunkRepo *repository.ChunkRepository
	docRepo   *repository.GuidelineRepository
	embedder  Embedder
	embConfig ai.EmbeddingConfig
}

func NewEmbeddingSearcher(
	chunkRepo *repository.ChunkRepository,
	docRepo *repository.GuidelineRepository,
	embedder Embedder,
	embConfig ai.EmbeddingConfig,
) *EmbeddingSearcher {
	return &EmbeddingSearcher{
		chunkRepo: chunkRepo,
		docRepo:   docRepo,
		embedder:  embedder,
		embConfig: embConfig,
	}
}

func (s *EmbeddingSearcher) Search(ctx context.Context, query string, k int) ([]Match, error) {
	if k <= 0 {
		return nil, nil
	}

	chunks, err := s.chunkRepo.ListAll()
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, ErrEmptyCorpus
	}

	queryEmb, err := s.embedder.Embed(ctx, s.embConfig, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	type scored struct {
		chunk model.GuidelineChunk
		score float32
	}
	all := make([]scored, len(chunks))
	for i := range chunks {
		all[i] = scored{
			chunk: chunks[i],
			score: normalizeScore(cosineSimilarity(queryEmb, chunks[i].EmbeddingVector())),
		}
	}
	// stable sort keeps insertion order for equal scores
	sort.SliceStable(all, func(i, j int) bool { return all[i].score > all[j].score })

	// keep only the best chunk per document
	docIDs := make([]uint, 0, k)
	best := make(map[uint]scored, k)
	for _, sc := range all {
		if _, seen := best[sc.chunk.DocumentID]; seen {
			continue
		}
		best[sc.chunk.DocumentID] = sc
		docIDs = append(docIDs, sc.chunk.DocumentID)
		if len(docIDs) >= k {
			break
		}
	}

	docs, err := s.docRepo.ListByIDs(docIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]model.GuidelineDocument, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
	}

	matches := make([]Match, 0, len(docIDs))
	for _, id := range docIDs {
		doc, ok := byID[id]
		if !ok {
			// chunk without its parent document; skip rather than fabricate
			continue
		}
		sc := best[id]
		matches = append(matches, Match{
			Document: doc,
			Excerpt:  sc.chunk.Content,
			Score:    sc.score,
		})
	}
	return matches, nil
}

// ChunkText splits text into overlapping chunks by rune count.
func ChunkText(text string, size, overlap int) []string {
	if size <= 0 {
		return nil
	}
	if overlap >= size {
		overlap = size / 2
	}
	var chunks []string
	runes := []rune(text)
	for i := 0; i < len(runes); {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
		i += size - overlap
		if i >= len(runes) {
			break
		}
	}
	return chunks
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA <= 0 || normB <= 0 {
		return 0
	}
	return dot / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}

// normalizeScore maps cosine similarity from [-1,1] onto [0,1].
func normalizeScore(cos float32) float32 {
	s := (cos + 1) / 2
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
