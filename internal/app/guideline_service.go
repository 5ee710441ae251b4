package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bioregtool/internal/ai"
	"bioregtool/internal/model"
	"bioregtool/internal/repository"
	"bioregtool/internal/retrieval"
)

const (
	defaultChunkSize    = 512
	defaultChunkOverlap = 64
	embeddingBatchSize  = 10 // embedding providers commonly cap batch size
)

// IndexJobPublisher hands chunk-and-embed work to the background worker.
type IndexJobPublisher interface {
	Publish(ctx context.Context, job model.IndexJob) error
}

// BatchEmbedder is the slice of the AI client indexing needs.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, cfg ai.EmbeddingConfig, texts []string) ([][]float32, error)
}

// GuidelineService manages the regulatory guideline corpus: ingest, listing,
// deletion, indexing and direct semantic search.
type GuidelineService struct {
	docRepo   *repository.GuidelineRepository
	chunkRepo *repository.ChunkRepository
	embedder  BatchEmbedder
	embConfig ai.EmbeddingConfig
	searcher  retrieval.Searcher
	publisher IndexJobPublisher // nil = index synchronously on ingest
}

func NewGuidelineService(
	docRepo *repository.GuidelineRepository,
	chunkRepo *repository.ChunkRepository,
	embedder BatchEmbedder,
	embConfig ai.EmbeddingConfig,
	searcher retrieval.Searcher,
	publisher IndexJobPublisher,
) *GuidelineService {
	return &GuidelineService{
		docRepo:   docRepo,
		chunkRepo: chunkRepo,
		embedder:  embedder,
		embConfig: embConfig,
		searcher:  searcher,
		publisher: publisher,
	}
}

type IngestGuidelineInput struct {
	Title        string
	Content      string
	Reference    string
	Jurisdiction string
	Category     string
}

// Ingest persists the document and schedules indexing. Without a publisher
// the document is indexed in-line before returning.
func (s *GuidelineService) Ingest(ctx context.Context, input IngestGuidelineInput) (*model.GuidelineDocument, error) {
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" || content == "" {
		return nil, fmt.Errorf("%w: title and content are required", ErrValidation)
	}

	doc := &model.GuidelineDocument{
		Title:        title,
		Content:      content,
		Reference:    strings.TrimSpace(input.Reference),
		Jurisdiction: strings.TrimSpace(input.Jurisdiction),
		Category:     strings.TrimSpace(input.Category),
	}
	if err := s.docRepo.Create(doc); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, model.IndexJob{DocumentID: doc.ID}); err != nil {
			return nil, fmt.Errorf("enqueue index job failed: %w", err)
		}
		return doc, nil
	}
	if err := s.IndexDocument(ctx, doc.ID); err != nil {
		return nil, err
	}
	return doc, nil
}

// IndexDocument chunks a stored document, embeds the chunks in batches and
// persists them for retrieval. Re-indexing replaces previous chunks.
func (s *GuidelineService) IndexDocument(ctx context.Context, documentID uint) error {
	doc, err := s.docRepo.GetByID(documentID)
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("%w: %d", ErrGuidelineNotFound, documentID)
	}

	texts := retrieval.ChunkText(doc.Content, defaultChunkSize, defaultChunkOverlap)
	if len(texts) == 0 {
		return fmt.Errorf("%w: document has no indexable text", ErrValidation)
	}

	var embeddings [][]float32
	for i := 0; i < len(texts); i += embeddingBatchSize {
		end := i + embeddingBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := s.embedder.EmbedBatch(ctx, s.embConfig, texts[i:end])
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		embeddings = append(embeddings, batch...)
	}
	if len(embeddings) != len(texts) {
		return errors.New("embedding count mismatch")
	}

	if err := s.chunkRepo.DeleteByDocumentID(doc.ID); err != nil {
		return err
	}
	chunks := make([]model.GuidelineChunk, len(texts))
	for i := range texts {
		chunks[i] = model.GuidelineChunk{
			DocumentID: doc.ID,
			Content:    texts[i],
		}
		chunks[i].SetEmbedding(embeddings[i])
	}
	return s.chunkRepo.CreateBatch(chunks)
}

func (s *GuidelineService) List(jurisdiction, category string) ([]model.GuidelineDocument, error) {
	return s.docRepo.List(jurisdiction, category)
}

func (s *GuidelineService) Get(id uint) (*model.GuidelineDocument, error) {
	doc, err := s.docRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: %d", ErrGuidelineNotFound, id)
	}
	return doc, nil
}

func (s *GuidelineService) Delete(id uint) error {
	doc, err := s.docRepo.GetByID(id)
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("%w: %d", ErrGuidelineNotFound, id)
	}
	if err := s.chunkRepo.DeleteByDocumentID(id); err != nil {
		return err
	}
	return s.docRepo.Delete(id)
}

// Search runs a free-form semantic query against the corpus.
func (s *GuidelineService) Search(ctx context.Context, query string, k int) ([]Guideline, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", ErrValidation)
	}
	if k <= 0 {
		k = defaultTopK
	}
	matches, err := s.searcher.Search(ctx, query, k)
	if err != nil {
		switch {
		case errors.Is(err, retrieval.ErrEmptyCorpus):
			return nil, ErrNoCorpus
		case errors.Is(err, retrieval.ErrBackendUnavailable):
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		default:
			return nil, err
		}
	}
	return guidelinesFromMatches(matches), nil
}
