package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"bioregtool/internal/ai"
	"bioregtool/internal/model"
	"bioregtool/internal/repository"
	"bioregtool/internal/retrieval"
)

// stubBatchEmbedder returns one fixed-length vector per input text.
type stubBatchEmbedder struct {
	err   error
	calls int
}

func (s *stubBatchEmbedder) EmbedBatch(_ context.Context, _ ai.EmbeddingConfig, texts []string) ([][]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

// recordingPublisher collects published jobs instead of touching a broker.
type recordingPublisher struct {
	jobs []model.IndexJob
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, job model.IndexJob) error {
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, job)
	return nil
}

type guidelineFixture struct {
	svc       *GuidelineService
	docRepo   *repository.GuidelineRepository
	chunkRepo *repository.ChunkRepository
	embedder  *stubBatchEmbedder
}

func newGuidelineFixture(t *testing.T, publisher IndexJobPublisher) *guidelineFixture {
	t.Helper()
	db := newAppTestDB(t)
	docRepo := repository.NewGuidelineRepository(db)
	chunkRepo := repository.NewChunkRepository(db)
	embedder := &stubBatchEmbedder{}
	searcher := retrieval.NewEmbeddingSearcher(chunkRepo, docRepo, &stubQueryEmbedder{}, ai.EmbeddingConfig{})
	svc := NewGuidelineService(docRepo, chunkRepo, embedder, ai.EmbeddingConfig{}, searcher, publisher)
	return &guidelineFixture{svc: svc, docRepo: docRepo, chunkRepo: chunkRepo, embedder: embedder}
}

type stubQueryEmbedder struct{}

func (stubQueryEmbedder) Embed(_ context.Context, _ ai.EmbeddingConfig, _ string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func TestIngestIndexesSynchronouslyWithoutPublisher(t *testing.T) {
	f := newGuidelineFixture(t, nil)

	doc, err := f.svc.Ingest(context.Background(), IngestGuidelineInput{
		Title:        "Biocompatibility Evaluation",
		Content:      "Evaluation shall follow ISO 10993-1 for devices with body contact.",
		Reference:    "ISO 10993-1",
		Jurisdiction: "EU",
		Category:     "biocompatibility",
	})
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if doc.ID == 0 {
		t.Fatalf("document id not assigned")
	}

	chunks, err := f.chunkRepo.ListAll()
	if err != nil {
		t.Fatalf("list chunks failed: %v", err)
	}
	if len(chunks) == 0 {
		t.Fatalf("ingest without publisher should index in-line")
	}
	if chunks[0].DocumentID != doc.ID {
		t.Fatalf("chunk document id = %d, want %d", chunks[0].DocumentID, doc.ID)
	}
	if len(chunks[0].EmbeddingVector()) == 0 {
		t.Fatalf("chunk embedding not stored")
	}
}

func TestIngestPublishesIndexJob(t *testing.T) {
	publisher := &recordingPublisher{}
	f := newGuidelineFixture(t, publisher)

	doc, err := f.svc.Ingest(context.Background(), IngestGuidelineInput{
		Title:   "Clinical Evaluation",
		Content: "MEDDEV 2.7/1 rev 4 structure for clinical evaluation reports.",
	})
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	if len(publisher.jobs) != 1 || publisher.jobs[0].DocumentID != doc.ID {
		t.Fatalf("expected one index job for document %d, got %+v", doc.ID, publisher.jobs)
	}
	chunks, err := f.chunkRepo.ListAll()
	if err != nil {
		t.Fatalf("list chunks failed: %v", err)
	}
	if len(chunks) != 0 {
		t.Fatalf("with a publisher indexing is deferred, got %d chunks", len(chunks))
	}
}

func TestIngestValidation(t *testing.T) {
	f := newGuidelineFixture(t, nil)

	for _, input := range []IngestGuidelineInput{
		{Title: "", Content: "body"},
		{Title: "title", Content: "  "},
	} {
		if _, err := f.svc.Ingest(context.Background(), input); !errors.Is(err, ErrValidation) {
			t.Fatalf("%+v: expected ErrValidation, got %v", input, err)
		}
	}
}

func TestIndexDocumentReplacesChunks(t *testing.T) {
	f := newGuidelineFixture(t, nil)

	doc, err := f.svc.Ingest(context.Background(), IngestGuidelineInput{
		Title:   "Labeling Requirements",
		Content: strings.Repeat("Labels shall state the intended purpose. ", 40),
	})
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	before, _ := f.chunkRepo.ListAll()
	if err := f.svc.IndexDocument(context.Background(), doc.ID); err != nil {
		t.Fatalf("re-index failed: %v", err)
	}
	after, err := f.chunkRepo.ListAll()
	if err != nil {
		t.Fatalf("list chunks failed: %v", err)
	}
	if len(after) != len(before) {
		t.Fatalf("re-index changed chunk count: %d -> %d", len(before), len(after))
	}
}

func TestIndexDocumentUnknownDocument(t *testing.T) {
	f := newGuidelineFixture(t, nil)

	if err := f.svc.IndexDocument(context.Background(), 99); !errors.Is(err, ErrGuidelineNotFound) {
		t.Fatalf("expected ErrGuidelineNotFound, got %v", err)
	}
}

func TestIndexDocumentEmbedderFailure(t *testing.T) {
	publisher := &recordingPublisher{}
	f := newGuidelineFixture(t, publisher)

	doc, err := f.svc.Ingest(context.Background(), IngestGuidelineInput{
		Title:   "Risk Management",
		Content: "ISO 14971 process requirements.",
	})
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	f.embedder.err = errors.New("429 too many requests")
	if err := f.svc.IndexDocument(context.Background(), doc.ID); !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestDeleteGuidelineRemovesChunks(t *testing.T) {
	f := newGuidelineFixture(t, nil)

	doc, err := f.svc.Ingest(context.Background(), IngestGuidelineInput{
		Title:   "Post-Market Surveillance",
		Content: "Manufacturers shall maintain a surveillance plan.",
	})
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	if err := f.svc.Delete(doc.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	chunks, err := f.chunkRepo.ListAll()
	if err != nil {
		t.Fatalf("list chunks failed: %v", err)
	}
	if len(chunks) != 0 {
		t.Fatalf("chunks should be removed with the document, got %d", len(chunks))
	}
	if _, err := f.svc.Get(doc.ID); !errors.Is(err, ErrGuidelineNotFound) {
		t.Fatalf("expected ErrGuidelineNotFound after delete, got %v", err)
	}
}

func TestSearchMapsEmptyCorpus(t *testing.T) {
	f := newGuidelineFixture(t, nil)

	if _, err := f.svc.Search(context.Background(), "sterilization", 5); !errors.Is(err, ErrNoCorpus) {
		t.Fatalf("expected ErrNoCorpus, got %v", err)
	}
}

func TestSearchReturnsIngestedDocument(t *testing.T) {
	f := newGuidelineFixture(t, nil)

	doc, err := f.svc.Ingest(context.Background(), IngestGuidelineInput{
		Title:   "Sterilization Validation",
		Content: "Ethylene oxide sterilization shall be validated per ISO 11135.",
	})
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	results, err := f.svc.Search(context.Background(), "sterilization validation", 5)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 1 || results[0].ID != doc.ID {
		t.Fatalf("unexpected search results: %+v", results)
	}
}
