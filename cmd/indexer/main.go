package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bioregtool/internal/ai"
	"bioregtool/internal/app"
	"bioregtool/internal/config"
	"bioregtool/internal/model"
	"bioregtool/internal/pkg/textextract"
	databaseClient "bioregtool/internal/platform/database"
	"bioregtool/internal/repository"
	"bioregtool/internal/retrieval"
)

// indexer bulk-loads guideline documents from a directory into the corpus,
// embedding them in-line without the message queue.
func main() {
	dir := flag.String("dir", "", "directory of guideline documents to ingest")
	jurisdiction := flag.String("jurisdiction", "", "jurisdiction tag applied to every document")
	category := flag.String("category", "", "category tag applied to every document")
	flag.Parse()

	if *dir == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	ctx := context.Background()
	db, err := databaseClient.New(ctx, cfg.Database.Driver, cfg.DatabaseDSN())
	if err != nil {
		log.Fatalf("connect database failed: %v", err)
	}
	if err := db.AutoMigrate(&model.GuidelineDocument{}, &model.GuidelineChunk{}); err != nil {
		log.Fatalf("auto migrate tables failed: %v", err)
	}

	aiClient := ai.NewClient(time.Duration(cfg.LLM.TimeoutSeconds) * time.Second)
	embCfg := ai.EmbeddingConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.EmbeddingModel,
	}

	guidelineRepo := repository.NewGuidelineRepository(db)
	chunkRepo := repository.NewChunkRepository(db)
	searcher := retrieval.NewEmbeddingSearcher(chunkRepo, guidelineRepo, aiClient, embCfg)
	guidelines := app.NewGuidelineService(guidelineRepo, chunkRepo, aiClient, embCfg, searcher, nil)

	entries, err := os.ReadDir(*dir)
	if err != nil {
		log.Fatalf("read directory failed: %v", err)
	}

	var indexed, skipped int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(*dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("skip %s: %v", entry.Name(), err)
			skipped++
			continue
		}

		content, err := textextract.Extract(entry.Name(), data)
		if err != nil {
			if errors.Is(err, textextract.ErrUnsupportedType) {
				log.Printf("skip %s: unsupported file type", entry.Name())
			} else {
				log.Printf("skip %s: %v", entry.Name(), err)
			}
			skipped++
			continue
		}

		title := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		doc, err := guidelines.Ingest(ctx, app.IngestGuidelineInput{
			Title:        title,
			Content:      content,
			Reference:    entry.Name(),
			Jurisdiction: *jurisdiction,
			Category:     *category,
		})
		if err != nil {
			log.Printf("skip %s: %v", entry.Name(), err)
			skipped++
			continue
		}

		log.Printf("indexed %s as document %d", entry.Name(), doc.ID)
		indexed++
	}

	fmt.Printf("done: %d indexed, %d skipped\n", indexed, skipped)
}
