package repository

import (
	"fmt"

	"gorm.io/gorm"

	"bioregtool/internal/model"
)

type ChunkRepository struct {
	db *gorm.DB
}

func NewChunkRepository(db *gorm.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

func (r *ChunkRepository) CreateBatch(chunks []model.GuidelineChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if err := r.db.Create(&chunks).Error; err != nil {
		return fmt.Errorf("create guideline chunks batch failed: %w", err)
	}
	return nil
}

// ListAll returns every indexed chunk in insertion order. The corpus is small
// enough (guideline fragments, not full registries) to score in-process.
func (r *ChunkRepository) ListAll() ([]model.GuidelineChunk, error) {
	var chunks []model.GuidelineChunk
	if err := r.db.Order("id ASC").Find(&chunks).Error; err != nil {
		return nil, fmt.Errorf("list guideline chunks failed: %w", err)
	}
	return chunks, nil
}

func (r *ChunkRepository) DeleteByDocumentID(documentID uint) error {
	if err := r.db.Where("document_id = ?", documentID).Delete(&model.GuidelineChunk{}).Error; err != nil {
		return fmt.Errorf("delete guideline chunks by document failed: %w", err)
	}
	return nil
}
