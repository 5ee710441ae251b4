package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"bioregtool/internal/model"
)

type GuidelineRepository struct {
	db *gorm.DB
}

func NewGuidelineRepository(db *gorm.DB) *GuidelineRepository {
	return &GuidelineRepository{db: db}
}

func (r *GuidelineRepository) Create(doc *model.GuidelineDocument) error {
	if err := r.db.Create(doc).Error; err != nil {
		return fmt.Errorf("create guideline document failed: %w", err)
	}
	return nil
}

func (r *GuidelineRepository) GetByID(id uint) (*model.GuidelineDocument, error) {
	var doc model.GuidelineDocument
	if err := r.db.First(&doc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get guideline document failed: %w", err)
	}
	return &doc, nil
}

// List returns documents, optionally filtered by jurisdiction and category.
func (r *GuidelineRepository) List(jurisdiction, category string) ([]model.GuidelineDocument, error) {
	q := r.db.Model(&model.GuidelineDocument{})
	if jurisdiction != "" {
		q = q.Where("jurisdiction = ?", jurisdiction)
	}
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var list []model.GuidelineDocument
	if err := q.Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list guideline documents failed: %w", err)
	}
	return list, nil
}

func (r *GuidelineRepository) ListByIDs(ids []uint) ([]model.GuidelineDocument, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var list []model.GuidelineDocument
	if err := r.db.Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list guideline documents by ids failed: %w", err)
	}
	return list, nil
}

func (r *GuidelineRepository) Count() (int64, error) {
	var n int64
	if err := r.db.Model(&model.GuidelineDocument{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count guideline documents failed: %w", err)
	}
	return n, nil
}

func (r *GuidelineRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.GuidelineDocument{}, id).Error; err != nil {
		return fmt.Errorf("delete guideline document failed: %w", err)
	}
	return nil
}
