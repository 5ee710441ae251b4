package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"bioregtool/internal/model"
)

type AttachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

func (r *AttachmentRepository) Create(att *model.Attachment) error {
	if err := r.db.Create(att).Error; err != nil {
		return fmt.Errorf("create attachment failed: %w", err)
	}
	return nil
}

func (r *AttachmentRepository) GetByID(id string) (*model.Attachment, error) {
	var att model.Attachment
	if err := r.db.Where("id = ?", id).First(&att).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get attachment failed: %w", err)
	}
	return &att, nil
}

func (r *AttachmentRepository) ListBySessionID(sessionID uint) ([]model.Attachment, error) {
	var list []model.Attachment
	if err := r.db.Where("session_id = ?", sessionID).Order("created_at ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list attachments failed: %w", err)
	}
	return list, nil
}

func (r *AttachmentRepository) Delete(id string) error {
	if err := r.db.Where("id = ?", id).Delete(&model.Attachment{}).Error; err != nil {
		return fmt.Errorf("delete attachment failed: %w", err)
	}
	return nil
}

func (r *AttachmentRepository) DeleteBySessionID(sessionID uint) error {
	if err := r.db.Where("session_id = ?", sessionID).Delete(&model.Attachment{}).Error; err != nil {
		return fmt.Errorf("delete attachments by session failed: %w", err)
	}
	return nil
}
