package app

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"bioregtool/internal/model"
	"bioregtool/internal/pkg/textextract"
	"bioregtool/internal/repository"
)

const DefaultMaxAttachmentSize = 10 << 20 // 10 MB

var allowedAttachmentExts = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".txt":  true,
}

// AttachmentService owns session-scoped uploaded documents. Validation
// happens before any store write: an oversized or wrong-type file never
// reaches the repository.
type AttachmentService struct {
	attachmentRepo *repository.AttachmentRepository
	sessionRepo    *repository.SessionRepository
	maxSize        int64
}

func NewAttachmentService(
	attachmentRepo *repository.AttachmentRepository,
	sessionRepo *repository.SessionRepository,
	maxSize int64,
) *AttachmentService {
	if maxSize <= 0 {
		maxSize = DefaultMaxAttachmentSize
	}
	return &AttachmentService{
		attachmentRepo: attachmentRepo,
		sessionRepo:    sessionRepo,
		maxSize:        maxSize,
	}
}

type UploadAttachmentInput struct {
	SessionID uint
	Filename  string
	Data      []byte
}

// Upload validates, extracts text and stores one attachment.
func (s *AttachmentService) Upload(input UploadAttachmentInput) (*model.Attachment, error) {
	if input.SessionID == 0 {
		return nil, ErrValidation
	}
	filename := strings.TrimSpace(input.Filename)
	if filename == "" {
		return nil, fmt.Errorf("%w: missing filename", ErrInvalidAttachment)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedAttachmentExts[ext] {
		return nil, fmt.Errorf("%w: unsupported file type %s", ErrInvalidAttachment, ext)
	}
	if len(input.Data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidAttachment)
	}
	if int64(len(input.Data)) > s.maxSize {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidAttachment, s.maxSize)
	}

	session, err := s.sessionRepo.GetByID(input.SessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	text, err := textextract.Extract(filename, input.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAttachment, err)
	}

	att := &model.Attachment{
		ID:            uuid.NewString(),
		SessionID:     input.SessionID,
		Filename:      filename,
		ExtractedText: text,
		SizeBytes:     int64(len(input.Data)),
	}
	if err := s.attachmentRepo.Create(att); err != nil {
		return nil, err
	}
	return att, nil
}

func (s *AttachmentService) List(sessionID uint) ([]model.Attachment, error) {
	if sessionID == 0 {
		return nil, ErrValidation
	}
	return s.attachmentRepo.ListBySessionID(sessionID)
}

func (s *AttachmentService) Get(id string) (*model.Attachment, error) {
	att, err := s.attachmentRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if att == nil {
		return nil, fmt.Errorf("%w: %s", ErrAttachmentNotFound, id)
	}
	return att, nil
}

func (s *AttachmentService) Delete(id string) error {
	att, err := s.attachmentRepo.GetByID(id)
	if err != nil {
		return err
	}
	if att == nil {
		return fmt.Errorf("%w: %s", ErrAttachmentNotFound, id)
	}
	return s.attachmentRepo.Delete(id)
}
