package app

import (
	"bytes"
	"errors"
	"testing"

	"bioregtool/internal/model"
	"bioregtool/internal/repository"
)

type attachmentFixture struct {
	svc     *AttachmentService
	attRepo *repository.AttachmentRepository
	session *model.ChatSession
}

func newAttachmentFixture(t *testing.T, maxSize int64) *attachmentFixture {
	t.Helper()
	db := newAppTestDB(t)
	sessionRepo := repository.NewSessionRepository(db)
	attRepo := repository.NewAttachmentRepository(db)

	session := &model.ChatSession{Title: "upload test"}
	if err := sessionRepo.Create(session); err != nil {
		t.Fatalf("create session failed: %v", err)
	}

	return &attachmentFixture{
		svc:     NewAttachmentService(attRepo, sessionRepo, maxSize),
		attRepo: attRepo,
		session: session,
	}
}

func (f *attachmentFixture) storedCount(t *testing.T) int {
	t.Helper()
	atts, err := f.attRepo.ListBySessionID(f.session.ID)
	if err != nil {
		t.Fatalf("list attachments failed: %v", err)
	}
	return len(atts)
}

func TestUploadStoresTextAttachment(t *testing.T) {
	f := newAttachmentFixture(t, 0)

	att, err := f.svc.Upload(UploadAttachmentInput{
		SessionID: f.session.ID,
		Filename:  "clinical_protocol.txt",
		Data:      []byte("Phase I enrollment criteria.\n"),
	})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if att.ID == "" {
		t.Fatalf("attachment id not assigned")
	}
	if att.ExtractedText != "Phase I enrollment criteria." {
		t.Fatalf("extracted text = %q", att.ExtractedText)
	}
	if att.SizeBytes != int64(len("Phase I enrollment criteria.\n")) {
		t.Fatalf("size bytes = %d", att.SizeBytes)
	}
	if f.storedCount(t) != 1 {
		t.Fatalf("attachment not stored")
	}
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	const maxSize = 1 << 10
	f := newAttachmentFixture(t, maxSize)

	_, err := f.svc.Upload(UploadAttachmentInput{
		SessionID: f.session.ID,
		Filename:  "huge.txt",
		Data:      bytes.Repeat([]byte("a"), maxSize+1),
	})
	if !errors.Is(err, ErrInvalidAttachment) {
		t.Fatalf("expected ErrInvalidAttachment, got %v", err)
	}
	if f.storedCount(t) != 0 {
		t.Fatalf("oversized file must not be stored")
	}
}

func TestUploadDefaultLimitIsTenMegabytes(t *testing.T) {
	f := newAttachmentFixture(t, 0)

	_, err := f.svc.Upload(UploadAttachmentInput{
		SessionID: f.session.ID,
		Filename:  "dossier.txt",
		Data:      make([]byte, DefaultMaxAttachmentSize+1),
	})
	if !errors.Is(err, ErrInvalidAttachment) {
		t.Fatalf("expected ErrInvalidAttachment, got %v", err)
	}
	if f.storedCount(t) != 0 {
		t.Fatalf("oversized file must not be stored")
	}
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	f := newAttachmentFixture(t, 0)

	for _, name := range []string{"binary.exe", "archive.zip", "image.png", "noext"} {
		_, err := f.svc.Upload(UploadAttachmentInput{
			SessionID: f.session.ID,
			Filename:  name,
			Data:      []byte("payload"),
		})
		if !errors.Is(err, ErrInvalidAttachment) {
			t.Fatalf("%s: expected ErrInvalidAttachment, got %v", name, err)
		}
	}
	if f.storedCount(t) != 0 {
		t.Fatalf("rejected files must not be stored")
	}
}

func TestUploadRejectsEmptyFile(t *testing.T) {
	f := newAttachmentFixture(t, 0)

	_, err := f.svc.Upload(UploadAttachmentInput{
		SessionID: f.session.ID,
		Filename:  "empty.txt",
		Data:      nil,
	})
	if !errors.Is(err, ErrInvalidAttachment) {
		t.Fatalf("expected ErrInvalidAttachment, got %v", err)
	}
}

func TestUploadUnknownSession(t *testing.T) {
	f := newAttachmentFixture(t, 0)

	_, err := f.svc.Upload(UploadAttachmentInput{
		SessionID: f.session.ID + 100,
		Filename:  "file.txt",
		Data:      []byte("content"),
	})
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestDeleteAttachment(t *testing.T) {
	f := newAttachmentFixture(t, 0)

	att, err := f.svc.Upload(UploadAttachmentInput{
		SessionID: f.session.ID,
		Filename:  "notes.txt",
		Data:      []byte("some notes"),
	})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	if err := f.svc.Delete(att.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if f.storedCount(t) != 0 {
		t.Fatalf("attachment still present after delete")
	}
	if err := f.svc.Delete(att.ID); !errors.Is(err, ErrAttachmentNotFound) {
		t.Fatalf("second delete should report not found, got %v", err)
	}
}

func TestGetAttachmentNotFound(t *testing.T) {
	f := newAttachmentFixture(t, 0)

	if _, err := f.svc.Get("no-such-id"); !errors.Is(err, ErrAttachmentNotFound) {
		t.Fatalf("expected ErrAttachmentNotFound, got %v", err)
	}
}
