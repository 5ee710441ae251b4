package app

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"bioregtool/internal/model"
)

func newAppTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&model.GuidelineDocument{},
		&model.GuidelineChunk{},
		&model.ChatSession{},
		&model.ChatMessage{},
		&model.Attachment{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}
