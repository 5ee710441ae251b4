package model

import (
	"encoding/json"
	"time"
)

// GuidelineDocument is a regulatory text fragment eligible for retrieval.
type GuidelineDocument struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"size:256;not null" json:"title"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	Reference    string    `gorm:"size:128" json:"reference"`
	Jurisdiction string    `gorm:"size:64;index" json:"jurisdiction"`
	Category     string    `gorm:"size:128;index" json:"category"`
	CreatedAt    time.Time `json:"created_at"`
}

// GuidelineChunk stores a text chunk of a guideline document and its embedding.
// Embedding is stored as a JSON array of float32 for portability.
type GuidelineChunk struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	DocumentID uint      `gorm:"not null;index" json:"document_id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Embedding  string    `gorm:"type:text" json:"-"` // JSON array of float32
	CreatedAt  time.Time `json:"created_at"`
}

// EmbeddingVector returns the parsed embedding slice; empty on parse error.
func (c *GuidelineChunk) EmbeddingVector() []float32 {
	if c.Embedding == "" {
		return nil
	}
	var v []float32
	_ = json.Unmarshal([]byte(c.Embedding), &v)
	return v
}

// SetEmbedding stores the embedding as JSON.
func (c *GuidelineChunk) SetEmbedding(vec []float32) {
	if len(vec) == 0 {
		c.Embedding = "[]"
		return
	}
	b, _ := json.Marshal(vec)
	c.Embedding = string(b)
}
