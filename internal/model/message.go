package model

import (
	"encoding/json"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// MessageSource identifies a guideline document an assistant reply drew from.
type MessageSource struct {
	DocumentID uint    `json:"document_id"`
	Title      string  `json:"title"`
	Reference  string  `json:"reference"`
	Score      float32 `json:"score"`
}

// ChatMessage is one entry of a session's append-only conversation log.
// Messages are never edited or reordered after creation.
type ChatMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID uint      `gorm:"not null;index" json:"session_id"`
	Role      string    `gorm:"size:16;not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Sources   string    `gorm:"type:text" json:"-"` // JSON array of MessageSource
	CreatedAt time.Time `json:"created_at"`
}

// SourceList returns the parsed sources; empty on parse error.
func (m *ChatMessage) SourceList() []MessageSource {
	if m.Sources == "" {
		return nil
	}
	var out []MessageSource
	_ = json.Unmarshal([]byte(m.Sources), &out)
	return out
}

// SetSources stores the sources as JSON.
func (m *ChatMessage) SetSources(sources []MessageSource) {
	if len(sources) == 0 {
		m.Sources = ""
		return
	}
	b, _ := json.Marshal(sources)
	m.Sources = string(b)
}
