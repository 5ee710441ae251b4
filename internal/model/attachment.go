package model

import "time"

// Attachment is an uploaded document scoped to a chat session. Its extracted
// text can be pulled into chat context by id.
type Attachment struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"` // UUID
	SessionID     uint      `gorm:"not null;index" json:"session_id"`
	Filename      string    `gorm:"size:256;not null" json:"filename"`
	ExtractedText string    `gorm:"type:text" json:"-"`
	SizeBytes     int64     `gorm:"not null" json:"size_bytes"`
	CreatedAt     time.Time `json:"created_at"`
}
