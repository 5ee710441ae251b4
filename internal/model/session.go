package model

import (
	"encoding/json"
	"time"
)

// ChatSession scopes a questionnaire, its matched guidelines, attachments and
// conversation history.
type ChatSession struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Title         string    `gorm:"size:128;not null" json:"title"`
	Questionnaire string    `gorm:"type:text" json:"-"` // JSON QuestionnaireAnswers, empty until submitted
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// QuestionnaireAnswers returns the stored answers, if any.
func (s *ChatSession) QuestionnaireAnswers() (QuestionnaireAnswers, bool) {
	if s.Questionnaire == "" {
		return QuestionnaireAnswers{}, false
	}
	var q QuestionnaireAnswers
	if err := json.Unmarshal([]byte(s.Questionnaire), &q); err != nil {
		return QuestionnaireAnswers{}, false
	}
	return q, true
}

// SetQuestionnaireAnswers stores the answers as JSON.
func (s *ChatSession) SetQuestionnaireAnswers(q QuestionnaireAnswers) {
	b, _ := json.Marshal(q)
	s.Questionnaire = string(b)
}
