package model

import "strings"

// QuestionnaireAnswers is the structured product profile collected by the
// questionnaire. It is passed by value and never mutated after creation.
type QuestionnaireAnswers struct {
	IntendedPurpose       string `json:"intended_purpose"`
	LifeThreatening       bool   `json:"life_threatening"`
	UserType              string `json:"user_type"`
	RequiresSterilization bool   `json:"requires_sterilization"`
	BodyContactDuration   string `json:"body_contact_duration"`
}

// Complete reports whether every free-text field is non-empty after trimming.
func (q QuestionnaireAnswers) Complete() bool {
	return strings.TrimSpace(q.IntendedPurpose) != "" &&
		strings.TrimSpace(q.UserType) != "" &&
		strings.TrimSpace(q.BodyContactDuration) != ""
}

// SearchQuery turns the answers into a semantic search query. The exact
// phrasing is not load-bearing; it just needs to surface the regulatory
// concepts the answers imply.
func (q QuestionnaireAnswers) SearchQuery() string {
	var b strings.Builder
	b.WriteString("medical device regulations for ")
	b.WriteString(strings.TrimSpace(q.IntendedPurpose))
	b.WriteString(" devices")
	if q.LifeThreatening {
		b.WriteString(" with life-threatening use")
	}
	b.WriteString(" intended for ")
	b.WriteString(strings.TrimSpace(q.UserType))
	if q.RequiresSterilization {
		b.WriteString(" requiring sterilization")
	}
	b.WriteString(" with ")
	b.WriteString(strings.TrimSpace(q.BodyContactDuration))
	b.WriteString(" body contact duration")
	return b.String()
}

// Summary renders the answers as readable lines for prompt context.
func (q QuestionnaireAnswers) Summary() string {
	lines := []string{
		"intended_purpose: " + q.IntendedPurpose,
		"life_threatening: " + boolWord(q.LifeThreatening),
		"user_type: " + q.UserType,
		"requires_sterilization: " + boolWord(q.RequiresSterilization),
		"body_contact_duration: " + q.BodyContactDuration,
	}
	return strings.Join(lines, "\n")
}

func boolWord(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
