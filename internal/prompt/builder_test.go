package prompt

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"bioregtool/internal/ai"
	"bioregtool/internal/model"
	"bioregtool/internal/retrieval"
)

func sampleAnswers() model.QuestionnaireAnswers {
	return model.QuestionnaireAnswers{
		IntendedPurpose:       "cardiac monitoring",
		LifeThreatening:       true,
		UserType:              "healthcare professionals",
		RequiresSterilization: false,
		BodyContactDuration:   "long-term",
	}
}

func buildMessages() []ai.ChatMessage {
	return NewBuilder().
		Questionnaire(sampleAnswers()).
		Guidelines([]retrieval.Match{
			{
				Document: model.GuidelineDocument{Title: "Classification Rules", Reference: "MDR Annex VIII"},
				Excerpt:  "Rule 10: active devices intended for diagnosis.",
				Score:    0.91,
			},
		}).
		Attachments([]model.Attachment{
			{Filename: "design_spec.pdf", ExtractedText: "The device measures ECG signals."},
		}).
		History([]model.ChatMessage{
			{Role: model.RoleUser, Content: "What class is my device?"},
			{Role: model.RoleAssistant, Content: "Likely class IIa under rule 10."},
		}, 20).
		UserMessage("What documentation do I need?").
		Messages()
}

func TestMessagesDeterministic(t *testing.T) {
	first := buildMessages()
	second := buildMessages()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical inputs produced different messages:\n%v\n%v", first, second)
	}
}

func TestMessagesShape(t *testing.T) {
	messages := buildMessages()

	if len(messages) != 4 {
		t.Fatalf("expected 4 messages (system, 2 history, user), got %d", len(messages))
	}
	if messages[0].Role != model.RoleSystem {
		t.Fatalf("first message role = %q, want system", messages[0].Role)
	}
	if messages[1].Content != "What class is my device?" || messages[1].Role != model.RoleUser {
		t.Fatalf("history order not preserved: %+v", messages[1])
	}
	if messages[2].Role != model.RoleAssistant {
		t.Fatalf("history order not preserved: %+v", messages[2])
	}
	last := messages[len(messages)-1]
	if last.Role != model.RoleUser || last.Content != "What documentation do I need?" {
		t.Fatalf("last message should be the new user message, got %+v", last)
	}
}

func TestSystemSectionOrder(t *testing.T) {
	system := buildMessages()[0].Content

	idxSystem := strings.Index(system, "biotech regulatory compliance")
	idxQuestionnaire := strings.Index(system, "Questionnaire Context:")
	idxGuidelines := strings.Index(system, "Relevant Regulatory Guidelines:")
	idxAttachments := strings.Index(system, "User-Provided Documents:")

	for name, idx := range map[string]int{
		"system framing": idxSystem,
		"questionnaire":  idxQuestionnaire,
		"guidelines":     idxGuidelines,
		"attachments":    idxAttachments,
	} {
		if idx < 0 {
			t.Fatalf("section %s missing from system content", name)
		}
	}
	if !(idxSystem < idxQuestionnaire && idxQuestionnaire < idxGuidelines && idxGuidelines < idxAttachments) {
		t.Fatalf("sections out of order: system=%d questionnaire=%d guidelines=%d attachments=%d",
			idxSystem, idxQuestionnaire, idxGuidelines, idxAttachments)
	}
	if !strings.Contains(system, "Rule 10: active devices intended for diagnosis.") {
		t.Fatalf("guideline excerpt missing from system content")
	}
	if !strings.Contains(system, "The device measures ECG signals.") {
		t.Fatalf("attachment text missing from system content")
	}
}

func TestEmptySectionsOmitted(t *testing.T) {
	system := NewBuilder().UserMessage("hello").Messages()[0].Content

	if strings.Contains(system, "Questionnaire Context:") ||
		strings.Contains(system, "Relevant Regulatory Guidelines:") ||
		strings.Contains(system, "User-Provided Documents:") {
		t.Fatalf("empty sections should be omitted, got:\n%s", system)
	}
}

func TestWindowHistoryDropsOldestFirst(t *testing.T) {
	const window = 5
	messages := make([]model.ChatMessage, window+3)
	for i := range messages {
		messages[i] = model.ChatMessage{Role: model.RoleUser, Content: fmt.Sprintf("msg-%d", i)}
	}

	got := WindowHistory(messages, window)
	if len(got) != window {
		t.Fatalf("window size = %d, want %d", len(got), window)
	}
	if got[0].Content != "msg-3" {
		t.Fatalf("oldest kept message = %q, want msg-3", got[0].Content)
	}
	if got[len(got)-1].Content != fmt.Sprintf("msg-%d", window+2) {
		t.Fatalf("newest message dropped: %q", got[len(got)-1].Content)
	}
}

func TestWindowHistoryUnderLimit(t *testing.T) {
	messages := []model.ChatMessage{
		{Content: "a"},
		{Content: "b"},
	}
	got := WindowHistory(messages, 10)
	if len(got) != 2 {
		t.Fatalf("short history should be untouched, got %d messages", len(got))
	}
}
