// Package prompt assembles chat context as an ordered set of named sections.
// Given identical inputs the output is identical byte for byte; nothing here
// depends on clocks, maps, or randomness.
package prompt

import (
	"fmt"
	"strings"

	"bioregtool/internal/ai"
	"bioregtool/internal/model"
	"bioregtool/internal/retrieval"
)

// DefaultSystem is the assistant framing used when no override is configured.
const DefaultSystem = `You are an AI assistant specializing in biotech regulatory compliance.
Your role is to help users understand and navigate regulatory requirements for biotech products.
When providing information:
1. Be precise and accurate
2. Cite specific regulations when possible
3. Highlight any important deadlines or requirements
4. Acknowledge limitations and suggest consulting official sources when unsure
Base your responses on the provided context.`

// Builder collects the context sections for one chat turn. Sections are
// always rendered in the same fixed order regardless of the order they are
// set in: system, questionnaire, guidelines, attachments, history, message.
type Builder struct {
	system        string
	questionnaire *model.QuestionnaireAnswers
	guidelines    []retrieval.Match
	attachments   []model.Attachment
	history       []model.ChatMessage
	historyWindow int
	userMessage   string
}

func NewBuilder() *Builder {
	return &Builder{system: DefaultSystem, historyWindow: 20}
}

func (b *Builder) System(s string) *Builder {
	if strings.TrimSpace(s) != "" {
		b.system = s
	}
	return b
}

func (b *Builder) Questionnaire(q model.QuestionnaireAnswers) *Builder {
	b.questionnaire = &q
	return b
}

func (b *Builder) Guidelines(matches []retrieval.Match) *Builder {
	b.guidelines = matches
	return b
}

func (b *Builder) Attachments(atts []model.Attachment) *Builder {
	b.attachments = atts
	return b
}

// History sets the conversation log and the window size. Only the newest
// window entries are kept, oldest dropped first, original order preserved.
func (b *Builder) History(messages []model.ChatMessage, window int) *Builder {
	b.history = messages
	if window > 0 {
		b.historyWindow = window
	}
	return b
}

func (b *Builder) UserMessage(msg string) *Builder {
	b.userMessage = msg
	return b
}

// Messages renders the sections into the completion call payload: one system
// message carrying framing plus document context, the windowed history, then
// the new user message.
func (b *Builder) Messages() []ai.ChatMessage {
	history := WindowHistory(b.history, b.historyWindow)

	messages := make([]ai.ChatMessage, 0, len(history)+2)
	messages = append(messages, ai.ChatMessage{
		Role:    model.RoleSystem,
		Content: b.systemContent(),
	})
	for _, m := range history {
		role := m.Role
		if role == "" {
			role = model.RoleUser
		}
		messages = append(messages, ai.ChatMessage{Role: role, Content: m.Content})
	}
	messages = append(messages, ai.ChatMessage{
		Role:    model.RoleUser,
		Content: b.userMessage,
	})
	return messages
}

func (b *Builder) systemContent() string {
	var sb strings.Builder
	sb.WriteString(b.system)

	if b.questionnaire != nil {
		sb.WriteString("\n\nQuestionnaire Context:\n")
		sb.WriteString(b.questionnaire.Summary())
	}

	if len(b.guidelines) > 0 {
		sb.WriteString("\n\nRelevant Regulatory Guidelines:\n")
		for _, g := range b.guidelines {
			sb.WriteString(fmt.Sprintf("\n--- %s (%s) ---\n", g.Document.Title, g.Document.Reference))
			sb.WriteString(g.Excerpt)
			sb.WriteString("\n")
		}
	}

	if len(b.attachments) > 0 {
		sb.WriteString("\n\nUser-Provided Documents:\n")
		for _, a := range b.attachments {
			sb.WriteString(fmt.Sprintf("\n--- %s ---\n", a.Filename))
			sb.WriteString(a.ExtractedText)
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// WindowHistory keeps the newest window messages in original order (FIFO
// truncation; oldest entries dropped first).
func WindowHistory(messages []model.ChatMessage, window int) []model.ChatMessage {
	if window <= 0 || len(messages) <= window {
		return messages
	}
	return messages[len(messages)-window:]
}
