package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bioregtool/internal/ai"
	"bioregtool/internal/model"
	"bioregtool/internal/prompt"
	"bioregtool/internal/repository"
	"bioregtool/internal/retrieval"
)

// LLMClient is the slice of the AI client the chat responder needs. Exactly
// one call is made per turn.
type LLMClient interface {
	Complete(ctx context.Context, cfg ai.ChatConfig, messages []ai.ChatMessage) (string, error)
	StreamComplete(ctx context.Context, cfg ai.ChatConfig, messages []ai.ChatMessage, onChunk func(string) error) (string, error)
}

// HistoryCache fronts the conversation log for reads. A dirty marker guards
// the window between an in-flight write and the next repopulation.
type HistoryCache interface {
	GetHistory(ctx context.Context, sessionID uint) ([]model.ChatMessage, bool, error)
	SetHistory(ctx context.Context, sessionID uint, messages []model.ChatMessage) error
	DeleteHistory(ctx context.Context, sessionID uint) error
	MarkDirty(ctx context.Context, sessionID uint) error
	IsDirty(ctx context.Context, sessionID uint) (bool, error)
}

// ChatService produces assistant replies grounded in accumulated session
// context. Each invocation is stateless given its inputs; all memory lives in
// the session's conversation log.
type ChatService struct {
	sessionRepo    *repository.SessionRepository
	messageRepo    *repository.MessageRepository
	attachmentRepo *repository.AttachmentRepository
	llm            LLMClient
	chatCfg        ai.ChatConfig
	historyCache   HistoryCache
	matchCache     MatchCache
	systemPrompt   string
	historyWindow  int
}

func NewChatService(
	sessionRepo *repository.SessionRepository,
	messageRepo *repository.MessageRepository,
	attachmentRepo *repository.AttachmentRepository,
	llm LLMClient,
	chatCfg ai.ChatConfig,
	historyCache HistoryCache,
	matchCache MatchCache,
	systemPrompt string,
	historyWindow int,
) *ChatService {
	if historyWindow <= 0 {
		historyWindow = 20
	}
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = prompt.DefaultSystem
	}
	return &ChatService{
		sessionRepo:    sessionRepo,
		messageRepo:    messageRepo,
		attachmentRepo: attachmentRepo,
		llm:            llm,
		chatCfg:        chatCfg,
		historyCache:   historyCache,
		matchCache:     matchCache,
		systemPrompt:   systemPrompt,
		historyWindow:  historyWindow,
	}
}

type SendMessageInput struct {
	SessionID     uint // 0 = one-off turn with no persisted history
	Message       string
	Questionnaire *model.QuestionnaireAnswers // overrides the session's stored answers
	AttachmentIDs []string
}

type SendMessageResult struct {
	Response             string      `json:"response"`
	Sources              []Guideline `json:"sources,omitempty"`
	ProcessedAttachments []string    `json:"processed_attachments,omitempty"`
}

// SendMessage runs one chat turn. On any failure nothing is appended to the
// conversation log; a failed turn leaves history exactly as it was.
func (s *ChatService) SendMessage(ctx context.Context, input SendMessageInput) (*SendMessageResult, error) {
	turn, err := s.prepareTurn(ctx, input)
	if err != nil {
		return nil, err
	}

	answer, err := s.llm.Complete(ctx, s.chatCfg, turn.messages)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	return s.finishTurn(ctx, input, turn, answer)
}

// StreamMessage is the SSE variant: same single completion call, chunks
// forwarded through onChunk as they arrive.
func (s *ChatService) StreamMessage(
	ctx context.Context,
	input SendMessageInput,
	onChunk func(string) error,
) (*SendMessageResult, error) {
	turn, err := s.prepareTurn(ctx, input)
	if err != nil {
		return nil, err
	}

	answer, err := s.llm.StreamComplete(ctx, s.chatCfg, turn.messages, onChunk)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	return s.finishTurn(ctx, input, turn, answer)
}

type preparedTurn struct {
	content      string
	messages     []ai.ChatMessage
	sources      []Guideline
	sourceRefs   []model.MessageSource
	attachmentID []string
}

// prepareTurn validates the input and assembles the prompt. No outbound call
// and no write happens here.
func (s *ChatService) prepareTurn(ctx context.Context, input SendMessageInput) (*preparedTurn, error) {
	content := strings.TrimSpace(input.Message)
	if content == "" {
		return nil, ErrEmptyMessage
	}

	var (
		session *model.ChatSession
		history []model.ChatMessage
	)
	if input.SessionID != 0 {
		var err error
		session, err = s.sessionRepo.GetByID(input.SessionID)
		if err != nil {
			return nil, err
		}
		if session == nil {
			return nil, ErrSessionNotFound
		}
		history, err = s.messageRepo.ListRecentBySessionID(session.ID, s.historyWindow)
		if err != nil {
			return nil, err
		}
	}

	questionnaire := input.Questionnaire
	if questionnaire == nil && session != nil {
		if q, ok := session.QuestionnaireAnswers(); ok {
			questionnaire = &q
		}
	}

	var matches []retrieval.Match
	if session != nil && s.matchCache != nil {
		cached, hit, err := s.matchCache.GetMatches(ctx, session.ID)
		if err != nil {
			return nil, err
		}
		if hit {
			matches = cached
		}
	}

	attachments, err := s.resolveAttachments(input.SessionID, input.AttachmentIDs)
	if err != nil {
		return nil, err
	}

	b := prompt.NewBuilder().
		System(s.systemPrompt).
		Guidelines(matches).
		Attachments(attachments).
		History(history, s.historyWindow).
		UserMessage(content)
	if questionnaire != nil {
		b.Questionnaire(*questionnaire)
	}

	sources := guidelinesFromMatches(matches)
	sourceRefs := make([]model.MessageSource, len(matches))
	for i, m := range matches {
		sourceRefs[i] = model.MessageSource{
			DocumentID: m.Document.ID,
			Title:      m.Document.Title,
			Reference:  m.Document.Reference,
			Score:      m.Score,
		}
	}
	attachmentIDs := make([]string, len(attachments))
	for i, a := range attachments {
		attachmentIDs[i] = a.ID
	}

	return &preparedTurn{
		content:      content,
		messages:     b.Messages(),
		sources:      sources,
		sourceRefs:   sourceRefs,
		attachmentID: attachmentIDs,
	}, nil
}

// finishTurn appends the user/assistant pair to the log. Only reached after a
// successful completion call.
func (s *ChatService) finishTurn(
	ctx context.Context,
	input SendMessageInput,
	turn *preparedTurn,
	answer string,
) (*SendMessageResult, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		answer = "The model returned an empty response."
	}

	if input.SessionID != 0 {
		now := time.Now()
		userMsg := &model.ChatMessage{
			SessionID: input.SessionID,
			Role:      model.RoleUser,
			Content:   turn.content,
			CreatedAt: now,
		}
		assistantMsg := &model.ChatMessage{
			SessionID: input.SessionID,
			Role:      model.RoleAssistant,
			Content:   answer,
			CreatedAt: now,
		}
		assistantMsg.SetSources(turn.sourceRefs)

		if s.historyCache != nil {
			_ = s.historyCache.MarkDirty(ctx, input.SessionID)
			_ = s.historyCache.DeleteHistory(ctx, input.SessionID)
		}
		if err := s.messageRepo.Append(userMsg, assistantMsg); err != nil {
			return nil, err
		}
	}

	return &SendMessageResult{
		Response:             answer,
		Sources:              turn.sources,
		ProcessedAttachments: turn.attachmentID,
	}, nil
}

func (s *ChatService) resolveAttachments(sessionID uint, ids []string) ([]model.Attachment, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	attachments := make([]model.Attachment, 0, len(ids))
	for _, id := range ids {
		att, err := s.attachmentRepo.GetByID(id)
		if err != nil {
			return nil, err
		}
		if att == nil || (sessionID != 0 && att.SessionID != sessionID) {
			return nil, fmt.Errorf("%w: %s", ErrAttachmentNotFound, id)
		}
		attachments = append(attachments, *att)
	}
	return attachments, nil
}

type CreateSessionInput struct {
	Title string
}

func (s *ChatService) CreateSession(input CreateSessionInput) (*model.ChatSession, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = "New Chat"
	}
	session := &model.ChatSession{Title: title}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *ChatService) ListSessions() ([]model.ChatSession, error) {
	return s.sessionRepo.List()
}

// DeleteSession removes a session with its log, attachments and cache
// entries. This is the only path that deletes conversation data.
func (s *ChatService) DeleteSession(ctx context.Context, sessionID uint) error {
	if sessionID == 0 {
		return ErrValidation
	}
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrSessionNotFound
	}
	if err := s.messageRepo.DeleteBySessionID(sessionID); err != nil {
		return err
	}
	if err := s.attachmentRepo.DeleteBySessionID(sessionID); err != nil {
		return err
	}
	if s.historyCache != nil {
		_ = s.historyCache.DeleteHistory(ctx, sessionID)
	}
	if s.matchCache != nil {
		_ = s.matchCache.DeleteMatches(ctx, sessionID)
	}
	return s.sessionRepo.Delete(sessionID)
}

// GetHistory returns the session's log, reading through the cache when it is
// present and not marked dirty.
func (s *ChatService) GetHistory(ctx context.Context, sessionID uint, limit int) ([]model.ChatMessage, error) {
	if sessionID == 0 {
		return nil, ErrValidation
	}
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if s.historyCache != nil {
		dirty, err := s.historyCache.IsDirty(ctx, sessionID)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.historyCache.GetHistory(ctx, sessionID); cacheErr == nil && hit {
				return trimMessages(cached, limit), nil
			}
		}
	}

	messages, err := s.messageRepo.ListBySessionID(sessionID, limit)
	if err != nil {
		return nil, err
	}
	if s.historyCache != nil {
		if dirty, dirtyErr := s.historyCache.IsDirty(ctx, sessionID); dirtyErr == nil && !dirty {
			_ = s.historyCache.SetHistory(ctx, sessionID, messages)
		}
	}
	return messages, nil
}

func trimMessages(messages []model.ChatMessage, limit int) []model.ChatMessage {
	if limit <= 0 || limit >= len(messages) {
		return messages
	}
	return messages[len(messages)-limit:]
}
