package app

import (
	"context"
	"errors"
	"fmt"

	"bioregtool/internal/model"
	"bioregtool/internal/repository"
	"bioregtool/internal/retrieval"
)

const defaultTopK = 5

// Guideline is the matcher's view of a regulatory document: the document plus
// the relevance score the retrieval call produced for this questionnaire.
type Guideline struct {
	ID             uint    `json:"id"`
	Title          string  `json:"title"`
	Content        string  `json:"content"`
	Reference      string  `json:"reference"`
	RelevanceScore float32 `json:"relevance_score"`
}

// MatchCache stores matched guidelines per session so the matcher runs once
// per questionnaire submit and chat turns reuse the result.
type MatchCache interface {
	GetMatches(ctx context.Context, sessionID uint) ([]retrieval.Match, bool, error)
	SetMatches(ctx context.Context, sessionID uint, matches []retrieval.Match) error
	DeleteMatches(ctx context.Context, sessionID uint) error
}

// MatcherService maps questionnaire answers to a ranked set of guideline
// documents. It is a pure function of its input and the corpus state; the
// only side effect is the optional per-session result cache.
type MatcherService struct {
	searcher    retrieval.Searcher
	sessionRepo *repository.SessionRepository
	matchCache  MatchCache
	topK        int
}

func NewMatcherService(
	searcher retrieval.Searcher,
	sessionRepo *repository.SessionRepository,
	matchCache MatchCache,
	topK int,
) *MatcherService {
	if topK <= 0 {
		topK = defaultTopK
	}
	return &MatcherService{
		searcher:    searcher,
		sessionRepo: sessionRepo,
		matchCache:  matchCache,
		topK:        topK,
	}
}

type MatchInput struct {
	SessionID uint // 0 = stateless, no caching
	Answers   model.QuestionnaireAnswers
}

type MatchResult struct {
	Guidelines []Guideline       `json:"guidelines"`
	Matches    []retrieval.Match `json:"-"`
}

// Match validates the answers, runs one similarity search and returns the
// guidelines ordered by non-increasing relevance score. Single attempt; a
// failed search is surfaced, not retried.
func (s *MatcherService) Match(ctx context.Context, input MatchInput) (*MatchResult, error) {
	if !input.Answers.Complete() {
		return nil, fmt.Errorf("%w: all questionnaire fields are required", ErrValidation)
	}

	var session *model.ChatSession
	if input.SessionID != 0 {
		var err error
		session, err = s.sessionRepo.GetByID(input.SessionID)
		if err != nil {
			return nil, err
		}
		if session == nil {
			return nil, ErrSessionNotFound
		}
	}

	matches, err := s.searcher.Search(ctx, input.Answers.SearchQuery(), s.topK)
	if err != nil {
		switch {
		case errors.Is(err, retrieval.ErrEmptyCorpus):
			return nil, ErrNoCorpus
		case errors.Is(err, retrieval.ErrBackendUnavailable):
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		default:
			return nil, err
		}
	}

	if session != nil {
		session.SetQuestionnaireAnswers(input.Answers)
		if err := s.sessionRepo.Update(session); err != nil {
			return nil, err
		}
		if s.matchCache != nil {
			if err := s.matchCache.SetMatches(ctx, session.ID, matches); err != nil {
				return nil, err
			}
		}
	}

	return &MatchResult{
		Guidelines: guidelinesFromMatches(matches),
		Matches:    matches,
	}, nil
}

func guidelinesFromMatches(matches []retrieval.Match) []Guideline {
	out := make([]Guideline, len(matches))
	for i, m := range matches {
		out[i] = Guideline{
			ID:             m.Document.ID,
			Title:          m.Document.Title,
			Content:        m.Excerpt,
			Reference:      m.Document.Reference,
			RelevanceScore: m.Score,
		}
	}
	return out
}
