package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"bioregtool/internal/retrieval"
)

// MatchCache holds the guidelines matched for a session's questionnaire, so
// the matcher runs once per submit and chat turns reuse the result.
type MatchCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewMatchCache(client *redisv9.Client, ttl time.Duration) *MatchCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &MatchCache{client: client, ttl: ttl}
}

func (c *MatchCache) GetMatches(ctx context.Context, sessionID uint) ([]retrieval.Match, bool, error) {
	raw, err := c.client.Get(ctx, c.key(sessionID)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get matches failed: %w", err)
	}

	var matches []retrieval.Match
	if err := json.Unmarshal([]byte(raw), &matches); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached matches failed: %w", err)
	}
	return matches, true, nil
}

func (c *MatchCache) SetMatches(ctx context.Context, sessionID uint, matches []retrieval.Match) error {
	payload, err := json.Marshal(matches)
	if err != nil {
		return fmt.Errorf("marshal match cache failed: %w", err)
	}
	if err := c.client.Set(ctx, c.key(sessionID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set matches failed: %w", err)
	}
	return nil
}

func (c *MatchCache) DeleteMatches(ctx context.Context, sessionID uint) error {
	if err := c.client.Del(ctx, c.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete matches failed: %w", err)
	}
	return nil
}

func (c *MatchCache) key(sessionID uint) string {
	return fmt.Sprintf("chat:matches:%d", sessionID)
}
