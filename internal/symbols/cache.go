package symbols

import (
	"context"
	"encoding/json"
	"time"

	"memory_game/internal/domain"
	"memory_game/internal/logger"

	redis "github.com/redis/go-redis/v9"
)

const cacheKey = "memory:letters"

// CachedSource keeps the vocabulary in Redis for TTL. Redis errors are logged and the
// wrapped source is used instead; only the wrapped source can fail Setup.
type CachedSource struct {
	Next   Source
	Client *redis.Client
	TTL    time.Duration
}

func (s *CachedSource) Letters(ctx context.Context) ([]string, error) {
	if s.Client == nil {
		return s.Next.Letters(ctx)
	}

	if letters, ok := s.cached(ctx); ok {
		return letters, nil
	}

	letters, err := s.Next.Letters(ctx)
	if err != nil {
		return nil, err
	}

	b, err := json.Marshal(domain.Letters{Letters: letters})
	if err == nil {
		err = s.Client.Set(ctx, cacheKey, b, s.TTL).Err()
	}
	if err != nil {
		logger.Warn("letters cache write failed", "error", err)
	}
	return letters, nil
}

func (s *CachedSource) cached(ctx context.Context) ([]string, bool) {
	b, err := s.Client.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("letters cache read failed", "error", err)
		}
		return nil, false
	}

	var doc domain.Letters
	if err := json.Unmarshal(b, &doc); err != nil || doc.Validate() != nil {
		logger.Warn("letters cache entry invalid, refetching")
		return nil, false
	}
	return doc.Letters, true
}

// Invalidate drops the cached vocabulary.
func (s *CachedSource) Invalidate(ctx context.Context) error {
	if s.Client == nil {
		return nil
	}
	return s.Client.Del(ctx, cacheKey).Err()
}
