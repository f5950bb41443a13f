package embedding

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"quiz-byte/internal/cache"
	"quiz-byte/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const defaultEmbeddingTTL = 168 * time.Hour

// CachedEmbeddingService memoizes another EmbeddingService in a domain.Cache.
// Concurrent misses for the same text share one upstream call. Cache
// failures are logged and never fail the request.
type CachedEmbeddingService struct {
	next      domain.EmbeddingService
	cache     domain.Cache
	namespace string
	ttl       time.Duration
	logger    *zap.Logger
	sfGroup   singleflight.Group
}

// NewCachedEmbeddingService wraps next. namespace separates providers and
// models so their vectors never mix.
func NewCachedEmbeddingService(next domain.EmbeddingService, c domain.Cache, namespace string, ttl time.Duration, logger *zap.Logger) (*CachedEmbeddingService, error) {
	if next == nil {
		return nil, fmt.Errorf("embedding service cannot be nil")
	}
	if c == nil {
		return nil, fmt.Errorf("cache instance cannot be nil for CachedEmbeddingService")
	}
	if ttl <= 0 {
		ttl = defaultEmbeddingTTL
	}
	return &CachedEmbeddingService{
		next:      next,
		cache:     c,
		namespace: namespace,
		ttl:       ttl,
		logger:    logger,
	}, nil
}

func hashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Generate returns the cached vector for text or computes and stores it.
func (s *CachedEmbeddingService) Generate(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("input text cannot be empty for embedding")
	}

	cacheKey := cache.EmbeddingKey(s.namespace, hashString(text))

	cached, err := s.cache.Get(ctx, cacheKey)
	switch {
	case err == nil:
		var vector []float32
		if errDecode := gob.NewDecoder(bytes.NewReader([]byte(cached))).Decode(&vector); errDecode == nil && len(vector) > 0 {
			s.logger.Debug("Embedding cache hit", zap.String("cache_key", cacheKey))
			return vector, nil
		} else if errDecode != nil {
			s.logger.Warn("Failed to decode cached embedding", zap.String("cache_key", cacheKey), zap.Error(errDecode))
		}
	case errors.Is(err, domain.ErrCacheMiss):
		s.logger.Debug("Embedding cache miss", zap.String("cache_key", cacheKey))
	default:
		s.logger.Warn("Embedding cache read failed", zap.String("cache_key", cacheKey), zap.Error(err))
	}

	res, err, _ := s.sfGroup.Do(cacheKey, func() (interface{}, error) {
		vector, genErr := s.next.Generate(ctx, text)
		if genErr != nil {
			return nil, genErr
		}

		var buffer bytes.Buffer
		if errEncode := gob.NewEncoder(&buffer).Encode(vector); errEncode != nil {
			s.logger.Warn("Failed to encode embedding for caching", zap.Error(errEncode))
			return vector, nil
		}
		if errSet := s.cache.Set(ctx, cacheKey, buffer.String(), s.ttl); errSet != nil {
			s.logger.Warn("Failed to cache embedding", zap.String("cache_key", cacheKey), zap.Error(errSet))
		}
		return vector, nil
	})
	if err != nil {
		return nil, err
	}

	if vector, ok := res.([]float32); ok {
		return vector, nil
	}
	return nil, fmt.Errorf("unexpected type from singleflight.Do for embedding: %T", res)
}

var _ domain.EmbeddingService = (*CachedEmbeddingService)(nil)
