package embedding

import (
	"context"
	"fmt"

	"quiz-byte/internal/adapter"
	"quiz-byte/internal/cache"
	"quiz-byte/internal/config"
	"quiz-byte/internal/domain"

	"go.uber.org/zap"
)

// Setup builds the configured embedding service, throttled when a rate is
// configured and wrapped in the Redis cache when Redis is reachable. The
// embedding service is nil when embeddings are disabled or the provider cannot
// be created; callers then run lexical-only. The cache is nil without Redis.
func Setup(ctx context.Context, cfg *config.Config, logger *zap.Logger) (domain.EmbeddingService, domain.Cache) {
	redisCache := connectCache(ctx, cfg.Redis, logger)

	embedder, err := New(ctx, cfg.Embedding, cfg.Elastic.Dims)
	if err != nil {
		logger.Error("Embedding service unavailable, continuing lexical-only", zap.Error(err))
		return nil, redisCache
	}
	if embedder == nil {
		logger.Info("Embeddings disabled")
		return nil, redisCache
	}
	logger.Info("Embedding service initialized",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
	)

	if rps := cfg.Embedding.RequestsPerSecond; rps > 0 {
		limited, err := NewRateLimitedEmbeddingService(embedder, rps, cfg.Embedding.Burst)
		if err != nil {
			logger.Warn("Embedding rate limit disabled", zap.Error(err))
		} else {
			embedder = limited
			logger.Info("Embedding rate limit enabled", zap.Float64("rps", rps), zap.Int("burst", cfg.Embedding.Burst))
		}
	}

	if redisCache == nil {
		return embedder, nil
	}
	namespace := fmt.Sprintf("%s/%s", cfg.Embedding.Provider, cfg.Embedding.Model)
	cached, err := NewCachedEmbeddingService(embedder, redisCache, namespace, cfg.Embedding.CacheTTL, logger.Named("cache"))
	if err != nil {
		logger.Warn("Embedding cache disabled", zap.Error(err))
		return embedder, redisCache
	}
	logger.Info("Embedding cache enabled", zap.String("redis", cfg.Redis.Address))
	return cached, redisCache
}

func connectCache(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) domain.Cache {
	if cfg.Address == "" {
		return nil
	}
	redisClient, err := cache.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Warn("Redis unavailable, embedding cache disabled", zap.Error(err))
		return nil
	}
	return adapter.NewRedisCacheAdapter(redisClient)
}
