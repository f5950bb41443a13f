package embedding

import (
	"context"
	"fmt"

	"quiz-byte/internal/domain"

	"golang.org/x/time/rate"
)

const defaultBurst = 5

// RateLimitedEmbeddingService bounds the request rate to the provider with a
// token bucket. Ingestion embeds chunks concurrently and would otherwise
// trip provider quotas on large documents.
type RateLimitedEmbeddingService struct {
	next    domain.EmbeddingService
	limiter *rate.Limiter
}

// NewRateLimitedEmbeddingService wraps next. requestsPerSecond must be
// positive; burst <= 0 uses a burst of 5.
func NewRateLimitedEmbeddingService(next domain.EmbeddingService, requestsPerSecond float64, burst int) (*RateLimitedEmbeddingService, error) {
	if next == nil {
		return nil, fmt.Errorf("embedding service cannot be nil")
	}
	if requestsPerSecond <= 0 {
		return nil, fmt.Errorf("requests per second must be positive, got %v", requestsPerSecond)
	}
	if burst <= 0 {
		burst = defaultBurst
	}
	return &RateLimitedEmbeddingService{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}, nil
}

// Generate waits for a token, then delegates. A cancelled wait returns the
// context error without calling the provider.
func (s *RateLimitedEmbeddingService) Generate(ctx context.Context, text string) ([]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("embedding rate limit wait: %w", err)
	}
	return s.next.Generate(ctx, text)
}
