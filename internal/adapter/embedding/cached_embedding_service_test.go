package embedding

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"sync"
	"testing"
	"time"

	"quiz-byte/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}
func (m *MockCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}
func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

var _ domain.Cache = (*MockCache)(nil)

type MockEmbeddingService struct {
	mock.Mock
}

func (m *MockEmbeddingService) Generate(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func gobString(t *testing.T, v []float32) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(v))
	return buf.String()
}

func TestNewCachedEmbeddingService(t *testing.T) {
	_, err := NewCachedEmbeddingService(nil, new(MockCache), "ns", time.Hour, zap.NewNop())
	assert.Error(t, err)

	_, err = NewCachedEmbeddingService(new(MockEmbeddingService), nil, "ns", time.Hour, zap.NewNop())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cache instance cannot be nil")

	svc, err := NewCachedEmbeddingService(new(MockEmbeddingService), new(MockCache), "ns", 0, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, defaultEmbeddingTTL, svc.ttl)
}

func TestCachedEmbeddingService_Generate(t *testing.T) {
	ctx := context.Background()
	ttl := 30 * time.Minute
	text := "test text"
	expected := []float32{0.4, 0.5, 0.6}
	cacheKey := "quizgen:embedding:googleai/text-embedding-004:" + hashString(text)

	newService := func(next *MockEmbeddingService, c *MockCache) *CachedEmbeddingService {
		svc, err := NewCachedEmbeddingService(next, c, "googleai/text-embedding-004", ttl, zap.NewNop())
		require.NoError(t, err)
		return svc
	}

	t.Run("cache hit", func(t *testing.T) {
		next, c := new(MockEmbeddingService), new(MockCache)
		c.On("Get", ctx, cacheKey).Return(gobString(t, expected), nil).Once()

		result, err := newService(next, c).Generate(ctx, text)
		assert.NoError(t, err)
		assert.Equal(t, expected, result)
		next.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
	})

	t.Run("cache miss stores result", func(t *testing.T) {
		next, c := new(MockEmbeddingService), new(MockCache)
		c.On("Get", ctx, cacheKey).Return("", domain.ErrCacheMiss).Once()
		next.On("Generate", ctx, text).Return(expected, nil).Once()
		c.On("Set", ctx, cacheKey, gobString(t, expected), ttl).Return(nil).Once()

		result, err := newService(next, c).Generate(ctx, text)
		assert.NoError(t, err)
		assert.Equal(t, expected, result)
		next.AssertExpectations(t)
		c.AssertExpectations(t)
	})

	t.Run("cache read error falls through", func(t *testing.T) {
		next, c := new(MockEmbeddingService), new(MockCache)
		c.On("Get", ctx, cacheKey).Return("", errors.New("connection reset")).Once()
		next.On("Generate", ctx, text).Return(expected, nil).Once()
		c.On("Set", ctx, cacheKey, mock.Anything, ttl).Return(nil).Once()

		result, err := newService(next, c).Generate(ctx, text)
		assert.NoError(t, err)
		assert.Equal(t, expected, result)
	})

	t.Run("corrupt cache entry regenerates", func(t *testing.T) {
		next, c := new(MockEmbeddingService), new(MockCache)
		c.On("Get", ctx, cacheKey).Return("invalid gob data", nil).Once()
		next.On("Generate", ctx, text).Return(expected, nil).Once()
		c.On("Set", ctx, cacheKey, gobString(t, expected), ttl).Return(nil).Once()

		result, err := newService(next, c).Generate(ctx, text)
		assert.NoError(t, err)
		assert.Equal(t, expected, result)
		c.AssertExpectations(t)
	})

	t.Run("cache write error is ignored", func(t *testing.T) {
		next, c := new(MockEmbeddingService), new(MockCache)
		c.On("Get", ctx, cacheKey).Return("", domain.ErrCacheMiss).Once()
		next.On("Generate", ctx, text).Return(expected, nil).Once()
		c.On("Set", ctx, cacheKey, mock.Anything, ttl).Return(errors.New("read only replica")).Once()

		result, err := newService(next, c).Generate(ctx, text)
		assert.NoError(t, err)
		assert.Equal(t, expected, result)
	})

	t.Run("upstream error is returned and not cached", func(t *testing.T) {
		next, c := new(MockEmbeddingService), new(MockCache)
		upstreamErr := errors.New("quota exceeded")
		c.On("Get", ctx, cacheKey).Return("", domain.ErrCacheMiss).Once()
		next.On("Generate", ctx, text).Return(nil, upstreamErr).Once()

		_, err := newService(next, c).Generate(ctx, text)
		assert.ErrorIs(t, err, upstreamErr)
		c.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("empty text", func(t *testing.T) {
		_, err := newService(new(MockEmbeddingService), new(MockCache)).Generate(ctx, "")
		assert.Error(t, err)
	})
}

func TestCachedEmbeddingService_ConcurrentMissesShareResult(t *testing.T) {
	ctx := context.Background()
	next, c := new(MockEmbeddingService), new(MockCache)
	release := make(chan struct{})

	c.On("Get", mock.Anything, mock.Anything).Return("", domain.ErrCacheMiss)
	c.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	next.On("Generate", mock.Anything, "shared").
		Run(func(mock.Arguments) { <-release }).
		Return([]float32{1, 2, 3}, nil)

	svc, err := NewCachedEmbeddingService(next, c, "ns", time.Hour, zap.NewNop())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := svc.Generate(ctx, "shared")
			assert.NoError(t, err)
			assert.Equal(t, []float32{1, 2, 3}, v)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, len(next.Calls), 5)
	assert.GreaterOrEqual(t, len(next.Calls), 1)
}
