package service

import (
	"context"

	"quiz-byte/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- MockChunkStore ---
type MockChunkStore struct {
	mock.Mock
}

func (m *MockChunkStore) EnsureIndex(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockChunkStore) IndexChunk(ctx context.Context, chunk *domain.TextChunk) error {
	args := m.Called(ctx, chunk)
	return args.Error(0)
}

func (m *MockChunkStore) Refresh(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockChunkStore) ChunksByDocument(ctx context.Context, documentID string) ([]*domain.TextChunk, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.TextChunk), args.Error(1)
}

func (m *MockChunkStore) HybridSearch(ctx context.Context, query domain.HybridQuery) ([]*domain.ScoredChunk, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ScoredChunk), args.Error(1)
}

// --- MockQuizRecordRepository ---
type MockQuizRecordRepository struct {
	mock.Mock
}

func (m *MockQuizRecordRepository) SaveQuizRecord(ctx context.Context, record *domain.QuizRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockQuizRecordRepository) RecentQuizRecords(ctx context.Context, limit int) ([]*domain.QuizRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.QuizRecord), args.Error(1)
}

// --- MockTextGenerator ---
type MockTextGenerator struct {
	mock.Mock
}

func (m *MockTextGenerator) GenerateText(ctx context.Context, model string, prompt string) (string, error) {
	args := m.Called(ctx, model, prompt)
	return args.String(0), args.Error(1)
}

// --- MockEmbeddingService ---
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
