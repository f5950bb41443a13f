package service

import (
	"context"
	"strings"

	"quiz-byte/internal/domain"
	"quiz-byte/internal/normalizer"
	"quiz-byte/internal/prompt"
	"quiz-byte/internal/util"

	"go.uber.org/zap"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// GenerateQuizInput is one quiz request. QuestionCount 0 means the default;
// other values are clamped.
type GenerateQuizInput struct {
	Topic         string
	DocumentID    string
	QuestionCount int
}

// Answer is a grounded reply to a free-form question.
type Answer struct {
	Text    string
	Model   string
	Sources []*domain.ScoredChunk
}

// QuizService defines the quiz pipeline operations.
type QuizService interface {
	GenerateQuiz(ctx context.Context, in GenerateQuizInput) (*domain.QuizRecord, error)
	Ask(ctx context.Context, question string) (*Answer, error)
	History(ctx context.Context, limit int) ([]*domain.QuizRecord, error)
	Ping(ctx context.Context) (*domain.Generation, error)
}

// quizService implements QuizService
type quizService struct {
	store      domain.ChunkStore
	records    domain.QuizRecordRepository
	retrieval  RetrievalService
	generation GenerationService
	logger     *zap.Logger
	newID      func() string
}

// NewQuizService creates a new instance of quizService
func NewQuizService(
	store domain.ChunkStore,
	records domain.QuizRecordRepository,
	retrieval RetrievalService,
	generation GenerationService,
	logger *zap.Logger,
) QuizService {
	return &quizService{
		store:      store,
		records:    records,
		retrieval:  retrieval,
		generation: generation,
		logger:     logger,
		newID:      util.NewULID,
	}
}

// GenerateQuiz implements QuizService
func (s *quizService) GenerateQuiz(ctx context.Context, in GenerateQuizInput) (*domain.QuizRecord, error) {
	topic := strings.TrimSpace(in.Topic)
	documentID := strings.TrimSpace(in.DocumentID)
	if topic == "" && documentID == "" {
		return nil, domain.NewMissingInputError()
	}

	n := in.QuestionCount
	if n == 0 {
		n = prompt.DefaultQuestions
	}
	n = prompt.ClampQuestionCount(n)

	if err := s.store.EnsureIndex(ctx); err != nil {
		return nil, err
	}

	rc, err := s.retrieval.RetrieveContext(ctx, topic, documentID, 0)
	if err != nil {
		return nil, err
	}

	gen, err := s.generation.Generate(ctx, prompt.BuildQuizPrompt(rc.Text, n), nil)
	if err != nil {
		return nil, err
	}

	questions := normalizer.Normalize(gen.Text)
	if len(questions) == 0 {
		s.logger.Warn("Model output had no usable questions", zap.String("model", gen.Model))
		return nil, domain.NewEmptyGenerationError()
	}
	if len(questions) > n {
		questions = questions[:n]
	}

	record := domain.NewQuizRecord(s.newID(), topic, documentID, gen.Model, questions)
	if err := s.records.SaveQuizRecord(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info("Quiz generated",
		zap.String("id", record.ID),
		zap.String("source", string(rc.SourceKind)),
		zap.Bool("fallback", rc.Fallback),
		zap.Int("questions", len(questions)),
		zap.String("model", gen.Model))
	return record, nil
}

// Ask answers from the best matching passages.
func (s *quizService) Ask(ctx context.Context, question string) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.NewInvalidInputError("Missing prompt")
	}

	passages, err := s.retrieval.Search(ctx, question, 0)
	if err != nil {
		return nil, err
	}

	gen, err := s.generation.Generate(ctx, prompt.BuildAnswerPrompt(question, passages), nil)
	if err != nil {
		return nil, err
	}
	return &Answer{Text: gen.Text, Model: gen.Model, Sources: passages}, nil
}

func (s *quizService) History(ctx context.Context, limit int) ([]*domain.QuizRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	return s.records.RecentQuizRecords(ctx, limit)
}

func (s *quizService) Ping(ctx context.Context) (*domain.Generation, error) {
	return s.generation.Ping(ctx)
}
