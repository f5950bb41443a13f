package service

import (
	"context"
	"fmt"
	"strings"

	"quiz-byte/internal/domain"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// DefaultModel is always tried after the configured model.
const DefaultModel = "gemini-2.5-flash"

const modelsPrefix = "models/"

// CandidateModels lists the model names to try in order: preferred, then
// fallback, each in bare and "models/" form, without duplicates.
func CandidateModels(preferred, fallback string) []string {
	names := make([]string, 0, 4)
	for _, name := range []string{preferred, fallback} {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		names = append(names, name)
		if strings.HasPrefix(name, modelsPrefix) {
			names = append(names, strings.TrimPrefix(name, modelsPrefix))
		} else {
			names = append(names, modelsPrefix+name)
		}
	}
	return lo.Uniq(names)
}

// GenerationService runs a prompt against an ordered list of model
// candidates and returns the first non-empty answer.
type GenerationService interface {
	// Generate tries candidates in order; nil uses the configured list.
	Generate(ctx context.Context, prompt string, candidates []string) (*domain.Generation, error)
	// Ping sends a trivial prompt through the configured chain.
	Ping(ctx context.Context) (*domain.Generation, error)
	Candidates() []string
}

type generationService struct {
	generator  domain.TextGenerator
	candidates []string
	logger     *zap.Logger
}

// NewGenerationService creates a GenerationService whose default chain is
// CandidateModels(preferredModel, DefaultModel).
func NewGenerationService(generator domain.TextGenerator, preferredModel string, logger *zap.Logger) GenerationService {
	return &generationService{
		generator:  generator,
		candidates: CandidateModels(preferredModel, DefaultModel),
		logger:     logger,
	}
}

func (s *generationService) Candidates() []string {
	return append([]string(nil), s.candidates...)
}

func (s *generationService) Generate(ctx context.Context, prompt string, candidates []string) (*domain.Generation, error) {
	if len(candidates) == 0 {
		candidates = s.candidates
	}

	var lastErr error
	for i, name := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, domain.NewInternalError("Generation cancelled", err)
		}

		text, err := s.generator.GenerateText(ctx, name, prompt)
		if err == nil && strings.TrimSpace(text) != "" {
			s.logger.Info("Generation succeeded", zap.String("model", name), zap.Int("attempt", i+1))
			return &domain.Generation{Text: text, Model: name}, nil
		}
		if err == nil {
			err = fmt.Errorf("model %s returned empty text", name)
		}

		lastErr = err
		s.logger.Warn("Model candidate failed",
			zap.String("model", name),
			zap.Int("attempt", i+1),
			zap.Int("candidates", len(candidates)),
			zap.Error(err))
	}

	s.logger.Error("All model candidates failed", zap.Strings("candidates", candidates), zap.Error(lastErr))
	return nil, domain.NewGenerationExhaustedError(len(candidates), lastErr)
}

func (s *generationService) Ping(ctx context.Context) (*domain.Generation, error) {
	return s.Generate(ctx, "ping", nil)
}
