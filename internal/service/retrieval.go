package service

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"quiz-byte/internal/config"
	"quiz-byte/internal/domain"

	"go.uber.org/zap"
)

// GeneralKnowledgeContext grounds a document request whose content is
// missing and that carries no topic.
const GeneralKnowledgeContext = "General knowledge for education"

// RetrievalService assembles grounding context for generation and answers
// ranked passage lookups.
type RetrievalService interface {
	// RetrieveContext prefers the document's indexed text and falls back to
	// the topic. maxChars <= 0 uses the configured limit.
	RetrieveContext(ctx context.Context, topic, documentID string, maxChars int) (*domain.RetrievalContext, error)

	// Search ranks chunks for a free-text query.
	Search(ctx context.Context, query string, size int) ([]*domain.ScoredChunk, error)
}

type retrievalService struct {
	store    domain.ChunkStore
	embedder domain.EmbeddingService
	cfg      config.RetrievalConfig
	logger   *zap.Logger
}

// NewRetrievalService creates a RetrievalService. embedder may be nil, in
// which case Search is lexical only.
func NewRetrievalService(store domain.ChunkStore, embedder domain.EmbeddingService, cfg config.RetrievalConfig, logger *zap.Logger) RetrievalService {
	return &retrievalService{
		store:    store,
		embedder: embedder,
		cfg:      cfg,
		logger:   logger,
	}
}

func topicContext(topic string) string {
	return "Topic: " + topic
}

func (s *retrievalService) RetrieveContext(ctx context.Context, topic, documentID string, maxChars int) (*domain.RetrievalContext, error) {
	topic = strings.TrimSpace(topic)
	documentID = strings.TrimSpace(documentID)

	if documentID == "" {
		if topic == "" {
			return nil, domain.NewMissingInputError()
		}
		return newRetrievalContext(domain.SourceTopic, topicContext(topic), false), nil
	}

	if maxChars <= 0 {
		maxChars = s.cfg.MaxChars
	}

	text, err := s.documentText(ctx, documentID, maxChars)
	if err != nil {
		return nil, err
	}

	if nonSpaceLen(text) >= s.cfg.MinContextChars {
		s.logger.Debug("Using document context",
			zap.String("document_id", documentID),
			zap.Int("length", utf8.RuneCountInString(text)))
		return newRetrievalContext(domain.SourceDocument, text, false), nil
	}

	s.logger.Warn("Document context empty or too short, falling back",
		zap.Error(domain.NewRetrievalEmptyError(documentID)),
		zap.Bool("has_topic", topic != ""))

	if topic != "" {
		return newRetrievalContext(domain.SourceTopic, topicContext(topic), true), nil
	}
	return newRetrievalContext(domain.SourceTopic, GeneralKnowledgeContext, true), nil
}

// documentText joins the document's chunks in page order and truncates the
// result to maxChars characters.
func (s *retrievalService) documentText(ctx context.Context, documentID string, maxChars int) (string, error) {
	chunks, err := s.store.ChunksByDocument(ctx, documentID)
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		parts = append(parts, c.Text)
	}
	return truncateRunes(strings.Join(parts, "\n"), maxChars), nil
}

func (s *retrievalService) Search(ctx context.Context, query string, size int) ([]*domain.ScoredChunk, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.NewInvalidInputError("Query is required")
	}
	if size <= 0 {
		size = s.cfg.HybridSize
	}

	var vector []float32
	if s.embedder != nil {
		v, err := s.embedder.Generate(ctx, query)
		if err != nil {
			s.logger.Warn("Query embedding failed, searching lexically", zap.Error(err))
		} else {
			vector = v
		}
	}

	return s.store.HybridSearch(ctx, domain.HybridQuery{
		Text:   query,
		Vector: vector,
		K:      s.cfg.HybridK,
		Size:   size,
	})
}

func newRetrievalContext(kind domain.SourceKind, text string, fallback bool) *domain.RetrievalContext {
	return &domain.RetrievalContext{
		SourceKind:      kind,
		Text:            text,
		TruncatedLength: utf8.RuneCountInString(text),
		Fallback:        fallback,
	}
}

func truncateRunes(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

func nonSpaceLen(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
