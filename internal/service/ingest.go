package service

import (
	"context"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"quiz-byte/internal/chunker"
	"quiz-byte/internal/config"
	"quiz-byte/internal/domain"
	"quiz-byte/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// IngestService makes a document searchable.
type IngestService interface {
	// Ingest chunks, embeds and indexes rawText. An empty documentID gets a
	// new ULID.
	Ingest(ctx context.Context, documentID, title, rawText string) (*domain.IngestResult, error)
}

type ingestService struct {
	store    domain.ChunkStore
	embedder domain.EmbeddingService
	cfg      config.IngestConfig
	logger   *zap.Logger
}

// NewIngestService creates an IngestService. A nil embedder indexes chunks
// without vectors.
func NewIngestService(store domain.ChunkStore, embedder domain.EmbeddingService, cfg config.IngestConfig, logger *zap.Logger) IngestService {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &ingestService{
		store:    store,
		embedder: embedder,
		cfg:      cfg,
		logger:   logger,
	}
}

func (s *ingestService) Ingest(ctx context.Context, documentID, title, rawText string) (*domain.IngestResult, error) {
	if strings.TrimSpace(rawText) == "" {
		return nil, domain.NewInvalidInputError("Document text is empty")
	}
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		documentID = util.NewULID()
	}

	if err := s.store.EnsureIndex(ctx); err != nil {
		return nil, err
	}

	parts := chunker.Split(rawText, s.cfg.ChunkSize)

	var indexed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	for i, part := range parts {
		if utf8.RuneCountInString(strings.TrimSpace(part)) < s.cfg.MinChunkChars {
			continue
		}
		chunk := &domain.TextChunk{
			DocumentID:  documentID,
			Title:       title,
			PageOrdinal: i + 1,
			Text:        part,
		}

		g.Go(func() error {
			if s.embedder != nil {
				vector, err := s.embedder.Generate(gctx, chunk.Text)
				if err != nil {
					s.logger.Warn("Embedding failed, indexing chunk without vector",
						zap.String("document_id", documentID),
						zap.Int("page_ordinal", chunk.PageOrdinal),
						zap.Error(err))
				} else {
					chunk.Vector = vector
				}
			}

			if err := s.store.IndexChunk(gctx, chunk); err != nil {
				return err
			}
			indexed.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Error("Ingestion failed", zap.String("document_id", documentID), zap.Error(err))
		return nil, err
	}

	if err := s.store.Refresh(ctx); err != nil {
		return nil, err
	}

	result := &domain.IngestResult{
		DocumentID:    documentID,
		Title:         title,
		ChunksIndexed: int(indexed.Load()),
		TextLength:    utf8.RuneCountInString(rawText),
	}
	s.logger.Info("Document ingested",
		zap.String("document_id", documentID),
		zap.Int("chunks", result.ChunksIndexed),
		zap.Int("skipped", len(parts)-result.ChunksIndexed))
	return result, nil
}
