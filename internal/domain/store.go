package domain

import "context"

// HybridQuery is a lexical + vector ranked lookup. An empty Vector sends only
// the lexical clause.
type HybridQuery struct {
	Text   string
	Vector []float32
	K      int
	Size   int
}

// ChunkStore is the search engine port for document chunks.
type ChunkStore interface {
	// EnsureIndex creates the backing indices if they are absent. Safe to
	// call concurrently and repeatedly.
	EnsureIndex(ctx context.Context) error

	// IndexChunk writes one chunk without forcing a refresh.
	IndexChunk(ctx context.Context, chunk *TextChunk) error

	// Refresh makes previous writes visible to search.
	Refresh(ctx context.Context) error

	// ChunksByDocument returns every chunk of a document ordered by
	// PageOrdinal. No content is an empty slice, not an error.
	ChunksByDocument(ctx context.Context, documentID string) ([]*TextChunk, error)

	// HybridSearch ranks chunks by combined lexical and vector score.
	HybridSearch(ctx context.Context, query HybridQuery) ([]*ScoredChunk, error)
}

// QuizRecordRepository persists finalized quizzes for audit and history.
type QuizRecordRepository interface {
	SaveQuizRecord(ctx context.Context, record *QuizRecord) error
	RecentQuizRecords(ctx context.Context, limit int) ([]*QuizRecord, error)
}

// TextGenerator is the generative model port: one prompt, one named model.
type TextGenerator interface {
	GenerateText(ctx context.Context, model string, prompt string) (string, error)
}
