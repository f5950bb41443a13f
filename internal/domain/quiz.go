package domain

import (
	"fmt"
	"time"
)

// OptionCount is the number of options every quiz question carries.
const OptionCount = 5

// ValidationError represents a validation error
type ValidationError struct {
	message string
}

func (e *ValidationError) Error() string {
	return e.message
}

func NewValidationError(message string) error {
	return &ValidationError{message: message}
}

// TextChunk is one retrievable unit of a document. PageOrdinal is the 1-based
// position assigned by the chunker, not a physical page number.
type TextChunk struct {
	DocumentID  string    `json:"documentId"`
	Title       string    `json:"title"`
	PageOrdinal int       `json:"pageOrdinal"`
	Text        string    `json:"text"`
	Vector      []float32 `json:"vector,omitempty"`
}

// ScoredChunk is a hybrid search hit.
type ScoredChunk struct {
	TextChunk
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// SourceKind tells where a RetrievalContext came from.
type SourceKind string

const (
	SourceTopic    SourceKind = "topic"
	SourceDocument SourceKind = "document"
)

// RetrievalContext is the grounding text for one generation request.
// Fallback is set when a document request degraded to topic or general
// knowledge context.
type RetrievalContext struct {
	SourceKind      SourceKind
	Text            string
	TruncatedLength int
	Fallback        bool
}

// QuizQuestion is a single multiple-choice question.
type QuizQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation"`
}

// Validate checks the structural invariants: five distinct options and an
// answer that is one of them verbatim.
func (q *QuizQuestion) Validate() error {
	if q.Question == "" {
		return NewValidationError("question is required")
	}
	if len(q.Options) != OptionCount {
		return NewValidationError(fmt.Sprintf("exactly %d options are required, got %d", OptionCount, len(q.Options)))
	}
	seen := make(map[string]struct{}, len(q.Options))
	answerFound := false
	for _, opt := range q.Options {
		if _, dup := seen[opt]; dup {
			return NewValidationError(fmt.Sprintf("duplicate option: %q", opt))
		}
		seen[opt] = struct{}{}
		if opt == q.Answer {
			answerFound = true
		}
	}
	if !answerFound {
		return NewValidationError("answer must be one of the options")
	}
	return nil
}

// QuizRecord is a finalized quiz with its provenance. Records are created
// once and never updated.
type QuizRecord struct {
	ID         string         `json:"id"`
	Topic      string         `json:"topic"`
	DocumentID string         `json:"docId,omitempty"`
	Questions  []QuizQuestion `json:"quiz"`
	Model      string         `json:"model,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// NewQuizRecord builds a record; a document-only request is labeled
// "(doc:<id>)" so history listings always show a topic.
func NewQuizRecord(id, topic, documentID, model string, questions []QuizQuestion) *QuizRecord {
	if topic == "" {
		topic = fmt.Sprintf("(doc:%s)", documentID)
	}
	return &QuizRecord{
		ID:         id,
		Topic:      topic,
		DocumentID: documentID,
		Questions:  questions,
		Model:      model,
		CreatedAt:  time.Now().UTC(),
	}
}

// IngestResult summarizes one ingestion request.
type IngestResult struct {
	DocumentID    string `json:"docId"`
	Title         string `json:"title"`
	ChunksIndexed int    `json:"chunksIndexed"`
	TextLength    int    `json:"textLen"`
}

// Generation is the text produced by the first successful model candidate.
type Generation struct {
	Text  string
	Model string
}
