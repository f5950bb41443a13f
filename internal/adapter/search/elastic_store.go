package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"quiz-byte/internal/config"
	"quiz-byte/internal/domain"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

const (
	// maxDocumentChunks bounds a document-id lookup.
	maxDocumentChunks = 1000

	defaultHybridK    = 20
	defaultHybridSize = 6
	minNumCandidates  = 100

	errTypeAlreadyExists = "resource_already_exists_exception"
	errTypeIndexNotFound = "index_not_found_exception"
)

var chunkSourceFields = []string{"documentId", "title", "pageOrdinal", "text"}

// ElasticStore implements domain.ChunkStore and domain.QuizRecordRepository
// on Elasticsearch 8.
type ElasticStore struct {
	client    *elasticsearch.Client
	index     string
	quizIndex string
	dims      int
	timeout   time.Duration
	logger    *zap.Logger
}

// NewElasticClient creates the shared client. It does not contact the
// cluster; the first request does.
func NewElasticClient(cfg config.ElasticConfig) (*elasticsearch.Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("elasticsearch URL cannot be empty")
	}
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		APIKey:    cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	return client, nil
}

// NewElasticStore wraps a connected client.
func NewElasticStore(client *elasticsearch.Client, cfg config.ElasticConfig, logger *zap.Logger) *ElasticStore {
	quizIndex := cfg.QuizIndex
	if quizIndex == "" {
		quizIndex = cfg.Index + "-quizzes"
	}
	return &ElasticStore{
		client:    client,
		index:     cfg.Index,
		quizIndex: quizIndex,
		dims:      cfg.Dims,
		timeout:   cfg.Timeout,
		logger:    logger,
	}
}

// chunkDocument is the stored shape of a chunk.
type chunkDocument struct {
	domain.TextChunk
	CreatedAt time.Time `json:"createdAt"`
}

type searchHit struct {
	ID     string          `json:"_id"`
	Score  *float64        `json:"_score"`
	Source json.RawMessage `json:"_source"`
}

type searchResponse struct {
	Hits struct {
		Hits []searchHit `json:"hits"`
	} `json:"hits"`
}

type errorResponse struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
}

func (s *ElasticStore) chunkMapping() map[string]any {
	return map[string]any{
		"mappings": map[string]any{
			"properties": map[string]any{
				"documentId":  map[string]any{"type": "keyword"},
				"title":       map[string]any{"type": "keyword"},
				"pageOrdinal": map[string]any{"type": "integer"},
				"text":        map[string]any{"type": "text"},
				"createdAt":   map[string]any{"type": "date"},
				"vector": map[string]any{
					"type":       "dense_vector",
					"dims":       s.dims,
					"index":      true,
					"similarity": "cosine",
				},
			},
		},
	}
}

var quizMapping = map[string]any{
	"mappings": map[string]any{
		"properties": map[string]any{
			"id":        map[string]any{"type": "keyword"},
			"topic":     map[string]any{"type": "text"},
			"docId":     map[string]any{"type": "keyword"},
			"model":     map[string]any{"type": "keyword"},
			"createdAt": map[string]any{"type": "date"},
			"quiz":      map[string]any{"type": "object", "enabled": false},
		},
	},
}

func (s *ElasticStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// EnsureIndex creates the chunk and quiz indices when they do not exist.
func (s *ElasticStore) EnsureIndex(ctx context.Context) error {
	if err := s.ensure(ctx, s.index, s.chunkMapping()); err != nil {
		return err
	}
	return s.ensure(ctx, s.quizIndex, quizMapping)
}

func (s *ElasticStore) ensure(ctx context.Context, index string, mapping map[string]any) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.client.Indices.Exists([]string{index}, s.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return domain.NewIndexUnavailableError(err)
	}
	drain(res)
	switch {
	case res.StatusCode == http.StatusOK:
		return nil
	case res.StatusCode != http.StatusNotFound:
		return statusError("check index", res.StatusCode, errorResponse{})
	}

	body, err := json.Marshal(mapping)
	if err != nil {
		return domain.NewInternalError("Failed to encode index mapping", err)
	}
	res, err = s.client.Indices.Create(index,
		s.client.Indices.Create.WithBody(bytes.NewReader(body)),
		s.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return domain.NewIndexUnavailableError(err)
	}
	defer drain(res)

	if res.IsError() {
		esErr := decodeError(res)
		if esErr.Error.Type == errTypeAlreadyExists {
			s.logger.Debug("Index created concurrently", zap.String("index", index))
			return nil
		}
		return statusError("create index", res.StatusCode, esErr)
	}

	s.logger.Info("Index created", zap.String("index", index))
	return nil
}

// IndexChunk writes one chunk without refresh.
func (s *ElasticStore) IndexChunk(ctx context.Context, chunk *domain.TextChunk) error {
	if len(chunk.Vector) > 0 && len(chunk.Vector) != s.dims {
		return domain.NewInternalError(
			fmt.Sprintf("Embedding has %d dimensions, index expects %d", len(chunk.Vector), s.dims), nil)
	}

	body, err := json.Marshal(chunkDocument{TextChunk: *chunk, CreatedAt: time.Now().UTC()})
	if err != nil {
		return domain.NewInternalError("Failed to encode chunk", err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.client.Index(s.index, bytes.NewReader(body),
		s.client.Index.WithContext(ctx),
		s.client.Index.WithRefresh("false"),
	)
	if err != nil {
		return domain.NewIndexUnavailableError(err)
	}
	defer drain(res)
	if res.IsError() {
		return statusError("index chunk", res.StatusCode, decodeError(res))
	}
	return nil
}

// Refresh makes all writes to the chunk index searchable.
func (s *ElasticStore) Refresh(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.client.Indices.Refresh(
		s.client.Indices.Refresh.WithIndex(s.index),
		s.client.Indices.Refresh.WithContext(ctx),
	)
	if err != nil {
		return domain.NewIndexUnavailableError(err)
	}
	defer drain(res)
	if res.IsError() {
		return statusError("refresh", res.StatusCode, decodeError(res))
	}
	return nil
}

// ChunksByDocument gathers a document's chunks in page order. A freshly
// written document may not be searchable yet, so an empty answer is retried
// with a match query and then once more after a forced refresh.
func (s *ElasticStore) ChunksByDocument(ctx context.Context, documentID string) ([]*domain.TextChunk, error) {
	termQuery := map[string]any{
		"bool": map[string]any{
			"filter": []any{
				map[string]any{"term": map[string]any{"documentId": documentID}},
			},
		},
	}
	matchQuery := map[string]any{
		"match": map[string]any{"documentId": documentID},
	}

	steps := []struct {
		name    string
		refresh bool
		query   map[string]any
	}{
		{name: "term", query: termQuery},
		{name: "match", query: matchQuery},
		{name: "refresh_term", refresh: true, query: termQuery},
	}

	for _, step := range steps {
		if step.refresh {
			if err := s.Refresh(ctx); err != nil {
				s.logger.Warn("Refresh before retry failed", zap.String("document_id", documentID), zap.Error(err))
			}
		}

		hits, err := s.search(ctx, s.index, map[string]any{
			"size":    maxDocumentChunks,
			"query":   step.query,
			"sort":    []any{map[string]any{"pageOrdinal": map[string]any{"order": "asc"}}},
			"_source": chunkSourceFields,
		})
		if err != nil {
			return nil, err
		}
		if len(hits) == 0 {
			s.logger.Debug("Document lookup returned no chunks",
				zap.String("document_id", documentID), zap.String("step", step.name))
			continue
		}

		chunks := make([]*domain.TextChunk, 0, len(hits))
		for _, h := range hits {
			var c domain.TextChunk
			if err := json.Unmarshal(h.Source, &c); err != nil {
				return nil, domain.NewInternalError("Failed to decode chunk", err)
			}
			chunks = append(chunks, &c)
		}
		return chunks, nil
	}

	return []*domain.TextChunk{}, nil
}

// NumCandidates is the k-NN candidate pool for k neighbours.
func NumCandidates(k int) int {
	return max(minNumCandidates, 5*k)
}

// HybridSearch combines a match on text with k-NN on vector; Elasticsearch
// sums both scores.
func (s *ElasticStore) HybridSearch(ctx context.Context, q domain.HybridQuery) ([]*domain.ScoredChunk, error) {
	k := q.K
	if k <= 0 {
		k = defaultHybridK
	}
	size := q.Size
	if size <= 0 {
		size = defaultHybridSize
	}

	body := map[string]any{
		"size": size,
		"query": map[string]any{
			"bool": map[string]any{
				"should": []any{
					map[string]any{"match": map[string]any{"text": q.Text}},
				},
			},
		},
		"_source": chunkSourceFields,
	}
	if len(q.Vector) > 0 {
		body["knn"] = map[string]any{
			"field":          "vector",
			"query_vector":   q.Vector,
			"k":              k,
			"num_candidates": NumCandidates(k),
		}
	}

	hits, err := s.search(ctx, s.index, body)
	if err != nil {
		return nil, err
	}

	results := make([]*domain.ScoredChunk, 0, len(hits))
	for _, h := range hits {
		sc := &domain.ScoredChunk{ID: h.ID}
		if err := json.Unmarshal(h.Source, &sc.TextChunk); err != nil {
			return nil, domain.NewInternalError("Failed to decode chunk", err)
		}
		if h.Score != nil {
			sc.Score = *h.Score
		}
		results = append(results, sc)
	}
	return results, nil
}

// SaveQuizRecord stores a new record and waits until it is searchable. The
// create op type makes an id collision fail instead of overwriting.
func (s *ElasticStore) SaveQuizRecord(ctx context.Context, record *domain.QuizRecord) error {
	body, err := json.Marshal(record)
	if err != nil {
		return domain.NewInternalError("Failed to encode quiz record", err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	opts := []func(*esapi.IndexRequest){
		s.client.Index.WithContext(ctx),
		s.client.Index.WithRefresh("wait_for"),
	}
	if record.ID != "" {
		opts = append(opts, s.client.Index.WithDocumentID(record.ID), s.client.Index.WithOpType("create"))
	}

	res, err := s.client.Index(s.quizIndex, bytes.NewReader(body), opts...)
	if err != nil {
		return domain.NewIndexUnavailableError(err)
	}
	defer drain(res)
	if res.IsError() {
		return statusError("save quiz record", res.StatusCode, decodeError(res))
	}

	if record.ID == "" {
		var created struct {
			ID string `json:"_id"`
		}
		if err := json.NewDecoder(res.Body).Decode(&created); err == nil {
			record.ID = created.ID
		}
	}
	return nil
}

// RecentQuizRecords lists stored quizzes, newest first.
func (s *ElasticStore) RecentQuizRecords(ctx context.Context, limit int) ([]*domain.QuizRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	hits, err := s.search(ctx, s.quizIndex, map[string]any{
		"size":  limit,
		"query": map[string]any{"match_all": map[string]any{}},
		"sort":  []any{map[string]any{"createdAt": map[string]any{"order": "desc"}}},
	})
	if err != nil {
		return nil, err
	}

	records := make([]*domain.QuizRecord, 0, len(hits))
	for _, h := range hits {
		var rec domain.QuizRecord
		if err := json.Unmarshal(h.Source, &rec); err != nil {
			return nil, domain.NewInternalError("Failed to decode quiz record", err)
		}
		if rec.ID == "" {
			rec.ID = h.ID
		}
		records = append(records, &rec)
	}
	return records, nil
}

// search runs a query; a missing index reads as no hits.
func (s *ElasticStore) search(ctx context.Context, index string, body map[string]any) ([]searchHit, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, domain.NewInternalError("Failed to encode search request", err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(index),
		s.client.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return nil, domain.NewIndexUnavailableError(err)
	}
	defer drain(res)

	if res.IsError() {
		esErr := decodeError(res)
		if esErr.Error.Type == errTypeIndexNotFound {
			return nil, nil
		}
		return nil, statusError("search", res.StatusCode, esErr)
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, domain.NewInternalError("Failed to decode search response", err)
	}
	return parsed.Hits.Hits, nil
}

func decodeError(res *esapi.Response) errorResponse {
	var esErr errorResponse
	if res.Body != nil {
		_ = json.NewDecoder(res.Body).Decode(&esErr)
	}
	return esErr
}

// statusError maps an error response to the domain taxonomy. Server-side
// failures mean the engine is unavailable.
func statusError(op string, status int, esErr errorResponse) error {
	cause := fmt.Errorf("elasticsearch %s: status %d %s", op, status, esErr.Error.Type)
	if status >= http.StatusInternalServerError {
		return domain.NewIndexUnavailableError(cause)
	}
	return domain.NewInternalError("Search index request failed", cause)
}

func drain(res *esapi.Response) {
	if res == nil || res.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, res.Body)
	_ = res.Body.Close()
}

var (
	_ domain.ChunkStore           = (*ElasticStore)(nil)
	_ domain.QuizRecordRepository = (*ElasticStore)(nil)
)
