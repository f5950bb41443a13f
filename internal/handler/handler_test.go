package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"quiz-byte/internal/domain"
	"quiz-byte/internal/dto"
	"quiz-byte/internal/handler"
	"quiz-byte/internal/middleware"
	"quiz-byte/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Manual Mocks ---

type MockQuizService struct {
	GenerateQuizFunc func(ctx context.Context, in service.GenerateQuizInput) (*domain.QuizRecord, error)
	AskFunc          func(ctx context.Context, question string) (*service.Answer, error)
	HistoryFunc      func(ctx context.Context, limit int) ([]*domain.QuizRecord, error)
	PingFunc         func(ctx context.Context) (*domain.Generation, error)
}

func (m *MockQuizService) GenerateQuiz(ctx context.Context, in service.GenerateQuizInput) (*domain.QuizRecord, error) {
	if m.GenerateQuizFunc != nil {
		return m.GenerateQuizFunc(ctx, in)
	}
	panic("MockQuizService.GenerateQuizFunc not implemented")
}

func (m *MockQuizService) Ask(ctx context.Context, question string) (*service.Answer, error) {
	if m.AskFunc != nil {
		return m.AskFunc(ctx, question)
	}
	panic("MockQuizService.AskFunc not implemented")
}

func (m *MockQuizService) History(ctx context.Context, limit int) ([]*domain.QuizRecord, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx, limit)
	}
	panic("MockQuizService.HistoryFunc not implemented")
}

func (m *MockQuizService) Ping(ctx context.Context) (*domain.Generation, error) {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	panic("MockQuizService.PingFunc not implemented")
}

type MockRetrievalService struct {
	RetrieveContextFunc func(ctx context.Context, topic, documentID string, maxChars int) (*domain.RetrievalContext, error)
	SearchFunc          func(ctx context.Context, query string, size int) ([]*domain.ScoredChunk, error)
}

func (m *MockRetrievalService) RetrieveContext(ctx context.Context, topic, documentID string, maxChars int) (*domain.RetrievalContext, error) {
	if m.RetrieveContextFunc != nil {
		return m.RetrieveContextFunc(ctx, topic, documentID, maxChars)
	}
	panic("MockRetrievalService.RetrieveContextFunc not implemented")
}

func (m *MockRetrievalService) Search(ctx context.Context, query string, size int) ([]*domain.ScoredChunk, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query, size)
	}
	panic("MockRetrievalService.SearchFunc not implemented")
}

type MockIngestService struct {
	IngestFunc func(ctx context.Context, documentID, title, rawText string) (*domain.IngestResult, error)
}

func (m *MockIngestService) Ingest(ctx context.Context, documentID, title, rawText string) (*domain.IngestResult, error) {
	if m.IngestFunc != nil {
		return m.IngestFunc(ctx, documentID, title, rawText)
	}
	panic("MockIngestService.IngestFunc not implemented")
}

type MockExtractor struct {
	ExtractFunc func(ctx context.Context, filename, contentType string, content []byte) (string, error)
}

func (m *MockExtractor) Extract(ctx context.Context, filename, contentType string, content []byte) (string, error) {
	if m.ExtractFunc != nil {
		return m.ExtractFunc(ctx, filename, contentType, content)
	}
	panic("MockExtractor.ExtractFunc not implemented")
}

type MockCache struct {
	PingFunc func(ctx context.Context) error
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	panic("MockCache.Get not implemented")
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	panic("MockCache.Set not implemented")
}

func (m *MockCache) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	panic("MockCache.PingFunc not implemented")
}

// --- Helpers ---

type mocks struct {
	quiz      *MockQuizService
	retrieval *MockRetrievalService
	ingest    *MockIngestService
	extractor *MockExtractor
}

func setupApp() (*fiber.App, *mocks) {
	m := &mocks{
		quiz:      &MockQuizService{},
		retrieval: &MockRetrievalService{},
		ingest:    &MockIngestService{},
		extractor: &MockExtractor{},
	}
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	handler.RegisterRoutes(app,
		handler.NewHealthHandler(nil),
		handler.NewQuizHandler(m.quiz, m.retrieval),
		handler.NewUploadHandler(m.ingest, m.extractor),
		middleware.NewValidationMiddleware(),
	)
	return app, m
}

func jsonRequest(method, target string, body any) *http.Request {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func sampleRecord() *domain.QuizRecord {
	q := domain.QuizQuestion{
		Question:    "Which organelle makes ATP?",
		Options:     []string{"Mitochondria", "Nucleus", "Ribosome", "Golgi", "Vacuole"},
		Answer:      "Mitochondria",
		Explanation: "Cellular respiration.",
	}
	return &domain.QuizRecord{
		ID:        "01J0000000000000000000000A",
		Topic:     "cells",
		Questions: []domain.QuizQuestion{q, q},
		Model:     "gemini-2.5-flash",
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

// --- Tests ---

func TestHealth(t *testing.T) {
	app, _ := setupApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[dto.HealthResponse](t, resp)
	assert.True(t, body.OK)
	assert.Equal(t, dto.CacheDisabled, body.Cache)
}

func TestHealth_PingsCache(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		wantStatus int
		wantOK     bool
		wantCache  string
	}{
		{name: "cache up", wantStatus: http.StatusOK, wantOK: true, wantCache: dto.CacheUp},
		{name: "cache down", pingErr: errors.New("dial tcp 127.0.0.1:6379: connection refused"), wantStatus: http.StatusServiceUnavailable, wantCache: dto.CacheDown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pinged := false
			cache := &MockCache{PingFunc: func(ctx context.Context) error {
				pinged = true
				_, hasDeadline := ctx.Deadline()
				assert.True(t, hasDeadline)
				return tt.pingErr
			}}
			app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
			app.Get("/", handler.NewHealthHandler(cache).Health)

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.True(t, pinged)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			body := decode[dto.HealthResponse](t, resp)
			assert.Equal(t, tt.wantOK, body.OK)
			assert.Equal(t, tt.wantCache, body.Cache)
			assert.Equal(t, "quizgen", body.Service)
		})
	}
}

func TestGenerateQuiz_Success(t *testing.T) {
	app, m := setupApp()
	var got service.GenerateQuizInput
	m.quiz.GenerateQuizFunc = func(ctx context.Context, in service.GenerateQuizInput) (*domain.QuizRecord, error) {
		got = in
		return sampleRecord(), nil
	}

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/quiz/generate", dto.GenerateQuizRequest{Topic: "  cells ", N: 7}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[dto.QuizResponse](t, resp)
	assert.True(t, body.OK)
	assert.Equal(t, "01J0000000000000000000000A", body.ID)
	assert.Equal(t, 2, body.Count)
	assert.Len(t, body.Quiz, 2)
	assert.Equal(t, "Mitochondria", body.Quiz[0].Answer)
	assert.Equal(t, "gemini-2.5-flash", body.Model)

	assert.Equal(t, service.GenerateQuizInput{Topic: "cells", QuestionCount: 7}, got)
}

func TestGenerateQuiz_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"missing input", domain.NewMissingInputError(), http.StatusBadRequest, "MISSING_INPUT"},
		{"exhausted", domain.NewGenerationExhaustedError(2, errors.New("quota")), http.StatusBadGateway, "GENERATION_EXHAUSTED"},
		{"empty generation", domain.NewEmptyGenerationError(), http.StatusBadGateway, "EMPTY_GENERATION"},
		{"index down", domain.NewIndexUnavailableError(errors.New("refused")), http.StatusServiceUnavailable, "INDEX_UNAVAILABLE"},
		{"internal", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, m := setupApp()
			m.quiz.GenerateQuizFunc = func(ctx context.Context, in service.GenerateQuizInput) (*domain.QuizRecord, error) {
				return nil, tt.err
			}

			resp, err := app.Test(jsonRequest(http.MethodPost, "/api/quiz/generate", dto.GenerateQuizRequest{DocID: "doc-1"}))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			body := decode[middleware.ErrorResponse](t, resp)
			assert.Equal(t, tt.code, body.Code)
			assert.NotContains(t, body.Message, "quota")
		})
	}
}

func TestGenerateQuiz_BadRequests(t *testing.T) {
	app, _ := setupApp()

	req := httptest.NewRequest(http.MethodPost, "/api/quiz/generate", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/quiz/generate", dto.GenerateQuizRequest{DocID: "bad id/with slash"}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[middleware.ValidationErrorResponse](t, resp)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "docId", body.Errors[0].Field)
}

func TestPing(t *testing.T) {
	app, m := setupApp()
	m.quiz.PingFunc = func(ctx context.Context) (*domain.Generation, error) {
		return &domain.Generation{Text: "pong", Model: "models/gemini-2.5-flash"}, nil
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/quiz/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[dto.PingResponse](t, resp)
	assert.Equal(t, "models/gemini-2.5-flash", body.Model)
	assert.Equal(t, "pong", body.Text)
}

func TestHistory(t *testing.T) {
	app, m := setupApp()
	var gotLimit int
	m.quiz.HistoryFunc = func(ctx context.Context, limit int) ([]*domain.QuizRecord, error) {
		gotLimit = limit
		return []*domain.QuizRecord{sampleRecord()}, nil
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/quiz/history?limit=5", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 5, gotLimit)

	body := decode[dto.HistoryResponse](t, resp)
	require.Len(t, body.Quizzes, 1)
	assert.Equal(t, 2, body.Quizzes[0].Count)
	assert.Equal(t, "cells", body.Quizzes[0].Topic)
}

func TestHistory_InvalidLimit(t *testing.T) {
	app, _ := setupApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/quiz/history?limit=500", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSearch(t *testing.T) {
	app, m := setupApp()
	m.retrieval.SearchFunc = func(ctx context.Context, query string, size int) ([]*domain.ScoredChunk, error) {
		assert.Equal(t, "photosynthesis", query)
		assert.Equal(t, 3, size)
		return []*domain.ScoredChunk{{
			TextChunk: domain.TextChunk{DocumentID: "doc-1", Title: "bio", PageOrdinal: 2, Text: "Chlorophyll"},
			ID:        "doc-1-2",
			Score:     1.5,
		}}, nil
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/search?q=photosynthesis&size=3", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[dto.SearchResponse](t, resp)
	require.Len(t, body.Hits, 1)
	assert.Equal(t, dto.SearchHit{ID: "doc-1-2", DocID: "doc-1", Title: "bio", PageOrdinal: 2, Text: "Chlorophyll", Score: 1.5}, body.Hits[0])
}

func TestSearch_MissingQuery(t *testing.T) {
	app, _ := setupApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/search", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAsk(t *testing.T) {
	app, m := setupApp()
	m.quiz.AskFunc = func(ctx context.Context, question string) (*service.Answer, error) {
		if strings.TrimSpace(question) == "" {
			return nil, domain.NewInvalidInputError("Missing prompt")
		}
		return &service.Answer{
			Text:    "Chlorophyll.",
			Model:   "gemini-2.5-flash",
			Sources: []*domain.ScoredChunk{{ID: "doc-1-1"}},
		}, nil
	}

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/ask", dto.AskRequest{Prompt: "What absorbs light?"}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[dto.AskResponse](t, resp)
	assert.Equal(t, "Chlorophyll.", body.Reply)
	require.Len(t, body.Sources, 1)
	assert.Equal(t, "doc-1-1", body.Sources[0].ID)

	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/ask", dto.AskRequest{}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func multipartUpload(t *testing.T, filename string, content []byte, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = io.Copy(part, bytes.NewReader(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestUpload_Success(t *testing.T) {
	app, m := setupApp()
	m.extractor.ExtractFunc = func(ctx context.Context, filename, contentType string, content []byte) (string, error) {
		assert.Equal(t, "notes.txt", filename)
		return string(content), nil
	}
	var gotID, gotTitle, gotText string
	m.ingest.IngestFunc = func(ctx context.Context, documentID, title, rawText string) (*domain.IngestResult, error) {
		gotID, gotTitle, gotText = documentID, title, rawText
		return &domain.IngestResult{DocumentID: documentID, Title: title, ChunksIndexed: 1, TextLength: len(rawText)}, nil
	}

	resp, err := app.Test(multipartUpload(t, "notes.txt", []byte("Cells are the unit of life."), nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[dto.UploadResponse](t, resp)
	assert.True(t, body.OK)
	assert.Len(t, gotID, 26, "a ULID document id is generated")
	assert.Equal(t, gotID, body.DocID)
	assert.Equal(t, "notes.txt", gotTitle)
	assert.Equal(t, "Cells are the unit of life.", gotText)
	assert.Equal(t, 1, body.ChunksIndexed)
	assert.Equal(t, len(gotText), body.TextLen)
}

func TestUpload_TitleAndDocIDFields(t *testing.T) {
	app, m := setupApp()
	m.extractor.ExtractFunc = func(ctx context.Context, filename, contentType string, content []byte) (string, error) {
		return string(content), nil
	}
	m.ingest.IngestFunc = func(ctx context.Context, documentID, title, rawText string) (*domain.IngestResult, error) {
		assert.Equal(t, "bio-101", documentID)
		assert.Equal(t, "Biology", title)
		return &domain.IngestResult{DocumentID: documentID, Title: title}, nil
	}

	resp, err := app.Test(multipartUpload(t, "notes.txt", []byte("text"), map[string]string{"title": "Biology", "docId": "bio-101"}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUpload_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		app, _ := setupApp()
		resp, err := app.Test(multipartUpload(t, "", nil, map[string]string{"title": "x"}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("invalid doc id", func(t *testing.T) {
		app, _ := setupApp()
		resp, err := app.Test(multipartUpload(t, "a.txt", []byte("x"), map[string]string{"docId": "../etc"}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("extraction rejected", func(t *testing.T) {
		app, m := setupApp()
		m.extractor.ExtractFunc = func(ctx context.Context, filename, contentType string, content []byte) (string, error) {
			return "", domain.NewInvalidInputError("Unsupported file type")
		}
		resp, err := app.Test(multipartUpload(t, "a.bin", []byte{0xff, 0xfe}, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("index unavailable", func(t *testing.T) {
		app, m := setupApp()
		m.extractor.ExtractFunc = func(ctx context.Context, filename, contentType string, content []byte) (string, error) {
			return "text", nil
		}
		m.ingest.IngestFunc = func(ctx context.Context, documentID, title, rawText string) (*domain.IngestResult, error) {
			return nil, domain.NewIndexUnavailableError(errors.New("refused"))
		}
		resp, err := app.Test(multipartUpload(t, "a.txt", []byte("text"), nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}
