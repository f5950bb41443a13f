package handler

import (
	"strings"

	"quiz-byte/internal/domain"
	"quiz-byte/internal/dto"
	"quiz-byte/internal/logger"
	"quiz-byte/internal/middleware"
	"quiz-byte/internal/service"
	"quiz-byte/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// QuizHandler handles quiz generation and retrieval HTTP requests
type QuizHandler struct {
	quiz      service.QuizService
	retrieval service.RetrievalService
	validator *validation.Validator
}

// NewQuizHandler creates a new QuizHandler instance
func NewQuizHandler(quiz service.QuizService, retrieval service.RetrievalService) *QuizHandler {
	return &QuizHandler{
		quiz:      quiz,
		retrieval: retrieval,
		validator: validation.NewValidator(),
	}
}

// GenerateQuiz godoc
// @Summary Generate a quiz
// @Description Generates multiple-choice questions grounded on a document or a topic. n defaults to 10 and is clamped to 5..30.
// @Tags quiz
// @Accept json
// @Produce json
// @Param request body dto.GenerateQuizRequest true "Topic and/or document id"
// @Success 200 {object} dto.QuizResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /api/quiz/generate [post]
func (h *QuizHandler) GenerateQuiz(c *fiber.Ctx) error {
	var req dto.GenerateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}

	req.Topic = strings.TrimSpace(req.Topic)
	req.DocID = strings.TrimSpace(req.DocID)
	if errs := h.validator.ValidateGenerateQuiz(req.Topic, req.DocID); len(errs) > 0 {
		return errs
	}

	record, err := h.quiz.GenerateQuiz(c.UserContext(), service.GenerateQuizInput{
		Topic:         req.Topic,
		DocumentID:    req.DocID,
		QuestionCount: req.N,
	})
	if err != nil {
		logger.Get().Error("Failed to generate quiz",
			zap.String("topic", req.Topic),
			zap.String("doc_id", req.DocID),
			zap.Error(err),
		)
		return err
	}

	return c.JSON(toQuizResponse(record))
}

// Ping godoc
// @Summary Check the language model
// @Description Sends a short prompt through the model fallback chain
// @Tags quiz
// @Produce json
// @Success 200 {object} dto.PingResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /api/quiz/ping [get]
func (h *QuizHandler) Ping(c *fiber.Ctx) error {
	gen, err := h.quiz.Ping(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.PingResponse{OK: true, Model: gen.Model, Text: gen.Text})
}

// History godoc
// @Summary List recent quizzes
// @Tags quiz
// @Produce json
// @Param limit query int false "Number of quizzes, 0..100, 0 means 20"
// @Success 200 {object} dto.HistoryResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /api/quiz/history [get]
func (h *QuizHandler) History(c *fiber.Ctx) error {
	limit, _ := c.Locals(middleware.LocalHistoryLimit).(int)

	records, err := h.quiz.History(c.UserContext(), limit)
	if err != nil {
		return err
	}

	quizzes := lo.Map(records, func(r *domain.QuizRecord, _ int) dto.QuizSummary {
		return dto.QuizSummary{
			ID:        r.ID,
			Topic:     r.Topic,
			DocID:     r.DocumentID,
			Model:     r.Model,
			Count:     len(r.Questions),
			CreatedAt: r.CreatedAt,
		}
	})
	return c.JSON(dto.HistoryResponse{OK: true, Quizzes: quizzes})
}

// Search godoc
// @Summary Search indexed passages
// @Description Hybrid lexical and vector search over ingested chunks
// @Tags search
// @Produce json
// @Param q query string true "Query text"
// @Param size query int false "Number of hits, 0..50, 0 means the configured default"
// @Success 200 {object} dto.SearchResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /api/search [get]
func (h *QuizHandler) Search(c *fiber.Ctx) error {
	query, _ := c.Locals(middleware.LocalSearchQuery).(string)
	size, _ := c.Locals(middleware.LocalSearchSize).(int)

	hits, err := h.retrieval.Search(c.UserContext(), query, size)
	if err != nil {
		return err
	}
	return c.JSON(dto.SearchResponse{OK: true, Query: query, Hits: toSearchHits(hits)})
}

// Ask godoc
// @Summary Ask a question
// @Description Answers a free-form prompt using retrieved passages as context
// @Tags search
// @Accept json
// @Produce json
// @Param request body dto.AskRequest true "Prompt"
// @Success 200 {object} dto.AskResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /api/ask [post]
func (h *QuizHandler) Ask(c *fiber.Ctx) error {
	var req dto.AskRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}

	answer, err := h.quiz.Ask(c.UserContext(), req.Prompt)
	if err != nil {
		return err
	}
	return c.JSON(dto.AskResponse{
		OK:      true,
		Reply:   answer.Text,
		Model:   answer.Model,
		Sources: toSearchHits(answer.Sources),
	})
}

func toQuizResponse(r *domain.QuizRecord) dto.QuizResponse {
	quiz := lo.Map(r.Questions, func(q domain.QuizQuestion, _ int) dto.QuizQuestionResponse {
		return dto.QuizQuestionResponse{
			Question:    q.Question,
			Options:     q.Options,
			Answer:      q.Answer,
			Explanation: q.Explanation,
		}
	})
	return dto.QuizResponse{
		OK:        true,
		ID:        r.ID,
		Quiz:      quiz,
		Count:     len(quiz),
		Model:     r.Model,
		Topic:     r.Topic,
		DocID:     r.DocumentID,
		CreatedAt: r.CreatedAt,
	}
}

func toSearchHits(chunks []*domain.ScoredChunk) []dto.SearchHit {
	return lo.Map(chunks, func(c *domain.ScoredChunk, _ int) dto.SearchHit {
		return dto.SearchHit{
			ID:          c.ID,
			DocID:       c.DocumentID,
			Title:       c.Title,
			PageOrdinal: c.PageOrdinal,
			Text:        c.Text,
			Score:       c.Score,
		}
	})
}
