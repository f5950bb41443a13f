package handler

import (
	"context"
	"io"
	"strings"

	"quiz-byte/internal/domain"
	"quiz-byte/internal/dto"
	"quiz-byte/internal/logger"
	"quiz-byte/internal/service"
	"quiz-byte/internal/util"
	"quiz-byte/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// TextExtractor turns an uploaded file into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, filename, contentType string, content []byte) (string, error)
}

// UploadHandler handles document ingestion over HTTP
type UploadHandler struct {
	ingest    service.IngestService
	extractor TextExtractor
}

// NewUploadHandler creates a new UploadHandler instance
func NewUploadHandler(ingest service.IngestService, extractor TextExtractor) *UploadHandler {
	return &UploadHandler{ingest: ingest, extractor: extractor}
}

// Upload godoc
// @Summary Upload a document
// @Description Extracts text from a PDF or text file, chunks it and indexes the chunks
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "PDF or text file"
// @Param title formData string false "Title, defaults to the filename"
// @Param docId formData string false "Document id, generated when empty"
// @Success 200 {object} dto.UploadResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /api/upload [post]
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return domain.NewInvalidInputError("Missing file")
	}

	docID := strings.TrimSpace(c.FormValue("docId"))
	if docID == "" {
		docID = util.NewULID()
	} else if !validation.IsValidDocumentID(docID) {
		return validation.Errors{{Field: "docId", Message: "has an invalid format"}}
	}

	title := strings.TrimSpace(c.FormValue("title"))
	if title == "" {
		title = fileHeader.Filename
	}

	f, err := fileHeader.Open()
	if err != nil {
		return domain.NewInvalidInputError("Unreadable file")
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return domain.NewInvalidInputError("Unreadable file")
	}

	ctx := c.UserContext()
	text, err := h.extractor.Extract(ctx, fileHeader.Filename, fileHeader.Header.Get(fiber.HeaderContentType), content)
	if err != nil {
		return err
	}

	result, err := h.ingest.Ingest(ctx, docID, title, text)
	if err != nil {
		logger.Get().Error("Failed to ingest upload",
			zap.String("doc_id", docID),
			zap.String("filename", fileHeader.Filename),
			zap.Error(err),
		)
		return err
	}

	logger.Get().Info("Document ingested",
		zap.String("doc_id", result.DocumentID),
		zap.Int("chunks", result.ChunksIndexed),
		zap.Int("text_len", result.TextLength),
	)

	return c.JSON(dto.UploadResponse{
		OK:            true,
		DocID:         result.DocumentID,
		Title:         result.Title,
		ChunksIndexed: result.ChunksIndexed,
		TextLen:       result.TextLength,
	})
}
