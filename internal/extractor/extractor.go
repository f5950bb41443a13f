// Package extractor turns uploaded files into plain text.
package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"quiz-byte/internal/domain"
)

const pdfTool = "pdftotext"

// MsgUnreadablePDF is the client-facing message for PDFs no reader could parse.
const MsgUnreadablePDF = "Could not read PDF"

// ErrPDFToolNotFound is returned when the pdftotext fallback is unavailable.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH (install poppler-utils)")

// CommandRunner runs an external program and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Extractor handles plain text directly. PDFs are read in-process and fall
// back to pdftotext when the reader fails or finds no text.
type Extractor struct {
	readPDF  func([]byte) (string, error)
	runner   CommandRunner
	lookPath func(string) (string, error)
	logger   *zap.Logger
}

func New(logger *zap.Logger) *Extractor {
	return &Extractor{readPDF: readPDFText, runner: execRunner{}, lookPath: exec.LookPath, logger: logger}
}

// NewWithRunner uses runner for the fallback and assumes the tool is installed.
func NewWithRunner(runner CommandRunner) *Extractor {
	return &Extractor{readPDF: readPDFText, runner: runner, logger: zap.NewNop()}
}

// CheckAvailable reports whether the pdftotext fallback can be found.
func CheckAvailable() error {
	if _, err := exec.LookPath(pdfTool); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// IsPDF sniffs the declared type, the extension and the magic bytes.
func IsPDF(filename, contentType string, content []byte) bool {
	return strings.HasPrefix(contentType, "application/pdf") ||
		strings.EqualFold(filepath.Ext(filename), ".pdf") ||
		bytes.HasPrefix(content, []byte("%PDF-"))
}

// Extract returns the text of an uploaded file.
func (e *Extractor) Extract(ctx context.Context, filename, contentType string, content []byte) (string, error) {
	if len(content) == 0 {
		return "", domain.NewInvalidInputError("Uploaded file is empty")
	}

	var text string
	switch {
	case IsPDF(filename, contentType, content):
		out, err := e.extractPDF(ctx, filename, content)
		if err != nil {
			return "", err
		}
		text = out
	case utf8.Valid(content):
		text = string(content)
	default:
		return "", domain.NewInvalidInputError(fmt.Sprintf("Unsupported file type %q", contentType))
	}

	if strings.TrimSpace(text) == "" {
		return "", domain.NewInvalidInputError("No extractable text in file")
	}
	return text, nil
}

func (e *Extractor) extractPDF(ctx context.Context, filename string, content []byte) (string, error) {
	text, readErr := e.readPDF(content)
	if readErr == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}
	if readErr != nil {
		e.logger.Debug("pdf reader failed, trying pdftotext",
			zap.String("filename", filename),
			zap.Error(readErr),
		)
	}

	if e.lookPath != nil {
		if _, err := e.lookPath(pdfTool); err != nil {
			if readErr != nil {
				e.logger.Warn("pdf unreadable and pdftotext unavailable",
					zap.String("filename", filename),
					zap.Error(readErr),
				)
				return "", domain.NewError(domain.CodeInvalidInput, MsgUnreadablePDF, ErrPDFToolNotFound)
			}
			// Reader succeeded with no text; Extract reports it as empty.
			return text, nil
		}
	}

	out, err := e.runPDFTool(ctx, content)
	if err != nil {
		e.logger.Warn("pdftotext failed",
			zap.String("filename", filename),
			zap.NamedError("reader_error", readErr),
			zap.Error(err),
		)
		return "", domain.NewInvalidInputError(MsgUnreadablePDF)
	}
	return out, nil
}

func (e *Extractor) runPDFTool(ctx context.Context, content []byte) (string, error) {
	tmp, err := os.CreateTemp("", "upload-*.pdf")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	out, err := e.runner.Run(ctx, pdfTool, "-enc", "UTF-8", "-layout", tmp.Name(), "-")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// readPDFText extracts the plain text of every page. The reader panics on
// some malformed inputs, so panics are turned into errors.
func readPDFText(content []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", err
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
