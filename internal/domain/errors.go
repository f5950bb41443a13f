package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// Pipeline errors
	CodeMissingInput        ErrorCode = "MISSING_INPUT"
	CodeRetrievalEmpty      ErrorCode = "RETRIEVAL_EMPTY"
	CodeGenerationExhausted ErrorCode = "GENERATION_EXHAUSTED"
	CodeEmptyGeneration     ErrorCode = "EMPTY_GENERATION"
	CodeIndexUnavailable    ErrorCode = "INDEX_UNAVAILABLE"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements the json.Marshaler interface. The cause is never
// serialized so collaborator payloads stay out of responses.
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// CodeOf returns the code of the first DomainError in err's chain, or
// CodeInternal when there is none.
func CodeOf(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeInternal
}

// HasCode reports whether err carries the given domain error code.
func HasCode(err error, code ErrorCode) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(CodeInternal, message, err)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewMissingInputError() *DomainError {
	return NewError(CodeMissingInput, "Provide either topic or document", nil)
}

func NewRetrievalEmptyError(documentID string) *DomainError {
	return NewError(CodeRetrievalEmpty, fmt.Sprintf("No usable content indexed for document %q", documentID), nil)
}

// NewGenerationExhaustedError wraps the last candidate failure.
func NewGenerationExhaustedError(attempts int, lastErr error) *DomainError {
	return NewError(CodeGenerationExhausted, fmt.Sprintf("All %d model candidates failed", attempts), lastErr)
}

func NewEmptyGenerationError() *DomainError {
	return NewError(CodeEmptyGeneration, "Model output contained no valid quiz questions", nil)
}

func NewIndexUnavailableError(err error) *DomainError {
	return NewError(CodeIndexUnavailable, "Search index is unavailable", err)
}
