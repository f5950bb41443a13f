package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MaxTopicLength    = 500
	MaxQueryLength    = 1000
	MaxSearchSize     = 50
	MaxHistoryLimit   = 100
	maxDocumentIDSize = 128
)

var documentIDRe = regexp.MustCompile(`^[A-Za-z0-9._:-]+$`)

// FieldError describes one invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors collects every invalid field of a request.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func missing(field string) FieldError {
	return FieldError{Field: field, Message: "is required"}
}

func outOfRange(field string, value, min, max int) FieldError {
	return FieldError{Field: field, Message: fmt.Sprintf("must be between %d and %d, got %d", min, max, value)}
}

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateGenerateQuiz checks field formats only. A request with neither
// topic nor document is left to the pipeline, which reports it as missing
// input.
func (v *Validator) ValidateGenerateQuiz(topic, documentID string) Errors {
	var errs Errors
	if utf8.RuneCountInString(topic) > MaxTopicLength {
		errs = append(errs, FieldError{Field: "topic", Message: fmt.Sprintf("must be at most %d characters", MaxTopicLength)})
	}
	if id := strings.TrimSpace(documentID); id != "" && !IsValidDocumentID(id) {
		errs = append(errs, FieldError{Field: "docId", Message: "has an invalid format"})
	}
	return errs
}

// ValidateSearch checks a search query and its optional size (0 = default).
func (v *Validator) ValidateSearch(query string, size int) Errors {
	var errs Errors
	switch q := strings.TrimSpace(query); {
	case q == "":
		errs = append(errs, missing("q"))
	case utf8.RuneCountInString(q) > MaxQueryLength:
		errs = append(errs, FieldError{Field: "q", Message: fmt.Sprintf("must be at most %d characters", MaxQueryLength)})
	}
	if size < 0 || size > MaxSearchSize {
		errs = append(errs, outOfRange("size", size, 0, MaxSearchSize))
	}
	return errs
}

// ValidateHistoryLimit accepts 0 (default) through MaxHistoryLimit.
func (v *Validator) ValidateHistoryLimit(limit int) Errors {
	if limit < 0 || limit > MaxHistoryLimit {
		return Errors{outOfRange("limit", limit, 0, MaxHistoryLimit)}
	}
	return nil
}

// IsValidDocumentID accepts ULIDs and the ids earlier uploads used.
func IsValidDocumentID(s string) bool {
	return len(s) <= maxDocumentIDSize && documentIDRe.MatchString(s)
}
