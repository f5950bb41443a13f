package middleware

import (
	"strconv"

	"quiz-byte/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const (
	LocalSearchQuery  = "validated_query"
	LocalSearchSize   = "validated_size"
	LocalHistoryLimit = "validated_limit"
)

// ValidationMiddleware provides request validation middleware
type ValidationMiddleware struct {
	validator *validation.Validator
}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validation.NewValidator(),
	}
}

// ValidateSearchParams validates q and size for GET /api/search.
func (vm *ValidationMiddleware) ValidateSearchParams() fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := c.Query("q")
		size, err := parseIntParam(c.Query("size"))
		if err != nil {
			return validation.Errors{{Field: "size", Message: "must be a number"}}
		}

		if errs := vm.validator.ValidateSearch(query, size); len(errs) > 0 {
			return errs
		}

		c.Locals(LocalSearchQuery, query)
		c.Locals(LocalSearchSize, size)
		return c.Next()
	}
}

// ValidateHistoryParams validates limit for GET /api/quiz/history.
func (vm *ValidationMiddleware) ValidateHistoryParams() fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := parseIntParam(c.Query("limit"))
		if err != nil {
			return validation.Errors{{Field: "limit", Message: "must be a number"}}
		}

		if errs := vm.validator.ValidateHistoryLimit(limit); len(errs) > 0 {
			return errs
		}

		c.Locals(LocalHistoryLimit, limit)
		return c.Next()
	}
}

// parseIntParam treats an absent parameter as 0.
func parseIntParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
