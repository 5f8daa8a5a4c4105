package middleware

import (
	"strconv"
	"strings"

	"studyhub/internal/domain"

	"github.com/gofiber/fiber/v2"
)

const (
	LocalRequesterID = "validated_requester_id"
	LocalLimit       = "validated_limit"

	maxHistoryLimit = 100
)

// ValidationMiddleware provides request validation middleware
type ValidationMiddleware struct{}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{}
}

// ValidateHistoryParams validates the requester_id and limit query parameters of the history endpoint.
// A missing limit is stored as 0 and defaulted by the service.
func (vm *ValidationMiddleware) ValidateHistoryParams() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var errs domain.ValidationErrors

		requesterID := strings.TrimSpace(c.Query("requester_id"))
		if requesterID == "" {
			errs = append(errs, domain.NewMissingFieldError("requester_id"))
		} else if len(requesterID) > 128 {
			errs = append(errs, domain.NewOutOfRangeError("requester_id", len(requesterID), 1, 128))
		}

		limit := 0
		if limitStr := c.Query("limit"); limitStr != "" {
			parsed, err := strconv.Atoi(limitStr)
			switch {
			case err != nil:
				errs = append(errs, domain.NewInvalidFormatError("limit", limitStr))
			case parsed < 1 || parsed > maxHistoryLimit:
				errs = append(errs, domain.NewOutOfRangeError("limit", parsed, 1, maxHistoryLimit))
			default:
				limit = parsed
			}
		}

		if len(errs) > 0 {
			return errs // This will be handled by ErrorHandler middleware
		}

		c.Locals(LocalRequesterID, requesterID)
		c.Locals(LocalLimit, limit)
		return c.Next()
	}
}
