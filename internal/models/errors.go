package models

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes used across services. Handlers map these to HTTP statuses.
const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodePlanForbidden = "PLAN_FORBIDDEN"
	CodeNotFound      = "NOT_FOUND"
	CodeDependency    = "DEPENDENCY_FAILURE"
	CodeParse         = "PARSE_FAILURE"
	CodeRateLimited   = "RATE_LIMITED"
	CodeInternal      = "INTERNAL_ERROR"
)

// ErrorResponse is the uniform failure envelope returned by every endpoint.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: resource + " not found",
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

// NewPlanForbiddenError marks an operation gated behind the premium plan.
func NewPlanForbiddenError(message string) *AppError {
	return &AppError{
		Code:    CodePlanForbidden,
		Message: message,
	}
}

// NewDependencyError wraps a failed or timed-out external-service call.
func NewDependencyError(message string, err error) *AppError {
	return &AppError{
		Code:    CodeDependency,
		Message: message,
		Err:     err,
	}
}

// NewParseError marks structured output from an external service that could
// not be decoded, as distinct from the service being down.
func NewParseError(message string, err error) *AppError {
	return &AppError{
		Code:    CodeParse,
		Message: message,
		Err:     err,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// RespondWithError writes the uniform failure envelope.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	if appErr, ok := err.(*AppError); ok {
		response = ErrorResponse{
			Message: appErr.Message,
			Code:    appErr.Code,
		}
		if appErr.Err != nil {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Message: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}
