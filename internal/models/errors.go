// Package models contains the persistent entities and shared error
// taxonomy for the threadloom core.
package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
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

// Error codes used across the core. Store-level errors are wrapped once
// at the store boundary and then propagate unchanged.
const (
	CodeNotFound            = "NOT_FOUND"
	CodeValidation          = "VALIDATION_ERROR"
	CodePartialFailure      = "PARTIAL_FAILURE"
	CodeStructuralIntegrity = "STRUCTURAL_INTEGRITY"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeInternal            = "INTERNAL_ERROR"
)

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
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

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// NewStructuralIntegrityError reports a corrupted reference graph, such
// as a cycle discovered during descendant traversal or a back-reference
// to a nonexistent entity.
func NewStructuralIntegrityError(message string) *AppError {
	return &AppError{
		Code:    CodeStructuralIntegrity,
		Message: message,
	}
}

// PartialFailureError is raised when cascade deletion removed the message
// records but one or more back-reference prunes did not complete. The
// deletion itself is idempotent, so a retry can finish the pruning.
type PartialFailureError struct {
	// FailedPrunes lists "kind/id" targets whose owned-set prune failed.
	FailedPrunes []string
	Err          error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("cascade deletion incomplete, pruning failed for [%s]: %v",
		strings.Join(e.FailedPrunes, ", "), e.Err)
}

func (e *PartialFailureError) Unwrap() error {
	return e.Err
}

// Code returns the taxonomy code so the HTTP layer can map it uniformly.
func (e *PartialFailureError) Code() string { return CodePartialFailure }

// IsNotFound reports whether err is (or wraps) a NOT_FOUND AppError.
func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == CodeNotFound
}

// IsPartialFailure reports whether err is (or wraps) a cascade partial failure.
func IsPartialFailure(err error) bool {
	var pf *PartialFailureError
	return errors.As(err, &pf)
}

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	var appErr *AppError
	var pfErr *PartialFailureError
	switch {
	case errors.As(err, &appErr):
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
		if appErr.Err != nil {
			response.Details = appErr.Err.Error()
		}
	case errors.As(err, &pfErr):
		response = ErrorResponse{
			Error:   "Deletion completed partially; retry to finish pruning",
			Code:    pfErr.Code(),
			Details: pfErr.Error(),
		}
	default:
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}

// StatusForError maps the error taxonomy to an HTTP status code.
func StatusForError(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case CodeNotFound:
			return fiber.StatusNotFound
		case CodeValidation:
			return fiber.StatusBadRequest
		case CodeUnauthorized:
			return fiber.StatusUnauthorized
		case CodeStructuralIntegrity:
			return fiber.StatusConflict
		}
	}
	if IsPartialFailure(err) {
		return fiber.StatusMultiStatus
	}
	return fiber.StatusInternalServerError
}
