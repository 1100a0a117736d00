package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Sentinel errors shared by the repository, service and HTTP layers.
var (
	ErrContactNotFound    = errors.New("contact not found")
	ErrInvalidStatus      = errors.New("invalid contact status")
	ErrStorageUnavailable = errors.New("contact storage unavailable")
)

// Error codes carried by AppError.
const (
	CodeMalformedRequest = "MALFORMED_REQUEST"
	CodeValidation       = "VALIDATION_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeInvalidStatus    = "INVALID_STATUS"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeRateLimited      = "RATE_LIMITED"
	CodeInternal         = "INTERNAL_ERROR"
)

// User-facing messages. The lead form is French.
const (
	MsgMalformedRequest = "Données invalides"
	MsgValidationFailed = "Erreurs de validation"
	MsgContactNotFound  = "Contact non trouvé"
	MsgInvalidStatus    = "Statut invalide"
	MsgInvalidID        = "Identifiant invalide"
	MsgInternal         = "Une erreur est survenue, veuillez réessayer plus tard"
)

// ErrorResponse is the envelope written for every failed request.
type ErrorResponse struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Fields  map[string]string
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

// Status maps the error code to an HTTP status.
func (e *AppError) Status() int {
	switch e.Code {
	case CodeMalformedRequest, CodeValidation, CodeInvalidStatus:
		return fiber.StatusBadRequest
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeUnauthorized:
		return fiber.StatusUnauthorized
	case CodeRateLimited:
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}

// NewMalformedRequestError reports a body that could not be decoded.
func NewMalformedRequestError() *AppError {
	return &AppError{
		Code:    CodeMalformedRequest,
		Message: MsgMalformedRequest,
	}
}

// NewInvalidIDError reports a path id that is not a positive integer.
func NewInvalidIDError() *AppError {
	return &AppError{
		Code:    CodeMalformedRequest,
		Message: MsgInvalidID,
	}
}

// NewValidationError reports per-field validation failures.
func NewValidationError(fields map[string]string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: MsgValidationFailed,
		Fields:  fields,
	}
}

// NewNotFoundError reports a missing contact.
func NewNotFoundError(id uint) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: MsgContactNotFound,
		Err:     fmt.Errorf("%w: id %d", ErrContactNotFound, id),
	}
}

// NewInvalidStatusError reports a status outside the contact lifecycle.
func NewInvalidStatusError(status string) *AppError {
	return &AppError{
		Code:    CodeInvalidStatus,
		Message: MsgInvalidStatus,
		Err:     fmt.Errorf("%w: %q", ErrInvalidStatus, status),
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewRateLimitedError() *AppError {
	return &AppError{
		Code:    CodeRateLimited,
		Message: "Trop de demandes, veuillez réessayer plus tard",
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: MsgInternal,
		Err:     err,
	}
}

// AsAppError converts any error into an AppError. Sentinel errors keep their
// meaning; anything unknown becomes an internal error.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		switch fiberErr.Code {
		case fiber.StatusNotFound:
			return &AppError{Code: CodeNotFound, Message: fiberErr.Message}
		case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
			return NewMalformedRequestError()
		}
	}
	switch {
	case errors.Is(err, ErrContactNotFound):
		return &AppError{Code: CodeNotFound, Message: MsgContactNotFound, Err: err}
	case errors.Is(err, ErrInvalidStatus):
		return &AppError{Code: CodeInvalidStatus, Message: MsgInvalidStatus, Err: err}
	default:
		return NewInternalError(err)
	}
}

// RespondWithError writes the standardized failure envelope. The wrapped
// error is never exposed to the client.
func RespondWithError(c *fiber.Ctx, err error) error {
	appErr := AsAppError(err)
	return c.Status(appErr.Status()).JSON(ErrorResponse{
		Success: false,
		Error:   appErr.Message,
		Code:    appErr.Code,
		Errors:  appErr.Fields,
	})
}

// Success messages written by the contact endpoints.
const (
	MsgContactSubmitted = "Votre demande a été envoyée avec succès"
	MsgContactUpdated   = "Demande mise à jour"
	MsgContactDeleted   = "Demande supprimée"
)

// SuccessResponse is the envelope written for successful single-item requests.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ListResponse is the envelope written for contact listings.
type ListResponse struct {
	Success bool          `json:"success"`
	Data    []ContactView `json:"data"`
	Total   int           `json:"total"`
}
