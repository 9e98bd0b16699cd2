// Package apperror defines the error taxonomy shared by the domain services
// and the HTTP boundary. Services return these sentinels (usually wrapped with
// %w and context); handlers translate them into structured JSON responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

var (
	// ErrNotFound indicates an unknown identifier.
	ErrNotFound = errors.New("not found")
	// ErrFieldInUse indicates a delete attempted on a field definition that
	// already has recorded values; callers must deactivate instead.
	ErrFieldInUse = errors.New("field definition has recorded values")
	// ErrFieldMismatch indicates a value submitted against a field that does
	// not belong to the target detail's exam.
	ErrFieldMismatch = errors.New("field does not belong to exam")
	// ErrValidation indicates input that cannot be coerced to the field type.
	ErrValidation = errors.New("validation failed")
	// ErrConflictDuplicate indicates a unique-constraint violation.
	ErrConflictDuplicate = errors.New("duplicate value")
	// ErrCycle indicates a composite exam child reference that would create a
	// cycle in the composition graph.
	ErrCycle = errors.New("exam composition cycle")
)

// Response is the JSON body returned for any domain error.
type Response struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// NotFoundf wraps ErrNotFound with a formatted message.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// Duplicatef wraps ErrConflictDuplicate naming the offending field.
func Duplicatef(field string) error {
	return fmt.Errorf("%s already exists: %w", field, ErrConflictDuplicate)
}

// Status maps a domain error to its HTTP status code.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflictDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrFieldInUse), errors.Is(err, ErrCycle):
		return http.StatusConflict
	case errors.Is(err, ErrFieldMismatch), errors.Is(err, ErrValidation):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// ToHTTP converts a service error into an echo HTTPError carrying a Response
// body. Unrecognized errors become opaque 500s so internals do not leak.
func ToHTTP(err error) error {
	status := Status(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	return echo.NewHTTPError(status, Response{Status: status, Message: msg})
}
