package services

import (
	"fmt"
	"net/http"
)

// Error is a failure the client caused or is allowed to see. Handlers turn
// Status into the HTTP status and Message into the envelope's message.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

func BadRequest(message string) *Error   { return newError(http.StatusBadRequest, message) }
func Unauthorized(message string) *Error { return newError(http.StatusUnauthorized, message) }
func Forbidden(message string) *Error    { return newError(http.StatusForbidden, message) }
func NotFound(message string) *Error     { return newError(http.StatusNotFound, message) }
func Conflict(message string) *Error     { return newError(http.StatusConflict, message) }
