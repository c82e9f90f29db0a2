// Package apperr defines the application failure taxonomy and the single
// place where failures are turned into HTTP responses. Handlers and
// services signal a kind, never a status code.
package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/avmusatov/tunebase/internal/logger"
)

// Kind classifies a failure. The zero value is KindUnexpected so that an
// unclassified error always surfaces as a 500.
type Kind int

const (
	KindUnexpected Kind = iota
	KindBadRequest
	KindUnauthenticated
	KindForbidden
	KindNotFound
)

// Error carries a failure kind together with a client-safe message.
// The wrapped error, if any, is for logs only.
type Error struct {
	kind    Kind
	message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}
	return e.message
}

func (e *Error) Unwrap() error { return e.err }

// Kind returns the failure classification of e.
func (e *Error) Kind() Kind { return e.kind }

// New creates a classified error with a client-visible message.
func New(kind Kind, message string) *Error {
	return &Error{kind: kind, message: message}
}

// Newf is New with fmt.Sprintf formatting of the message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{kind: kind, message: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error. The message is what the client
// sees; err is preserved for errors.Is/As and logging.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{kind: kind, message: message, err: err}
}

// BadRequest is shorthand for New(KindBadRequest, message).
func BadRequest(message string) *Error { return New(KindBadRequest, message) }

// Unauthenticated is shorthand for New(KindUnauthenticated, message).
func Unauthenticated(message string) *Error { return New(KindUnauthenticated, message) }

// Forbidden is shorthand for New(KindForbidden, message).
func Forbidden(message string) *Error { return New(KindForbidden, message) }

// NotFound builds the canonical "<resource> not found" error.
func NotFound(resource string) *Error {
	return Newf(KindNotFound, "%s not found", resource)
}

// Response is the uniform error body returned to clients.
type Response struct {
	Error      string `json:"error"`
	StatusCode int    `json:"status_code"`
}

func statusOf(kind Kind) int {
	switch kind {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// WriteError normalizes err into the uniform JSON error shape and writes
// it to response. Unclassified errors become 500 with a generic message;
// their detail goes to the log, never to the client.
func WriteError(response http.ResponseWriter, err error) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = Wrap(KindUnexpected, "internal server error", err)
	}

	status := statusOf(appErr.kind)

	message := appErr.message
	if appErr.kind == KindUnexpected {
		logger.Log.Errorln("unexpected error:", appErr.Error())
		message = "internal server error"
	}

	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(status)
	if encodeErr := json.NewEncoder(response).Encode(Response{
		Error:      message,
		StatusCode: status,
	}); encodeErr != nil {
		logger.Log.Debugln("error encoding the error response:", encodeErr)
	}
}
