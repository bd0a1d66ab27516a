package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is the API error taxonomy: a numeric status, a short title, and a
// human-readable detail message. Errors are built at the point of detection
// and rendered by a single boundary responder.
type Error struct {
	Status int    `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Title, e.Detail)
}

// New creates an Error with an explicit status and title.
func New(status int, title, detail string) *Error {
	return &Error{Status: status, Title: title, Detail: detail}
}

func BadRequest(detail string) *Error {
	return New(http.StatusBadRequest, "Bad Request", detail)
}

func Unauthorized(detail string) *Error {
	return New(http.StatusUnauthorized, "Unauthorized", detail)
}

func Forbidden(detail string) *Error {
	return New(http.StatusForbidden, "Forbidden", detail)
}

func NotFound(title, detail string) *Error {
	return New(http.StatusNotFound, title, detail)
}

func Conflict(title, detail string) *Error {
	return New(http.StatusConflict, title, detail)
}

// From extracts an *Error from err, or wraps it as a generic 500 so storage
// and other transient failures never leak internals to the client.
func From(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return New(http.StatusInternalServerError, "Internal Server Error", "Something went wrong.")
}
