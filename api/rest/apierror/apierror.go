// Package apierror defines the structured error body every REST
// endpoint returns: a stable machine-readable code plus a human
// message, so the dashboard can branch on codes without parsing
// prose.
package apierror

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/strontium-cloud/strontium/pkg/log"
)

// Stable error codes surfaced to API consumers.
const (
	CodeInvalidRequest    = "invalid_request"
	CodeInvalidTimezone   = "invalid_timezone"
	CodeInvalidRecurrence = "invalid_recurrence"
	CodeRunAtPast         = "run_at_past"
	CodeNotFound          = "not_found"
	CodeImmutableState    = "immutable_state"
	CodeInternal          = "internal"
)

type Error struct {
	HTTPStatus int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

func New(status int, code, message string) *Error {
	return &Error{HTTPStatus: status, Code: code, Message: message}
}

func BadRequest(code, message string) *Error {
	return New(http.StatusBadRequest, code, message)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, CodeNotFound, message)
}

func Conflict(message string) *Error {
	return New(http.StatusConflict, CodeImmutableState, message)
}

// Respond writes err as a structured JSON body. Unclassified errors
// become opaque 500s; their detail goes to the log, not the client.
func Respond(c echo.Context, err error) error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return c.JSON(apiErr.HTTPStatus, apiErr)
	}

	log.Error("unhandled api error",
		"path", c.Request().URL.Path,
		"error", err,
	)
	return c.JSON(http.StatusInternalServerError, &Error{
		Code:    CodeInternal,
		Message: "internal server error",
	})
}
