// Package apperror defines the service's error taxonomy and the top-level
// HTTP boundary that maps it to responses.
package apperror

import (
	"context"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Kind classifies an error for status mapping and retry hints.
type Kind int

const (
	KindUnknown Kind = iota
	KindNetwork
	KindAuth
	KindPermission
	KindValidation
	KindTimeout
	KindNotFound
	KindConflict
	KindInternal
)

// kindInfo is the canned user-facing message and retry hint per kind.
var kindInfo = map[Kind]struct {
	status    int
	message   string
	retryable bool
}{
	KindUnknown:    {http.StatusInternalServerError, "Something went wrong. Please try again.", true},
	KindNetwork:    {http.StatusBadGateway, "A network error occurred. Please check your connection and try again.", true},
	KindAuth:       {http.StatusUnauthorized, "Your session has expired. Please sign in again.", false},
	KindPermission: {http.StatusForbidden, "You don't have permission to do that.", false},
	KindValidation: {http.StatusBadRequest, "The request was invalid.", false},
	KindTimeout:    {http.StatusGatewayTimeout, "The operation timed out. Please try again.", true},
	KindNotFound:   {http.StatusNotFound, "The requested resource was not found.", false},
	KindConflict:   {http.StatusConflict, "The resource already exists.", false},
	KindInternal:   {http.StatusInternalServerError, "Something went wrong. Please try again.", true},
}

// Error is the unit of the taxonomy. Message is safe to show to users; Err
// carries the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
	// ID is attached to internal errors so a user report can be matched to
	// a log line.
	ID string
	// Meta carries structured extras (plan usage, upgrade hints) for the
	// response payload.
	Meta map[string]interface{}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Status returns the HTTP status for the error's kind.
func (e *Error) Status() int {
	if info, ok := kindInfo[e.Kind]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// Retryable reports whether the client may usefully retry.
func (e *Error) Retryable() bool {
	if info, ok := kindInfo[e.Kind]; ok {
		return info.retryable
	}
	return false
}

// WithMeta attaches structured extras and returns the error for chaining.
func (e *Error) WithMeta(meta map[string]interface{}) *Error {
	e.Meta = meta
	return e
}

// New builds an error with a caller-supplied user-facing message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a cause to a new taxonomy error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Message returns the canned user-facing message for a kind.
func Message(kind Kind) string {
	return kindInfo[kind].message
}

// FromError classifies an arbitrary error into the taxonomy. Already
// classified errors pass through; common sentinels from the stack are
// recognized; everything else becomes an internal error with a generated id.
func FromError(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return Wrap(KindNotFound, Message(KindNotFound), err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return Wrap(KindConflict, Message(KindConflict), err)
	case errors.Is(err, context.DeadlineExceeded):
		return Wrap(KindTimeout, Message(KindTimeout), err)
	case errors.Is(err, context.Canceled):
		return Wrap(KindNetwork, Message(KindNetwork), err)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		e := Wrap(KindUnknown, fiberErr.Message, err)
		if fiberErr.Code == fiber.StatusNotFound {
			e.Kind = KindNotFound
		}
		return e
	}

	e := Wrap(KindInternal, Message(KindInternal), err)
	e.ID = uuid.NewString()
	return e
}

type errorBody struct {
	Success   bool                   `json:"success"`
	Error     string                 `json:"error"`
	Retryable bool                   `json:"retryable"`
	ErrorID   string                 `json:"error_id,omitempty"`
	Meta      map[string]interface{} `json:"meta,omitempty"`
}

// Handler is the Fiber error handler: the single place errors become HTTP
// responses. Internal errors are logged with their generated id so user
// reports can be correlated.
func Handler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		appErr := FromError(err)

		if appErr.Status() >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("error_id", appErr.ID),
				zap.Error(err),
			)
		}

		return c.Status(appErr.Status()).JSON(errorBody{
			Success:   false,
			Error:     appErr.Message,
			Retryable: appErr.Retryable(),
			ErrorID:   appErr.ID,
			Meta:      appErr.Meta,
		})
	}
}
