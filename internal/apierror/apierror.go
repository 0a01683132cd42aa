// Package apierror provides the error taxonomy and response envelopes for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

import (
	"errors"
	"net/http"
)

// Kind classifies an application error so handlers can map it to an HTTP
// status without matching on error strings.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindInvalidState
	KindNotFound
	KindPermission
	KindAlreadyRestored
)

// Error is a typed application error. Infrastructure faults (DB down, Redis
// unreachable) are never wrapped in this type — they surface as a generic
// 500 through the error-handler middleware.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string { return e.Detail }

// Validation: bad input shape or value (ex.: valor <= 0).
func Validation(detail string) *Error { return &Error{Kind: KindValidation, Detail: detail} }

// Conflict: violates a uniqueness invariant (ex.: sessão já aberta).
func Conflict(detail string) *Error { return &Error{Kind: KindConflict, Detail: detail} }

// InvalidState: operation not legal in the current state (ex.: fechar sessão já fechada).
func InvalidState(detail string) *Error { return &Error{Kind: KindInvalidState, Detail: detail} }

// NotFound: referenced entity absent.
func NotFound(detail string) *Error { return &Error{Kind: KindNotFound, Detail: detail} }

// Permission: non-admin attempting an admin-only action.
func Permission(detail string) *Error { return &Error{Kind: KindPermission, Detail: detail} }

// AlreadyRestored: restore attempted on an audit record already restored.
func AlreadyRestored(detail string) *Error { return &Error{Kind: KindAlreadyRestored, Detail: detail} }

// Status maps an error to the HTTP status the handler should respond with.
// Errors outside the taxonomy map to 500 — the middleware logs them.
func Status(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict, KindInvalidState, KindAlreadyRestored:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindPermission:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Envelope builds the response body for err, hiding internals behind a
// generic message when the error is not part of the taxonomy.
func Envelope(err error) *APIError {
	var e *Error
	if errors.As(err, &e) {
		return New(e.Detail)
	}
	return New("Erro interno do servidor")
}

// ValidationFields wraps multiple field errors.
type ValidationFields struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationFields {
	return &ValidationFields{Detail: "Erro de validação", Fields: fields}
}
