// Package apierror provides standardized error response structures for the API
// and the kinded domain errors returned by the service layer. All errors sent
// to clients go through this package to ensure consistency and to prevent
// leaking internal details (stack traces, DB errors, etc.).
package apierror

import "errors"

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Validation error", Fields: fields}
}

// ─── Domain error kinds ──────────────────────────────────────────────────────

// Kind classifies a domain failure. Callers (handlers, tests) must be able to
// tell "you may not see this" apart from "there is nothing here", so scope
// violations are never downgraded to NotFound or to an empty result set.
type Kind int

const (
	KindInvalidCredentials Kind = iota
	KindAccountInactive
	KindLocationMismatch
	KindConfiguration // data-integrity guard, e.g. a store manager with no location
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindValidation
	KindConflict // reserved for stricter evaluation-period enforcement
)

// Error is a kinded domain error with a client-safe message.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func E(kind Kind, msg string) error { return &Error{Kind: kind, Msg: msg} }

// KindOf extracts the Kind from err; ok is false when err carries no kind.
func KindOf(err error) (Kind, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return 0, false
}

// Is reports whether err is a domain error of the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
