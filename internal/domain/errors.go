package domain

import "fmt"

// Kind classifies a domain error so callers can react without parsing messages.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindPrecondition Kind = "precondition"
	KindForbidden    Kind = "forbidden"
	KindUnauthorized Kind = "unauthorized"
	KindRateLimited  Kind = "rate_limited"
)

// Error is a domain error with a stable machine-readable code.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func NewError(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func (e *Error) Error() string {
	return e.Message
}

// Validation builds an ad-hoc validation error for malformed input.
func Validation(format string, args ...any) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    "invalid_input",
		Message: fmt.Sprintf(format, args...),
	}
}
