// Package apperr defines the error taxonomy shared by stores, services and handlers.
package apperr

import (
	"errors"
	"sort"
	"strings"
)

// Sentinel kinds. Match them with errors.Is.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInvalidToken    = errors.New("invalid token")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrBadRequest      = errors.New("bad request")
)

// Error pairs a sentinel kind with the message shown to the client.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// NotFound reports that the named resource does not exist.
func NotFound(message string) error {
	return &Error{Kind: ErrNotFound, Message: message}
}

// Forbidden reports an authenticated actor that may not perform the action.
func Forbidden(message string) error {
	return &Error{Kind: ErrForbidden, Message: message}
}

// BadRequest reports a request that could not be decoded.
func BadRequest(message string) error {
	return &Error{Kind: ErrBadRequest, Message: message}
}

// Unauthenticated reports a missing bearer token.
func Unauthenticated(message string) error {
	return &Error{Kind: ErrUnauthenticated, Message: message}
}

// InvalidToken reports a token that failed verification.
func InvalidToken(message string) error {
	return &Error{Kind: ErrInvalidToken, Message: message}
}

// ValidationError lists the fields that violate schema constraints.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

// Add records a message for field. The first message per field wins.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

// OrNil returns e when at least one field failed, nil otherwise.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return strings.Join(msgs, ", ")
}

// Invalid builds a single-field ValidationError.
func Invalid(field, message string) error {
	v := &ValidationError{}
	v.Add(field, message)
	return v
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
