package errors

import (
	"errors"
	"sort"
	"strings"
)

// Sentinel errors for handlers to map to HTTP status.
var (
	ErrUnauthorized       = errors.New("not allowed to perform this action")
	ErrAccountNotFound    = errors.New("account not found")
	ErrCannotDeleteSelf   = errors.New("cannot delete your own account")
	ErrInvalidToken       = errors.New("invalid activation link")
	ErrAlreadyActivated   = errors.New("account already activated")
	ErrAlreadyRegistered  = errors.New("an account with this email already exists; please log in")
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotActivated       = errors.New("account not activated; check your email for the activation link")
	ErrInvalidPageToken   = errors.New("invalid page token")
)

// ValidationError carries field-level problems with submitted attributes.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// AsValidation returns the ValidationError wrapped in err, if any.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
