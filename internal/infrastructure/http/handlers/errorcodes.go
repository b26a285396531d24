package handlers

// API error codes returned in JSON { "error": "...", "code": "..." } for stable client handling.
const (
	ErrCodeInvalidRequest     = "invalid_request"
	ErrCodeUnauthorized       = "unauthorized"
	ErrCodeNotFound           = "not_found"
	ErrCodeValidationFailed   = "validation_failed"
	ErrCodeCannotDeleteSelf   = "cannot_delete_self"
	ErrCodeInvalidToken       = "invalid_token"
	ErrCodeAlreadyActivated   = "already_activated"
	ErrCodeAlreadyRegistered  = "already_registered"
	ErrCodeInvalidCredentials = "invalid_credentials"
	ErrCodeNotActivated       = "not_activated"
	ErrCodeInternal           = "internal_error"
)
