package service

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateEmail     = errors.New("duplicate_email")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrAccountNotFound    = errors.New("account_not_found")
	ErrInvalidCode        = errors.New("invalid_code")
	ErrCodeExpired        = errors.New("code_expired")
	ErrAlreadyVerified    = errors.New("already_verified")

	ErrUnauthenticated = errors.New("unauthenticated")
	ErrTokenExpired    = errors.New("token_expired")
	ErrTokenMalformed  = errors.New("token_malformed")
	// ErrTokenInvalid covers bad signatures, foreign algorithms and unknown keys.
	ErrTokenInvalid = errors.New("token_invalid")

	ErrForbidden        = errors.New("forbidden")
	ErrEmailNotVerified = fmt.Errorf("%w: email not verified", ErrForbidden)

	ErrNoFile           = errors.New("no_file")
	ErrUnsupportedImage = errors.New("unsupported_image")
	ErrUploadFailed     = errors.New("upload_failed")
)

// ValidationError reports missing or malformed input. Fields maps an input
// name to a message suitable for showing next to that field.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation: " + e.Message
	}
	return fmt.Sprintf("validation: %s %v", e.Message, e.Fields)
}

func invalid(message string, fields map[string]string) error {
	return &ValidationError{Message: message, Fields: fields}
}
