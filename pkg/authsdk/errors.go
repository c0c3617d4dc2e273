package authsdk

import (
	"encoding/json"
	"fmt"
	"maps"
	"net/http"

	"github.com/kodefactor/accounts/pkg/httpx"
)

// Error codes carried in the "error" field of every failure body.
const (
	ErrorCodeInvalidRequest     = "invalid_request"
	ErrorCodeValidation         = "validation_failed"
	ErrorCodeDuplicateEmail     = "duplicate_email"
	ErrorCodeInvalidCredentials = "invalid_credentials"
	ErrorCodeNotFound           = "not_found"
	ErrorCodeInvalidCode        = "invalid_code"
	ErrorCodeCodeExpired        = "code_expired"
	ErrorCodeAlreadyVerified    = "already_verified"
	ErrorCodeUnauthenticated    = "unauthenticated"
	ErrorCodeInvalidToken       = "invalid_token"
	ErrorCodeForbidden          = "forbidden"
	ErrorCodeNoFile             = "no_file"
	ErrorCodeUnsupportedMedia   = "unsupported_media_type"
	ErrorCodeServerError        = "server_error"
)

// APIError is the failure body of the accounts API. Handlers use it to write
// responses and the client returns it for any non-success status.
type APIError struct {
	StatusCode int               `json:"-"`
	Code       string            `json:"error"`
	Message    string            `json:"message"`
	Errors     map[string]string `json:"errors,omitempty"`
}

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("%d %s: %s %v", e.StatusCode, e.Code, e.Message, e.Errors)
}

// WriteError writes e as a JSON response with success=false.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	httpx.WriteJSON(w, e.StatusCode, httpx.ErrorBody{
		Success: false,
		Message: e.Message,
		Error:   e.Code,
		Errors:  e.Errors,
	})
}

// WithErrors returns a copy of e carrying per-field messages.
func (e *APIError) WithErrors(fields map[string]string) *APIError {
	cp := *e
	cp.Errors = maps.Clone(fields)
	return &cp
}

// WithMessage returns a copy of e with a different message.
func (e *APIError) WithMessage(msg string) *APIError {
	cp := *e
	cp.Message = msg
	return &cp
}

func NewAPIError(statusCode int, code, message string) *APIError {
	return &APIError{StatusCode: statusCode, Code: code, Message: message}
}

// ============================================================================
// Predefined Errors
// ============================================================================

var (
	ErrInvalidBody = NewAPIError(http.StatusBadRequest, ErrorCodeInvalidRequest, "Invalid request body")

	ErrInvalidCredentials = NewAPIError(http.StatusBadRequest, ErrorCodeInvalidCredentials, "Invalid credentials")

	// ErrDuplicateEmail stays a 400 so existing clients that only look for
	// 400 on signup keep working.
	ErrDuplicateEmail = NewAPIError(http.StatusBadRequest, ErrorCodeDuplicateEmail, "Registration failed").
				WithErrors(map[string]string{"email": "Email already exists"})

	ErrUserNotFound    = NewAPIError(http.StatusBadRequest, ErrorCodeNotFound, "User not found")
	ErrNoUserWithEmail = NewAPIError(http.StatusBadRequest, ErrorCodeNotFound, "No user found with this email")
	ErrProfileNotFound = NewAPIError(http.StatusNotFound, ErrorCodeNotFound, "User not found")

	ErrInvalidCode     = NewAPIError(http.StatusBadRequest, ErrorCodeInvalidCode, "Invalid verification code")
	ErrCodeExpired     = NewAPIError(http.StatusBadRequest, ErrorCodeCodeExpired, "Verification code expired")
	ErrAlreadyVerified = NewAPIError(http.StatusBadRequest, ErrorCodeAlreadyVerified, "Email already verified")

	ErrNoToken          = NewAPIError(http.StatusUnauthorized, ErrorCodeUnauthenticated, "No token provided")
	ErrTokenExpired     = NewAPIError(http.StatusUnauthorized, ErrorCodeInvalidToken, "Token expired")
	ErrInvalidToken     = NewAPIError(http.StatusUnauthorized, ErrorCodeInvalidToken, "Invalid token")
	ErrSessionNotFound  = NewAPIError(http.StatusUnauthorized, ErrorCodeInvalidToken, "User not found")
	ErrAccessDenied     = NewAPIError(http.StatusForbidden, ErrorCodeForbidden, "Access denied")
	ErrEmailNotVerified = NewAPIError(http.StatusForbidden, ErrorCodeForbidden, "Email not verified")

	ErrNoFile           = NewAPIError(http.StatusBadRequest, ErrorCodeNoFile, "No file uploaded")
	ErrUnsupportedImage = NewAPIError(http.StatusUnsupportedMediaType, ErrorCodeUnsupportedMedia, "Only JPEG, PNG, GIF or WebP images are accepted")
	ErrFileTooLarge     = NewAPIError(http.StatusRequestEntityTooLarge, ErrorCodeInvalidRequest, "File too large")

	ErrServerError = NewAPIError(http.StatusInternalServerError, ErrorCodeServerError, "Server error")
)

// parseErrorResponse turns a non-success response into an *APIError. Bodies
// that are not JSON still produce an error keyed on the status code.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && (apiErr.Message != "" || apiErr.Code != "") {
		apiErr.StatusCode = resp.StatusCode
		return &apiErr
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       ErrorCodeServerError,
		Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
