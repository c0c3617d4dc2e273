package authsdk

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kodefactor/accounts/pkg/jwtx"
)

// ============================================================================
// Credential Types
// ============================================================================

// SignupRequest is the body of POST /signup.
type SignupRequest struct {
	Name     string `json:"name" example:"Ann"`
	Email    string `json:"email" example:"ann@example.com"`
	Password string `json:"password" example:"secret1"`
}

// SignupResponse is returned with 201 Created after a successful signup. The
// account still has to be verified with the mailed code.
type SignupResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message" example:"User created successfully. Please verify your email."`
	Token   string `json:"token"`
	UserID  string `json:"userId"`
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email" example:"ann@example.com"`
	Password string `json:"password" example:"secret1"`
}

// LoginResponse carries the session token for the account.
type LoginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

// VerificationCode accepts a code sent either as a JSON string or a number.
type VerificationCode string

func (c *VerificationCode) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*c = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*c = VerificationCode(str)
		return nil
	}
	if _, err := strconv.ParseUint(s, 10, 64); err != nil {
		return fmt.Errorf("verification code must be a string or a whole number")
	}
	*c = VerificationCode(s)
	return nil
}

// VerifyRequest is the body of POST /verify. Code is accepted as an alias of
// VerificationCode.
type VerifyRequest struct {
	Email            string           `json:"email" example:"ann@example.com"`
	VerificationCode VerificationCode `json:"verificationCode,omitempty" swaggertype:"string" example:"123456"`
	Code             VerificationCode `json:"code,omitempty" swaggertype:"string"`
}

// SubmittedCode returns whichever code field was set.
func (r VerifyRequest) SubmittedCode() string {
	if r.VerificationCode != "" {
		return string(r.VerificationCode)
	}
	return string(r.Code)
}

// VerifyResponse is returned once the email is verified, with a fresh token.
type VerifyResponse struct {
	Message string `json:"message" example:"Email verified successfully"`
	Token   string `json:"token"`
	UserID  string `json:"userId"`
}

// ResendVerificationRequest is the body of POST /resend-verification.
type ResendVerificationRequest struct {
	Email string `json:"email" example:"ann@example.com"`
}

// MessageResponse is a plain success acknowledgement.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ValidateResponse is the result of GET /validate. Failures carry Valid=false
// and a message saying why.
type ValidateResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// ============================================================================
// Directory Types
// ============================================================================

// UserSummary is one entry in the user listing. It never carries secrets.
type UserSummary struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Role          string    `json:"role" example:"user"`
	EmailVerified bool      `json:"emailVerified"`
	ProfileImage  string    `json:"profileImage,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// UsersPage is returned from GET /allusers.
type UsersPage struct {
	Users       []UserSummary `json:"users"`
	TotalUsers  int           `json:"totalUsers"`
	TotalPages  int           `json:"totalPages"`
	CurrentPage int           `json:"currentPage"`
}

// CurrentUserResponse is returned from GET /current-user.
type CurrentUserResponse struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	ProfileImage  string `json:"profileImage"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"emailVerified"`
}

// UploadResponse is returned from POST /upload-profile-image.
type UploadResponse struct {
	Message   string `json:"message" example:"Image uploaded successfully"`
	ImagePath string `json:"imagePath"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the status of the dependencies readyz looks at.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}

// JWKSResponse contains the JSON Web Key Set published when tokens are
// signed with EdDSA.
type JWKSResponse jwtx.JWKS
