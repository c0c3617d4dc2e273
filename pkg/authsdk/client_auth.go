package authsdk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Signup registers an account. The returned token is usable straight away
// but the account stays unverified until Verify succeeds.
func (c *SDKClient) Signup(ctx context.Context, req SignupRequest) (*SignupResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, c.route("/signup"), req, nil)
	if err != nil {
		return nil, err
	}

	var out SignupResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *SDKClient) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, c.route("/login"), LoginRequest{Email: email, Password: password}, nil)
	if err != nil {
		return nil, err
	}

	var out LoginResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// AuthenticateWithPassword logs in and returns a Session for the account.
func (c *SDKClient) AuthenticateWithPassword(ctx context.Context, email, password string) (*Session, error) {
	out, err := c.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return &Session{client: c, token: out.Token, userID: out.UserID}, nil
}

func (c *SDKClient) Verify(ctx context.Context, email, code string) (*VerifyResponse, error) {
	req := VerifyRequest{Email: email, VerificationCode: VerificationCode(code)}
	resp, err := c.doJSON(ctx, http.MethodPost, c.route("/verify"), req, nil)
	if err != nil {
		return nil, err
	}

	var out VerifyResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *SDKClient) ResendVerification(ctx context.Context, email string) (*MessageResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, c.route("/resend-verification"), ResendVerificationRequest{Email: email}, nil)
	if err != nil {
		return nil, err
	}

	var out MessageResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Validate asks the service whether token is a live session. A rejected
// token is not an error: the response has Valid=false and the reason.
func (c *SDKClient) Validate(ctx context.Context, token string) (*ValidateResponse, error) {
	var headers map[string]string
	if token != "" {
		headers = bearer(token)
	}
	resp, err := c.doRequest(ctx, http.MethodGet, c.route("/validate"), nil, headers)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusUnauthorized, http.StatusForbidden:
		var out ValidateResponse
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		return &out, nil
	default:
		return nil, parseErrorResponse(resp, body)
	}
}
