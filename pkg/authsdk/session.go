package authsdk

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
)

// Session performs requests on behalf of one signed-in account. Tokens are
// not refreshed; once the token expires the caller has to log in again.
type Session struct {
	client *SDKClient
	token  string
	userID string
}

func (s *Session) Token() string  { return s.token }
func (s *Session) UserID() string { return s.userID }

func (s *Session) Validate(ctx context.Context) (*ValidateResponse, error) {
	return s.client.Validate(ctx, s.token)
}

func (s *Session) CurrentUser(ctx context.Context) (*CurrentUserResponse, error) {
	resp, err := s.client.doRequest(ctx, http.MethodGet, s.client.route("/current-user"), nil, bearer(s.token))
	if err != nil {
		return nil, err
	}

	var out CurrentUserResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListUsers fetches one page of the user listing. Admin only.
func (s *Session) ListUsers(ctx context.Context, page, limit int) (*UsersPage, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := s.client.route("/allusers")
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	resp, err := s.client.doRequest(ctx, http.MethodGet, path, nil, bearer(s.token))
	if err != nil {
		return nil, err
	}

	var out UsersPage
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadProfileImage sends r as the "profileImage" multipart field.
func (s *Session) UploadProfileImage(ctx context.Context, filename string, r io.Reader) (*UploadResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("profileImage", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to write form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish form: %w", err)
	}

	headers := bearer(s.token)
	headers["Content-Type"] = mw.FormDataContentType()

	resp, err := s.client.doRequest(ctx, http.MethodPost, s.client.route("/upload-profile-image"), &buf, headers)
	if err != nil {
		return nil, err
	}

	var out UploadResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
