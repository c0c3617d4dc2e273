package authsdk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// GetLiveness checks if the service process is up.
func (c *SDKClient) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/livez", nil, nil)
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return nil, err
	}

	return &health, nil
}

// GetReadiness checks the service's dependencies. A degraded service answers
// 503; the checks are still returned alongside the error so callers can see
// which dependency failed.
func (c *SDKClient) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/readyz", nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var health HealthResponse
	if err := json.Unmarshal(body, &health); err != nil {
		return nil, parseErrorResponse(resp, body)
	}
	if resp.StatusCode != http.StatusOK {
		return &health, &APIError{
			StatusCode: resp.StatusCode,
			Code:       ErrorCodeServerError,
			Message:    "service " + health.Status,
		}
	}
	return &health, nil
}

// GetJWKS fetches the published verification keys. Services signing with
// HS256 do not serve this endpoint and the call fails with a 404.
func (c *SDKClient) GetJWKS(ctx context.Context) (*JWKSResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/.well-known/jwks.json", nil, nil)
	if err != nil {
		return nil, err
	}

	jwks := new(JWKSResponse)
	if err := decodeJSON(resp, jwks, http.StatusOK); err != nil {
		return nil, err
	}
	return jwks, nil
}
