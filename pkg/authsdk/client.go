package authsdk

import (
	"net/http"
	"strings"
	"time"
)

// DefaultRoutePrefix is where the service mounts its account routes.
const DefaultRoutePrefix = "/api/auth"

// SDKClient is a client for the accounts service. It performs the public
// operations and hands out Sessions for the authenticated ones.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// Prefix is prepended to account routes. Health and JWKS routes live at
	// the root and ignore it.
	Prefix string
}

// NewSDKClient creates a client for the service at baseURL.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		Prefix: DefaultRoutePrefix,
	}
}

// NewSession wraps an existing token, for example one kept by a browser.
func (c *SDKClient) NewSession(token string) *Session {
	return &Session{client: c, token: token}
}
