package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodefactor/accounts/pkg/authsdk"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	cfg, err := parseEnv(t, map[string]string{
		"AUTH_JWT_SECRET":       testSecret,
		"AUTH_DATABASE_FILE":    filepath.Join(dir, "accounts.db"),
		"BLOB_LOCAL_DIR":        filepath.Join(dir, "uploads"),
		"LOG_LEVEL":             "error",
		"SHUTDOWN_GRACE_PERIOD": "2s",
	})
	require.NoError(t, err)
	return cfg
}

func TestNewWiresSignupFlow(t *testing.T) {
	application, err := New(context.Background(), testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Shutdown() })

	body, err := json.Marshal(authsdk.SignupRequest{Name: "Ann", Email: "ann@x.com", Password: "secret1"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	application.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp authsdk.SignupResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	req = httptest.NewRequest(http.MethodGet, "/api/auth/validate", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	rec = httptest.NewRecorder()
	application.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	application.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestEdDSAPublishesJWKS(t *testing.T) {
	cfg := testConfig(t)
	cfg.Algorithm = AlgorithmEdDSA
	cfg.SigningKeyFile = filepath.Join(t.TempDir(), "signing.pem")

	application, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Shutdown() })

	rec := httptest.NewRecorder()
	application.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/.well-known/jwks.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var jwks authsdk.JWKSResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &jwks))
	require.Len(t, jwks.Keys, 1)
	assert.Equal(t, "OKP", jwks.Keys[0].Kty)
	assert.FileExists(t, cfg.SigningKeyFile)
}

func TestServeStopsOnCancel(t *testing.T) {
	application, err := New(context.Background(), testConfig(t))
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- application.Serve(ctx, ln) }()

	client := authsdk.NewSDKClient("http://" + ln.Addr().String())
	require.Eventually(t, func() bool {
		_, err := client.GetLiveness(context.Background())
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
