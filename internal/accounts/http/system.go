package http

import (
	"net/http"
	"time"

	"github.com/kodefactor/accounts/internal/accounts/store"
	"github.com/kodefactor/accounts/pkg/authsdk"
	"github.com/kodefactor/accounts/pkg/httpx"
	"github.com/kodefactor/accounts/pkg/jwtx"
)

// probe carries what the health endpoints report about the process.
type probe struct {
	started time.Time
	version string
}

func (p probe) response(status string, checks *authsdk.HealthChecks) authsdk.HealthResponse {
	return authsdk.HealthResponse{
		Status:  status,
		Uptime:  time.Since(p.started).Round(time.Second).String(),
		Version: p.version,
		Checks:  checks,
	}
}

// LivezHandler godoc
//
//	@Summary		Liveness probe
//	@Description	Always 200 while the process is serving; reports uptime and build version.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	p := probe{started: startTime, version: version}
	return func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, p.response("ok", nil))
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness probe
//	@Description	Pings the database and checks the token signer. 503 when either is unhealthy.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	authsdk.HealthResponse	"service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, st store.Store, signer jwtx.Signer, keys *jwtx.KeySet) http.HandlerFunc {
	p := probe{started: startTime, version: version}
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &authsdk.HealthChecks{
			Database: checkResult(st.Ping(r.Context())),
			Signer:   checkResult(signerReady(signer, keys)),
		}

		if checks.Database != "ok" || checks.Signer != "ok" {
			httpx.WriteJSON(w, http.StatusServiceUnavailable, p.response("degraded", checks))
			return
		}
		httpx.WriteJSON(w, http.StatusOK, p.response("ok", checks))
	}
}

func signerReady(signer jwtx.Signer, keys *jwtx.KeySet) error {
	if signer == nil {
		return errNoSigner
	}
	if err := signer.Validate(); err != nil {
		return err
	}
	// An EdDSA deployment must also have something to publish.
	if keys != nil && !keys.IsReady() {
		return errNoPublicKeys
	}
	return nil
}

func checkResult(err error) string {
	if err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}

// JWKSHandler publishes the EdDSA verification keys.
//
//	@Summary		Get JWKS
//	@Description	Returns the JSON Web Key Set used to verify session tokens. Only served when tokens are signed with EdDSA.
//	@Tags			well-known
//	@Produce		json
//	@Success		200	{object}	authsdk.JWKSResponse	"The JSON Web Key Set"
//	@Router			/.well-known/jwks.json [get].
func JWKSHandler(keys *jwtx.KeySet) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, authsdk.JWKSResponse(keys.PublicJWKS()))
	}
}
