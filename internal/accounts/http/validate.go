package http

import (
	"log/slog"
	"net/http"

	"github.com/kodefactor/accounts/internal/accounts/service"
	"github.com/kodefactor/accounts/pkg/authsdk"
	"github.com/kodefactor/accounts/pkg/httpx"
	"github.com/kodefactor/accounts/pkg/slogx"
)

// ValidateHandler is the authoritative session check for client-side route
// guards. It answers with a validity flag rather than the error body.
type ValidateHandler struct {
	Auth *service.AuthService
}

// ServeHTTP reports whether the bearer token is a live session.
//
//	@Summary		Validate session
//	@Description	Verifies the bearer token and confirms the account still exists.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.ValidateResponse	"valid=true"
//	@Failure		401	{object}	authsdk.ValidateResponse	"No token, expired, invalid or unknown account"
//	@Failure		403	{object}	authsdk.ValidateResponse	"Email not verified"
//	@Failure		500	{object}	authsdk.ValidateResponse
//	@Router			/api/auth/validate [get].
func (h *ValidateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token, _ := httpx.BearerToken(r)

	if _, err := h.Auth.ValidateSession(r.Context(), token); err != nil {
		apiErr := apiError(err, authsdk.ErrSessionNotFound)
		if apiErr.StatusCode >= http.StatusInternalServerError {
			slogx.FromContext(r.Context()).Error("session validation failed", slog.Any("err", err))
		}
		httpx.WriteJSON(w, apiErr.StatusCode, authsdk.ValidateResponse{
			Valid:   false,
			Message: apiErr.Message,
		})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.ValidateResponse{Valid: true})
}
