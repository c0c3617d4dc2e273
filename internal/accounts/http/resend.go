package http

import (
	"net/http"

	"github.com/kodefactor/accounts/internal/accounts/service"
	"github.com/kodefactor/accounts/pkg/authsdk"
	"github.com/kodefactor/accounts/pkg/httpx"
)

type ResendVerificationHandler struct {
	Auth *service.AuthService
}

// ServeHTTP replaces the pending verification code and mails the new one.
//
//	@Summary		Resend verification code
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.ResendVerificationRequest	true	"Account email"
//	@Success		200		{object}	authsdk.MessageResponse
//	@Failure		400		{object}	httpx.ErrorBody	"Unknown email or already verified"
//	@Failure		500		{object}	httpx.ErrorBody
//	@Router			/api/auth/resend-verification [post].
func (h *ResendVerificationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ResendVerificationRequest
	if err := readJSON(w, r, &req); err != nil {
		authsdk.ErrInvalidBody.WriteError(w)
		return
	}

	if err := h.Auth.ResendVerification(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err, authsdk.ErrNoUserWithEmail)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{
		Success: true,
		Message: "New verification code sent",
	})
}
