package http

import (
	"net/http"

	"github.com/kodefactor/accounts/internal/accounts/service"
	"github.com/kodefactor/accounts/pkg/authsdk"
	"github.com/kodefactor/accounts/pkg/httpx"
)

type VerifyHandler struct {
	Auth *service.AuthService
}

// ServeHTTP consumes a verification code.
//
//	@Summary		Verify email
//	@Description	Marks the account verified when the submitted code matches the pending one and has not expired.
//	@Description	The code may be sent as a string or a number, under verificationCode or code.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.VerifyRequest	true	"Email and code"
//	@Success		200		{object}	authsdk.VerifyResponse
//	@Failure		400		{object}	httpx.ErrorBody	"Unknown user, wrong or expired code"
//	@Failure		500		{object}	httpx.ErrorBody
//	@Router			/api/auth/verify [post].
func (h *VerifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.VerifyRequest
	if err := readJSON(w, r, &req); err != nil {
		authsdk.ErrInvalidBody.WriteError(w)
		return
	}

	sess, err := h.Auth.Verify(r.Context(), req.Email, req.SubmittedCode())
	if err != nil {
		writeServiceError(w, r, err, authsdk.ErrUserNotFound)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.VerifyResponse{
		Message: "Email verified successfully",
		Token:   sess.Token,
		UserID:  sess.Account.ID,
	})
}
