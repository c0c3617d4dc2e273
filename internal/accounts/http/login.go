package http

import (
	"net/http"

	"github.com/kodefactor/accounts/internal/accounts/service"
	"github.com/kodefactor/accounts/pkg/authsdk"
	"github.com/kodefactor/accounts/pkg/httpx"
)

type LoginHandler struct {
	Auth *service.AuthService
}

// ServeHTTP exchanges an email and password for a session token.
//
//	@Summary		Log in
//	@Description	Checks the password and returns a session token. Unknown emails and wrong passwords get the same answer.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.LoginResponse
//	@Failure		400		{object}	httpx.ErrorBody	"Missing fields or invalid credentials"
//	@Failure		500		{object}	httpx.ErrorBody
//	@Router			/api/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if err := readJSON(w, r, &req); err != nil {
		authsdk.ErrInvalidBody.WriteError(w)
		return
	}

	sess, err := h.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err, authsdk.ErrInvalidCredentials)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.LoginResponse{
		Token:  sess.Token,
		UserID: sess.Account.ID,
	})
}
