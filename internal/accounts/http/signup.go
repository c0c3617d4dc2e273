package http

import (
	"net/http"

	"github.com/kodefactor/accounts/internal/accounts/service"
	"github.com/kodefactor/accounts/pkg/authsdk"
	"github.com/kodefactor/accounts/pkg/httpx"
)

type SignupHandler struct {
	Auth *service.AuthService
}

// ServeHTTP registers a new account and mails it a verification code.
//
//	@Summary		Sign up
//	@Description	Creates an unverified account with role user, mails a 6-digit verification code and returns a session token.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.SignupRequest	true	"Name, email and password (at least 6 characters)"
//	@Success		201		{object}	authsdk.SignupResponse
//	@Failure		400		{object}	httpx.ErrorBody	"Missing fields, short password or duplicate email"
//	@Failure		500		{object}	httpx.ErrorBody
//	@Router			/api/auth/signup [post].
func (h *SignupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.SignupRequest
	if err := readJSON(w, r, &req); err != nil {
		authsdk.ErrInvalidBody.WriteError(w)
		return
	}

	sess, err := h.Auth.Signup(r.Context(), service.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, r, err, authsdk.ErrUserNotFound)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, authsdk.SignupResponse{
		Success: true,
		Message: "User created successfully. Please verify your email.",
		Token:   sess.Token,
		UserID:  sess.Account.ID,
	})
}
