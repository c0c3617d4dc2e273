package http

import (
	"net/http"

	"github.com/kodefactor/accounts/internal/accounts/service"
	"github.com/kodefactor/accounts/pkg/authsdk"
	"github.com/kodefactor/accounts/pkg/httpx"
)

type CurrentUserHandler struct {
	Directory *service.DirectoryService
}

// ServeHTTP returns the profile of the authenticated account.
//
//	@Summary		Current user
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.CurrentUserResponse
//	@Failure		401	{object}	httpx.ErrorBody
//	@Failure		404	{object}	httpx.ErrorBody	"Account no longer exists"
//	@Failure		500	{object}	httpx.ErrorBody
//	@Router			/api/auth/current-user [get].
func (h *CurrentUserHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFromContext(r.Context())
	if userID == "" {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	a, err := h.Directory.CurrentAccount(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err, authsdk.ErrProfileNotFound)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.CurrentUserResponse{
		Name:          a.Name,
		Email:         a.Email,
		ProfileImage:  a.ProfileImage,
		Role:          a.Role.String(),
		EmailVerified: a.EmailVerified,
	})
}
