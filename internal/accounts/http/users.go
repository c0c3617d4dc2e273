package http

import (
	"net/http"

	"github.com/kodefactor/accounts/internal/accounts/domain"
	"github.com/kodefactor/accounts/internal/accounts/service"
	"github.com/kodefactor/accounts/pkg/authsdk"
	"github.com/kodefactor/accounts/pkg/httpx"
	"github.com/kodefactor/accounts/pkg/pagex"
)

type UsersHandler struct {
	Directory *service.DirectoryService
}

// ServeHTTP lists accounts one page at a time.
//
//	@Summary		List users
//	@Description	Paged account listing ordered by creation time. Admin only.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Param			page	query		int	false	"Page number, starting at 1"	default(1)
//	@Param			limit	query		int	false	"Page size, at most 100"		default(10)
//	@Success		200		{object}	authsdk.UsersPage
//	@Failure		401		{object}	httpx.ErrorBody
//	@Failure		403		{object}	httpx.ErrorBody
//	@Failure		500		{object}	httpx.ErrorBody
//	@Router			/api/auth/allusers [get].
func (h *UsersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	page, err := h.Directory.ListAccounts(r.Context(), pagex.FromRequest(r))
	if err != nil {
		writeServiceError(w, r, err, authsdk.ErrProfileNotFound)
		return
	}

	users := make([]authsdk.UserSummary, 0, len(page.Users))
	for _, u := range page.Users {
		users = append(users, userSummary(u))
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.UsersPage{
		Users:       users,
		TotalUsers:  page.TotalUsers,
		TotalPages:  page.TotalPages,
		CurrentPage: page.CurrentPage,
	})
}

func userSummary(s domain.AccountSummary) authsdk.UserSummary {
	return authsdk.UserSummary{
		ID:            s.ID,
		Name:          s.Name,
		Email:         s.Email,
		Role:          s.Role.String(),
		EmailVerified: s.EmailVerified,
		ProfileImage:  s.ProfileImage,
		CreatedAt:     s.CreatedAt,
	}
}
