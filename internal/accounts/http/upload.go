package http

import (
	"errors"
	"net/http"

	"github.com/kodefactor/accounts/internal/accounts/service"
	"github.com/kodefactor/accounts/pkg/authsdk"
	"github.com/kodefactor/accounts/pkg/httpx"
)

const profileImageField = "profileImage"

type UploadProfileImageHandler struct {
	Directory *service.DirectoryService
	MaxBytes  int64
}

// ServeHTTP stores a new profile image for the authenticated account.
//
//	@Summary		Upload profile image
//	@Description	Accepts a JPEG, PNG, GIF or WebP image in the multipart field profileImage.
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			mpfd
//	@Produce		json
//	@Param			profileImage	formData	file	true	"Image file"
//	@Success		200				{object}	authsdk.UploadResponse
//	@Failure		400				{object}	httpx.ErrorBody	"No file uploaded"
//	@Failure		401				{object}	httpx.ErrorBody
//	@Failure		403				{object}	httpx.ErrorBody
//	@Failure		413				{object}	httpx.ErrorBody
//	@Failure		415				{object}	httpx.ErrorBody
//	@Failure		500				{object}	httpx.ErrorBody
//	@Router			/api/auth/upload-profile-image [post].
func (h *UploadProfileImageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFromContext(r.Context())
	if userID == "" {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes)
	if err := r.ParseMultipartForm(h.MaxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			authsdk.ErrFileTooLarge.WriteError(w)
			return
		}
		authsdk.ErrNoFile.WriteError(w)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(profileImageField)
	if err != nil {
		authsdk.ErrNoFile.WriteError(w)
		return
	}
	defer func() { _ = file.Close() }()

	path, err := h.Directory.UploadProfileImage(r.Context(), userID,
		header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		writeServiceError(w, r, err, authsdk.ErrProfileNotFound)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.UploadResponse{
		Message:   "Image uploaded successfully",
		ImagePath: path,
	})
}
