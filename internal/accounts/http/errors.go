package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/kodefactor/accounts/internal/accounts/service"
	"github.com/kodefactor/accounts/pkg/authsdk"
	"github.com/kodefactor/accounts/pkg/slogx"
)

const maxJSONBody = 1 << 20

var (
	errNoSigner     = errors.New("no signer configured")
	errNoPublicKeys = errors.New("key set is empty")
)

// readJSON decodes the request body into v. An empty body leaves v at its
// zero value so that missing fields surface as validation errors.
func readJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// apiError maps a service error onto its wire form. notFound is the
// endpoint-specific answer for a missing account.
func apiError(err error, notFound *authsdk.APIError) *authsdk.APIError {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		return authsdk.NewAPIError(http.StatusBadRequest, authsdk.ErrorCodeValidation, ve.Message).WithErrors(ve.Fields)
	case errors.Is(err, service.ErrDuplicateEmail):
		return authsdk.ErrDuplicateEmail
	case errors.Is(err, service.ErrInvalidCredentials):
		return authsdk.ErrInvalidCredentials
	case errors.Is(err, service.ErrAccountNotFound):
		return notFound
	case errors.Is(err, service.ErrInvalidCode):
		return authsdk.ErrInvalidCode
	case errors.Is(err, service.ErrCodeExpired):
		return authsdk.ErrCodeExpired
	case errors.Is(err, service.ErrAlreadyVerified):
		return authsdk.ErrAlreadyVerified
	case errors.Is(err, service.ErrUnauthenticated):
		return authsdk.ErrNoToken
	case errors.Is(err, service.ErrTokenExpired):
		return authsdk.ErrTokenExpired
	case errors.Is(err, service.ErrTokenMalformed), errors.Is(err, service.ErrTokenInvalid):
		return authsdk.ErrInvalidToken
	case errors.Is(err, service.ErrEmailNotVerified):
		return authsdk.ErrEmailNotVerified
	case errors.Is(err, service.ErrForbidden):
		return authsdk.ErrAccessDenied
	case errors.Is(err, service.ErrNoFile):
		return authsdk.ErrNoFile
	case errors.Is(err, service.ErrUnsupportedImage):
		return authsdk.ErrUnsupportedImage
	default:
		return authsdk.ErrServerError
	}
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error, notFound *authsdk.APIError) {
	apiErr := apiError(err, notFound)
	if apiErr.StatusCode >= http.StatusInternalServerError {
		slogx.FromContext(r.Context()).Error("request failed", slog.Any("err", err))
	}
	apiErr.WriteError(w)
}
