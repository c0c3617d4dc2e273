package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kodefactor/accounts/pkg/jwtx"
	"github.com/kodefactor/accounts/pkg/slogx"
)

const (
	MsgNoToken        = "no token provided"
	MsgTokenExpired   = "token expired"
	MsgMalformedToken = "malformed token"
	MsgInvalidToken   = "invalid token"
	MsgAccessDenied   = "Access denied"
)

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(authz, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// TokenFailureMessage turns a verification error into the message sent back
// to the client. Expired and malformed tokens get their own wording so a
// client can tell "log in again" from "something is wrong".
func TokenFailureMessage(err error) string {
	switch {
	case errors.Is(err, jwtx.ErrExpired):
		return MsgTokenExpired
	case errors.Is(err, jwtx.ErrMalformed):
		return MsgMalformedToken
	default:
		return MsgInvalidToken
	}
}

// Authenticate verifies the bearer token and stores its claims in the
// request context. Every failure is a 401.
func Authenticate(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw, ok := BearerToken(r)
			if !ok {
				writeBearerError(w, "unauthenticated", MsgNoToken)
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				msg := TokenFailureMessage(err)
				slogx.FromContext(ctx).Warn("jwt verify failed", slog.Any("err", err))
				writeBearerError(w, "invalid_token", msg)
				return
			}

			ctx = slogx.With(ContextWithClaims(ctx, claims), "account_id", claims.AccountID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RFC 6750 style challenge plus the JSON error body clients pattern-match on.
func writeBearerError(w http.ResponseWriter, code, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteError(w, http.StatusUnauthorized, code, desc)
}
