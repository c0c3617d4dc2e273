package httpx

import (
	"net/http"
	"slices"
)

// RequireRoles lets the request through only when the authenticated role is
// one of roles. An empty list admits any authenticated principal. It must run
// after Authenticate.
func RequireRoles(roles ...string) Middleware {
	allowed := slices.Clone(roles)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := ClaimsFromContext(r.Context()); !ok {
				WriteError(w, http.StatusUnauthorized, "unauthenticated", MsgNoToken)
				return
			}

			if len(allowed) > 0 && !slices.Contains(allowed, roleFromContext(r.Context())) {
				WriteError(w, http.StatusForbidden, "forbidden", MsgAccessDenied)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
