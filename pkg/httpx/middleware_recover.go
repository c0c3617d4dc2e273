package httpx

import (
	"log/slog"
	"net/http"
	"runtime"

	"github.com/kodefactor/accounts/pkg/slogx"
)

// Recover turns a panicking handler into a 500 JSON response.
func Recover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				stack := make([]byte, 4096)
				stack = stack[:runtime.Stack(stack, false)]
				slogx.FromContext(r.Context()).Error("panic recovered",
					slog.Any("panic", rec),
					slog.String("stack", string(stack)),
				)
				WriteError(w, http.StatusInternalServerError, "internal_error", "Server error")
			}()

			next.ServeHTTP(w, r)
		})
	}
}
