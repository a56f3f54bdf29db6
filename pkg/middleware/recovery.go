package middleware

import (
	"net/http"
	"runtime/debug"

	apperrors "furnace/pkg/errors"
	httputil "furnace/pkg/http"
	"furnace/pkg/logger"
)

// Recovery turns a handler panic into a 500 envelope carrying the request id.
func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				p := recover()
				if p == nil {
					return
				}
				if p == http.ErrAbortHandler {
					panic(p)
				}

				log.Error("Panic recovered",
					"request_id", RequestIDFromContext(r.Context()),
					"panic", p,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				appErr := apperrors.Internal("Internal server error", nil).WithDetails(requestDetails(r))
				if err := httputil.WriteError(w, appErr); err != nil {
					log.Error("failed to write panic response", "error", err)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
