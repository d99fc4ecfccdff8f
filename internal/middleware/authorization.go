package middleware

import (
	"net/http"

	"go.uber.org/zap"
)

// RequireAuth guards capability-protected routes: it rejects with an
// explicit 401 when the identity gate left the request anonymous. Resource
// ownership checks (buyer, seller, author) live in the services.
func RequireAuth(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := GetIdentity(r.Context()); !ok {
				logger.Debug("Unauthenticated request to protected endpoint",
					zap.String("path", r.URL.Path),
				)
				respondWithError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
