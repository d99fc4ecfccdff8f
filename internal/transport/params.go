package transport

import (
	"net/http"

	"storefront/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// identityFor returns the resolved identity; handlers behind RequireAuth can
// rely on ok being true.
func identityFor(r *http.Request) (middleware.Identity, bool) {
	return middleware.GetIdentity(r.Context())
}

// uuidParam parses a uuid path parameter.
func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}
