package middleware

import (
	"net/http"
	"slices"

	"github.com/go-chi/cors"
)

// AllowOrigin reports whether origin may reach the API. An empty list allows
// any origin. It is shared by the CORS middleware and the websocket upgrade.
func AllowOrigin(allowed []string) func(r *http.Request, origin string) bool {
	return func(r *http.Request, origin string) bool {
		return len(allowed) == 0 || slices.Contains(allowed, origin)
	}
}

// CORS allows the marketing site's origins to reach the API.
func CORS(allowed []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowOriginFunc: AllowOrigin(allowed),
		AllowedMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:  []string{"Content-Type"},
		MaxAge:          300,
	})
}
