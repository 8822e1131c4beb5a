package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS returns middleware that allows cross-origin requests from the given
// origins. The storefront is served from a different origin than the API,
// so browsers send preflight OPTIONS requests that must be answered before
// they will issue the real request.
//
// A single "*" entry allows any origin. Credentials are only enabled for
// explicit origins; the CORS spec forbids combining them with a wildcard.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowCredentials := true
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowCredentials = false
		}
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: allowCredentials,
		MaxAge:           300,
	})
}
