// Package middleware holds the HTTP middleware used by the API server.
package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// Cors allows browser clients from allowedOrigins ("*" for any) to call the
// API. Preflight requests are answered with 204 and never reach the router.
func Cors(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:       allowedOrigins,
		AllowedMethods:       []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:       []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:       []string{"X-Request-Id"},
		MaxAge:               3600,
		OptionsSuccessStatus: http.StatusNoContent,
	})
}
