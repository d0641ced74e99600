package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS opens the API to the kiosk and supervisor pages. An empty origin list
// allows any origin, matching a kiosk served from a LAN address.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", TraceHeader},
		ExposedHeaders:   []string{TraceHeader, "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}
