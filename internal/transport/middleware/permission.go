package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/meal-scan/internal"
	"github.com/frahmantamala/meal-scan/internal/auth"
	"github.com/frahmantamala/meal-scan/pkg/logger"
)

// RequirePermission lets the request through only when allowed accepts the
// authenticated actor. It must run after the auth middleware.
func RequirePermission(allowed func(internal.Actor) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := internal.ActorFromContext(r.Context())
			if !ok {
				writeAppError(w, internal.ErrInvalidToken)
				return
			}

			if !allowed(actor) {
				logger.From(r.Context()).Warn("access denied",
					"actor", actor.Username,
					"method", r.Method,
					"path", r.URL.Path)
				writeAppError(w, internal.ErrForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin guards grant revocation.
func RequireAdmin(checker auth.PermissionChecker) func(http.Handler) http.Handler {
	return RequirePermission(checker.CanRevokeGrants)
}

func writeAppError(w http.ResponseWriter, appErr *internal.AppError) {
	status, body := appErr.ToHTTPResponse()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
