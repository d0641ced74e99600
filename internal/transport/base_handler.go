package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/frahmantamala/meal-scan/internal"
	"github.com/frahmantamala/meal-scan/pkg/logger"
)

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	return &BaseHandler{Logger: lg}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes a plain error response for transport-level failures
// (bad JSON, missing token) that never reached a service.
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	code := internal.ErrCodeValidationFailed
	errType := internal.ErrorTypeValidation
	switch {
	case status == http.StatusUnauthorized:
		code, errType = internal.ErrCodeInvalidToken, internal.ErrorTypeUnauthorized
	case status >= http.StatusInternalServerError:
		code, errType = internal.ErrCodeInternal, internal.ErrorTypeInternal
	}
	h.WriteAppError(w, &internal.AppError{
		Type:       errType,
		Code:       code,
		Message:    message,
		StatusCode: status,
	})
}

// WriteAppError renders err using its own status code.
func (h *BaseHandler) WriteAppError(w http.ResponseWriter, err *internal.AppError) {
	status, body := err.ToHTTPResponse()
	if status == 0 {
		status = http.StatusInternalServerError
	}
	h.WriteJSON(w, status, body)
}

// HandleServiceError maps a service error to a response. Anything that is
// not an AppError is reported as an opaque 500.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, err error) {
	if appErr, ok := internal.IsAppError(err); ok && appErr.Type != internal.ErrorTypeInternal {
		h.WriteAppError(w, appErr)
		return
	}
	h.Logger.Error("internal error", "error", err)
	h.WriteAppError(w, internal.NewInternalError("Internal server error", nil))
}

// DecodeJSON decodes the request body into dst.
func (h *BaseHandler) DecodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	return dec.Decode(dst)
}

// ExtractTokenFromHeader extracts Bearer token from Authorization header
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}

	return strings.TrimSpace(authHeader[7:])
}
