package auth

import (
	"net/http"

	"github.com/frahmantamala/meal-scan/internal"
	"github.com/frahmantamala/meal-scan/internal/transport"
	"github.com/frahmantamala/meal-scan/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.Service.Authenticate(r.Context(), dto)
	if err != nil {
		h.Logger.Warn("Login: authentication failed", "username", dto.Username, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

// Verify accepts the token in the body or as a bearer header.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	var dto VerifyDTO
	if r.ContentLength != 0 {
		if err := h.DecodeJSON(r, &dto); err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if dto.Token == "" {
		dto.Token = h.ExtractTokenFromHeader(r)
	}

	resp, err := h.Service.Verify(r.Context(), dto.Token)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.Logger.Warn("auth middleware: missing authorization token", "path", r.URL.Path)
			h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
			return
		}

		user, err := h.Service.ResolveUser(r.Context(), token)
		if err != nil {
			h.Logger.Warn("auth middleware: token rejected", "path", r.URL.Path, "error", err)
			h.HandleServiceError(w, err)
			return
		}

		ctx := internal.ContextWithActor(r.Context(), user.Actor())
		ctx = logger.With(ctx, "actor", user.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
