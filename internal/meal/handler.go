package meal

import (
	"context"
	"net/http"

	"github.com/frahmantamala/meal-scan/internal"
	"github.com/frahmantamala/meal-scan/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	SubmitScan(ctx context.Context, in SubmitScanInput) (*ScanResult, error)
	ConfirmOvertimeScan(ctx context.Context, in ConfirmOvertimeInput) (*ScanResult, error)
	GrantOvertimePermission(ctx context.Context, in GrantInput) (*GrantResult, error)
	ListTodaysGrants(ctx context.Context) (*GrantList, error)
	RevokeGrant(ctx context.Context, in RevokeInput) (*RevokeResult, error)
	RevokeAllGrantsForToday(ctx context.Context, actor internal.Actor) (*RevokeAllResult, error)
	DayStatus(ctx context.Context, employeeID string) (*DayStatus, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// SubmitScan handles POST /scan from the kiosk.
func (h *Handler) SubmitScan(w http.ResponseWriter, r *http.Request) {
	var in SubmitScanInput
	if err := h.DecodeJSON(r, &in); err != nil {
		h.Logger.Warn("SubmitScan: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.Service.SubmitScan(r.Context(), in)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) ConfirmOvertime(w http.ResponseWriter, r *http.Request) {
	var in ConfirmOvertimeInput
	if err := h.DecodeJSON(r, &in); err != nil {
		h.Logger.Warn("ConfirmOvertime: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.Service.ConfirmOvertimeScan(r.Context(), in)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) ScanStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.Service.DayStatus(r.Context(), chi.URLParam(r, "employee_id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, status)
}

func (h *Handler) GrantOvertime(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		h.Logger.Error("GrantOvertime: actor not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var in GrantInput
	if err := h.DecodeJSON(r, &in); err != nil {
		h.Logger.Warn("GrantOvertime: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	in.GrantedBy = actor.Username

	result, err := h.Service.GrantOvertimePermission(r.Context(), in)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) ListTodaysGrants(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListTodaysGrants(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) RevokeGrant(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		h.Logger.Error("RevokeGrant: actor not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	result, err := h.Service.RevokeGrant(r.Context(), RevokeInput{
		EmployeeID: chi.URLParam(r, "employee_id"),
		Actor:      actor,
	})
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) RevokeAllGrants(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		h.Logger.Error("RevokeAllGrants: actor not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	result, err := h.Service.RevokeAllGrantsForToday(r.Context(), actor)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}
