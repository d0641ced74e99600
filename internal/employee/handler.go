package employee

import (
	"context"
	"net/http"

	"github.com/frahmantamala/meal-scan/internal/transport"
)

type ServiceAPI interface {
	FindByEmployeeID(ctx context.Context, employeeID string) (*Employee, error)
	List(ctx context.Context) ([]*Employee, error)
	Create(ctx context.Context, dto CreateEmployeeDTO) (*Employee, error)
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

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Service.List(r.Context())
	if err != nil {
		h.Logger.Error("ListEmployees: failed to list employees", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, EmployeesResponse{
		Employees: employees,
		Count:     len(employees),
	})
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var dto CreateEmployeeDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.Logger.Error("CreateEmployee: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.Logger.Warn("CreateEmployee: rejected", "employee_id", dto.EmployeeID, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, created)
}
