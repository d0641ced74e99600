package report

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/frahmantamala/meal-scan/internal/transport"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ServiceAPI interface {
	ResolveRange(q RangeQuery) (Range, error)
	Build(ctx context.Context, r Range) (*Report, error)
	Export(ctx context.Context, r Range) (*bytes.Buffer, string, error)
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

func rangeQuery(r *http.Request) RangeQuery {
	q := r.URL.Query()
	return RangeQuery{
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
		Days:      q.Get("days"),
	}
}

// GetReport handles GET /report?start_date=&end_date= or ?days=.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	rng, err := h.Service.ResolveRange(rangeQuery(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	rep, err := h.Service.Build(r.Context(), rng)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, rep)
}

func (h *Handler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	rng, err := h.Service.ResolveRange(rangeQuery(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	buf, filename, err := h.Service.Export(r.Context(), rng)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.Logger.Error("DownloadReport: failed to write workbook", "error", err)
	}
}
