package report_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/frahmantamala/meal-scan/internal/calendar"
	"github.com/frahmantamala/meal-scan/internal/report"
	"github.com/frahmantamala/meal-scan/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type staticReader struct{}

func (staticReader) ListEmployees(context.Context) ([]report.EmployeeRow, error) {
	return []report.EmployeeRow{{EmployeeID: "EMP001", Name: "Budi Santoso"}}, nil
}

func (staticReader) ListScansBetween(_ context.Context, start, _ time.Time) ([]report.ScanRow, error) {
	return []report.ScanRow{{EmployeeID: "EMP001", BusinessDate: start, ScanKind: "normal", RecordedAt: start.Add(time.Hour)}}, nil
}

var _ = Describe("Report Handler", func() {
	var handler *report.Handler

	BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service := report.NewService(staticReader{}, fixedCalendar{date: calendar.Date(2024, 3, 10)}, 30, 7, slogger)
		handler = report.NewHandler(&transport.BaseHandler{Logger: slogger}, service)
	})

	It("should return the report as JSON", func() {
		req := httptest.NewRequest(http.MethodGet, "/report?start_date=2024-03-08&end_date=2024-03-10", nil)
		w := httptest.NewRecorder()

		handler.GetReport(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		var rep report.Report
		Expect(json.NewDecoder(w.Body).Decode(&rep)).To(Succeed())
		Expect(rep.Dates).To(Equal([]string{"08/03/24", "09/03/24", "10/03/24"}))
		Expect(rep.Data[0].Dates["08/03/24"].Normal).To(BeTrue())
	})

	It("should answer 400 for a range longer than thirty days", func() {
		req := httptest.NewRequest(http.MethodGet, "/report?start_date=2024-01-01&end_date=2024-03-10", nil)
		w := httptest.NewRecorder()

		handler.GetReport(w, req)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("DATE_RANGE_TOO_LONG"))
	})

	It("should stream the workbook as an attachment", func() {
		req := httptest.NewRequest(http.MethodGet, "/report/download?days=3", nil)
		w := httptest.NewRecorder()

		handler.DownloadReport(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(Equal("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"))
		Expect(w.Header().Get("Content-Disposition")).To(Equal(`attachment; filename="Laporan_Scan_2024-03-08_2024-03-10.xlsx"`))
		Expect(w.Body.Len()).To(BeNumerically(">", 0))
	})
})
