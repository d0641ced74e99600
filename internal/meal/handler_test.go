package meal_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/frahmantamala/meal-scan/internal"
	"github.com/frahmantamala/meal-scan/internal/calendar"
	employeeDatamodel "github.com/frahmantamala/meal-scan/internal/core/datamodel/employee"
	overtimeDatamodel "github.com/frahmantamala/meal-scan/internal/core/datamodel/overtime"
	scanDatamodel "github.com/frahmantamala/meal-scan/internal/core/datamodel/scan"
	"github.com/frahmantamala/meal-scan/internal/employee"
	employeePostgres "github.com/frahmantamala/meal-scan/internal/employee/postgres"
	"github.com/frahmantamala/meal-scan/internal/meal"
	"github.com/frahmantamala/meal-scan/internal/overtime"
	overtimePostgres "github.com/frahmantamala/meal-scan/internal/overtime/postgres"
	"github.com/frahmantamala/meal-scan/internal/scan"
	scanPostgres "github.com/frahmantamala/meal-scan/internal/scan/postgres"
	"github.com/frahmantamala/meal-scan/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type errorBody struct {
	Type    string          `json:"type"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details"`
}

var _ = Describe("Meal Handler Integration", func() {
	var (
		db     *gorm.DB
		router chi.Router
		actor  *internal.Actor
	)

	BeforeEach(func() {
		var err error
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Silent),
			TranslateError: true,
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(
			&employeeDatamodel.Employee{},
			&scanDatamodel.Record{},
			&overtimeDatamodel.Permission{},
		)).To(Succeed())
		Expect(db.Create(&employeeDatamodel.Employee{EmployeeID: "EMP100", Name: "Rina Kartika"}).Error).To(Succeed())

		now := time.Date(2024, 3, 10, 12, 30, 0, 0, time.UTC)
		clock := calendar.NewClock(time.FixedZone("UTC+7", 7*60*60), calendar.WithNow(func() time.Time { return now }))

		service := meal.NewService(
			employee.NewService(employeePostgres.NewEmployeeRepository(db), slogger),
			scan.NewLedger(scanPostgres.NewScanRepository(db), clock, slogger),
			overtime.NewLedger(overtimePostgres.NewOvertimeRepository(db), clock, slogger),
			clock,
			nil,
			slogger,
		)
		handler := meal.NewHandler(&transport.BaseHandler{Logger: slogger}, service)

		actor = &internal.Actor{Username: "production"}
		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if actor != nil {
					r = r.WithContext(internal.ContextWithActor(r.Context(), *actor))
				}
				next.ServeHTTP(w, r)
			})
		})
		router.Post("/scan", handler.SubmitScan)
		router.Get("/scan/status/{employee_id}", handler.ScanStatus)
		router.Post("/ovt/confirm", handler.ConfirmOvertime)
		router.Post("/ovt/input", handler.GrantOvertime)
		router.Get("/ovt/today", handler.ListTodaysGrants)
		router.Delete("/ovt/today/all", handler.RevokeAllGrants)
		router.Delete("/ovt/{employee_id}", handler.RevokeGrant)
	})

	do := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	decodeError := func(w *httptest.ResponseRecorder) errorBody {
		var body struct {
			Error errorBody `json:"error"`
		}
		ExpectWithOffset(1, json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		return body.Error
	}

	It("should record the normal and overtime meals end to end", func() {
		w := do(http.MethodPost, "/scan", map[string]string{"employee_id": "EMP100"})
		Expect(w.Code).To(Equal(http.StatusOK))
		var first meal.ScanResult
		Expect(json.NewDecoder(w.Body).Decode(&first)).To(Succeed())
		Expect(first.Kind).To(Equal(scan.KindNormal))
		Expect(first.BusinessDate).To(Equal("2024-03-10"))

		w = do(http.MethodPost, "/scan", map[string]string{"employee_id": "EMP100"})
		Expect(w.Code).To(Equal(http.StatusForbidden))
		Expect(decodeError(w).Code).To(Equal(string(internal.ErrCodeOvertimeNotRegistered)))

		w = do(http.MethodPost, "/ovt/input", map[string]string{"employee_id": "EMP100"})
		Expect(w.Code).To(Equal(http.StatusCreated))
		var granted meal.GrantResult
		Expect(json.NewDecoder(w.Body).Decode(&granted)).To(Succeed())
		Expect(granted.GrantedBy).To(Equal("production"))

		w = do(http.MethodPost, "/ovt/confirm", map[string]string{"employee_id": "EMP100"})
		Expect(w.Code).To(Equal(http.StatusOK))
		var second meal.ScanResult
		Expect(json.NewDecoder(w.Body).Decode(&second)).To(Succeed())
		Expect(second.Kind).To(Equal(scan.KindOvertime))
		Expect(second.ScanCount).To(Equal(2))

		w = do(http.MethodGet, "/scan/status/EMP100", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		var status meal.DayStatus
		Expect(json.NewDecoder(w.Body).Decode(&status)).To(Succeed())
		Expect(status.Phase).To(Equal(scan.PhaseComplete))
	})

	It("should answer 404 with the employee id for an unknown employee", func() {
		w := do(http.MethodPost, "/scan", map[string]string{"employee_id": "EMP999"})

		Expect(w.Code).To(Equal(http.StatusNotFound))
		body := decodeError(w)
		Expect(body.Code).To(Equal(string(internal.ErrCodeEmployeeNotFound)))
		Expect(string(body.Details)).To(ContainSubstring("EMP999"))
	})

	It("should answer 400 for a malformed body and a blank id", func() {
		req := httptest.NewRequest(http.MethodPost, "/scan", bytes.NewBufferString("{not json"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		Expect(w.Code).To(Equal(http.StatusBadRequest))

		w = do(http.MethodPost, "/scan", map[string]string{"employee_id": " "})
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(decodeError(w).Type).To(Equal(string(internal.ErrorTypeValidation)))
	})

	It("should answer 409 with the existing grant on a second grant", func() {
		Expect(do(http.MethodPost, "/ovt/input", map[string]string{"employee_id": "EMP100"}).Code).To(Equal(http.StatusCreated))

		w := do(http.MethodPost, "/ovt/input", map[string]string{"employee_id": "EMP100"})
		Expect(w.Code).To(Equal(http.StatusConflict))
		body := decodeError(w)
		Expect(body.Code).To(Equal(string(internal.ErrCodePermissionAlreadyExists)))
		Expect(string(body.Details)).To(ContainSubstring(`"granted_by":"production"`))
	})

	It("should list today's grants", func() {
		Expect(do(http.MethodPost, "/ovt/input", map[string]string{"employee_id": "EMP100"}).Code).To(Equal(http.StatusCreated))

		w := do(http.MethodGet, "/ovt/today", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		var list meal.GrantList
		Expect(json.NewDecoder(w.Body).Decode(&list)).To(Succeed())
		Expect(list.Count).To(Equal(1))
		Expect(list.Data[0].Name).To(Equal("Rina Kartika"))
	})

	It("should keep revocation for admins", func() {
		Expect(do(http.MethodPost, "/ovt/input", map[string]string{"employee_id": "EMP100"}).Code).To(Equal(http.StatusCreated))

		w := do(http.MethodDelete, "/ovt/EMP100", nil)
		Expect(w.Code).To(Equal(http.StatusForbidden))
		Expect(decodeError(w).Code).To(Equal(string(internal.ErrCodeAdminRequired)))

		actor = &internal.Actor{Username: "admin", IsAdmin: true}
		w = do(http.MethodDelete, "/ovt/EMP100", nil)
		Expect(w.Code).To(Equal(http.StatusOK))

		w = do(http.MethodDelete, "/ovt/EMP100", nil)
		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(decodeError(w).Code).To(Equal(string(internal.ErrCodeGrantNotFound)))

		w = do(http.MethodDelete, "/ovt/today/all", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		var cleared meal.RevokeAllResult
		Expect(json.NewDecoder(w.Body).Decode(&cleared)).To(Succeed())
		Expect(cleared.DeletedCount).To(BeZero())
	})

	It("should answer 401 when no actor is attached", func() {
		actor = nil

		w := do(http.MethodPost, "/ovt/input", map[string]string{"employee_id": "EMP100"})
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})
})
