package employee_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	employeeDatamodel "github.com/frahmantamala/meal-scan/internal/core/datamodel/employee"
	"github.com/frahmantamala/meal-scan/internal/employee"
	employeePostgres "github.com/frahmantamala/meal-scan/internal/employee/postgres"
	"github.com/frahmantamala/meal-scan/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ = Describe("Employee Handler Integration", func() {
	var (
		db      *gorm.DB
		handler *employee.Handler
	)

	BeforeEach(func() {
		var err error
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Silent),
			TranslateError: true,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&employeeDatamodel.Employee{})).To(Succeed())

		repo := employeePostgres.NewEmployeeRepository(db)
		service := employee.NewService(repo, slogger)
		handler = employee.NewHandler(&transport.BaseHandler{Logger: slogger}, service)

		Expect(db.Create(&employeeDatamodel.Employee{EmployeeID: "EMP002", Name: "Siti Aminah"}).Error).To(Succeed())
		Expect(db.Create(&employeeDatamodel.Employee{EmployeeID: "EMP001", Name: "Budi Santoso"}).Error).To(Succeed())
	})

	It("should list employees ordered by id", func() {
		req := httptest.NewRequest(http.MethodGet, "/employee", nil)
		w := httptest.NewRecorder()

		handler.ListEmployees(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		var response employee.EmployeesResponse
		Expect(json.NewDecoder(w.Body).Decode(&response)).To(Succeed())
		Expect(response.Count).To(Equal(2))
		Expect(response.Employees[0].EmployeeID).To(Equal("EMP001"))
		Expect(response.Employees[1].EmployeeID).To(Equal("EMP002"))
	})

	It("should create an employee", func() {
		body, _ := json.Marshal(map[string]string{"employee_id": "EMP003", "name": "Andi Wijaya"})
		req := httptest.NewRequest(http.MethodPost, "/employee", bytes.NewReader(body))
		w := httptest.NewRecorder()

		handler.CreateEmployee(w, req)

		Expect(w.Code).To(Equal(http.StatusCreated))
		var count int64
		db.Model(&employeeDatamodel.Employee{}).Where("employee_id = ?", "EMP003").Count(&count)
		Expect(count).To(Equal(int64(1)))
	})

	It("should answer 409 for a duplicate employee id", func() {
		body, _ := json.Marshal(map[string]string{"employee_id": "EMP001", "name": "Duplicate"})
		req := httptest.NewRequest(http.MethodPost, "/employee", bytes.NewReader(body))
		w := httptest.NewRecorder()

		handler.CreateEmployee(w, req)

		Expect(w.Code).To(Equal(http.StatusConflict))
		Expect(w.Body.String()).To(ContainSubstring("EMPLOYEE_ALREADY_EXISTS"))
	})

	It("should answer 400 for a malformed body", func() {
		req := httptest.NewRequest(http.MethodPost, "/employee", bytes.NewBufferString("{"))
		w := httptest.NewRecorder()

		handler.CreateEmployee(w, req)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})
})
