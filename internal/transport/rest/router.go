package rest

import (
	"database/sql"
	"log/slog"

	"github.com/frahmantamala/meal-scan/internal/auth"
	"github.com/frahmantamala/meal-scan/internal/employee"
	"github.com/frahmantamala/meal-scan/internal/meal"
	"github.com/frahmantamala/meal-scan/internal/report"
	"github.com/frahmantamala/meal-scan/internal/transport/middleware"
	"github.com/frahmantamala/meal-scan/internal/transport/swagger"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Handlers groups everything the router mounts. Nil handlers are skipped.
type Handlers struct {
	Auth     *auth.Handler
	Meal     *meal.Handler
	Employee *employee.Handler
	Report   *report.Handler
	Docs     *swagger.Docs
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, origins []string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)
	permissions := auth.NewPermissionChecker()

	// Apply global middleware
	router.Use(middleware.CORS(origins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	if h.Docs != nil {
		router.Get("/openapi.yml", h.Docs.ServeSpec)
		router.Handle("/swagger/*", h.Docs.UI())
	}

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/ping", healthHandler.Ping)

		// Kiosk routes are public
		if h.Meal != nil {
			r.Post("/scan", h.Meal.SubmitScan)
			r.Get("/scan/status/{employee_id}", h.Meal.ScanStatus)
			r.Post("/ovt/confirm", h.Meal.ConfirmOvertime)
		}

		if h.Auth == nil {
			return
		}

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/verify", h.Auth.Verify)
		})

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			if h.Meal != nil {
				pr.With(middleware.RequirePermission(permissions.CanGrantOvertime)).
					Post("/ovt/input", h.Meal.GrantOvertime)
				pr.Get("/ovt/today", h.Meal.ListTodaysGrants)

				pr.Group(func(ar chi.Router) {
					ar.Use(middleware.RequireAdmin(permissions))
					ar.Delete("/ovt/today/all", h.Meal.RevokeAllGrants)
					ar.Delete("/ovt/{employee_id}", h.Meal.RevokeGrant)
				})
			}

			if h.Employee != nil {
				pr.Get("/employee", h.Employee.ListEmployees)
				pr.Post("/employee", h.Employee.CreateEmployee)
			}

			if h.Report != nil {
				pr.Get("/report", h.Report.GetReport)
				pr.Get("/report/download", h.Report.DownloadReport)
			}
		})
	})
}
