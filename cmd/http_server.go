package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/meal-scan/api"
	"github.com/frahmantamala/meal-scan/internal"
	"github.com/frahmantamala/meal-scan/internal/auth"
	authPostgres "github.com/frahmantamala/meal-scan/internal/auth/postgres"
	"github.com/frahmantamala/meal-scan/internal/calendar"
	"github.com/frahmantamala/meal-scan/internal/core/events"
	"github.com/frahmantamala/meal-scan/internal/employee"
	employeePostgres "github.com/frahmantamala/meal-scan/internal/employee/postgres"
	"github.com/frahmantamala/meal-scan/internal/meal"
	"github.com/frahmantamala/meal-scan/internal/overtime"
	overtimePostgres "github.com/frahmantamala/meal-scan/internal/overtime/postgres"
	"github.com/frahmantamala/meal-scan/internal/report"
	reportPostgres "github.com/frahmantamala/meal-scan/internal/report/postgres"
	"github.com/frahmantamala/meal-scan/internal/rollover"
	"github.com/frahmantamala/meal-scan/internal/scan"
	scanPostgres "github.com/frahmantamala/meal-scan/internal/scan/postgres"
	"github.com/frahmantamala/meal-scan/internal/transport"
	"github.com/frahmantamala/meal-scan/internal/transport/rest"
	"github.com/frahmantamala/meal-scan/internal/transport/swagger"
	"github.com/frahmantamala/meal-scan/pkg/logger"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle kiosk, supervisor and report requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *gorm.DB
	SQLX     *sqlx.DB
	Router   *chi.Mux
	Clock    *calendar.Clock
	EventBus *events.EventBus
	Notifier *rollover.Notifier
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up routes: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	deps.Notifier.Start(ctx)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server",
		"address", addr,
		"timezone", deps.Clock.Location().String(),
		"business_date", calendar.FormatDate(deps.Clock.CurrentBusinessDate()))

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			deps.Notifier.Stop()
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		deps.Logger.Error("Server shutdown error", "error", err)
	}
	deps.Notifier.Stop()
	if err := deps.EventBus.Drain(shutdownCtx); err != nil {
		deps.Logger.Warn("Event handlers still running at shutdown", "error", err)
	}
	if err := deps.SQLX.Close(); err != nil {
		deps.Logger.Error("Database close error", "error", err)
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) error {
	lg := deps.Logger
	base := transport.NewBaseHandler(lg)

	employeeService := employee.NewService(employeePostgres.NewEmployeeRepository(deps.DB), lg)
	scanLedger := scan.NewLedger(scanPostgres.NewScanRepository(deps.DB), deps.Clock, lg)
	grantLedger := overtime.NewLedger(overtimePostgres.NewOvertimeRepository(deps.DB), deps.Clock, lg)
	mealService := meal.NewService(employeeService, scanLedger, grantLedger, deps.Clock, deps.EventBus, lg)

	authService := auth.NewService(
		authPostgres.NewRepository(deps.DB),
		auth.NewJWTTokenGenerator(deps.Config.Security.JWTSecret, deps.Config.Security.AccessTokenDuration),
		deps.Config.Security.BCryptCost,
		lg,
	)

	reportService := report.NewService(
		reportPostgres.NewReportReader(deps.SQLX),
		deps.Clock,
		deps.Config.Report.MaxRangeDays,
		deps.Config.Report.DefaultRangeDays,
		lg,
	)

	docs, err := swagger.Load(context.Background(), api.OpenAPISpec)
	if err != nil {
		return err
	}

	rest.RegisterAllRoutes(deps.Router, deps.SQLX.DB, rest.Handlers{
		Auth:     auth.NewHandler(base, authService),
		Meal:     meal.NewHandler(base, mealService),
		Employee: employee.NewHandler(base, employeeService),
		Report:   report.NewHandler(base, reportService),
		Docs:     docs,
	}, deps.Config.Server.Origins(), lg)

	return nil
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Format, config.Observability.Logging.Level)
	lg := logger.LoggerWrapper()

	db, sqlxDB, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	clock := newClock(config.Business, lg)

	bus := events.NewEventBus(lg)
	events.RegisterAuditLog(bus, lg)

	return &Dependencies{
		Config:   config,
		DB:       db,
		SQLX:     sqlxDB,
		Router:   chi.NewRouter(),
		Clock:    clock,
		EventBus: bus,
		Notifier: rollover.NewNotifier(clock, bus, config.Business.RolloverCheckInterval, lg),
		Logger:   lg,
	}, nil
}

func newClock(cfg internal.BusinessConfig, lg *slog.Logger) *calendar.Clock {
	return calendar.NewClock(
		calendar.LoadLocation(cfg.Timezone, lg),
		calendar.WithRolloverHour(cfg.RolloverHour),
	)
}

// initDB opens one pgx pool and shares it between gorm (ledgers, directory,
// users) and sqlx (report queries).
func initDB(cfg internal.DatabaseConfig) (*gorm.DB, *sqlx.DB, error) {
	const driver = "pgx"

	db, err := gorm.Open(postgres.Open(cfg.GetDSN()), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, sqlx.NewDb(sqlDB, driver), nil
}
