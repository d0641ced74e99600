package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/frahmantamala/meal-scan/internal/auth"
	authPostgres "github.com/frahmantamala/meal-scan/internal/auth/postgres"
	employeeDatamodel "github.com/frahmantamala/meal-scan/internal/core/datamodel/employee"
	employeePostgres "github.com/frahmantamala/meal-scan/internal/employee/postgres"
	"github.com/frahmantamala/meal-scan/pkg/logger"
	"github.com/spf13/cobra"
)

// departments each get an approver account named after the department with
// the password "<name>123".
var departments = []string{
	"production",
	"warehouse",
	"logistic",
	"maintenance",
	"rnd",
	"finance",
	"qc",
}

var sampleEmployees = []employeeDatamodel.Employee{
	{EmployeeID: "EMP001", Name: "Budi Santoso"},
	{EmployeeID: "EMP002", Name: "Siti Rahayu"},
	{EmployeeID: "EMP003", Name: "Agus Wijaya"},
	{EmployeeID: "EMP004", Name: "Dewi Lestari"},
	{EmployeeID: "EMP005", Name: "Rudi Hartono"},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with approver accounts and sample employees for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlxDB.Close()

		ctx := context.Background()
		lg := logger.LoggerWrapper()

		if clearData {
			for _, table := range []string{"scan_records", "overtime_permissions"} {
				if err := db.WithContext(ctx).Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
				fmt.Println("Cleared", table)
			}
		}

		authService := auth.NewService(authPostgres.NewRepository(db), nil, cfg.Security.BCryptCost, lg)

		created, err := authService.EnsureUser(ctx, cfg.Security.AdminUsername, "admin123", true)
		if err != nil {
			log.Fatalf("failed to seed admin user: %v", err)
		}
		reportSeed("admin user", cfg.Security.AdminUsername, created)

		for _, dept := range departments {
			created, err := authService.EnsureUser(ctx, dept, dept+"123", false)
			if err != nil {
				log.Fatalf("failed to seed user %s: %v", dept, err)
			}
			reportSeed("approver", dept, created)
		}

		employees := employeePostgres.NewEmployeeRepository(db)
		for i := range sampleEmployees {
			e := sampleEmployees[i]
			inserted, err := employees.CreateIfAbsent(ctx, &e)
			if err != nil {
				log.Fatalf("failed to seed employee %s: %v", e.EmployeeID, err)
			}
			reportSeed("employee", e.EmployeeID, inserted)
		}

		fmt.Println("Seeding complete")
	},
}

func reportSeed(kind, name string, created bool) {
	if created {
		fmt.Printf("Seeded %s: %s\n", kind, name)
		return
	}
	fmt.Printf("%s %s already exists\n", kind, name)
}
