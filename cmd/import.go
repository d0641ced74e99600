package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/frahmantamala/meal-scan/internal/employee"
	employeePostgres "github.com/frahmantamala/meal-scan/internal/employee/postgres"
	"github.com/frahmantamala/meal-scan/pkg/logger"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import employees from a tab-separated file",
	Long:  `Import employees from a file of "ID<TAB>Name" lines. Existing employee ids are left untouched.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		f, err := os.Open(args[0])
		if err != nil {
			log.Fatalf("failed to open %s: %v", args[0], err)
		}
		defer f.Close()

		rows, err := employee.ParseImport(f)
		if err != nil {
			log.Fatalf("failed to parse %s: %v", args[0], err)
		}

		db, sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlxDB.Close()

		svc := employee.NewService(employeePostgres.NewEmployeeRepository(db), logger.LoggerWrapper())
		result, err := svc.Import(context.Background(), rows)
		if err != nil {
			log.Fatalf("import failed after %d rows: %v", result.Inserted+result.Skipped+result.Invalid, err)
		}

		fmt.Printf("Imported %d employees (%d already present, %d invalid rows)\n",
			result.Inserted, result.Skipped, result.Invalid)
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
