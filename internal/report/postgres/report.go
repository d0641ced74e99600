package postgres

import (
	"context"
	"time"

	"github.com/frahmantamala/meal-scan/internal/report"
	"github.com/jmoiron/sqlx"
)

const (
	listEmployeesQuery = `SELECT employee_id, name FROM employees ORDER BY employee_id`

	listScansBetweenQuery = `SELECT employee_id, business_date, scan_kind, recorded_at
		FROM scan_records
		WHERE business_date >= ? AND business_date <= ?
		ORDER BY employee_id, business_date, recorded_at`
)

// ReportReader reads report rows with plain SQL over the shared connection.
type ReportReader struct {
	db *sqlx.DB
}

func NewReportReader(db *sqlx.DB) report.Reader {
	return &ReportReader{db: db}
}

func (r *ReportReader) ListEmployees(ctx context.Context) ([]report.EmployeeRow, error) {
	var rows []report.EmployeeRow
	if err := r.db.SelectContext(ctx, &rows, listEmployeesQuery); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ReportReader) ListScansBetween(ctx context.Context, start, end time.Time) ([]report.ScanRow, error) {
	var rows []report.ScanRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(listScansBetweenQuery), start, end); err != nil {
		return nil, err
	}
	return rows, nil
}
