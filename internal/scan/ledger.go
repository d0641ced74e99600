package scan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/meal-scan/internal/core/common/dberr"
	scanDatamodel "github.com/frahmantamala/meal-scan/internal/core/datamodel/scan"
)

type RepositoryAPI interface {
	FindByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) ([]*scanDatamodel.Record, error)
	Create(ctx context.Context, r *scanDatamodel.Record) error
}

type Clock interface {
	Now() time.Time
}

// Ledger is the append-only store of meal scans.
type Ledger struct {
	repo   RepositoryAPI
	clock  Clock
	logger *slog.Logger
}

func NewLedger(repo RepositoryAPI, clock Clock, logger *slog.Logger) *Ledger {
	return &Ledger{
		repo:   repo,
		clock:  clock,
		logger: logger,
	}
}

func (l *Ledger) ListScansForDate(ctx context.Context, employeeID string, date time.Time) (DayState, error) {
	rows, err := l.repo.FindByEmployeeAndDate(ctx, employeeID, date)
	if err != nil {
		return DayState{}, fmt.Errorf("list scans for %s on %s: %w", employeeID, date.Format("2006-01-02"), err)
	}

	state := DayState{
		EmployeeID:   employeeID,
		BusinessDate: date,
		Records:      make([]Record, 0, len(rows)),
	}
	for _, row := range rows {
		state.Records = append(state.Records, *FromDataModel(row))
	}
	return state, nil
}

// AppendScan writes a single record stamped with the ledger clock. A unique
// violation surfaces as ErrDuplicateKind.
func (l *Ledger) AppendScan(ctx context.Context, employeeID string, date time.Time, kind Kind) (*Record, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown scan kind %q", kind)
	}

	rec := &Record{
		EmployeeID:   employeeID,
		BusinessDate: date,
		Kind:         kind,
		RecordedAt:   l.clock.Now(),
	}
	dm := ToDataModel(rec)
	if err := l.repo.Create(ctx, dm); err != nil {
		if dberr.IsUniqueViolation(err) {
			l.logger.Warn("duplicate scan rejected by ledger",
				"employee_id", employeeID,
				"business_date", date.Format("2006-01-02"),
				"scan_kind", kind)
			return nil, ErrDuplicateKind
		}
		return nil, fmt.Errorf("append %s scan for %s: %w", kind, employeeID, err)
	}
	return FromDataModel(dm), nil
}
