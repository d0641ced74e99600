package overtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/meal-scan/internal/core/common/dberr"
	overtimeDatamodel "github.com/frahmantamala/meal-scan/internal/core/datamodel/overtime"
)

type RepositoryAPI interface {
	FindByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*overtimeDatamodel.Permission, error)
	Create(ctx context.Context, p *overtimeDatamodel.Permission) error
	DeleteByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (int64, error)
	DeleteByDate(ctx context.Context, date time.Time) (int64, error)
	ListByDate(ctx context.Context, date time.Time) ([]*overtimeDatamodel.GrantRow, error)
}

type Clock interface {
	Now() time.Time
}

// Ledger tracks supervisor-issued overtime meal grants, one per employee per
// business date.
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

// FindGrant returns nil when no grant exists.
func (l *Ledger) FindGrant(ctx context.Context, employeeID string, date time.Time) (*Permission, error) {
	dm, err := l.repo.FindByEmployeeAndDate(ctx, employeeID, date)
	if err != nil {
		return nil, fmt.Errorf("find grant for %s: %w", employeeID, err)
	}
	if dm == nil {
		return nil, nil
	}
	return FromDataModel(dm), nil
}

func (l *Ledger) Grant(ctx context.Context, employeeID string, date time.Time, grantedBy string) (*Permission, error) {
	p := &Permission{
		EmployeeID:   employeeID,
		BusinessDate: date,
		GrantedBy:    grantedBy,
		GrantedAt:    l.clock.Now(),
	}
	dm := ToDataModel(p)
	if err := l.repo.Create(ctx, dm); err != nil {
		if dberr.IsUniqueViolation(err) {
			return nil, ErrGrantAlreadyExists
		}
		return nil, fmt.Errorf("grant overtime to %s: %w", employeeID, err)
	}
	return FromDataModel(dm), nil
}

// Revoke reports whether a grant was removed.
func (l *Ledger) Revoke(ctx context.Context, employeeID string, date time.Time) (bool, error) {
	n, err := l.repo.DeleteByEmployeeAndDate(ctx, employeeID, date)
	if err != nil {
		return false, fmt.Errorf("revoke grant for %s: %w", employeeID, err)
	}
	return n > 0, nil
}

func (l *Ledger) RevokeAllForDate(ctx context.Context, date time.Time) (int64, error) {
	n, err := l.repo.DeleteByDate(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("revoke grants on %s: %w", date.Format("2006-01-02"), err)
	}
	return n, nil
}

// ListForDate returns the day's grants, most recent first.
func (l *Ledger) ListForDate(ctx context.Context, date time.Time) ([]GrantSummary, error) {
	rows, err := l.repo.ListByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("list grants on %s: %w", date.Format("2006-01-02"), err)
	}

	out := make([]GrantSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, GrantSummary{
			EmployeeID: row.EmployeeID,
			Name:       row.Name,
			GrantedBy:  row.GrantedBy,
			GrantedAt:  row.GrantedAt,
		})
	}
	return out, nil
}
