package meal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/meal-scan/internal"
	"github.com/frahmantamala/meal-scan/internal/calendar"
	"github.com/frahmantamala/meal-scan/internal/core/events"
	"github.com/frahmantamala/meal-scan/internal/employee"
	"github.com/frahmantamala/meal-scan/internal/overtime"
	"github.com/frahmantamala/meal-scan/internal/scan"
	"github.com/frahmantamala/meal-scan/pkg/logger"
)

type EmployeeDirectory interface {
	FindByEmployeeID(ctx context.Context, employeeID string) (*employee.Employee, error)
}

type ScanLedger interface {
	ListScansForDate(ctx context.Context, employeeID string, date time.Time) (scan.DayState, error)
	AppendScan(ctx context.Context, employeeID string, date time.Time, kind scan.Kind) (*scan.Record, error)
}

type PermissionLedger interface {
	FindGrant(ctx context.Context, employeeID string, date time.Time) (*overtime.Permission, error)
	Grant(ctx context.Context, employeeID string, date time.Time, grantedBy string) (*overtime.Permission, error)
	Revoke(ctx context.Context, employeeID string, date time.Time) (bool, error)
	RevokeAllForDate(ctx context.Context, date time.Time) (int64, error)
	ListForDate(ctx context.Context, date time.Time) ([]overtime.GrantSummary, error)
}

type BusinessCalendar interface {
	CurrentBusinessDate() time.Time
}

// Service is the scan authorization engine. Per employee and business date
// it moves NoScan -> NormalDone -> Complete, with the second step gated by an
// overtime grant. It holds no state of its own; the ledgers' unique keys
// settle concurrent writers.
type Service struct {
	directory EmployeeDirectory
	scans     ScanLedger
	grants    PermissionLedger
	calendar  BusinessCalendar
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(
	directory EmployeeDirectory,
	scans ScanLedger,
	grants PermissionLedger,
	cal BusinessCalendar,
	publisher events.Publisher,
	logger *slog.Logger,
) *Service {
	return &Service{
		directory: directory,
		scans:     scans,
		grants:    grants,
		calendar:  cal,
		publisher: publisher,
		logger:    logger,
	}
}

// SubmitScan records the employee's first meal of the day, or the overtime
// meal when a normal scan already exists.
func (s *Service) SubmitScan(ctx context.Context, in SubmitScanInput) (*ScanResult, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	date := s.calendar.CurrentBusinessDate()
	emp, err := s.directory.FindByEmployeeID(ctx, in.EmployeeID)
	if err != nil {
		return nil, s.fail(ctx, "SubmitScan", in.EmployeeID, date, err)
	}

	state, err := s.scans.ListScansForDate(ctx, emp.EmployeeID, date)
	if err != nil {
		return nil, s.fail(ctx, "SubmitScan", emp.EmployeeID, date, err)
	}

	if !state.HasNormal() {
		return s.recordNormal(ctx, emp, date, state)
	}
	return s.advanceToOvertime(ctx, "SubmitScan", emp, date, state)
}

// ConfirmOvertimeScan only ever records the overtime meal.
func (s *Service) ConfirmOvertimeScan(ctx context.Context, in ConfirmOvertimeInput) (*ScanResult, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	date := s.calendar.CurrentBusinessDate()
	emp, err := s.directory.FindByEmployeeID(ctx, in.EmployeeID)
	if err != nil {
		return nil, s.fail(ctx, "ConfirmOvertimeScan", in.EmployeeID, date, err)
	}

	state, err := s.scans.ListScansForDate(ctx, emp.EmployeeID, date)
	if err != nil {
		return nil, s.fail(ctx, "ConfirmOvertimeScan", emp.EmployeeID, date, err)
	}

	return s.advanceToOvertime(ctx, "ConfirmOvertimeScan", emp, date, state)
}

func (s *Service) recordNormal(ctx context.Context, emp *employee.Employee, date time.Time, state scan.DayState) (*ScanResult, error) {
	rec, err := s.scans.AppendScan(ctx, emp.EmployeeID, date, scan.KindNormal)
	if err != nil {
		if errors.Is(err, scan.ErrDuplicateKind) {
			// a concurrent request wrote the normal scan first
			return nil, s.reject(ctx, "SubmitScan", internal.ErrDuplicateScanKind, emp, date, nil)
		}
		return nil, s.fail(ctx, "SubmitScan", emp.EmployeeID, date, err)
	}

	count := state.Count() + 1
	s.log(ctx).Info("normal meal scan recorded",
		"employee_id", emp.EmployeeID,
		"business_date", calendar.FormatDate(date),
		"scan_count", count)
	s.publish(ctx, events.NewScanRecordedEvent(emp.EmployeeID, date, string(scan.KindNormal), count))

	return &ScanResult{
		Success:      true,
		Code:         CodeNormalSuccess,
		Message:      fmt.Sprintf("Normal meal recorded for %s", emp.Name),
		Kind:         scan.KindNormal,
		Employee:     emp.Summary(),
		ScanCount:    count,
		BusinessDate: calendar.FormatDate(date),
		RecordedAt:   rec.RecordedAt,
	}, nil
}

// advanceToOvertime is the single guarded NormalDone -> Complete transition
// shared by both scan entry points. Guards run in a fixed order: normal scan
// present, overtime not yet taken, grant present.
func (s *Service) advanceToOvertime(ctx context.Context, op string, emp *employee.Employee, date time.Time, state scan.DayState) (*ScanResult, error) {
	if !state.HasNormal() {
		return nil, s.reject(ctx, op, internal.ErrNeedsNormalScanFirst, emp, date, nil)
	}
	if state.HasOvertime() {
		return nil, s.reject(ctx, op, internal.ErrAlreadyScannedOvertime, emp, date, nil)
	}

	grant, err := s.grants.FindGrant(ctx, emp.EmployeeID, date)
	if err != nil {
		return nil, s.fail(ctx, op, emp.EmployeeID, date, err)
	}
	if grant == nil {
		return nil, s.reject(ctx, op, internal.ErrOvertimeNotRegistered, emp, date, nil)
	}

	rec, err := s.scans.AppendScan(ctx, emp.EmployeeID, date, scan.KindOvertime)
	if err != nil {
		if errors.Is(err, scan.ErrDuplicateKind) {
			return nil, s.reject(ctx, op, internal.ErrAlreadyScannedOvertime, emp, date, nil)
		}
		return nil, s.fail(ctx, op, emp.EmployeeID, date, err)
	}

	count := state.Count() + 1
	s.log(ctx).Info("overtime meal scan recorded",
		"operation", op,
		"employee_id", emp.EmployeeID,
		"business_date", calendar.FormatDate(date),
		"granted_by", grant.GrantedBy,
		"scan_count", count)
	s.publish(ctx, events.NewScanRecordedEvent(emp.EmployeeID, date, string(scan.KindOvertime), count))

	return &ScanResult{
		Success:      true,
		Code:         CodeOvertimeSuccess,
		Message:      fmt.Sprintf("Overtime meal recorded for %s", emp.Name),
		Kind:         scan.KindOvertime,
		Employee:     emp.Summary(),
		ScanCount:    count,
		BusinessDate: calendar.FormatDate(date),
		RecordedAt:   rec.RecordedAt,
	}, nil
}

// GrantOvertimePermission authorizes one overtime meal for today. Scan state
// is not consulted.
func (s *Service) GrantOvertimePermission(ctx context.Context, in GrantInput) (*GrantResult, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	date := s.calendar.CurrentBusinessDate()
	emp, err := s.directory.FindByEmployeeID(ctx, in.EmployeeID)
	if err != nil {
		return nil, s.fail(ctx, "GrantOvertimePermission", in.EmployeeID, date, err)
	}

	existing, err := s.grants.FindGrant(ctx, emp.EmployeeID, date)
	if err != nil {
		return nil, s.fail(ctx, "GrantOvertimePermission", emp.EmployeeID, date, err)
	}
	if existing != nil {
		return nil, s.reject(ctx, "GrantOvertimePermission", internal.ErrPermissionAlreadyExists, emp, date, existing)
	}

	grant, err := s.grants.Grant(ctx, emp.EmployeeID, date, in.GrantedBy)
	if err != nil {
		if errors.Is(err, overtime.ErrGrantAlreadyExists) {
			existing, _ = s.grants.FindGrant(ctx, emp.EmployeeID, date)
			return nil, s.reject(ctx, "GrantOvertimePermission", internal.ErrPermissionAlreadyExists, emp, date, existing)
		}
		return nil, s.fail(ctx, "GrantOvertimePermission", emp.EmployeeID, date, err)
	}

	s.log(ctx).Info("overtime permission granted",
		"employee_id", emp.EmployeeID,
		"business_date", calendar.FormatDate(date),
		"granted_by", grant.GrantedBy)
	s.publish(ctx, events.NewOvertimeGrantedEvent(emp.EmployeeID, date, grant.GrantedBy))

	return &GrantResult{
		Success:      true,
		Code:         CodePermissionGranted,
		Message:      fmt.Sprintf("Overtime permission granted to %s", emp.Name),
		Employee:     emp.Summary(),
		GrantedBy:    grant.GrantedBy,
		GrantedAt:    grant.GrantedAt,
		BusinessDate: calendar.FormatDate(date),
	}, nil
}

func (s *Service) ListTodaysGrants(ctx context.Context) (*GrantList, error) {
	date := s.calendar.CurrentBusinessDate()
	grants, err := s.grants.ListForDate(ctx, date)
	if err != nil {
		return nil, s.fail(ctx, "ListTodaysGrants", "", date, err)
	}

	return &GrantList{
		Success:      true,
		Data:         grants,
		Count:        len(grants),
		BusinessDate: calendar.FormatDate(date),
	}, nil
}

// RevokeGrant removes today's grant for one employee. Scan records are never
// touched, so an overtime meal already taken stays recorded.
func (s *Service) RevokeGrant(ctx context.Context, in RevokeInput) (*RevokeResult, error) {
	if !in.Actor.IsAdmin {
		return nil, internal.ErrForbidden
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	date := s.calendar.CurrentBusinessDate()
	removed, err := s.grants.Revoke(ctx, in.EmployeeID, date)
	if err != nil {
		return nil, s.fail(ctx, "RevokeGrant", in.EmployeeID, date, err)
	}
	if !removed {
		return nil, internal.ErrGrantNotFound.WithDetails(RejectionDetails{
			Employee:     employee.Summary{EmployeeID: in.EmployeeID},
			BusinessDate: calendar.FormatDate(date),
		})
	}

	summary := employee.Summary{EmployeeID: in.EmployeeID}
	if emp, err := s.directory.FindByEmployeeID(ctx, in.EmployeeID); err == nil {
		summary = emp.Summary()
	}

	s.log(ctx).Info("overtime permission revoked",
		"employee_id", in.EmployeeID,
		"business_date", calendar.FormatDate(date),
		"revoked_by", in.Actor.Username)
	s.publish(ctx, events.NewOvertimeRevokedEvent(in.EmployeeID, date, in.Actor.Username, 1))

	return &RevokeResult{
		Success:  true,
		Code:     CodeGrantRevoked,
		Message:  fmt.Sprintf("Overtime permission for %s revoked", summary.EmployeeID),
		Employee: summary,
	}, nil
}

// RevokeAllGrantsForToday clears every grant of the current business date.
// Zero removed grants is a success.
func (s *Service) RevokeAllGrantsForToday(ctx context.Context, actor internal.Actor) (*RevokeAllResult, error) {
	if !actor.IsAdmin {
		return nil, internal.ErrForbidden
	}

	date := s.calendar.CurrentBusinessDate()
	n, err := s.grants.RevokeAllForDate(ctx, date)
	if err != nil {
		return nil, s.fail(ctx, "RevokeAllGrantsForToday", "", date, err)
	}

	s.log(ctx).Info("overtime permissions cleared",
		"business_date", calendar.FormatDate(date),
		"deleted_count", n,
		"revoked_by", actor.Username)
	if n > 0 {
		s.publish(ctx, events.NewOvertimeRevokedEvent("", date, actor.Username, n))
	}

	return &RevokeAllResult{
		Success:      true,
		Code:         CodeGrantsCleared,
		Message:      fmt.Sprintf("%d overtime permissions revoked", n),
		DeletedCount: n,
		BusinessDate: calendar.FormatDate(date),
	}, nil
}

// DayStatus reports today's phase and grant presence without changing state.
func (s *Service) DayStatus(ctx context.Context, employeeID string) (*DayStatus, error) {
	in := SubmitScanInput{EmployeeID: employeeID}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	date := s.calendar.CurrentBusinessDate()
	emp, err := s.directory.FindByEmployeeID(ctx, in.EmployeeID)
	if err != nil {
		return nil, s.fail(ctx, "DayStatus", in.EmployeeID, date, err)
	}

	state, err := s.scans.ListScansForDate(ctx, emp.EmployeeID, date)
	if err != nil {
		return nil, s.fail(ctx, "DayStatus", emp.EmployeeID, date, err)
	}
	grant, err := s.grants.FindGrant(ctx, emp.EmployeeID, date)
	if err != nil {
		return nil, s.fail(ctx, "DayStatus", emp.EmployeeID, date, err)
	}

	return &DayStatus{
		Employee:     emp.Summary(),
		BusinessDate: calendar.FormatDate(date),
		Phase:        state.Phase(),
		HasNormal:    state.HasNormal(),
		HasOvertime:  state.HasOvertime(),
		HasGrant:     grant != nil,
		ScanCount:    state.Count(),
	}, nil
}

func (s *Service) reject(ctx context.Context, op string, base *internal.AppError, emp *employee.Employee, date time.Time, existing *overtime.Permission) error {
	s.log(ctx).Info("scan request rejected",
		"operation", op,
		"code", base.Code,
		"employee_id", emp.EmployeeID,
		"business_date", calendar.FormatDate(date))
	return base.WithDetails(RejectionDetails{
		Employee:      emp.Summary(),
		BusinessDate:  calendar.FormatDate(date),
		ExistingGrant: existing,
	})
}

// fail passes business errors through and wraps everything else as an
// infrastructure failure, logged with the operation context.
func (s *Service) fail(ctx context.Context, op, employeeID string, date time.Time, err error) error {
	if appErr, ok := internal.IsAppError(err); ok {
		if errors.Is(appErr, internal.ErrEmployeeNotFound) {
			return appErr.WithDetails(RejectionDetails{
				Employee:     employee.Summary{EmployeeID: employeeID},
				BusinessDate: calendar.FormatDate(date),
			})
		}
		return appErr
	}
	s.log(ctx).Error("meal operation failed",
		"operation", op,
		"employee_id", employeeID,
		"business_date", calendar.FormatDate(date),
		"error", err)
	return fmt.Errorf("%s: %w", op, err)
}

func (s *Service) log(ctx context.Context) *slog.Logger {
	return logger.FromOr(ctx, s.logger)
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log(ctx).Warn("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}
