package employee

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/frahmantamala/meal-scan/internal"
	"github.com/frahmantamala/meal-scan/internal/core/common/dberr"
	"github.com/frahmantamala/meal-scan/internal/core/common/validation"
	employeeDatamodel "github.com/frahmantamala/meal-scan/internal/core/datamodel/employee"
)

type RepositoryAPI interface {
	GetByEmployeeID(ctx context.Context, employeeID string) (*employeeDatamodel.Employee, error)
	GetAll(ctx context.Context) ([]*employeeDatamodel.Employee, error)
	Create(ctx context.Context, e *employeeDatamodel.Employee) error
	CreateIfAbsent(ctx context.Context, e *employeeDatamodel.Employee) (bool, error)
}

// Service is the employee directory.
type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// FindByEmployeeID returns internal.ErrEmployeeNotFound when the id is unknown.
func (s *Service) FindByEmployeeID(ctx context.Context, employeeID string) (*Employee, error) {
	dm, err := s.repo.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		s.logger.Error("failed to look up employee", "employee_id", employeeID, "error", err)
		return nil, fmt.Errorf("find employee %s: %w", employeeID, err)
	}
	if dm == nil {
		return nil, internal.ErrEmployeeNotFound
	}
	return FromDataModel(dm), nil
}

func (s *Service) List(ctx context.Context) ([]*Employee, error) {
	rows, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to list employees", "error", err)
		return nil, fmt.Errorf("list employees: %w", err)
	}

	employees := make([]*Employee, 0, len(rows))
	for _, row := range rows {
		employees = append(employees, FromDataModel(row))
	}
	return employees, nil
}

func (s *Service) Create(ctx context.Context, dto CreateEmployeeDTO) (*Employee, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	e := &Employee{EmployeeID: dto.EmployeeID, Name: dto.Name}
	dm := ToDataModel(e)
	if err := s.repo.Create(ctx, dm); err != nil {
		if dberr.IsUniqueViolation(err) {
			return nil, internal.ErrEmployeeAlreadyExists.WithDetails(e.Summary())
		}
		s.logger.Error("failed to create employee", "employee_id", dto.EmployeeID, "error", err)
		return nil, fmt.Errorf("create employee %s: %w", dto.EmployeeID, err)
	}

	s.logger.Info("employee created", "employee_id", dm.EmployeeID)
	return FromDataModel(dm), nil
}

// Import inserts rows whose employee id is not yet known. Rows with an empty
// id are counted as invalid; existing ids are left untouched.
func (s *Service) Import(ctx context.Context, rows []ImportRow) (ImportResult, error) {
	var result ImportResult
	for _, row := range rows {
		id := strings.TrimSpace(row.EmployeeID)
		name := strings.TrimSpace(row.Name)
		if validation.ValidateEmployeeID(id) != nil || name == "" {
			result.Invalid++
			continue
		}

		inserted, err := s.repo.CreateIfAbsent(ctx, &employeeDatamodel.Employee{EmployeeID: id, Name: name})
		if err != nil {
			s.logger.Error("import: failed to insert employee", "employee_id", id, "error", err)
			return result, fmt.Errorf("import employee %s: %w", id, err)
		}
		if inserted {
			result.Inserted++
		} else {
			result.Skipped++
		}
	}

	s.logger.Info("employee import finished",
		"inserted", result.Inserted,
		"skipped", result.Skipped,
		"invalid", result.Invalid)
	return result, nil
}

// ParseImport reads "ID<TAB>Name" lines. Blank lines are ignored and a header
// line starting with "id" is skipped.
func ParseImport(r io.Reader) ([]ImportRow, error) {
	var rows []ImportRow
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 2)
		id := strings.TrimSpace(parts[0])
		if len(rows) == 0 && strings.EqualFold(id, "id") {
			continue
		}
		row := ImportRow{EmployeeID: id}
		if len(parts) == 2 {
			row.Name = strings.TrimSpace(parts[1])
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read import: %w", err)
	}
	return rows, nil
}
