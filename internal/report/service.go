package report

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/frahmantamala/meal-scan/internal"
	"github.com/frahmantamala/meal-scan/internal/calendar"
	"github.com/frahmantamala/meal-scan/internal/core/common/validation"
	"github.com/xuri/excelize/v2"
)

const SheetName = "Laporan Scan"

type Reader interface {
	ListEmployees(ctx context.Context) ([]EmployeeRow, error)
	ListScansBetween(ctx context.Context, start, end time.Time) ([]ScanRow, error)
}

type BusinessCalendar interface {
	CurrentBusinessDate() time.Time
}

type Service struct {
	reader      Reader
	calendar    BusinessCalendar
	maxDays     int
	defaultDays int
	logger      *slog.Logger
}

func NewService(reader Reader, cal BusinessCalendar, maxDays, defaultDays int, logger *slog.Logger) *Service {
	if maxDays <= 0 {
		maxDays = 30
	}
	if defaultDays <= 0 || defaultDays > maxDays {
		defaultDays = 7
	}
	return &Service{
		reader:      reader,
		calendar:    cal,
		maxDays:     maxDays,
		defaultDays: defaultDays,
		logger:      logger,
	}
}

// RangeQuery holds the raw query parameters of a report request.
type RangeQuery struct {
	StartDate string
	EndDate   string
	Days      string
}

// ResolveRange turns a query into a Range. An explicit start/end pair wins,
// then days ending today, then the default window ending today.
func (s *Service) ResolveRange(q RangeQuery) (Range, error) {
	today := s.calendar.CurrentBusinessDate()
	startRaw := strings.TrimSpace(q.StartDate)
	endRaw := strings.TrimSpace(q.EndDate)
	daysRaw := strings.TrimSpace(q.Days)

	if startRaw != "" && endRaw != "" {
		return s.explicitRange(startRaw, endRaw)
	}

	days := s.defaultDays
	if daysRaw != "" {
		n, err := strconv.Atoi(daysRaw)
		if err != nil {
			return Range{}, internal.NewValidationFieldError("days", "days must be a number", internal.ErrCodeInvalidRange)
		}
		v := validation.NewValidator()
		v.Field("days", n).
			MinInt(1, internal.ErrCodeInvalidRange).
			MaxInt(s.maxDays, internal.ErrCodeRangeTooLong)
		if appErr := v.Validate(); appErr != nil {
			return Range{}, appErr
		}
		days = n
	}

	return Range{Start: calendar.AddDays(today, -(days - 1)), End: today}, nil
}

func (s *Service) explicitRange(startRaw, endRaw string) (Range, error) {
	start, err := calendar.ParseDate(startRaw)
	if err != nil {
		return Range{}, internal.NewValidationFieldError("start_date", "start_date must be YYYY-MM-DD", internal.ErrCodeInvalidDate)
	}
	end, err := calendar.ParseDate(endRaw)
	if err != nil {
		return Range{}, internal.NewValidationFieldError("end_date", "end_date must be YYYY-MM-DD", internal.ErrCodeInvalidDate)
	}

	r := Range{Start: start, End: end}
	v := validation.NewValidator()
	v.Field("end_date", end).NotBefore(start, "start_date")
	if !end.Before(start) {
		v.Field("range_days", r.Days()).MaxInt(s.maxDays, internal.ErrCodeRangeTooLong)
	}
	if appErr := v.Validate(); appErr != nil {
		return Range{}, appErr
	}
	return r, nil
}

func (s *Service) Build(ctx context.Context, r Range) (*Report, error) {
	employees, err := s.reader.ListEmployees(ctx)
	if err != nil {
		s.logger.Error("failed to list employees for report", "error", err)
		return nil, fmt.Errorf("report: list employees: %w", err)
	}

	scans, err := s.reader.ListScansBetween(ctx, r.Start, r.End)
	if err != nil {
		s.logger.Error("failed to list scans for report",
			"start_date", calendar.FormatDate(r.Start),
			"end_date", calendar.FormatDate(r.End),
			"error", err)
		return nil, fmt.Errorf("report: list scans: %w", err)
	}

	s.logger.Debug("report built",
		"start_date", calendar.FormatDate(r.Start),
		"end_date", calendar.FormatDate(r.End),
		"employees", len(employees),
		"scans", len(scans))

	return Matrix(r, employees, scans), nil
}

// Export renders the report as a single-sheet workbook. Each date gets a
// Normal and an Overtime column holding 1 or nothing.
func (s *Service) Export(ctx context.Context, r Range) (*bytes.Buffer, string, error) {
	rep, err := s.Build(ctx, r)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(SheetName)
	if err != nil {
		return nil, "", fmt.Errorf("report: new sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, "", fmt.Errorf("report: delete default sheet: %w", err)
	}

	header := []interface{}{"Employee ID", "Nama"}
	for _, label := range rep.Dates {
		header = append(header, label+" - Normal", label+" - Overtime")
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, "", fmt.Errorf("report: write header: %w", err)
	}

	for i, row := range rep.Data {
		values := []interface{}{row.EmployeeID, row.Name}
		for _, c := range row.Cells() {
			values = append(values, mark(c.Normal), mark(c.Overtime))
		}
		if err := f.SetSheetRow(SheetName, cell("A", i+2), &values); err != nil {
			return nil, "", fmt.Errorf("report: write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(SheetName, "A", "A", 15); err != nil {
		return nil, "", err
	}
	if err := f.SetColWidth(SheetName, "B", "B", 25); err != nil {
		return nil, "", err
	}
	if n := len(rep.Dates); n > 0 {
		last := colName(2 + 2*n)
		if err := f.SetColWidth(SheetName, "C", last, 15); err != nil {
			return nil, "", err
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("failed to write report workbook", "error", err)
		return nil, "", fmt.Errorf("report: write workbook: %w", err)
	}

	return buf, r.Filename(), nil
}

func mark(ok bool) interface{} {
	if ok {
		return 1
	}
	return nil
}

func colName(n int) string {
	name, _ := excelize.ColumnNumberToName(n)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
