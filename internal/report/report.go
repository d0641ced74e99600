package report

import (
	"fmt"
	"time"

	"github.com/frahmantamala/meal-scan/internal/calendar"
	"github.com/frahmantamala/meal-scan/internal/scan"
)

// HeaderLayout renders dates the way the spreadsheet headers and the JSON
// date keys show them.
const HeaderLayout = "02/01/06"

// Range is an inclusive span of business dates.
type Range struct {
	Start time.Time
	End   time.Time
}

func (r Range) Days() int {
	return calendar.DaysBetween(r.Start, r.End)
}

// Dates lists every business date of the range in ascending order.
func (r Range) Dates() []time.Time {
	n := r.Days()
	if n <= 0 {
		return nil
	}
	dates := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		dates = append(dates, calendar.AddDays(r.Start, i))
	}
	return dates
}

func (r Range) Filename() string {
	return fmt.Sprintf("Laporan_Scan_%s_%s.xlsx", calendar.FormatDate(r.Start), calendar.FormatDate(r.End))
}

// EmployeeRow and ScanRow are what the reader returns.
type EmployeeRow struct {
	EmployeeID string `db:"employee_id"`
	Name       string `db:"name"`
}

type ScanRow struct {
	EmployeeID   string    `db:"employee_id"`
	BusinessDate time.Time `db:"business_date"`
	ScanKind     string    `db:"scan_kind"`
	RecordedAt   time.Time `db:"recorded_at"`
}

// Cell is one employee on one date.
type Cell struct {
	Normal     bool       `json:"normal"`
	Overtime   bool       `json:"overtime"`
	NormalAt   *time.Time `json:"normal_at"`
	OvertimeAt *time.Time `json:"overtime_at"`
}

type Row struct {
	EmployeeID string          `json:"employee_id"`
	Name       string          `json:"name"`
	Dates      map[string]Cell `json:"dates"`
	cells      []Cell
}

// Cells returns the row's cells in date order.
func (r Row) Cells() []Cell {
	return r.cells
}

type Report struct {
	Success   bool     `json:"success"`
	Data      []Row    `json:"data"`
	Dates     []string `json:"dates"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
}

// Matrix crosses every employee with every date of r.
func Matrix(r Range, employees []EmployeeRow, scans []ScanRow) *Report {
	dates := r.Dates()
	index := make(map[string]int, len(dates))
	labels := make([]string, len(dates))
	for i, d := range dates {
		index[calendar.FormatDate(d)] = i
		labels[i] = d.Format(HeaderLayout)
	}

	byEmployee := make(map[string][]Cell, len(employees))
	for _, e := range employees {
		byEmployee[e.EmployeeID] = make([]Cell, len(dates))
	}

	for _, s := range scans {
		cells, ok := byEmployee[s.EmployeeID]
		if !ok {
			continue
		}
		i, ok := index[calendar.FormatDate(s.BusinessDate.UTC())]
		if !ok {
			continue
		}
		at := s.RecordedAt
		switch scan.Kind(s.ScanKind) {
		case scan.KindNormal:
			cells[i].Normal = true
			cells[i].NormalAt = &at
		case scan.KindOvertime:
			cells[i].Overtime = true
			cells[i].OvertimeAt = &at
		}
	}

	rows := make([]Row, 0, len(employees))
	for _, e := range employees {
		cells := byEmployee[e.EmployeeID]
		byLabel := make(map[string]Cell, len(cells))
		for i, c := range cells {
			byLabel[labels[i]] = c
		}
		rows = append(rows, Row{EmployeeID: e.EmployeeID, Name: e.Name, Dates: byLabel, cells: cells})
	}

	return &Report{
		Success:   true,
		Data:      rows,
		Dates:     labels,
		StartDate: calendar.FormatDate(r.Start),
		EndDate:   calendar.FormatDate(r.End),
	}
}
