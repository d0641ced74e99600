package scan

import (
	"errors"
	"time"

	scanDatamodel "github.com/frahmantamala/meal-scan/internal/core/datamodel/scan"
)

type Kind string

const (
	KindNormal   Kind = "normal"
	KindOvertime Kind = "overtime"
)

func (k Kind) Valid() bool {
	return k == KindNormal || k == KindOvertime
}

// Phase is the per-day authorization state derived from the ledger.
type Phase string

const (
	PhaseNoScan     Phase = "no_scan"
	PhaseNormalDone Phase = "normal_done"
	PhaseComplete   Phase = "complete"
)

// ErrDuplicateKind is returned when the ledger already holds a record of the
// same kind for the employee and date.
var ErrDuplicateKind = errors.New("scan of this kind already recorded")

type Record struct {
	ID           int64     `json:"id"`
	EmployeeID   string    `json:"employee_id"`
	BusinessDate time.Time `json:"business_date"`
	Kind         Kind      `json:"scan_type"`
	RecordedAt   time.Time `json:"recorded_at"`
}

// DayState holds an employee's records for one business date, oldest first.
type DayState struct {
	EmployeeID   string
	BusinessDate time.Time
	Records      []Record
}

func (d DayState) has(kind Kind) bool {
	for _, r := range d.Records {
		if r.Kind == kind {
			return true
		}
	}
	return false
}

func (d DayState) HasNormal() bool {
	return d.has(KindNormal)
}

func (d DayState) HasOvertime() bool {
	return d.has(KindOvertime)
}

func (d DayState) Count() int {
	return len(d.Records)
}

func (d DayState) Phase() Phase {
	switch {
	case d.HasOvertime():
		return PhaseComplete
	case d.HasNormal():
		return PhaseNormalDone
	default:
		return PhaseNoScan
	}
}

func ToDataModel(r *Record) *scanDatamodel.Record {
	return &scanDatamodel.Record{
		ID:           r.ID,
		EmployeeID:   r.EmployeeID,
		BusinessDate: r.BusinessDate,
		ScanKind:     string(r.Kind),
		RecordedAt:   r.RecordedAt,
	}
}

func FromDataModel(r *scanDatamodel.Record) *Record {
	return &Record{
		ID:           r.ID,
		EmployeeID:   r.EmployeeID,
		BusinessDate: r.BusinessDate,
		Kind:         Kind(r.ScanKind),
		RecordedAt:   r.RecordedAt,
	}
}
