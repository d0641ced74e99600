package scan

import "time"

// Record is one row of the append-only scan ledger. The composite unique
// index is what keeps concurrent scans from producing a second row of the
// same kind for an employee and date.
type Record struct {
	ID           int64     `gorm:"primaryKey"`
	EmployeeID   string    `gorm:"column:employee_id;size:255;not null;uniqueIndex:uq_scan_records_employee_date_kind,priority:1"`
	BusinessDate time.Time `gorm:"column:business_date;type:date;not null;uniqueIndex:uq_scan_records_employee_date_kind,priority:2"`
	ScanKind     string    `gorm:"column:scan_kind;size:16;not null;uniqueIndex:uq_scan_records_employee_date_kind,priority:3"`
	RecordedAt   time.Time `gorm:"column:recorded_at;not null"`
}

func (Record) TableName() string {
	return "scan_records"
}
