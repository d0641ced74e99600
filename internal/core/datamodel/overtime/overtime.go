package overtime

import "time"

type Permission struct {
	ID           int64     `gorm:"primaryKey"`
	EmployeeID   string    `gorm:"column:employee_id;size:255;not null;uniqueIndex:uq_overtime_permissions_employee_date,priority:1"`
	BusinessDate time.Time `gorm:"column:business_date;type:date;not null;uniqueIndex:uq_overtime_permissions_employee_date,priority:2"`
	GrantedBy    string    `gorm:"column:granted_by;size:255;not null"`
	GrantedAt    time.Time `gorm:"column:granted_at;not null"`
}

func (Permission) TableName() string {
	return "overtime_permissions"
}

// GrantRow is the joined projection used by the supervisor listing.
type GrantRow struct {
	EmployeeID string    `gorm:"column:employee_id"`
	Name       string    `gorm:"column:name"`
	GrantedBy  string    `gorm:"column:granted_by"`
	GrantedAt  time.Time `gorm:"column:granted_at"`
}
