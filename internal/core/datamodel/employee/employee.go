package employee

import "time"

type Employee struct {
	EmployeeID string    `gorm:"column:employee_id;primaryKey;size:255"`
	Name       string    `gorm:"column:name;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Employee) TableName() string {
	return "employees"
}
