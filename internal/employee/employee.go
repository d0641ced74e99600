package employee

import (
	"time"

	employeeDatamodel "github.com/frahmantamala/meal-scan/internal/core/datamodel/employee"
)

type Employee struct {
	EmployeeID string    `json:"employee_id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}

// Summary is the employee payload echoed back by scan and grant responses.
type Summary struct {
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
}

func (e *Employee) Summary() Summary {
	return Summary{EmployeeID: e.EmployeeID, Name: e.Name}
}

func ToDataModel(e *Employee) *employeeDatamodel.Employee {
	return &employeeDatamodel.Employee{
		EmployeeID: e.EmployeeID,
		Name:       e.Name,
		CreatedAt:  e.CreatedAt,
	}
}

func FromDataModel(e *employeeDatamodel.Employee) *Employee {
	return &Employee{
		EmployeeID: e.EmployeeID,
		Name:       e.Name,
		CreatedAt:  e.CreatedAt,
	}
}
