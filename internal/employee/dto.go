package employee

import (
	"strings"

	errors "github.com/frahmantamala/meal-scan/internal"
	"github.com/frahmantamala/meal-scan/internal/core/common/validation"
)

type CreateEmployeeDTO struct {
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
}

func (d *CreateEmployeeDTO) Normalize() {
	d.EmployeeID = strings.TrimSpace(d.EmployeeID)
	d.Name = strings.TrimSpace(d.Name)
}

func (d CreateEmployeeDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	validation.EmployeeIDField(v, d.EmployeeID)
	v.Field("name", d.Name).
		Required().
		MaxLength(255)
	return v.Validate()
}

type EmployeesResponse struct {
	Employees []*Employee `json:"employees"`
	Count     int         `json:"count"`
}

// ImportRow is one line of a bulk employee import.
type ImportRow struct {
	EmployeeID string
	Name       string
}

type ImportResult struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
	Invalid  int `json:"invalid"`
}
