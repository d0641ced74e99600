package overtime

import (
	"errors"
	"time"

	overtimeDatamodel "github.com/frahmantamala/meal-scan/internal/core/datamodel/overtime"
)

// ErrGrantAlreadyExists is returned when a grant for the employee and date is
// already on the ledger.
var ErrGrantAlreadyExists = errors.New("overtime grant already exists")

type Permission struct {
	ID           int64     `json:"-"`
	EmployeeID   string    `json:"employee_id"`
	BusinessDate time.Time `json:"business_date"`
	GrantedBy    string    `json:"granted_by"`
	GrantedAt    time.Time `json:"granted_at"`
}

// GrantSummary is a grant joined with the employee name.
type GrantSummary struct {
	EmployeeID string    `json:"employee_id"`
	Name       string    `json:"name"`
	GrantedBy  string    `json:"granted_by"`
	GrantedAt  time.Time `json:"granted_at"`
}

func ToDataModel(p *Permission) *overtimeDatamodel.Permission {
	return &overtimeDatamodel.Permission{
		ID:           p.ID,
		EmployeeID:   p.EmployeeID,
		BusinessDate: p.BusinessDate,
		GrantedBy:    p.GrantedBy,
		GrantedAt:    p.GrantedAt,
	}
}

func FromDataModel(p *overtimeDatamodel.Permission) *Permission {
	return &Permission{
		ID:           p.ID,
		EmployeeID:   p.EmployeeID,
		BusinessDate: p.BusinessDate,
		GrantedBy:    p.GrantedBy,
		GrantedAt:    p.GrantedAt,
	}
}
