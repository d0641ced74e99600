package meal

import (
	"strings"

	"github.com/frahmantamala/meal-scan/internal"
	"github.com/frahmantamala/meal-scan/internal/core/common/validation"
)

type SubmitScanInput struct {
	EmployeeID string `json:"employee_id"`
}

func (in *SubmitScanInput) Normalize() {
	in.EmployeeID = strings.TrimSpace(in.EmployeeID)
}

func (in SubmitScanInput) Validate() *internal.AppError {
	return validation.ValidateEmployeeID(in.EmployeeID)
}

type ConfirmOvertimeInput struct {
	EmployeeID string `json:"employee_id"`
}

func (in *ConfirmOvertimeInput) Normalize() {
	in.EmployeeID = strings.TrimSpace(in.EmployeeID)
}

func (in ConfirmOvertimeInput) Validate() *internal.AppError {
	return validation.ValidateEmployeeID(in.EmployeeID)
}

// GrantInput is filled from the request body; GrantedBy comes from the
// authenticated actor, never from the body.
type GrantInput struct {
	EmployeeID string `json:"employee_id"`
	GrantedBy  string `json:"-"`
}

func (in *GrantInput) Normalize() {
	in.EmployeeID = strings.TrimSpace(in.EmployeeID)
	in.GrantedBy = strings.TrimSpace(in.GrantedBy)
}

func (in GrantInput) Validate() *internal.AppError {
	v := validation.NewValidator()
	validation.EmployeeIDField(v, in.EmployeeID)
	v.Field("granted_by", in.GrantedBy).
		Required().
		MaxLength(255)
	return v.Validate()
}

type RevokeInput struct {
	EmployeeID string
	Actor      internal.Actor
}

func (in *RevokeInput) Normalize() {
	in.EmployeeID = strings.TrimSpace(in.EmployeeID)
}

func (in RevokeInput) Validate() *internal.AppError {
	return validation.ValidateEmployeeID(in.EmployeeID)
}
