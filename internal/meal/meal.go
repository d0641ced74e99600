package meal

import (
	"time"

	"github.com/frahmantamala/meal-scan/internal/employee"
	"github.com/frahmantamala/meal-scan/internal/overtime"
	"github.com/frahmantamala/meal-scan/internal/scan"
)

// Result codes returned to kiosk and supervisor screens.
const (
	CodeNormalSuccess     = "NORMAL_SUCCESS"
	CodeOvertimeSuccess   = "OVT_SUCCESS"
	CodePermissionGranted = "OVT_PERMISSION_GRANTED"
	CodeGrantRevoked      = "OVT_PERMISSION_REVOKED"
	CodeGrantsCleared     = "OVT_PERMISSIONS_CLEARED"
)

type ScanResult struct {
	Success      bool             `json:"success"`
	Code         string           `json:"code"`
	Message      string           `json:"message"`
	Kind         scan.Kind        `json:"scan_type"`
	Employee     employee.Summary `json:"employee"`
	ScanCount    int              `json:"scan_count"`
	BusinessDate string           `json:"business_date"`
	RecordedAt   time.Time        `json:"recorded_at"`
}

type GrantResult struct {
	Success      bool             `json:"success"`
	Code         string           `json:"code"`
	Message      string           `json:"message"`
	Employee     employee.Summary `json:"employee"`
	GrantedBy    string           `json:"granted_by"`
	GrantedAt    time.Time        `json:"granted_at"`
	BusinessDate string           `json:"business_date"`
}

type RevokeResult struct {
	Success  bool             `json:"success"`
	Code     string           `json:"code"`
	Message  string           `json:"message"`
	Employee employee.Summary `json:"employee"`
}

type RevokeAllResult struct {
	Success      bool   `json:"success"`
	Code         string `json:"code"`
	Message      string `json:"message"`
	DeletedCount int64  `json:"deleted_count"`
	BusinessDate string `json:"business_date"`
}

type GrantList struct {
	Success      bool                    `json:"success"`
	Data         []overtime.GrantSummary `json:"data"`
	Count        int                     `json:"count"`
	BusinessDate string                  `json:"business_date"`
}

// DayStatus is a read-only view of an employee's state for today.
type DayStatus struct {
	Employee     employee.Summary `json:"employee"`
	BusinessDate string           `json:"business_date"`
	Phase        scan.Phase       `json:"phase"`
	HasNormal    bool             `json:"has_normal"`
	HasOvertime  bool             `json:"has_overtime"`
	HasGrant     bool             `json:"has_grant"`
	ScanCount    int              `json:"scan_count"`
}

// RejectionDetails travels in the error payload of every business rejection
// so the caller can show who was rejected.
type RejectionDetails struct {
	Employee      employee.Summary     `json:"employee"`
	BusinessDate  string               `json:"business_date"`
	ExistingGrant *overtime.Permission `json:"existing_grant,omitempty"`
}
