package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeScanRecorded     = "scan.recorded"
	EventTypeOvertimeGranted  = "overtime.granted"
	EventTypeOvertimeRevoked  = "overtime.revoked"
	EventTypeDayRolledOver    = "day.rolled_over"
	businessDateLayout        = "2006-01-02"
)

// AllEventTypes lists every event published by the service.
var AllEventTypes = []string{
	EventTypeScanRecorded,
	EventTypeOvertimeGranted,
	EventTypeOvertimeRevoked,
	EventTypeDayRolledOver,
}

type ScanRecordedEvent struct {
	BaseEvent
	EmployeeID   string    `json:"employee_id"`
	BusinessDate time.Time `json:"business_date"`
	ScanKind     string    `json:"scan_kind"`
	ScanCount    int       `json:"scan_count"`
}

func NewScanRecordedEvent(employeeID string, businessDate time.Time, scanKind string, scanCount int) *ScanRecordedEvent {
	return &ScanRecordedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeScanRecorded,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"employee_id":   employeeID,
				"business_date": businessDate.Format(businessDateLayout),
				"scan_kind":     scanKind,
				"scan_count":    scanCount,
			},
		},
		EmployeeID:   employeeID,
		BusinessDate: businessDate,
		ScanKind:     scanKind,
		ScanCount:    scanCount,
	}
}

type OvertimeGrantedEvent struct {
	BaseEvent
	EmployeeID   string    `json:"employee_id"`
	BusinessDate time.Time `json:"business_date"`
	GrantedBy    string    `json:"granted_by"`
}

func NewOvertimeGrantedEvent(employeeID string, businessDate time.Time, grantedBy string) *OvertimeGrantedEvent {
	return &OvertimeGrantedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeOvertimeGranted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"employee_id":   employeeID,
				"business_date": businessDate.Format(businessDateLayout),
				"granted_by":    grantedBy,
			},
		},
		EmployeeID:   employeeID,
		BusinessDate: businessDate,
		GrantedBy:    grantedBy,
	}
}

// OvertimeRevokedEvent covers both single and bulk revocation. EmployeeID is
// empty for a bulk revoke.
type OvertimeRevokedEvent struct {
	BaseEvent
	EmployeeID   string    `json:"employee_id,omitempty"`
	BusinessDate time.Time `json:"business_date"`
	RevokedBy    string    `json:"revoked_by"`
	Count        int64     `json:"count"`
}

func NewOvertimeRevokedEvent(employeeID string, businessDate time.Time, revokedBy string, count int64) *OvertimeRevokedEvent {
	return &OvertimeRevokedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeOvertimeRevoked,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"employee_id":   employeeID,
				"business_date": businessDate.Format(businessDateLayout),
				"revoked_by":    revokedBy,
				"count":         count,
			},
		},
		EmployeeID:   employeeID,
		BusinessDate: businessDate,
		RevokedBy:    revokedBy,
		Count:        count,
	}
}

type DayRolledOverEvent struct {
	BaseEvent
	BusinessDate time.Time `json:"business_date"`
	NextRollover time.Time `json:"next_rollover"`
}

func NewDayRolledOverEvent(businessDate, nextRollover time.Time) *DayRolledOverEvent {
	return &DayRolledOverEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeDayRolledOver,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"business_date": businessDate.Format(businessDateLayout),
				"next_rollover": nextRollover.Format(time.RFC3339),
			},
		},
		BusinessDate: businessDate,
		NextRollover: nextRollover,
	}
}
