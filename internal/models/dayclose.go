package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DayCloseStatus enumerates the per-(user, date) approval lifecycle. A record
// moves from pending to exactly one terminal state; a new date starts fresh.
type DayCloseStatus string

const (
	DayCloseStatusNone     DayCloseStatus = "none"
	DayCloseStatusPending  DayCloseStatus = "pending"
	DayCloseStatusApproved DayCloseStatus = "approved"
	DayCloseStatusRejected DayCloseStatus = "rejected"
)

// AssignedTaskUpdate snapshots a status/deadline/comment change on an
// assigned task at submission time.
type AssignedTaskUpdate struct {
	TaskID   string     `json:"task_id"`
	Status   string     `json:"status"`
	Deadline *time.Time `json:"deadline,omitempty"`
	Comment  string     `json:"comment,omitempty"`
}

// RoutineTaskUpdate snapshots a done/not-done flag for a routine task.
// Only today's flags are accepted; historical days are immutable.
type RoutineTaskUpdate struct {
	TaskID string `json:"task_id"`
	Done   bool   `json:"done"`
}

// AssignedTaskUpdates is a JSONB-persisted slice of task snapshots.
type AssignedTaskUpdates []AssignedTaskUpdate

// RoutineTaskUpdates is a JSONB-persisted slice of routine flags.
type RoutineTaskUpdates []RoutineTaskUpdate

// MRIClearance carries the optional MRI-clearance payload submitted with a
// day close. It is stored verbatim.
type MRIClearance struct {
	Cleared bool   `json:"cleared"`
	Notes   string `json:"notes,omitempty"`
}

// DayCloseRequest is the single authoritative record per (user, date).
type DayCloseRequest struct {
	ID                   string              `db:"id" json:"id"`
	UserID               string              `db:"user_id" json:"user_id"`
	Date                 time.Time           `db:"date" json:"date"`
	Status               DayCloseStatus      `db:"status" json:"status"`
	RoutineLog           string              `db:"routine_log" json:"routine_log"`
	GeneralLog           string              `db:"general_log" json:"general_log"`
	AssignedTaskUpdates  AssignedTaskUpdates `db:"assigned_task_updates" json:"assigned_task_updates"`
	RoutineTaskUpdates   RoutineTaskUpdates  `db:"routine_task_updates" json:"routine_task_updates"`
	MRIClearance         *MRIClearance       `db:"mri_clearance" json:"mri_clearance,omitempty"`
	Bypass               bool                `db:"bypass" json:"bypass"`
	ApprovedBy           *string             `db:"approved_by" json:"approved_by,omitempty"`
	ResolvedAt           *time.Time          `db:"resolved_at" json:"resolved_at,omitempty"`
	SupervisorRoutineLog *string             `db:"supervisor_routine_log" json:"supervisor_routine_log,omitempty"`
	SupervisorGeneralLog *string             `db:"supervisor_general_log" json:"supervisor_general_log,omitempty"`
	CreatedAt            time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time           `db:"updated_at" json:"updated_at"`
}

// Value marshals the snapshots for JSONB persistence.
func (u AssignedTaskUpdates) Value() (driver.Value, error) {
	if u == nil {
		u = AssignedTaskUpdates{}
	}
	data, err := json.Marshal(u)
	if err != nil {
		return nil, fmt.Errorf("marshal assigned task updates: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSONB payloads into the snapshot slice.
func (u *AssignedTaskUpdates) Scan(value interface{}) error {
	return scanJSON(value, u)
}

// Value marshals the routine flags for JSONB persistence.
func (u RoutineTaskUpdates) Value() (driver.Value, error) {
	if u == nil {
		u = RoutineTaskUpdates{}
	}
	data, err := json.Marshal(u)
	if err != nil {
		return nil, fmt.Errorf("marshal routine task updates: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSONB payloads into the routine flag slice.
func (u *RoutineTaskUpdates) Scan(value interface{}) error {
	return scanJSON(value, u)
}

// Value marshals the clearance payload for JSONB persistence.
func (m MRIClearance) Value() (driver.Value, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal mri clearance: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSONB payloads into the clearance struct.
func (m *MRIClearance) Scan(value interface{}) error {
	return scanJSON(value, m)
}

func scanJSON(value interface{}, dest interface{}) error {
	if value == nil {
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for json column", value)
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dest)
}
