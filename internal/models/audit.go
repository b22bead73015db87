package models

import "time"

// Audit actions recorded in the trail. Auth actions are written by the
// auth service, the rest by the audit middleware on mutating routes.
const (
	AuditActionLogin           = "LOGIN"
	AuditActionLogout          = "LOGOUT"
	AuditActionPasswordChange  = "PASSWORD_CHANGE"
	AuditActionRecruitmentEdit = "RECRUITMENT_EDIT"
	AuditActionDayCloseSubmit  = "DAY_CLOSE_SUBMIT"
	AuditActionDayCloseResolve = "DAY_CLOSE_RESOLVE"
)

// AuditLog is one audit trail row. Old/NewValues hold JSON snapshots when
// the writer has them; auth entries carry a small status payload instead.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
