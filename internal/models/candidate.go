package models

import "time"

// CandidateStatus represents the lifecycle state of a candidate record.
type CandidateStatus string

const (
	CandidateStatusActive    CandidateStatus = "Active"
	CandidateStatusInactive  CandidateStatus = "Inactive"
	CandidateStatusWithdrawn CandidateStatus = "Withdrawn"
)

// CandidateStatusOptions enumerates the accepted candidate statuses.
var CandidateStatusOptions = []CandidateStatus{
	CandidateStatusActive,
	CandidateStatusInactive,
	CandidateStatusWithdrawn,
}

// ValidCandidateStatus reports whether the given value is a known status.
func ValidCandidateStatus(s CandidateStatus) bool {
	for _, opt := range CandidateStatusOptions {
		if s == opt {
			return true
		}
	}
	return false
}

// Candidate represents a person moving through the recruitment pipeline.
// Candidates are soft-deactivated via Status; MSP code and requirement slot
// assignments are optional.
type Candidate struct {
	ID            string          `db:"id" json:"id"`
	FirstName     string          `db:"first_name" json:"first_name"`
	LastName      *string         `db:"last_name" json:"last_name,omitempty"`
	Email         string          `db:"email" json:"email"`
	Phone         string          `db:"phone" json:"phone"`
	ProgramID     string          `db:"program_id" json:"program_id"`
	RequirementID *string         `db:"requirement_id" json:"requirement_id,omitempty"`
	MSPCodeID     *string         `db:"msp_code_id" json:"msp_code_id,omitempty"`
	LocationID    *string         `db:"location_id" json:"location_id,omitempty"`
	Status        CandidateStatus `db:"status" json:"status"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// CandidateDetail joins the candidate with its program, location and MSP code.
type CandidateDetail struct {
	Candidate
	ProgramName  *string `db:"program_name" json:"program_name,omitempty"`
	ProgramCode  *string `db:"program_code" json:"program_code,omitempty"`
	LocationName *string `db:"location_name" json:"location_name,omitempty"`
	MSPCode      *string `db:"msp_code" json:"msp_code,omitempty"`
}

// CandidateFilter captures the supported list filters.
type CandidateFilter struct {
	Search     string
	ProgramID  string
	Status     *CandidateStatus
	ActiveOnly bool
	Page       int
	PageSize   int
}
