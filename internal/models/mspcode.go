package models

import "time"

// MSPCode is a finite catalog entry representing an assignable seat, scoped to
// a program family through ProgramCode.
type MSPCode struct {
	ID          string    `db:"id" json:"id"`
	Code        string    `db:"code" json:"code"`
	ProgramCode string    `db:"program_code" json:"program_code"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// MSPAssignment records an occupancy of an MSP code. An assignment is current
// when it is active and has no end date or an end date on or after today.
type MSPAssignment struct {
	ID        string     `db:"id" json:"id"`
	MSPCodeID string     `db:"msp_code_id" json:"msp_code_id"`
	HolderID  *string    `db:"holder_id" json:"holder_id,omitempty"`
	Active    bool       `db:"active" json:"active"`
	StartDate time.Time  `db:"start_date" json:"start_date"`
	EndDate   *time.Time `db:"end_date" json:"end_date,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// VacantMSPCode is the projection returned by the vacantMspCodes section.
type VacantMSPCode struct {
	ID          string `db:"id" json:"id"`
	Code        string `db:"code" json:"code"`
	ProgramCode string `db:"program_code" json:"program_code"`
}
