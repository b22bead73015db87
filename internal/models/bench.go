package models

import "time"

// BenchEntry is a loosely-tracked lead that has not yet been promoted into the
// candidate pipeline.
type BenchEntry struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Phone     string    `db:"phone" json:"phone"`
	Email     *string   `db:"email" json:"email,omitempty"`
	Notes     string    `db:"notes" json:"notes"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// BenchPush logs a bench-to-candidate promotion so provenance is never lost.
// Each push records the candidate it produced and the parameters used.
type BenchPush struct {
	ID            string    `db:"id" json:"id"`
	BenchID       string    `db:"bench_id" json:"bench_id"`
	CandidateID   string    `db:"candidate_id" json:"candidate_id"`
	PushedBy      string    `db:"pushed_by" json:"pushed_by"`
	ProgramID     string    `db:"program_id" json:"program_id"`
	RequirementID *string   `db:"requirement_id" json:"requirement_id,omitempty"`
	LocationID    *string   `db:"location_id" json:"location_id,omitempty"`
	CountryCodeID string    `db:"country_code_id" json:"country_code_id"`
	MSPCodeID     *string   `db:"msp_code_id" json:"msp_code_id,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
