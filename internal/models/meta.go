package models

import "time"

// Program is a recruitment program family (metadata entity, soft-deactivated).
type Program struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Code      string    `db:"code" json:"code"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Location is a site candidates can be assigned to (metadata entity).
type Location struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CountryCode maps a country to its dialing prefix (metadata entity).
type CountryCode struct {
	ID        string    `db:"id" json:"id"`
	Country   string    `db:"country" json:"country"`
	Prefix    string    `db:"prefix" json:"prefix"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ProgramRequirement is an open hiring requirement against a program
// (transactional entity, hard-deleted).
type ProgramRequirement struct {
	ID         string    `db:"id" json:"id"`
	ProgramID  string    `db:"program_id" json:"program_id"`
	Title      string    `db:"title" json:"title"`
	Headcount  int       `db:"headcount" json:"headcount"`
	LocationID *string   `db:"location_id" json:"location_id,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
