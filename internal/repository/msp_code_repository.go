package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-recruit-api/internal/models"
)

// MSPCodeRepository manages the MSP code catalog and its assignments.
type MSPCodeRepository struct {
	db *sqlx.DB
}

// NewMSPCodeRepository constructs an MSPCodeRepository.
func NewMSPCodeRepository(db *sqlx.DB) *MSPCodeRepository {
	return &MSPCodeRepository{db: db}
}

// FindByID fetches an MSP code by identifier.
func (r *MSPCodeRepository) FindByID(ctx context.Context, id string) (*models.MSPCode, error) {
	const query = `SELECT id, code, program_code, active, created_at, updated_at FROM msp_codes WHERE id = $1`
	var code models.MSPCode
	if err := r.db.GetContext(ctx, &code, query, id); err != nil {
		return nil, err
	}
	return &code, nil
}

// HasActiveAssignment reports whether the code has a current assignment row:
// active with no end date or an end date on or after today.
func (r *MSPCodeRepository) HasActiveAssignment(ctx context.Context, mspCodeID string) (bool, error) {
	const query = `SELECT 1 FROM msp_assignments WHERE msp_code_id = $1 AND active = TRUE AND (end_date IS NULL OR end_date >= CURRENT_DATE) LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, mspCodeID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check msp assignment: %w", err)
	}
	return true, nil
}

// HolderCandidateID returns the id of the candidate referencing the code, or
// empty when none does.
func (r *MSPCodeRepository) HolderCandidateID(ctx context.Context, mspCodeID string) (string, error) {
	const query = `SELECT id FROM candidates WHERE msp_code_id = $1 LIMIT 1`
	var candidateID string
	if err := r.db.GetContext(ctx, &candidateID, query, mspCodeID); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("find msp holder: %w", err)
	}
	return candidateID, nil
}

// ListVacant returns active codes with no current assignment and no holding
// candidate, optionally restricted to a program family.
func (r *MSPCodeRepository) ListVacant(ctx context.Context, programCode string) ([]models.VacantMSPCode, error) {
	query := `SELECT m.id, m.code, m.program_code FROM msp_codes m
        WHERE m.active = TRUE
        AND NOT EXISTS (SELECT 1 FROM msp_assignments a WHERE a.msp_code_id = m.id AND a.active = TRUE AND (a.end_date IS NULL OR a.end_date >= CURRENT_DATE))
        AND NOT EXISTS (SELECT 1 FROM candidates c WHERE c.msp_code_id = m.id)`
	args := []interface{}{}
	if programCode != "" {
		query += " AND LOWER(m.program_code) = LOWER($1)"
		args = append(args, programCode)
	}
	query += " ORDER BY m.code ASC"

	var codes []models.VacantMSPCode
	if err := r.db.SelectContext(ctx, &codes, query, args...); err != nil {
		return nil, fmt.Errorf("list vacant msp codes: %w", err)
	}
	return codes, nil
}
