package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-recruit-api/internal/models"
)

// RequirementRepository manages program requirements (transactional entity,
// hard-deleted).
type RequirementRepository struct {
	db *sqlx.DB
}

// NewRequirementRepository constructs a RequirementRepository.
func NewRequirementRepository(db *sqlx.DB) *RequirementRepository {
	return &RequirementRepository{db: db}
}

// List returns requirements, optionally restricted to one program.
func (r *RequirementRepository) List(ctx context.Context, programID string) ([]models.ProgramRequirement, error) {
	query := `SELECT id, program_id, title, headcount, location_id, created_at, updated_at FROM program_requirements`
	args := []interface{}{}
	if programID != "" {
		query += ` WHERE program_id = $1`
		args = append(args, programID)
	}
	query += ` ORDER BY created_at DESC`
	var requirements []models.ProgramRequirement
	if err := r.db.SelectContext(ctx, &requirements, query, args...); err != nil {
		return nil, fmt.Errorf("list requirements: %w", err)
	}
	return requirements, nil
}

// FindByID fetches a requirement by identifier.
func (r *RequirementRepository) FindByID(ctx context.Context, id string) (*models.ProgramRequirement, error) {
	const query = `SELECT id, program_id, title, headcount, location_id, created_at, updated_at FROM program_requirements WHERE id = $1`
	var requirement models.ProgramRequirement
	if err := r.db.GetContext(ctx, &requirement, query, id); err != nil {
		return nil, err
	}
	return &requirement, nil
}

// Create inserts a requirement.
func (r *RequirementRepository) Create(ctx context.Context, requirement *models.ProgramRequirement) error {
	stampNew(&requirement.ID, &requirement.CreatedAt, &requirement.UpdatedAt)
	const query = `INSERT INTO program_requirements (id, program_id, title, headcount, location_id, created_at, updated_at)
        VALUES (:id, :program_id, :title, :headcount, :location_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, requirement); err != nil {
		return fmt.Errorf("create requirement: %w", err)
	}
	return nil
}

// Update modifies a requirement.
func (r *RequirementRepository) Update(ctx context.Context, requirement *models.ProgramRequirement) error {
	requirement.UpdatedAt = time.Now().UTC()
	const query = `UPDATE program_requirements SET program_id = :program_id, title = :title, headcount = :headcount, location_id = :location_id, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, requirement); err != nil {
		return fmt.Errorf("update requirement: %w", err)
	}
	return nil
}

// Delete removes a requirement row.
func (r *RequirementRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM program_requirements WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete requirement: %w", err)
	}
	return nil
}
