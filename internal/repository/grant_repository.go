package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-recruit-api/internal/models"
)

// GrantRepository persists per-section access grants for team managers.
type GrantRepository struct {
	db *sqlx.DB
}

// NewGrantRepository constructs a GrantRepository.
func NewGrantRepository(db *sqlx.DB) *GrantRepository {
	return &GrantRepository{db: db}
}

// FindForUserSection returns the grant row for (user, section), or
// sql.ErrNoRows when none exists.
func (r *GrantRepository) FindForUserSection(ctx context.Context, userID string, section models.Section) (*models.SectionGrant, error) {
	const query = `SELECT id, user_id, section, can_read, can_write, created_at, updated_at FROM section_grants WHERE user_id = $1 AND section = $2 LIMIT 1`
	var grant models.SectionGrant
	if err := r.db.GetContext(ctx, &grant, query, userID, section); err != nil {
		return nil, err
	}
	return &grant, nil
}

// ListForUser returns all grants held by a user.
func (r *GrantRepository) ListForUser(ctx context.Context, userID string) ([]models.SectionGrant, error) {
	const query = `SELECT id, user_id, section, can_read, can_write, created_at, updated_at FROM section_grants WHERE user_id = $1 ORDER BY section ASC`
	var grants []models.SectionGrant
	if err := r.db.SelectContext(ctx, &grants, query, userID); err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}
	return grants, nil
}

// Upsert inserts or replaces the grant for (user, section).
func (r *GrantRepository) Upsert(ctx context.Context, grant *models.SectionGrant) error {
	if grant.ID == "" {
		grant.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if grant.CreatedAt.IsZero() {
		grant.CreatedAt = now
	}
	grant.UpdatedAt = now
	const query = `INSERT INTO section_grants (id, user_id, section, can_read, can_write, created_at, updated_at)
        VALUES (:id, :user_id, :section, :can_read, :can_write, :created_at, :updated_at)
        ON CONFLICT (user_id, section) DO UPDATE SET can_read = EXCLUDED.can_read, can_write = EXCLUDED.can_write, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, grant); err != nil {
		return fmt.Errorf("upsert grant: %w", err)
	}
	return nil
}

// Delete removes the grant for (user, section).
func (r *GrantRepository) Delete(ctx context.Context, userID string, section models.Section) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM section_grants WHERE user_id = $1 AND section = $2`, userID, section); err != nil {
		return fmt.Errorf("delete grant: %w", err)
	}
	return nil
}
