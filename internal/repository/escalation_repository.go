package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// EscalationRepository answers whether an unresolved escalation blocks a
// user's day close. Escalation lifecycle management itself lives outside
// this service; only the blocking check is queried here.
type EscalationRepository struct {
	db *sqlx.DB
}

// NewEscalationRepository constructs an EscalationRepository.
func NewEscalationRepository(db *sqlx.DB) *EscalationRepository {
	return &EscalationRepository{db: db}
}

// IsBlocked reports whether the user has an open escalation.
func (r *EscalationRepository) IsBlocked(ctx context.Context, userID string) (bool, error) {
	const query = `SELECT 1 FROM escalations WHERE user_id = $1 AND resolved_at IS NULL LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check escalation: %w", err)
	}
	return true, nil
}
