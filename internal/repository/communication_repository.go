package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-recruit-api/internal/models"
)

// CommunicationRepository persists candidate outreach logs.
type CommunicationRepository struct {
	db *sqlx.DB
}

// NewCommunicationRepository constructs a CommunicationRepository.
func NewCommunicationRepository(db *sqlx.DB) *CommunicationRepository {
	return &CommunicationRepository{db: db}
}

// List returns communication logs, optionally restricted to a candidate.
func (r *CommunicationRepository) List(ctx context.Context, candidateID string) ([]models.CommunicationLog, error) {
	query := `SELECT id, candidate_id, method, outcome, notes, communicated_on, created_by, created_at FROM communication_logs`
	args := []interface{}{}
	if candidateID != "" {
		query += ` WHERE candidate_id = $1`
		args = append(args, candidateID)
	}
	query += ` ORDER BY communicated_on DESC NULLS LAST, created_at DESC`
	var logs []models.CommunicationLog
	if err := r.db.SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, fmt.Errorf("list communication logs: %w", err)
	}
	return logs, nil
}

// Create inserts a communication log.
func (r *CommunicationRepository) Create(ctx context.Context, log *models.CommunicationLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO communication_logs (id, candidate_id, method, outcome, notes, communicated_on, created_by, created_at)
        VALUES (:id, :candidate_id, :method, :outcome, :notes, :communicated_on, :created_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create communication log: %w", err)
	}
	return nil
}

// Delete removes a communication log row (transactional entity, hard delete).
func (r *CommunicationRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM communication_logs WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete communication log: %w", err)
	}
	return nil
}
