package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/sma-recruit-api/internal/models"
	appErrors "github.com/noah-isme/sma-recruit-api/pkg/errors"
)

const dayCloseColumns = `id, user_id, date, status, routine_log, general_log, assigned_task_updates, routine_task_updates, mri_clearance, bypass, approved_by, resolved_at, supervisor_routine_log, supervisor_general_log, created_at, updated_at`

// DayCloseRepository persists day-close requests. A partial unique index on
// (user_id, date) WHERE status = 'pending' backs the single-pending
// invariant; its violation maps to a conflict error.
type DayCloseRepository struct {
	db *sqlx.DB
}

// NewDayCloseRepository constructs a DayCloseRepository.
func NewDayCloseRepository(db *sqlx.DB) *DayCloseRepository {
	return &DayCloseRepository{db: db}
}

// FindByUserDate returns the authoritative record for (user, date), or
// sql.ErrNoRows when the day has no record yet.
func (r *DayCloseRepository) FindByUserDate(ctx context.Context, userID string, date time.Time) (*models.DayCloseRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM day_close_requests WHERE user_id = $1 AND date = $2 ORDER BY created_at DESC LIMIT 1`, dayCloseColumns)
	var request models.DayCloseRequest
	if err := r.db.GetContext(ctx, &request, query, userID, date.Format("2006-01-02")); err != nil {
		return nil, err
	}
	return &request, nil
}

// Create persists a new pending submission.
func (r *DayCloseRepository) Create(ctx context.Context, request *models.DayCloseRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if request.CreatedAt.IsZero() {
		request.CreatedAt = now
	}
	request.UpdatedAt = now
	const query = `INSERT INTO day_close_requests (id, user_id, date, status, routine_log, general_log, assigned_task_updates, routine_task_updates, mri_clearance, bypass, approved_by, resolved_at, supervisor_routine_log, supervisor_general_log, created_at, updated_at)
        VALUES (:id, :user_id, :date, :status, :routine_log, :general_log, :assigned_task_updates, :routine_task_updates, :mri_clearance, :bypass, :approved_by, :resolved_at, :supervisor_routine_log, :supervisor_general_log, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" && strings.Contains(pqErr.Constraint, "pending") {
			return appErrors.Clone(appErrors.ErrConflict, "a day close request is already pending for this date")
		}
		return fmt.Errorf("create day close request: %w", err)
	}
	return nil
}

// Resolve moves a pending record to its terminal state, recording the
// approver and optional counter-logs. Only pending rows transition; the
// affected-row count tells the caller whether the record was still pending.
func (r *DayCloseRepository) Resolve(ctx context.Context, id string, status models.DayCloseStatus, approverID string, routineLog, generalLog *string) (bool, error) {
	const query = `UPDATE day_close_requests
        SET status = $2, approved_by = $3, resolved_at = $4, supervisor_routine_log = $5, supervisor_general_log = $6, updated_at = $4
        WHERE id = $1 AND status = $7`
	result, err := r.db.ExecContext(ctx, query, id, status, approverID, time.Now().UTC(), routineLog, generalLog, models.DayCloseStatusPending)
	if err != nil {
		return false, fmt.Errorf("resolve day close request: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("resolve day close request: %w", err)
	}
	return affected == 1, nil
}

// FindByID fetches a record by identifier.
func (r *DayCloseRepository) FindByID(ctx context.Context, id string) (*models.DayCloseRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM day_close_requests WHERE id = $1`, dayCloseColumns)
	var request models.DayCloseRequest
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		return nil, err
	}
	return &request, nil
}

// ListPendingByDate returns pending requests for a date, for supervisors.
func (r *DayCloseRepository) ListPendingByDate(ctx context.Context, date time.Time) ([]models.DayCloseRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM day_close_requests WHERE date = $1 AND status = $2 ORDER BY created_at ASC`, dayCloseColumns)
	var requests []models.DayCloseRequest
	if err := r.db.SelectContext(ctx, &requests, query, date.Format("2006-01-02"), models.DayCloseStatusPending); err != nil {
		return nil, fmt.Errorf("list pending day close requests: %w", err)
	}
	return requests, nil
}
