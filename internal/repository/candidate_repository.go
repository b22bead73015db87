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

const candidateColumns = `c.id, c.first_name, c.last_name, c.email, c.phone, c.program_id, c.requirement_id, c.msp_code_id, c.location_id, c.status, c.created_at, c.updated_at,
        p.name AS program_name, p.code AS program_code, l.name AS location_name, m.code AS msp_code`

const candidateJoins = `FROM candidates c
        LEFT JOIN programs p ON p.id = c.program_id
        LEFT JOIN locations l ON l.id = c.location_id
        LEFT JOIN msp_codes m ON m.id = c.msp_code_id`

// CandidateRepository manages persistence for candidate records.
type CandidateRepository struct {
	db *sqlx.DB
}

// NewCandidateRepository constructs a CandidateRepository.
func NewCandidateRepository(db *sqlx.DB) *CandidateRepository {
	return &CandidateRepository{db: db}
}

// List returns candidates matching the provided filters.
func (r *CandidateRepository) List(ctx context.Context, filter models.CandidateFilter) ([]models.CandidateDetail, int, error) {
	conditions := []string{"1=1"}
	var args []interface{}

	if filter.ProgramID != "" {
		conditions = append(conditions, fmt.Sprintf("c.program_id = $%d", len(args)+1))
		args = append(args, filter.ProgramID)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("c.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.ActiveOnly {
		conditions = append(conditions, fmt.Sprintf("c.status = $%d", len(args)+1))
		args = append(args, models.CandidateStatusActive)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(c.first_name) LIKE $%d OR LOWER(COALESCE(c.last_name, '')) LIKE $%d OR c.phone LIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base := fmt.Sprintf("%s WHERE %s", candidateJoins, strings.Join(conditions, " AND "))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY c.created_at DESC LIMIT %d OFFSET %d", candidateColumns, base, size, offset)

	var candidates []models.CandidateDetail
	if err := r.db.SelectContext(ctx, &candidates, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list candidates: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count candidates: %w", err)
	}
	return candidates, total, nil
}

// FindByID fetches a candidate detail by ID.
func (r *CandidateRepository) FindByID(ctx context.Context, id string) (*models.CandidateDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE c.id = $1", candidateColumns, candidateJoins)
	var detail models.CandidateDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// FindByMSPCode returns the candidate currently holding the given MSP code.
func (r *CandidateRepository) FindByMSPCode(ctx context.Context, mspCodeID string) (*models.Candidate, error) {
	const query = `SELECT id, first_name, last_name, email, phone, program_id, requirement_id, msp_code_id, location_id, status, created_at, updated_at
        FROM candidates WHERE msp_code_id = $1 LIMIT 1`
	var candidate models.Candidate
	if err := r.db.GetContext(ctx, &candidate, query, mspCodeID); err != nil {
		return nil, err
	}
	return &candidate, nil
}

// Create inserts a candidate. When an MSP code is attached the insert runs in
// a transaction that re-checks assignment vacancy; the unique index on
// candidates.msp_code_id closes the remaining race, and its violation is
// reported as the same taken error the pre-check produces.
func (r *CandidateRepository) Create(ctx context.Context, candidate *models.Candidate) error {
	if candidate.ID == "" {
		candidate.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if candidate.CreatedAt.IsZero() {
		candidate.CreatedAt = now
	}
	candidate.UpdatedAt = now

	const query = `INSERT INTO candidates (id, first_name, last_name, email, phone, program_id, requirement_id, msp_code_id, location_id, status, created_at, updated_at)
        VALUES (:id, :first_name, :last_name, :email, :phone, :program_id, :requirement_id, :msp_code_id, :location_id, :status, :created_at, :updated_at)`

	if candidate.MSPCodeID == nil {
		if _, err := r.db.NamedExecContext(ctx, query, candidate); err != nil {
			return mapMSPConstraintError(err, "create candidate")
		}
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create candidate: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := lockVacancy(ctx, tx, *candidate.MSPCodeID); err != nil {
		return err
	}
	if _, err := tx.NamedExecContext(ctx, query, candidate); err != nil {
		return mapMSPConstraintError(err, "create candidate")
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create candidate: %w", err)
	}
	return nil
}

// Update modifies an existing candidate under the same MSP-code guarantees as
// Create.
func (r *CandidateRepository) Update(ctx context.Context, candidate *models.Candidate) error {
	candidate.UpdatedAt = time.Now().UTC()
	const query = `UPDATE candidates SET first_name = :first_name, last_name = :last_name, email = :email, phone = :phone, program_id = :program_id, requirement_id = :requirement_id, msp_code_id = :msp_code_id, location_id = :location_id, status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, candidate); err != nil {
		return mapMSPConstraintError(err, "update candidate")
	}
	return nil
}

// Delete removes a candidate row. Domain callers normally soft-deactivate via
// status; hard delete remains supported for admin cleanup.
func (r *CandidateRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM candidates WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete candidate: %w", err)
	}
	return nil
}

// CountTotal returns the number of candidate rows.
func (r *CandidateRepository) CountTotal(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM candidates"); err != nil {
		return 0, fmt.Errorf("count candidates: %w", err)
	}
	return total, nil
}

// lockVacancy takes a share lock on the code's active assignment rows and
// fails when any exist. Postgres rejects a locking clause combined with an
// aggregate, so the FOR SHARE runs in the inner select and the count wraps it.
func lockVacancy(ctx context.Context, tx *sqlx.Tx, mspCodeID string) error {
	const check = `SELECT COUNT(*) FROM (
	        SELECT 1 FROM msp_assignments
	        WHERE msp_code_id = $1 AND active = TRUE AND (end_date IS NULL OR end_date >= CURRENT_DATE)
	        FOR SHARE) AS held`
	var occupied int
	if err := tx.GetContext(ctx, &occupied, check, mspCodeID); err != nil {
		return fmt.Errorf("check msp assignment: %w", err)
	}
	if occupied > 0 {
		return appErrors.ErrMSPNotVacant
	}
	return nil
}

func mapMSPConstraintError(err error, op string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		if strings.Contains(pqErr.Constraint, "msp_code") {
			return appErrors.ErrMSPTaken
		}
		return appErrors.Clone(appErrors.ErrConflict, pqErr.Detail)
	}
	return fmt.Errorf("%s: %w", op, err)
}
