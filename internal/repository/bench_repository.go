package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-recruit-api/internal/models"
)

// BenchRepository manages bench leads and push provenance.
type BenchRepository struct {
	db *sqlx.DB
}

// NewBenchRepository constructs a BenchRepository.
func NewBenchRepository(db *sqlx.DB) *BenchRepository {
	return &BenchRepository{db: db}
}

// List returns bench entries, newest first.
func (r *BenchRepository) List(ctx context.Context) ([]models.BenchEntry, error) {
	const query = `SELECT id, name, phone, email, notes, created_at, updated_at FROM bench_entries ORDER BY created_at DESC`
	var entries []models.BenchEntry
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("list bench entries: %w", err)
	}
	return entries, nil
}

// FindByID fetches a bench entry by identifier.
func (r *BenchRepository) FindByID(ctx context.Context, id string) (*models.BenchEntry, error) {
	const query = `SELECT id, name, phone, email, notes, created_at, updated_at FROM bench_entries WHERE id = $1`
	var entry models.BenchEntry
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Create inserts a bench entry.
func (r *BenchRepository) Create(ctx context.Context, entry *models.BenchEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now
	const query = `INSERT INTO bench_entries (id, name, phone, email, notes, created_at, updated_at)
        VALUES (:id, :name, :phone, :email, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create bench entry: %w", err)
	}
	return nil
}

// Update modifies a bench entry.
func (r *BenchRepository) Update(ctx context.Context, entry *models.BenchEntry) error {
	entry.UpdatedAt = time.Now().UTC()
	const query = `UPDATE bench_entries SET name = :name, phone = :phone, email = :email, notes = :notes, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("update bench entry: %w", err)
	}
	return nil
}

// Delete removes a bench entry (transactional entity, hard delete).
func (r *BenchRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM bench_entries WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete bench entry: %w", err)
	}
	return nil
}

// CreatePush records a bench-to-candidate promotion.
func (r *BenchRepository) CreatePush(ctx context.Context, push *models.BenchPush) error {
	if push.ID == "" {
		push.ID = uuid.NewString()
	}
	if push.CreatedAt.IsZero() {
		push.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO bench_pushes (id, bench_id, candidate_id, pushed_by, program_id, requirement_id, location_id, country_code_id, msp_code_id, created_at)
        VALUES (:id, :bench_id, :candidate_id, :pushed_by, :program_id, :requirement_id, :location_id, :country_code_id, :msp_code_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, push); err != nil {
		return fmt.Errorf("create bench push: %w", err)
	}
	return nil
}

// ListPushesByBench returns the push log for a bench entry.
func (r *BenchRepository) ListPushesByBench(ctx context.Context, benchID string) ([]models.BenchPush, error) {
	const query = `SELECT id, bench_id, candidate_id, pushed_by, program_id, requirement_id, location_id, country_code_id, msp_code_id, created_at
        FROM bench_pushes WHERE bench_id = $1 ORDER BY created_at DESC`
	var pushes []models.BenchPush
	if err := r.db.SelectContext(ctx, &pushes, query, benchID); err != nil {
		return nil, fmt.Errorf("list bench pushes: %w", err)
	}
	return pushes, nil
}
