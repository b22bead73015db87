package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-recruit-api/internal/models"
)

// PipelineRepository persists stage records and final dispositions.
type PipelineRepository struct {
	db *sqlx.DB
}

// NewPipelineRepository constructs a PipelineRepository.
func NewPipelineRepository(db *sqlx.DB) *PipelineRepository {
	return &PipelineRepository{db: db}
}

// FindStageMeta fetches a stage definition by identifier.
func (r *PipelineRepository) FindStageMeta(ctx context.Context, id string) (*models.StageMeta, error) {
	const query = `SELECT id, name, stage_order, active, created_at, updated_at FROM stage_meta WHERE id = $1`
	var meta models.StageMeta
	if err := r.db.GetContext(ctx, &meta, query, id); err != nil {
		return nil, err
	}
	return &meta, nil
}

// ReplaceStage deletes any existing record for (candidate, slot) and inserts
// the new one in a single transaction. Last write wins; no history.
func (r *PipelineRepository) ReplaceStage(ctx context.Context, stage *models.PipelineStage) error {
	if stage.ID == "" {
		stage.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if stage.CreatedAt.IsZero() {
		stage.CreatedAt = now
	}
	stage.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace stage: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM pipeline_stages WHERE candidate_id = $1 AND slot = $2`, stage.CandidateID, stage.Slot); err != nil {
		return fmt.Errorf("clear stage slot: %w", err)
	}
	const insert = `INSERT INTO pipeline_stages (id, candidate_id, stage_id, slot, completed_on, notes, created_at, updated_at)
        VALUES (:id, :candidate_id, :stage_id, :slot, :completed_on, :notes, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insert, stage); err != nil {
		return fmt.Errorf("insert stage: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace stage: %w", err)
	}
	return nil
}

// ClearStage removes the record for (candidate, slot), if any.
func (r *PipelineRepository) ClearStage(ctx context.Context, candidateID string, slot int) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM pipeline_stages WHERE candidate_id = $1 AND slot = $2`, candidateID, slot); err != nil {
		return fmt.Errorf("clear stage slot: %w", err)
	}
	return nil
}

// ListStagesByCandidate returns all stage records with metadata for one
// candidate, including rows whose stage order exceeds the tracked range.
func (r *PipelineRepository) ListStagesByCandidate(ctx context.Context, candidateID string) ([]models.PipelineStageDetail, error) {
	const query = `SELECT ps.id, ps.candidate_id, ps.stage_id, ps.slot, ps.completed_on, ps.notes, ps.created_at, ps.updated_at,
        sm.name AS stage_name, sm.stage_order
        FROM pipeline_stages ps
        JOIN stage_meta sm ON sm.id = ps.stage_id
        WHERE ps.candidate_id = $1
        ORDER BY ps.slot ASC, ps.updated_at DESC`
	var stages []models.PipelineStageDetail
	if err := r.db.SelectContext(ctx, &stages, query, candidateID); err != nil {
		return nil, fmt.Errorf("list candidate stages: %w", err)
	}
	return stages, nil
}

// ListAllStages returns stage records with metadata across all candidates.
func (r *PipelineRepository) ListAllStages(ctx context.Context) ([]models.PipelineStageDetail, error) {
	const query = `SELECT ps.id, ps.candidate_id, ps.stage_id, ps.slot, ps.completed_on, ps.notes, ps.created_at, ps.updated_at,
        sm.name AS stage_name, sm.stage_order
        FROM pipeline_stages ps
        JOIN stage_meta sm ON sm.id = ps.stage_id
        ORDER BY ps.candidate_id ASC, ps.slot ASC`
	var stages []models.PipelineStageDetail
	if err := r.db.SelectContext(ctx, &stages, query); err != nil {
		return nil, fmt.Errorf("list stages: %w", err)
	}
	return stages, nil
}

// UpsertFinal inserts or overwrites the single final disposition keyed by
// candidate id.
func (r *PipelineRepository) UpsertFinal(ctx context.Context, final *models.FinalDisposition) error {
	if final.ID == "" {
		final.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if final.CreatedAt.IsZero() {
		final.CreatedAt = now
	}
	final.UpdatedAt = now
	const query = `INSERT INTO final_dispositions (id, candidate_id, status, notes, decided_on, created_at, updated_at)
        VALUES (:id, :candidate_id, :status, :notes, :decided_on, :created_at, :updated_at)
        ON CONFLICT (candidate_id) DO UPDATE SET status = EXCLUDED.status, notes = EXCLUDED.notes, decided_on = EXCLUDED.decided_on, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, final); err != nil {
		return fmt.Errorf("upsert final disposition: %w", err)
	}
	return nil
}

// FindFinal fetches the final disposition for a candidate.
func (r *PipelineRepository) FindFinal(ctx context.Context, candidateID string) (*models.FinalDisposition, error) {
	const query = `SELECT id, candidate_id, status, notes, decided_on, created_at, updated_at FROM final_dispositions WHERE candidate_id = $1`
	var final models.FinalDisposition
	if err := r.db.GetContext(ctx, &final, query, candidateID); err != nil {
		return nil, err
	}
	return &final, nil
}

// ListFinals returns every final disposition.
func (r *PipelineRepository) ListFinals(ctx context.Context) ([]models.FinalDisposition, error) {
	const query = `SELECT id, candidate_id, status, notes, decided_on, created_at, updated_at FROM final_dispositions ORDER BY updated_at DESC`
	var finals []models.FinalDisposition
	if err := r.db.SelectContext(ctx, &finals, query); err != nil {
		return nil, fmt.Errorf("list final dispositions: %w", err)
	}
	return finals, nil
}

// StageOrderCount pairs a tracked stage order with its completion count.
type StageOrderCount struct {
	StageOrder int `db:"stage_order"`
	Count      int `db:"count"`
}

// CountCompletedByOrder aggregates distinct candidates with a dated record
// per stage order, restricted to orders 1 through the tracked maximum.
func (r *PipelineRepository) CountCompletedByOrder(ctx context.Context) ([]StageOrderCount, error) {
	const query = `SELECT sm.stage_order, COUNT(DISTINCT ps.candidate_id) AS count
        FROM pipeline_stages ps
        JOIN stage_meta sm ON sm.id = ps.stage_id
        WHERE ps.completed_on IS NOT NULL AND sm.stage_order BETWEEN 1 AND $1
        GROUP BY sm.stage_order
        ORDER BY sm.stage_order ASC`
	var counts []StageOrderCount
	if err := r.db.SelectContext(ctx, &counts, query, models.MaxTrackedStageOrder); err != nil {
		return nil, fmt.Errorf("count completed stages: %w", err)
	}
	return counts, nil
}

// FinalStatusCount pairs a final status with its occurrence count.
type FinalStatusCount struct {
	Status models.FinalStatus `db:"status"`
	Count  int                `db:"count"`
}

// CountFinalsByStatus aggregates final dispositions per status.
func (r *PipelineRepository) CountFinalsByStatus(ctx context.Context) ([]FinalStatusCount, error) {
	const query = `SELECT status, COUNT(*) AS count FROM final_dispositions GROUP BY status`
	var counts []FinalStatusCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("count final dispositions: %w", err)
	}
	return counts, nil
}
