package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-recruit-api/internal/models"
	appErrors "github.com/noah-isme/sma-recruit-api/pkg/errors"
)

type pipelineRepository interface {
	FindStageMeta(ctx context.Context, id string) (*models.StageMeta, error)
	ReplaceStage(ctx context.Context, stage *models.PipelineStage) error
	ClearStage(ctx context.Context, candidateID string, slot int) error
	ListStagesByCandidate(ctx context.Context, candidateID string) ([]models.PipelineStageDetail, error)
	ListAllStages(ctx context.Context) ([]models.PipelineStageDetail, error)
	UpsertFinal(ctx context.Context, final *models.FinalDisposition) error
	FindFinal(ctx context.Context, candidateID string) (*models.FinalDisposition, error)
	ListFinals(ctx context.Context) ([]models.FinalDisposition, error)
}

type pipelineCandidateLister interface {
	List(ctx context.Context, filter models.CandidateFilter) ([]models.CandidateDetail, int, error)
}

type pipelineCommunicationLister interface {
	List(ctx context.Context, candidateID string) ([]models.CommunicationLog, error)
}

// SubmitStageRequest records or clears a candidate's stage slot. An empty
// StageID clears the slot.
type SubmitStageRequest struct {
	CandidateID string     `json:"candidate_id" validate:"required,uuid"`
	Slot        int        `json:"slot" validate:"required,min=1,max=4"`
	StageID     string     `json:"stage_id" validate:"omitempty,uuid"`
	CompletedOn *time.Time `json:"completed_on"`
	Notes       string     `json:"notes"`
}

// SubmitFinalRequest records a candidate's terminal disposition.
type SubmitFinalRequest struct {
	CandidateID string     `json:"candidate_id" validate:"required,uuid"`
	Status      string     `json:"status" validate:"required"`
	Notes       string     `json:"notes"`
	DecidedOn   *time.Time `json:"decided_on"`
}

// StageSubmitResult reports the outcome of a stage submission.
type StageSubmitResult struct {
	Cleared bool                  `json:"cleared"`
	Stage   *models.PipelineStage `json:"stage,omitempty"`
}

// PipelineService manages per-candidate stage slots and final dispositions.
// Each slot holds at most one record; a resubmission replaces the previous
// one and no history is retained.
type PipelineService struct {
	repo           pipelineRepository
	candidates     pipelineCandidateLister
	communications pipelineCommunicationLister
	validator      *validator.Validate
	logger         *zap.Logger
}

// NewPipelineService constructs a PipelineService instance.
func NewPipelineService(repo pipelineRepository, candidates pipelineCandidateLister, communications pipelineCommunicationLister, validate *validator.Validate, logger *zap.Logger) *PipelineService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &PipelineService{repo: repo, candidates: candidates, communications: communications, validator: validate, logger: logger}
}

// SubmitStage validates that the stage's declared order matches the requested
// slot and replaces the slot's record. Submitting without a stage id clears
// the slot instead; clearing an already empty slot succeeds.
func (s *PipelineService) SubmitStage(ctx context.Context, req SubmitStageRequest) (*StageSubmitResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid stage payload")
	}

	if strings.TrimSpace(req.StageID) == "" {
		if err := s.repo.ClearStage(ctx, req.CandidateID, req.Slot); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear stage")
		}
		return &StageSubmitResult{Cleared: true}, nil
	}

	meta, err := s.repo.FindStageMeta(ctx, req.StageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "stage not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch stage meta")
	}
	if meta.StageOrder != req.Slot {
		return nil, appErrors.ErrStageOrderMismatch
	}

	stage := &models.PipelineStage{
		CandidateID: req.CandidateID,
		StageID:     req.StageID,
		Slot:        req.Slot,
		CompletedOn: req.CompletedOn,
		Notes:       req.Notes,
	}
	if err := s.repo.ReplaceStage(ctx, stage); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save stage")
	}
	return &StageSubmitResult{Stage: stage}, nil
}

// SubmitFinal upserts the candidate's single terminal disposition. A
// resubmission overwrites status, notes and decision date in place.
func (s *PipelineService) SubmitFinal(ctx context.Context, req SubmitFinalRequest) (*models.FinalDisposition, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid final disposition payload")
	}
	status := models.FinalStatus(req.Status)
	if !models.ValidFinalStatus(status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown final status")
	}

	final := &models.FinalDisposition{
		CandidateID: req.CandidateID,
		Status:      status,
		Notes:       req.Notes,
		DecidedOn:   req.DecidedOn,
	}
	if err := s.repo.UpsertFinal(ctx, final); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save final disposition")
	}
	return final, nil
}

// CandidateStages returns a candidate's tracked slots, newest record first
// per slot, dropping rows whose stage order falls outside the tracked range.
func (s *PipelineService) CandidateStages(ctx context.Context, candidateID string) ([]models.PipelineStageDetail, error) {
	stages, err := s.repo.ListStagesByCandidate(ctx, candidateID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list stages")
	}
	return collapseSlots(stages), nil
}

// BuildTable assembles the pipeline table: one row per active candidate with
// the latest record per tracked slot, the final disposition and the most
// recent communication log, if any.
func (s *PipelineService) BuildTable(ctx context.Context, filter models.CandidateFilter) ([]models.PipelineCandidateView, error) {
	candidates, _, err := s.candidates.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list candidates")
	}
	stages, err := s.repo.ListAllStages(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list stages")
	}
	finals, err := s.repo.ListFinals(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list final dispositions")
	}
	logs, err := s.communications.List(ctx, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list communications")
	}

	stagesByCandidate := make(map[string][]models.PipelineStageDetail)
	for _, stage := range stages {
		stagesByCandidate[stage.CandidateID] = append(stagesByCandidate[stage.CandidateID], stage)
	}
	finalsByCandidate := make(map[string]models.FinalDisposition, len(finals))
	for _, final := range finals {
		finalsByCandidate[final.CandidateID] = final
	}
	logsByCandidate := make(map[string][]models.CommunicationLog)
	for _, log := range logs {
		logsByCandidate[log.CandidateID] = append(logsByCandidate[log.CandidateID], log)
	}

	views := make([]models.PipelineCandidateView, 0, len(candidates))
	for _, candidate := range candidates {
		view := models.PipelineCandidateView{
			CandidateID:         candidate.ID,
			FullName:            fullName(candidate.FirstName, candidate.LastName),
			Stages:              collapseSlots(stagesByCandidate[candidate.ID]),
			LatestCommunication: LatestCommunication(logsByCandidate[candidate.ID]),
		}
		if candidate.ProgramName != nil {
			view.ProgramName = *candidate.ProgramName
		}
		if final, ok := finalsByCandidate[candidate.ID]; ok {
			f := final
			view.Final = &f
		}
		views = append(views, view)
	}
	return views, nil
}

// collapseSlots keeps the winning record per slot within the tracked range.
func collapseSlots(stages []models.PipelineStageDetail) []models.PipelineStageDetail {
	bySlot := make(map[int]models.PipelineStageDetail)
	for _, stage := range stages {
		if stage.StageOrder < 1 || stage.StageOrder > models.MaxTrackedStageOrder {
			continue
		}
		current, ok := bySlot[stage.Slot]
		if !ok || laterStageRecord(stage, current) {
			bySlot[stage.Slot] = stage
		}
	}
	result := make([]models.PipelineStageDetail, 0, len(bySlot))
	for _, stage := range bySlot {
		result = append(result, stage)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Slot < result[j].Slot })
	return result
}

// laterStageRecord decides which of two competing records for a slot wins: a
// dated record beats an undated one, and between two dated records the later
// completion date wins. Ties keep the incumbent.
func laterStageRecord(challenger, incumbent models.PipelineStageDetail) bool {
	switch {
	case challenger.CompletedOn == nil:
		return false
	case incumbent.CompletedOn == nil:
		return true
	default:
		return challenger.CompletedOn.After(*incumbent.CompletedOn)
	}
}

// LatestCommunication picks the most recent log by communicated_on, treating
// a missing date as the zero time. Returns nil for an empty slice.
func LatestCommunication(logs []models.CommunicationLog) *models.CommunicationLog {
	var latest *models.CommunicationLog
	var latestOn time.Time
	for i := range logs {
		on := time.Time{}
		if logs[i].CommunicatedOn != nil {
			on = *logs[i].CommunicatedOn
		}
		if latest == nil || on.After(latestOn) {
			latest = &logs[i]
			latestOn = on
		}
	}
	return latest
}

func fullName(first string, last *string) string {
	if last == nil || *last == "" {
		return first
	}
	return first + " " + *last
}
