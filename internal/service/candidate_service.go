package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-recruit-api/internal/models"
	appErrors "github.com/noah-isme/sma-recruit-api/pkg/errors"
)

type candidateRepository interface {
	List(ctx context.Context, filter models.CandidateFilter) ([]models.CandidateDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.CandidateDetail, error)
	Create(ctx context.Context, candidate *models.Candidate) error
	Update(ctx context.Context, candidate *models.Candidate) error
	Delete(ctx context.Context, id string) error
}

type mspAssignmentValidator interface {
	ValidateAssignment(ctx context.Context, mspCodeID, programID, candidateID string) error
}

// CreateCandidateRequest is the payload for adding a candidate.
type CreateCandidateRequest struct {
	FirstName     string  `json:"first_name" validate:"required"`
	LastName      *string `json:"last_name"`
	Email         string  `json:"email" validate:"required,email"`
	Phone         string  `json:"phone" validate:"required"`
	ProgramID     string  `json:"program_id" validate:"required,uuid"`
	RequirementID *string `json:"requirement_id" validate:"omitempty,uuid"`
	MSPCodeID     *string `json:"msp_code_id" validate:"omitempty,uuid"`
	LocationID    *string `json:"location_id" validate:"omitempty,uuid"`
	Status        *string `json:"status"`
}

// UpdateCandidateRequest is the payload for editing a candidate. All fields
// are optional; omitted fields keep their current value.
type UpdateCandidateRequest struct {
	FirstName     *string `json:"first_name"`
	LastName      *string `json:"last_name"`
	Email         *string `json:"email" validate:"omitempty,email"`
	Phone         *string `json:"phone"`
	ProgramID     *string `json:"program_id" validate:"omitempty,uuid"`
	RequirementID *string `json:"requirement_id" validate:"omitempty,uuid"`
	MSPCodeID     *string `json:"msp_code_id" validate:"omitempty,uuid"`
	ClearMSPCode  bool    `json:"clear_msp_code"`
	LocationID    *string `json:"location_id" validate:"omitempty,uuid"`
	Status        *string `json:"status"`
}

// CandidateService provides candidate use cases. MSP code assignments pass
// through the validator before any write.
type CandidateService struct {
	repo      candidateRepository
	msp       mspAssignmentValidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCandidateService constructs a CandidateService instance.
func NewCandidateService(repo candidateRepository, msp mspAssignmentValidator, validate *validator.Validate, logger *zap.Logger) *CandidateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CandidateService{repo: repo, msp: msp, validator: validate, logger: logger}
}

// List returns candidates matching the filter along with pagination metadata.
func (s *CandidateService) List(ctx context.Context, filter models.CandidateFilter) ([]models.CandidateDetail, *models.Pagination, error) {
	candidates, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list candidates")
	}
	if candidates == nil {
		candidates = []models.CandidateDetail{}
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return candidates, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get fetches one candidate with its joined metadata.
func (s *CandidateService) Get(ctx context.Context, id string) (*models.CandidateDetail, error) {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "candidate not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch candidate")
	}
	return detail, nil
}

// Create validates the payload, runs the MSP assignment checks when a code is
// attached and persists the candidate.
func (s *CandidateService) Create(ctx context.Context, req CreateCandidateRequest) (*models.Candidate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid candidate payload")
	}

	status := models.CandidateStatusActive
	if req.Status != nil {
		status = models.CandidateStatus(*req.Status)
		if !models.ValidCandidateStatus(status) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown candidate status")
		}
	}

	if req.MSPCodeID != nil {
		if err := s.msp.ValidateAssignment(ctx, *req.MSPCodeID, req.ProgramID, ""); err != nil {
			return nil, err
		}
	}

	candidate := &models.Candidate{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Phone:         req.Phone,
		ProgramID:     req.ProgramID,
		RequirementID: req.RequirementID,
		MSPCodeID:     req.MSPCodeID,
		LocationID:    req.LocationID,
		Status:        status,
	}
	if err := s.repo.Create(ctx, candidate); err != nil {
		return nil, appErrors.FromError(err)
	}
	s.logger.Info("candidate created", zap.String("candidate_id", candidate.ID), zap.String("program_id", candidate.ProgramID))
	return candidate, nil
}

// Update applies the provided changes. Changing or attaching an MSP code
// revalidates the assignment with the candidate excluded from the taken
// check, so resubmitting an unchanged code succeeds.
func (s *CandidateService) Update(ctx context.Context, id string, req UpdateCandidateRequest) (*models.Candidate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid candidate payload")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "candidate not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch candidate")
	}

	candidate := existing.Candidate
	if req.FirstName != nil {
		candidate.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		candidate.LastName = req.LastName
	}
	if req.Email != nil {
		candidate.Email = *req.Email
	}
	if req.Phone != nil {
		candidate.Phone = *req.Phone
	}
	if req.ProgramID != nil {
		candidate.ProgramID = *req.ProgramID
	}
	if req.RequirementID != nil {
		candidate.RequirementID = req.RequirementID
	}
	if req.LocationID != nil {
		candidate.LocationID = req.LocationID
	}
	if req.ClearMSPCode {
		candidate.MSPCodeID = nil
	} else if req.MSPCodeID != nil {
		candidate.MSPCodeID = req.MSPCodeID
	}
	if req.Status != nil {
		status := models.CandidateStatus(*req.Status)
		if !models.ValidCandidateStatus(status) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown candidate status")
		}
		candidate.Status = status
	}

	if candidate.MSPCodeID != nil {
		if err := s.msp.ValidateAssignment(ctx, *candidate.MSPCodeID, candidate.ProgramID, candidate.ID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, &candidate); err != nil {
		return nil, appErrors.FromError(err)
	}
	return &candidate, nil
}

// Deactivate soft-deletes a candidate by flipping its status.
func (s *CandidateService) Deactivate(ctx context.Context, id string) error {
	inactive := string(models.CandidateStatusInactive)
	_, err := s.Update(ctx, id, UpdateCandidateRequest{Status: &inactive})
	return err
}

// Delete removes a candidate row entirely.
func (s *CandidateService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete candidate")
	}
	return nil
}
