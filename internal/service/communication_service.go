package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-recruit-api/internal/models"
	appErrors "github.com/noah-isme/sma-recruit-api/pkg/errors"
)

type communicationRepository interface {
	List(ctx context.Context, candidateID string) ([]models.CommunicationLog, error)
	Create(ctx context.Context, log *models.CommunicationLog) error
	Delete(ctx context.Context, id string) error
}

// CreateCommunicationRequest is the payload for logging an outreach attempt.
type CreateCommunicationRequest struct {
	CandidateID    string     `json:"candidate_id" validate:"required,uuid"`
	Method         string     `json:"method" validate:"required"`
	Outcome        string     `json:"outcome" validate:"required"`
	Notes          string     `json:"notes"`
	CommunicatedOn *time.Time `json:"communicated_on"`
}

// CommunicationService records candidate outreach attempts.
type CommunicationService struct {
	repo      communicationRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCommunicationService constructs a CommunicationService instance.
func NewCommunicationService(repo communicationRepository, validate *validator.Validate, logger *zap.Logger) *CommunicationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CommunicationService{repo: repo, validator: validate, logger: logger}
}

// List returns logs, optionally restricted to a candidate, newest first.
func (s *CommunicationService) List(ctx context.Context, candidateID string) ([]models.CommunicationLog, error) {
	logs, err := s.repo.List(ctx, candidateID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list communication logs")
	}
	if logs == nil {
		logs = []models.CommunicationLog{}
	}
	return logs, nil
}

// Create validates the method and outcome enums and persists the log.
func (s *CommunicationService) Create(ctx context.Context, userID string, req CreateCommunicationRequest) (*models.CommunicationLog, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid communication payload")
	}
	method := models.CommMethod(req.Method)
	if !models.ValidCommMethod(method) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown communication method")
	}
	outcome := models.CommOutcome(req.Outcome)
	if !models.ValidCommOutcome(outcome) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown communication outcome")
	}

	log := &models.CommunicationLog{
		CandidateID:    req.CandidateID,
		Method:         method,
		Outcome:        outcome,
		Notes:          req.Notes,
		CommunicatedOn: req.CommunicatedOn,
		CreatedBy:      userID,
	}
	if err := s.repo.Create(ctx, log); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save communication log")
	}
	return log, nil
}

// Delete removes a log row.
func (s *CommunicationService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete communication log")
	}
	return nil
}
