package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-recruit-api/internal/models"
	appErrors "github.com/noah-isme/sma-recruit-api/pkg/errors"
)

type mspCodeRepository interface {
	FindByID(ctx context.Context, id string) (*models.MSPCode, error)
	HasActiveAssignment(ctx context.Context, mspCodeID string) (bool, error)
	HolderCandidateID(ctx context.Context, mspCodeID string) (string, error)
	ListVacant(ctx context.Context, programCode string) ([]models.VacantMSPCode, error)
}

type mspProgramRepository interface {
	FindProgram(ctx context.Context, id string) (*models.Program, error)
}

// MSPService validates MSP code assignments. Checks run in a fixed order and
// short-circuit on the first failure: existence and active flag, program
// family match, vacancy on initial assignment, taken-by-another on update.
// The repository's locking insert backs these pre-checks against races.
type MSPService struct {
	codes    mspCodeRepository
	programs mspProgramRepository
	logger   *zap.Logger
}

// NewMSPService constructs an MSPService instance.
func NewMSPService(codes mspCodeRepository, programs mspProgramRepository, logger *zap.Logger) *MSPService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MSPService{codes: codes, programs: programs, logger: logger}
}

// IsVacant reports whether the code has neither a current assignment nor a
// candidate referencing it.
func (s *MSPService) IsVacant(ctx context.Context, mspCodeID string) (bool, error) {
	occupied, err := s.codes.HasActiveAssignment(ctx, mspCodeID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check msp assignment")
	}
	if occupied {
		return false, nil
	}
	holder, err := s.codes.HolderCandidateID(ctx, mspCodeID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check msp holder")
	}
	return holder == "", nil
}

// IsTakenByAnotherCandidate reports whether a candidate other than
// excludeCandidateID currently references the code.
func (s *MSPService) IsTakenByAnotherCandidate(ctx context.Context, mspCodeID, excludeCandidateID string) (bool, error) {
	holder, err := s.codes.HolderCandidateID(ctx, mspCodeID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check msp holder")
	}
	return holder != "" && holder != excludeCandidateID, nil
}

// ValidateAssignment runs the ordered checks for assigning mspCodeID to a
// candidate in programID. candidateID is empty on initial creation, where any
// occupancy reads as not vacant. On update the vacancy check is skipped:
// resubmitting the held code is idempotent and only a different holder fails.
func (s *MSPService) ValidateAssignment(ctx context.Context, mspCodeID, programID, candidateID string) error {
	code, err := s.codes.FindByID(ctx, mspCodeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "msp code not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch msp code")
	}
	if !code.Active {
		return appErrors.ErrMSPInactive
	}

	program, err := s.programs.FindProgram(ctx, programID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "program not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch program")
	}
	if !strings.EqualFold(code.ProgramCode, program.Code) {
		return appErrors.ErrMSPProgramMismatch
	}

	holder, err := s.codes.HolderCandidateID(ctx, mspCodeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check msp holder")
	}

	if candidateID != "" {
		// Update path: vacancy is not re-checked. Resubmitting the held
		// code is idempotent; only another candidate holding it blocks.
		if holder == "" || holder == candidateID {
			return nil
		}
		return appErrors.ErrMSPTaken
	}

	// Initial assignment: the code must be fully vacant. Any occupancy,
	// assignment row or candidate reference alike, fails the vacancy check
	// before the taken-by-another check is ever reached.
	occupied, err := s.codes.HasActiveAssignment(ctx, mspCodeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check msp assignment")
	}
	if occupied || holder != "" {
		return appErrors.ErrMSPNotVacant
	}
	return nil
}

// ListVacant returns vacant active codes, optionally filtered by program
// family code (case-insensitive).
func (s *MSPService) ListVacant(ctx context.Context, programCode string) ([]models.VacantMSPCode, error) {
	codes, err := s.codes.ListVacant(ctx, programCode)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list vacant msp codes")
	}
	if codes == nil {
		codes = []models.VacantMSPCode{}
	}
	return codes, nil
}
