package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-recruit-api/internal/models"
	appErrors "github.com/noah-isme/sma-recruit-api/pkg/errors"
)

type mockMSPCodeRepo struct {
	code          *models.MSPCode
	findErr       error
	hasAssignment bool
	assignmentErr error
	holder        string
	holderErr     error
	vacant        []models.VacantMSPCode
	vacantErr     error
}

func (m *mockMSPCodeRepo) FindByID(ctx context.Context, id string) (*models.MSPCode, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.code, nil
}

func (m *mockMSPCodeRepo) HasActiveAssignment(ctx context.Context, mspCodeID string) (bool, error) {
	return m.hasAssignment, m.assignmentErr
}

func (m *mockMSPCodeRepo) HolderCandidateID(ctx context.Context, mspCodeID string) (string, error) {
	return m.holder, m.holderErr
}

func (m *mockMSPCodeRepo) ListVacant(ctx context.Context, programCode string) ([]models.VacantMSPCode, error) {
	return m.vacant, m.vacantErr
}

type mockProgramRepo struct {
	program *models.Program
	err     error
}

func (m *mockProgramRepo) FindProgram(ctx context.Context, id string) (*models.Program, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.program, nil
}

func activeMSPCode(programCode string) *models.MSPCode {
	return &models.MSPCode{ID: "msp-1", Code: "MSP001", ProgramCode: programCode, Active: true}
}

func TestValidateAssignmentUnknownCode(t *testing.T) {
	svc := NewMSPService(&mockMSPCodeRepo{findErr: sql.ErrNoRows}, &mockProgramRepo{}, nil)

	err := svc.ValidateAssignment(context.Background(), "msp-1", "prog-1", "")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestValidateAssignmentInactiveCode(t *testing.T) {
	code := activeMSPCode("STEM")
	code.Active = false
	svc := NewMSPService(&mockMSPCodeRepo{code: code}, &mockProgramRepo{}, nil)

	err := svc.ValidateAssignment(context.Background(), "msp-1", "prog-1", "")
	assert.ErrorIs(t, err, appErrors.ErrMSPInactive)
}

func TestValidateAssignmentProgramMismatch(t *testing.T) {
	svc := NewMSPService(
		&mockMSPCodeRepo{code: activeMSPCode("STEM")},
		&mockProgramRepo{program: &models.Program{ID: "prog-1", Code: "ARTS"}},
		nil,
	)

	err := svc.ValidateAssignment(context.Background(), "msp-1", "prog-1", "")
	assert.ErrorIs(t, err, appErrors.ErrMSPProgramMismatch)
}

func TestValidateAssignmentProgramMatchIsCaseInsensitive(t *testing.T) {
	svc := NewMSPService(
		&mockMSPCodeRepo{code: activeMSPCode("stem")},
		&mockProgramRepo{program: &models.Program{ID: "prog-1", Code: "STEM"}},
		nil,
	)

	err := svc.ValidateAssignment(context.Background(), "msp-1", "prog-1", "")
	assert.NoError(t, err)
}

func TestValidateAssignmentNotVacant(t *testing.T) {
	svc := NewMSPService(
		&mockMSPCodeRepo{code: activeMSPCode("STEM"), hasAssignment: true},
		&mockProgramRepo{program: &models.Program{ID: "prog-1", Code: "STEM"}},
		nil,
	)

	err := svc.ValidateAssignment(context.Background(), "msp-1", "prog-1", "")
	assert.ErrorIs(t, err, appErrors.ErrMSPNotVacant)
}

func TestValidateAssignmentInitialAssignmentHeldCodeIsNotVacant(t *testing.T) {
	// On initial assignment any occupancy fails the vacancy check, so a
	// code held by another candidate reads as not vacant, never as taken.
	svc := NewMSPService(
		&mockMSPCodeRepo{code: activeMSPCode("STEM"), holder: "other-candidate"},
		&mockProgramRepo{program: &models.Program{ID: "prog-1", Code: "STEM"}},
		nil,
	)

	err := svc.ValidateAssignment(context.Background(), "msp-1", "prog-1", "")
	assert.ErrorIs(t, err, appErrors.ErrMSPNotVacant)
}

func TestValidateAssignmentTakenByAnotherCandidate(t *testing.T) {
	svc := NewMSPService(
		&mockMSPCodeRepo{code: activeMSPCode("STEM"), holder: "cand-2"},
		&mockProgramRepo{program: &models.Program{ID: "prog-1", Code: "STEM"}},
		nil,
	)

	err := svc.ValidateAssignment(context.Background(), "msp-1", "prog-1", "cand-1")
	assert.ErrorIs(t, err, appErrors.ErrMSPTaken)
}

func TestValidateAssignmentIdempotentForCurrentHolder(t *testing.T) {
	// The candidate already holds the code: the vacancy check is skipped
	// and resubmission succeeds even though the code is occupied.
	svc := NewMSPService(
		&mockMSPCodeRepo{code: activeMSPCode("STEM"), holder: "cand-1", hasAssignment: true},
		&mockProgramRepo{program: &models.Program{ID: "prog-1", Code: "STEM"}},
		nil,
	)

	err := svc.ValidateAssignment(context.Background(), "msp-1", "prog-1", "cand-1")
	assert.NoError(t, err)
}

func TestIsVacant(t *testing.T) {
	svc := NewMSPService(&mockMSPCodeRepo{}, &mockProgramRepo{}, nil)
	vacant, err := svc.IsVacant(context.Background(), "msp-1")
	require.NoError(t, err)
	assert.True(t, vacant)

	svc = NewMSPService(&mockMSPCodeRepo{holder: "cand-9"}, &mockProgramRepo{}, nil)
	vacant, err = svc.IsVacant(context.Background(), "msp-1")
	require.NoError(t, err)
	assert.False(t, vacant)
}

func TestIsTakenByAnotherCandidate(t *testing.T) {
	svc := NewMSPService(&mockMSPCodeRepo{holder: "cand-2"}, &mockProgramRepo{}, nil)

	taken, err := svc.IsTakenByAnotherCandidate(context.Background(), "msp-1", "cand-1")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = svc.IsTakenByAnotherCandidate(context.Background(), "msp-1", "cand-2")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestListVacantReturnsEmptySlice(t *testing.T) {
	svc := NewMSPService(&mockMSPCodeRepo{}, &mockProgramRepo{}, nil)
	codes, err := svc.ListVacant(context.Background(), "")
	require.NoError(t, err)
	assert.NotNil(t, codes)
	assert.Empty(t, codes)
}
