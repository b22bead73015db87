package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-recruit-api/internal/models"
)

type mockMetaRepo struct {
	programs        []models.Program
	createdProgram  *models.Program
	updatedProgram  *models.Program
	deactivated     []string
	stages          []models.StageMeta
	createdStage    *models.StageMeta
	countryCodes    []models.CountryCode
	createdCountry  *models.CountryCode
	locations       []models.Location
	createdLocation *models.Location
}

func (m *mockMetaRepo) ListPrograms(ctx context.Context, activeOnly bool) ([]models.Program, error) {
	return m.programs, nil
}

func (m *mockMetaRepo) CreateProgram(ctx context.Context, program *models.Program) error {
	m.createdProgram = program
	return nil
}

func (m *mockMetaRepo) UpdateProgram(ctx context.Context, program *models.Program) error {
	m.updatedProgram = program
	return nil
}

func (m *mockMetaRepo) DeactivateProgram(ctx context.Context, id string) error {
	m.deactivated = append(m.deactivated, id)
	return nil
}

func (m *mockMetaRepo) ListStageMeta(ctx context.Context, activeOnly bool) ([]models.StageMeta, error) {
	return m.stages, nil
}

func (m *mockMetaRepo) CreateStageMeta(ctx context.Context, meta *models.StageMeta) error {
	m.createdStage = meta
	return nil
}

func (m *mockMetaRepo) UpdateStageMeta(ctx context.Context, meta *models.StageMeta) error {
	return nil
}

func (m *mockMetaRepo) DeactivateStageMeta(ctx context.Context, id string) error {
	m.deactivated = append(m.deactivated, id)
	return nil
}

func (m *mockMetaRepo) ListCountryCodes(ctx context.Context, activeOnly bool) ([]models.CountryCode, error) {
	return m.countryCodes, nil
}

func (m *mockMetaRepo) CreateCountryCode(ctx context.Context, code *models.CountryCode) error {
	m.createdCountry = code
	return nil
}

func (m *mockMetaRepo) UpdateCountryCode(ctx context.Context, code *models.CountryCode) error {
	return nil
}

func (m *mockMetaRepo) DeactivateCountryCode(ctx context.Context, id string) error {
	m.deactivated = append(m.deactivated, id)
	return nil
}

func (m *mockMetaRepo) ListLocations(ctx context.Context, activeOnly bool) ([]models.Location, error) {
	return m.locations, nil
}

func (m *mockMetaRepo) CreateLocation(ctx context.Context, location *models.Location) error {
	m.createdLocation = location
	return nil
}

func (m *mockMetaRepo) UpdateLocation(ctx context.Context, location *models.Location) error {
	return nil
}

func (m *mockMetaRepo) DeactivateLocation(ctx context.Context, id string) error {
	m.deactivated = append(m.deactivated, id)
	return nil
}

type mockRequirementRepo struct {
	requirements []models.ProgramRequirement
	found        *models.ProgramRequirement
	created      *models.ProgramRequirement
	updated      *models.ProgramRequirement
	deletedID    string
}

func (m *mockRequirementRepo) List(ctx context.Context, programID string) ([]models.ProgramRequirement, error) {
	return m.requirements, nil
}

func (m *mockRequirementRepo) FindByID(ctx context.Context, id string) (*models.ProgramRequirement, error) {
	if m.found == nil {
		return nil, sql.ErrNoRows
	}
	return m.found, nil
}

func (m *mockRequirementRepo) Create(ctx context.Context, requirement *models.ProgramRequirement) error {
	m.created = requirement
	return nil
}

func (m *mockRequirementRepo) Update(ctx context.Context, requirement *models.ProgramRequirement) error {
	m.updated = requirement
	return nil
}

func (m *mockRequirementRepo) Delete(ctx context.Context, id string) error {
	m.deletedID = id
	return nil
}

func newMetaService(repo *mockMetaRepo, requirements *mockRequirementRepo) *MetaService {
	return NewMetaService(repo, requirements, nil, nil)
}

func TestCreateProgramDefaultsActive(t *testing.T) {
	repo := &mockMetaRepo{}
	svc := newMetaService(repo, &mockRequirementRepo{})

	program, err := svc.CreateProgram(context.Background(), ProgramRequest{Name: "STEM Fellowship", Code: "STEM"})
	require.NoError(t, err)
	assert.True(t, program.Active)
	require.NotNil(t, repo.createdProgram)
}

func TestCreateProgramExplicitInactive(t *testing.T) {
	repo := &mockMetaRepo{}
	svc := newMetaService(repo, &mockRequirementRepo{})

	inactive := false
	program, err := svc.CreateProgram(context.Background(), ProgramRequest{Name: "Legacy", Code: "LEG", Active: &inactive})
	require.NoError(t, err)
	assert.False(t, program.Active)
}

func TestCreateProgramRequiresCode(t *testing.T) {
	svc := newMetaService(&mockMetaRepo{}, &mockRequirementRepo{})

	_, err := svc.CreateProgram(context.Background(), ProgramRequest{Name: "STEM Fellowship"})
	assert.Error(t, err)
}

func TestCreateStageRequiresPositiveOrder(t *testing.T) {
	svc := newMetaService(&mockMetaRepo{}, &mockRequirementRepo{})

	_, err := svc.CreateStage(context.Background(), StageMetaRequest{Name: "Screening"})
	assert.Error(t, err)

	stage, err := svc.CreateStage(context.Background(), StageMetaRequest{Name: "Screening", StageOrder: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, stage.StageOrder)
}

func TestListProgramsReturnsEmptySlice(t *testing.T) {
	svc := newMetaService(&mockMetaRepo{}, &mockRequirementRepo{})

	programs, err := svc.ListPrograms(context.Background(), true)
	require.NoError(t, err)
	assert.NotNil(t, programs)
	assert.Empty(t, programs)
}

func TestDeactivateMetadataRows(t *testing.T) {
	repo := &mockMetaRepo{}
	svc := newMetaService(repo, &mockRequirementRepo{})

	require.NoError(t, svc.DeactivateProgram(context.Background(), "p-1"))
	require.NoError(t, svc.DeactivateStage(context.Background(), "s-1"))
	require.NoError(t, svc.DeactivateCountryCode(context.Background(), "c-1"))
	require.NoError(t, svc.DeactivateLocation(context.Background(), "l-1"))
	assert.Equal(t, []string{"p-1", "s-1", "c-1", "l-1"}, repo.deactivated)
}

func TestCreateRequirement(t *testing.T) {
	requirements := &mockRequirementRepo{}
	svc := newMetaService(&mockMetaRepo{}, requirements)

	requirement, err := svc.CreateRequirement(context.Background(), RequirementRequest{
		ProgramID: candProgramID,
		Title:     "Math Teacher",
		Headcount: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, requirement.Headcount)
	require.NotNil(t, requirements.created)
}

func TestUpdateRequirementNotFound(t *testing.T) {
	svc := newMetaService(&mockMetaRepo{}, &mockRequirementRepo{})

	_, err := svc.UpdateRequirement(context.Background(), "missing", RequirementRequest{
		ProgramID: candProgramID,
		Title:     "Math Teacher",
		Headcount: 1,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requirement not found")
}

func TestUpdateRequirementOverwritesFields(t *testing.T) {
	requirements := &mockRequirementRepo{found: &models.ProgramRequirement{
		ID:        "req-1",
		ProgramID: candProgramID,
		Title:     "Math Teacher",
		Headcount: 1,
	}}
	svc := newMetaService(&mockMetaRepo{}, requirements)

	requirement, err := svc.UpdateRequirement(context.Background(), "req-1", RequirementRequest{
		ProgramID: candProgramID,
		Title:     "Senior Math Teacher",
		Headcount: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "Senior Math Teacher", requirement.Title)
	assert.Equal(t, 2, requirement.Headcount)
	require.NotNil(t, requirements.updated)
}

func TestDeleteRequirement(t *testing.T) {
	requirements := &mockRequirementRepo{}
	svc := newMetaService(&mockMetaRepo{}, requirements)

	require.NoError(t, svc.DeleteRequirement(context.Background(), "req-1"))
	assert.Equal(t, "req-1", requirements.deletedID)
}
