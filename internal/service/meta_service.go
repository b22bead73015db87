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

type metaRepository interface {
	ListPrograms(ctx context.Context, activeOnly bool) ([]models.Program, error)
	CreateProgram(ctx context.Context, program *models.Program) error
	UpdateProgram(ctx context.Context, program *models.Program) error
	DeactivateProgram(ctx context.Context, id string) error
	ListStageMeta(ctx context.Context, activeOnly bool) ([]models.StageMeta, error)
	CreateStageMeta(ctx context.Context, meta *models.StageMeta) error
	UpdateStageMeta(ctx context.Context, meta *models.StageMeta) error
	DeactivateStageMeta(ctx context.Context, id string) error
	ListCountryCodes(ctx context.Context, activeOnly bool) ([]models.CountryCode, error)
	CreateCountryCode(ctx context.Context, code *models.CountryCode) error
	UpdateCountryCode(ctx context.Context, code *models.CountryCode) error
	DeactivateCountryCode(ctx context.Context, id string) error
	ListLocations(ctx context.Context, activeOnly bool) ([]models.Location, error)
	CreateLocation(ctx context.Context, location *models.Location) error
	UpdateLocation(ctx context.Context, location *models.Location) error
	DeactivateLocation(ctx context.Context, id string) error
}

type requirementRepository interface {
	List(ctx context.Context, programID string) ([]models.ProgramRequirement, error)
	FindByID(ctx context.Context, id string) (*models.ProgramRequirement, error)
	Create(ctx context.Context, requirement *models.ProgramRequirement) error
	Update(ctx context.Context, requirement *models.ProgramRequirement) error
	Delete(ctx context.Context, id string) error
}

// ProgramRequest is the payload for creating or updating a program.
type ProgramRequest struct {
	Name   string `json:"name" validate:"required"`
	Code   string `json:"code" validate:"required"`
	Active *bool  `json:"active"`
}

// StageMetaRequest is the payload for creating or updating a stage
// definition.
type StageMetaRequest struct {
	Name       string `json:"name" validate:"required"`
	StageOrder int    `json:"stage_order" validate:"required,min=1"`
	Active     *bool  `json:"active"`
}

// CountryCodeRequest is the payload for creating or updating a dialing
// prefix.
type CountryCodeRequest struct {
	Country string `json:"country" validate:"required"`
	Prefix  string `json:"prefix" validate:"required"`
	Active  *bool  `json:"active"`
}

// LocationRequest is the payload for creating or updating a location.
type LocationRequest struct {
	Name   string `json:"name" validate:"required"`
	Active *bool  `json:"active"`
}

// RequirementRequest is the payload for creating or updating a hiring
// requirement.
type RequirementRequest struct {
	ProgramID  string  `json:"program_id" validate:"required,uuid"`
	Title      string  `json:"title" validate:"required"`
	Headcount  int     `json:"headcount" validate:"required,min=1"`
	LocationID *string `json:"location_id" validate:"omitempty,uuid"`
}

// MetaService manages the metadata catalogs: programs, stage definitions,
// country codes, locations and hiring requirements. Metadata rows are
// soft-deactivated; requirements are transactional and hard-deleted.
type MetaService struct {
	repo         metaRepository
	requirements requirementRepository
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewMetaService constructs a MetaService instance.
func NewMetaService(repo metaRepository, requirements requirementRepository, validate *validator.Validate, logger *zap.Logger) *MetaService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &MetaService{repo: repo, requirements: requirements, validator: validate, logger: logger}
}

// ListPrograms returns programs, optionally active rows only.
func (s *MetaService) ListPrograms(ctx context.Context, activeOnly bool) ([]models.Program, error) {
	programs, err := s.repo.ListPrograms(ctx, activeOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list programs")
	}
	if programs == nil {
		programs = []models.Program{}
	}
	return programs, nil
}

// CreateProgram adds a program.
func (s *MetaService) CreateProgram(ctx context.Context, req ProgramRequest) (*models.Program, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid program payload")
	}
	program := &models.Program{Name: req.Name, Code: req.Code, Active: activeOrDefault(req.Active)}
	if err := s.repo.CreateProgram(ctx, program); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save program")
	}
	return program, nil
}

// UpdateProgram modifies a program.
func (s *MetaService) UpdateProgram(ctx context.Context, id string, req ProgramRequest) (*models.Program, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid program payload")
	}
	program := &models.Program{ID: id, Name: req.Name, Code: req.Code, Active: activeOrDefault(req.Active)}
	if err := s.repo.UpdateProgram(ctx, program); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update program")
	}
	return program, nil
}

// DeactivateProgram soft-deletes a program.
func (s *MetaService) DeactivateProgram(ctx context.Context, id string) error {
	if err := s.repo.DeactivateProgram(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate program")
	}
	return nil
}

// ListStages returns stage definitions in declared order.
func (s *MetaService) ListStages(ctx context.Context, activeOnly bool) ([]models.StageMeta, error) {
	stages, err := s.repo.ListStageMeta(ctx, activeOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list stages")
	}
	if stages == nil {
		stages = []models.StageMeta{}
	}
	return stages, nil
}

// CreateStage adds a stage definition.
func (s *MetaService) CreateStage(ctx context.Context, req StageMetaRequest) (*models.StageMeta, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid stage payload")
	}
	meta := &models.StageMeta{Name: req.Name, StageOrder: req.StageOrder, Active: activeOrDefault(req.Active)}
	if err := s.repo.CreateStageMeta(ctx, meta); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save stage")
	}
	return meta, nil
}

// UpdateStage modifies a stage definition.
func (s *MetaService) UpdateStage(ctx context.Context, id string, req StageMetaRequest) (*models.StageMeta, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid stage payload")
	}
	meta := &models.StageMeta{ID: id, Name: req.Name, StageOrder: req.StageOrder, Active: activeOrDefault(req.Active)}
	if err := s.repo.UpdateStageMeta(ctx, meta); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update stage")
	}
	return meta, nil
}

// DeactivateStage soft-deletes a stage definition.
func (s *MetaService) DeactivateStage(ctx context.Context, id string) error {
	if err := s.repo.DeactivateStageMeta(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate stage")
	}
	return nil
}

// ListCountryCodes returns dialing prefixes.
func (s *MetaService) ListCountryCodes(ctx context.Context, activeOnly bool) ([]models.CountryCode, error) {
	codes, err := s.repo.ListCountryCodes(ctx, activeOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list country codes")
	}
	if codes == nil {
		codes = []models.CountryCode{}
	}
	return codes, nil
}

// CreateCountryCode adds a dialing prefix.
func (s *MetaService) CreateCountryCode(ctx context.Context, req CountryCodeRequest) (*models.CountryCode, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid country code payload")
	}
	code := &models.CountryCode{Country: req.Country, Prefix: req.Prefix, Active: activeOrDefault(req.Active)}
	if err := s.repo.CreateCountryCode(ctx, code); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save country code")
	}
	return code, nil
}

// UpdateCountryCode modifies a dialing prefix.
func (s *MetaService) UpdateCountryCode(ctx context.Context, id string, req CountryCodeRequest) (*models.CountryCode, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid country code payload")
	}
	code := &models.CountryCode{ID: id, Country: req.Country, Prefix: req.Prefix, Active: activeOrDefault(req.Active)}
	if err := s.repo.UpdateCountryCode(ctx, code); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update country code")
	}
	return code, nil
}

// DeactivateCountryCode soft-deletes a dialing prefix.
func (s *MetaService) DeactivateCountryCode(ctx context.Context, id string) error {
	if err := s.repo.DeactivateCountryCode(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate country code")
	}
	return nil
}

// ListLocations returns locations.
func (s *MetaService) ListLocations(ctx context.Context, activeOnly bool) ([]models.Location, error) {
	locations, err := s.repo.ListLocations(ctx, activeOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list locations")
	}
	if locations == nil {
		locations = []models.Location{}
	}
	return locations, nil
}

// CreateLocation adds a location.
func (s *MetaService) CreateLocation(ctx context.Context, req LocationRequest) (*models.Location, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid location payload")
	}
	location := &models.Location{Name: req.Name, Active: activeOrDefault(req.Active)}
	if err := s.repo.CreateLocation(ctx, location); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save location")
	}
	return location, nil
}

// UpdateLocation modifies a location.
func (s *MetaService) UpdateLocation(ctx context.Context, id string, req LocationRequest) (*models.Location, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid location payload")
	}
	location := &models.Location{ID: id, Name: req.Name, Active: activeOrDefault(req.Active)}
	if err := s.repo.UpdateLocation(ctx, location); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update location")
	}
	return location, nil
}

// DeactivateLocation soft-deletes a location.
func (s *MetaService) DeactivateLocation(ctx context.Context, id string) error {
	if err := s.repo.DeactivateLocation(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate location")
	}
	return nil
}

// ListRequirements returns hiring requirements, optionally for one program.
func (s *MetaService) ListRequirements(ctx context.Context, programID string) ([]models.ProgramRequirement, error) {
	requirements, err := s.requirements.List(ctx, programID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requirements")
	}
	if requirements == nil {
		requirements = []models.ProgramRequirement{}
	}
	return requirements, nil
}

// CreateRequirement adds a hiring requirement.
func (s *MetaService) CreateRequirement(ctx context.Context, req RequirementRequest) (*models.ProgramRequirement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid requirement payload")
	}
	requirement := &models.ProgramRequirement{ProgramID: req.ProgramID, Title: req.Title, Headcount: req.Headcount, LocationID: req.LocationID}
	if err := s.requirements.Create(ctx, requirement); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save requirement")
	}
	return requirement, nil
}

// UpdateRequirement modifies a hiring requirement.
func (s *MetaService) UpdateRequirement(ctx context.Context, id string, req RequirementRequest) (*models.ProgramRequirement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid requirement payload")
	}
	existing, err := s.requirements.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "requirement not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch requirement")
	}
	existing.ProgramID = req.ProgramID
	existing.Title = req.Title
	existing.Headcount = req.Headcount
	existing.LocationID = req.LocationID
	if err := s.requirements.Update(ctx, existing); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update requirement")
	}
	return existing, nil
}

// DeleteRequirement removes a hiring requirement.
func (s *MetaService) DeleteRequirement(ctx context.Context, id string) error {
	if err := s.requirements.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete requirement")
	}
	return nil
}

func activeOrDefault(active *bool) bool {
	if active == nil {
		return true
	}
	return *active
}
