package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-recruit-api/internal/models"
	appErrors "github.com/noah-isme/sma-recruit-api/pkg/errors"
)

type benchRepository interface {
	List(ctx context.Context) ([]models.BenchEntry, error)
	FindByID(ctx context.Context, id string) (*models.BenchEntry, error)
	Create(ctx context.Context, entry *models.BenchEntry) error
	Update(ctx context.Context, entry *models.BenchEntry) error
	Delete(ctx context.Context, id string) error
	CreatePush(ctx context.Context, push *models.BenchPush) error
	ListPushesByBench(ctx context.Context, benchID string) ([]models.BenchPush, error)
}

type benchCandidateCreator interface {
	Create(ctx context.Context, req CreateCandidateRequest) (*models.Candidate, error)
}

type benchCountryCodeRepository interface {
	FindCountryCode(ctx context.Context, id string) (*models.CountryCode, error)
}

// CreateBenchRequest is the payload for adding a bench lead.
type CreateBenchRequest struct {
	Name  string  `json:"name" validate:"required"`
	Phone string  `json:"phone" validate:"required"`
	Email *string `json:"email" validate:"omitempty,email"`
	Notes string  `json:"notes"`
}

// PushBenchRequest promotes bench leads into the candidate pipeline.
type PushBenchRequest struct {
	BenchIDs      []string `json:"bench_ids" validate:"required,min=1,dive,uuid"`
	ProgramID     string   `json:"program_id" validate:"required,uuid"`
	RequirementID *string  `json:"requirement_id" validate:"omitempty,uuid"`
	LocationID    *string  `json:"location_id" validate:"omitempty,uuid"`
	CountryCodeID string   `json:"country_code_id" validate:"required,uuid"`
	MSPCodeID     *string  `json:"msp_code_id" validate:"omitempty,uuid"`
}

// PushBenchResult reports the outcome of a bench push batch.
type PushBenchResult struct {
	Created []models.Candidate `json:"created"`
	Skipped []string           `json:"skipped"`
}

// BenchService manages bench leads and their promotion into candidates. A
// push is best effort per entry: missing or failing entries are skipped and
// the rest of the batch proceeds.
type BenchService struct {
	repo       benchRepository
	candidates benchCandidateCreator
	countries  benchCountryCodeRepository
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewBenchService constructs a BenchService instance.
func NewBenchService(repo benchRepository, candidates benchCandidateCreator, countries benchCountryCodeRepository, validate *validator.Validate, logger *zap.Logger) *BenchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &BenchService{repo: repo, candidates: candidates, countries: countries, validator: validate, logger: logger}
}

// List returns bench entries, newest first.
func (s *BenchService) List(ctx context.Context) ([]models.BenchEntry, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bench entries")
	}
	if entries == nil {
		entries = []models.BenchEntry{}
	}
	return entries, nil
}

// Create adds a bench lead.
func (s *BenchService) Create(ctx context.Context, req CreateBenchRequest) (*models.BenchEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bench payload")
	}
	entry := &models.BenchEntry{Name: req.Name, Phone: req.Phone, Email: req.Email, Notes: req.Notes}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save bench entry")
	}
	return entry, nil
}

// Update modifies a bench lead.
func (s *BenchService) Update(ctx context.Context, id string, req CreateBenchRequest) (*models.BenchEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bench payload")
	}
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "bench entry not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch bench entry")
	}
	entry.Name = req.Name
	entry.Phone = req.Phone
	entry.Email = req.Email
	entry.Notes = req.Notes
	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update bench entry")
	}
	return entry, nil
}

// Delete removes a bench lead.
func (s *BenchService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete bench entry")
	}
	return nil
}

// Pushes returns the promotion log for a bench entry.
func (s *BenchService) Pushes(ctx context.Context, benchID string) ([]models.BenchPush, error) {
	pushes, err := s.repo.ListPushesByBench(ctx, benchID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bench pushes")
	}
	if pushes == nil {
		pushes = []models.BenchPush{}
	}
	return pushes, nil
}

// Push promotes each referenced bench entry into a candidate. Missing bench
// ids and per-entry creation failures are skipped without aborting the batch;
// each successful promotion is logged as a push record.
func (s *BenchService) Push(ctx context.Context, userID string, req PushBenchRequest) (*PushBenchResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bench push payload")
	}

	country, err := s.countries.FindCountryCode(ctx, req.CountryCodeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "country code not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch country code")
	}

	result := &PushBenchResult{Created: []models.Candidate{}, Skipped: []string{}}
	for _, benchID := range req.BenchIDs {
		entry, err := s.repo.FindByID(ctx, benchID)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				s.logger.Warn("bench lookup failed", zap.String("bench_id", benchID), zap.Error(err))
			}
			result.Skipped = append(result.Skipped, benchID)
			continue
		}

		first, last := splitName(entry.Name)
		candidate, err := s.candidates.Create(ctx, CreateCandidateRequest{
			FirstName:     first,
			LastName:      last,
			Email:         benchEmail(entry),
			Phone:         benchPhone(country.Prefix, entry.Phone),
			ProgramID:     req.ProgramID,
			RequirementID: req.RequirementID,
			MSPCodeID:     req.MSPCodeID,
			LocationID:    req.LocationID,
		})
		if err != nil {
			s.logger.Warn("bench push skipped entry", zap.String("bench_id", benchID), zap.Error(err))
			result.Skipped = append(result.Skipped, benchID)
			continue
		}

		push := &models.BenchPush{
			BenchID:       benchID,
			CandidateID:   candidate.ID,
			PushedBy:      userID,
			ProgramID:     req.ProgramID,
			RequirementID: req.RequirementID,
			LocationID:    req.LocationID,
			CountryCodeID: req.CountryCodeID,
			MSPCodeID:     req.MSPCodeID,
		}
		if err := s.repo.CreatePush(ctx, push); err != nil {
			s.logger.Warn("failed to record bench push", zap.String("bench_id", benchID), zap.Error(err))
		}
		result.Created = append(result.Created, *candidate)
	}
	return result, nil
}

// splitName separates a bench entry name into first and last parts. A single
// word becomes the first name with no last name.
func splitName(name string) (string, *string) {
	parts := strings.Fields(strings.TrimSpace(name))
	if len(parts) == 0 {
		return "", nil
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	last := strings.Join(parts[1:], " ")
	return parts[0], &last
}

// benchEmail returns the entry email when present, otherwise a placeholder
// derived from the phone digits, falling back to the bench id.
func benchEmail(entry *models.BenchEntry) string {
	if entry.Email != nil && *entry.Email != "" {
		return *entry.Email
	}
	if digits := digitsOnly(entry.Phone); digits != "" {
		return fmt.Sprintf("%s@bench.local", digits)
	}
	return fmt.Sprintf("%s@bench.local", entry.ID)
}

// benchPhone normalises the phone to the country prefix plus digits.
func benchPhone(prefix, phone string) string {
	digits := digitsOnly(phone)
	prefix = strings.TrimPrefix(strings.TrimSpace(prefix), "+")
	if digits == "" {
		return phone
	}
	if prefix != "" && strings.HasPrefix(digits, prefix) {
		return "+" + digits
	}
	return "+" + prefix + digits
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
