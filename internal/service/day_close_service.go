package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-recruit-api/internal/dto"
	"github.com/noah-isme/sma-recruit-api/internal/models"
	"github.com/noah-isme/sma-recruit-api/pkg/config"
	appErrors "github.com/noah-isme/sma-recruit-api/pkg/errors"
)

type dayCloseRepository interface {
	FindByUserDate(ctx context.Context, userID string, date time.Time) (*models.DayCloseRequest, error)
	Create(ctx context.Context, request *models.DayCloseRequest) error
	Resolve(ctx context.Context, id string, status models.DayCloseStatus, approverID string, routineLog, generalLog *string) (bool, error)
	FindByID(ctx context.Context, id string) (*models.DayCloseRequest, error)
	ListPendingByDate(ctx context.Context, date time.Time) ([]models.DayCloseRequest, error)
}

type escalationChecker interface {
	IsBlocked(ctx context.Context, userID string) (bool, error)
}

// DayCloseService runs the day-close approval workflow. A submission passes
// three gates in order: the closing window (or an authorized bypass), the
// unresolved-escalation block and the routine-log requirement. Surviving
// submissions become the single pending record for (user, date).
type DayCloseService struct {
	repo        dayCloseRepository
	escalations escalationChecker
	validator   *validator.Validate
	logger      *zap.Logger
	cfg         config.DayCloseConfig
	now         func() time.Time
}

// NewDayCloseService constructs a DayCloseService instance.
func NewDayCloseService(repo dayCloseRepository, escalations escalationChecker, validate *validator.Validate, logger *zap.Logger, cfg config.DayCloseConfig) *DayCloseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &DayCloseService{repo: repo, escalations: escalations, validator: validate, logger: logger, cfg: cfg, now: time.Now}
}

// Submit closes the user's day. The date defaults to today; routine task
// flags are rejected for any other date because historical days are
// immutable.
func (s *DayCloseService) Submit(ctx context.Context, user *models.User, req dto.SubmitDayCloseRequest) (*models.DayCloseRequest, error) {
	now := s.now()
	date, err := s.resolveDate(req.Date, now)
	if err != nil {
		return nil, err
	}
	if !sameDay(date, now) && len(req.RoutineTaskUpdates) > 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "routine task updates are only accepted for today")
	}

	existing, err := s.repo.FindByUserDate(ctx, user.ID, date)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch day close record")
	}
	if existing != nil {
		switch existing.Status {
		case models.DayCloseStatusPending:
			return nil, appErrors.Clone(appErrors.ErrConflict, "a day close request is already pending for this date")
		case models.DayCloseStatusApproved, models.DayCloseStatusRejected:
			return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("the day is already %s", existing.Status))
		}
	}

	if !s.withinWindow(now) && !s.bypassAllowed(user.ID, req.Bypass) {
		return nil, appErrors.ErrOutsideWindow
	}

	blocked, err := s.escalations.IsBlocked(ctx, user.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check escalations")
	}
	if blocked {
		return nil, appErrors.ErrDayClosePaused
	}

	if s.routineLogRequired(user) && strings.TrimSpace(req.RoutineLog) == "" {
		return nil, appErrors.ErrRoutineLogRequired
	}

	record := &models.DayCloseRequest{
		UserID:              user.ID,
		Date:                date,
		Status:              models.DayCloseStatusPending,
		RoutineLog:          req.RoutineLog,
		GeneralLog:          req.GeneralLog,
		AssignedTaskUpdates: req.AssignedTaskUpdates,
		RoutineTaskUpdates:  req.RoutineTaskUpdates,
		MRIClearance:        req.MRIClearance,
		Bypass:              req.Bypass && s.bypassAllowed(user.ID, req.Bypass),
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, appErrors.FromError(err)
	}
	s.logger.Info("day close submitted", zap.String("user_id", user.ID), zap.String("date", date.Format("2006-01-02")))
	return record, nil
}

// Status returns the user's day-close state for the date plus the feature
// flags and countdown the close form needs. Absence of a record reads as the
// none status.
func (s *DayCloseService) Status(ctx context.Context, user *models.User, rawDate string) (*dto.DayCloseStatus, error) {
	now := s.now()
	date, err := s.resolveDate(rawDate, now)
	if err != nil {
		return nil, err
	}

	status := &dto.DayCloseStatus{
		Date:                date.Format("2006-01-02"),
		Status:              models.DayCloseStatusNone,
		TimeLeftSeconds:     s.timeLeft(now),
		WithinWindow:        s.withinWindow(now),
		ClosingWindowStart:  s.cfg.ClosingWindowStart,
		ClosingWindowEnd:    s.cfg.ClosingWindowEnd,
		DayCloseTime:        s.cfg.DayCloseTime,
		ShowBypass:          s.cfg.ShowBypass && contains(s.cfg.BypassMemberIDs, user.ID),
		ShowIprJourney:      s.cfg.ShowIprJourney,
		BlockMobileDayClose: s.cfg.BlockMobileDayClose,

		RoutineLogRequired:            s.routineLogRequired(user),
		RoutineLogRequiredAll:         s.cfg.RoutineLogRequiredAll,
		RoutineLogRequiredTeachers:    s.cfg.RoutineLogRequiredTeachers,
		RoutineLogRequiredNonTeachers: s.cfg.RoutineLogRequiredNonTeachers,
		RoutineLogMemberIDs:           s.cfg.RoutineLogMemberIDs,

		GeneratedAt: now.UTC(),
	}

	record, err := s.repo.FindByUserDate(ctx, user.ID, date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return status, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch day close record")
	}
	status.Status = record.Status
	status.Request = record
	return status, nil
}

// Resolve moves a pending request to approved or rejected. Resolving a
// record that is no longer pending is a conflict.
func (s *DayCloseService) Resolve(ctx context.Context, approverID, requestID string, req dto.ResolveDayCloseRequest) (*models.DayCloseRequest, error) {
	status := models.DayCloseStatusRejected
	if req.Approve {
		status = models.DayCloseStatusApproved
	}
	ok, err := s.repo.Resolve(ctx, requestID, status, approverID, req.RoutineLog, req.GeneralLog)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve day close request")
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrConflict, "day close request is not pending")
	}
	record, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "day close request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch day close request")
	}
	return record, nil
}

// Pending lists the pending requests for a date, for supervisor review.
func (s *DayCloseService) Pending(ctx context.Context, rawDate string) ([]models.DayCloseRequest, error) {
	date, err := s.resolveDate(rawDate, s.now())
	if err != nil {
		return nil, err
	}
	requests, err := s.repo.ListPendingByDate(ctx, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending day close requests")
	}
	if requests == nil {
		requests = []models.DayCloseRequest{}
	}
	return requests, nil
}

func (s *DayCloseService) resolveDate(raw string, now time.Time) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), nil
	}
	date, err := time.ParseInLocation("2006-01-02", raw, now.Location())
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD")
	}
	return date, nil
}

// withinWindow checks the wall-clock time of day against the configured
// closing window bounds, inclusive on both ends.
func (s *DayCloseService) withinWindow(now time.Time) bool {
	start, err := secondsOfDay(s.cfg.ClosingWindowStart)
	if err != nil {
		s.logger.Warn("invalid closing window start", zap.String("value", s.cfg.ClosingWindowStart), zap.Error(err))
		return true
	}
	end, err := secondsOfDay(s.cfg.ClosingWindowEnd)
	if err != nil {
		s.logger.Warn("invalid closing window end", zap.String("value", s.cfg.ClosingWindowEnd), zap.Error(err))
		return true
	}
	current := now.Hour()*3600 + now.Minute()*60 + now.Second()
	return current >= start && current <= end
}

func (s *DayCloseService) bypassAllowed(userID string, requested bool) bool {
	return requested && s.cfg.ShowBypass && contains(s.cfg.BypassMemberIDs, userID)
}

func (s *DayCloseService) routineLogRequired(user *models.User) bool {
	if s.cfg.RoutineLogRequiredAll {
		return true
	}
	if contains(s.cfg.RoutineLogMemberIDs, user.ID) {
		return true
	}
	if user.Role.IsTeacher() {
		return s.cfg.RoutineLogRequiredTeachers
	}
	return s.cfg.RoutineLogRequiredNonTeachers
}

// timeLeft returns the seconds until the nominal close time today, clamped
// at zero once the time has passed.
func (s *DayCloseService) timeLeft(now time.Time) int64 {
	target, err := secondsOfDay(s.cfg.DayCloseTime)
	if err != nil {
		return 0
	}
	current := now.Hour()*3600 + now.Minute()*60 + now.Second()
	if current >= target {
		return 0
	}
	return int64(target - current)
}

// secondsOfDay parses HH:MM or HH:MM:SS into seconds since midnight.
func secondsOfDay(value string) (int, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid time of day %q", value)
	}
	var h, m, sec int
	if _, err := fmt.Sscanf(parts[0], "%d", &h); err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", value)
	}
	if _, err := fmt.Sscanf(parts[1], "%d", &m); err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", value)
	}
	if len(parts) == 3 {
		if _, err := fmt.Sscanf(parts[2], "%d", &sec); err != nil || sec < 0 || sec > 59 {
			return 0, fmt.Errorf("invalid second in %q", value)
		}
	}
	return h*3600 + m*60 + sec, nil
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
