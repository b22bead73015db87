package service

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-recruit-api/internal/dto"
	"github.com/noah-isme/sma-recruit-api/internal/models"
	"github.com/noah-isme/sma-recruit-api/internal/repository"
	appErrors "github.com/noah-isme/sma-recruit-api/pkg/errors"
)

const dashboardCacheKey = "recruitment:dashboard"

type dashboardCandidateCounter interface {
	CountTotal(ctx context.Context) (int, error)
}

type dashboardPipelineAggregator interface {
	CountCompletedByOrder(ctx context.Context) ([]repository.StageOrderCount, error)
	CountFinalsByStatus(ctx context.Context) ([]repository.FinalStatusCount, error)
}

// DashboardService aggregates the recruitment funnel into a single snapshot,
// cached in Redis with a short TTL. Every write through the recruitment
// sections invalidates the cache.
type DashboardService struct {
	candidates dashboardCandidateCounter
	pipeline   dashboardPipelineAggregator
	cache      *CacheService
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// NewDashboardService constructs a DashboardService instance.
func NewDashboardService(candidates dashboardCandidateCounter, pipeline dashboardPipelineAggregator, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &DashboardService{candidates: candidates, pipeline: pipeline, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// Pct converts a numerator/denominator pair into a percentage rounded to one
// decimal place. A zero denominator yields 0 rather than an error.
func Pct(numerator, denominator int) float64 {
	if denominator == 0 {
		return 0
	}
	return math.Round(float64(numerator)/float64(denominator)*1000) / 10
}

// Snapshot builds (or serves from cache) the dashboard aggregation.
func (s *DashboardService) Snapshot(ctx context.Context) (*dto.RecruitmentDashboard, error) {
	dashboard, _, err := s.SnapshotWithSource(ctx)
	return dashboard, err
}

// SnapshotWithSource is Snapshot plus a flag reporting whether the snapshot
// was served from cache.
func (s *DashboardService) SnapshotWithSource(ctx context.Context) (*dto.RecruitmentDashboard, bool, error) {
	if s.cache.Enabled() {
		var cached dto.RecruitmentDashboard
		if hit, err := s.cache.Get(ctx, dashboardCacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	dashboard, err := s.build(ctx)
	if err != nil {
		return nil, false, err
	}

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, dashboardCacheKey, dashboard, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache dashboard", zap.Error(err))
		}
	}
	return dashboard, false, nil
}

// Invalidate drops the cached snapshot after a recruitment write.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if !s.cache.Enabled() {
		return
	}
	if err := s.cache.Invalidate(ctx, dashboardCacheKey); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}

func (s *DashboardService) build(ctx context.Context) (*dto.RecruitmentDashboard, error) {
	total, err := s.candidates.CountTotal(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count candidates")
	}
	stageCounts, err := s.pipeline.CountCompletedByOrder(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate stages")
	}
	finalCounts, err := s.pipeline.CountFinalsByStatus(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate final dispositions")
	}

	countByOrder := make(map[int]int, models.MaxTrackedStageOrder)
	for _, c := range stageCounts {
		countByOrder[c.StageOrder] = c.Count
	}

	completions := make([]dto.StageCompletion, 0, models.MaxTrackedStageOrder)
	for order := 1; order <= models.MaxTrackedStageOrder; order++ {
		completions = append(completions, dto.StageCompletion{StageOrder: order, Count: countByOrder[order]})
	}

	conversions := make([]dto.StageConversion, 0, models.MaxTrackedStageOrder-1)
	for order := 1; order < models.MaxTrackedStageOrder; order++ {
		conversions = append(conversions, dto.StageConversion{
			FromOrder: order,
			ToOrder:   order + 1,
			Pct:       Pct(countByOrder[order+1], countByOrder[order]),
		})
	}

	countByStatus := make(map[models.FinalStatus]int, len(finalCounts))
	for _, c := range finalCounts {
		countByStatus[c.Status] = c.Count
	}

	// Zero-fill so every known status appears in the breakdown, mirroring
	// the stage completions above.
	finals := make([]dto.FinalStatusBreakdown, 0, len(models.FinalStatusOptions))
	for _, status := range models.FinalStatusOptions {
		finals = append(finals, dto.FinalStatusBreakdown{
			Status: status,
			Count:  countByStatus[status],
			Pct:    Pct(countByStatus[status], total),
		})
	}
	selected := countByStatus[models.FinalStatusSelected]

	return &dto.RecruitmentDashboard{
		TotalCandidates:  total,
		StageCompletions: completions,
		StageConversions: conversions,
		FinalStatuses:    finals,
		SelectedPct:      Pct(selected, total),
		GeneratedAt:      time.Now().UTC(),
	}, nil
}
