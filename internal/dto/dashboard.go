package dto

import (
	"time"

	"github.com/noah-isme/sma-recruit-api/internal/models"
)

// StageCompletion reports how many distinct candidates completed a tracked
// stage order.
type StageCompletion struct {
	StageOrder int `json:"stage_order"`
	Count      int `json:"count"`
}

// StageConversion reports the percentage of candidates who completed one
// stage and went on to complete the next.
type StageConversion struct {
	FromOrder int     `json:"from_order"`
	ToOrder   int     `json:"to_order"`
	Pct       float64 `json:"pct"`
}

// FinalStatusBreakdown reports counts and share per terminal disposition.
type FinalStatusBreakdown struct {
	Status models.FinalStatus `json:"status"`
	Count  int                `json:"count"`
	Pct    float64            `json:"pct"`
}

// RecruitmentDashboard is the aggregated funnel snapshot returned by the
// dashboard section.
type RecruitmentDashboard struct {
	TotalCandidates  int                    `json:"total_candidates"`
	StageCompletions []StageCompletion      `json:"stage_completions"`
	StageConversions []StageConversion      `json:"stage_conversions"`
	FinalStatuses    []FinalStatusBreakdown `json:"final_statuses"`
	SelectedPct      float64                `json:"selected_pct"`
	GeneratedAt      time.Time              `json:"generated_at"`
}
