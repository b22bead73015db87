package dto

import (
	"time"

	"github.com/noah-isme/sma-recruit-api/internal/models"
)

// SubmitDayCloseRequest is the payload for closing a day. The date defaults
// to today when omitted; routine task flags are only accepted for today.
type SubmitDayCloseRequest struct {
	Date                string                     `json:"date"`
	RoutineLog          string                     `json:"routine_log"`
	GeneralLog          string                     `json:"general_log"`
	AssignedTaskUpdates models.AssignedTaskUpdates `json:"assigned_task_updates"`
	RoutineTaskUpdates  models.RoutineTaskUpdates  `json:"routine_task_updates"`
	MRIClearance        *models.MRIClearance       `json:"mri_clearance,omitempty"`
	Bypass              bool                       `json:"bypass"`
}

// ResolveDayCloseRequest is the supervisor payload approving or rejecting a
// pending day close.
type ResolveDayCloseRequest struct {
	Approve    bool    `json:"approve"`
	RoutineLog *string `json:"routine_log,omitempty"`
	GeneralLog *string `json:"general_log,omitempty"`
}

// DayCloseStatus is the per-(user, date) status view, including the feature
// flags clients use to shape the close form.
type DayCloseStatus struct {
	Date    string                  `json:"date"`
	Status  models.DayCloseStatus   `json:"status"`
	Request *models.DayCloseRequest `json:"request,omitempty"`

	TimeLeftSeconds    int64  `json:"time_left_seconds"`
	WithinWindow       bool   `json:"within_window"`
	ClosingWindowStart string `json:"closing_window_start"`
	ClosingWindowEnd   string `json:"closing_window_end"`
	DayCloseTime       string `json:"day_close_time"`

	ShowBypass          bool `json:"show_bypass"`
	ShowIprJourney      bool `json:"show_ipr_journey"`
	BlockMobileDayClose bool `json:"block_mobile_day_close"`

	// RoutineLogRequired is the per-user resolution of the raw config
	// flags below, which are surfaced alongside it for admin screens.
	RoutineLogRequired            bool     `json:"routine_log_required"`
	RoutineLogRequiredAll         bool     `json:"routine_log_required_all"`
	RoutineLogRequiredTeachers    bool     `json:"routine_log_required_teachers"`
	RoutineLogRequiredNonTeachers bool     `json:"routine_log_required_non_teachers"`
	RoutineLogMemberIDs           []string `json:"routine_log_member_ids"`

	GeneratedAt time.Time `json:"generated_at"`
}
