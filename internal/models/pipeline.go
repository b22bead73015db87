package models

import "time"

// MaxTrackedStageOrder bounds the stage slots surfaced by per-candidate views
// and dashboard aggregation. Stage metadata with a higher order may exist in
// storage but is ignored when building views.
const MaxTrackedStageOrder = 4

// StageMeta describes a pipeline stage definition with its declared order.
type StageMeta struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	StageOrder int       `db:"stage_order" json:"stage_order"`
	Active     bool      `db:"active" json:"active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// PipelineStage is one row per (candidate, slot). Submitting a new record for
// a slot replaces the previous one; no history is retained.
type PipelineStage struct {
	ID          string     `db:"id" json:"id"`
	CandidateID string     `db:"candidate_id" json:"candidate_id"`
	StageID     string     `db:"stage_id" json:"stage_id"`
	Slot        int        `db:"slot" json:"slot"`
	CompletedOn *time.Time `db:"completed_on" json:"completed_on,omitempty"`
	Notes       string     `db:"notes" json:"notes"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// PipelineStageDetail joins the stage record with its metadata.
type PipelineStageDetail struct {
	PipelineStage
	StageName  string `db:"stage_name" json:"stage_name"`
	StageOrder int    `db:"stage_order" json:"stage_order"`
}

// FinalStatus enumerates terminal pipeline dispositions.
type FinalStatus string

const (
	FinalStatusSelected FinalStatus = "SELECTED"
	FinalStatusRejected FinalStatus = "REJECTED"
	FinalStatusOffer    FinalStatus = "OFFER"
	FinalStatusAccepted FinalStatus = "ACCEPTED"
	FinalStatusJoined   FinalStatus = "JOINED"
	FinalStatusOnHold   FinalStatus = "ON_HOLD"
)

// FinalStatusOptions enumerates the accepted final statuses.
var FinalStatusOptions = []FinalStatus{
	FinalStatusSelected,
	FinalStatusRejected,
	FinalStatusOffer,
	FinalStatusAccepted,
	FinalStatusJoined,
	FinalStatusOnHold,
}

// ValidFinalStatus reports whether the given value is a known final status.
func ValidFinalStatus(s FinalStatus) bool {
	for _, opt := range FinalStatusOptions {
		if s == opt {
			return true
		}
	}
	return false
}

// FinalDisposition holds at most one terminal decision per candidate,
// upserted in place on resubmission.
type FinalDisposition struct {
	ID          string      `db:"id" json:"id"`
	CandidateID string      `db:"candidate_id" json:"candidate_id"`
	Status      FinalStatus `db:"status" json:"status"`
	Notes       string      `db:"notes" json:"notes"`
	DecidedOn   *time.Time  `db:"decided_on" json:"decided_on,omitempty"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`
}

// PipelineCandidateView is the per-candidate pipeline table row: the latest
// record for each tracked slot, the final disposition and the most recent
// communication log, when any exist.
type PipelineCandidateView struct {
	CandidateID         string                `json:"candidate_id"`
	FullName            string                `json:"full_name"`
	ProgramName         string                `json:"program_name,omitempty"`
	Stages              []PipelineStageDetail `json:"stages"`
	Final               *FinalDisposition     `json:"final,omitempty"`
	LatestCommunication *CommunicationLog     `json:"latest_communication,omitempty"`
}
