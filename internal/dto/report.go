package dto

import "time"

// CreateExportRequest queues an asynchronous export.
type CreateExportRequest struct {
	Type      string `json:"type" validate:"required"`
	Format    string `json:"format"`
	ProgramID string `json:"program_id"`
}

// ExportJobView is the API shape for an export job row.
type ExportJobView struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"`
	Format     string     `json:"format"`
	Status     string     `json:"status"`
	ResultURL  string     `json:"result_url,omitempty"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
