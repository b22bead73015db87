package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-recruit-api/internal/dto"
	"github.com/noah-isme/sma-recruit-api/internal/models"
	"github.com/noah-isme/sma-recruit-api/internal/repository"
	appErrors "github.com/noah-isme/sma-recruit-api/pkg/errors"
	"github.com/noah-isme/sma-recruit-api/pkg/export"
	"github.com/noah-isme/sma-recruit-api/pkg/jobs"
	"github.com/noah-isme/sma-recruit-api/pkg/storage"
)

type exportRepository interface {
	Create(ctx context.Context, job *models.ExportJob) error
	GetByID(ctx context.Context, id string) (*models.ExportJob, error)
	Update(ctx context.Context, id string, params repository.UpdateExportJobParams) error
	ListQueued(ctx context.Context, limit int) ([]models.ExportJob, error)
}

type exportCandidateLister interface {
	List(ctx context.Context, filter models.CandidateFilter) ([]models.CandidateDetail, int, error)
}

type exportPipelineBuilder interface {
	BuildTable(ctx context.Context, filter models.CandidateFilter) ([]models.PipelineCandidateView, error)
}

// ExportService queues candidate and pipeline exports, renders them on
// background workers and hands out signed download URLs for the results.
type ExportService struct {
	repo       exportRepository
	candidates exportCandidateLister
	pipeline   exportPipelineBuilder
	store      *storage.LocalStorage
	signer     *storage.SignedURLSigner
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	queue      *jobs.Queue
	logger     *zap.Logger
}

// NewExportService constructs the service; Start must be called before
// Enqueue to spin up the worker pool.
func NewExportService(repo exportRepository, candidates exportCandidateLister, pipeline exportPipelineBuilder, store *storage.LocalStorage, signer *storage.SignedURLSigner, workers, retries int, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ExportService{
		repo:       repo,
		candidates: candidates,
		pipeline:   pipeline,
		store:      store,
		signer:     signer,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		logger:     logger,
	}
	s.queue = jobs.NewQueue("exports", s.handle, jobs.QueueConfig{
		Workers:    workers,
		MaxRetries: retries,
		Logger:     logger,
	})
	return s
}

// Start launches the worker pool and requeues jobs left behind by a
// previous process.
func (s *ExportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
	queued, err := s.repo.ListQueued(ctx, 50)
	if err != nil {
		s.logger.Warn("failed to recover queued exports", zap.Error(err))
		return
	}
	for _, job := range queued {
		if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(job.Type)}); err != nil {
			s.logger.Warn("failed to requeue export", zap.String("job_id", job.ID), zap.Error(err))
		}
	}
}

// Stop drains the worker pool.
func (s *ExportService) Stop() {
	s.queue.Stop()
}

// Enqueue persists a job row and schedules it for processing.
func (s *ExportService) Enqueue(ctx context.Context, userID string, exportType models.ExportType, params models.ExportJobParams) (*models.ExportJob, error) {
	switch exportType {
	case models.ExportTypeCandidates, models.ExportTypePipeline:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown export type")
	}
	switch params.Format {
	case models.ExportFormatCSV, models.ExportFormatPDF:
	case "":
		params.Format = models.ExportFormatCSV
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown export format")
	}

	job := &models.ExportJob{
		Type:      exportType,
		Params:    params,
		Status:    models.ExportStatusQueued,
		CreatedBy: userID,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create export job")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(exportType)}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export job")
	}
	return job, nil
}

// Get returns the job row by id.
func (s *ExportService) Get(ctx context.Context, id string) (*models.ExportJob, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch export job")
	}
	return job, nil
}

// OpenDownload validates a signed token and opens the referenced file.
func (s *ExportService) OpenDownload(token string) (string, error) {
	_, relPath, _, err := s.signer.Parse(token)
	if err != nil {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired download token")
	}
	return s.store.Path(relPath), nil
}

func (s *ExportService) handle(ctx context.Context, job jobs.Job) error {
	record, err := s.repo.GetByID(ctx, job.ID)
	if err != nil {
		return fmt.Errorf("load export job %s: %w", job.ID, err)
	}
	if record.Status == models.ExportStatusFinished {
		return nil
	}

	processing := models.ExportStatusProcessing
	if err := s.repo.Update(ctx, record.ID, repository.UpdateExportJobParams{Status: &processing}); err != nil {
		return fmt.Errorf("mark export processing: %w", err)
	}

	data, renderErr := s.render(ctx, record)
	now := time.Now().UTC()
	if renderErr != nil {
		failed := models.ExportStatusFailed
		msg := renderErr.Error()
		if err := s.repo.Update(ctx, record.ID, repository.UpdateExportJobParams{Status: &failed, ErrorMessage: &msg, FinishedAt: &now}); err != nil {
			s.logger.Error("failed to mark export failed", zap.String("job_id", record.ID), zap.Error(err))
		}
		return renderErr
	}

	relPath := fmt.Sprintf("%s/%s.%s", record.Type, record.ID, record.Params.Format)
	if _, err := s.store.Save(relPath, data); err != nil {
		return fmt.Errorf("store export: %w", err)
	}
	token, _, err := s.signer.Generate(record.ID, relPath)
	if err != nil {
		return fmt.Errorf("sign export url: %w", err)
	}

	finished := models.ExportStatusFinished
	url := "/reports/download?token=" + token
	if err := s.repo.Update(ctx, record.ID, repository.UpdateExportJobParams{Status: &finished, ResultURL: &url, FinishedAt: &now}); err != nil {
		return fmt.Errorf("mark export finished: %w", err)
	}
	s.logger.Info("export finished", zap.String("job_id", record.ID), zap.String("type", string(record.Type)))
	return nil
}

func (s *ExportService) render(ctx context.Context, job *models.ExportJob) ([]byte, error) {
	var dataset export.Dataset
	switch job.Type {
	case models.ExportTypeCandidates:
		candidates, _, err := s.candidates.List(ctx, models.CandidateFilter{ProgramID: job.Params.ProgramID, PageSize: 100})
		if err != nil {
			return nil, fmt.Errorf("list candidates for export: %w", err)
		}
		dataset = candidateDataset(candidates)
	case models.ExportTypePipeline:
		views, err := s.pipeline.BuildTable(ctx, models.CandidateFilter{ProgramID: job.Params.ProgramID, ActiveOnly: true})
		if err != nil {
			return nil, fmt.Errorf("build pipeline for export: %w", err)
		}
		dataset = pipelineDataset(views)
	default:
		return nil, fmt.Errorf("unknown export type %q", job.Type)
	}

	if job.Params.Format == models.ExportFormatPDF {
		return s.pdf.Render(dataset, fmt.Sprintf("%s export", job.Type))
	}
	return s.csv.Render(dataset)
}

func candidateDataset(candidates []models.CandidateDetail) export.Dataset {
	dataset := export.Dataset{Headers: []string{"Name", "Email", "Phone", "Program", "Location", "MSP Code", "Status"}}
	for _, c := range candidates {
		row := map[string]string{
			"Name":   fullName(c.FirstName, c.LastName),
			"Email":  c.Email,
			"Phone":  c.Phone,
			"Status": string(c.Status),
		}
		if c.ProgramName != nil {
			row["Program"] = *c.ProgramName
		}
		if c.LocationName != nil {
			row["Location"] = *c.LocationName
		}
		if c.MSPCode != nil {
			row["MSP Code"] = *c.MSPCode
		}
		dataset.Rows = append(dataset.Rows, row)
	}
	return dataset
}

func pipelineDataset(views []models.PipelineCandidateView) export.Dataset {
	headers := []string{"Candidate", "Program"}
	for order := 1; order <= models.MaxTrackedStageOrder; order++ {
		headers = append(headers, fmt.Sprintf("Stage %d", order))
	}
	headers = append(headers, "Final")
	dataset := export.Dataset{Headers: headers}

	for _, view := range views {
		row := map[string]string{"Candidate": view.FullName, "Program": view.ProgramName}
		for _, stage := range view.Stages {
			label := stage.StageName
			if stage.CompletedOn != nil {
				label += " (" + stage.CompletedOn.Format("2006-01-02") + ")"
			}
			row[fmt.Sprintf("Stage %d", stage.Slot)] = label
		}
		if view.Final != nil {
			row["Final"] = string(view.Final.Status)
		}
		dataset.Rows = append(dataset.Rows, row)
	}
	return dataset
}

// ExportStatusView adapts a job row into the API response shape.
func ExportStatusView(job *models.ExportJob) dto.ExportJobView {
	view := dto.ExportJobView{
		ID:        job.ID,
		Type:      string(job.Type),
		Format:    string(job.Params.Format),
		Status:    string(job.Status),
		CreatedAt: job.CreatedAt,
	}
	if job.ResultURL != nil {
		view.ResultURL = *job.ResultURL
	}
	if job.ErrorMessage != nil {
		view.Error = *job.ErrorMessage
	}
	if job.FinishedAt != nil {
		view.FinishedAt = job.FinishedAt
	}
	return view
}
