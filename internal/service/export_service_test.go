package service

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-recruit-api/internal/models"
	"github.com/noah-isme/sma-recruit-api/internal/repository"
	"github.com/noah-isme/sma-recruit-api/pkg/jobs"
	"github.com/noah-isme/sma-recruit-api/pkg/storage"
)

type mockExportRepo struct {
	mu      sync.Mutex
	jobs    map[string]*models.ExportJob
	updates int
	queued  []models.ExportJob
	nextID  int
}

func newMockExportRepo() *mockExportRepo {
	return &mockExportRepo{jobs: map[string]*models.ExportJob{}}
}

func (m *mockExportRepo) Create(ctx context.Context, job *models.ExportJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	job.ID = fmt.Sprintf("job-%d", m.nextID)
	job.CreatedAt = time.Now().UTC()
	copied := *job
	m.jobs[job.ID] = &copied
	return nil
}

func (m *mockExportRepo) GetByID(ctx context.Context, id string) (*models.ExportJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *job
	return &copied, nil
}

func (m *mockExportRepo) Update(ctx context.Context, id string, params repository.UpdateExportJobParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++
	job, ok := m.jobs[id]
	if !ok {
		return sql.ErrNoRows
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.ResultURL != nil {
		job.ResultURL = params.ResultURL
	}
	if params.ErrorMessage != nil {
		job.ErrorMessage = params.ErrorMessage
	}
	if params.FinishedAt != nil {
		job.FinishedAt = params.FinishedAt
	}
	return nil
}

func (m *mockExportRepo) ListQueued(ctx context.Context, limit int) ([]models.ExportJob, error) {
	return m.queued, nil
}

func (m *mockExportRepo) snapshot(id string) models.ExportJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.jobs[id]
}

func (m *mockExportRepo) updateCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updates
}

func newExportServiceForTest(t *testing.T, repo *mockExportRepo, candidates exportCandidateLister, pipeline exportPipelineBuilder) *ExportService {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	return NewExportService(repo, candidates, pipeline, store, signer, 1, 0, nil)
}

func createQueuedJob(t *testing.T, repo *mockExportRepo, exportType models.ExportType, format models.ExportFormat) *models.ExportJob {
	t.Helper()
	job := &models.ExportJob{
		Type:      exportType,
		Params:    models.ExportJobParams{Format: format},
		Status:    models.ExportStatusQueued,
		CreatedBy: "user-1",
	}
	require.NoError(t, repo.Create(context.Background(), job))
	return job
}

func TestEnqueueDefaultsFormatToCSV(t *testing.T) {
	repo := newMockExportRepo()
	svc := newExportServiceForTest(t, repo, &mockCandidateLister{}, nil)
	svc.Start(context.Background())
	defer svc.Stop()

	job, err := svc.Enqueue(context.Background(), "user-1", models.ExportTypeCandidates, models.ExportJobParams{})
	require.NoError(t, err)
	assert.Equal(t, models.ExportFormatCSV, job.Params.Format)
	assert.Equal(t, models.ExportStatusQueued, job.Status)
	assert.Equal(t, "user-1", job.CreatedBy)
}

func TestEnqueueRejectsUnknownType(t *testing.T) {
	svc := newExportServiceForTest(t, newMockExportRepo(), &mockCandidateLister{}, nil)

	_, err := svc.Enqueue(context.Background(), "user-1", models.ExportType("payroll"), models.ExportJobParams{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown export type")
}

func TestEnqueueRejectsUnknownFormat(t *testing.T) {
	svc := newExportServiceForTest(t, newMockExportRepo(), &mockCandidateLister{}, nil)

	_, err := svc.Enqueue(context.Background(), "user-1", models.ExportTypeCandidates, models.ExportJobParams{Format: "xlsx"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown export format")
}

func TestHandleRendersCandidateCSV(t *testing.T) {
	last := "Rao"
	program := "STEM Fellowship"
	repo := newMockExportRepo()
	lister := &mockCandidateLister{candidates: []models.CandidateDetail{
		{
			Candidate:   models.Candidate{FirstName: "Asha", LastName: &last, Email: "asha@example.com", Phone: "+919876543210", Status: models.CandidateStatusActive},
			ProgramName: &program,
		},
	}}
	svc := newExportServiceForTest(t, repo, lister, nil)
	job := createQueuedJob(t, repo, models.ExportTypeCandidates, models.ExportFormatCSV)

	require.NoError(t, svc.handle(context.Background(), jobs.Job{ID: job.ID, Type: string(job.Type)}))

	stored := repo.snapshot(job.ID)
	assert.Equal(t, models.ExportStatusFinished, stored.Status)
	require.NotNil(t, stored.ResultURL)
	assert.True(t, strings.HasPrefix(*stored.ResultURL, "/reports/download?token="))
	require.NotNil(t, stored.FinishedAt)

	// The signed token resolves to the rendered file on disk.
	token := strings.TrimPrefix(*stored.ResultURL, "/reports/download?token=")
	path, err := svc.OpenDownload(token)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "Asha Rao")
	assert.Contains(t, content, "STEM Fellowship")
}

func TestHandleMarksFailureOnRenderError(t *testing.T) {
	repo := newMockExportRepo()
	lister := &mockCandidateLister{err: assert.AnError}
	svc := newExportServiceForTest(t, repo, lister, nil)
	job := createQueuedJob(t, repo, models.ExportTypeCandidates, models.ExportFormatCSV)

	require.Error(t, svc.handle(context.Background(), jobs.Job{ID: job.ID, Type: string(job.Type)}))

	stored := repo.snapshot(job.ID)
	assert.Equal(t, models.ExportStatusFailed, stored.Status)
	require.NotNil(t, stored.ErrorMessage)
}

func TestHandleSkipsFinishedJobs(t *testing.T) {
	repo := newMockExportRepo()
	svc := newExportServiceForTest(t, repo, &mockCandidateLister{}, nil)
	job := createQueuedJob(t, repo, models.ExportTypeCandidates, models.ExportFormatCSV)

	finished := models.ExportStatusFinished
	require.NoError(t, repo.Update(context.Background(), job.ID, repository.UpdateExportJobParams{Status: &finished}))
	before := repo.updateCount()

	require.NoError(t, svc.handle(context.Background(), jobs.Job{ID: job.ID, Type: string(job.Type)}))
	assert.Equal(t, before, repo.updateCount())
}

func TestOpenDownloadRejectsBadToken(t *testing.T) {
	svc := newExportServiceForTest(t, newMockExportRepo(), &mockCandidateLister{}, nil)

	_, err := svc.OpenDownload("not-a-token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid or expired download token")
}

func TestExportStatusView(t *testing.T) {
	url := "/reports/download?token=abc"
	now := time.Now().UTC()
	view := ExportStatusView(&models.ExportJob{
		ID:         "job-1",
		Type:       models.ExportTypePipeline,
		Params:     models.ExportJobParams{Format: models.ExportFormatPDF},
		Status:     models.ExportStatusFinished,
		ResultURL:  &url,
		FinishedAt: &now,
	})
	assert.Equal(t, "job-1", view.ID)
	assert.Equal(t, "pipeline", view.Type)
	assert.Equal(t, "pdf", view.Format)
	assert.Equal(t, url, view.ResultURL)
	require.NotNil(t, view.FinishedAt)
}
