package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-recruit-api/internal/middleware"
	"github.com/noah-isme/sma-recruit-api/internal/models"
	"github.com/noah-isme/sma-recruit-api/internal/service"
	"github.com/noah-isme/sma-recruit-api/pkg/response"
)

type stubCandidateRepo struct {
	candidates []models.CandidateDetail
	total      int
	detail     *models.CandidateDetail
	created    *models.Candidate
}

func (s *stubCandidateRepo) List(ctx context.Context, filter models.CandidateFilter) ([]models.CandidateDetail, int, error) {
	return s.candidates, s.total, nil
}

func (s *stubCandidateRepo) FindByID(ctx context.Context, id string) (*models.CandidateDetail, error) {
	if s.detail == nil {
		return nil, sql.ErrNoRows
	}
	return s.detail, nil
}

func (s *stubCandidateRepo) Create(ctx context.Context, candidate *models.Candidate) error {
	candidate.ID = "cand-new"
	s.created = candidate
	return nil
}

func (s *stubCandidateRepo) Update(ctx context.Context, candidate *models.Candidate) error {
	return nil
}

func (s *stubCandidateRepo) Delete(ctx context.Context, id string) error {
	return nil
}

type stubAssignmentValidator struct {
	err error
}

func (s *stubAssignmentValidator) ValidateAssignment(ctx context.Context, mspCodeID, programID, candidateID string) error {
	return s.err
}

func newRecruitmentTestHandler(repo *stubCandidateRepo) *RecruitmentHandler {
	candidates := service.NewCandidateService(repo, &stubAssignmentValidator{}, nil, nil)
	dashboard := service.NewDashboardService(nil, nil, service.NewCacheService(nil, nil, 0, nil, false), 0, nil)
	return NewRecruitmentHandler(nil, candidates, nil, nil, nil, nil, dashboard)
}

func recruitmentContext(t *testing.T, method, target, body string, section models.Section) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin", Role: models.RoleAdmin})
	if section != "" {
		c.Set(middleware.ContextSectionKey, section)
	}
	return c, w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

func TestRecruitmentGetUnknownSection(t *testing.T) {
	handler := newRecruitmentTestHandler(&stubCandidateRepo{})

	c, w := recruitmentContext(t, http.MethodGet, "/recruitment?section=payroll", "", "")
	handler.Get(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	envelope := decodeEnvelope(t, w)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "unknown section", envelope.Error.Message)
}

func TestRecruitmentGetCandidates(t *testing.T) {
	repo := &stubCandidateRepo{
		candidates: []models.CandidateDetail{
			{Candidate: models.Candidate{ID: "cand-1", FirstName: "Asha", Status: models.CandidateStatusActive}},
		},
		total: 1,
	}
	handler := newRecruitmentTestHandler(repo)

	c, w := recruitmentContext(t, http.MethodGet, "/recruitment?section=candidates", "", models.SectionCandidates)
	handler.Get(c)

	assert.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.Nil(t, envelope.Error)
	require.NotNil(t, envelope.Pagination)
	assert.Equal(t, 1, envelope.Pagination.TotalCount)
}

func TestRecruitmentGetCandidatesRejectsUnknownStatus(t *testing.T) {
	handler := newRecruitmentTestHandler(&stubCandidateRepo{})

	c, w := recruitmentContext(t, http.MethodGet, "/recruitment?section=candidates&status=Paused", "", models.SectionCandidates)
	handler.Get(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecruitmentPostCandidate(t *testing.T) {
	repo := &stubCandidateRepo{}
	handler := newRecruitmentTestHandler(repo)

	body := `{"first_name":"Asha","email":"asha@example.com","phone":"+919876543210","program_id":"6f1e9b7a-bbbb-4a51-9d2b-0de0c84f0010"}`
	c, w := recruitmentContext(t, http.MethodPost, "/recruitment?section=candidates", body, models.SectionCandidates)
	handler.Post(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, repo.created)
	assert.Equal(t, "Asha", repo.created.FirstName)
}

func TestRecruitmentPostInvalidJSON(t *testing.T) {
	handler := newRecruitmentTestHandler(&stubCandidateRepo{})

	c, w := recruitmentContext(t, http.MethodPost, "/recruitment?section=candidates", "{not json", models.SectionCandidates)
	handler.Post(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	envelope := decodeEnvelope(t, w)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "invalid payload", envelope.Error.Message)
}

func TestRecruitmentPutRequiresID(t *testing.T) {
	handler := newRecruitmentTestHandler(&stubCandidateRepo{})

	c, w := recruitmentContext(t, http.MethodPut, "/recruitment?section=candidates", "{}", models.SectionCandidates)
	handler.Put(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	envelope := decodeEnvelope(t, w)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "id query parameter is required", envelope.Error.Message)
}

func TestRecruitmentDeleteRequiresID(t *testing.T) {
	handler := newRecruitmentTestHandler(&stubCandidateRepo{})

	c, w := recruitmentContext(t, http.MethodDelete, "/recruitment?section=candidates", "", models.SectionCandidates)
	handler.Delete(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecruitmentDeleteCandidate(t *testing.T) {
	repo := &stubCandidateRepo{detail: &models.CandidateDetail{
		Candidate: models.Candidate{ID: "cand-1", FirstName: "Asha", Status: models.CandidateStatusActive},
	}}
	handler := newRecruitmentTestHandler(repo)

	c, w := recruitmentContext(t, http.MethodDelete, "/recruitment?section=candidates&id=cand-1", "", models.SectionCandidates)
	handler.Delete(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestPipelineSubmitRequiresExactlyOnePayload(t *testing.T) {
	handler := newRecruitmentTestHandler(&stubCandidateRepo{})

	// Neither stage nor final.
	c, w := recruitmentContext(t, http.MethodPost, "/recruitment?section=pipeline", "{}", models.SectionPipeline)
	handler.Post(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	envelope := decodeEnvelope(t, w)
	require.NotNil(t, envelope.Error)
	assert.Contains(t, envelope.Error.Message, "exactly one of stage or final")

	// Both at once.
	body := `{"stage":{"candidate_id":"x","slot":1},"final":{"candidate_id":"x","status":"SELECTED"}}`
	c, w = recruitmentContext(t, http.MethodPost, "/recruitment?section=pipeline", body, models.SectionPipeline)
	handler.Post(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
