package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-recruit-api/internal/middleware"
	"github.com/noah-isme/sma-recruit-api/internal/models"
	"github.com/noah-isme/sma-recruit-api/internal/service"
	"github.com/noah-isme/sma-recruit-api/pkg/config"
)

type stubDayCloseRepo struct {
	existing *models.DayCloseRequest
	created  *models.DayCloseRequest
	byID     *models.DayCloseRequest
	resolved bool
	pending  []models.DayCloseRequest
}

func (s *stubDayCloseRepo) FindByUserDate(ctx context.Context, userID string, date time.Time) (*models.DayCloseRequest, error) {
	if s.existing == nil {
		return nil, sql.ErrNoRows
	}
	return s.existing, nil
}

func (s *stubDayCloseRepo) Create(ctx context.Context, request *models.DayCloseRequest) error {
	request.ID = "req-1"
	s.created = request
	return nil
}

func (s *stubDayCloseRepo) Resolve(ctx context.Context, id string, status models.DayCloseStatus, approverID string, routineLog, generalLog *string) (bool, error) {
	return s.resolved, nil
}

func (s *stubDayCloseRepo) FindByID(ctx context.Context, id string) (*models.DayCloseRequest, error) {
	if s.byID == nil {
		return nil, sql.ErrNoRows
	}
	return s.byID, nil
}

func (s *stubDayCloseRepo) ListPendingByDate(ctx context.Context, date time.Time) ([]models.DayCloseRequest, error) {
	return s.pending, nil
}

type stubEscalations struct {
	blocked bool
}

func (s *stubEscalations) IsBlocked(ctx context.Context, userID string) (bool, error) {
	return s.blocked, nil
}

// The window spans the whole day so submissions pass the window gate at any
// wall-clock time the test happens to run.
func newDayCloseTestHandler(repo *stubDayCloseRepo, escalations *stubEscalations) *DayCloseHandler {
	cfg := config.DayCloseConfig{
		ClosingWindowStart: "00:00",
		ClosingWindowEnd:   "23:59",
		DayCloseTime:       "23:59",
	}
	return NewDayCloseHandler(service.NewDayCloseService(repo, escalations, nil, nil, cfg))
}

func dayCloseContext(t *testing.T, method, target, body string, claims *models.JWTClaims) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c, w
}

func staffClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "staff-1", Role: models.RoleStaff}
}

func TestDayCloseSubmitRequiresClaims(t *testing.T) {
	handler := newDayCloseTestHandler(&stubDayCloseRepo{}, &stubEscalations{})

	c, w := dayCloseContext(t, http.MethodPost, "/dayClose/dayCloseRequest", "{}", nil)
	handler.Submit(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDayCloseSubmitCreatesPendingRequest(t *testing.T) {
	repo := &stubDayCloseRepo{}
	handler := newDayCloseTestHandler(repo, &stubEscalations{})

	c, w := dayCloseContext(t, http.MethodPost, "/dayClose/dayCloseRequest", `{"general_log":"all wrapped up"}`, staffClaims())
	handler.Submit(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, repo.created)
	assert.Equal(t, "staff-1", repo.created.UserID)
	assert.Equal(t, models.DayCloseStatusPending, repo.created.Status)
}

func TestDayCloseSubmitBlockedByEscalation(t *testing.T) {
	handler := newDayCloseTestHandler(&stubDayCloseRepo{}, &stubEscalations{blocked: true})

	c, w := dayCloseContext(t, http.MethodPost, "/dayClose/dayCloseRequest", "{}", staffClaims())
	handler.Submit(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "day close paused")
}

func TestDayCloseSubmitRejectsInvalidPayload(t *testing.T) {
	handler := newDayCloseTestHandler(&stubDayCloseRepo{}, &stubEscalations{})

	c, w := dayCloseContext(t, http.MethodPost, "/dayClose/dayCloseRequest", "{bad", staffClaims())
	handler.Submit(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid day close payload")
}

func TestDayCloseStatusReturnsFlags(t *testing.T) {
	handler := newDayCloseTestHandler(&stubDayCloseRepo{}, &stubEscalations{})

	c, w := dayCloseContext(t, http.MethodGet, "/dayClose/dayCloseStatus", "", staffClaims())
	handler.Status(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"within_window":true`)
	assert.Contains(t, w.Body.String(), `"status":"none"`)
}

func TestDayCloseResolveApproves(t *testing.T) {
	repo := &stubDayCloseRepo{
		resolved: true,
		byID: &models.DayCloseRequest{
			ID:     "req-1",
			UserID: "staff-1",
			Status: models.DayCloseStatusApproved,
		},
	}
	handler := newDayCloseTestHandler(repo, &stubEscalations{})

	c, w := dayCloseContext(t, http.MethodPost, "/dayClose/requests/req-1/resolve", `{"approve":true}`, &models.JWTClaims{UserID: "manager-1", Role: models.RoleTeamManager})
	c.Params = gin.Params{{Key: "id", Value: "req-1"}}
	handler.Resolve(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"approved"`)
}

func TestDayCloseResolveNonPendingConflicts(t *testing.T) {
	handler := newDayCloseTestHandler(&stubDayCloseRepo{resolved: false}, &stubEscalations{})

	c, w := dayCloseContext(t, http.MethodPost, "/dayClose/requests/req-1/resolve", `{"approve":false}`, &models.JWTClaims{UserID: "manager-1", Role: models.RoleTeamManager})
	c.Params = gin.Params{{Key: "id", Value: "req-1"}}
	handler.Resolve(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "not pending")
}
