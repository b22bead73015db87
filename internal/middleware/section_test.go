package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-recruit-api/internal/models"
	"github.com/noah-isme/sma-recruit-api/internal/service"
)

type stubGrantRepo struct {
	grant *models.SectionGrant
}

func (s *stubGrantRepo) FindForUserSection(ctx context.Context, userID string, section models.Section) (*models.SectionGrant, error) {
	if s.grant == nil {
		return nil, sql.ErrNoRows
	}
	return s.grant, nil
}

func (s *stubGrantRepo) ListForUser(ctx context.Context, userID string) ([]models.SectionGrant, error) {
	if s.grant == nil {
		return nil, nil
	}
	return []models.SectionGrant{*s.grant}, nil
}

func (s *stubGrantRepo) Upsert(ctx context.Context, grant *models.SectionGrant) error {
	return nil
}

func (s *stubGrantRepo) Delete(ctx context.Context, userID string, section models.Section) error {
	return nil
}

func sectionAccessContext(t *testing.T, method, target string, claims *models.JWTClaims) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, nil)
	if claims != nil {
		c.Set(ContextUserKey, claims)
	}
	return c, w
}

func TestSectionAccessRejectsUnknownSection(t *testing.T) {
	access := service.NewAccessService(&stubGrantRepo{}, nil, nil)
	handler := SectionAccess(access)

	c, w := sectionAccessContext(t, http.MethodGet, "/recruitment?section=payroll", &models.JWTClaims{UserID: "admin", Role: models.RoleAdmin})
	handler(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unknown section")
}

func TestSectionAccessRequiresClaims(t *testing.T) {
	access := service.NewAccessService(&stubGrantRepo{}, nil, nil)
	handler := SectionAccess(access)

	c, w := sectionAccessContext(t, http.MethodGet, "/recruitment?section=candidates", nil)
	handler(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSectionAccessAdminPassesWithoutGrant(t *testing.T) {
	access := service.NewAccessService(&stubGrantRepo{}, nil, nil)
	handler := SectionAccess(access)

	c, w := sectionAccessContext(t, http.MethodPost, "/recruitment?section=candidates", &models.JWTClaims{UserID: "admin", Role: models.RoleAdmin})
	handler(c)

	assert.False(t, c.IsAborted())
	assert.Equal(t, http.StatusOK, w.Code)
	value, exists := c.Get(ContextSectionKey)
	require.True(t, exists)
	assert.Equal(t, models.SectionCandidates, value)
}

func TestSectionAccessManagerReadGrantAllowsGet(t *testing.T) {
	repo := &stubGrantRepo{grant: &models.SectionGrant{
		UserID:  "mgr-1",
		Section: models.SectionCandidates,
		CanRead: true,
	}}
	access := service.NewAccessService(repo, nil, nil)
	handler := SectionAccess(access)

	c, _ := sectionAccessContext(t, http.MethodGet, "/recruitment?section=candidates", &models.JWTClaims{UserID: "mgr-1", Role: models.RoleTeamManager})
	handler(c)

	assert.False(t, c.IsAborted())
	value, exists := c.Get(ContextSectionKey)
	require.True(t, exists)
	assert.Equal(t, models.SectionCandidates, value)
}

func TestSectionAccessReadOnlyGrantBlocksWrites(t *testing.T) {
	repo := &stubGrantRepo{grant: &models.SectionGrant{
		UserID:  "mgr-1",
		Section: models.SectionCandidates,
		CanRead: true,
	}}
	access := service.NewAccessService(repo, nil, nil)
	handler := SectionAccess(access)

	c, w := sectionAccessContext(t, http.MethodPost, "/recruitment?section=candidates", &models.JWTClaims{UserID: "mgr-1", Role: models.RoleTeamManager})
	handler(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSectionAccessManagerWithoutGrant(t *testing.T) {
	access := service.NewAccessService(&stubGrantRepo{}, nil, nil)
	handler := SectionAccess(access)

	c, w := sectionAccessContext(t, http.MethodGet, "/recruitment?section=candidates", &models.JWTClaims{UserID: "mgr-1", Role: models.RoleTeamManager})
	handler(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
