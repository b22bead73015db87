package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-recruit-api/internal/models"
	"github.com/noah-isme/sma-recruit-api/internal/service"
	appErrors "github.com/noah-isme/sma-recruit-api/pkg/errors"
	"github.com/noah-isme/sma-recruit-api/pkg/response"
)

// GrantHandler exposes admin management of per-section grants.
type GrantHandler struct {
	service *service.AccessService
}

// NewGrantHandler creates a new handler.
func NewGrantHandler(svc *service.AccessService) *GrantHandler {
	return &GrantHandler{service: svc}
}

// List godoc
// @Summary List a user's section grants
// @Tags Grants
// @Produce json
// @Param userId query string true "User id"
// @Success 200 {object} response.Envelope
// @Router /recruitment/grants [get]
func (h *GrantHandler) List(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "userId query parameter is required"))
		return
	}
	grants, err := h.service.ListGrants(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grants, nil)
}

// Upsert godoc
// @Summary Assign or update a section grant
// @Tags Grants
// @Accept json
// @Produce json
// @Param payload body service.UpsertGrantRequest true "Grant payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /recruitment/grants [post]
func (h *GrantHandler) Upsert(c *gin.Context) {
	var req service.UpsertGrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid grant payload"))
		return
	}
	grant, err := h.service.UpsertGrant(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grant, nil)
}

// Revoke godoc
// @Summary Revoke a section grant
// @Tags Grants
// @Produce json
// @Param userId query string true "User id"
// @Param section query string true "Section name"
// @Success 204 {object} response.Envelope
// @Router /recruitment/grants [delete]
func (h *GrantHandler) Revoke(c *gin.Context) {
	userID := c.Query("userId")
	section := models.Section(c.Query("section"))
	if userID == "" || section == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "userId and section query parameters are required"))
		return
	}
	if err := h.service.RevokeGrant(c.Request.Context(), userID, section); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
