package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-recruit-api/internal/dto"
	"github.com/noah-isme/sma-recruit-api/internal/models"
	"github.com/noah-isme/sma-recruit-api/internal/service"
	appErrors "github.com/noah-isme/sma-recruit-api/pkg/errors"
	"github.com/noah-isme/sma-recruit-api/pkg/response"
)

// DayCloseHandler wires the day-close workflow endpoints.
type DayCloseHandler struct {
	service *service.DayCloseService
}

// NewDayCloseHandler creates a new handler.
func NewDayCloseHandler(svc *service.DayCloseService) *DayCloseHandler {
	return &DayCloseHandler{service: svc}
}

// Submit godoc
// @Summary Submit a day close request
// @Description Closes the caller's day after the window, escalation and routine-log gates
// @Tags DayClose
// @Accept json
// @Produce json
// @Param payload body dto.SubmitDayCloseRequest true "Day close payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /dayClose/dayCloseRequest [post]
func (h *DayCloseHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.SubmitDayCloseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid day close payload"))
		return
	}

	user := &models.User{ID: claims.UserID, Role: claims.Role}
	record, err := h.service.Submit(c.Request.Context(), user, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// Status godoc
// @Summary Get day close status
// @Description Returns the caller's request state for the date plus form feature flags
// @Tags DayClose
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /dayClose/dayCloseStatus [get]
func (h *DayCloseHandler) Status(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	user := &models.User{ID: claims.UserID, Role: claims.Role}
	status, err := h.service.Status(c.Request.Context(), user, c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Pending godoc
// @Summary List pending day close requests
// @Description Returns pending requests for a date, for supervisor review
// @Tags DayClose
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /dayClose/pending [get]
func (h *DayCloseHandler) Pending(c *gin.Context) {
	requests, err := h.service.Pending(c.Request.Context(), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// Resolve godoc
// @Summary Resolve a pending day close request
// @Description Approves or rejects a pending request, recording counter-logs
// @Tags DayClose
// @Accept json
// @Produce json
// @Param id path string true "Request id"
// @Param payload body dto.ResolveDayCloseRequest true "Resolution payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /dayClose/requests/{id}/resolve [post]
func (h *DayCloseHandler) Resolve(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.ResolveDayCloseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid resolution payload"))
		return
	}

	record, err := h.service.Resolve(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}
