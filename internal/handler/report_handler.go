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

// ReportHandler wires the asynchronous export endpoints.
type ReportHandler struct {
	service *service.ExportService
}

// NewReportHandler creates a new handler.
func NewReportHandler(svc *service.ExportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// Create godoc
// @Summary Queue an export
// @Description Queues a candidates or pipeline export in CSV or PDF format
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body dto.CreateExportRequest true "Export request"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /reports/exports [post]
func (h *ReportHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export payload"))
		return
	}

	job, err := h.service.Enqueue(c.Request.Context(), claims.UserID, models.ExportType(req.Type), models.ExportJobParams{
		ProgramID: req.ProgramID,
		Format:    models.ExportFormat(req.Format),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	view := service.ExportStatusView(job)
	response.JSON(c, http.StatusAccepted, view, nil)
}

// Get godoc
// @Summary Get export status
// @Description Returns the job status and, when finished, the signed download URL
// @Tags Reports
// @Produce json
// @Param id path string true "Job id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/exports/{id} [get]
func (h *ReportHandler) Get(c *gin.Context) {
	job, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	view := service.ExportStatusView(job)
	response.JSON(c, http.StatusOK, view, nil)
}

// Download godoc
// @Summary Download an export
// @Description Streams the export file referenced by a signed token
// @Tags Reports
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Router /reports/download [get]
func (h *ReportHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token query parameter is required"))
		return
	}
	path, err := h.service.OpenDownload(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.File(path)
}
