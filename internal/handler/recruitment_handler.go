package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-recruit-api/internal/middleware"
	"github.com/noah-isme/sma-recruit-api/internal/models"
	"github.com/noah-isme/sma-recruit-api/internal/service"
	appErrors "github.com/noah-isme/sma-recruit-api/pkg/errors"
	"github.com/noah-isme/sma-recruit-api/pkg/response"
)

// PipelineSubmitRequest wraps the two pipeline write payloads; exactly one
// of Stage or Final must be present.
type PipelineSubmitRequest struct {
	Stage *service.SubmitStageRequest `json:"stage,omitempty"`
	Final *service.SubmitFinalRequest `json:"final,omitempty"`
}

// BenchWriteRequest wraps the two bench write payloads: a push batch when
// BenchIDs is present, otherwise a new bench entry.
type BenchWriteRequest struct {
	service.CreateBenchRequest
	Push *service.PushBenchRequest `json:"push,omitempty"`
}

// RecruitmentHandler multiplexes the section-based recruitment API. The
// section query parameter picks the entity; the HTTP method picks the
// operation. Access control happens in the SectionAccess middleware before
// any of these run.
type RecruitmentHandler struct {
	meta          *service.MetaService
	candidates    *service.CandidateService
	pipeline      *service.PipelineService
	communication *service.CommunicationService
	bench         *service.BenchService
	msp           *service.MSPService
	dashboard     *service.DashboardService
}

// NewRecruitmentHandler wires the recruitment services into the handler.
func NewRecruitmentHandler(meta *service.MetaService, candidates *service.CandidateService, pipeline *service.PipelineService, communication *service.CommunicationService, bench *service.BenchService, msp *service.MSPService, dashboard *service.DashboardService) *RecruitmentHandler {
	return &RecruitmentHandler{
		meta:          meta,
		candidates:    candidates,
		pipeline:      pipeline,
		communication: communication,
		bench:         bench,
		msp:           msp,
		dashboard:     dashboard,
	}
}

func sectionFromContext(c *gin.Context) models.Section {
	if value, exists := c.Get(middleware.ContextSectionKey); exists {
		if section, ok := value.(models.Section); ok {
			return section
		}
	}
	return models.Section(c.Query("section"))
}

// Get godoc
// @Summary Read a recruitment section
// @Description Lists the entity selected by the section query parameter
// @Tags Recruitment
// @Produce json
// @Param section query string true "Section name"
// @Param activeOnly query bool false "Restrict metadata to active rows"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /recruitment [get]
func (h *RecruitmentHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	activeOnly := c.Query("activeOnly") == "true"

	switch sectionFromContext(c) {
	case models.SectionMetaPrograms:
		programs, err := h.meta.ListPrograms(ctx, activeOnly)
		respond(c, programs, err)
	case models.SectionMetaStages:
		stages, err := h.meta.ListStages(ctx, activeOnly)
		respond(c, stages, err)
	case models.SectionMetaCountryCodes:
		codes, err := h.meta.ListCountryCodes(ctx, activeOnly)
		respond(c, codes, err)
	case models.SectionMetaLocations:
		locations, err := h.meta.ListLocations(ctx, activeOnly)
		respond(c, locations, err)
	case models.SectionCandidates:
		h.listCandidates(c)
	case models.SectionPipeline:
		views, err := h.pipeline.BuildTable(ctx, models.CandidateFilter{ActiveOnly: true, PageSize: 100})
		respond(c, views, err)
	case models.SectionCommunicationLog:
		logs, err := h.communication.List(ctx, c.Query("candidateId"))
		respond(c, logs, err)
	case models.SectionProgramRequirements:
		requirements, err := h.meta.ListRequirements(ctx, c.Query("programId"))
		respond(c, requirements, err)
	case models.SectionBench:
		if benchID := c.Query("benchId"); benchID != "" {
			pushes, err := h.bench.Pushes(ctx, benchID)
			respond(c, pushes, err)
			return
		}
		entries, err := h.bench.List(ctx)
		respond(c, entries, err)
	case models.SectionVacantMSPCodes:
		codes, err := h.msp.ListVacant(ctx, c.Query("programCode"))
		respond(c, codes, err)
	case models.SectionDashboard:
		snapshot, hit, err := h.dashboard.SnapshotWithSource(ctx)
		if err != nil {
			response.Error(c, err)
			return
		}
		middleware.SetCacheHit(c, hit)
		response.JSON(c, http.StatusOK, snapshot, nil, middleware.ExtractMeta(c))
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown section"))
	}
}

// Post godoc
// @Summary Create in a recruitment section
// @Description Creates the entity selected by the section query parameter
// @Tags Recruitment
// @Accept json
// @Produce json
// @Param section query string true "Section name"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /recruitment [post]
func (h *RecruitmentHandler) Post(c *gin.Context) {
	ctx := c.Request.Context()

	switch sectionFromContext(c) {
	case models.SectionMetaPrograms:
		var req service.ProgramRequest
		if !bind(c, &req) {
			return
		}
		program, err := h.meta.CreateProgram(ctx, req)
		h.created(c, program, err)
	case models.SectionMetaStages:
		var req service.StageMetaRequest
		if !bind(c, &req) {
			return
		}
		stage, err := h.meta.CreateStage(ctx, req)
		h.created(c, stage, err)
	case models.SectionMetaCountryCodes:
		var req service.CountryCodeRequest
		if !bind(c, &req) {
			return
		}
		code, err := h.meta.CreateCountryCode(ctx, req)
		h.created(c, code, err)
	case models.SectionMetaLocations:
		var req service.LocationRequest
		if !bind(c, &req) {
			return
		}
		location, err := h.meta.CreateLocation(ctx, req)
		h.created(c, location, err)
	case models.SectionCandidates:
		var req service.CreateCandidateRequest
		if !bind(c, &req) {
			return
		}
		candidate, err := h.candidates.Create(ctx, req)
		h.created(c, candidate, err)
	case models.SectionPipeline:
		h.submitPipeline(c)
	case models.SectionCommunicationLog:
		var req service.CreateCommunicationRequest
		if !bind(c, &req) {
			return
		}
		log, err := h.communication.Create(ctx, currentUserID(c), req)
		h.created(c, log, err)
	case models.SectionProgramRequirements:
		var req service.RequirementRequest
		if !bind(c, &req) {
			return
		}
		requirement, err := h.meta.CreateRequirement(ctx, req)
		h.created(c, requirement, err)
	case models.SectionBench:
		h.benchWrite(c)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "section does not accept writes"))
	}
}

// Put godoc
// @Summary Update in a recruitment section
// @Description Updates the entity row identified by the id query parameter
// @Tags Recruitment
// @Accept json
// @Produce json
// @Param section query string true "Section name"
// @Param id query string true "Row id"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /recruitment [put]
func (h *RecruitmentHandler) Put(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Query("id")
	if id == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "id query parameter is required"))
		return
	}

	switch sectionFromContext(c) {
	case models.SectionMetaPrograms:
		var req service.ProgramRequest
		if !bind(c, &req) {
			return
		}
		program, err := h.meta.UpdateProgram(ctx, id, req)
		h.respondWrite(c, program, err)
	case models.SectionMetaStages:
		var req service.StageMetaRequest
		if !bind(c, &req) {
			return
		}
		stage, err := h.meta.UpdateStage(ctx, id, req)
		h.respondWrite(c, stage, err)
	case models.SectionMetaCountryCodes:
		var req service.CountryCodeRequest
		if !bind(c, &req) {
			return
		}
		code, err := h.meta.UpdateCountryCode(ctx, id, req)
		h.respondWrite(c, code, err)
	case models.SectionMetaLocations:
		var req service.LocationRequest
		if !bind(c, &req) {
			return
		}
		location, err := h.meta.UpdateLocation(ctx, id, req)
		h.respondWrite(c, location, err)
	case models.SectionCandidates:
		var req service.UpdateCandidateRequest
		if !bind(c, &req) {
			return
		}
		candidate, err := h.candidates.Update(ctx, id, req)
		h.respondWrite(c, candidate, err)
	case models.SectionProgramRequirements:
		var req service.RequirementRequest
		if !bind(c, &req) {
			return
		}
		requirement, err := h.meta.UpdateRequirement(ctx, id, req)
		h.respondWrite(c, requirement, err)
	case models.SectionBench:
		var req service.CreateBenchRequest
		if !bind(c, &req) {
			return
		}
		entry, err := h.bench.Update(ctx, id, req)
		h.respondWrite(c, entry, err)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "section does not accept updates"))
	}
}

// Delete godoc
// @Summary Delete in a recruitment section
// @Description Deactivates metadata rows, hard-deletes transactional rows
// @Tags Recruitment
// @Produce json
// @Param section query string true "Section name"
// @Param id query string true "Row id"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /recruitment [delete]
func (h *RecruitmentHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Query("id")
	if id == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "id query parameter is required"))
		return
	}

	var err error
	switch sectionFromContext(c) {
	case models.SectionMetaPrograms:
		err = h.meta.DeactivateProgram(ctx, id)
	case models.SectionMetaStages:
		err = h.meta.DeactivateStage(ctx, id)
	case models.SectionMetaCountryCodes:
		err = h.meta.DeactivateCountryCode(ctx, id)
	case models.SectionMetaLocations:
		err = h.meta.DeactivateLocation(ctx, id)
	case models.SectionCandidates:
		err = h.candidates.Delete(ctx, id)
	case models.SectionCommunicationLog:
		err = h.communication.Delete(ctx, id)
	case models.SectionProgramRequirements:
		err = h.meta.DeleteRequirement(ctx, id)
	case models.SectionBench:
		err = h.bench.Delete(ctx, id)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "section does not accept deletes"))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	h.dashboard.Invalidate(ctx)
	response.NoContent(c)
}

func (h *RecruitmentHandler) listCandidates(c *gin.Context) {
	filter := models.CandidateFilter{
		Search:     c.Query("search"),
		ProgramID:  c.Query("programId"),
		ActiveOnly: c.Query("activeOnly") == "true",
	}
	if raw := c.Query("status"); raw != "" {
		status := models.CandidateStatus(raw)
		if !models.ValidCandidateStatus(status) {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown candidate status"))
			return
		}
		filter.Status = &status
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	candidates, pagination, err := h.candidates.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidates, pagination)
}

func (h *RecruitmentHandler) submitPipeline(c *gin.Context) {
	var req PipelineSubmitRequest
	if !bind(c, &req) {
		return
	}
	ctx := c.Request.Context()

	switch {
	case req.Stage != nil && req.Final == nil:
		result, err := h.pipeline.SubmitStage(ctx, *req.Stage)
		h.respondWrite(c, result, err)
	case req.Final != nil && req.Stage == nil:
		final, err := h.pipeline.SubmitFinal(ctx, *req.Final)
		h.respondWrite(c, final, err)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "exactly one of stage or final must be provided"))
	}
}

func (h *RecruitmentHandler) benchWrite(c *gin.Context) {
	var req BenchWriteRequest
	if !bind(c, &req) {
		return
	}
	ctx := c.Request.Context()

	if req.Push != nil {
		result, err := h.bench.Push(ctx, currentUserID(c), *req.Push)
		h.respondWrite(c, result, err)
		return
	}
	entry, err := h.bench.Create(ctx, req.CreateBenchRequest)
	h.created(c, entry, err)
}

func (h *RecruitmentHandler) created(c *gin.Context, data interface{}, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	h.dashboard.Invalidate(c.Request.Context())
	response.Created(c, data)
}

func (h *RecruitmentHandler) respondWrite(c *gin.Context, data interface{}, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	h.dashboard.Invalidate(c.Request.Context())
	response.JSON(c, http.StatusOK, data, nil)
}

func respond(c *gin.Context, data interface{}, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, data, nil)
}

func bind(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return false
	}
	return true
}

func currentUserID(c *gin.Context) string {
	if claims := claimsFromContext(c); claims != nil {
		return claims.UserID
	}
	return ""
}
