package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-admissions-api/internal/models"
	"github.com/noah-isme/uni-admissions-api/internal/service"
	appErrors "github.com/noah-isme/uni-admissions-api/pkg/errors"
	"github.com/noah-isme/uni-admissions-api/pkg/response"
)

// ApplicationHandler exposes the admission application endpoints.
type ApplicationHandler struct {
	applications *service.ApplicationService
	dashboard    *service.DashboardService
}

// NewApplicationHandler constructs ApplicationHandler.
func NewApplicationHandler(applications *service.ApplicationService, dashboard *service.DashboardService) *ApplicationHandler {
	return &ApplicationHandler{applications: applications, dashboard: dashboard}
}

// Create godoc
// @Summary Start a new admission application
// @Tags Applications
// @Accept json
// @Produce json
// @Param payload body service.CreateApplicationRequest true "Application payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /applications [post]
func (h *ApplicationHandler) Create(c *gin.Context) {
	var req service.CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	app, err := h.applications.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.dashboard != nil {
		h.dashboard.Invalidate(c.Request.Context())
	}
	response.Created(c, app)
}

// Get godoc
// @Summary Get an application with its submission details
// @Tags Applications
// @Produce json
// @Param reference path string true "Application reference"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /applications/{reference} [get]
func (h *ApplicationHandler) Get(c *gin.Context) {
	detail, err := h.applications.Get(c.Request.Context(), c.Param("reference"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// List godoc
// @Summary List applications
// @Tags Applications
// @Produce json
// @Param status query string false "Filter by status"
// @Param programme query string false "Filter by programme code"
// @Param search query string false "Search by name or reference"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /applications [get]
func (h *ApplicationHandler) List(c *gin.Context) {
	var filter models.ApplicationFilter
	filter.Status = models.ApplicationStatus(strings.ToUpper(c.Query("status")))
	filter.ProgrammeCode = c.Query("programme")
	filter.Search = c.Query("search")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	apps, total, err := h.applications.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	response.JSON(c, http.StatusOK, apps, pagination)
}

// UpdatePersonal godoc
// @Summary Update the personal details step
// @Tags Applications
// @Accept json
// @Produce json
// @Param reference path string true "Application reference"
// @Param payload body service.UpdatePersonalRequest true "Personal details"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /applications/{reference}/personal [put]
func (h *ApplicationHandler) UpdatePersonal(c *gin.Context) {
	var req service.UpdatePersonalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	app, err := h.applications.UpdatePersonal(c.Request.Context(), c.Param("reference"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}

// AddEducation godoc
// @Summary Add an education record
// @Tags Applications
// @Accept json
// @Produce json
// @Param reference path string true "Application reference"
// @Param payload body service.AddEducationRequest true "Education record"
// @Success 201 {object} response.Envelope
// @Router /applications/{reference}/education [post]
func (h *ApplicationHandler) AddEducation(c *gin.Context) {
	var req service.AddEducationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.applications.AddEducation(c.Request.Context(), c.Param("reference"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// AddExperience godoc
// @Summary Add a work experience entry
// @Tags Applications
// @Accept json
// @Produce json
// @Param reference path string true "Application reference"
// @Param payload body service.AddExperienceRequest true "Work experience"
// @Success 201 {object} response.Envelope
// @Router /applications/{reference}/experience [post]
func (h *ApplicationHandler) AddExperience(c *gin.Context) {
	var req service.AddExperienceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	exp, err := h.applications.AddExperience(c.Request.Context(), c.Param("reference"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, exp)
}

// AddDocument godoc
// @Summary Register uploaded document metadata
// @Tags Applications
// @Accept json
// @Produce json
// @Param reference path string true "Application reference"
// @Param payload body service.AddDocumentRequest true "Document metadata"
// @Success 201 {object} response.Envelope
// @Router /applications/{reference}/documents [post]
func (h *ApplicationHandler) AddDocument(c *gin.Context) {
	var req service.AddDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	doc, err := h.applications.AddDocument(c.Request.Context(), c.Param("reference"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, doc)
}

// Reject godoc
// @Summary Reject a pending application
// @Tags Applications
// @Produce json
// @Param reference path string true "Application reference"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Security BearerAuth
// @Router /applications/{reference}/reject [post]
func (h *ApplicationHandler) Reject(c *gin.Context) {
	app, err := h.applications.Reject(c.Request.Context(), c.Param("reference"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.dashboard != nil {
		h.dashboard.Invalidate(c.Request.Context())
	}
	response.JSON(c, http.StatusOK, app, nil)
}
