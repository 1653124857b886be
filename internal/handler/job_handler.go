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

// JobHandler exposes the HR job board endpoints.
type JobHandler struct {
	jobs      *service.JobService
	dashboard *service.DashboardService
}

// NewJobHandler constructs JobHandler.
func NewJobHandler(jobs *service.JobService, dashboard *service.DashboardService) *JobHandler {
	return &JobHandler{jobs: jobs, dashboard: dashboard}
}

// CreatePosting godoc
// @Summary Open a job posting
// @Tags Jobs
// @Accept json
// @Produce json
// @Param payload body service.CreatePostingRequest true "Posting payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /jobs [post]
func (h *JobHandler) CreatePosting(c *gin.Context) {
	var req service.CreatePostingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	var actorID *string
	if claims := claimsFromContext(c); claims != nil {
		actorID = &claims.UserID
	}

	posting, err := h.jobs.CreatePosting(c.Request.Context(), req, actorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.dashboard != nil {
		h.dashboard.Invalidate(c.Request.Context())
	}
	response.Created(c, posting)
}

// GetPosting godoc
// @Summary Get a job posting
// @Tags Jobs
// @Produce json
// @Param id path string true "Posting ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /jobs/{id} [get]
func (h *JobHandler) GetPosting(c *gin.Context) {
	posting, err := h.jobs.GetPosting(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, posting, nil)
}

// ListPostings godoc
// @Summary List job postings
// @Tags Jobs
// @Produce json
// @Param status query string false "Filter by status"
// @Param department query string false "Filter by department"
// @Param search query string false "Search in title"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /jobs [get]
func (h *JobHandler) ListPostings(c *gin.Context) {
	var filter models.JobPostingFilter
	filter.Status = models.JobPostingStatus(strings.ToUpper(c.Query("status")))
	filter.Department = c.Query("department")
	filter.Search = c.Query("search")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	postings, total, err := h.jobs.ListPostings(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	response.JSON(c, http.StatusOK, postings, pagination)
}

// UpdatePosting godoc
// @Summary Update a job posting
// @Tags Jobs
// @Accept json
// @Produce json
// @Param id path string true "Posting ID"
// @Param payload body service.UpdatePostingRequest true "Posting payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /jobs/{id} [put]
func (h *JobHandler) UpdatePosting(c *gin.Context) {
	var req service.UpdatePostingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	posting, err := h.jobs.UpdatePosting(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.dashboard != nil {
		h.dashboard.Invalidate(c.Request.Context())
	}
	response.JSON(c, http.StatusOK, posting, nil)
}

// SubmitApplication godoc
// @Summary Apply to a job posting
// @Tags Jobs
// @Accept json
// @Produce json
// @Param id path string true "Posting ID"
// @Param payload body service.SubmitJobApplicationRequest true "Application payload"
// @Success 201 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /jobs/{id}/applications [post]
func (h *JobHandler) SubmitApplication(c *gin.Context) {
	var req service.SubmitJobApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	app, err := h.jobs.SubmitApplication(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, app)
}

// ListApplications godoc
// @Summary List applications for a posting
// @Tags Jobs
// @Produce json
// @Param id path string true "Posting ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /jobs/{id}/applications [get]
func (h *JobHandler) ListApplications(c *gin.Context) {
	apps, err := h.jobs.ListApplications(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, apps, nil)
}

// UpdateApplicationStatus godoc
// @Summary Update a job application's screening status
// @Tags Jobs
// @Accept json
// @Produce json
// @Param id path string true "Job application ID"
// @Param payload body service.UpdateJobApplicationStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /job-applications/{id}/status [put]
func (h *JobHandler) UpdateApplicationStatus(c *gin.Context) {
	var req service.UpdateJobApplicationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	app, err := h.jobs.UpdateApplicationStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}
