package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-admissions-api/internal/service"
	appErrors "github.com/noah-isme/uni-admissions-api/pkg/errors"
	"github.com/noah-isme/uni-admissions-api/pkg/response"
)

// AllocationHandler exposes the student number assignment endpoint.
type AllocationHandler struct {
	allocations *service.AllocationService
	dashboard   *service.DashboardService
}

// NewAllocationHandler constructs AllocationHandler.
func NewAllocationHandler(allocations *service.AllocationService, dashboard *service.DashboardService) *AllocationHandler {
	return &AllocationHandler{allocations: allocations, dashboard: dashboard}
}

type assignNumberPayload struct {
	AcceptedProgramme string `json:"accepted_programme"`
}

// Assign godoc
// @Summary Assign a student number to an application
// @Description Accepts the application, issues the next number from the active range, and triggers offer letter generation and email notification
// @Tags Allocation
// @Accept json
// @Produce json
// @Param reference path string true "Application reference"
// @Param payload body assignNumberPayload false "Optional programme override"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Security BearerAuth
// @Router /applications/{reference}/assign-number [post]
func (h *AllocationHandler) Assign(c *gin.Context) {
	var payload assignNumberPayload
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
			return
		}
	}

	req := service.AssignRequest{
		Reference:         c.Param("reference"),
		AcceptedProgramme: payload.AcceptedProgramme,
		Meta:              clientMeta(c),
	}

	result, err := h.allocations.Assign(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	if !result.AlreadyAssigned && h.dashboard != nil {
		h.dashboard.Invalidate(c.Request.Context())
	}
	response.JSON(c, http.StatusOK, result, nil)
}
