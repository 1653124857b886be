package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-admissions-api/internal/service"
	appErrors "github.com/noah-isme/uni-admissions-api/pkg/errors"
	"github.com/noah-isme/uni-admissions-api/pkg/response"
)

// RangeHandler exposes student number range administration.
type RangeHandler struct {
	ranges    *service.RangeService
	dashboard *service.DashboardService
}

// NewRangeHandler constructs RangeHandler.
func NewRangeHandler(ranges *service.RangeService, dashboard *service.DashboardService) *RangeHandler {
	return &RangeHandler{ranges: ranges, dashboard: dashboard}
}

// Create godoc
// @Summary Create and activate a student number range
// @Description Deactivates any currently active range and activates the new one
// @Tags Number Ranges
// @Accept json
// @Produce json
// @Param payload body service.CreateRangeRequest true "Range payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /number-ranges [post]
func (h *RangeHandler) Create(c *gin.Context) {
	var req service.CreateRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	var actorID *string
	if claims := claimsFromContext(c); claims != nil {
		actorID = &claims.UserID
	}

	rng, err := h.ranges.Create(c.Request.Context(), req, actorID)
	if err != nil {
		response.Error(c, err)
		return
	}

	if h.dashboard != nil {
		h.dashboard.Invalidate(c.Request.Context())
	}
	response.Created(c, rng)
}

// Active godoc
// @Summary Get the active student number range
// @Tags Number Ranges
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /number-ranges/active [get]
func (h *RangeHandler) Active(c *gin.Context) {
	rng, err := h.ranges.Active(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rng, nil)
}

// List godoc
// @Summary List all student number ranges
// @Tags Number Ranges
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /number-ranges [get]
func (h *RangeHandler) List(c *gin.Context) {
	ranges, err := h.ranges.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ranges, nil)
}
