package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-admissions-api/internal/models"
	"github.com/noah-isme/uni-admissions-api/internal/service"
	"github.com/noah-isme/uni-admissions-api/pkg/response"
)

// LedgerHandler exposes the assignment ledger.
type LedgerHandler struct {
	ledger *service.LedgerService
}

// NewLedgerHandler constructs LedgerHandler.
func NewLedgerHandler(ledger *service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

// List godoc
// @Summary List assignment ledger entries
// @Tags Assignment Ledger
// @Produce json
// @Param range_id query string false "Filter by range"
// @Param reference query string false "Filter by application reference"
// @Param issued_by query string false "Filter by issuing user"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /assignment-ledger [get]
func (h *LedgerHandler) List(c *gin.Context) {
	var filter models.LedgerFilter
	filter.RangeID = c.Query("range_id")
	filter.Reference = c.Query("reference")
	filter.IssuedBy = c.Query("issued_by")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	entries, total, err := h.ledger.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	response.JSON(c, http.StatusOK, entries, pagination)
}

// Export godoc
// @Summary Export the assignment ledger as CSV
// @Tags Assignment Ledger
// @Produce text/csv
// @Success 200 {string} string "CSV content"
// @Security BearerAuth
// @Router /assignment-ledger/export [get]
func (h *LedgerHandler) Export(c *gin.Context) {
	data, err := h.ledger.ExportCSV(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	fileName := fmt.Sprintf("assignment_ledger_%s.csv", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, "text/csv", data)
}
