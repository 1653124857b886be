package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-admissions-api/internal/service"
	appErrors "github.com/noah-isme/uni-admissions-api/pkg/errors"
	"github.com/noah-isme/uni-admissions-api/pkg/response"
)

// OfferLetterHandler exposes offer letter retrieval and verification.
type OfferLetterHandler struct {
	letters *service.OfferLetterService
}

// NewOfferLetterHandler constructs OfferLetterHandler.
func NewOfferLetterHandler(letters *service.OfferLetterService) *OfferLetterHandler {
	return &OfferLetterHandler{letters: letters}
}

// Download godoc
// @Summary Download the latest offer letter
// @Tags Offer Letters
// @Produce application/pdf
// @Param reference query string false "Application reference"
// @Param student_number query string false "Student number"
// @Success 200 {file} binary "PDF content"
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /offer-letters/download [get]
func (h *OfferLetterHandler) Download(c *gin.Context) {
	reference := c.Query("reference")
	studentNumber := c.Query("student_number")
	if reference == "" && studentNumber == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "reference or student_number is required"))
		return
	}

	letter, file, err := h.letters.DownloadLatest(c.Request.Context(), reference, studentNumber, clientMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat letter file"))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", letter.FileName))
	c.DataFromReader(http.StatusOK, info.Size(), "application/pdf", file, nil)
}

// Link godoc
// @Summary Issue a signed public download link for the latest offer letter
// @Tags Offer Letters
// @Produce json
// @Param reference query string true "Application reference"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /offer-letters/link [get]
func (h *OfferLetterHandler) Link(c *gin.Context) {
	reference := c.Query("reference")
	if reference == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "reference is required"))
		return
	}

	link, err := h.letters.SignedLink(c.Request.Context(), reference)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, link, nil)
}

// File godoc
// @Summary Download an offer letter with a signed token
// @Tags Offer Letters
// @Produce application/pdf
// @Param token query string true "Signed download token"
// @Success 200 {file} binary "PDF content"
// @Failure 401 {object} response.Envelope
// @Router /offer-letters/file [get]
func (h *OfferLetterHandler) File(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}

	letter, file, err := h.letters.DownloadByToken(c.Request.Context(), token, clientMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat letter file"))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", letter.FileName))
	c.DataFromReader(http.StatusOK, info.Size(), "application/pdf", file, nil)
}

// Verify godoc
// @Summary Verify an offer letter by its verification code
// @Description Public endpoint returning only what the letter itself already shows
// @Tags Offer Letters
// @Produce json
// @Param code path string true "Verification code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /offer-letters/verify/{code} [get]
func (h *OfferLetterHandler) Verify(c *gin.Context) {
	verification, err := h.letters.Verify(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, verification, nil)
}

// Regenerate godoc
// @Summary Regenerate the offer letter for an application
// @Description Renders a fresh letter with a new verification code and marks it latest
// @Tags Offer Letters
// @Produce json
// @Param reference path string true "Application reference"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Security BearerAuth
// @Router /applications/{reference}/offer-letter/regenerate [post]
func (h *OfferLetterHandler) Regenerate(c *gin.Context) {
	letter, err := h.letters.Regenerate(c.Request.Context(), c.Param("reference"), clientMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, letter, nil)
}

// Print godoc
// @Summary Record a print event for the latest offer letter
// @Tags Offer Letters
// @Produce json
// @Param reference path string true "Application reference"
// @Success 204 "No Content"
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /applications/{reference}/offer-letter/print [post]
func (h *OfferLetterHandler) Print(c *gin.Context) {
	if err := h.letters.LogPrint(c.Request.Context(), c.Param("reference"), clientMeta(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
