package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-admissions-api/internal/models"
	"github.com/noah-isme/uni-admissions-api/internal/repository"
	"github.com/noah-isme/uni-admissions-api/internal/service"
	appErrors "github.com/noah-isme/uni-admissions-api/pkg/errors"
	"github.com/noah-isme/uni-admissions-api/pkg/mailer"
	"github.com/noah-isme/uni-admissions-api/pkg/response"
)

type stubClaimer struct {
	result *repository.ClaimResult
	err    error
}

func (s *stubClaimer) Claim(ctx context.Context, params repository.ClaimParams) (*repository.ClaimResult, error) {
	return s.result, s.err
}

type stubLetters struct{}

func (s *stubLetters) GenerateForApplication(ctx context.Context, app models.Application, actor service.ClientMeta) (*models.OfferLetter, error) {
	return &models.OfferLetter{FilePath: "/letters/" + app.Reference + ".pdf"}, nil
}

func (s *stubLetters) LatestPath(ctx context.Context, reference string) string {
	return "/letters/" + reference + ".pdf"
}

type stubMailer struct{}

func (s *stubMailer) Send(msg mailer.Message) error { return nil }

func allocationRouter(claimer *stubClaimer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewAllocationService(claimer, &stubLetters{}, &stubMailer{}, nil, nil, nil)
	h := NewAllocationHandler(svc, nil)
	r := gin.New()
	r.POST("/applications/:reference/assign-number", h.Assign)
	return r
}

func TestAllocationHandlerAssign(t *testing.T) {
	email := "jane@example.com"
	number := "U261000"
	claimer := &stubClaimer{result: &repository.ClaimResult{
		Application: models.Application{
			ID:            "app-1",
			Reference:     "APP-2026-A",
			FullName:      "Jane Doe",
			Email:         &email,
			ProgrammeCode: "CS101",
			Status:        models.ApplicationStatusAccepted,
			StudentNumber: &number,
		},
		StudentNumber: number,
		RangeID:       "range-1",
	}}
	r := allocationRouter(claimer)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/applications/APP-2026-A/assign-number", strings.NewReader(`{"accepted_programme":""}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	payload, err := json.Marshal(envelope.Data)
	require.NoError(t, err)

	var result service.AssignResult
	require.NoError(t, json.Unmarshal(payload, &result))
	assert.Equal(t, "U261000", result.StudentNumber)
	assert.True(t, result.LetterGenerated)
	assert.True(t, result.EmailSent)
}

func TestAllocationHandlerAssignExhausted(t *testing.T) {
	r := allocationRouter(&stubClaimer{err: appErrors.ErrRangeExhausted})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/applications/APP-2026-A/assign-number", nil)
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAllocationHandlerAssignNoActiveRange(t *testing.T) {
	r := allocationRouter(&stubClaimer{err: appErrors.ErrNoActiveRange})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/applications/APP-2026-A/assign-number", nil)
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
}

func TestAllocationHandlerAssignUnknownApplication(t *testing.T) {
	r := allocationRouter(&stubClaimer{err: appErrors.Clone(appErrors.ErrNotFound, "application not found")})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/applications/APP-2026-X/assign-number", nil)
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
