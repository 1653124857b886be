package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-admissions-api/internal/models"
	"github.com/noah-isme/uni-admissions-api/internal/service"
	"github.com/noah-isme/uni-admissions-api/pkg/config"
	"github.com/noah-isme/uni-admissions-api/pkg/letter"
	"github.com/noah-isme/uni-admissions-api/pkg/response"
)

type stubLetterRepo struct {
	byCode map[string]*models.OfferLetter
}

func (s *stubLetterRepo) ReplaceLatest(ctx context.Context, l *models.OfferLetter) error { return nil }

func (s *stubLetterRepo) FindLatestByReference(ctx context.Context, reference string) (*models.OfferLetter, error) {
	return nil, sql.ErrNoRows
}

func (s *stubLetterRepo) FindLatestByStudentNumber(ctx context.Context, studentNumber string) (*models.OfferLetter, error) {
	return nil, sql.ErrNoRows
}

func (s *stubLetterRepo) FindByVerificationCode(ctx context.Context, code string) (*models.OfferLetter, error) {
	if l, ok := s.byCode[code]; ok {
		return l, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubLetterRepo) FindByID(ctx context.Context, id string) (*models.OfferLetter, error) {
	return nil, sql.ErrNoRows
}

type stubAppReader struct{ apps map[string]*models.Application }

func (s *stubAppReader) FindByReference(ctx context.Context, reference string) (*models.Application, error) {
	if app, ok := s.apps[reference]; ok {
		return app, nil
	}
	return nil, sql.ErrNoRows
}

type stubRenderer struct{}

func (s *stubRenderer) Render(fields letter.Fields) ([]byte, error) { return []byte("%PDF"), nil }

type stubStorage struct{}

func (s *stubStorage) Save(filename string, data []byte) (string, error) { return filename, nil }
func (s *stubStorage) Open(filename string) (*os.File, error)           { return nil, os.ErrNotExist }
func (s *stubStorage) Path(filename string) string                      { return filename }

func verifyRouter(repo *stubLetterRepo, apps *stubAppReader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewOfferLetterService(repo, apps, &stubRenderer{}, &stubStorage{}, nil, nil, nil, config.LettersConfig{}, nil)
	h := NewOfferLetterHandler(svc)
	r := gin.New()
	r.GET("/offer-letters/verify/:code", h.Verify)
	return r
}

func TestOfferLetterHandlerVerify(t *testing.T) {
	issuedAt := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	repo := &stubLetterRepo{byCode: map[string]*models.OfferLetter{
		"abc123": {
			ID:            "letter-1",
			Reference:     "APP-2026-A",
			StudentNumber: "U261000",
			CreatedAt:     issuedAt,
		},
	}}
	apps := &stubAppReader{apps: map[string]*models.Application{
		"APP-2026-A": {Reference: "APP-2026-A", ProgrammeCode: "CS101"},
	}}
	r := verifyRouter(repo, apps)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/offer-letters/verify/abc123", nil)
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	payload, err := json.Marshal(envelope.Data)
	require.NoError(t, err)

	var verification models.LetterVerification
	require.NoError(t, json.Unmarshal(payload, &verification))
	assert.True(t, verification.Valid)
	assert.Equal(t, "APP-2026-A", verification.Reference)
	assert.Equal(t, "U261000", verification.StudentNumber)
	assert.Equal(t, "CS101", verification.ProgrammeCode)
	assert.Equal(t, issuedAt, verification.IssuedAt)
}

func TestOfferLetterHandlerVerifyUnknownCode(t *testing.T) {
	r := verifyRouter(&stubLetterRepo{}, &stubAppReader{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/offer-letters/verify/unknown", nil)
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
