package service

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-admissions-api/internal/models"
	"github.com/noah-isme/uni-admissions-api/pkg/config"
	appErrors "github.com/noah-isme/uni-admissions-api/pkg/errors"
	"github.com/noah-isme/uni-admissions-api/pkg/letter"
)

type fakeLetterRepo struct {
	letters map[string]*models.OfferLetter // keyed by verification code
	latest  map[string]*models.OfferLetter // keyed by reference
	stored  []*models.OfferLetter
}

func (f *fakeLetterRepo) ReplaceLatest(ctx context.Context, l *models.OfferLetter) error {
	if l.ID == "" {
		l.ID = "letter-" + l.VerificationCode[:8]
	}
	l.Latest = true
	if f.letters == nil {
		f.letters = make(map[string]*models.OfferLetter)
	}
	if f.latest == nil {
		f.latest = make(map[string]*models.OfferLetter)
	}
	if prev, ok := f.latest[l.Reference]; ok {
		prev.Latest = false
	}
	f.letters[l.VerificationCode] = l
	f.latest[l.Reference] = l
	f.stored = append(f.stored, l)
	return nil
}

func (f *fakeLetterRepo) FindLatestByReference(ctx context.Context, reference string) (*models.OfferLetter, error) {
	if l, ok := f.latest[reference]; ok {
		return l, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeLetterRepo) FindLatestByStudentNumber(ctx context.Context, studentNumber string) (*models.OfferLetter, error) {
	for _, l := range f.latest {
		if l.StudentNumber == studentNumber {
			return l, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeLetterRepo) FindByVerificationCode(ctx context.Context, code string) (*models.OfferLetter, error) {
	if l, ok := f.letters[code]; ok {
		return l, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeLetterRepo) FindByID(ctx context.Context, id string) (*models.OfferLetter, error) {
	for _, l := range f.letters {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, sql.ErrNoRows
}

type fakeAppReader struct {
	apps map[string]*models.Application
}

func (f *fakeAppReader) FindByReference(ctx context.Context, reference string) (*models.Application, error) {
	if app, ok := f.apps[reference]; ok {
		return app, nil
	}
	return nil, sql.ErrNoRows
}

type fakeRenderer struct{ rendered []letter.Fields }

func (f *fakeRenderer) Render(fields letter.Fields) ([]byte, error) {
	f.rendered = append(f.rendered, fields)
	return []byte("%PDF-1.4 test"), nil
}

type fakeLetterStorage struct{ saved map[string][]byte }

func (f *fakeLetterStorage) Save(filename string, data []byte) (string, error) {
	if f.saved == nil {
		f.saved = make(map[string][]byte)
	}
	f.saved[filename] = data
	return "/letters/" + filename, nil
}

func (f *fakeLetterStorage) Open(filename string) (*os.File, error) {
	return nil, os.ErrNotExist
}

func (f *fakeLetterStorage) Path(filename string) string {
	return "/letters/" + filename
}

type fakeEventRecorder struct{ events []*models.OfferLetterEvent }

func (f *fakeEventRecorder) Record(event *models.OfferLetterEvent) {
	f.events = append(f.events, event)
}

func testLetterService(repo *fakeLetterRepo, apps *fakeAppReader, events *fakeEventRecorder) *OfferLetterService {
	cfg := config.LettersConfig{
		UniversityName: "Example University",
		SignatoryName:  "Dr. R. Smith",
		SignatoryTitle: "Registrar",
	}
	var recorder letterEventRecorder
	if events != nil {
		recorder = events
	}
	return NewOfferLetterService(repo, apps, &fakeRenderer{}, &fakeLetterStorage{}, nil, recorder, nil, cfg, nil)
}

func acceptedApplication(reference, number string) *models.Application {
	now := time.Now().UTC()
	return &models.Application{
		ID:            "app-1",
		Reference:     reference,
		FullName:      "Jane Doe",
		ProgrammeCode: "CS101",
		Status:        models.ApplicationStatusAccepted,
		StudentNumber: &number,
		AcceptedAt:    &now,
	}
}

func TestOfferLetterServiceGenerateRecordsEvent(t *testing.T) {
	repo := &fakeLetterRepo{}
	events := &fakeEventRecorder{}
	svc := testLetterService(repo, &fakeAppReader{}, events)

	app := acceptedApplication("APP-2026-A", "U261000")
	generated, err := svc.GenerateForApplication(context.Background(), *app, ClientMeta{})
	require.NoError(t, err)

	assert.True(t, generated.Latest)
	assert.NotEmpty(t, generated.VerificationCode)
	assert.NotContains(t, generated.VerificationCode, "-")
	require.Len(t, events.events, 1)
	assert.Equal(t, models.LetterActionGenerated, events.events[0].Action)
}

func TestOfferLetterServiceGenerateRequiresNumber(t *testing.T) {
	svc := testLetterService(&fakeLetterRepo{}, &fakeAppReader{}, nil)

	app := &models.Application{Reference: "APP-2026-A", Status: models.ApplicationStatusPending}
	_, err := svc.GenerateForApplication(context.Background(), *app, ClientMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
}

func TestOfferLetterServiceRegenerateFlipsLatest(t *testing.T) {
	repo := &fakeLetterRepo{}
	app := acceptedApplication("APP-2026-A", "U261000")
	apps := &fakeAppReader{apps: map[string]*models.Application{"APP-2026-A": app}}
	svc := testLetterService(repo, apps, nil)

	first, err := svc.GenerateForApplication(context.Background(), *app, ClientMeta{})
	require.NoError(t, err)
	second, err := svc.Regenerate(context.Background(), "APP-2026-A", ClientMeta{})
	require.NoError(t, err)

	assert.NotEqual(t, first.VerificationCode, second.VerificationCode)
	assert.False(t, first.Latest)
	assert.True(t, second.Latest)
	assert.Len(t, repo.stored, 2)
}

func TestOfferLetterServiceRegenerateWithoutNumber(t *testing.T) {
	app := &models.Application{Reference: "APP-2026-A", Status: models.ApplicationStatusPending}
	apps := &fakeAppReader{apps: map[string]*models.Application{"APP-2026-A": app}}
	svc := testLetterService(&fakeLetterRepo{}, apps, nil)

	_, err := svc.Regenerate(context.Background(), "APP-2026-A", ClientMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
}

func TestOfferLetterServiceRegenerateUnknownApplication(t *testing.T) {
	svc := testLetterService(&fakeLetterRepo{}, &fakeAppReader{}, nil)

	_, err := svc.Regenerate(context.Background(), "APP-2026-MISSING", ClientMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestOfferLetterServiceVerify(t *testing.T) {
	repo := &fakeLetterRepo{}
	app := acceptedApplication("APP-2026-A", "U261000")
	apps := &fakeAppReader{apps: map[string]*models.Application{"APP-2026-A": app}}
	svc := testLetterService(repo, apps, nil)

	generated, err := svc.GenerateForApplication(context.Background(), *app, ClientMeta{})
	require.NoError(t, err)

	verification, err := svc.Verify(context.Background(), generated.VerificationCode)
	require.NoError(t, err)

	assert.True(t, verification.Valid)
	assert.Equal(t, "APP-2026-A", verification.Reference)
	assert.Equal(t, "U261000", verification.StudentNumber)
	assert.Equal(t, "CS101", verification.ProgrammeCode)
}

func TestOfferLetterServiceVerifyUnknownCode(t *testing.T) {
	svc := testLetterService(&fakeLetterRepo{}, &fakeAppReader{}, nil)

	_, err := svc.Verify(context.Background(), "deadbeef")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestOfferLetterServiceLogPrint(t *testing.T) {
	repo := &fakeLetterRepo{}
	events := &fakeEventRecorder{}
	app := acceptedApplication("APP-2026-A", "U261000")
	svc := testLetterService(repo, &fakeAppReader{}, events)

	_, err := svc.GenerateForApplication(context.Background(), *app, ClientMeta{})
	require.NoError(t, err)

	require.NoError(t, svc.LogPrint(context.Background(), "APP-2026-A", ClientMeta{}))
	require.Len(t, events.events, 2)
	assert.Equal(t, models.LetterActionPrinted, events.events[1].Action)
}

func TestOfferLetterServiceLogPrintWithoutLetter(t *testing.T) {
	svc := testLetterService(&fakeLetterRepo{}, &fakeAppReader{}, nil)

	err := svc.LogPrint(context.Background(), "APP-2026-A", ClientMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
