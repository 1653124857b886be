package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-admissions-api/internal/models"
	appErrors "github.com/noah-isme/uni-admissions-api/pkg/errors"
)

type fakeApplicationRepo struct {
	apps      map[string]*models.Application
	education []*models.EducationRecord
}

func newFakeApplicationRepo() *fakeApplicationRepo {
	return &fakeApplicationRepo{apps: make(map[string]*models.Application)}
}

func (f *fakeApplicationRepo) Create(ctx context.Context, app *models.Application) error {
	app.ID = "app-" + app.Reference
	f.apps[app.Reference] = app
	return nil
}

func (f *fakeApplicationRepo) FindByReference(ctx context.Context, reference string) (*models.Application, error) {
	if app, ok := f.apps[reference]; ok {
		return app, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeApplicationRepo) List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, int, error) {
	var out []models.Application
	for _, app := range f.apps {
		out = append(out, *app)
	}
	return out, len(out), nil
}

func (f *fakeApplicationRepo) UpdatePersonal(ctx context.Context, app *models.Application) error {
	f.apps[app.Reference] = app
	return nil
}

func (f *fakeApplicationRepo) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) error {
	for _, app := range f.apps {
		if app.ID == id {
			app.Status = status
		}
	}
	return nil
}

func (f *fakeApplicationRepo) AddEducation(ctx context.Context, record *models.EducationRecord) error {
	record.ID = "edu-1"
	f.education = append(f.education, record)
	return nil
}

func (f *fakeApplicationRepo) ListEducation(ctx context.Context, applicationID string) ([]models.EducationRecord, error) {
	var out []models.EducationRecord
	for _, record := range f.education {
		if record.ApplicationID == applicationID {
			out = append(out, *record)
		}
	}
	return out, nil
}

func (f *fakeApplicationRepo) AddExperience(ctx context.Context, exp *models.WorkExperience) error {
	exp.ID = "exp-1"
	return nil
}

func (f *fakeApplicationRepo) ListExperience(ctx context.Context, applicationID string) ([]models.WorkExperience, error) {
	return nil, nil
}

func (f *fakeApplicationRepo) AddDocument(ctx context.Context, doc *models.ApplicationDocument) error {
	doc.ID = "doc-1"
	return nil
}

func (f *fakeApplicationRepo) ListDocuments(ctx context.Context, applicationID string) ([]models.ApplicationDocument, error) {
	return nil, nil
}

func TestApplicationServiceCreate(t *testing.T) {
	repo := newFakeApplicationRepo()
	svc := NewApplicationService(repo, nil, nil)

	app, err := svc.Create(context.Background(), CreateApplicationRequest{
		FullName:      "Jane Doe",
		Email:         "jane@example.com",
		ProgrammeCode: "CS101",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(app.Reference, "APP-"))
	assert.Equal(t, models.ApplicationStatusPending, app.Status)
	assert.Nil(t, app.StudentNumber)
}

func TestApplicationServiceCreateRejectsInvalidEmail(t *testing.T) {
	svc := NewApplicationService(newFakeApplicationRepo(), nil, nil)

	_, err := svc.Create(context.Background(), CreateApplicationRequest{
		FullName:      "Jane Doe",
		Email:         "not-an-email",
		ProgrammeCode: "CS101",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestApplicationServiceAddEducation(t *testing.T) {
	repo := newFakeApplicationRepo()
	svc := NewApplicationService(repo, nil, nil)

	app, err := svc.Create(context.Background(), CreateApplicationRequest{
		FullName:      "Jane Doe",
		Email:         "jane@example.com",
		ProgrammeCode: "CS101",
	})
	require.NoError(t, err)

	record, err := svc.AddEducation(context.Background(), app.Reference, AddEducationRequest{
		Institution:   "Springfield High",
		Qualification: "Diploma",
		StartYear:     2019,
	})
	require.NoError(t, err)
	assert.Equal(t, app.ID, record.ApplicationID)

	detail, err := svc.Get(context.Background(), app.Reference)
	require.NoError(t, err)
	assert.Len(t, detail.Education, 1)
}

func TestApplicationServiceEditBlockedAfterAcceptance(t *testing.T) {
	repo := newFakeApplicationRepo()
	svc := NewApplicationService(repo, nil, nil)

	app, err := svc.Create(context.Background(), CreateApplicationRequest{
		FullName:      "Jane Doe",
		Email:         "jane@example.com",
		ProgrammeCode: "CS101",
	})
	require.NoError(t, err)
	repo.apps[app.Reference].Status = models.ApplicationStatusAccepted

	_, err = svc.UpdatePersonal(context.Background(), app.Reference, UpdatePersonalRequest{
		FullName: "Jane Q. Doe",
		Email:    "jane@example.com",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
}

func TestApplicationServiceRejectOnlyPending(t *testing.T) {
	repo := newFakeApplicationRepo()
	svc := NewApplicationService(repo, nil, nil)

	app, err := svc.Create(context.Background(), CreateApplicationRequest{
		FullName:      "Jane Doe",
		Email:         "jane@example.com",
		ProgrammeCode: "CS101",
	})
	require.NoError(t, err)

	rejected, err := svc.Reject(context.Background(), app.Reference)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusRejected, rejected.Status)

	_, err = svc.Reject(context.Background(), app.Reference)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
}

func TestApplicationServiceGetUnknown(t *testing.T) {
	svc := NewApplicationService(newFakeApplicationRepo(), nil, nil)

	_, err := svc.Get(context.Background(), "APP-2026-MISSING")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
