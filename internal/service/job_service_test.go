package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-admissions-api/internal/models"
	appErrors "github.com/noah-isme/uni-admissions-api/pkg/errors"
)

type fakeJobRepo struct {
	postings     map[string]*models.JobPosting
	applications map[string]*models.JobApplication
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{
		postings:     make(map[string]*models.JobPosting),
		applications: make(map[string]*models.JobApplication),
	}
}

func (f *fakeJobRepo) CreatePosting(ctx context.Context, posting *models.JobPosting) error {
	posting.ID = "posting-1"
	f.postings[posting.ID] = posting
	return nil
}

func (f *fakeJobRepo) FindPostingByID(ctx context.Context, id string) (*models.JobPosting, error) {
	if p, ok := f.postings[id]; ok {
		return p, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeJobRepo) ListPostings(ctx context.Context, filter models.JobPostingFilter) ([]models.JobPosting, int, error) {
	var out []models.JobPosting
	for _, p := range f.postings {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (f *fakeJobRepo) UpdatePosting(ctx context.Context, posting *models.JobPosting) error {
	f.postings[posting.ID] = posting
	return nil
}

func (f *fakeJobRepo) CreateJobApplication(ctx context.Context, app *models.JobApplication) error {
	app.ID = "job-app-1"
	f.applications[app.ID] = app
	return nil
}

func (f *fakeJobRepo) FindJobApplicationByID(ctx context.Context, id string) (*models.JobApplication, error) {
	if a, ok := f.applications[id]; ok {
		return a, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeJobRepo) ListJobApplications(ctx context.Context, postingID string) ([]models.JobApplication, error) {
	var out []models.JobApplication
	for _, a := range f.applications {
		if a.PostingID == postingID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeJobRepo) UpdateJobApplicationStatus(ctx context.Context, id string, status models.JobApplicationStatus) error {
	if a, ok := f.applications[id]; ok {
		a.Status = status
	}
	return nil
}

func TestJobServiceCreatePosting(t *testing.T) {
	svc := NewJobService(newFakeJobRepo(), nil, nil)

	posting, err := svc.CreatePosting(context.Background(), CreatePostingRequest{
		Title:       "Lecturer",
		Department:  "Computer Science",
		Description: "Teaching and research",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.JobPostingStatusOpen, posting.Status)
}

func TestJobServiceSubmitToClosedPosting(t *testing.T) {
	repo := newFakeJobRepo()
	svc := NewJobService(repo, nil, nil)

	posting, err := svc.CreatePosting(context.Background(), CreatePostingRequest{
		Title:       "Lecturer",
		Department:  "Computer Science",
		Description: "Teaching and research",
	}, nil)
	require.NoError(t, err)
	posting.Status = models.JobPostingStatusClosed

	_, err = svc.SubmitApplication(context.Background(), posting.ID, SubmitJobApplicationRequest{
		FullName: "John Doe",
		Email:    "john@example.com",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
}

func TestJobServiceSubmitAfterDeadline(t *testing.T) {
	repo := newFakeJobRepo()
	svc := NewJobService(repo, nil, nil)

	past := "2020-01-01"
	posting, err := svc.CreatePosting(context.Background(), CreatePostingRequest{
		Title:       "Lecturer",
		Department:  "Computer Science",
		Description: "Teaching and research",
		Deadline:    &past,
	}, nil)
	require.NoError(t, err)

	_, err = svc.SubmitApplication(context.Background(), posting.ID, SubmitJobApplicationRequest{
		FullName: "John Doe",
		Email:    "john@example.com",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
}

func TestJobServiceScreeningFlow(t *testing.T) {
	repo := newFakeJobRepo()
	svc := NewJobService(repo, nil, nil)

	posting, err := svc.CreatePosting(context.Background(), CreatePostingRequest{
		Title:       "Lecturer",
		Department:  "Computer Science",
		Description: "Teaching and research",
	}, nil)
	require.NoError(t, err)

	app, err := svc.SubmitApplication(context.Background(), posting.ID, SubmitJobApplicationRequest{
		FullName: "John Doe",
		Email:    "john@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, models.JobApplicationStatusReceived, app.Status)

	updated, err := svc.UpdateApplicationStatus(context.Background(), app.ID, UpdateJobApplicationStatusRequest{Status: "SHORTLISTED"})
	require.NoError(t, err)
	assert.Equal(t, models.JobApplicationStatusShortlisted, updated.Status)

	_, err = svc.UpdateApplicationStatus(context.Background(), app.ID, UpdateJobApplicationStatusRequest{Status: "PROMOTED"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestJobServiceDeadlineParsing(t *testing.T) {
	svc := NewJobService(newFakeJobRepo(), nil, nil)

	bad := "01/02/2026"
	_, err := svc.CreatePosting(context.Background(), CreatePostingRequest{
		Title:       "Lecturer",
		Department:  "Computer Science",
		Description: "Teaching and research",
		Deadline:    &bad,
	}, nil)
	require.Error(t, err)

	good := time.Now().UTC().AddDate(0, 1, 0).Format("2006-01-02")
	posting, err := svc.CreatePosting(context.Background(), CreatePostingRequest{
		Title:       "Lecturer",
		Department:  "Computer Science",
		Description: "Teaching and research",
		Deadline:    &good,
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, posting.Deadline)
}
