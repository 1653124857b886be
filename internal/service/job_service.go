package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-admissions-api/internal/models"
	appErrors "github.com/noah-isme/uni-admissions-api/pkg/errors"
)

type jobRepository interface {
	CreatePosting(ctx context.Context, posting *models.JobPosting) error
	FindPostingByID(ctx context.Context, id string) (*models.JobPosting, error)
	ListPostings(ctx context.Context, filter models.JobPostingFilter) ([]models.JobPosting, int, error)
	UpdatePosting(ctx context.Context, posting *models.JobPosting) error
	CreateJobApplication(ctx context.Context, app *models.JobApplication) error
	FindJobApplicationByID(ctx context.Context, id string) (*models.JobApplication, error)
	ListJobApplications(ctx context.Context, postingID string) ([]models.JobApplication, error)
	UpdateJobApplicationStatus(ctx context.Context, id string, status models.JobApplicationStatus) error
}

// CreatePostingRequest opens a new vacancy.
type CreatePostingRequest struct {
	Title        string  `json:"title" validate:"required"`
	Department   string  `json:"department" validate:"required"`
	Description  string  `json:"description" validate:"required"`
	Requirements *string `json:"requirements"`
	Deadline     *string `json:"deadline"`
}

// UpdatePostingRequest amends a vacancy.
type UpdatePostingRequest struct {
	Title        string  `json:"title" validate:"required"`
	Department   string  `json:"department" validate:"required"`
	Description  string  `json:"description" validate:"required"`
	Requirements *string `json:"requirements"`
	Status       string  `json:"status" validate:"required,oneof=OPEN CLOSED"`
	Deadline     *string `json:"deadline"`
}

// SubmitJobApplicationRequest is a candidate submission.
type SubmitJobApplicationRequest struct {
	FullName   string  `json:"full_name" validate:"required"`
	Email      string  `json:"email" validate:"required,email"`
	Phone      *string `json:"phone"`
	ResumePath *string `json:"resume_path"`
	CoverNote  *string `json:"cover_note"`
}

// UpdateJobApplicationStatusRequest advances screening.
type UpdateJobApplicationStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=RECEIVED SHORTLISTED REJECTED HIRED"`
}

// JobService manages the HR job board.
type JobService struct {
	repo      jobRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewJobService constructs JobService.
func NewJobService(repo jobRepository, validate *validator.Validate, logger *zap.Logger) *JobService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JobService{repo: repo, validator: validate, logger: logger}
}

// CreatePosting opens a new job posting.
func (s *JobService) CreatePosting(ctx context.Context, req CreatePostingRequest, actorID *string) (*models.JobPosting, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid posting payload")
	}

	posting := &models.JobPosting{
		Title:        req.Title,
		Department:   req.Department,
		Description:  req.Description,
		Requirements: req.Requirements,
		Status:       models.JobPostingStatusOpen,
		CreatedBy:    actorID,
	}
	if req.Deadline != nil {
		deadline, err := time.Parse("2006-01-02", *req.Deadline)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "deadline must be YYYY-MM-DD")
		}
		posting.Deadline = &deadline
	}

	if err := s.repo.CreatePosting(ctx, posting); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create posting")
	}

	s.logger.Info("job posting created",
		zap.String("posting_id", posting.ID),
		zap.String("title", posting.Title))
	return posting, nil
}

// GetPosting returns a posting by id.
func (s *JobService) GetPosting(ctx context.Context, id string) (*models.JobPosting, error) {
	posting, err := s.repo.FindPostingByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "posting not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load posting")
	}
	return posting, nil
}

// ListPostings returns postings matching the filter with a total count.
func (s *JobService) ListPostings(ctx context.Context, filter models.JobPostingFilter) ([]models.JobPosting, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	postings, total, err := s.repo.ListPostings(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list postings")
	}
	return postings, total, nil
}

// UpdatePosting amends a posting, including opening and closing it.
func (s *JobService) UpdatePosting(ctx context.Context, id string, req UpdatePostingRequest) (*models.JobPosting, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid posting payload")
	}
	posting, err := s.GetPosting(ctx, id)
	if err != nil {
		return nil, err
	}

	posting.Title = req.Title
	posting.Department = req.Department
	posting.Description = req.Description
	posting.Requirements = req.Requirements
	posting.Status = models.JobPostingStatus(req.Status)
	posting.Deadline = nil
	if req.Deadline != nil {
		deadline, parseErr := time.Parse("2006-01-02", *req.Deadline)
		if parseErr != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "deadline must be YYYY-MM-DD")
		}
		posting.Deadline = &deadline
	}

	if err := s.repo.UpdatePosting(ctx, posting); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update posting")
	}
	return posting, nil
}

// SubmitApplication records a candidate submission against an open posting.
func (s *JobService) SubmitApplication(ctx context.Context, postingID string, req SubmitJobApplicationRequest) (*models.JobApplication, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid application payload")
	}
	posting, err := s.GetPosting(ctx, postingID)
	if err != nil {
		return nil, err
	}
	if posting.Status != models.JobPostingStatusOpen {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "posting is closed")
	}
	if posting.Deadline != nil && time.Now().UTC().After(*posting.Deadline) {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "posting deadline has passed")
	}

	app := &models.JobApplication{
		PostingID:  posting.ID,
		FullName:   req.FullName,
		Email:      req.Email,
		Phone:      req.Phone,
		ResumePath: req.ResumePath,
		CoverNote:  req.CoverNote,
		Status:     models.JobApplicationStatusReceived,
	}
	if err := s.repo.CreateJobApplication(ctx, app); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit application")
	}
	return app, nil
}

// ListApplications returns all submissions for a posting.
func (s *JobService) ListApplications(ctx context.Context, postingID string) ([]models.JobApplication, error) {
	if _, err := s.GetPosting(ctx, postingID); err != nil {
		return nil, err
	}
	apps, err := s.repo.ListJobApplications(ctx, postingID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}
	return apps, nil
}

// UpdateApplicationStatus advances a submission through screening.
func (s *JobService) UpdateApplicationStatus(ctx context.Context, id string, req UpdateJobApplicationStatusRequest) (*models.JobApplication, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	app, err := s.repo.FindJobApplicationByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "job application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load job application")
	}

	status := models.JobApplicationStatus(req.Status)
	if err := s.repo.UpdateJobApplicationStatus(ctx, app.ID, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update status")
	}
	app.Status = status
	return app, nil
}
