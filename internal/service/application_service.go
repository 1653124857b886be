package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-admissions-api/internal/models"
	appErrors "github.com/noah-isme/uni-admissions-api/pkg/errors"
)

type applicationRepository interface {
	Create(ctx context.Context, app *models.Application) error
	FindByReference(ctx context.Context, reference string) (*models.Application, error)
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, int, error)
	UpdatePersonal(ctx context.Context, app *models.Application) error
	UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) error
	AddEducation(ctx context.Context, record *models.EducationRecord) error
	ListEducation(ctx context.Context, applicationID string) ([]models.EducationRecord, error)
	AddExperience(ctx context.Context, exp *models.WorkExperience) error
	ListExperience(ctx context.Context, applicationID string) ([]models.WorkExperience, error)
	AddDocument(ctx context.Context, doc *models.ApplicationDocument) error
	ListDocuments(ctx context.Context, applicationID string) ([]models.ApplicationDocument, error)
}

// CreateApplicationRequest starts a new admission application.
type CreateApplicationRequest struct {
	FullName      string `json:"full_name" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone"`
	ProgrammeCode string `json:"programme_code" validate:"required"`
}

// UpdatePersonalRequest amends the personal-details step.
type UpdatePersonalRequest struct {
	FullName  string  `json:"full_name" validate:"required"`
	Email     string  `json:"email" validate:"required,email"`
	Phone     *string `json:"phone"`
	BirthDate *string `json:"birth_date"`
	Address   *string `json:"address"`
}

// AddEducationRequest appends a prior-education entry.
type AddEducationRequest struct {
	Institution   string  `json:"institution" validate:"required"`
	Qualification string  `json:"qualification" validate:"required"`
	FieldOfStudy  *string `json:"field_of_study"`
	StartYear     int     `json:"start_year" validate:"required,min=1900"`
	EndYear       *int    `json:"end_year"`
	Grade         *string `json:"grade"`
}

// AddExperienceRequest appends an employment entry.
type AddExperienceRequest struct {
	Employer    string  `json:"employer" validate:"required"`
	Position    string  `json:"position" validate:"required"`
	StartDate   string  `json:"start_date" validate:"required"`
	EndDate     *string `json:"end_date"`
	Description *string `json:"description"`
}

// AddDocumentRequest registers uploaded document metadata.
type AddDocumentRequest struct {
	DocumentType string `json:"document_type" validate:"required"`
	FileName     string `json:"file_name" validate:"required"`
	FilePath     string `json:"file_path" validate:"required"`
	ContentType  string `json:"content_type"`
	SizeBytes    int64  `json:"size_bytes"`
}

// ApplicationService manages the multi-step admission submission flow.
type ApplicationService struct {
	repo      applicationRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewApplicationService constructs ApplicationService.
func NewApplicationService(repo applicationRepository, validate *validator.Validate, logger *zap.Logger) *ApplicationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicationService{repo: repo, validator: validate, logger: logger}
}

// Create opens a new application and assigns its opaque reference.
func (s *ApplicationService) Create(ctx context.Context, req CreateApplicationRequest) (*models.Application, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid application payload")
	}

	reference, err := newReference()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate reference")
	}

	app := &models.Application{
		Reference:     reference,
		FullName:      req.FullName,
		Email:         &req.Email,
		ProgrammeCode: req.ProgrammeCode,
		Status:        models.ApplicationStatusPending,
	}
	if req.Phone != "" {
		app.Phone = &req.Phone
	}
	if err := s.repo.Create(ctx, app); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create application")
	}

	s.logger.Info("application created",
		zap.String("reference", app.Reference),
		zap.String("programme_code", app.ProgrammeCode))
	return app, nil
}

// Get returns an application with its submission-step details.
func (s *ApplicationService) Get(ctx context.Context, reference string) (*models.ApplicationDetail, error) {
	app, err := s.findByReference(ctx, reference)
	if err != nil {
		return nil, err
	}

	education, err := s.repo.ListEducation(ctx, app.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list education records")
	}
	experience, err := s.repo.ListExperience(ctx, app.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list work experience")
	}
	documents, err := s.repo.ListDocuments(ctx, app.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}

	return &models.ApplicationDetail{
		Application: *app,
		Education:   education,
		Experience:  experience,
		Documents:   documents,
	}, nil
}

// List returns applications matching the filter with a total count.
func (s *ApplicationService) List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	apps, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}
	return apps, total, nil
}

// UpdatePersonal amends personal details while the application is pending.
func (s *ApplicationService) UpdatePersonal(ctx context.Context, reference string, req UpdatePersonalRequest) (*models.Application, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid personal details")
	}
	app, err := s.findByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if app.Status != models.ApplicationStatusPending {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "application can no longer be edited")
	}

	app.FullName = req.FullName
	app.Email = &req.Email
	app.Phone = req.Phone
	app.Address = req.Address
	if req.BirthDate != nil {
		birthDate, parseErr := time.Parse("2006-01-02", *req.BirthDate)
		if parseErr != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "birth_date must be YYYY-MM-DD")
		}
		app.BirthDate = &birthDate
	}

	if err := s.repo.UpdatePersonal(ctx, app); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update application")
	}
	return app, nil
}

// AddEducation appends an education record to a pending application.
func (s *ApplicationService) AddEducation(ctx context.Context, reference string, req AddEducationRequest) (*models.EducationRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid education record")
	}
	app, err := s.findByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if app.Status != models.ApplicationStatusPending {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "application can no longer be edited")
	}

	record := &models.EducationRecord{
		ApplicationID: app.ID,
		Institution:   req.Institution,
		Qualification: req.Qualification,
		FieldOfStudy:  req.FieldOfStudy,
		StartYear:     req.StartYear,
		EndYear:       req.EndYear,
		Grade:         req.Grade,
	}
	if err := s.repo.AddEducation(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add education record")
	}
	return record, nil
}

// AddExperience appends a work experience entry to a pending application.
func (s *ApplicationService) AddExperience(ctx context.Context, reference string, req AddExperienceRequest) (*models.WorkExperience, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid work experience")
	}
	app, err := s.findByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if app.Status != models.ApplicationStatusPending {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "application can no longer be edited")
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_date must be YYYY-MM-DD")
	}
	exp := &models.WorkExperience{
		ApplicationID: app.ID,
		Employer:      req.Employer,
		Position:      req.Position,
		StartDate:     startDate,
		Description:   req.Description,
	}
	if req.EndDate != nil {
		endDate, parseErr := time.Parse("2006-01-02", *req.EndDate)
		if parseErr != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must be YYYY-MM-DD")
		}
		exp.EndDate = &endDate
	}

	if err := s.repo.AddExperience(ctx, exp); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add work experience")
	}
	return exp, nil
}

// AddDocument registers metadata for an uploaded document.
func (s *ApplicationService) AddDocument(ctx context.Context, reference string, req AddDocumentRequest) (*models.ApplicationDocument, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid document payload")
	}
	app, err := s.findByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if app.Status != models.ApplicationStatusPending {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "application can no longer be edited")
	}

	doc := &models.ApplicationDocument{
		ApplicationID: app.ID,
		DocumentType:  req.DocumentType,
		FileName:      req.FileName,
		FilePath:      req.FilePath,
		ContentType:   req.ContentType,
		SizeBytes:     req.SizeBytes,
	}
	if err := s.repo.AddDocument(ctx, doc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add document")
	}
	return doc, nil
}

// Reject marks a pending application as rejected.
func (s *ApplicationService) Reject(ctx context.Context, reference string) (*models.Application, error) {
	app, err := s.findByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if app.Status != models.ApplicationStatusPending {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "only pending applications can be rejected")
	}

	if err := s.repo.UpdateStatus(ctx, app.ID, models.ApplicationStatusRejected); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject application")
	}
	app.Status = models.ApplicationStatusRejected

	s.logger.Info("application rejected", zap.String("reference", app.Reference))
	return app, nil
}

func (s *ApplicationService) findByReference(ctx context.Context, reference string) (*models.Application, error) {
	if reference == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "reference is required")
	}
	app, err := s.repo.FindByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	return app, nil
}

// newReference builds an opaque application reference such as APP-2026-9F3A61C2.
func newReference() (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return fmt.Sprintf("APP-%d-%s", time.Now().UTC().Year(), strings.ToUpper(hex.EncodeToString(buf))), nil
}
