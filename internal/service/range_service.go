package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-admissions-api/internal/models"
	appErrors "github.com/noah-isme/uni-admissions-api/pkg/errors"
)

type rangeRepository interface {
	Create(ctx context.Context, rng *models.NumberRange) error
	FindActive(ctx context.Context) (*models.NumberRange, error)
	List(ctx context.Context) ([]models.NumberRange, error)
}

// CreateRangeRequest describes a new issuance range.
type CreateRangeRequest struct {
	Prefix      string `json:"prefix"`
	StartNumber int64  `json:"start_number" validate:"required,min=1"`
	EndNumber   int64  `json:"end_number" validate:"required,min=1"`
}

// RangeService administers student number ranges.
type RangeService struct {
	repo      rangeRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRangeService constructs RangeService.
func NewRangeService(repo rangeRepository, validate *validator.Validate, logger *zap.Logger) *RangeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RangeService{repo: repo, validator: validate, logger: logger}
}

// Create validates bounds and activates a new range, deactivating any
// prior active range in the same transaction.
func (s *RangeService) Create(ctx context.Context, req CreateRangeRequest, actorID *string) (*models.NumberRange, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid range payload")
	}
	if req.StartNumber > req.EndNumber {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_number must not exceed end_number")
	}

	rng := &models.NumberRange{
		Prefix:      req.Prefix,
		StartNumber: req.StartNumber,
		EndNumber:   req.EndNumber,
		CreatedBy:   actorID,
	}
	if err := s.repo.Create(ctx, rng); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create range")
	}

	s.logger.Info("number range activated",
		zap.String("range_id", rng.ID),
		zap.String("prefix", rng.Prefix),
		zap.Int64("start", rng.StartNumber),
		zap.Int64("end", rng.EndNumber))
	return rng, nil
}

// Active returns the currently active range.
func (s *RangeService) Active(ctx context.Context) (*models.NumberRange, error) {
	rng, err := s.repo.FindActive(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no active range")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active range")
	}
	return rng, nil
}

// List returns every range, newest first.
func (s *RangeService) List(ctx context.Context) ([]models.NumberRange, error) {
	ranges, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list ranges")
	}
	return ranges, nil
}
