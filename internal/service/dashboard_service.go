package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/uni-admissions-api/internal/dto"
	"github.com/noah-isme/uni-admissions-api/internal/models"
	appErrors "github.com/noah-isme/uni-admissions-api/pkg/errors"
)

const dashboardCacheKey = "dashboard:admissions"

type dashboardRepository interface {
	CountApplicationsByStatus(ctx context.Context) (map[models.ApplicationStatus]int, error)
	CountLettersGenerated(ctx context.Context) (int, error)
	CountOpenPostings(ctx context.Context) (int, error)
}

type activeRangeReader interface {
	FindActive(ctx context.Context) (*models.NumberRange, error)
}

type rangeIssuanceCounter interface {
	CountByRange(ctx context.Context, rangeID string) (int, error)
}

// DashboardService aggregates admissions figures, cached in Redis.
type DashboardService struct {
	repo     dashboardRepository
	ranges   activeRangeReader
	ledger   rangeIssuanceCounter
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewDashboardService constructs DashboardService.
func NewDashboardService(repo dashboardRepository, ranges activeRangeReader, ledger rangeIssuanceCounter, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 2 * time.Minute
	}
	return &DashboardService{repo: repo, ranges: ranges, ledger: ledger, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// Overview returns the aggregate dashboard payload. The bool reports a cache hit.
func (s *DashboardService) Overview(ctx context.Context) (*dto.AdmissionsDashboardResponse, bool, error) {
	var cached dto.AdmissionsDashboardResponse
	if hit, err := s.cache.Get(ctx, dashboardCacheKey, &cached); err == nil && hit {
		return &cached, true, nil
	}

	response, err := s.build(ctx)
	if err != nil {
		return nil, false, err
	}

	if err := s.cache.Set(ctx, dashboardCacheKey, response, s.cacheTTL); err != nil {
		s.logger.Warn("dashboard cache store failed", zap.Error(err))
	}
	return response, false, nil
}

// Invalidate drops the cached dashboard after a mutating operation.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, dashboardCacheKey); err != nil {
		s.logger.Warn("dashboard cache invalidate failed", zap.Error(err))
	}
}

func (s *DashboardService) build(ctx context.Context) (*dto.AdmissionsDashboardResponse, error) {
	statusCounts, err := s.repo.CountApplicationsByStatus(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count applications")
	}
	letters, err := s.repo.CountLettersGenerated(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count letters")
	}
	openPostings, err := s.repo.CountOpenPostings(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count postings")
	}

	response := &dto.AdmissionsDashboardResponse{
		Applications: dto.ApplicationsSection{
			Pending:  statusCounts[models.ApplicationStatusPending],
			Accepted: statusCounts[models.ApplicationStatusAccepted],
			Rejected: statusCounts[models.ApplicationStatusRejected],
		},
		Letters: dto.LettersSection{Generated: letters},
		Jobs:    dto.JobsSection{OpenPostings: openPostings},
	}
	response.Applications.Total = response.Applications.Pending + response.Applications.Accepted + response.Applications.Rejected

	rng, err := s.ranges.FindActive(ctx)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active range")
		}
	} else {
		issued, countErr := s.ledger.CountByRange(ctx, rng.ID)
		if countErr != nil {
			return nil, appErrors.Wrap(countErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count issuance")
		}
		response.Numbers = dto.NumbersSection{
			ActiveRange: true,
			Prefix:      rng.Prefix,
			StartNumber: rng.StartNumber,
			EndNumber:   rng.EndNumber,
			Next:        rng.Next,
			Issued:      issued,
			Remaining:   rng.Remaining(),
		}
	}

	return response, nil
}
