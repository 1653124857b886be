package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-admissions-api/internal/models"
)

type fakeDashboardRepo struct {
	statusCounts map[models.ApplicationStatus]int
	letters      int
	openPostings int
}

func (f *fakeDashboardRepo) CountApplicationsByStatus(ctx context.Context) (map[models.ApplicationStatus]int, error) {
	return f.statusCounts, nil
}

func (f *fakeDashboardRepo) CountLettersGenerated(ctx context.Context) (int, error) {
	return f.letters, nil
}

func (f *fakeDashboardRepo) CountOpenPostings(ctx context.Context) (int, error) {
	return f.openPostings, nil
}

type fakeActiveRangeReader struct{ rng *models.NumberRange }

func (f *fakeActiveRangeReader) FindActive(ctx context.Context) (*models.NumberRange, error) {
	if f.rng == nil {
		return nil, sql.ErrNoRows
	}
	return f.rng, nil
}

type fakeIssuanceCounter struct{ issued int }

func (f *fakeIssuanceCounter) CountByRange(ctx context.Context, rangeID string) (int, error) {
	return f.issued, nil
}

func TestDashboardServiceOverview(t *testing.T) {
	repo := &fakeDashboardRepo{
		statusCounts: map[models.ApplicationStatus]int{
			models.ApplicationStatusPending:  12,
			models.ApplicationStatusAccepted: 30,
			models.ApplicationStatusRejected: 3,
		},
		letters:      31,
		openPostings: 2,
	}
	ranges := &fakeActiveRangeReader{rng: &models.NumberRange{
		ID:          "range-1",
		Prefix:      "U26",
		StartNumber: 1000,
		EndNumber:   1999,
		Next:        1030,
		Active:      true,
	}}
	ledger := &fakeIssuanceCounter{issued: 30}
	cache := NewCacheService(nil, nil, time.Minute, nil, false)
	svc := NewDashboardService(repo, ranges, ledger, cache, time.Minute, nil)

	overview, cacheHit, err := svc.Overview(context.Background())
	require.NoError(t, err)

	assert.False(t, cacheHit)
	assert.Equal(t, 45, overview.Applications.Total)
	assert.Equal(t, 12, overview.Applications.Pending)
	assert.True(t, overview.Numbers.ActiveRange)
	assert.Equal(t, 30, overview.Numbers.Issued)
	assert.Equal(t, int64(970), overview.Numbers.Remaining)
	assert.Equal(t, 31, overview.Letters.Generated)
	assert.Equal(t, 2, overview.Jobs.OpenPostings)
}

func TestDashboardServiceOverviewWithoutActiveRange(t *testing.T) {
	repo := &fakeDashboardRepo{statusCounts: map[models.ApplicationStatus]int{}}
	cache := NewCacheService(nil, nil, time.Minute, nil, false)
	svc := NewDashboardService(repo, &fakeActiveRangeReader{}, &fakeIssuanceCounter{}, cache, time.Minute, nil)

	overview, _, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.False(t, overview.Numbers.ActiveRange)
	assert.Zero(t, overview.Numbers.Remaining)
}
