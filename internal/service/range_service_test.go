package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-admissions-api/internal/models"
	appErrors "github.com/noah-isme/uni-admissions-api/pkg/errors"
)

type fakeRangeRepo struct {
	ranges  []models.NumberRange
	created []*models.NumberRange
}

func (f *fakeRangeRepo) Create(ctx context.Context, rng *models.NumberRange) error {
	rng.ID = "range-new"
	rng.Next = rng.StartNumber
	rng.Active = true
	for i := range f.ranges {
		f.ranges[i].Active = false
	}
	f.ranges = append(f.ranges, *rng)
	f.created = append(f.created, rng)
	return nil
}

func (f *fakeRangeRepo) FindActive(ctx context.Context) (*models.NumberRange, error) {
	for i := range f.ranges {
		if f.ranges[i].Active {
			return &f.ranges[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeRangeRepo) List(ctx context.Context) ([]models.NumberRange, error) {
	return f.ranges, nil
}

func TestRangeServiceCreate(t *testing.T) {
	repo := &fakeRangeRepo{}
	svc := NewRangeService(repo, nil, nil)

	rng, err := svc.Create(context.Background(), CreateRangeRequest{Prefix: "U26", StartNumber: 1000, EndNumber: 1999}, nil)
	require.NoError(t, err)

	assert.True(t, rng.Active)
	assert.Equal(t, int64(1000), rng.Next)
	assert.Equal(t, int64(1000), rng.Remaining())
}

func TestRangeServiceCreateDeactivatesPrevious(t *testing.T) {
	repo := &fakeRangeRepo{}
	svc := NewRangeService(repo, nil, nil)

	_, err := svc.Create(context.Background(), CreateRangeRequest{Prefix: "U25", StartNumber: 1, EndNumber: 500}, nil)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateRangeRequest{Prefix: "U26", StartNumber: 1000, EndNumber: 1999}, nil)
	require.NoError(t, err)

	active := 0
	for _, rng := range repo.ranges {
		if rng.Active {
			active++
			assert.Equal(t, "U26", rng.Prefix)
		}
	}
	assert.Equal(t, 1, active)
}

func TestRangeServiceCreateRejectsInvalidBounds(t *testing.T) {
	svc := NewRangeService(&fakeRangeRepo{}, nil, nil)

	cases := []CreateRangeRequest{
		{Prefix: "U26", StartNumber: 0, EndNumber: 10},
		{Prefix: "U26", StartNumber: 10, EndNumber: 0},
		{Prefix: "U26", StartNumber: 200, EndNumber: 100},
	}
	for _, req := range cases {
		_, err := svc.Create(context.Background(), req, nil)
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}
}

func TestRangeServiceSingleNumberRange(t *testing.T) {
	repo := &fakeRangeRepo{}
	svc := NewRangeService(repo, nil, nil)

	rng, err := svc.Create(context.Background(), CreateRangeRequest{Prefix: "U26", StartNumber: 42, EndNumber: 42}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rng.Remaining())
}

func TestRangeServiceActiveNotFound(t *testing.T) {
	svc := NewRangeService(&fakeRangeRepo{}, nil, nil)

	_, err := svc.Active(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
