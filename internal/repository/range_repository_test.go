package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-admissions-api/internal/models"
	appErrors "github.com/noah-isme/uni-admissions-api/pkg/errors"
)

func newRangeRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	cleanup := func() {
		_ = sqlxDB.Close()
		db.Close()
	}
	return sqlxDB, mock, cleanup
}

func applicationRows(studentNumber interface{}) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{"id", "reference", "full_name", "email", "phone", "birth_date", "address", "programme_code", "status", "student_number", "accepted_at", "accepted_by", "created_at", "updated_at"}).
		AddRow("app-1", "APP-2026-AB12CD34", "Jane Doe", "jane@example.com", nil, nil, nil, "CS101", "PENDING", studentNumber, nil, nil, now, now)
}

func TestRangeRepositoryCreateDeactivatesPrevious(t *testing.T) {
	db, mock, cleanup := newRangeRepoMock(t)
	defer cleanup()
	repo := NewRangeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE number_ranges SET active = FALSE WHERE active = TRUE`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO number_ranges`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rng := &models.NumberRange{Prefix: "U26", StartNumber: 1000, EndNumber: 1999}
	require.NoError(t, repo.Create(context.Background(), rng))

	assert.NotEmpty(t, rng.ID)
	assert.True(t, rng.Active)
	assert.Equal(t, int64(1000), rng.Next)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRangeRepositoryClaimIssuesNextNumber(t *testing.T) {
	db, mock, cleanup := newRangeRepoMock(t)
	defer cleanup()
	repo := NewRangeRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM applications WHERE reference = $1 FOR UPDATE`)).
		WithArgs("APP-2026-AB12CD34").
		WillReturnRows(applicationRows(nil))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM number_ranges WHERE active = TRUE FOR UPDATE`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "prefix", "start_number", "end_number", "next", "active", "created_by", "created_at"}).
			AddRow("range-1", "U26", 1000, 1999, 1005, true, nil, time.Now().UTC()))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE applications SET status = $2, student_number = $3`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE number_ranges SET next = next + 1 WHERE id = $1`)).
		WithArgs("range-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO assignment_ledger`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := repo.Claim(context.Background(), ClaimParams{Reference: "APP-2026-AB12CD34"})
	require.NoError(t, err)

	assert.Equal(t, "U261005", result.StudentNumber)
	assert.Equal(t, "range-1", result.RangeID)
	assert.False(t, result.AlreadyAssigned)
	assert.Equal(t, models.ApplicationStatusAccepted, result.Application.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRangeRepositoryClaimIsIdempotent(t *testing.T) {
	db, mock, cleanup := newRangeRepoMock(t)
	defer cleanup()
	repo := NewRangeRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM applications WHERE reference = $1 FOR UPDATE`)).
		WithArgs("APP-2026-AB12CD34").
		WillReturnRows(applicationRows("U261001"))
	mock.ExpectCommit()

	result, err := repo.Claim(context.Background(), ClaimParams{Reference: "APP-2026-AB12CD34"})
	require.NoError(t, err)

	assert.True(t, result.AlreadyAssigned)
	assert.Equal(t, "U261001", result.StudentNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRangeRepositoryClaimUnknownReference(t *testing.T) {
	db, mock, cleanup := newRangeRepoMock(t)
	defer cleanup()
	repo := NewRangeRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM applications WHERE reference = $1 FOR UPDATE`)).
		WithArgs("APP-2026-MISSING").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := repo.Claim(context.Background(), ClaimParams{Reference: "APP-2026-MISSING"})
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestRangeRepositoryClaimNoActiveRange(t *testing.T) {
	db, mock, cleanup := newRangeRepoMock(t)
	defer cleanup()
	repo := NewRangeRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM applications WHERE reference = $1 FOR UPDATE`)).
		WithArgs("APP-2026-AB12CD34").
		WillReturnRows(applicationRows(nil))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM number_ranges WHERE active = TRUE FOR UPDATE`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := repo.Claim(context.Background(), ClaimParams{Reference: "APP-2026-AB12CD34"})
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNoActiveRange.Code, appErr.Code)
}

func TestRangeRepositoryClaimExhaustedRange(t *testing.T) {
	db, mock, cleanup := newRangeRepoMock(t)
	defer cleanup()
	repo := NewRangeRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM applications WHERE reference = $1 FOR UPDATE`)).
		WithArgs("APP-2026-AB12CD34").
		WillReturnRows(applicationRows(nil))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM number_ranges WHERE active = TRUE FOR UPDATE`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "prefix", "start_number", "end_number", "next", "active", "created_by", "created_at"}).
			AddRow("range-1", "U26", 1000, 1999, 2000, true, nil, time.Now().UTC()))
	mock.ExpectRollback()

	_, err := repo.Claim(context.Background(), ClaimParams{Reference: "APP-2026-AB12CD34"})
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrRangeExhausted.Code, appErr.Code)
}
