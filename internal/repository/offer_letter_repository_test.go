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
)

func newLetterRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
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

func TestOfferLetterRepositoryReplaceLatest(t *testing.T) {
	db, mock, cleanup := newLetterRepoMock(t)
	defer cleanup()
	repo := NewOfferLetterRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE offer_letters SET latest = FALSE WHERE application_id = $1 AND latest = TRUE`)).
		WithArgs("app-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO offer_letters`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	letter := &models.OfferLetter{
		ApplicationID:    "app-1",
		Reference:        "APP-2026-A",
		StudentNumber:    "U261000",
		FileName:         "2026/offer_letter_APP-2026-A_1.pdf",
		FilePath:         "/letters/2026/offer_letter_APP-2026-A_1.pdf",
		VerificationCode: "abc123",
	}
	require.NoError(t, repo.ReplaceLatest(context.Background(), letter))

	assert.NotEmpty(t, letter.ID)
	assert.True(t, letter.Latest)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOfferLetterRepositoryFindByVerificationCode(t *testing.T) {
	db, mock, cleanup := newLetterRepoMock(t)
	defer cleanup()
	repo := NewOfferLetterRepository(db)

	rows := sqlmock.NewRows([]string{"id", "application_id", "reference", "student_number", "file_name", "file_path", "verification_code", "generated_by", "latest", "created_at"}).
		AddRow("letter-1", "app-1", "APP-2026-A", "U261000", "a.pdf", "/letters/a.pdf", "abc123", nil, true, time.Now().UTC())

	mock.ExpectQuery(regexp.QuoteMeta(`FROM offer_letters WHERE verification_code = $1`)).
		WithArgs("abc123").
		WillReturnRows(rows)

	letter, err := repo.FindByVerificationCode(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "APP-2026-A", letter.Reference)
	assert.True(t, letter.Latest)
}

func TestOfferLetterRepositoryInsertEvent(t *testing.T) {
	db, mock, cleanup := newLetterRepoMock(t)
	defer cleanup()
	repo := NewOfferLetterRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO offer_letter_events`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	event := &models.OfferLetterEvent{
		OfferLetterID: "letter-1",
		ApplicationID: "app-1",
		Action:        models.LetterActionDownloaded,
	}
	require.NoError(t, repo.InsertEvent(context.Background(), event))
	assert.NotEmpty(t, event.ID)
}
