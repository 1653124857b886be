package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-admissions-api/internal/models"
	appErrors "github.com/noah-isme/uni-admissions-api/pkg/errors"
)

// RangeRepository handles persistence of student number ranges and the
// atomic claim of the next number in the active range.
type RangeRepository struct {
	db *sqlx.DB
}

// NewRangeRepository constructs the repository.
func NewRangeRepository(db *sqlx.DB) *RangeRepository {
	return &RangeRepository{db: db}
}

const rangeColumns = `id, prefix, start_number, end_number, next, active, created_by, created_at`

// Create inserts a new range and deactivates any currently active one.
// Both steps run in a single transaction so at most one range is active
// regardless of concurrent creations.
func (r *RangeRepository) Create(ctx context.Context, rng *models.NumberRange) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin range transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `UPDATE number_ranges SET active = FALSE WHERE active = TRUE`); err != nil {
		return fmt.Errorf("deactivate ranges: %w", err)
	}

	if rng.ID == "" {
		rng.ID = uuid.NewString()
	}
	if rng.CreatedAt.IsZero() {
		rng.CreatedAt = time.Now().UTC()
	}
	rng.Next = rng.StartNumber
	rng.Active = true

	const insertQuery = `INSERT INTO number_ranges (id, prefix, start_number, end_number, next, active, created_by, created_at)
        VALUES (:id, :prefix, :start_number, :end_number, :next, :active, :created_by, :created_at)`
	if _, err = tx.NamedExecContext(ctx, insertQuery, rng); err != nil {
		return fmt.Errorf("insert range: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit range: %w", err)
	}
	return nil
}

// FindActive returns the active range.
func (r *RangeRepository) FindActive(ctx context.Context) (*models.NumberRange, error) {
	query := fmt.Sprintf(`SELECT %s FROM number_ranges WHERE active = TRUE LIMIT 1`, rangeColumns)
	var rng models.NumberRange
	if err := r.db.GetContext(ctx, &rng, query); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find active range: %w", err)
	}
	return &rng, nil
}

// List returns all ranges, most recent first.
func (r *RangeRepository) List(ctx context.Context) ([]models.NumberRange, error) {
	query := fmt.Sprintf(`SELECT %s FROM number_ranges ORDER BY created_at DESC`, rangeColumns)
	var ranges []models.NumberRange
	if err := r.db.SelectContext(ctx, &ranges, query); err != nil {
		return nil, fmt.Errorf("list ranges: %w", err)
	}
	return ranges, nil
}

// ClaimParams identifies the application and actor for a claim.
type ClaimParams struct {
	Reference         string
	ActorID           *string
	ProgrammeOverride string
}

// ClaimResult reports the outcome of a claim.
type ClaimResult struct {
	Application     models.Application
	StudentNumber   string
	RangeID         string
	AlreadyAssigned bool
}

// Claim atomically issues the next student number from the active range
// to the referenced application. The application row and the active range
// row are both locked for the duration of the transaction so concurrent
// claims serialize on the range cursor. Re-claiming an application that
// already holds a number commits nothing and returns the existing number.
func (r *RangeRepository) Claim(ctx context.Context, params ClaimParams) (result *ClaimResult, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin claim transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const lockAppQuery = `SELECT id, reference, full_name, email, phone, birth_date, address, programme_code, status, student_number, accepted_at, accepted_by, created_at, updated_at
        FROM applications WHERE reference = $1 FOR UPDATE`
	var app models.Application
	if err = tx.GetContext(ctx, &app, lockAppQuery, params.Reference); err != nil {
		if err == sql.ErrNoRows {
			err = appErrors.Clone(appErrors.ErrNotFound, "application not found")
			return nil, err
		}
		return nil, fmt.Errorf("lock application: %w", err)
	}

	if app.StudentNumber != nil {
		if err = tx.Commit(); err != nil {
			return nil, fmt.Errorf("commit idempotent claim: %w", err)
		}
		return &ClaimResult{Application: app, StudentNumber: *app.StudentNumber, AlreadyAssigned: true}, nil
	}

	lockRangeQuery := fmt.Sprintf(`SELECT %s FROM number_ranges WHERE active = TRUE FOR UPDATE`, rangeColumns)
	var rng models.NumberRange
	if err = tx.GetContext(ctx, &rng, lockRangeQuery); err != nil {
		if err == sql.ErrNoRows {
			err = appErrors.ErrNoActiveRange
			return nil, err
		}
		return nil, fmt.Errorf("lock active range: %w", err)
	}

	if rng.Next > rng.EndNumber {
		err = appErrors.ErrRangeExhausted
		return nil, err
	}

	studentNumber := rng.Prefix + strconv.FormatInt(rng.Next, 10)
	now := time.Now().UTC()
	programme := app.ProgrammeCode
	if params.ProgrammeOverride != "" {
		programme = params.ProgrammeOverride
	}

	const updateAppQuery = `UPDATE applications SET status = $2, student_number = $3, programme_code = $4, accepted_at = $5, accepted_by = $6, updated_at = $5 WHERE id = $1`
	if _, err = tx.ExecContext(ctx, updateAppQuery, app.ID, models.ApplicationStatusAccepted, studentNumber, programme, now, params.ActorID); err != nil {
		return nil, fmt.Errorf("update application: %w", err)
	}

	const advanceQuery = `UPDATE number_ranges SET next = next + 1 WHERE id = $1`
	if _, err = tx.ExecContext(ctx, advanceQuery, rng.ID); err != nil {
		return nil, fmt.Errorf("advance range cursor: %w", err)
	}

	const ledgerQuery = `INSERT INTO assignment_ledger (id, application_id, reference, student_number, range_id, issued_by, issued_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err = tx.ExecContext(ctx, ledgerQuery, uuid.NewString(), app.ID, app.Reference, studentNumber, rng.ID, params.ActorID, now); err != nil {
		return nil, fmt.Errorf("insert ledger entry: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit claim: %w", err)
	}

	app.Status = models.ApplicationStatusAccepted
	app.StudentNumber = &studentNumber
	app.ProgrammeCode = programme
	app.AcceptedAt = &now
	app.AcceptedBy = params.ActorID
	app.UpdatedAt = now
	return &ClaimResult{Application: app, StudentNumber: studentNumber, RangeID: rng.ID}, nil
}
